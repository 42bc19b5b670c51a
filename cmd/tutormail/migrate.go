package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ezfintutor/tutormail/internal/app"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes del driver SQL configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			conn, err := app.OpenStore(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			res, err := app.Migrate(ctx, conn)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "driver=%s applied=%v skipped=%d duration=%s\n",
					conn.Name(), res.Applied, len(res.Skipped), res.Duration)
			})
		},
	}
}
