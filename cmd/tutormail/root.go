package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ezfintutor/tutormail/internal/config"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// cli guarda el estado compartido por los subcomandos.
type cli struct {
	configPath string
	envFile    string
	out        string // text | json
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{
		configPath: os.Getenv("TUTORMAIL_CONFIG"),
		envFile:    ".env",
		out:        "text",
	}

	root := &cobra.Command{
		Use:           "tutormail",
		Short:         "Emails transaccionales de EzfinTutor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", c.configPath, "archivo YAML de configuración (env TUTORMAIL_CONFIG)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", c.envFile, "archivo .env a cargar si existe")
	root.PersistentFlags().StringVar(&c.out, "out", c.out, "formato de salida: text|json")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newTemplatesCmd(c),
		newSendCmd(c),
		newSMTPCmd(c),
	)
	return root
}

func (c *cli) load() error {
	if c.envFile != "" {
		// .env es opcional; las variables ya seteadas tienen prioridad
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "tutormail",
	})
	return nil
}

// print escribe v como JSON indentado o usa text() para el modo texto.
func (c *cli) print(w io.Writer, v any, text func(io.Writer)) error {
	if c.out == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
