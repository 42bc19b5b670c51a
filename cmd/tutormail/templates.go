package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/ezfintutor/tutormail/internal/app"
	"github.com/ezfintutor/tutormail/internal/audit"
	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/email"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

func newTemplatesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Administra los overrides de templates de email",
	}
	cmd.AddCommand(
		newTemplatesListCmd(c),
		newTemplatesGetCmd(c),
		newTemplatesSetCmd(c),
		newTemplatesDeleteCmd(c),
		newTemplatesImportCmd(c),
		newTemplatesExportCmd(c),
	)
	return cmd
}

const cliActor audit.Actor = "cli"

// withApp abre store y cache (sin SMTP) y cierra al terminar.
func (c *cli) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, c.cfg, app.Options{WithoutSMTP: true})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func invalidate(ctx context.Context, a *app.App, name string) {
	if a.Invalidator == nil {
		return
	}
	if err := a.Invalidator.Invalidate(ctx, name); err != nil {
		logger.L().Warn("template cache invalidation failed", logger.Template(name), logger.Err(err))
	}
}

func newTemplatesListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista los templates guardados",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			return c.withApp(ctx, func(a *app.App) error {
				items, err := a.Store.EmailTemplates().List(ctx)
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), items, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tSUBJECT\tUPDATED")
					for _, t := range items {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Subject, t.UpdatedAt.Format("2006-01-02 15:04"))
					}
					tw.Flush()
				})
			})
		},
	}
}

func newTemplatesGetCmd(c *cli) *cobra.Command {
	var effective bool
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Muestra un template guardado (o el efectivo con --effective)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			name := args[0]
			return c.withApp(ctx, func(a *app.App) error {
				if effective {
					def, _ := email.Default(name)
					res, err := a.Resolver.Resolve(ctx, name, def)
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), res, func(w io.Writer) {
						fmt.Fprintf(w, "# source: %s\nSubject: %s\n\n%s\n", res.Source, res.Subject, res.Body)
					})
				}

				t, err := a.Store.EmailTemplates().GetByName(ctx, name)
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), t, func(w io.Writer) {
					fmt.Fprintf(w, "Subject: %s\n\n%s\n", t.Subject, t.Body)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "muestra lo que se enviaría (override o default)")
	return cmd
}

func newTemplatesSetCmd(c *cli) *cobra.Command {
	var subject, body, bodyFile string
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Crea o reemplaza un template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			name := args[0]

			if bodyFile != "" {
				b, err := os.ReadFile(bodyFile)
				if err != nil {
					return err
				}
				body = string(b)
			}
			if err := email.ValidateBody(strings.TrimSpace(name), body); err != nil {
				return err
			}

			return c.withApp(ctx, func(a *app.App) error {
				t, err := a.Store.EmailTemplates().Upsert(ctx, repository.UpsertEmailTemplateInput{Name: name, Subject: subject, Body: body})
				if err != nil {
					return err
				}
				invalidate(ctx, a, t.Name)
				audit.Log(ctx, cliActor, audit.EventTemplateUpserted, t.Name)
				return c.print(cmd.OutOrStdout(), t, func(w io.Writer) {
					fmt.Fprintf(w, "saved %s\n", t.Name)
				})
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject del email")
	cmd.Flags().StringVar(&body, "body", "", "cuerpo con campos {name}, {course_name}, ...")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "lee el cuerpo desde un archivo")
	_ = cmd.MarkFlagRequired("subject")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
	return cmd
}

func newTemplatesDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Borra un override; los envíos vuelven al default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			name := args[0]
			return c.withApp(ctx, func(a *app.App) error {
				if err := a.Store.EmailTemplates().Delete(ctx, name); err != nil {
					return err
				}
				invalidate(ctx, a, name)
				audit.Log(ctx, cliActor, audit.EventTemplateDeleted, name)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
				return nil
			})
		},
	}
}

func newTemplatesImportCmd(c *cli) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Importa templates desde un CSV con columnas name,subject,body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var rows []*repository.EmailTemplate
			if err := gocsv.UnmarshalFile(f, &rows); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			// validar todo antes de escribir
			var problems []string
			for i, row := range rows {
				row.Name = strings.TrimSpace(row.Name)
				if err := email.ValidateBody(row.Name, row.Body); err != nil {
					problems = append(problems, fmt.Sprintf("row %d (%s): %v", i+2, row.Name, err))
				}
				if row.Name == "" || strings.TrimSpace(row.Subject) == "" {
					problems = append(problems, fmt.Sprintf("row %d: name and subject are required", i+2))
				}
			}
			if len(problems) > 0 {
				return errors.New(strings.Join(problems, "\n"))
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d templates ok\n", len(rows))
				return nil
			}

			return c.withApp(ctx, func(a *app.App) error {
				repo := a.Store.EmailTemplates()
				for _, row := range rows {
					if _, err := repo.Upsert(ctx, repository.UpsertEmailTemplateInput{Name: row.Name, Subject: row.Subject, Body: row.Body}); err != nil {
						return fmt.Errorf("import %s: %w", row.Name, err)
					}
					invalidate(ctx, a, row.Name)
					audit.Log(ctx, cliActor, audit.EventTemplateImported, row.Name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d templates\n", len(rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "sólo valida el archivo")
	return cmd
}

func newTemplatesExportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Exporta los templates guardados como CSV a stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			return c.withApp(ctx, func(a *app.App) error {
				items, err := a.Store.EmailTemplates().List(ctx)
				if err != nil {
					return err
				}
				rows := make([]*repository.EmailTemplate, 0, len(items))
				for i := range items {
					rows = append(rows, &items[i])
				}
				return gocsv.Marshal(rows, cmd.OutOrStdout())
			})
		},
	}
}
