package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezfintutor/tutormail/internal/app"
	"github.com/ezfintutor/tutormail/internal/email"
	"github.com/ezfintutor/tutormail/internal/security/secretbox"
)

func newSMTPCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smtp",
		Short: "Herramientas SMTP",
	}
	cmd.AddCommand(newSMTPTestCmd(c), newSMTPEncryptCmd(c))
	return cmd
}

func newSMTPTestCmd(c *cli) *cobra.Command {
	var checkOnly bool
	cmd := &cobra.Command{
		Use:   "test <to>",
		Short: "Verifica la conexión SMTP y envía un email de prueba",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := app.NewSender(c.cfg)
			if err != nil {
				return err
			}

			if s, ok := sender.(*email.SMTPSender); ok {
				if err := s.Check(); err != nil {
					return diagError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "smtp connection ok")
			}
			if checkOnly {
				return nil
			}

			body := "This is a test email from tutormail.\n\nIf you received it, SMTP delivery is configured correctly."
			if err := sender.Send(args[0], "tutormail SMTP test", body); err != nil {
				return diagError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "test email sent to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check-only", false, "sólo conecta y autentica, no envía")
	return cmd
}

func diagError(err error) error {
	d := email.DiagnoseSMTP(err)
	return fmt.Errorf("smtp %s (temporary=%t): %w", d.Code, d.Temporary, err)
}

func newSMTPEncryptCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt-password",
		Short: "Cifra la password SMTP (stdin) para smtp.password_enc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := c.cfg.Security.SecretBoxMasterKey
			if key == "" {
				return errors.New("security.secretbox_master_key (SECRETBOX_MASTER_KEY) is required")
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			pass := strings.TrimRight(line, "\r\n")
			if pass == "" {
				return errors.New("empty password")
			}
			enc, err := secretbox.EncryptWithKey(key, pass)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc)
			return nil
		},
	}
}
