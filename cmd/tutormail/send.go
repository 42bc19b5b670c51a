package main

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ezfintutor/tutormail/internal/app"
	"github.com/ezfintutor/tutormail/internal/email"
)

type sendFlags struct {
	user   email.User
	course string
	reason string
	amount string
	batch  string
}

func (f *sendFlags) bindUser(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user.Email, "email", "", "email del destinatario")
	cmd.Flags().StringVar(&f.user.ID, "user-id", "", "id del usuario (sólo logs)")
	cmd.Flags().StringVar(&f.user.Username, "username", "", "username (si no hay nombre)")
	cmd.Flags().StringVar(&f.user.FirstName, "first-name", "", "nombre")
	cmd.Flags().StringVar(&f.user.LastName, "last-name", "", "apellido")
	_ = cmd.MarkFlagRequired("email")
}

func newSendCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Envía una notificación manualmente",
	}

	run := func(kind string, f *sendFlags, fn func(cmd *cobra.Command, svc email.Service) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmdContext(cmd), c.cfg, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := fn(cmd, a.Email); err != nil {
				return err
			}
			tpl, _ := email.TemplateForKind(kind)
			out := map[string]string{"kind": kind, "template": tpl, "to": f.user.Email, "status": "sent"}
			return c.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "%s email sent to %s\n", kind, f.user.Email)
			})
		}
	}

	welcome := &sendFlags{}
	welcomeCmd := &cobra.Command{
		Use:   "welcome",
		Short: "Email de bienvenida",
		Args:  cobra.NoArgs,
		RunE: run(email.KindWelcome, welcome, func(cmd *cobra.Command, svc email.Service) error {
			return svc.SendWelcome(cmdContext(cmd), welcome.user)
		}),
	}
	welcome.bindUser(welcomeCmd)

	enroll := &sendFlags{}
	enrollCmd := &cobra.Command{
		Use:   "enrollment",
		Short: "Confirmación de inscripción a un curso",
		Args:  cobra.NoArgs,
		RunE: run(email.KindEnrollment, enroll, func(cmd *cobra.Command, svc email.Service) error {
			return svc.SendEnrollment(cmdContext(cmd), enroll.user, enroll.course)
		}),
	}
	enroll.bindUser(enrollCmd)
	enrollCmd.Flags().StringVar(&enroll.course, "course", "", "nombre del curso")
	_ = enrollCmd.MarkFlagRequired("course")

	unenroll := &sendFlags{}
	unenrollCmd := &cobra.Command{
		Use:   "unenrollment",
		Short: "Aviso de baja de un curso",
		Args:  cobra.NoArgs,
		RunE: run(email.KindUnenrollment, unenroll, func(cmd *cobra.Command, svc email.Service) error {
			return svc.SendUnenrollment(cmdContext(cmd), unenroll.user, unenroll.course, unenroll.reason)
		}),
	}
	unenroll.bindUser(unenrollCmd)
	unenrollCmd.Flags().StringVar(&unenroll.course, "course", "", "nombre del curso")
	unenrollCmd.Flags().StringVar(&unenroll.reason, "reason", "", "motivo (opcional)")
	_ = unenrollCmd.MarkFlagRequired("course")

	payment := &sendFlags{}
	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Confirmación de pago",
		Args:  cobra.NoArgs,
		RunE: run(email.KindPayment, payment, func(cmd *cobra.Command, svc email.Service) error {
			amount, err := decimal.NewFromString(payment.amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", payment.amount, err)
			}
			return svc.SendPayment(cmdContext(cmd), payment.user, amount, payment.batch)
		}),
	}
	payment.bindUser(paymentCmd)
	paymentCmd.Flags().StringVar(&payment.amount, "amount", "", "monto pagado, p.ej. 4999.50")
	paymentCmd.Flags().StringVar(&payment.batch, "batch", "", "nombre del batch")
	_ = paymentCmd.MarkFlagRequired("amount")
	_ = paymentCmd.MarkFlagRequired("batch")

	cmd.AddCommand(welcomeCmd, enrollCmd, unenrollCmd, paymentCmd)
	return cmd
}
