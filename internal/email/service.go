package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ezfintutor/tutormail/internal/email/placeholder"
	"github.com/ezfintutor/tutormail/internal/metrics"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// Service envía las notificaciones de la plataforma.
type Service interface {
	SendWelcome(ctx context.Context, user User) error
	SendEnrollment(ctx context.Context, user User, courseName string) error
	// SendUnenrollment incluye "Reason: <reason>" en el cuerpo sólo si reason no es vacío.
	SendUnenrollment(ctx context.Context, user User, courseName, reason string) error
	SendPayment(ctx context.Context, user User, amount decimal.Decimal, batchName string) error
}

// ServiceConfig contiene las dependencias del servicio.
type ServiceConfig struct {
	Resolver Resolver
	Sender   Sender
}

type service struct {
	resolver Resolver
	sender   Sender
}

func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("email: resolver is required")
	}
	if cfg.Sender == nil {
		return nil, fmt.Errorf("email: sender is required")
	}
	return &service{resolver: cfg.Resolver, sender: cfg.Sender}, nil
}

func (s *service) SendWelcome(ctx context.Context, user User) error {
	return s.send(ctx, KindWelcome, TemplateWelcome, user, map[string]string{
		FieldName: user.DisplayName(),
	})
}

func (s *service) SendEnrollment(ctx context.Context, user User, courseName string) error {
	return s.send(ctx, KindEnrollment, TemplateEnrollment, user, map[string]string{
		FieldName:       user.DisplayName(),
		FieldCourseName: courseName,
	})
}

func (s *service) SendUnenrollment(ctx context.Context, user User, courseName, reason string) error {
	return s.send(ctx, KindUnenrollment, TemplateUnenrollment, user, map[string]string{
		FieldName:       user.DisplayName(),
		FieldCourseName: courseName,
		FieldReason:     ReasonLine(reason),
	})
}

func (s *service) SendPayment(ctx context.Context, user User, amount decimal.Decimal, batchName string) error {
	return s.send(ctx, KindPayment, TemplatePayment, user, map[string]string{
		FieldName:       user.DisplayName(),
		FieldAmountPaid: FormatAmount(amount),
		FieldBatchName:  batchName,
	})
}

// ReasonLine arma la línea opcional del email de baja.
func ReasonLine(reason string) string {
	if reason == "" {
		return ""
	}
	return "Reason: " + reason
}

// FormatAmount siempre usa dos decimales: 1500 -> "1500.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// send resuelve, formatea y entrega. El subject se usa tal cual.
func (s *service) send(ctx context.Context, kind, name string, user User, values map[string]string) error {
	log := logger.From(ctx).With(
		logger.Op("Send"),
		logger.Kind(kind),
		logger.Template(name),
		logger.UserID(user.ID),
		logger.Email(user.Email),
	)

	to := strings.TrimSpace(user.Email)
	if to == "" {
		metrics.ObserveEmail(kind, metrics.ResultInvalid)
		return fmt.Errorf("%w: user has no email", ErrInvalidInput)
	}

	def, _ := Default(name)
	tpl, err := s.resolver.Resolve(ctx, name, def)
	if err != nil {
		log.Error("failed to resolve template", logger.Err(err))
		metrics.ObserveEmail(kind, metrics.ResultResolveError)
		return err
	}
	observeResolution(tpl)

	body, err := placeholder.Format(tpl.Body, values)
	if err != nil {
		log.Error("failed to render template", logger.Source(string(tpl.Source)), logger.Err(err))
		metrics.ObserveEmail(kind, metrics.ResultRenderError)
		return fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	if err := s.sender.Send(to, tpl.Subject, body); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("failed to send email",
			logger.Source(string(tpl.Source)),
			logger.DiagCode(diag.Code),
			logger.Bool("temporary", diag.Temporary),
			logger.Err(err),
		)
		metrics.ObserveEmail(kind, metrics.ResultSendError)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	metrics.ObserveEmail(kind, metrics.ResultSent)
	log.Info("email sent", logger.Source(string(tpl.Source)))
	return nil
}
