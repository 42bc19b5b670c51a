// Package notifications expone el disparo de emails transaccionales
// para el backend de la plataforma.
package notifications

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ezfintutor/tutormail/internal/email"
	"github.com/ezfintutor/tutormail/internal/http/dto"
	httperrors "github.com/ezfintutor/tutormail/internal/http/errors"
	"github.com/ezfintutor/tutormail/internal/http/helpers"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// Controller maneja POST /v1/notifications/{kind}.
type Controller struct {
	Service email.Service
}

// Send envía de forma síncrona; responde 202 cuando el servidor SMTP aceptó el mensaje.
func (c *Controller) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := chi.URLParam(r, "kind")
	tplName, ok := email.TemplateForKind(kind)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown notification kind"))
		return
	}

	var req dto.NotificationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if missing := validate(kind, req); len(missing) > 0 {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(strings.Join(missing, ", ")))
		return
	}

	user := email.User{
		ID:        req.User.ID,
		Username:  req.User.Username,
		FirstName: req.User.FirstName,
		LastName:  req.User.LastName,
		Email:     req.User.Email,
	}

	var err error
	switch kind {
	case email.KindWelcome:
		err = c.Service.SendWelcome(ctx, user)
	case email.KindEnrollment:
		err = c.Service.SendEnrollment(ctx, user, req.CourseName)
	case email.KindUnenrollment:
		err = c.Service.SendUnenrollment(ctx, user, req.CourseName, req.Reason)
	case email.KindPayment:
		err = c.Service.SendPayment(ctx, user, req.AmountPaid.Decimal, req.BatchName)
	}
	if err != nil {
		writeSendError(w, err)
		return
	}

	logger.From(ctx).Debug("notification accepted", logger.Kind(kind))
	helpers.WriteJSON(w, http.StatusAccepted, dto.NotificationResponse{Kind: kind, Template: tplName, Status: "sent"})
}

func validate(kind string, req dto.NotificationRequest) []string {
	var missing []string
	if strings.TrimSpace(req.User.Email) == "" {
		missing = append(missing, "user.email")
	}
	switch kind {
	case email.KindEnrollment, email.KindUnenrollment:
		if strings.TrimSpace(req.CourseName) == "" {
			missing = append(missing, "course_name")
		}
	case email.KindPayment:
		if !req.AmountPaid.Valid {
			missing = append(missing, "amount_paid")
		}
		if strings.TrimSpace(req.BatchName) == "" {
			missing = append(missing, "batch_name")
		}
	}
	return missing
}

func writeSendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, email.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
	case errors.Is(err, email.ErrTemplateRender):
		httperrors.WriteError(w, httperrors.ErrTemplateRender.WithDetail(err.Error()).WithCause(err))
	case errors.Is(err, email.ErrTemplateLookup):
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
	case errors.Is(err, email.ErrSendFailed):
		httperrors.WriteError(w, httperrors.ErrBadGateway.WithDetail(email.DiagnoseSMTP(err).Code).WithCause(err))
	default:
		httperrors.WriteError(w, err)
	}
}
