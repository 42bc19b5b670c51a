// Package templates expone la administración de overrides de email.
package templates

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ezfintutor/tutormail/internal/audit"
	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/email"
	"github.com/ezfintutor/tutormail/internal/email/placeholder"
	"github.com/ezfintutor/tutormail/internal/http/dto"
	httperrors "github.com/ezfintutor/tutormail/internal/http/errors"
	"github.com/ezfintutor/tutormail/internal/http/helpers"
	mw "github.com/ezfintutor/tutormail/internal/http/middlewares"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// Controller maneja /v1/admin/email-templates.
type Controller struct {
	Repo     repository.EmailTemplateRepository
	Resolver email.Resolver
	// Invalidator es opcional (nil sin cache).
	Invalidator email.Invalidator
}

// sampleValues se usan en preview cuando el request no trae valores.
var sampleValues = map[string]string{
	email.FieldName:       "Priya Sharma",
	email.FieldCourseName: "Stock Market Fundamentals",
	email.FieldAmountPaid: "4999.00",
	email.FieldBatchName:  "Weekend Batch A",
	email.FieldReason:     email.ReasonLine("Requested by student"),
}

func toDTO(t repository.EmailTemplate) dto.EmailTemplateResponse {
	return dto.EmailTemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subject:   t.Subject,
		Body:      t.Body,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// List maneja GET /v1/admin/email-templates
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.Repo.List(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("list templates failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
		return
	}
	resp := dto.ListEmailTemplatesResponse{Templates: make([]dto.EmailTemplateResponse, 0, len(items))}
	for _, t := range items {
		resp.Templates = append(resp.Templates, toDTO(t))
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Get maneja GET /v1/admin/email-templates/{name}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, err := c.Repo.GetByName(r.Context(), name)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toDTO(*t))
}

// Put maneja PUT /v1/admin/email-templates/{name}
//
// Para los templates conocidos rechaza campos que el envío no completa,
// así un override roto no llega a producción.
func (c *Controller) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	log := logger.From(ctx).With(logger.Op("PutTemplate"), logger.Template(name))

	var req dto.UpsertEmailTemplateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := email.ValidateBody(name, req.Body); err != nil {
		httperrors.WriteError(w, httperrors.ErrTemplateRender.WithDetail(err.Error()))
		return
	}

	t, err := c.Repo.Upsert(ctx, repository.UpsertEmailTemplateInput{Name: name, Subject: req.Subject, Body: req.Body})
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	c.invalidate(ctx, name)
	audit.Log(ctx, actor(r), audit.EventTemplateUpserted, t.Name)

	log.Info("email template saved")
	helpers.WriteJSON(w, http.StatusOK, toDTO(*t))
}

// Delete maneja DELETE /v1/admin/email-templates/{name}
// Sin override, el envío vuelve al default.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	if err := c.Repo.Delete(ctx, name); err != nil {
		writeRepoError(w, r, err)
		return
	}
	c.invalidate(ctx, name)
	audit.Log(ctx, actor(r), audit.EventTemplateDeleted, name)

	logger.From(ctx).Info("email template deleted", logger.Template(name))
	w.WriteHeader(http.StatusNoContent)
}

func actor(r *http.Request) audit.Actor {
	return audit.Actor(mw.GetAdminSubject(r.Context()))
}

// Effective maneja GET /v1/admin/email-templates/{name}/effective
func (c *Controller) Effective(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	res, ok := c.effective(w, r, name)
	if !ok {
		return
	}
	fields := email.Fields(name)
	if fields == nil {
		fields = []string{}
	}
	helpers.WriteJSON(w, http.StatusOK, dto.EffectiveTemplateResponse{
		Name:    res.Name,
		Subject: res.Subject,
		Body:    res.Body,
		Source:  string(res.Source),
		Fields:  fields,
	})
}

// Preview maneja POST /v1/admin/email-templates/{name}/preview
func (c *Controller) Preview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req dto.PreviewRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	subject, body := req.Subject, req.Body
	if body == "" {
		res, ok := c.effective(w, r, name)
		if !ok {
			return
		}
		body = res.Body
		if subject == "" {
			subject = res.Subject
		}
	}

	values := make(map[string]string, len(sampleValues)+len(req.Values))
	for k, v := range sampleValues {
		values[k] = v
	}
	for k, v := range req.Values {
		values[k] = v
	}

	rendered, err := placeholder.Format(body, values)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrTemplateRender.WithDetail(err.Error()))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.PreviewResponse{Subject: subject, Body: rendered})
}

// effective resuelve name; para nombres sin default y sin override responde 404.
func (c *Controller) effective(w http.ResponseWriter, r *http.Request, name string) (email.Resolved, bool) {
	def, known := email.Default(name)
	res, err := c.Resolver.Resolve(r.Context(), name, def)
	if err != nil {
		logger.From(r.Context()).Error("resolve template failed", logger.Template(name), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
		return email.Resolved{}, false
	}
	if !known && res.Source == email.SourceDefault {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown email template"))
		return email.Resolved{}, false
	}
	return res, true
}

func (c *Controller) invalidate(ctx context.Context, name string) {
	if c.Invalidator == nil {
		return
	}
	if err := c.Invalidator.Invalidate(ctx, name); err != nil {
		logger.From(ctx).Warn("template cache invalidation failed", logger.Template(name), logger.Err(err))
	}
}

func writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case repository.IsNotFound(err):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("email template not found"))
	case errors.Is(err, repository.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
	default:
		logger.From(r.Context()).Error("template store error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
	}
}
