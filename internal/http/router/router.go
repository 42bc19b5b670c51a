// Package router arma el router chi de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ezfintutor/tutormail/internal/http/controllers/health"
	"github.com/ezfintutor/tutormail/internal/http/controllers/notifications"
	"github.com/ezfintutor/tutormail/internal/http/controllers/templates"
	httperrors "github.com/ezfintutor/tutormail/internal/http/errors"
	mw "github.com/ezfintutor/tutormail/internal/http/middlewares"
)

// Deps contiene todo lo que necesita el router.
type Deps struct {
	Health        *health.Controller
	Templates     *templates.Controller
	Notifications *notifications.Controller
	Admin         mw.AdminConfig
	Metrics       http.Handler // nil = sin /metrics
}

// New devuelve el handler raíz.
//
//	GET    /healthz
//	GET    /readyz
//	GET    /metrics
//	GET    /v1/admin/email-templates
//	GET    /v1/admin/email-templates/{name}
//	PUT    /v1/admin/email-templates/{name}
//	DELETE /v1/admin/email-templates/{name}
//	GET    /v1/admin/email-templates/{name}/effective
//	POST   /v1/admin/email-templates/{name}/preview
//	POST   /v1/notifications/{kind}
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// WithMetrics va dentro de chi para leer el patrón de ruta.
	r.Use(mw.WithMetrics())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.RequireAdmin(deps.Admin))

		if c := deps.Templates; c != nil {
			r.Route("/admin/email-templates", func(r chi.Router) {
				r.Get("/", c.List)
				r.Get("/{name}", c.Get)
				r.Put("/{name}", c.Put)
				r.Delete("/{name}", c.Delete)
				r.Get("/{name}/effective", c.Effective)
				r.Post("/{name}/preview", c.Preview)
			})
		}
		if c := deps.Notifications; c != nil {
			r.Post("/notifications/{kind}", c.Send)
		}
	})

	return mw.Chain(r, mw.WithRecover(), mw.WithRequestID(), mw.WithLogging())
}
