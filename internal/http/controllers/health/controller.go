// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/ezfintutor/tutormail/internal/http/dto"
	"github.com/ezfintutor/tutormail/internal/http/helpers"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// Pinger es cualquier dependencia chequeable (store, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller maneja /healthz y /readyz.
type Controller struct {
	Store   Pinger // requerido
	Cache   Pinger // opcional; caído => degraded
	Version string
	Timeout time.Duration
}

// Healthz: el proceso está vivo.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz: store alcanzable. Un cache caído degrada pero no saca de servicio.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Op("Readyz"))

	resp := dto.HealthResponse{Status: "ready", Version: c.Version, Components: map[string]string{}}
	status := http.StatusOK

	if err := c.Store.Ping(ctx); err != nil {
		log.Warn("store ping failed", logger.Err(err))
		resp.Components["store"] = "down"
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		resp.Components["store"] = "ok"
	}

	if c.Cache != nil {
		if err := c.Cache.Ping(ctx); err != nil {
			log.Warn("cache ping failed", logger.Err(err))
			resp.Components["cache"] = "down"
			if resp.Status == "ready" {
				resp.Status = "degraded"
			}
		} else {
			resp.Components["cache"] = "ok"
		}
	}

	helpers.WriteJSON(w, status, resp)
}
