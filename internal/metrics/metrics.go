// Package metrics define las métricas Prometheus del servicio.
// Vive en un paquete propio para que email y http las compartan sin ciclos.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de envío.
const (
	ResultSent         = "sent"
	ResultInvalid      = "invalid"
	ResultRenderError  = "render_error"
	ResultResolveError = "resolve_error"
	ResultSendError    = "send_error"
)

var (
	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutormail_emails_sent_total",
		Help: "Emails procesados por tipo y resultado",
	}, []string{"kind", "result"})

	TemplateResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutormail_template_resolutions_total",
		Help: "Resoluciones de template por nombre y origen (stored|default)",
	}, []string{"template", "source"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutormail_http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tutormail_http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Register registra las métricas en reg (o en el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{EmailsSent, TemplateResolutions, HTTPRequests, HTTPDuration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// Handler expone el registry default para /metrics.
func Handler() http.Handler { return promhttp.Handler() }

func ObserveEmail(kind, result string) {
	EmailsSent.WithLabelValues(kind, result).Inc()
}

func ObserveResolution(template, source string) {
	TemplateResolutions.WithLabelValues(template, source).Inc()
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
