// Package audit registra cambios administrativos sobre los templates.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// Eventos de template.
const (
	EventTemplateUpserted = "template.upserted"
	EventTemplateDeleted  = "template.deleted"
	EventTemplateImported = "template.imported"
)

// Actor identifica quién hizo el cambio ("cli", "api_key" o el sub del JWT).
type Actor string

// Log escribe un evento de auditoría como una línea estructurada con audit=true.
func Log(ctx context.Context, actor Actor, event, template string, fields ...zap.Field) {
	if actor == "" {
		actor = "anonymous"
	}
	base := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event", event),
		zap.String("actor", string(actor)),
		logger.Template(template),
	}
	logger.From(ctx).Info("audit", append(base, fields...)...)
}
