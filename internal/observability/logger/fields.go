package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/ezfintutor/tutormail/internal/util"
)

// Field es un campo estructurado de log.
type Field = zap.Field

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// DurationMs registra la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field { return zap.Int64("duration_ms", d.Milliseconds()) }

// ─── Mailing ───

// Template es el nombre lógico del template (welcome_email, payment_email...).
func Template(v string) zap.Field { return zap.String("template", v) }

// Source indica de dónde salió el template resuelto: "stored" o "default".
func Source(v string) zap.Field { return zap.String("source", v) }

// Kind es el tipo de notificación (welcome, enrollment, ...).
func Kind(v string) zap.Field { return zap.String("kind", v) }

func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email registra una dirección de correo enmascarada.
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// DiagCode es el código de diagnóstico SMTP (auth, tls, dial...).
func DiagCode(v string) zap.Field { return zap.String("diag_code", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Driver(v string) zap.Field { return zap.String("driver", v) }
func Err(err error) zap.Field { return zap.Error(err) }
func Count(v int) zap.Field { return zap.Int("count", v) }

// ─── Genéricos ───

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Strings(key string, v []string) zap.Field { return zap.Strings(key, v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
