package email

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput   = errors.New("email: invalid input")
	ErrTemplateLookup = errors.New("email: template lookup failed")
	ErrTemplateRender = errors.New("email: template render failed")
	ErrSendFailed     = errors.New("email: send failed")
)

// User es el destinatario de una notificación.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// DisplayName es "nombre apellido"; si queda vacío, el username.
func (u User) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		return full
	}
	return u.Username
}

// Kinds de notificación, usados en logs y métricas.
const (
	KindWelcome      = "welcome"
	KindEnrollment   = "enrollment"
	KindUnenrollment = "unenrollment"
	KindPayment      = "payment"
)

// TemplateForKind mapea kind -> nombre de template.
func TemplateForKind(kind string) (string, bool) {
	switch kind {
	case KindWelcome:
		return TemplateWelcome, true
	case KindEnrollment:
		return TemplateEnrollment, true
	case KindUnenrollment:
		return TemplateUnenrollment, true
	case KindPayment:
		return TemplatePayment, true
	}
	return "", false
}
