package email

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ezfintutor/tutormail/internal/email/placeholder"
)

// ErrFieldNotAvailable: el cuerpo usa un campo que ese envío no completa.
var ErrFieldNotAvailable = errors.New("email: field not available for template")

// Nombres de template en el store.
const (
	TemplateWelcome      = "welcome_email"
	TemplateEnrollment   = "enrollment_email"
	TemplateUnenrollment = "unenrollment_email"
	TemplatePayment      = "payment_email"
)

// Campos disponibles en los cuerpos.
const (
	FieldName       = "name"
	FieldCourseName = "course_name"
	FieldAmountPaid = "amount_paid"
	FieldBatchName  = "batch_name"
	FieldReason     = "reason"
)

// Template es un par subject/body.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var defaults = map[string]Template{
	TemplateWelcome: {
		Subject: "Welcome to EzfinTutor!",
		Body:    "Hi {name},\n\nWelcome to EzfinTutor! Your account has been created successfully.\n\nBest regards,\nEzfinTutor Team",
	},
	TemplateEnrollment: {
		Subject: "Enrollment Confirmation",
		Body:    "Hi {name},\n\nYou have been successfully enrolled in the course: {course_name}.\n\nBest wishes,\nEzfinTutor Team",
	},
	TemplateUnenrollment: {
		Subject: "Course Unenrollment Notification",
		Body:    "Hi {name},\n\nYou have been unenrolled from the course: {course_name}.\n{reason}\n\nBest regards,\nEzfinTutor Team",
	},
	TemplatePayment: {
		Subject: "Payment Confirmation",
		Body:    "Hi {name},\n\nYour payment has been successfully processed.\n\nAmount Paid: ₹{amount_paid}\nBatch: {batch_name}\n\nThank you!\nEzfinTutor Team",
	},
}

// Default devuelve el template embebido para name.
func Default(name string) (Template, bool) {
	t, ok := defaults[name]
	return t, ok
}

// KnownTemplates lista los nombres con default, en orden fijo.
func KnownTemplates() []string {
	return []string{TemplateWelcome, TemplateEnrollment, TemplateUnenrollment, TemplatePayment}
}

// Fields devuelve los campos que se completan al enviar el template name.
func Fields(name string) []string {
	switch name {
	case TemplateWelcome:
		return []string{FieldName}
	case TemplateEnrollment:
		return []string{FieldName, FieldCourseName}
	case TemplateUnenrollment:
		return []string{FieldName, FieldCourseName, FieldReason}
	case TemplatePayment:
		return []string{FieldName, FieldAmountPaid, FieldBatchName}
	}
	return nil
}

// ValidateBody revisa la sintaxis del cuerpo y, si name es un template
// conocido, que sólo use los campos que ese envío completa.
func ValidateBody(name, body string) error {
	used, err := placeholder.Fields(body)
	if err != nil {
		return err
	}
	allowed := Fields(name)
	if allowed == nil {
		return nil
	}
	for _, f := range used {
		if !slices.Contains(allowed, f) {
			return fmt.Errorf("%w: {%s} in %s (allowed: %s)", ErrFieldNotAvailable, f, name, strings.Join(allowed, ", "))
		}
	}
	return nil
}
