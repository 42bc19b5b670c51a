// Package dto contiene los cuerpos de request/response de la API HTTP.
package dto

import "time"

// EmailTemplateResponse es un override almacenado.
type EmailTemplateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListEmailTemplatesResponse struct {
	Templates []EmailTemplateResponse `json:"templates"`
}

// UpsertEmailTemplateRequest es el body de PUT /v1/admin/email-templates/{name}.
type UpsertEmailTemplateRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EffectiveTemplateResponse es lo que se usaría al enviar ahora.
type EffectiveTemplateResponse struct {
	Name    string   `json:"name"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Source  string   `json:"source"` // stored | default
	Fields  []string `json:"fields"` // campos que completa el envío
}

// PreviewRequest: si Body es vacío se usa el template efectivo.
// Values pisa los valores de ejemplo.
type PreviewRequest struct {
	Subject string            `json:"subject,omitempty"`
	Body    string            `json:"body,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
}

type PreviewResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
