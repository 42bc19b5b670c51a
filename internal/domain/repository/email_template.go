package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Límites de las columnas name y subject (en caracteres).
const (
	MaxTemplateNameLen    = 100
	MaxTemplateSubjectLen = 255
)

// EmailTemplate es un override almacenado para un email transaccional.
// Name es único (welcome_email, enrollment_email, ...).
type EmailTemplate struct {
	ID        string    `json:"id" yaml:"id,omitempty" csv:"-"`
	Name      string    `json:"name" yaml:"name" csv:"name"`
	Subject   string    `json:"subject" yaml:"subject" csv:"subject"`
	Body      string    `json:"body" yaml:"body" csv:"body"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty" csv:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at,omitempty" csv:"-"`
}

// UpsertEmailTemplateInput contiene los datos para crear o reemplazar un template.
type UpsertEmailTemplateInput struct {
	Name    string
	Subject string
	Body    string
}

// Normalize recorta el nombre y valida los campos obligatorios.
func (in UpsertEmailTemplateInput) Normalize() (UpsertEmailTemplateInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Name) > MaxTemplateNameLen {
		return in, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, MaxTemplateNameLen)
	}
	if strings.TrimSpace(in.Subject) == "" {
		return in, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Subject) > MaxTemplateSubjectLen {
		return in, fmt.Errorf("%w: subject exceeds %d characters", ErrInvalidInput, MaxTemplateSubjectLen)
	}
	return in, nil
}

// EmailTemplateRepository define las operaciones sobre templates almacenados.
type EmailTemplateRepository interface {
	// GetByName busca un template por nombre exacto.
	// Retorna ErrNotFound si no existe.
	GetByName(ctx context.Context, name string) (*EmailTemplate, error)

	// List retorna todos los templates ordenados por nombre.
	List(ctx context.Context) ([]EmailTemplate, error)

	// Upsert crea el template o reemplaza subject/body si ya existe.
	Upsert(ctx context.Context, input UpsertEmailTemplateInput) (*EmailTemplate, error)

	// Delete elimina un template. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, name string) error
}
