// Package memory implementa un store de templates en memoria.
// Útil para desarrollo y tests; no persiste nada.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	return New(), nil
}

// Connection es un store en memoria. Seguro para uso concurrente.
type Connection struct {
	repo *templateRepo
}

// New crea un store vacío.
func New() *Connection {
	return &Connection{repo: &templateRepo{items: make(map[string]repository.EmailTemplate)}}
}

func (c *Connection) Name() string { return "memory" }
func (c *Connection) Ping(ctx context.Context) error { return nil }
func (c *Connection) Close() error { return nil }
func (c *Connection) EmailTemplates() repository.EmailTemplateRepository { return c.repo }

type templateRepo struct {
	mu    sync.RWMutex
	items map[string]repository.EmailTemplate
}

func (r *templateRepo) GetByName(ctx context.Context, name string) (*repository.EmailTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *templateRepo) List(ctx context.Context) ([]repository.EmailTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.EmailTemplate, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *templateRepo) Upsert(ctx context.Context, input repository.UpsertEmailTemplateInput) (*repository.EmailTemplate, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	t, ok := r.items[input.Name]
	if !ok {
		t = repository.EmailTemplate{ID: uuid.NewString(), Name: input.Name, CreatedAt: now}
	}
	t.Subject = input.Subject
	t.Body = input.Body
	t.UpdatedAt = now
	r.items[input.Name] = t
	return &t, nil
}

func (r *templateRepo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[name]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, name)
	return nil
}
