// Package store provee el registry de adapters de almacenamiento de templates.
//
// Cada adapter (pg, mysql, sqlite, fs, memory) se registra en su init().
// El binario importa internal/store/adapters/all para tenerlos disponibles.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
)

// Adapter crea conexiones a un backend concreto.
type Adapter interface {
	// Name retorna el nombre del driver ("postgres", "mysql", "sqlite", "fs", "memory").
	Name() string

	// Connect abre la conexión y verifica que el backend responde.
	Connect(ctx context.Context, cfg AdapterConfig) (Connection, error)
}

// Connection es una conexión activa a un backend.
type Connection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	EmailTemplates() repository.EmailTemplateRepository
}

// MigratableConnection la implementan las conexiones SQL.
type MigratableConnection interface {
	Migrate(ctx context.Context) (*MigrationResult, error)
}

// ChangeNotifier la implementan las conexiones que detectan cambios hechos
// por otros procesos (fs con Watch). fn recibe los nombres que cambiaron.
type ChangeNotifier interface {
	OnChange(fn func(names []string))
}

// AdapterConfig configuración para conectar a un backend.
type AdapterConfig struct {
	// Name del adapter a usar.
	Name string

	// DSN connection string (postgres, mysql, sqlite).
	DSN string

	// Path al archivo YAML (fs).
	Path string

	// Watch recarga el archivo YAML cuando cambia en disco (fs).
	Watch bool

	// Pool settings (SQL).
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter. Panic si el nombre ya existe.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("store: adapter %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open abre una conexión con el adapter indicado en cfg.Name.
func Open(ctx context.Context, cfg AdapterConfig) (Connection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("store: adapter %q not registered (available: %v)", cfg.Name, ListAdapters())
	}
	return a.Connect(ctx, cfg)
}
