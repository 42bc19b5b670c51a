// Package fs implementa el store de templates sobre un archivo YAML.
//
// Formato:
//
//	templates:
//	  - name: welcome_email
//	    subject: Welcome to EzfinTutor!
//	    body: |
//	      Hi {name}, ...
//
// Con Watch=true el archivo se recarga cuando otro proceso lo modifica
// (fsnotify sobre el directorio, para soportar editores que reemplazan el archivo).
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
	"github.com/ezfintutor/tutormail/internal/store"
	"github.com/ezfintutor/tutormail/internal/util/atomicwrite"
)

func init() {
	store.RegisterAdapter(&fsAdapter{})
}

type fsAdapter struct{}

func (a *fsAdapter) Name() string { return "fs" }

func (a *fsAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	path := cfg.Path
	if path == "" {
		path = cfg.DSN
	}
	if path == "" {
		return nil, errors.New("fs: path is required")
	}

	c := &Connection{path: filepath.Clean(path), items: map[string]repository.EmailTemplate{}}
	if _, err := c.reload(); err != nil {
		return nil, err
	}
	if cfg.Watch {
		if err := c.watch(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// fileDoc es la forma del YAML en disco.
type fileDoc struct {
	Templates []repository.EmailTemplate `yaml:"templates"`
}

// Connection mantiene el contenido del archivo en memoria.
type Connection struct {
	path string

	mu       sync.RWMutex
	items    map[string]repository.EmailTemplate
	onChange func(names []string)

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

func (c *Connection) Name() string { return "fs" }

func (c *Connection) Ping(ctx context.Context) error {
	dir := filepath.Dir(c.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("fs: %w", err)
	}
	return nil
}

func (c *Connection) Close() error {
	if c.watcher == nil {
		return nil
	}
	close(c.done)
	err := c.watcher.Close()
	c.wg.Wait()
	c.watcher = nil
	return err
}

func (c *Connection) EmailTemplates() repository.EmailTemplateRepository {
	return &templateRepo{c: c}
}

// OnChange registra fn para las recargas del watcher. Las escrituras hechas
// por esta misma conexión no la disparan.
func (c *Connection) OnChange(fn func(names []string)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// reload lee el archivo completo. Un archivo inexistente equivale a vacío.
// Devuelve los nombres agregados, borrados o con subject/body distinto.
func (c *Connection) reload() ([]string, error) {
	items := map[string]repository.EmailTemplate{}

	b, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("fs: read %s: %w", c.path, err)
	default:
		var doc fileDoc
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("fs: parse %s: %w", c.path, err)
		}
		for _, t := range doc.Templates {
			if t.Name == "" {
				continue
			}
			items[t.Name] = t
		}
	}

	c.mu.Lock()
	changed := diffNames(c.items, items)
	c.items = items
	c.mu.Unlock()
	return changed, nil
}

func diffNames(prev, next map[string]repository.EmailTemplate) []string {
	var out []string
	for name, p := range prev {
		n, ok := next[name]
		if !ok || n.Subject != p.Subject || n.Body != p.Body {
			out = append(out, name)
		}
	}
	for name := range next {
		if _, ok := prev[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// persist escribe el estado actual. Se llama con c.mu tomado en escritura.
func (c *Connection) persist() error {
	doc := fileDoc{Templates: make([]repository.EmailTemplate, 0, len(c.items))}
	for _, t := range c.items {
		doc.Templates = append(doc.Templates, t)
	}
	sort.Slice(doc.Templates, func(i, j int) bool { return doc.Templates[i].Name < doc.Templates[j].Name })

	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("fs: marshal: %w", err)
	}
	if err := atomicwrite.WriteFile(c.path, b, 0o600); err != nil {
		return fmt.Errorf("fs: write %s: %w", c.path, err)
	}
	return nil
}

func (c *Connection) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fs: watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(c.path)); err != nil {
		w.Close()
		return fmt.Errorf("fs: watch %s: %w", filepath.Dir(c.path), err)
	}
	c.watcher = w
	c.done = make(chan struct{})

	log := logger.L().With(logger.Component("fs_store"), logger.String("path", c.path))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != c.path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				changed, err := c.reload()
				if err != nil {
					log.Warn("template file reload failed", logger.Err(err))
					continue
				}
				if len(changed) == 0 {
					continue
				}
				log.Debug("template file reloaded", logger.Strings("templates", changed))
				c.mu.RLock()
				fn := c.onChange
				c.mu.RUnlock()
				if fn != nil {
					fn(changed)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("template file watcher error", logger.Err(err))
			}
		}
	}()
	return nil
}

type templateRepo struct {
	c *Connection
}

func (r *templateRepo) GetByName(ctx context.Context, name string) (*repository.EmailTemplate, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	t, ok := r.c.items[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *templateRepo) List(ctx context.Context) ([]repository.EmailTemplate, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	out := make([]repository.EmailTemplate, 0, len(r.c.items))
	for _, t := range r.c.items {
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

	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	now := time.Now().UTC()
	prev, existed := r.c.items[input.Name]
	t := prev
	if !existed {
		t = repository.EmailTemplate{ID: uuid.NewString(), Name: input.Name, CreatedAt: now}
	}
	t.Subject = input.Subject
	t.Body = input.Body
	t.UpdatedAt = now

	r.c.items[input.Name] = t
	if err := r.c.persist(); err != nil {
		if existed {
			r.c.items[input.Name] = prev
		} else {
			delete(r.c.items, input.Name)
		}
		return nil, err
	}
	return &t, nil
}

func (r *templateRepo) Delete(ctx context.Context, name string) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	prev, ok := r.c.items[name]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.c.items, name)
	if err := r.c.persist(); err != nil {
		r.c.items[name] = prev
		return err
	}
	return nil
}
