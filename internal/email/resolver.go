package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ezfintutor/tutormail/internal/cache"
	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/metrics"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// Source indica de dónde salió un template resuelto.
type Source string

const (
	SourceStored  Source = "stored"
	SourceDefault Source = "default"
)

// Resolved es el resultado de Resolve.
type Resolved struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Source  Source `json:"source"`
}

// Resolver devuelve el template guardado para name o, si no existe, def.
// Sólo "not found" cae al default; cualquier otro error del store se devuelve.
type Resolver interface {
	Resolve(ctx context.Context, name string, def Template) (Resolved, error)
}

// StoreResolver consulta el repositorio en cada llamada.
type StoreResolver struct {
	repo repository.EmailTemplateRepository
}

func NewResolver(repo repository.EmailTemplateRepository) *StoreResolver {
	return &StoreResolver{repo: repo}
}

func (r *StoreResolver) Resolve(ctx context.Context, name string, def Template) (Resolved, error) {
	e, err := lookup(ctx, r.repo, name)
	if err != nil {
		return Resolved{}, err
	}
	return e.resolve(name, def), nil
}

// entry es lo que se guarda en cache; Found=false cachea la ausencia.
type entry struct {
	Found   bool   `json:"found"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

func (e entry) resolve(name string, def Template) Resolved {
	if e.Found {
		return Resolved{Name: name, Subject: e.Subject, Body: e.Body, Source: SourceStored}
	}
	return Resolved{Name: name, Subject: def.Subject, Body: def.Body, Source: SourceDefault}
}

func lookup(ctx context.Context, repo repository.EmailTemplateRepository, name string) (entry, error) {
	t, err := repo.GetByName(ctx, name)
	if repository.IsNotFound(err) {
		return entry{}, nil
	}
	if err != nil {
		return entry{}, fmt.Errorf("%w: %q: %w", ErrTemplateLookup, name, err)
	}
	return entry{Found: true, Subject: t.Subject, Body: t.Body}, nil
}

// ─── Cache ───

const cacheKeyPrefix = "email_tpl:"

// CachedResolver agrega un cache read-through delante del repositorio.
// Misses concurrentes para el mismo nombre comparten una sola consulta.
type CachedResolver struct {
	repo  repository.EmailTemplateRepository
	cache cache.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedResolver(repo repository.EmailTemplateRepository, c cache.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{repo: repo, cache: c, ttl: ttl}
}

func (r *CachedResolver) Resolve(ctx context.Context, name string, def Template) (Resolved, error) {
	log := logger.From(ctx).With(logger.Component("template_cache"), logger.Template(name))

	if b, err := r.cache.Get(ctx, cacheKeyPrefix+name); err == nil {
		var e entry
		if jerr := json.Unmarshal(b, &e); jerr == nil {
			return e.resolve(name, def), nil
		}
		log.Warn("discarding undecodable cache entry")
	} else if !cache.IsNotFound(err) {
		// cache caído: seguimos contra el store
		log.Warn("cache get failed", logger.Err(err))
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		e, err := lookup(ctx, r.repo, name)
		if err != nil {
			return entry{}, err
		}
		if b, jerr := json.Marshal(e); jerr == nil {
			if serr := r.cache.Set(ctx, cacheKeyPrefix+name, b, r.ttl); serr != nil {
				log.Warn("cache set failed", logger.Err(serr))
			}
		}
		return e, nil
	})
	if err != nil {
		return Resolved{}, err
	}
	return v.(entry).resolve(name, def), nil
}

// Invalidate descarta la entrada de name. Llamar después de escribir en el store.
func (r *CachedResolver) Invalidate(ctx context.Context, name string) error {
	return r.cache.Delete(ctx, cacheKeyPrefix+name)
}

// Invalidator lo implementan los resolvers con estado.
type Invalidator interface {
	Invalidate(ctx context.Context, name string) error
}

func observeResolution(res Resolved) {
	metrics.ObserveResolution(res.Name, string(res.Source))
}
