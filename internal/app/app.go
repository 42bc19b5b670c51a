// Package app arma las dependencias del servicio a partir de la config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ezfintutor/tutormail/internal/cache"
	"github.com/ezfintutor/tutormail/internal/config"
	"github.com/ezfintutor/tutormail/internal/email"
	"github.com/ezfintutor/tutormail/internal/http/controllers/health"
	"github.com/ezfintutor/tutormail/internal/http/controllers/notifications"
	"github.com/ezfintutor/tutormail/internal/http/controllers/templates"
	mw "github.com/ezfintutor/tutormail/internal/http/middlewares"
	"github.com/ezfintutor/tutormail/internal/http/router"
	"github.com/ezfintutor/tutormail/internal/metrics"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
	"github.com/ezfintutor/tutormail/internal/store"

	// registra los drivers de storage
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/all"
)

// Version se setea con -ldflags en el build.
var Version = "dev"

// App contiene las dependencias ya conectadas.
type App struct {
	Config      *config.Config
	Store       store.Connection
	Cache       cache.Client // nil con cache.kind=none
	Resolver    email.Resolver
	Invalidator email.Invalidator // nil sin cache
	Sender      email.Sender
	Email       email.Service
}

// Options permite reemplazar piezas (tests, CLI).
type Options struct {
	Sender email.Sender
	// WithoutSMTP evita validar/armar SMTP (comandos que sólo tocan templates).
	WithoutSMTP bool
}

// New abre el store, el cache y el sender según cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.L().With(logger.Component("app"))

	conn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Store: conn}

	if cfg.Storage.Migrate {
		if _, err := Migrate(ctx, conn); err != nil {
			a.Close()
			return nil, err
		}
	}

	repo := conn.EmailTemplates()
	switch cfg.Cache.Kind {
	case "none":
		a.Resolver = email.NewResolver(repo)
	default:
		c, err := cache.New(ctx, cache.Config{
			Kind:       cfg.Cache.Kind,
			DefaultTTL: cfg.Cache.TTL,
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			Prefix:     cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		cr := email.NewCachedResolver(repo, c, cfg.Cache.TTL)
		a.Cache, a.Resolver, a.Invalidator = c, cr, cr

		// cambios hechos por otros procesos (CLI, edición del archivo)
		if n, ok := conn.(store.ChangeNotifier); ok {
			n.OnChange(func(names []string) {
				invalidateAll(context.Background(), cr, names)
			})
		}
	}

	a.Sender = opts.Sender
	if a.Sender == nil && opts.WithoutSMTP {
		a.Sender = email.LogSender{}
	}
	if a.Sender == nil {
		s, err := NewSender(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Sender = s
	}

	a.Email, err = email.NewService(email.ServiceConfig{Resolver: a.Resolver, Sender: a.Sender})
	if err != nil {
		a.Close()
		return nil, err
	}

	log.Info("app ready",
		logger.Driver(conn.Name()),
		logger.String("cache", cfg.Cache.Kind),
		logger.String("version", Version),
	)
	return a, nil
}

func invalidateAll(ctx context.Context, inv email.Invalidator, names []string) {
	for _, name := range names {
		if err := inv.Invalidate(ctx, name); err != nil {
			logger.L().Warn("template cache invalidation failed", logger.Template(name), logger.Err(err))
		}
	}
	logger.L().Info("templates changed externally", logger.Strings("templates", names))
}

// OpenStore conecta el driver configurado.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Connection, error) {
	conn, err := store.Open(ctx, store.AdapterConfig{
		Name:            cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		Path:            cfg.Storage.Path,
		Watch:           cfg.Storage.Watch,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", cfg.Storage.Driver, err)
	}
	return conn, nil
}

// Migrate aplica migraciones si el driver las soporta.
func Migrate(ctx context.Context, conn store.Connection) (*store.MigrationResult, error) {
	mc, ok := conn.(store.MigratableConnection)
	if !ok {
		return &store.MigrationResult{}, nil
	}
	res, err := mc.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", conn.Name(), err)
	}
	logger.L().Info("migrations applied",
		logger.Driver(conn.Name()),
		logger.Count(len(res.Applied)),
		logger.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// NewSender construye el sender SMTP. Sin smtp.host: LogSender fuera de prod.
func NewSender(cfg *config.Config) (email.Sender, error) {
	if cfg.SMTP.Host == "" {
		if cfg.IsProd() {
			return nil, errors.New("smtp.host is required in prod")
		}
		logger.L().Warn("smtp.host not set; emails will only be logged")
		return email.LogSender{}, nil
	}
	if cfg.SMTP.From == "" {
		return nil, errors.New("smtp.from is required")
	}
	pass, err := cfg.SMTPPassword()
	if err != nil {
		return nil, err
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		Username:           cfg.SMTP.Username,
		Password:           pass,
		From:               cfg.SMTP.From,
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		Timeout:            cfg.SMTP.Timeout,
	}), nil
}

// Handler arma el router HTTP completo. En prod exige admin.enforce.
func (a *App) Handler() (http.Handler, error) {
	if a.Config.IsProd() && !a.Config.Admin.Enforce {
		return nil, errors.New("admin.enforce is required in prod")
	}
	if err := metrics.Register(nil); err != nil {
		return nil, err
	}

	hc := &health.Controller{Store: a.Store, Version: Version}
	if a.Cache != nil {
		hc.Cache = a.Cache
	}

	return router.New(router.Deps{
		Health:        hc,
		Templates:     &templates.Controller{Repo: a.Store.EmailTemplates(), Resolver: a.Resolver, Invalidator: a.Invalidator},
		Notifications: &notifications.Controller{Service: a.Email},
		Admin: mw.AdminConfig{
			Enforce:    a.Config.Admin.Enforce,
			APIKeyHash: a.Config.Admin.APIKeyHash,
			JWTSecret:  a.Config.Admin.JWTSecret,
			JWTIssuer:  a.Config.Admin.JWTIssuer,
		},
		Metrics: metrics.Handler(),
	}), nil
}

// Close libera store y cache. El store va primero para cortar el watcher
// antes de cerrar el cache que invalida.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	return errors.Join(errs...)
}
