// Package sqlite implementa el store de templates sobre SQLite (modernc.org/sqlite,
// sin cgo). Pensado para desarrollo local y tests; DSN ":memory:" o un path.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/store"
	sqlitemigrations "github.com/ezfintutor/tutormail/migrations/sqlite"
)

func init() {
	store.RegisterAdapter(&sqliteAdapter{})
}

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = cfg.Path
	}
	if dsn == "" {
		return nil, errors.New("sqlite: DSN or path is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Una sola conexión: ":memory:" es por conexión y SQLite serializa escrituras igual.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: pragma: %w", err)
	}

	return &sqliteConnection{db: db}, nil
}

type sqliteConnection struct {
	db *sql.DB
}

func (c *sqliteConnection) Name() string { return "sqlite" }

func (c *sqliteConnection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *sqliteConnection) Close() error { return c.db.Close() }

func (c *sqliteConnection) EmailTemplates() repository.EmailTemplateRepository {
	return &emailTemplateRepo{db: c.db}
}

// Migrate implementa store.MigratableConnection.
func (c *sqliteConnection) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	m := store.NewMigrator(sqlitemigrations.FS, sqlitemigrations.Dir, store.DialectSQLite)
	return m.Run(ctx, store.DBExecutor{DB: c.db})
}
