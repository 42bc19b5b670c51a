// Package mysql implementa el store de templates sobre MySQL.
// Usa database/sql con github.com/go-sql-driver/mysql.
//
// Requisitos:
//   - MySQL 8.0+
//   - DSN: user:password@tcp(host:port)/database?parseTime=true
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/store"
	mysqlmigrations "github.com/ezfintutor/tutormail/migrations/mysql"
)

func init() {
	store.RegisterAdapter(&mysqlAdapter{})
}

type mysqlAdapter struct{}

func (a *mysqlAdapter) Name() string { return "mysql" }

func (a *mysqlAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	if cfg.DSN == "" {
		return nil, errors.New("mysql: DSN is required")
	}

	// parseTime es obligatorio para escanear DATETIME en time.Time
	mcfg, err := gomysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	mcfg.ParseTime = true
	if mcfg.Loc == nil {
		mcfg.Loc = time.UTC
	}

	db, err := sql.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping failed: %w", err)
	}

	return &mysqlConnection{db: db}, nil
}

type mysqlConnection struct {
	db *sql.DB
}

func (c *mysqlConnection) Name() string { return "mysql" }

func (c *mysqlConnection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *mysqlConnection) Close() error { return c.db.Close() }

func (c *mysqlConnection) EmailTemplates() repository.EmailTemplateRepository {
	return &emailTemplateRepo{db: c.db}
}

// Migrate implementa store.MigratableConnection.
func (c *mysqlConnection) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	m := store.NewMigrator(mysqlmigrations.FS, mysqlmigrations.Dir, store.DialectMySQL)
	return m.Run(ctx, store.DBExecutor{DB: c.db})
}
