package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Formato de archivo: {version}_{name}.sql (ej: 0001_email_template.sql).
// Cada archivo contiene una sola sentencia (MySQL sin multiStatements).

// Migrator aplica migraciones SQL embebidas.
type Migrator struct {
	migrationsFS  embed.FS
	migrationsDir string
	dialect       Dialect
}

// Dialect abstrae las diferencias de SQL entre motores.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// MigrationExecutor abstrae pgx vs database/sql.
type MigrationExecutor interface {
	Exec(ctx context.Context, query string, args ...any) error
	QueryInts(ctx context.Context, query string) ([]int, error)
}

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationResult resultado de aplicar migraciones.
type MigrationResult struct {
	Applied  []int         `json:"applied"`
	Skipped  []int         `json:"skipped"`
	Duration time.Duration `json:"duration_ns"`
}

var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// NewMigrator crea un Migrator sobre el FS embebido.
func NewMigrator(migrationsFS embed.FS, dir string, dialect Dialect) *Migrator {
	return &Migrator{migrationsFS: migrationsFS, migrationsDir: dir, dialect: dialect}
}

// ParseMigrations lee y ordena las migraciones del FS embebido.
func (m *Migrator) ParseMigrations() ([]Migration, error) {
	var out []Migration
	err := fs.WalkDir(m.migrationsFS, m.migrationsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matches := migrationFilePattern.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil
		}
		version, _ := strconv.Atoi(matches[1])
		content, err := m.migrationsFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		out = append(out, Migration{Version: version, Name: matches[2], SQL: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Run aplica las migraciones pendientes en orden.
func (m *Migrator) Run(ctx context.Context, exec MigrationExecutor) (*MigrationResult, error) {
	start := time.Now()
	res := &MigrationResult{}

	if err := exec.Exec(ctx, m.createTableSQL()); err != nil {
		return res, fmt.Errorf("creating migrations table: %w", err)
	}

	versions, err := exec.QueryInts(ctx, "SELECT version FROM _migrations")
	if err != nil {
		return res, fmt.Errorf("reading applied migrations: %w", err)
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}

	migrations, err := m.ParseMigrations()
	if err != nil {
		return res, fmt.Errorf("parsing migrations: %w", err)
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			res.Skipped = append(res.Skipped, mig.Version)
			continue
		}
		if err := exec.Exec(ctx, mig.SQL); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("applying migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		if err := exec.Exec(ctx, m.insertSQL(), mig.Version, mig.Name); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("recording migration %04d: %w", mig.Version, err)
		}
		res.Applied = append(res.Applied, mig.Version)
	}

	res.Duration = time.Since(start)
	return res, nil
}

func (m *Migrator) createTableSQL() string {
	switch m.dialect {
	case DialectPostgres:
		return `CREATE TABLE IF NOT EXISTS _migrations (
			version INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`
	case DialectMySQL:
		return `CREATE TABLE IF NOT EXISTS _migrations (
			version INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`
	default:
		return `CREATE TABLE IF NOT EXISTS _migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`
	}
}

func (m *Migrator) insertSQL() string {
	if m.dialect == DialectPostgres {
		return "INSERT INTO _migrations (version, name) VALUES ($1, $2)"
	}
	return "INSERT INTO _migrations (version, name) VALUES (?, ?)"
}
