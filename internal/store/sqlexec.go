package store

import (
	"context"
	"database/sql"
)

// DBExecutor adapta *sql.DB a MigrationExecutor (mysql, sqlite).
type DBExecutor struct {
	DB *sql.DB
}

func (e DBExecutor) Exec(ctx context.Context, query string, args ...any) error {
	_, err := e.DB.ExecContext(ctx, query, args...)
	return err
}

func (e DBExecutor) QueryInts(ctx context.Context, query string) ([]int, error) {
	rows, err := e.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
