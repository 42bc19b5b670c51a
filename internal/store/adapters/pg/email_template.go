package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
)

type emailTemplateRepo struct {
	pool *pgxpool.Pool
}

const templateColumns = `id::text, name, subject, body, created_at, updated_at`

func scanTemplate(row pgx.Row) (*repository.EmailTemplate, error) {
	var t repository.EmailTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *emailTemplateRepo) GetByName(ctx context.Context, name string) (*repository.EmailTemplate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM email_template WHERE name = $1`, name)
	return scanTemplate(row)
}

func (r *emailTemplateRepo) List(ctx context.Context) ([]repository.EmailTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM email_template ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *emailTemplateRepo) Upsert(ctx context.Context, input repository.UpsertEmailTemplateInput) (*repository.EmailTemplate, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO email_template (id, name, subject, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE
		SET subject = EXCLUDED.subject, body = EXCLUDED.body, updated_at = NOW()
		RETURNING `+templateColumns,
		uuid.NewString(), input.Name, input.Subject, input.Body,
	)
	return scanTemplate(row)
}

func (r *emailTemplateRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_template WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
