package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
)

type emailTemplateRepo struct {
	db *sql.DB
}

const templateColumns = `id, name, subject, body, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*repository.EmailTemplate, error) {
	var t repository.EmailTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *emailTemplateRepo) GetByName(ctx context.Context, name string) (*repository.EmailTemplate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM email_template WHERE name = ?`, name)
	return scanTemplate(row)
}

func (r *emailTemplateRepo) List(ctx context.Context) ([]repository.EmailTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM email_template ORDER BY name`)
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

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO email_template (id, name, subject, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE subject = VALUES(subject), body = VALUES(body), updated_at = VALUES(updated_at)`,
		uuid.NewString(), input.Name, input.Subject, input.Body, now, now,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByName(ctx, input.Name)
}

func (r *emailTemplateRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_template WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
