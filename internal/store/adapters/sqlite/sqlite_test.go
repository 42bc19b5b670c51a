package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/store"
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/sqlite"
)

func openMigrated(t *testing.T) store.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := store.Open(ctx, store.AdapterConfig{Name: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mc, ok := conn.(store.MigratableConnection)
	require.True(t, ok, "sqlite connection must be migratable")
	res, err := mc.Migrate(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1}, res.Applied)
	return conn
}

func TestSQLiteMigrate_Idempotent(t *testing.T) {
	conn := openMigrated(t)

	res, err := conn.(store.MigratableConnection).Migrate(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Applied)
	require.Equal(t, []int{1}, res.Skipped)
}

func TestSQLiteEmailTemplates_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := openMigrated(t).EmailTemplates()

	_, err := repo.GetByName(ctx, "welcome_email")
	require.ErrorIs(t, err, repository.ErrNotFound)

	created, err := repo.Upsert(ctx, repository.UpsertEmailTemplateInput{
		Name:    "  welcome_email ",
		Subject: "Hola!",
		Body:    "Hi {name}",
	})
	require.NoError(t, err)
	require.Equal(t, "welcome_email", created.Name)
	require.NotEmpty(t, created.ID)

	time.Sleep(2 * time.Millisecond)
	updated, err := repo.Upsert(ctx, repository.UpsertEmailTemplateInput{
		Name:    "welcome_email",
		Subject: "Welcome back",
		Body:    "Hello {name}",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID, "upsert must keep the row identity")
	require.Equal(t, "Welcome back", updated.Subject)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = repo.Upsert(ctx, repository.UpsertEmailTemplateInput{Name: "payment_email", Subject: "Paid", Body: "{amount_paid}"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, tpl := range list {
		names = append(names, tpl.Name)
	}
	if diff := cmp.Diff([]string{"payment_email", "welcome_email"}, names); diff != "" {
		t.Fatalf("List() names mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, repo.Delete(ctx, "welcome_email"))
	require.ErrorIs(t, repo.Delete(ctx, "welcome_email"), repository.ErrNotFound)
}

func TestSQLiteEmailTemplates_RejectsInvalidInput(t *testing.T) {
	repo := openMigrated(t).EmailTemplates()

	_, err := repo.Upsert(context.Background(), repository.UpsertEmailTemplateInput{Name: " ", Subject: "x"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = repo.Upsert(context.Background(), repository.UpsertEmailTemplateInput{Name: "a", Subject: ""})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
