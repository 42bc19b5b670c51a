package mysql_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/store"
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/mysql"
)

func TestMySQLAdapterRegistered(t *testing.T) {
	adapter, ok := store.GetAdapter("mysql")
	require.True(t, ok, "MySQL adapter not registered")
	require.Equal(t, "mysql", adapter.Name())
}

func TestMySQLAdapterConnectRequiresDSN(t *testing.T) {
	_, err := store.Open(context.Background(), store.AdapterConfig{Name: "mysql"})
	require.Error(t, err)
}

func TestMySQLAdapterRejectsMalformedDSN(t *testing.T) {
	_, err := store.Open(context.Background(), store.AdapterConfig{Name: "mysql", DSN: "not a dsn"})
	require.Error(t, err)
}

// Requiere MYSQL_TEST_DSN apuntando a una base descartable.
func TestMySQLEmailTemplates_Integration(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	ctx := context.Background()

	conn, err := store.Open(ctx, store.AdapterConfig{Name: "mysql", DSN: dsn})
	require.NoError(t, err)
	defer conn.Close()

	mc, ok := conn.(store.MigratableConnection)
	require.True(t, ok)
	_, err = mc.Migrate(ctx)
	require.NoError(t, err)

	repo := conn.EmailTemplates()
	_ = repo.Delete(ctx, "it_mysql")

	_, err = repo.Upsert(ctx, repository.UpsertEmailTemplateInput{Name: "it_mysql", Subject: "s1", Body: "b1"})
	require.NoError(t, err)
	got, err := repo.Upsert(ctx, repository.UpsertEmailTemplateInput{Name: "it_mysql", Subject: "s2", Body: "b2"})
	require.NoError(t, err)
	require.Equal(t, "s2", got.Subject)

	require.NoError(t, repo.Delete(ctx, "it_mysql"))
	_, err = repo.GetByName(ctx, "it_mysql")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
