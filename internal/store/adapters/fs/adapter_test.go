package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/store"
)

func TestFSStore_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	conn, err := store.Open(context.Background(), store.AdapterConfig{Name: "fs", Path: path})
	require.NoError(t, err)
	defer conn.Close()

	list, err := conn.EmailTemplates().List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = conn.EmailTemplates().GetByName(context.Background(), "welcome_email")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFSStore_UpsertPersistsAcrossConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates.yaml")

	conn, err := store.Open(ctx, store.AdapterConfig{Name: "fs", Path: path})
	require.NoError(t, err)
	_, err = conn.EmailTemplates().Upsert(ctx, repository.UpsertEmailTemplateInput{
		Name:    "enrollment_email",
		Subject: "You're in",
		Body:    "Hi {name}, welcome to {course_name}.",
	})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	reopened, err := store.Open(ctx, store.AdapterConfig{Name: "fs", Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.EmailTemplates().GetByName(ctx, "enrollment_email")
	require.NoError(t, err)
	require.Equal(t, "You're in", got.Subject)
	require.Equal(t, "Hi {name}, welcome to {course_name}.", got.Body)

	require.NoError(t, reopened.EmailTemplates().Delete(ctx, "enrollment_email"))
	require.ErrorIs(t, reopened.EmailTemplates().Delete(ctx, "enrollment_email"), repository.ErrNotFound)
}

func TestFSStore_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates: [::"), 0o600))

	_, err := store.Open(context.Background(), store.AdapterConfig{Name: "fs", Path: path})
	require.Error(t, err)
}

func TestFSStore_WatchReloadsExternalEdits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates.yaml")

	conn, err := store.Open(ctx, store.AdapterConfig{Name: "fs", Path: path, Watch: true})
	require.NoError(t, err)
	defer conn.Close()

	doc := "templates:\n  - name: payment_email\n    subject: Paid\n    body: \"Amount: {amount_paid}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	require.Eventually(t, func() bool {
		tpl, err := conn.EmailTemplates().GetByName(ctx, "payment_email")
		return err == nil && tpl.Subject == "Paid"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFSStore_OnChangeReportsNamesWrittenByOtherConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates.yaml")

	server, err := store.Open(ctx, store.AdapterConfig{Name: "fs", Path: path, Watch: true})
	require.NoError(t, err)
	defer server.Close()

	var (
		mu      sync.Mutex
		changed []string
	)
	notifier, ok := server.(store.ChangeNotifier)
	require.True(t, ok)
	notifier.OnChange(func(names []string) {
		mu.Lock()
		changed = append(changed, names...)
		mu.Unlock()
	})

	cli, err := store.Open(ctx, store.AdapterConfig{Name: "fs", Path: path})
	require.NoError(t, err)
	defer cli.Close()
	_, err = cli.EmailTemplates().Upsert(ctx, repository.UpsertEmailTemplateInput{Name: "welcome_email", Subject: "Hi", Body: "Hi {name}"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0 && changed[len(changed)-1] == "welcome_email"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestDiffNames(t *testing.T) {
	prev := map[string]repository.EmailTemplate{
		"a": {Name: "a", Subject: "s", Body: "b"},
		"b": {Name: "b", Subject: "s", Body: "b"},
		"c": {Name: "c", Subject: "s", Body: "b"},
	}
	next := map[string]repository.EmailTemplate{
		"a": {Name: "a", Subject: "s", Body: "b", UpdatedAt: time.Now()},
		"b": {Name: "b", Subject: "s", Body: "changed"},
		"d": {Name: "d", Subject: "s", Body: "b"},
	}
	require.Equal(t, []string{"b", "c", "d"}, diffNames(prev, next))
	require.Empty(t, diffNames(next, next))
}
