package email

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezfintutor/tutormail/internal/cache"
	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/store/adapters/memory"
)

// countingRepo cuenta lecturas y permite forzar errores.
type countingRepo struct {
	repository.EmailTemplateRepository
	gets  atomic.Int32
	err   error
	delay time.Duration
}

func (r *countingRepo) GetByName(ctx context.Context, name string) (*repository.EmailTemplate, error) {
	r.gets.Add(1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.EmailTemplateRepository.GetByName(ctx, name)
}

var welcomeDefault, _ = Default(TemplateWelcome)

func TestStoreResolver(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().EmailTemplates()
	r := NewResolver(repo)

	got, err := r.Resolve(ctx, TemplateWelcome, welcomeDefault)
	require.NoError(t, err)
	require.Equal(t, SourceDefault, got.Source)
	require.Equal(t, welcomeDefault.Subject, got.Subject)

	_, err = repo.Upsert(ctx, repository.UpsertEmailTemplateInput{Name: TemplateWelcome, Subject: "Hey", Body: "Yo {name}"})
	require.NoError(t, err)

	got, err = r.Resolve(ctx, TemplateWelcome, welcomeDefault)
	require.NoError(t, err)
	require.Equal(t, Resolved{Name: TemplateWelcome, Subject: "Hey", Body: "Yo {name}", Source: SourceStored}, got)
}

func TestStoreResolver_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &countingRepo{EmailTemplateRepository: memory.New().EmailTemplates(), err: boom}

	_, err := NewResolver(repo).Resolve(context.Background(), TemplateWelcome, welcomeDefault)
	require.ErrorIs(t, err, ErrTemplateLookup)
	require.ErrorIs(t, err, boom)
}

func TestCachedResolver_CachesHitsAndAbsence(t *testing.T) {
	ctx := context.Background()
	mem := memory.New().EmailTemplates()
	repo := &countingRepo{EmailTemplateRepository: mem}
	c := cache.NewMemory("", time.Minute)
	defer c.Close()
	r := NewCachedResolver(repo, c, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := r.Resolve(ctx, TemplateWelcome, welcomeDefault)
		require.NoError(t, err)
		require.Equal(t, SourceDefault, got.Source)
	}
	require.Equal(t, int32(1), repo.gets.Load())

	_, err := mem.Upsert(ctx, repository.UpsertEmailTemplateInput{Name: TemplateWelcome, Subject: "S", Body: "B"})
	require.NoError(t, err)

	// sigue cacheado hasta invalidar
	got, err := r.Resolve(ctx, TemplateWelcome, welcomeDefault)
	require.NoError(t, err)
	require.Equal(t, SourceDefault, got.Source)

	require.NoError(t, r.Invalidate(ctx, TemplateWelcome))
	got, err = r.Resolve(ctx, TemplateWelcome, welcomeDefault)
	require.NoError(t, err)
	require.Equal(t, SourceStored, got.Source)
	require.Equal(t, "S", got.Subject)
	require.Equal(t, int32(2), repo.gets.Load())
}

func TestCachedResolver_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{EmailTemplateRepository: memory.New().EmailTemplates(), err: errors.New("db down")}
	c := cache.NewMemory("", time.Minute)
	defer c.Close()
	r := NewCachedResolver(repo, c, time.Minute)

	_, err := r.Resolve(ctx, TemplatePayment, Template{})
	require.ErrorIs(t, err, ErrTemplateLookup)

	repo.err = nil
	got, err := r.Resolve(ctx, TemplatePayment, Template{Subject: "d"})
	require.NoError(t, err)
	require.Equal(t, SourceDefault, got.Source)
	require.Equal(t, int32(2), repo.gets.Load())
}

func TestCachedResolver_ConcurrentMissesShareLookup(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{EmailTemplateRepository: memory.New().EmailTemplates(), delay: 50 * time.Millisecond}
	c := cache.NewMemory("", time.Minute)
	defer c.Close()
	r := NewCachedResolver(repo, c, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(ctx, TemplateEnrollment, Template{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Less(t, repo.gets.Load(), int32(10))
}
