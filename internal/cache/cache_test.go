package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("tm", time.Minute)
	defer c.Close()

	_, err := c.Get(ctx, "tpl:welcome_email")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "tpl:welcome_email", []byte("v1"), 0))
	got, err := c.Get(ctx, "tpl:welcome_email")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	require.NoError(t, c.Delete(ctx, "tpl:welcome_email"))
	_, err = c.Get(ctx, "tpl:welcome_email")
	require.ErrorIs(t, err, ErrNotFound)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), st.Hits)
	require.Equal(t, int64(2), st.Misses)
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", time.Minute)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, "k")
		return IsNotFound(err)
	}, time.Second, 5*time.Millisecond)
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "memcached"})
	require.Error(t, err)
}

func TestRedis_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := New(ctx, Config{Kind: "redis", Addr: addr, Prefix: "tutormail-test", DefaultTTL: time.Minute})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}
