package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manofwisdom/auth/pkg/ratelimiter"
)

func newRedisStore(t *testing.T) (*ratelimiter.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return ratelimiter.NewRedisStore(client, "test"), mr
}

func TestRedisStore_Increment(t *testing.T) {
	t.Parallel()

	t.Run("first increment stamps the window ttl", func(t *testing.T) {
		t.Parallel()

		store, mr := newRedisStore(t)
		ctx := context.Background()

		count, resetAt, err := store.Increment(ctx, "1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.WithinDuration(t, time.Now().Add(time.Minute), resetAt, 5*time.Second)

		ttl := mr.TTL("test:1.2.3.4")
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("counts within a window without restamping", func(t *testing.T) {
		t.Parallel()

		store, mr := newRedisStore(t)
		ctx := context.Background()

		for want := int64(1); want <= 5; want++ {
			count, _, err := store.Increment(ctx, "k", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, count)
		}

		// Burn half the window; further increments must not extend it.
		mr.FastForward(30 * time.Second)
		_, resetAt, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(30*time.Second), resetAt, 5*time.Second)
	})

	t.Run("window elapses and the count starts over", func(t *testing.T) {
		t.Parallel()

		store, mr := newRedisStore(t)
		ctx := context.Background()

		for range 3 {
			_, _, err := store.Increment(ctx, "k", time.Minute)
			require.NoError(t, err)
		}

		mr.FastForward(61 * time.Second)

		count, _, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "expired key should start a fresh window")
	})

	t.Run("keys are isolated by prefix and key", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		_, _, err := store.Increment(ctx, "a", time.Minute)
		require.NoError(t, err)

		count, _, err := store.Increment(ctx, "b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestRedisStore_Reset(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx, "k"))

	count, _, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "reset key starts a fresh window")
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)
	mr.Close()

	_, _, err := store.Increment(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
}
