package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps fixed-window counters in Redis so limits are shared
// across horizontally scaled instances. This is an explicit opt-in at
// the composition root; the in-memory store remains the default.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed fixed-window store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// Increment bumps the counter for key, attaching the window TTL when
// the key is created. INCR and EXPIRE run in one pipeline; the window
// boundary is whatever the key's remaining TTL says it is, so every
// instance agrees on it.
func (rs *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	k := rs.prefix + ":" + key

	pipe := rs.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}

	count := incr.Val()

	remaining, err := ttl.Result()
	if err != nil || remaining < 0 {
		// Key was just created (PTTL returns -1 for keys without a TTL),
		// or the TTL read failed. Stamp the window length either way;
		// EXPIRE NX keeps an existing TTL intact.
		remaining = window
		if err := rs.client.ExpireNX(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
		}
	}

	return count, time.Now().Add(remaining), nil
}

// Reset clears the counter for key.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.prefix+":"+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
