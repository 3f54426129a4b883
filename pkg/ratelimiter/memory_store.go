package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// defaultMaxKeys bounds the counter map. High key cardinality (for
// example spoofed source addresses) triggers opportunistic pruning of
// expired windows instead of unbounded growth.
const defaultMaxKeys = 10_000

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps fixed-window counters in a process-local map.
// Limits reset on process restart and are per-process in horizontally
// scaled deployments; that is an accepted property of this store, not
// something callers should paper over. Use RedisStore when a shared
// limit is explicitly wanted.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	maxKeys int
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMaxKeys overrides the key cap.
func WithMaxKeys(n int) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if n > 0 {
			ms.maxKeys = n
		}
	}
}

// NewMemoryStore creates an in-memory fixed-window store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		windows: make(map[string]*window),
		maxKeys: defaultMaxKeys,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Increment adds one request to the key's current window, starting a
// fresh window when none exists or the previous one has ended.
func (ms *MemoryStore) Increment(ctx context.Context, key string, windowLen time.Duration) (int64, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()

	w, ok := ms.windows[key]
	if !ok || !now.Before(w.resetAt) {
		if !ok && len(ms.windows) >= ms.maxKeys {
			ms.pruneExpiredLocked(now)
		}
		w = &window{resetAt: now.Add(windowLen)}
		ms.windows[key] = w
	}

	w.count++
	return w.count, w.resetAt, nil
}

// Reset clears the window for a key.
func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.windows, key)
	return nil
}

// pruneExpiredLocked drops windows that have already ended. Called
// with the mutex held, only when the cap is hit, so the common path
// stays O(1).
func (ms *MemoryStore) pruneExpiredLocked(now time.Time) {
	for key, w := range ms.windows {
		if !now.Before(w.resetAt) {
			delete(ms.windows, key)
		}
	}
}

// Len reports the number of tracked keys.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.windows)
}
