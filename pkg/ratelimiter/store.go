package ratelimiter

import (
	"context"
	"time"
)

// Store persists fixed-window counters.
type Store interface {
	// Increment records one request for key and returns the count of
	// requests in the current window together with the time the window
	// resets. Implementations start a new window when none is active.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)

	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}
