package ratelimiter

import (
	"context"
	"fmt"
)

// Limiter is a fixed-window rate limiter: requests are counted per key
// within a window that resets wholesale at the window boundary. Window
// reset is lazy, checked on access rather than timer-driven.
//
// One Limiter instance is shared per endpoint class (login, verify),
// constructed once at the composition root and passed to whatever
// needs it.
type Limiter struct {
	store  Store
	config Config
}

// New creates a fixed-window limiter over the given store.
func New(store Store, config Config) (*Limiter, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}

	return &Limiter{
		store:  store,
		config: config,
	}, nil
}

// Check records one request for key and reports whether it is within
// the limit. The count is incremented even for denied requests; a
// client hammering the endpoint keeps the window saturated.
func (l *Limiter) Check(ctx context.Context, key string) (*Result, error) {
	count, resetAt, err := l.store.Increment(ctx, key, l.config.Window)
	if err != nil {
		return nil, err
	}

	remaining := l.config.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(l.config.MaxRequests),
		Limit:     l.config.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func (c Config) validate() error {
	if c.MaxRequests <= 0 {
		return fmt.Errorf("%w: max requests must be positive, got %d", ErrInvalidConfig, c.MaxRequests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}
