package ratelimiter

import "errors"

var (
	// ErrInvalidConfig indicates an unusable limiter configuration.
	ErrInvalidConfig = errors.New("invalid rate limiter config")
	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("rate limiter store unavailable")
)
