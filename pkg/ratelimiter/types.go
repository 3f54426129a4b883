package ratelimiter

import "time"

// Config defines a fixed window.
type Config struct {
	MaxRequests int           // Requests allowed per window
	Window      time.Duration // Window length
}

// LoginConfig is the shared limit for login (magic-link issuance)
// endpoints: 5 requests per 15 minutes per client IP.
func LoginConfig() Config {
	return Config{MaxRequests: 5, Window: 15 * time.Minute}
}

// VerifyConfig is the shared limit for magic-link verification
// endpoints: 10 requests per 15 minutes per client IP.
func VerifyConfig() Config {
	return Config{MaxRequests: 10, Window: 15 * time.Minute}
}

// Result describes the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time // When the current window ends
}

// RetryAfter returns how long the client must wait before the window
// resets. Zero when the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	d := time.Until(r.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
