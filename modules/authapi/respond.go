package authapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/manofwisdom/auth/pkg/ratelimiter"
)

// envelope is the uniform JSON response shape of the auth API.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	User    *user  `json:"user,omitempty"`
}

// user is the public projection of an account; internal fields like the
// token hash never leave the server.
type user struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	VerifiedAt    *time.Time `json:"email_verified_at,omitempty"`
}

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, envelope{Success: false, Error: msg})
}

// respondRateLimited writes a 429 with a Retry-After header in whole
// seconds, rounded up so clients never retry early.
func respondRateLimited(w http.ResponseWriter, result *ratelimiter.Result) {
	retry := result.RetryAfter()
	seconds := int(retry / time.Second)
	if retry%time.Second > 0 {
		seconds++
	}
	if seconds < 1 {
		seconds = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	respondError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}
