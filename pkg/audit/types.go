package audit

import (
	"fmt"
	"time"
)

// Result represents the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Security-relevant actions emitted by the auth core.
const (
	ActionLoginRequested = "auth.login_requested"
	ActionLoginVerified  = "auth.login_verified"
	ActionLoginFailed    = "auth.login_failed"
	ActionLogout         = "auth.logout"
	ActionLogoutAll      = "auth.logout_all"
	ActionRateLimited    = "auth.rate_limited"
	ActionInvalidOrigin  = "auth.invalid_origin"
)

// Event is a single audit log entry.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Result    Result         `json:"result"`
	UserID    string         `json:"user_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks the event carries the required fields.
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	return nil
}

// EventOption applies configuration to an Event during creation.
type EventOption func(*Event)

// WithUserID attaches the acting user.
func WithUserID(id string) EventOption {
	return func(e *Event) { e.UserID = id }
}

// WithIP attaches the client address.
func WithIP(ip string) EventOption {
	return func(e *Event) { e.IP = ip }
}

// WithMetadata merges extra key/value pairs onto the event.
func WithMetadata(meta map[string]any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any, len(meta))
		}
		for k, v := range meta {
			e.Metadata[k] = v
		}
	}
}
