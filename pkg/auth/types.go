package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity in the suite. Users are created lazily on the
// first login attempt for a new email and are never deleted by this
// subsystem.
type User struct {
	ID              uuid.UUID
	Email           string // unique, always stored lowercase
	Name            string // display name, optional
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MagicLink is a one-time login credential. The token is stored raw:
// it is single-use and short-lived, unlike session tokens. Multiple
// outstanding links per user are permitted.
type MagicLink struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string // unique, 64 hex chars of entropy
	ExpiresAt time.Time
	UsedAt    *time.Time // set exactly once on successful verification
	CreatedAt time.Time
}

// Usable reports whether the link can still authenticate: never used
// and not past its expiry. Expiry is a computed state, not stored.
func (m *MagicLink) Usable(now time.Time) bool {
	return m.UsedAt == nil && !now.After(m.ExpiresAt)
}

// Session is a persisted login. Only the hash of the session token is
// stored; the raw token exists in the Token field at creation time and
// in the browser's cookie, nowhere else.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string // unique, SHA-256 of the raw token
	ExpiresAt time.Time
	CreatedAt time.Time

	// Token is the raw bearer token, populated only by CreateSession.
	// Never persisted, never reconstructable from storage.
	Token string

	// User is populated on lookups for caller convenience.
	User *User
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
