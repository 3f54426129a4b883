package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the typed repository interface the auth core persists
// through. Implementations: PostgresStorage for deployments,
// MemoryStorage for tests and local development.
type Storage interface {
	// GetUserByEmail returns the user for a normalized email, or
	// ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByID returns the user by ID, or ErrUserNotFound.
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *User) error
	// SetUserName backfills a display name.
	SetUserName(ctx context.Context, id uuid.UUID, name string) error
	// SetEmailVerified stamps the first successful verification.
	SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error

	// CreateMagicLink persists a new magic link.
	CreateMagicLink(ctx context.Context, link *MagicLink) error
	// GetMagicLinkByToken returns the link for a raw token, or
	// ErrLinkInvalid when no such token exists.
	GetMagicLinkByToken(ctx context.Context, token string) (*MagicLink, error)
	// ClaimMagicLink sets UsedAt if and only if it is still null,
	// reporting whether this caller won the claim. This is the atomic
	// guard that makes verification exactly-once under concurrency.
	ClaimMagicLink(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)

	// CreateSession persists a session record (hash only, never the
	// raw token).
	CreateSession(ctx context.Context, session *Session) error
	// GetSessionByTokenHash returns the session with its user
	// populated, or nil when no such session exists.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	// DeleteSession removes a session by token hash.
	DeleteSession(ctx context.Context, tokenHash string) error
	// DeleteUserSessions removes every session for a user ("sign out
	// everywhere"), returning the number removed.
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpiredSessions removes sessions past their expiry.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	// DeleteStaleMagicLinks removes links that are expired or used.
	DeleteStaleMagicLinks(ctx context.Context, now time.Time) (int64, error)
}
