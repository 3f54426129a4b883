package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/manofwisdom/auth/pkg/cookie"
	"github.com/manofwisdom/auth/pkg/logger"
	"github.com/manofwisdom/auth/pkg/token"
)

// cleanupProbability is the chance that a successful session lookup
// triggers an async sweep of expired auth records. Piggybacking on the
// hot path bounds table growth without a dedicated scheduled job;
// correctness never depends on the sweep (expiry is checked lazily).
const cleanupProbability = 0.01

// SessionManager creates, resolves, and deletes sessions, and owns the
// session cookie.
type SessionManager struct {
	storage Storage
	cookies *cookie.Manager
	config  Config
	log     *slog.Logger
	now     func() time.Time
	chance  func() float64
}

// SessionOption configures the manager.
type SessionOption func(*SessionManager)

// WithSessionLogger sets the manager logger.
func WithSessionLogger(log *slog.Logger) SessionOption {
	return func(m *SessionManager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithSessionClock overrides the clock. Test hook.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCleanupChance overrides the cleanup dice roll. Test hook.
func WithCleanupChance(chance func() float64) SessionOption {
	return func(m *SessionManager) {
		if chance != nil {
			m.chance = chance
		}
	}
}

// NewSessionManager creates a session manager.
func NewSessionManager(storage Storage, cfg Config, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		storage: storage,
		cookies: cookie.New(),
		config:  cfg,
		log:     logger.NewDiscard(),
		now:     time.Now,
		chance:  rand.Float64,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Create persists a new session for the user and returns it with the
// raw bearer token populated. The raw token is available only from
// this return value; storage sees the hash.
func (m *SessionManager) Create(ctx context.Context, userID uuid.UUID) (*Session, error) {
	raw, err := token.Generate()
	if err != nil {
		return nil, err
	}

	now := m.now()
	session := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: token.Hash(raw),
		ExpiresAt: now.Add(m.config.SessionTTL()),
		CreatedAt: now,
		Token:     raw,
	}

	if err := m.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetByToken resolves a raw token to its session and user. A missing
// session is (nil, nil), not an error: callers treat it as
// unauthenticated. An expired session is deleted on sight and also
// resolves to nil.
func (m *SessionManager) GetByToken(ctx context.Context, raw string) (*Session, error) {
	session, err := m.storage.GetSessionByTokenHash(ctx, token.Hash(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if session.Expired(m.now()) {
		if err := m.storage.DeleteSession(ctx, session.TokenHash); err != nil {
			m.log.ErrorContext(ctx, "failed to delete expired session",
				logger.Error(err),
				logger.Component("session"),
			)
		}
		return nil, nil
	}

	if m.chance() < cleanupProbability {
		go m.sweep()
	}

	return session, nil
}

// Delete removes the session for a raw token. Unknown tokens are a
// no-op: logout is idempotent.
func (m *SessionManager) Delete(ctx context.Context, raw string) error {
	return m.storage.DeleteSession(ctx, token.Hash(raw))
}

// DeleteAllForUser removes every session for a user ("sign out
// everywhere").
func (m *SessionManager) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.storage.DeleteUserSessions(ctx, userID)
}

// sweep runs the cleanup asynchronously off a fresh context; the
// triggering request must not wait on it, and failures are swallowed.
func (m *SessionManager) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := Cleanup(ctx, m.storage, m.now())
	if err != nil {
		m.log.ErrorContext(ctx, "opportunistic cleanup failed",
			logger.Error(err),
			logger.Component("session"),
		)
		return
	}
	if result.Sessions > 0 || result.MagicLinks > 0 {
		m.log.DebugContext(ctx, "opportunistic cleanup",
			slog.Int64("sessions", result.Sessions),
			slog.Int64("magic_links", result.MagicLinks),
			logger.Component("session"),
		)
	}
}

// cookieOptions returns the session cookie attributes. In production
// the cookie is Secure and scoped to the shared parent domain so every
// app in the suite sees it; in development it stays host-only.
func (m *SessionManager) cookieOptions() []cookie.Option {
	opts := []cookie.Option{
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithMaxAge(m.config.SessionExpiryDays * 86400),
	}
	if m.config.Environment.IsProduction() {
		opts = append(opts,
			cookie.WithSecure(true),
			cookie.WithDomain(m.config.CookieDomain),
		)
	}
	return opts
}

// SetCookie writes the session cookie carrying the raw token.
func (m *SessionManager) SetCookie(w http.ResponseWriter, raw string) {
	m.cookies.Set(w, m.config.CookieName, raw, m.cookieOptions()...)
}

// ClearCookie expires the session cookie.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	opts := m.cookieOptions()
	opts = append(opts, cookie.WithMaxAge(-1))
	m.cookies.Delete(w, m.config.CookieName, opts...)
}

// TokenFromRequest reads the raw session token from the request
// cookie. The bool reports presence, not validity.
func (m *SessionManager) TokenFromRequest(r *http.Request) (string, bool) {
	value, err := m.cookies.Get(r, m.config.CookieName)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// CurrentSession resolves the request's cookie to a session, or
// (nil, nil) when the request is unauthenticated. Malformed cookie
// values are treated as absent without touching storage.
func (m *SessionManager) CurrentSession(ctx context.Context, r *http.Request) (*Session, error) {
	raw, ok := m.TokenFromRequest(r)
	if !ok || !token.Valid(raw) {
		return nil, nil
	}
	return m.GetByToken(ctx, raw)
}
