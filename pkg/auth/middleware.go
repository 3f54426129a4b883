package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/manofwisdom/auth/pkg/audit"
	"github.com/manofwisdom/auth/pkg/clientip"
	"github.com/manofwisdom/auth/pkg/logger"
	"github.com/manofwisdom/auth/pkg/token"
)

// MiddlewareConfig configures the request gate.
type MiddlewareConfig struct {
	// PublicPaths are paths exempt from authentication. Entries ending
	// in "/" match by prefix; all others match exactly, so "/health"
	// does not also exempt "/healthily". Login, verify, and health
	// endpoints stay reachable through these.
	PublicPaths []string

	// LoginPath receives redirected browser requests. The original
	// path is preserved as a `redirect` query parameter.
	LoginPath string

	// APIPrefix marks paths that get a 401 JSON body instead of a
	// login redirect.
	APIPrefix string

	// AllowedOrigins is the CSRF allow-list for state-changing verbs.
	// Empty disables the Origin check.
	AllowedOrigins []string
}

// Middleware is the per-request gate in front of route handlers. It
// decides between exactly three terminal states: pass-through,
// redirect-to-login (or 401 for API paths), and 403 invalid origin.
// It never confirms the session server-side; that happens when
// application code resolves the session through the SessionManager.
type Middleware struct {
	sessions *SessionManager
	config   MiddlewareConfig
	auditor  audit.Logger
	log      *slog.Logger
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*Middleware)

// WithMiddlewareAudit attaches an audit logger for origin rejections.
func WithMiddlewareAudit(a audit.Logger) MiddlewareOption {
	return func(m *Middleware) { m.auditor = a }
}

// WithMiddlewareLogger sets the middleware logger.
func WithMiddlewareLogger(log *slog.Logger) MiddlewareOption {
	return func(m *Middleware) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMiddleware creates the request gate.
func NewMiddleware(sessions *SessionManager, cfg MiddlewareConfig, opts ...MiddlewareOption) *Middleware {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/"
	}

	m := &Middleware{
		sessions: sessions,
		config:   cfg,
		log:      logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Handler wraps next with the gate.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. CSRF: state-changing verbs must come from an allowed
		// origin when an allow-list is configured.
		if isStateChanging(r.Method) && len(m.config.AllowedOrigins) > 0 {
			origin := r.Header.Get("Origin")
			if !ValidateOrigin(origin, m.config.AllowedOrigins) {
				m.rejectOrigin(w, r, origin)
				return
			}
		}

		// 2. Public paths pass through with no auth check.
		if m.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// 3. No cookie at all: unauthenticated.
		raw, ok := m.sessions.TokenFromRequest(r)
		if !ok {
			m.unauthenticated(w, r, false)
			return
		}

		// 4. Malformed cookie values are treated as absent; the cookie
		// is cleared so the garbage value stops coming back. This
		// avoids wasted lookups on legacy or corrupted cookies — the
		// value is never interpolated anywhere, so this is hygiene,
		// not injection defense.
		if !token.Valid(raw) {
			m.unauthenticated(w, r, true)
			return
		}

		// 5. Shape is plausible; server-side validity is confirmed by
		// the application when it resolves the session.
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) isPublic(path string) bool {
	for _, p := range m.config.PublicPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
		} else if path == p {
			return true
		}
	}
	return false
}

func (m *Middleware) unauthenticated(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		m.sessions.ClearCookie(w)
	}

	if strings.HasPrefix(r.URL.Path, m.config.APIPrefix) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Unauthorized",
		})
		return
	}

	redirect := m.config.LoginPath + "?redirect=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (m *Middleware) rejectOrigin(w http.ResponseWriter, r *http.Request, origin string) {
	ip := clientip.GetIP(r)
	m.log.WarnContext(r.Context(), "request rejected: origin not allowed",
		slog.String("origin", origin),
		slog.String("path", r.URL.Path),
		logger.IP(ip),
		logger.Component("middleware"),
	)
	if m.auditor != nil {
		_ = m.auditor.LogFailure(r.Context(), audit.ActionInvalidOrigin, ErrForbidden,
			audit.WithIP(ip),
			audit.WithMetadata(map[string]any{"origin": origin, "path": r.URL.Path}),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "Invalid origin",
	})
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// sessionContextKey carries a resolved session through the request
// context for handlers that want it after CurrentSession.
type sessionContextKey struct{}

// WithSession stores a resolved session in the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext retrieves a session stored by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}
