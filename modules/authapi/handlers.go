package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/manofwisdom/auth/pkg/audit"
	"github.com/manofwisdom/auth/pkg/auth"
	"github.com/manofwisdom/auth/pkg/clientip"
	"github.com/manofwisdom/auth/pkg/logger"
	"github.com/manofwisdom/auth/pkg/ratelimiter"
)

// genericLinkError is the single message for every way a magic link can
// fail verification. Distinguishing expired from used from unknown
// would hand an attacker an oracle over guessed tokens.
const genericLinkError = "This login link is invalid or has expired. Please request a new one."

// Service wires the auth core to the HTTP surface.
type Service struct {
	links         *auth.MagicLinkService
	sessions      *auth.SessionManager
	loginLimiter  *ratelimiter.Limiter
	verifyLimiter *ratelimiter.Limiter
	auditor       audit.Logger
	log           *slog.Logger
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithAudit attaches an audit logger.
func WithAudit(a audit.Logger) ServiceOption {
	return func(s *Service) { s.auditor = a }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the auth HTTP service. Both limiters are required;
// the login and verify endpoints are the abuse surface of the whole
// suite.
func NewService(links *auth.MagicLinkService, sessions *auth.SessionManager, loginLimiter, verifyLimiter *ratelimiter.Limiter, opts ...ServiceOption) *Service {
	s := &Service{
		links:         links,
		sessions:      sessions,
		loginLimiter:  loginLimiter,
		verifyLimiter: verifyLimiter,
		log:           logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// handleLogin issues a magic link and emails it. The response is the
// same whether the account existed or was just created, so the endpoint
// does not leak which addresses have accounts.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ip := clientip.GetIP(r)

	if !s.allow(w, r, s.loginLimiter, "login:"+ip, ip) {
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := s.links.Create(ctx, req.Email, req.Name)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) {
			respondError(w, http.StatusBadRequest, "Please enter a valid email address")
			return
		}
		s.log.ErrorContext(ctx, "failed to issue magic link",
			logger.Error(err),
			logger.Component("authapi"),
		)
		respondError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if err := s.links.SendEmail(ctx, link.Email, link.Token); err != nil {
		s.log.ErrorContext(ctx, "failed to send magic link email",
			logger.Error(err),
			logger.Component("authapi"),
		)
		respondError(w, http.StatusInternalServerError, "Failed to send the login email. Please try again.")
		return
	}

	s.audit(ctx, audit.ActionLoginRequested, nil,
		audit.WithUserID(link.UserID.String()),
		audit.WithIP(ip),
	)

	respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "Check your email for a login link.",
	})
}

type verifyRequest struct {
	Token string `json:"token"`
}

// handleVerify consumes a magic link and opens a session. The session
// cookie is the only place the raw token travels back to the client.
func (s *Service) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ip := clientip.GetIP(r)

	if !s.allow(w, r, s.verifyLimiter, "verify:"+ip, ip) {
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, genericLinkError)
		return
	}

	session, err := s.links.Verify(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrLinkInvalid),
			errors.Is(err, auth.ErrLinkAlreadyUsed),
			errors.Is(err, auth.ErrLinkExpired):
			s.audit(ctx, audit.ActionLoginFailed, err, audit.WithIP(ip))
			respondError(w, http.StatusBadRequest, genericLinkError)
		default:
			s.log.ErrorContext(ctx, "failed to verify magic link",
				logger.Error(err),
				logger.Component("authapi"),
			)
			respondError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return
	}

	s.sessions.SetCookie(w, session.Token)

	s.audit(ctx, audit.ActionLoginVerified, nil,
		audit.WithUserID(session.UserID.String()),
		audit.WithIP(ip),
	)

	respond(w, http.StatusOK, envelope{
		Success: true,
		User:    publicUser(session.User),
	})
}

// handleLogout ends the current session. Always succeeds: logging out
// with no session, an unknown token, or a malformed cookie all land in
// the same place.
func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if raw, ok := s.sessions.TokenFromRequest(r); ok {
		if err := s.sessions.Delete(ctx, raw); err != nil {
			s.log.ErrorContext(ctx, "failed to delete session on logout",
				logger.Error(err),
				logger.Component("authapi"),
			)
		}
	}

	s.sessions.ClearCookie(w)
	s.audit(ctx, audit.ActionLogout, nil, audit.WithIP(clientip.GetIP(r)))

	respond(w, http.StatusOK, envelope{Success: true})
}

// handleLogoutAll signs the user out everywhere. Unlike plain logout it
// requires a live session: revoking every device is a sensitive action.
func (s *Service) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessions.CurrentSession(ctx, r)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to resolve session",
			logger.Error(err),
			logger.Component("authapi"),
		)
		respondError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	if session == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if _, err := s.sessions.DeleteAllForUser(ctx, session.UserID); err != nil {
		s.log.ErrorContext(ctx, "failed to delete user sessions",
			logger.Error(err),
			logger.Component("authapi"),
		)
		respondError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	s.sessions.ClearCookie(w)
	s.audit(ctx, audit.ActionLogoutAll, nil,
		audit.WithUserID(session.UserID.String()),
		audit.WithIP(clientip.GetIP(r)),
	)

	respond(w, http.StatusOK, envelope{Success: true})
}

// handleMe returns the authenticated user.
func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessions.CurrentSession(ctx, r)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to resolve session",
			logger.Error(err),
			logger.Component("authapi"),
		)
		respondError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	if session == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respond(w, http.StatusOK, envelope{
		Success: true,
		User:    publicUser(session.User),
	})
}

// allow runs a rate-limit check and writes the 429 itself when the
// request is over the limit. Limiter store failures deny the request:
// the limiter guards an abuse surface, so unavailable means closed.
func (s *Service) allow(w http.ResponseWriter, r *http.Request, limiter *ratelimiter.Limiter, key, ip string) bool {
	result, err := limiter.Check(r.Context(), key)
	if err != nil {
		s.log.ErrorContext(r.Context(), "rate limiter unavailable",
			logger.Error(err),
			logger.Component("authapi"),
		)
		respondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
		return false
	}
	if !result.Allowed {
		s.audit(r.Context(), audit.ActionRateLimited, nil,
			audit.WithIP(ip),
			audit.WithMetadata(map[string]any{"key": key, "path": r.URL.Path}),
		)
		respondRateLimited(w, result)
		return false
	}
	return true
}

func (s *Service) audit(ctx context.Context, action string, cause error, opts ...audit.EventOption) {
	if s.auditor == nil {
		return
	}
	var err error
	if cause != nil {
		err = s.auditor.LogFailure(ctx, action, cause, opts...)
	} else {
		err = s.auditor.Log(ctx, action, opts...)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to write audit event",
			logger.Error(err),
			logger.Component("authapi"),
		)
	}
}

func publicUser(u *auth.User) *user {
	if u == nil {
		return nil
	}
	return &user{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerifiedAt != nil,
		CreatedAt:     u.CreatedAt,
		VerifiedAt:    u.EmailVerifiedAt,
	}
}
