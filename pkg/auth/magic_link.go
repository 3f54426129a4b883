package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/manofwisdom/auth/pkg/email"
	"github.com/manofwisdom/auth/pkg/logger"
	"github.com/manofwisdom/auth/pkg/token"
)

// MagicLinkRequest is the result of issuing a magic link.
type MagicLinkRequest struct {
	Email     string
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// MagicLinkService issues and verifies one-time login links. A link
// moves ISSUED → USED exactly once; expiry is computed, never stored.
type MagicLinkService struct {
	storage  Storage
	sessions *SessionManager
	sender   email.Sender
	config   Config
	log      *slog.Logger
	now      func() time.Time
}

// MagicLinkOption configures the service.
type MagicLinkOption func(*MagicLinkService)

// WithMagicLinkLogger sets the service logger.
func WithMagicLinkLogger(log *slog.Logger) MagicLinkOption {
	return func(s *MagicLinkService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMagicLinkClock overrides the clock. Test hook.
func WithMagicLinkClock(now func() time.Time) MagicLinkOption {
	return func(s *MagicLinkService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMagicLinkService creates the magic-link service. The session
// manager is required: successful verification ends in a session.
func NewMagicLinkService(storage Storage, sessions *SessionManager, sender email.Sender, cfg Config, opts ...MagicLinkOption) *MagicLinkService {
	s := &MagicLinkService{
		storage:  storage,
		sessions: sessions,
		sender:   sender,
		config:   cfg,
		log:      logger.NewDiscard(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create issues a magic link for the given email, creating the user
// when it does not exist yet. Login and signup are the same flow: a
// syntactically valid email never fails here. A supplied name
// backfills a user that has none; it never overwrites an existing one.
func (s *MagicLinkService) Create(ctx context.Context, rawEmail, name string) (*MagicLinkRequest, error) {
	addr := NormalizeEmail(rawEmail)
	if !ValidEmail(addr) {
		return nil, ErrInvalidEmail
	}

	now := s.now()

	user, err := s.storage.GetUserByEmail(ctx, addr)
	switch {
	case err == nil:
		if user.Name == "" && name != "" {
			if err := s.storage.SetUserName(ctx, user.ID, name); err != nil {
				return nil, fmt.Errorf("failed to backfill user name: %w", err)
			}
			user.Name = name
		}
	case errors.Is(err, ErrUserNotFound):
		user = &User{
			ID:        uuid.New(),
			Email:     addr,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		switch err := s.storage.CreateUser(ctx, user); {
		case err == nil:
			s.log.InfoContext(ctx, "user created on first login attempt",
				logger.UserID(user.ID.String()),
				logger.Component("magic_link"),
			)
		case errors.Is(err, ErrEmailTaken):
			// Lost a concurrent first-login race; the other request
			// created the user between our lookup and insert.
			user, err = s.storage.GetUserByEmail(ctx, addr)
			if err != nil {
				return nil, fmt.Errorf("failed to look up user: %w", err)
			}
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	tok, err := token.Generate()
	if err != nil {
		return nil, err
	}

	link := &MagicLink{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     tok,
		ExpiresAt: now.Add(s.config.MagicLinkTTL()),
		CreatedAt: now,
	}
	if err := s.storage.CreateMagicLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create magic link: %w", err)
	}

	return &MagicLinkRequest{
		Email:     addr,
		Token:     tok,
		UserID:    user.ID,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Verify consumes a magic link and returns a new session with its
// user populated. This is the only path that sets UsedAt; the claim is
// a conditional update, so two concurrent verifications of the same
// token yield exactly one session.
func (s *MagicLinkService) Verify(ctx context.Context, rawToken string) (*Session, error) {
	link, err := s.storage.GetMagicLinkByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, ErrLinkInvalid) {
			return nil, ErrLinkInvalid
		}
		return nil, fmt.Errorf("failed to look up magic link: %w", err)
	}

	now := s.now()
	if link.UsedAt != nil {
		return nil, ErrLinkAlreadyUsed
	}
	if now.After(link.ExpiresAt) {
		return nil, ErrLinkExpired
	}

	claimed, err := s.storage.ClaimMagicLink(ctx, link.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim magic link: %w", err)
	}
	if !claimed {
		// Lost the race to a concurrent verification.
		return nil, ErrLinkAlreadyUsed
	}

	user, err := s.storage.GetUserByID(ctx, link.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load link user: %w", err)
	}

	if user.EmailVerifiedAt == nil {
		if err := s.storage.SetEmailVerified(ctx, user.ID, now); err != nil {
			// Verification already consumed the link; a failed stamp is
			// logged, not fatal, and retried on the next login.
			s.log.ErrorContext(ctx, "failed to mark email verified",
				logger.UserID(user.ID.String()),
				logger.Error(err),
				logger.Component("magic_link"),
			)
		} else {
			at := now
			user.EmailVerifiedAt = &at
		}
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.User = user

	return session, nil
}

// SendEmail builds the verification URL and dispatches the login
// email. Provider failures come back as errors, never panics; a mail
// outage is a user-facing error, not a stack trace.
func (s *MagicLinkService) SendEmail(ctx context.Context, addr, tok string) error {
	if s.sender == nil {
		return fmt.Errorf("%w: email sender not configured", email.ErrInvalidConfig)
	}

	verifyURL := fmt.Sprintf("%s/verify?token=%s", s.config.BaseURL, url.QueryEscape(tok))

	err := s.sender.SendEmail(ctx, email.SendParams{
		SendTo:  addr,
		Subject: "Sign in to Man of Wisdom",
		BodyHTML: fmt.Sprintf(
			`<p>Click the link below to sign in. It expires in %d minutes and can be used once.</p>`+
				`<p><a href="%s">Sign in</a></p>`+
				`<p>If you did not request this email, you can safely ignore it.</p>`,
			s.config.MagicLinkExpiryMinutes, verifyURL,
		),
		Tag: "magic-link",
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to send magic link email",
			logger.Error(err),
			logger.Component("magic_link"),
		)
		return fmt.Errorf("failed to send login email: %w", err)
	}

	return nil
}
