package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/manofwisdom/auth/pkg/environment"
)

// Config is the authentication configuration shared by every app in
// the suite. Each deploying app may override individual values; the
// defaults are the suite-wide contract.
type Config struct {
	// CookieName is the session cookie key.
	CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"mow_session"`

	// CookieDomain scopes the session cookie to a shared parent domain
	// in production so one login covers every subdomain of the suite.
	// Ignored outside production, where the cookie stays host-only.
	CookieDomain string `env:"AUTH_COOKIE_DOMAIN" envDefault:".manofwisdom.co"`

	// SessionExpiryDays is the session lifetime.
	SessionExpiryDays int `env:"AUTH_SESSION_EXPIRY_DAYS" envDefault:"30"`

	// MagicLinkExpiryMinutes is the login-link lifetime.
	MagicLinkExpiryMinutes int `env:"AUTH_MAGIC_LINK_EXPIRY_MINUTES" envDefault:"15"`

	// BaseURL builds the verification URL ({BaseURL}/verify?token=...).
	// Required, and must not point at localhost in production.
	BaseURL string `env:"AUTH_BASE_URL"`

	// Environment decides cookie scope and the Secure flag.
	Environment environment.Environment `env:"ENV" envDefault:"development"`
}

// DefaultConfig returns the suite-wide defaults.
func DefaultConfig() Config {
	return Config{
		CookieName:             "mow_session",
		CookieDomain:           ".manofwisdom.co",
		SessionExpiryDays:      30,
		MagicLinkExpiryMinutes: 15,
		Environment:            environment.Development,
	}
}

// Validate checks the configuration is deployable.
func (c Config) Validate() error {
	if c.CookieName == "" {
		return fmt.Errorf("%w: cookie name is required", ErrInvalidConfig)
	}
	if c.SessionExpiryDays <= 0 {
		return fmt.Errorf("%w: session expiry must be positive", ErrInvalidConfig)
	}
	if c.MagicLinkExpiryMinutes <= 0 {
		return fmt.Errorf("%w: magic link expiry must be positive", ErrInvalidConfig)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if c.Environment.IsProduction() && strings.Contains(c.BaseURL, "localhost") {
		return fmt.Errorf("%w: base URL must not be localhost in production", ErrInvalidConfig)
	}
	return nil
}

// SessionTTL returns the session lifetime as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionExpiryDays) * 24 * time.Hour
}

// MagicLinkTTL returns the magic-link lifetime as a duration.
func (c Config) MagicLinkTTL() time.Duration {
	return time.Duration(c.MagicLinkExpiryMinutes) * time.Minute
}
