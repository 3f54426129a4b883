package email

import (
	"context"
	"fmt"
	"regexp"
)

// Sender dispatches transactional email. The auth core treats it as an
// injected collaborator: failures come back as errors, never as
// panics, so an email-provider outage degrades to a clear user-facing
// error instead of a stack trace.
type Sender interface {
	SendEmail(ctx context.Context, params SendParams) error
}

// SendParams are the parameters for a single outbound email.
type SendParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

// emailRegex is a pragmatic format check, not full RFC 5322: one
// non-space local part, an @, and a dotted domain.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidAddress reports whether s looks like a deliverable address.
func ValidAddress(s string) bool {
	return emailRegex.MatchString(s)
}

// Validate checks params before dispatch.
func (p SendParams) Validate() error {
	if !ValidAddress(p.SendTo) {
		return fmt.Errorf("%w: invalid recipient %q", ErrInvalidParams, p.SendTo)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}
