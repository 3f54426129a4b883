package auth

import (
	"strings"

	"github.com/manofwisdom/auth/pkg/email"
)

// NormalizeEmail lowercases and trims an address. Email uniqueness is
// case-insensitive, enforced by always normalizing at write time.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail reports whether s is a plausibly deliverable address.
func ValidEmail(s string) bool {
	return email.ValidAddress(s)
}
