package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manofwisdom/auth/pkg/auth"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice@example.com", auth.NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "bob@example.com", auth.NormalizeEmail("bob@example.com"))
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"a+tag@sub.example.co", true},
		{"", false},
		{"no-at-sign", false},
		{"two words@example.com", false},
		{"missing@tld", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, auth.ValidEmail(tt.email))
		})
	}
}
