// Package token produces the opaque credentials used across the auth
// suite: high-entropy random tokens for magic links and sessions, and
// the one-way hash applied to session tokens before they touch the
// database.
//
// Tokens are plain random values, not self-describing: all state lives
// server-side, which is what makes single-use consumption and remote
// revocation possible.
package token
