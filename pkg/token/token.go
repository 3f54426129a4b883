package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// rawLen is the number of random bytes per token: 256 bits of entropy,
// 64 lowercase hex characters once encoded.
const rawLen = 32

// EncodedLen is the length of an encoded token in characters.
const EncodedLen = rawLen * 2

// Generate returns a cryptographically random opaque token encoded as
// 64 lowercase hex characters. Collision probability at 256 bits is
// negligible, so callers must not add uniqueness retry logic on top.
func Generate() (string, error) {
	b := make([]byte, rawLen)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrGeneration, err)
	}
	return hex.EncodeToString(b), nil
}

// Hash returns the SHA-256 digest of a raw token as lowercase hex.
// Used for session tokens at rest: the database only ever sees the
// hash, so a database read does not yield usable bearer credentials.
// Magic-link tokens are stored raw; they are single-use and
// short-lived, and hashing them would break lookup by raw token for no
// material security gain.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s has the shape of a generated token: exactly
// 64 lowercase hex characters. It says nothing about whether the token
// exists server-side; it only lets callers reject garbage or legacy
// cookie values before spending a storage lookup on them.
func Valid(s string) bool {
	if len(s) != EncodedLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
