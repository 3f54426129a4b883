package auth

import "errors"

// Magic link verification failures. Distinguished internally for
// logging; HTTP surfaces collapse them into one generic message so the
// response does not leak whether a token ever existed.
var (
	ErrLinkInvalid     = errors.New("invalid magic link")
	ErrLinkAlreadyUsed = errors.New("magic link already used")
	ErrLinkExpired     = errors.New("magic link expired")
)

// General authentication errors.
var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already taken")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidConfig = errors.New("invalid auth config")
)
