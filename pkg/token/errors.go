package token

import "errors"

var (
	// ErrGeneration indicates the system random source failed.
	ErrGeneration = errors.New("failed to generate token")
)
