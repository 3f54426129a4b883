package audit

import "errors"

var (
	// ErrEventValidation indicates an event was missing required fields.
	ErrEventValidation = errors.New("audit event validation failed")
)
