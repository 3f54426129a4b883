package email

import "errors"

var (
	// ErrSendFailed indicates the provider rejected or failed the send.
	ErrSendFailed = errors.New("failed to send email")
	// ErrInvalidConfig indicates unusable sender configuration.
	ErrInvalidConfig = errors.New("invalid email config")
	// ErrInvalidParams indicates unusable send parameters.
	ErrInvalidParams = errors.New("invalid email params")
)
