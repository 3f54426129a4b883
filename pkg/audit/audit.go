package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logger records security-relevant events.
type Logger interface {
	// Log records a successful action.
	Log(ctx context.Context, action string, opts ...EventOption) error
	// LogFailure records a failed action with its cause.
	LogFailure(ctx context.Context, action string, err error, opts ...EventOption) error
}

// Storage persists audit events. The stream is write-only from the
// auth core's point of view; readers live elsewhere.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

type auditLogger struct {
	storage Storage
}

// NewLogger creates an audit logger over the given storage.
func NewLogger(storage Storage) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	return &auditLogger{storage: storage}
}

func (l *auditLogger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.emit(ctx, action, ResultSuccess, "", opts)
}

func (l *auditLogger) LogFailure(ctx context.Context, action string, err error, opts ...EventOption) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return l.emit(ctx, action, ResultFailure, msg, opts)
}

func (l *auditLogger) emit(ctx context.Context, action string, result Result, errMsg string, opts []EventOption) error {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    result,
		Error:     errMsg,
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return l.storage.Store(ctx, event)
}
