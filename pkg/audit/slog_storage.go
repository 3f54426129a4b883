package audit

import (
	"context"
	"log/slog"
)

// slogStorage emits audit events as structured log records. Log
// shipping then carries them to whatever retention the deployment has;
// the auth core never reads them back.
type slogStorage struct {
	log *slog.Logger
}

// NewSlogStorage creates a Storage that writes events through log.
func NewSlogStorage(log *slog.Logger) Storage {
	if log == nil {
		panic("audit: logger cannot be nil")
	}
	return &slogStorage{log: log}
}

func (s *slogStorage) Store(ctx context.Context, event Event) error {
	attrs := []slog.Attr{
		slog.String("audit_id", event.ID),
		slog.String("action", event.Action),
		slog.String("result", string(event.Result)),
		slog.Time("created_at", event.CreatedAt),
	}
	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.IP != "" {
		attrs = append(attrs, slog.String("ip", event.IP))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	level := slog.LevelInfo
	if event.Result == ResultFailure {
		level = slog.LevelWarn
	}

	s.log.LogAttrs(ctx, level, "audit", attrs...)
	return nil
}
