package email

import (
	"context"
	"log/slog"
)

// DevSender logs outbound email instead of dispatching it. The full
// HTML body lands in the log at debug level, which in development
// includes the clickable magic link.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development sender writing through log.
func NewDevSender(log *slog.Logger) Sender {
	return &DevSender{log: log}
}

func (d *DevSender) SendEmail(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.log.InfoContext(ctx, "dev email (not sent)",
		slog.String("to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	d.log.DebugContext(ctx, "dev email body", slog.String("body_html", params.BodyHTML))

	return nil
}
