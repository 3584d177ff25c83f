package notify

import (
	"context"
	"log/slog"
)

// noopDispatcher logs what would have been sent. It is selected when no mail
// transport is configured, which keeps the submission pipeline fully
// functional in local development.
type noopDispatcher struct {
	logger *slog.Logger
}

func newNoopDispatcher(logger *slog.Logger) *noopDispatcher {
	return &noopDispatcher{logger: logger}
}

func (d *noopDispatcher) Transport() string { return "noop" }

func (d *noopDispatcher) Send(_ context.Context, msg *Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		names = append(names, att.Filename)
	}
	d.logger.Info("notification_skipped_no_transport",
		"subject", msg.Subject,
		"attachments", names)
	return nil
}
