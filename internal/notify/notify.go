// Package notify delivers the new-application email to the hiring inbox.
// Transport selection is driven by configuration: SendGrid when an API key
// is present, SMTP when a host is present, and a logging no-op otherwise so
// local development never needs mail credentials.
package notify

import (
	"context"
	"log/slog"

	"wareworks/internal/platform/config"
)

// Attachment is a generated document carried on the notification.
type Attachment struct {
	Filename string
	MIMEType string
	Bytes    []byte
}

// Message is a transport-independent email.
type Message struct {
	Subject     string
	PlainBody   string
	HTMLBody    string
	Attachments []Attachment
}

// Dispatcher sends a composed message over one concrete transport.
type Dispatcher interface {
	Send(ctx context.Context, msg *Message) error
	Transport() string
}

// NewDispatcher picks the transport the configuration supports.
func NewDispatcher(cfg config.Email, logger *slog.Logger) Dispatcher {
	switch {
	case cfg.APIKey != "" && len(cfg.To) > 0:
		return newSendGridDispatcher(cfg, logger)
	case cfg.SMTPHost != "" && len(cfg.To) > 0:
		return newSMTPDispatcher(cfg, logger)
	default:
		return newNoopDispatcher(logger)
	}
}
