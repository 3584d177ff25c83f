package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"wareworks/internal/platform/config"
	domainerrors "wareworks/pkg/domain-errors"
)

type sendGridDispatcher struct {
	client *sendgrid.Client
	from   *mail.Email
	to     []string
	logger *slog.Logger
}

func newSendGridDispatcher(cfg config.Email, logger *slog.Logger) *sendGridDispatcher {
	return &sendGridDispatcher{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.From),
		to:     cfg.To,
		logger: logger,
	}
}

func (d *sendGridDispatcher) Transport() string { return "sendgrid" }

func (d *sendGridDispatcher) Send(ctx context.Context, msg *Message) error {
	m := mail.NewV3Mail()
	m.SetFrom(d.from)
	m.Subject = msg.Subject

	personalization := mail.NewPersonalization()
	for _, addr := range d.to {
		personalization.AddTos(mail.NewEmail("", addr))
	}
	m.AddPersonalizations(personalization)
	m.AddContent(
		mail.NewContent("text/plain", msg.PlainBody),
		mail.NewContent("text/html", msg.HTMLBody),
	)

	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetFilename(att.Filename)
		a.SetType(att.MIMEType)
		a.SetDisposition("attachment")
		a.SetContent(base64.StdEncoding.EncodeToString(att.Bytes))
		m.AddAttachment(a)
	}

	resp, err := d.client.SendWithContext(ctx, m)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "sendgrid send failed")
	}
	if resp.StatusCode >= 400 {
		d.logger.Error("sendgrid_rejected_message",
			"status_code", resp.StatusCode,
			"body", resp.Body)
		return domainerrors.New(domainerrors.CodeUnavailable,
			fmt.Sprintf("sendgrid rejected message with status %d", resp.StatusCode))
	}
	return nil
}
