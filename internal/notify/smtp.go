package notify

import (
	"bytes"
	"context"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"wareworks/internal/platform/config"
	domainerrors "wareworks/pkg/domain-errors"
)

type smtpDispatcher struct {
	cfg    config.Email
	logger *slog.Logger
}

func newSMTPDispatcher(cfg config.Email, logger *slog.Logger) *smtpDispatcher {
	return &smtpDispatcher{cfg: cfg, logger: logger}
}

func (d *smtpDispatcher) Transport() string { return "smtp" }

func (d *smtpDispatcher) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMsg()
	if err := m.FromFormat(d.cfg.FromName, d.cfg.From); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "invalid sender address")
	}
	if err := m.To(d.cfg.To...); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "invalid recipient address")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.PlainBody)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)

	for _, att := range msg.Attachments {
		if err := m.AttachReader(att.Filename, bytes.NewReader(att.Bytes),
			gomail.WithFileContentType(gomail.ContentType(att.MIMEType))); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "attach document")
		}
	}

	opts := []gomail.Option{gomail.WithPort(d.cfg.SMTPPort)}
	if d.cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(d.cfg.SMTPUser),
			gomail.WithPassword(d.cfg.SMTPPass),
		)
	}
	client, err := gomail.NewClient(d.cfg.SMTPHost, opts...)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "smtp client setup")
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "smtp send failed")
	}
	return nil
}
