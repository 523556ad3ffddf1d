package adapters

import (
	"context"
	"fmt"

	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/core/logger"
	"shipment-sentinel/internal/features/alerts/domain"

	gomail "github.com/wneessen/go-mail"
)

// SMTPAdapter implements ports.MailSink over SMTP.
type SMTPAdapter struct {
	client  *gomail.Client
	from    string
	replyTo string
}

// NewSMTPAdapter creates an SMTP mail sink. Returns nil when SMTP is not
// configured, which disables the customer email path entirely.
func NewSMTPAdapter(cfg config.SMTPConfig) (*SMTPAdapter, error) {
	if !cfg.Enabled() {
		logger.Get().Info("No SMTP configuration, customer email disabled")
		return nil, nil
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPAdapter{
		client:  client,
		from:    cfg.From,
		replyTo: cfg.ReplyTo,
	}, nil
}

// Send delivers the mail as plain text.
func (a *SMTPAdapter) Send(ctx context.Context, mail domain.Mail) (string, error) {
	msg := gomail.NewMsg()
	if err := msg.From(a.from); err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(mail.To); err != nil {
		return "", fmt.Errorf("invalid to address %s: %w", mail.To, err)
	}
	if a.replyTo != "" {
		if err := msg.ReplyTo(a.replyTo); err != nil {
			return "", fmt.Errorf("invalid reply-to address: %w", err)
		}
	}

	msg.Subject(mail.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, mail.Body)
	msg.SetMessageID()

	if err := a.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send mail to %s: %w", mail.To, err)
	}

	ids := msg.GetGenHeader(gomail.HeaderMessageID)
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}
