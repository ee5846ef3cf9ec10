package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"tutor-mail-dispatch-go/internal/config"
)

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.From,
	}
}

// Send delivers a single HTML message. gomail has no context support, so the
// dial-and-send runs in a goroutine and the context bounds the wait.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send aborted: %w", ctx.Err())
	}
}

// Close closes the sender (no-op for SMTP, connections are per-send)
func (s *SMTPSender) Close() error {
	return nil
}
