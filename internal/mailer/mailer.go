package mailer

import (
	"context"
	"fmt"

	"tutor-mail-dispatch-go/internal/config"
)

// MailSender delivers one message to one recipient. Implementations forward
// the stored strings as-is; no templating or validation happens here.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
	Close() error
}

// New creates the MailSender selected by the configuration.
func New(cfg *config.MailConfig) (MailSender, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPSender(cfg), nil
	case "gmail":
		return NewGmailSender(cfg)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
