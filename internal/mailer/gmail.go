package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"tutor-mail-dispatch-go/internal/config"
)

// GmailSender delivers mail through the Gmail API using OAuth2 refresh-token
// credentials.
type GmailSender struct {
	service   *gmail.Service
	userEmail string
	from      string
}

// NewGmailSender creates a new Gmail API sender
func NewGmailSender(cfg *config.MailConfig) (*GmailSender, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: cfg.GmailRefreshToken,
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailSender{
		service:   service,
		userEmail: cfg.GmailUserEmail,
		from:      cfg.From,
	}, nil
}

// Send delivers a single HTML message
func (g *GmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	raw := g.buildMessage(to, subject, htmlBody)
	encoded := base64.URLEncoding.EncodeToString([]byte(raw))

	message := &gmail.Message{Raw: encoded}

	_, err := g.service.Users.Messages.Send(g.userEmail, message).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send error: %w", err)
	}
	return nil
}

// buildMessage assembles an RFC 822 message with an HTML body
func (g *GmailSender) buildMessage(to, subject, htmlBody string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", g.from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	return b.String()
}

// Close closes the sender (no-op for Gmail API)
func (g *GmailSender) Close() error {
	return nil
}
