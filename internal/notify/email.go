// Package notify delivers rendered payloads over the two outbound channels:
// transactional email (SMTP) and a Discord-style chat webhook. The channels
// are independent; a failure in one never blocks the other, and callers are
// expected to log returned errors and keep going.
package notify

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"

	appLog "github.com/kitschmensch/sundaydinner/internal/log"
)

// SMTPConfig carries the email transport settings.
type SMTPConfig struct {
	// Email is both the authenticated account and the From address.
	Email    string
	Password string
	Server   string
	Port     int
}

// Mailer sends HTML reminder emails over implicit-SSL SMTP.
type Mailer struct {
	cfg     SMTPConfig
	timeout time.Duration
}

const smtpTimeout = 30 * time.Second

// NewMailer creates a Mailer from transport settings.
func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, timeout: smtpTimeout}
}

// Send delivers one HTML message. Recipients go on BCC only, so they never
// see each other's addresses. replyTo, when non-empty, routes replies to the
// event host instead of the service account.
//
// Every failure (dial, auth, recipient rejection) comes back as an error for
// the caller to log; nothing here aborts the run.
func (m *Mailer) Send(ctx context.Context, subject, htmlBody string, bcc []string, replyTo string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Email); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.Bcc(bcc...); err != nil {
		return fmt.Errorf("notify: bcc list: %w", err)
	}
	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return fmt.Errorf("notify: reply-to address: %w", err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.cfg.Server,
		mail.WithPort(m.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Email),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.timeout),
	)
	if err != nil {
		return fmt.Errorf("notify: smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}

	appLog.Info("email sent", "subject", subject, "recipients", len(bcc))
	return nil
}
