package mailer

import (
	"fmt"

	"github.com/fredseo/showhub-backend/internal/config"
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers transactional mail. Services depend on this interface so
// tests can swap in a no-op implementation.
type Sender interface {
	SendVerification(to, username, verifyURL string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (m *SMTPMailer) SendVerification(to, username, verifyURL string) error {
	if username == "" {
		username = "there"
	}

	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Welcome to ShowHub!</h2>
<p>Hi <strong>%s</strong>, please verify your email to get started.</p>
<p><a href="%s" style="display:inline-block;padding:12px 32px;background-color:#1e293b;color:#ffffff;text-decoration:none;border-radius:6px;">Verify Email</a></p>
<p style="color:#999;font-size:12px;">Or copy this link: %s</p>
</body></html>`, username, verifyURL, verifyURL)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Account Verification - ShowHub")
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Noop discards all mail. Used in tests and when SMTP is not configured.
type Noop struct{}

func (Noop) SendVerification(string, string, string) error { return nil }
