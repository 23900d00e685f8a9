package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/RajeshPuri/VaultFlow/internal/config"
)

// Mailer sends the identity gate's transactional email. Sending is
// synchronous; callers decide whether a failure is fatal to the request.
type Mailer interface {
	// SendVerification emails the address-confirmation link to a new or
	// still-unverified account.
	SendVerification(to, name, verifyURL string) error
	// SendPasswordReset emails a password reset link.
	SendPasswordReset(to, name, resetURL string) error
}

// smtpMailer implements Mailer over plain SMTP.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates an SMTP-backed mailer from config.
func NewSMTP(cfg config.SMTPConfig) (Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

func (s *smtpMailer) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

func (s *smtpMailer) SendVerification(to, name, verifyURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nConfirm your email address to activate your vault:\n\n%s\n\nThe link expires in 24 hours. If you did not sign up, ignore this email.\n",
		name, verifyURL,
	)
	return s.send(to, "Verify your email", body)
}

func (s *smtpMailer) SendPasswordReset(to, name, resetURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nReset your password using the link below:\n\n%s\n\nThe link expires in 1 hour. If you did not request a reset, ignore this email.\n",
		name, resetURL,
	)
	return s.send(to, "Reset your password", body)
}
