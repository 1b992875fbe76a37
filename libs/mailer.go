package libs

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"resto-supply/config"
)

// Mailer delivers dispatch notifications over SMTP. It implements
// services.MessageTransport.
type Mailer struct {
	dialer *gomail.Dialer
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}

	dialer := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPassword)

	return &Mailer{dialer: dialer}, nil
}

func (m *Mailer) Send(to, from, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
