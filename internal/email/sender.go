package email

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPSender delivers mail over SMTP using go-mail.
type SMTPSender struct {
	host   string
	port   int
	from   string
	user   string
	pass   string
	logger *slog.Logger
}

// NewSMTPSender builds an SMTPSender.
func NewSMTPSender(host string, port int, from, user, pass string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from, user: user, pass: pass, logger: logger}
}

func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.host, s.port, s.user, s.pass)
	d.TLSConfig = &tls.Config{ServerName: s.host}

	if err := d.DialAndSend(m); err != nil {
		s.logger.Error("smtp send failed",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("email: smtp send: %w", err)
	}
	s.logger.Debug("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}
