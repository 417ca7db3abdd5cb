// Package mailer delivers signup codes and magic links by email.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/dmitrijs2005/rentable/internal/logging"
	mail "github.com/go-mail/mail"
)

// Sender delivers one message. textBody is required, htmlBody optional.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// SMTPSender sends through an SMTP relay. STARTTLS is negotiated when the
// server offers it.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
	// SSL selects implicit TLS (usually port 465).
	SSL bool
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass, SSL: port == 465}
}

// dialAndSend is a seam for tests.
var dialAndSend = func(d *mail.Dialer, m ...*mail.Message) error {
	return d.DialAndSend(m...)
}

func (s *SMTPSender) Send(_ context.Context, to, subject, textBody, htmlBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}
	d.SSL = s.SSL

	if err := dialAndSend(d, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, textBody, _ string) error {
	s.logger.Info(ctx, "email not sent, smtp disabled", "to", to, "subject", subject, "body", textBody)
	return nil
}
