// Package mail delivers lead notifications. Delivery is never on the
// response path: the handler dispatches a send in the background and only
// the log ever learns about failures.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, to, subject, bodyHTML, bodyText string) error
}

// SMTPMailer sends over authenticated SMTP.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates a mailer for the given server.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// Send builds a multipart/alternative message and submits it.
func (m *SMTPMailer) Send(_ context.Context, to, subject, bodyHTML, bodyText string) error {
	const boundary = "lead-notification-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, bodyText)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, bodyHTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer logs instead of sending. Default when mail is not configured,
// so local runs and tests need no SMTP server.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates the logging mailer.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, _, bodyText string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Int("bytes", len(bodyText)).Msg("mail delivery skipped (log mailer)")
	return nil
}
