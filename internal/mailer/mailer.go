// Package mailer delivers transactional email.
//
// Two implementations exist: SMTP for production and Log for local runs
// where no SMTP host is configured. Callers depend only on the Mailer
// interface.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipients is returned for a message with no To addresses.
var ErrNoRecipients = errors.New("mailer: message has no recipients")

// SMTPConfig holds connection settings for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SendFunc matches smtp.SendMail. It is a field on SMTP so tests can capture
// outgoing mail without a server.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends mail through an SMTP relay using PLAIN auth when credentials
// are configured.
type SMTP struct {
	cfg  SMTPConfig
	send SendFunc
	now  func() time.Time
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

func (m *SMTP) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, a, msg.From, msg.To, compose(msg, m.now())); err != nil {
		return fmt.Errorf("mailer: sending to %s via %s: %w", strings.Join(msg.To, ","), addr, err)
	}
	return nil
}

// compose renders msg as an RFC 5322 message with CRLF line endings.
func compose(msg Message, date time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + msg.From + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(msg.Subject) + "\r\n")
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

// sanitizeHeader stops user-supplied text from injecting extra headers.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// Log writes messages to the logger instead of sending them.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (m *Log) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m.logger.Info("email not sent, no SMTP host configured",
		slog.String("to", strings.Join(msg.To, ",")),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}
