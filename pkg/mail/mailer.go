package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/pkg/config"
)

// Sender delivers a single HTML email to one recipient. Implementations are
// best-effort collaborators: callers surface failures but never retry here.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through a plain SMTP relay. A circuit breaker guards
// the relay so a dead mail host fails fast instead of stalling every request.
type SMTPMailer struct {
	addr    string
	auth    smtp.Auth
	from    string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	send    sendFunc
}

// NewSMTPMailer configures a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mail circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &SMTPMailer{
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:    auth,
		from:    cfg.From,
		breaker: breaker,
		logger:  logger,
		send:    smtp.SendMail,
	}
}

// Send delivers one message. The context is honoured up front only; net/smtp
// does not support mid-flight cancellation.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(m.from, to, subject, htmlBody)
	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(m.addr, m.auth, m.from, []string{to}, msg)
	})
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
