// Package mail delivers sign-up verification codes.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"

	"github.com/jordan-wright/email"

	applog "github.com/codingniket/FinApp/internal/log"
)

// Mailer sends a verification code to an address.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *applog.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(cfg SMTPConfig, logger *applog.Logger) *SMTPSender {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SMTPSender{
		cfg:    cfg,
		logger: logger.WithComponent(applog.ComponentMail),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string) error {
	e := verificationEmail(s.cfg.From, to, code)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send verification email", "to", to, applog.FieldError, err)
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.InfoContext(ctx, "Verification email sent", "to", to)
	return nil
}

func verificationEmail(from, to, code string) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = "Your FinApp verification code"
	e.Text = []byte(fmt.Sprintf(
		"Your verification code is %s.\n\n"+
			"It expires in 15 minutes. If you did not try to create a FinApp account, ignore this email.\n",
		code))
	return e
}

// LogSender writes codes to the log instead of sending them. It is used
// when no SMTP server is configured and keeps the last code per address
// so tests can read it.
type LogSender struct {
	logger *applog.Logger

	mu    sync.Mutex
	codes map[string]string
}

func NewLogSender(logger *applog.Logger) *LogSender {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LogSender{
		logger: logger.WithComponent(applog.ComponentMail),
		codes:  make(map[string]string),
	}
}

func (s *LogSender) SendVerificationCode(ctx context.Context, to, code string) error {
	s.mu.Lock()
	s.codes[to] = code
	s.mu.Unlock()
	s.logger.WarnContext(ctx, "SMTP not configured, verification code logged", "to", to, "code", code)
	return nil
}

// LastCode returns the most recent code sent to an address.
func (s *LogSender) LastCode(to string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[to]
	return code, ok
}
