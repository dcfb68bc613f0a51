package notification

import (
	"context"
	"fmt"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender logs messages instead of sending them. Used when no SMTP host
// is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info("Email not sent, SMTP disabled",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// NewSender picks the SMTP sender when a host is configured.
func NewSender(cfg *config.SMTPConfig) Sender {
	if cfg == nil || cfg.Host == "" {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}
