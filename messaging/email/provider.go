package email

import (
	"fmt"

	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/logging/logger"
)

// NewSender creates the configured provider wrapped in a BreakerSender.
func NewSender(cfg *config.Email, l *logger.Logger) (Sender, error) {
	if cfg == nil {
		cfg = config.Default().Email
	}

	var (
		sender Sender
		err    error
	)
	switch cfg.Provider {
	case "mailgun":
		sender, err = NewMailgunSender(cfg.Mailgun.Domain, cfg.Mailgun.Key, cfg.From)
	case "sendgrid":
		sender, err = NewSendGridSender(cfg.SendGrid.Key, cfg.From)
	case "smtp":
		sender, err = NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.From)
	case "memory":
		sender = NewMemorySender()
	case "log", "":
		sender = NewLogSender(l)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewBreakerSender("email-"+cfg.Provider, sender, cfg.Timeout, cfg.Breaker), nil
}
