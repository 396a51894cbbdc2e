package config

import (
	"time"

	"github.com/spf13/viper"
)

// Email email config struct
type Email struct {
	// Provider is one of log, smtp, mailgun, sendgrid.
	Provider string
	From     string
	Timeout  time.Duration
	Breaker  *Breaker
	SMTP     *SMTP
	Mailgun  *Mailgun
	SendGrid *SendGrid
}

// Breaker circuit breaker config struct
type Breaker struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// MaxFailures consecutive failures open the circuit.
	MaxFailures uint32
}

// SMTP smtp config struct
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Mailgun mailgun config struct
type Mailgun struct {
	Domain string
	Key    string
}

// SendGrid sendgrid config struct
type SendGrid struct {
	Key string
}

// getEmailConfig returns the email configuration
func getEmailConfig(v *viper.Viper) *Email {
	return &Email{
		Provider: getStringOrDefault(v, "email.provider", "log"),
		From:     getStringOrDefault(v, "email.from", "TaskHive <no-reply@taskhive.local>"),
		Timeout:  getDurationOrDefault(v, "email.timeout", 10*time.Second),
		Breaker: &Breaker{
			MaxRequests: getUint32OrDefault(v, "email.breaker.max_requests", 1),
			Interval:    getDurationOrDefault(v, "email.breaker.interval", time.Minute),
			Timeout:     getDurationOrDefault(v, "email.breaker.timeout", 30*time.Second),
			MaxFailures: getUint32OrDefault(v, "email.breaker.max_failures", 5),
		},
		SMTP: &SMTP{
			Host:     v.GetString("email.smtp.host"),
			Port:     getIntOrDefault(v, "email.smtp.port", 587),
			Username: v.GetString("email.smtp.username"),
			Password: v.GetString("email.smtp.password"),
		},
		Mailgun: &Mailgun{
			Domain: v.GetString("email.mailgun.domain"),
			Key:    v.GetString("email.mailgun.key"),
		},
		SendGrid: &SendGrid{
			Key: v.GetString("email.sendgrid.key"),
		},
	}
}
