package email

import (
	"context"
	"errors"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender implements Sender for Mailgun
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

// NewMailgunSender creates a Mailgun sender
func NewMailgunSender(domain, key, from string) (*MailgunSender, error) {
	if key == "" || domain == "" || from == "" {
		return nil, errors.New("invalid Mailgun configuration")
	}
	return &MailgunSender{mg: mailgun.NewMailgun(domain, key), from: from}, nil
}

// Send sends the message through the Mailgun API
func (s *MailgunSender) Send(ctx context.Context, msg *Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}
	message := s.mg.NewMessage(s.from, msg.Subject, msg.Body, msg.To)
	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}
