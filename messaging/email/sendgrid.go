package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender implements Sender for SendGrid
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridSender creates a SendGrid sender
func NewSendGridSender(key, from string) (*SendGridSender, error) {
	if key == "" || from == "" {
		return nil, errors.New("invalid SendGrid configuration")
	}
	name, addr := splitAddress(from)
	return &SendGridSender{
		client: sendgrid.NewSendClient(key),
		from:   mail.NewEmail(name, addr),
	}, nil
}

// Send sends the message through the SendGrid API
func (s *SendGridSender) Send(ctx context.Context, msg *Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return "", err
	}
	if response.StatusCode >= 300 {
		return "", fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
