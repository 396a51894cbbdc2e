package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender is a generic interface for sending emails. It returns the provider
// message id when the provider reports one.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// ErrInvalidMessage is returned for messages without recipient or subject.
var ErrInvalidMessage = errors.New("invalid email message")

// validateMessage validates the recipient and subject
func validateMessage(msg *Message) error {
	if msg == nil || strings.TrimSpace(msg.Subject) == "" {
		return ErrInvalidMessage
	}
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("%w: recipient %q", ErrInvalidMessage, msg.To)
	}
	return nil
}

// splitAddress splits "Name <addr>" into its parts
func splitAddress(from string) (name, addr string) {
	parsed, err := mail.ParseAddress(from)
	if err != nil {
		return "", from
	}
	return parsed.Name, parsed.Address
}
