// Package service composes TaskHive emails and hands them to the sender.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	cardstructs "github.com/taskhive/taskhive/biz/card/structs"
	userstructs "github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/messaging/email"
)

const (
	OTPSubject = "Your TaskHive OTP Code"
	signature  = "Regards,\nTaskHive Team"
)

type Service struct {
	sender email.Sender
	logger *logger.Logger
}

func NewService(l *logger.Logger, sender email.Sender) *Service {
	return &Service{sender: sender, logger: l}
}

func (s *Service) send(ctx context.Context, kind string, msg *email.Message) error {
	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.logger.Warn(ctx, "Failed to send email", "kind", kind, "to", msg.To, "error", err)
		return err
	}
	s.logger.Debug(ctx, "Email sent", "kind", kind, "to", msg.To, "message_id", id)
	return nil
}

func minutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// SendOTP mails a one-time code valid for ttl.
func (s *Service) SendOTP(ctx context.Context, to, otp string, ttl time.Duration) error {
	return s.send(ctx, "otp", &email.Message{
		To:      to,
		Subject: OTPSubject,
		Body:    "Your OTP code is: " + otp + "\nIt expires in " + minutes(ttl) + ".",
	})
}

// SendInvite tells to that inviterName added them to a workspace.
func (s *Service) SendInvite(ctx context.Context, to, workspaceName, inviterName string) error {
	if strings.TrimSpace(inviterName) == "" {
		inviterName = "A teammate"
	}
	body := fmt.Sprintf("Hi,\n\n%s invited you to the workspace %q on TaskHive.\n"+
		"Sign in, or register with this email address, to start collaborating.\n\n%s",
		inviterName, workspaceName, signature)
	return s.send(ctx, "invite", &email.Message{
		To:      to,
		Subject: "You've been invited to " + workspaceName + " on TaskHive",
		Body:    body,
	})
}

// SendReminder tells the assignee that card is due soon.
func (s *Service) SendReminder(ctx context.Context, to *userstructs.User, card *cardstructs.Card) error {
	due := "soon"
	if card.DueDate != nil {
		due = card.DueDate.UTC().Format(time.RFC1123)
	}
	body := fmt.Sprintf("Hi %s,\n\nThis is a reminder that the card **%s** is due at %s.\n\n%s",
		to.Username, card.Title, due, signature)
	return s.send(ctx, "reminder", &email.Message{
		To:      to.Email,
		Subject: "Reminder: Card '" + card.Title + "' is due soon!",
		Body:    body,
	})
}
