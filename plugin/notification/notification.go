// Package notification sends the OTP, invitation and due-date reminder
// emails.
package notification

import (
	"context"

	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/messaging/email"
	"github.com/taskhive/taskhive/plugin/notification/service"
)

type Module struct {
	service *service.Service
	logger  *logger.Logger
}

func New(sender email.Sender, l *logger.Logger) *Module {
	m := &Module{
		service: service.NewService(l, sender),
		logger:  l,
	}
	l.Info(context.Background(), "Notification plugin initialized", "plugin", m.Name())
	return m
}

func (m *Module) Name() string {
	return "notification"
}

func (m *Module) Service() *service.Service {
	return m.service
}
