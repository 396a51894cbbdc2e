// Package reminder emails card assignees shortly before a card falls due.
//
// A Runner scans on a fixed interval for cards due within the window that
// have not been reminded, sends one email per card through a Notifier and
// marks the card. Editing the due date or the assignee clears the mark, so
// each due date is reminded once.
package reminder

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/reminder/service"
	"github.com/taskhive/taskhive/biz/reminder/structs"
	"github.com/taskhive/taskhive/logging/logger"
)

type Result = structs.Result

type Module struct {
	runner  *Runner
	service *service.Service
}

func New(runner *Runner, cards service.CardFinder, workspaces service.WorkspaceLister, l *logger.Logger) *Module {
	return &Module{
		runner:  runner,
		service: service.NewService(runner, cards, workspaces, l),
	}
}

func (m *Module) Name() string {
	return "reminder"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	reminders := r.Group("/reminders")
	{
		reminders.POST("/send", m.service.HandleSend)
		reminders.GET("/due-soon", m.service.HandleDueSoon)
		reminders.GET("/due-soon/count", m.service.HandleDueSoonCount)
	}
}

func (m *Module) Runner() *Runner {
	return m.runner
}

func (m *Module) Service() *service.Service {
	return m.service
}
