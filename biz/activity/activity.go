// Package activity defines the activity log module.
package activity

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/activity/data/repository"
	"github.com/taskhive/taskhive/biz/activity/service"
	"github.com/taskhive/taskhive/biz/activity/structs"
	"github.com/taskhive/taskhive/logging/logger"
)

type Entry = structs.Entry
type Store = repository.Store

type Module struct {
	service *service.Service
	logger  *logger.Logger
}

func New(store Store, guard service.Guard, l *logger.Logger) *Module {
	return &Module{service: service.NewService(store, guard, l), logger: l}
}

func (m *Module) Name() string {
	return "activity"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/activity", m.service.HandleListMine)
	r.POST("/activity", m.service.HandleCreate)
	r.GET("/workspaces/:id/activity", m.service.HandleListWorkspace)
}

func (m *Module) Service() *service.Service {
	return m.service
}
