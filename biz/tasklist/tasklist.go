// Package tasklist defines the list module: the columns of a board.
package tasklist

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/tasklist/data/repository"
	"github.com/taskhive/taskhive/biz/tasklist/service"
	"github.com/taskhive/taskhive/biz/tasklist/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/oss"
)

type List = structs.List

type ListRepository = repository.ListRepository

type Module struct {
	service *service.Service
	repo    ListRepository
	logger  *logger.Logger
}

func New(d *data.Data, l *logger.Logger) (*Module, error) {
	repo, err := repository.NewListRepository(d, l)
	if err != nil {
		return nil, err
	}
	return &Module{repo: repo, logger: l}, nil
}

func (m *Module) Init(guard service.Guard, activity service.ActivityRecorder, blobs oss.Deleter) {
	m.service = service.NewService(m.repo, guard, activity, blobs, m.logger)
}

func (m *Module) Name() string {
	return "tasklist"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/boards/:id/lists", m.service.HandleCreate)
	r.GET("/boards/:id/lists", m.service.HandleList)

	lists := r.Group("/lists")
	{
		lists.PUT("/:id", m.service.HandleUpdate)
		lists.DELETE("/:id", m.service.HandleDelete)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() ListRepository {
	return m.repo
}
