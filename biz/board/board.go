// Package board defines board module routing and wiring.
package board

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/board/data/repository"
	"github.com/taskhive/taskhive/biz/board/service"
	"github.com/taskhive/taskhive/biz/board/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/oss"
)

type Board = structs.Board

type BoardRepository = repository.BoardRepository

type Module struct {
	service *service.Service
	repo    BoardRepository
	logger  *logger.Logger
}

func New(d *data.Data, l *logger.Logger, cacheTTL time.Duration) (*Module, error) {
	repo, err := repository.NewBoardRepository(d, l, cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Module{repo: repo, logger: l}, nil
}

func (m *Module) Init(guard service.Guard, activity service.ActivityRecorder, blobs oss.Deleter) {
	m.service = service.NewService(m.repo, guard, activity, blobs, m.logger)
}

func (m *Module) Name() string {
	return "board"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/workspaces/:id/boards", m.service.HandleCreate)
	r.GET("/workspaces/:id/boards", m.service.HandleList)

	boards := r.Group("/boards")
	{
		boards.GET("/:id", m.service.HandleGet)
		boards.PUT("/:id", m.service.HandleUpdate)
		boards.DELETE("/:id", m.service.HandleDelete)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() BoardRepository {
	return m.repo
}
