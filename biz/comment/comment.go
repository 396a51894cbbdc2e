// Package comment defines the card discussion module.
package comment

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/comment/data/repository"
	"github.com/taskhive/taskhive/biz/comment/service"
	"github.com/taskhive/taskhive/biz/comment/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
)

type Comment = structs.Comment

type CommentRepository = repository.CommentRepository

type Module struct {
	service *service.Service
	repo    CommentRepository
	logger  *logger.Logger
}

func New(d *data.Data, l *logger.Logger) (*Module, error) {
	repo, err := repository.NewCommentRepository(d, l)
	if err != nil {
		return nil, err
	}
	return &Module{repo: repo, logger: l}, nil
}

func (m *Module) Init(guard service.Guard) {
	m.service = service.NewService(m.repo, guard, m.logger)
}

func (m *Module) Name() string {
	return "comment"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/cards/:id/comments", m.service.HandleCreate)
	r.GET("/cards/:id/comments", m.service.HandleList)
	r.DELETE("/comments/:id", m.service.HandleDelete)
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() CommentRepository {
	return m.repo
}
