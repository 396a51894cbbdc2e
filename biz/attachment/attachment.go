// Package attachment defines the card file attachment module.
package attachment

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/attachment/data/repository"
	"github.com/taskhive/taskhive/biz/attachment/service"
	"github.com/taskhive/taskhive/biz/attachment/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/oss"
)

type Attachment = structs.Attachment

type AttachmentRepository = repository.AttachmentRepository

type Module struct {
	service *service.Service
	repo    AttachmentRepository
	logger  *logger.Logger
}

func New(d *data.Data, l *logger.Logger) (*Module, error) {
	repo, err := repository.NewAttachmentRepository(d, l)
	if err != nil {
		return nil, err
	}
	return &Module{repo: repo, logger: l}, nil
}

func (m *Module) Init(guard service.Guard, storage oss.Interface, maxSize int64) {
	m.service = service.NewService(m.repo, guard, storage, maxSize, m.logger)
}

func (m *Module) Name() string {
	return "attachment"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/cards/:id/attachments", m.service.HandleUpload)
	r.GET("/cards/:id/attachments", m.service.HandleList)

	attachments := r.Group("/attachments")
	{
		attachments.GET("/:id/download", m.service.HandleDownload)
		attachments.DELETE("/:id", m.service.HandleDelete)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() AttachmentRepository {
	return m.repo
}
