// Package card defines card module routing and wiring.
package card

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/card/data/repository"
	"github.com/taskhive/taskhive/biz/card/service"
	"github.com/taskhive/taskhive/biz/card/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/oss"
)

type Card = structs.Card

type CardRepository = repository.CardRepository

type Module struct {
	service *service.Service
	repo    CardRepository
	logger  *logger.Logger
}

func New(d *data.Data, l *logger.Logger) (*Module, error) {
	repo, err := repository.NewCardRepository(d, l)
	if err != nil {
		return nil, err
	}
	return &Module{repo: repo, logger: l}, nil
}

func (m *Module) Init(guard service.Guard, activity service.ActivityRecorder, blobs oss.Deleter) {
	m.service = service.NewService(m.repo, guard, activity, blobs, m.logger)
}

func (m *Module) Name() string {
	return "card"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/lists/:id/cards", m.service.HandleCreate)
	r.GET("/lists/:id/cards", m.service.HandleList)

	cards := r.Group("/cards")
	{
		cards.GET("/:id", m.service.HandleGet)
		cards.PUT("/:id", m.service.HandleUpdate)
		cards.PUT("/:id/move", m.service.HandleMove)
		cards.DELETE("/:id", m.service.HandleDelete)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() CardRepository {
	return m.repo
}
