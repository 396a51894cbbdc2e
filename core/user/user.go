// Package user defines user module routing and wiring.
package user

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/core/user/data/repository"
	"github.com/taskhive/taskhive/core/user/service"
	"github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
)

type User = structs.User
type Summary = structs.Summary

type UserRepository = repository.UserRepository

type Module struct {
	service *service.Service
	repo    UserRepository
	logger  *logger.Logger
}

func New(d *data.Data, l *logger.Logger) (*Module, error) {
	repo, err := repository.NewUserRepository(d, l)
	if err != nil {
		return nil, err
	}
	return &Module{
		service: service.NewService(repo, l),
		repo:    repo,
		logger:  l,
	}, nil
}

func (m *Module) Name() string {
	return "user"
}

// RegisterRoutes registers the authenticated user routes.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", m.service.HandleMe)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() UserRepository {
	return m.repo
}
