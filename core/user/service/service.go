// Package service contains user business logic.
package service

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/core/user/data/repository"
	"github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
)

type Service struct {
	repo   repository.UserRepository
	logger *logger.Logger
}

func NewService(repo repository.UserRepository, l *logger.Logger) *Service {
	return &Service{repo: repo, logger: l}
}

func (s *Service) FindByID(ctx context.Context, id string) (*structs.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*structs.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Summaries returns the public views of the given users, skipping ids that
// no longer resolve.
func (s *Service) Summaries(ctx context.Context, ids []string) ([]*structs.Summary, error) {
	users, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error(ctx, "Failed to list users", "error", err)
		return nil, err
	}
	out := make([]*structs.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// HandleMe returns the profile of the authenticated user.
func (s *Service) HandleMe(c *gin.Context) {
	userID := ctxutil.GetUserID(c)
	if userID == "" {
		resp.Fail(c.Writer, resp.UnAuthorized("not authenticated"))
		return
	}

	user, err := s.repo.FindByID(c.Request.Context(), userID)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, user)
}
