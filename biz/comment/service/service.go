package service

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/biz/comment/data/repository"
	"github.com/taskhive/taskhive/biz/comment/structs"
	"github.com/taskhive/taskhive/core/access"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/utils"
)

type Guard interface {
	Card(ctx context.Context, userID, id string) (*access.CardChain, error)
	CommentAuthor(ctx context.Context, userID, id string) (*structs.Comment, *access.CardChain, error)
}

type Service struct {
	repo   repository.CommentRepository
	guard  Guard
	logger *logger.Logger
}

func NewService(repo repository.CommentRepository, guard Guard, l *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, logger: l}
}

func (s *Service) Create(ctx context.Context, userID, cardID, content string) (*structs.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ecode.New(ecode.ErrValidation, ecode.FieldIsRequired("content"))
	}
	chain, err := s.guard.Card(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	c := &structs.Comment{
		ID:        uuid.NewString(),
		CardID:    chain.Card.ID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: data.Now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error(ctx, "Failed to create comment", "error", err, "card_id", cardID)
		return nil, err
	}
	return c, nil
}

func (s *Service) ListByCard(ctx context.Context, userID, cardID string) ([]*structs.Comment, error) {
	chain, err := s.guard.Card(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCard(ctx, chain.Card.ID)
}

// Delete removes a comment. Only its author may do so, even the workspace
// owner gets Forbidden.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	c, _, err := s.guard.CommentAuthor(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, c.ID)
}

func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	comment, err := s.Create(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), req.Content)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 201, comment)
}

func (s *Service) HandleList(c *gin.Context) {
	comments, err := s.ListByCard(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, comments)
}

func (s *Service) HandleDelete(c *gin.Context) {
	if err := s.Delete(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id")); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 204)
}
