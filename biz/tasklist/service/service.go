// Package service contains list business logic.
package service

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	boardstructs "github.com/taskhive/taskhive/biz/board/structs"
	"github.com/taskhive/taskhive/biz/tasklist/data/repository"
	"github.com/taskhive/taskhive/biz/tasklist/structs"
	"github.com/taskhive/taskhive/core/access"
	wsstructs "github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/oss"
	"github.com/taskhive/taskhive/utils"
)

type Guard interface {
	Board(ctx context.Context, userID, id string) (*boardstructs.Board, *wsstructs.Workspace, error)
	List(ctx context.Context, userID, id string) (*access.ListChain, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, workspaceID, action, location string)
}

type Service struct {
	repo     repository.ListRepository
	guard    Guard
	activity ActivityRecorder
	blobs    oss.Deleter
	logger   *logger.Logger
}

func NewService(repo repository.ListRepository, guard Guard, activity ActivityRecorder, blobs oss.Deleter, l *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, activity: activity, blobs: blobs, logger: l}
}

// Create appends a list to a board, or inserts it at req.Position.
func (s *Service) Create(ctx context.Context, userID, boardID string, req *structs.CreateListRequest) (*structs.List, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ecode.New(ecode.ErrValidation, ecode.FieldIsRequired("title"))
	}
	b, ws, err := s.guard.Board(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else if position, err = s.repo.CountByBoard(ctx, b.ID); err != nil {
		return nil, err
	}

	now := data.Now()
	l := &structs.List{
		ID:        uuid.NewString(),
		BoardID:   b.ID,
		Title:     title,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error(ctx, "Failed to create list", "error", err)
		return nil, err
	}
	if s.activity != nil {
		s.activity.Record(ctx, userID, ws.ID, "created list", "Board: "+b.Title+" → List: "+l.Title)
	}
	return l, nil
}

// ListByBoard returns the lists of a board ordered by position.
func (s *Service) ListByBoard(ctx context.Context, userID, boardID string) ([]*structs.List, error) {
	b, _, err := s.guard.Board(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByBoard(ctx, b.ID)
}

func (s *Service) Update(ctx context.Context, userID, id string, req *structs.UpdateListRequest) (*structs.List, error) {
	chain, err := s.guard.List(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	l := chain.List
	if title := strings.TrimSpace(req.Title); title != "" {
		l.Title = title
	}
	if req.Position != nil {
		l.Position = *req.Position
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	chain, err := s.guard.List(ctx, userID, id)
	if err != nil {
		return err
	}
	paths, err := s.repo.Delete(ctx, chain.List.ID)
	if err != nil {
		s.logger.Error(ctx, "Failed to delete list", "error", err, "list_id", id)
		return err
	}
	if err := oss.DeleteAll(ctx, s.blobs, paths); err != nil {
		s.logger.Warn(ctx, "Failed to delete attachment blobs", "error", err, "list_id", id)
	}
	return nil
}

func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	l, err := s.Create(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 201, l)
}

func (s *Service) HandleList(c *gin.Context) {
	lists, err := s.ListByBoard(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, lists)
}

func (s *Service) HandleUpdate(c *gin.Context) {
	var req structs.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	l, err := s.Update(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, l)
}

func (s *Service) HandleDelete(c *gin.Context) {
	if err := s.Delete(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id")); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 204)
}
