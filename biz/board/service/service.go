// Package service contains board business logic.
package service

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/biz/board/data/repository"
	"github.com/taskhive/taskhive/biz/board/structs"
	wsstructs "github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/oss"
	"github.com/taskhive/taskhive/utils"
)

var ErrTitleTaken = ecode.New(ecode.ErrConflict, "a board with this title already exists in the workspace")

type Guard interface {
	Workspace(ctx context.Context, userID, id string) (*wsstructs.Workspace, error)
	Board(ctx context.Context, userID, id string) (*structs.Board, *wsstructs.Workspace, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, workspaceID, action, location string)
}

type Service struct {
	repo     repository.BoardRepository
	guard    Guard
	activity ActivityRecorder
	blobs    oss.Deleter
	logger   *logger.Logger
}

func NewService(repo repository.BoardRepository, guard Guard, activity ActivityRecorder, blobs oss.Deleter, l *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, activity: activity, blobs: blobs, logger: l}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ecode.New(ecode.ErrValidation, ecode.FieldIsRequired("title"))
	}
	return title, nil
}

// Create adds a board to a workspace userID belongs to. Titles are unique
// per workspace, ignoring case.
func (s *Service) Create(ctx context.Context, userID, workspaceID, title string) (*structs.Board, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	ws, err := s.guard.Workspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.TitleTaken(ctx, ws.ID, title, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTitleTaken
	}
	position, err := s.repo.CountByWorkspace(ctx, ws.ID)
	if err != nil {
		return nil, err
	}

	now := data.Now()
	b := &structs.Board{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		Title:       title,
		CreatedBy:   userID,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error(ctx, "Failed to create board", "error", err)
		return nil, err
	}
	if s.activity != nil {
		s.activity.Record(ctx, userID, ws.ID, "Created board", "Workspace: "+ws.Name+" → Board: "+b.Title)
	}
	s.logger.Info(ctx, "Board created", "board_id", b.ID, "workspace_id", ws.ID)
	return b, nil
}

func (s *Service) List(ctx context.Context, userID, workspaceID string) ([]*structs.Board, error) {
	ws, err := s.guard.Workspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByWorkspace(ctx, ws.ID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*structs.Board, error) {
	b, _, err := s.guard.Board(ctx, userID, id)
	return b, err
}

func (s *Service) Rename(ctx context.Context, userID, id, title string) (*structs.Board, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	b, _, err := s.guard.Board(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.TitleTaken(ctx, b.WorkspaceID, title, b.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTitleTaken
	}
	b.Title = title
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the board with its lists, cards, comments and attachments.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	b, _, err := s.guard.Board(ctx, userID, id)
	if err != nil {
		return err
	}
	paths, err := s.repo.Delete(ctx, b)
	if err != nil {
		s.logger.Error(ctx, "Failed to delete board", "error", err, "board_id", b.ID)
		return err
	}
	if err := oss.DeleteAll(ctx, s.blobs, paths); err != nil {
		s.logger.Warn(ctx, "Failed to delete attachment blobs", "error", err, "board_id", b.ID)
	}
	s.logger.Info(ctx, "Board deleted", "board_id", b.ID, "user_id", userID)
	return nil
}

func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	b, err := s.Create(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), req.Title)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 201, b)
}

func (s *Service) HandleList(c *gin.Context) {
	boards, err := s.List(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, boards)
}

func (s *Service) HandleGet(c *gin.Context) {
	b, err := s.Get(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, b)
}

func (s *Service) HandleUpdate(c *gin.Context) {
	var req structs.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	b, err := s.Rename(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), req.Title)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, b)
}

func (s *Service) HandleDelete(c *gin.Context) {
	if err := s.Delete(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id")); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 204)
}
