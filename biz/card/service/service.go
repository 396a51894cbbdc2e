// Package service contains card business logic.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/biz/card/data/repository"
	"github.com/taskhive/taskhive/biz/card/structs"
	"github.com/taskhive/taskhive/core/access"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/oss"
	"github.com/taskhive/taskhive/utils"
)

var (
	ErrAssigneeNotMember = ecode.New(ecode.ErrValidation, "assignee must be a member of the workspace")
	ErrOtherWorkspace    = ecode.New(ecode.ErrValidation, "cards can only move to a list of the same workspace")
)

type Guard interface {
	List(ctx context.Context, userID, id string) (*access.ListChain, error)
	Card(ctx context.Context, userID, id string) (*access.CardChain, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, workspaceID, action, location string)
}

type Service struct {
	repo     repository.CardRepository
	guard    Guard
	activity ActivityRecorder
	blobs    oss.Deleter
	logger   *logger.Logger
}

func NewService(repo repository.CardRepository, guard Guard, activity ActivityRecorder, blobs oss.Deleter, l *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, activity: activity, blobs: blobs, logger: l}
}

func (s *Service) record(ctx context.Context, userID, workspaceID, action, location string) {
	if s.activity != nil {
		s.activity.Record(ctx, userID, workspaceID, action, location)
	}
}

func normalizeDue(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := data.Timestamp(*t)
	return &d
}

func sameDue(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Create adds a card to a list. The assignee, when given, must belong to
// the list's workspace.
func (s *Service) Create(ctx context.Context, userID, listID string, req *structs.CreateCardRequest) (*structs.Card, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ecode.New(ecode.ErrValidation, ecode.FieldIsRequired("title"))
	}
	chain, err := s.guard.List(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	assignee := strings.TrimSpace(req.AssigneeID)
	if assignee != "" && !access.IsMember(assignee, chain.Workspace) {
		return nil, ErrAssigneeNotMember
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else if position, err = s.repo.CountByList(ctx, chain.List.ID); err != nil {
		return nil, err
	}

	now := data.Now()
	c := &structs.Card{
		ID:           uuid.NewString(),
		ListID:       chain.List.ID,
		Title:        title,
		Description:  req.Description,
		DueDate:      normalizeDue(req.DueDate),
		AssigneeID:   assignee,
		ReminderSent: false,
		Position:     position,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error(ctx, "Failed to create card", "error", err)
		return nil, err
	}
	s.record(ctx, userID, chain.Workspace.ID, "created card", "List: "+chain.List.Title+" → Card: "+c.Title)
	return c, nil
}

func (s *Service) ListByList(ctx context.Context, userID, listID string) ([]*structs.Card, error) {
	chain, err := s.guard.List(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByList(ctx, chain.List.ID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*structs.Card, error) {
	chain, err := s.guard.Card(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return chain.Card, nil
}

// Update applies a partial update. Changing the due date or the assignee
// clears reminder_sent so the new due date gets its own reminder.
func (s *Service) Update(ctx context.Context, userID, id string, req *structs.UpdateCardRequest) (*structs.Card, error) {
	chain, err := s.guard.Card(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c := chain.Card

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ecode.New(ecode.ErrValidation, ecode.FieldIsRequired("title"))
		}
		c.Title = title
	}
	if req.Description != nil {
		c.Description = *req.Description
	}

	due := c.DueDate
	switch {
	case req.ClearDueDate:
		due = nil
	case req.DueDate != nil:
		due = normalizeDue(req.DueDate)
	}
	reset := false
	if !sameDue(due, c.DueDate) {
		c.DueDate = due
		reset = true
	}

	if req.AssigneeID != nil {
		assignee := strings.TrimSpace(*req.AssigneeID)
		if assignee != "" && !access.IsMember(assignee, chain.Workspace) {
			return nil, ErrAssigneeNotMember
		}
		if assignee != c.AssigneeID {
			c.AssigneeID = assignee
			reset = true
		}
	}
	if req.Position != nil {
		c.Position = *req.Position
	}

	if err := s.repo.Update(ctx, c, reset); err != nil {
		s.logger.Error(ctx, "Failed to update card", "error", err, "card_id", c.ID)
		return nil, err
	}
	s.record(ctx, userID, chain.Workspace.ID, "updated card", "Card: "+c.Title)
	return c, nil
}

// Move puts a card into another list of the same workspace.
func (s *Service) Move(ctx context.Context, userID, id string, req *structs.MoveCardRequest) (*structs.Card, error) {
	chain, err := s.guard.Card(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	target, err := s.guard.List(ctx, userID, req.ListID)
	if err != nil {
		return nil, err
	}
	if target.Workspace.ID != chain.Workspace.ID {
		return nil, ErrOtherWorkspace
	}

	c := chain.Card
	if req.Position != nil {
		c.Position = *req.Position
	} else if c.ListID != target.List.ID {
		if c.Position, err = s.repo.CountByList(ctx, target.List.ID); err != nil {
			return nil, err
		}
	}
	c.ListID = target.List.ID
	if err := s.repo.Update(ctx, c, false); err != nil {
		return nil, err
	}
	s.record(ctx, userID, chain.Workspace.ID, "moved card", "List: "+target.List.Title+" → Card: "+c.Title)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	chain, err := s.guard.Card(ctx, userID, id)
	if err != nil {
		return err
	}
	paths, err := s.repo.Delete(ctx, chain.Card.ID)
	if err != nil {
		s.logger.Error(ctx, "Failed to delete card", "error", err, "card_id", id)
		return err
	}
	if err := oss.DeleteAll(ctx, s.blobs, paths); err != nil {
		s.logger.Warn(ctx, "Failed to delete attachment blobs", "error", err, "card_id", id)
	}
	s.record(ctx, userID, chain.Workspace.ID, "deleted card", "Card: "+chain.Card.Title)
	return nil
}

func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	card, err := s.Create(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 201, card)
}

func (s *Service) HandleList(c *gin.Context) {
	cards, err := s.ListByList(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, cards)
}

func (s *Service) HandleGet(c *gin.Context) {
	card, err := s.Get(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, card)
}

func (s *Service) HandleUpdate(c *gin.Context) {
	var req structs.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	card, err := s.Update(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, card)
}

func (s *Service) HandleMove(c *gin.Context) {
	var req structs.MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	card, err := s.Move(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, card)
}

func (s *Service) HandleDelete(c *gin.Context) {
	if err := s.Delete(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id")); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 204)
}
