// Package service records and lists activity log entries.
package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/biz/activity/data/repository"
	"github.com/taskhive/taskhive/biz/activity/structs"
	wsstructs "github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/paging"
	"github.com/taskhive/taskhive/utils"
)

// NextCursorHeader carries the cursor of the next page of a listing.
const NextCursorHeader = "X-Next-Cursor"

type Guard interface {
	Workspace(ctx context.Context, userID, id string) (*wsstructs.Workspace, error)
}

type Service struct {
	store  repository.Store
	guard  Guard
	logger *logger.Logger
}

func NewService(store repository.Store, guard Guard, l *logger.Logger) *Service {
	return &Service{store: store, guard: guard, logger: l}
}

// Record appends an entry. A failure is logged and never returned, so
// logging activity cannot fail the mutation that caused it.
func (s *Service) Record(ctx context.Context, userID, workspaceID, action, location string) {
	entry := &structs.Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Action:      action,
		Location:    location,
		CreatedAt:   data.Now(),
	}
	if err := s.store.Save(ctx, entry); err != nil {
		s.logger.Error(ctx, "Failed to record activity", "error", err, "action", action, "user_id", userID)
	}
}

// Create stores a manual entry by userID.
func (s *Service) Create(ctx context.Context, userID string, req *structs.CreateEntryRequest) (*structs.Entry, error) {
	req.Action = strings.TrimSpace(req.Action)
	if err := utils.ValidateVar("action", req.Action, "required,max=255"); err != nil {
		return nil, err
	}
	entry := &structs.Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    req.Action,
		Location:  req.Location,
		CreatedAt: data.Now(),
	}
	if err := s.store.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func entryCursor(e *structs.Entry) paging.Cursor {
	return paging.Cursor{Time: e.CreatedAt, ID: e.ID}
}

// ListMine returns a page of the entries recorded for userID, newest first.
func (s *Service) ListMine(ctx context.Context, userID string, params paging.Params) (*paging.Result[*structs.Entry], error) {
	params = paging.NormalizeParams(params, structs.DefaultLimit, structs.MaxLimit)
	return paging.Paginate(params, func(before *paging.Cursor, limit int) ([]*structs.Entry, error) {
		return s.store.ListByUser(ctx, userID, before, limit)
	}, entryCursor)
}

// ListWorkspace returns a page of the entries of a workspace userID belongs to.
func (s *Service) ListWorkspace(ctx context.Context, userID, workspaceID string, params paging.Params) (*paging.Result[*structs.Entry], error) {
	if _, err := s.guard.Workspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	params = paging.NormalizeParams(params, structs.DefaultLimit, structs.MaxLimit)
	return paging.Paginate(params, func(before *paging.Cursor, limit int) ([]*structs.Entry, error) {
		return s.store.ListByWorkspace(ctx, workspaceID, before, limit)
	}, entryCursor)
}

func parseParams(c *gin.Context) (paging.Params, error) {
	params := paging.Params{Cursor: c.Query("cursor")}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return params, ecode.New(ecode.ErrValidation, ecode.FieldIsInvalid("limit"))
		}
		params.Limit = n
	}
	return params, nil
}

// writePage writes the entries as a JSON array and the next cursor as a
// header.
func writePage(c *gin.Context, page *paging.Result[*structs.Entry]) {
	if page.HasNextPage {
		c.Header(NextCursorHeader, page.NextCursor)
	}
	resp.Success(c.Writer, page.Items)
}

func (s *Service) HandleListMine(c *gin.Context) {
	params, err := parseParams(c)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	page, err := s.ListMine(c.Request.Context(), ctxutil.GetUserID(c), params)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	writePage(c, page)
}

func (s *Service) HandleListWorkspace(c *gin.Context) {
	params, err := parseParams(c)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	page, err := s.ListWorkspace(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), params)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	writePage(c, page)
}

func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	entry, err := s.Create(c.Request.Context(), ctxutil.GetUserID(c), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 201, entry)
}
