package service

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	cardstructs "github.com/taskhive/taskhive/biz/card/structs"
	"github.com/taskhive/taskhive/biz/reminder/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
)

const scanTimeout = 5 * time.Minute

type Scanner interface {
	RunOnce(ctx context.Context) (*structs.Result, error)
	Window() (time.Time, time.Time)
}

type CardFinder interface {
	FindDueBetweenInWorkspaces(ctx context.Context, workspaceIDs []string, start, end time.Time) ([]*cardstructs.Card, error)
}

type WorkspaceLister interface {
	IDsForUser(ctx context.Context, userID string) ([]string, error)
}

type Service struct {
	scanner    Scanner
	cards      CardFinder
	workspaces WorkspaceLister
	logger     *logger.Logger
}

func NewService(scanner Scanner, cards CardFinder, workspaces WorkspaceLister, l *logger.Logger) *Service {
	return &Service{scanner: scanner, cards: cards, workspaces: workspaces, logger: l}
}

// DueSoon lists the unreminded cards due within the window in the
// workspaces userID belongs to.
func (s *Service) DueSoon(ctx context.Context, userID string) ([]*cardstructs.Card, error) {
	ids, err := s.workspaces.IDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	start, end := s.scanner.Window()
	return s.cards.FindDueBetweenInWorkspaces(ctx, ids, start, end)
}

// HandleSend runs a scan that is not cancelled with the request.
func (s *Service) HandleSend(c *gin.Context) {
	ctx, cancel := ctxutil.WithAsyncContext(c.Request.Context(), scanTimeout)
	defer cancel()
	s.logger.Info(ctx, "Manual reminder scan requested", "user_id", ctxutil.GetUserID(c))
	res, err := s.scanner.RunOnce(ctx)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, res)
}

func (s *Service) HandleDueSoon(c *gin.Context) {
	cards, err := s.DueSoon(c.Request.Context(), ctxutil.GetUserID(c))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, cards)
}

func (s *Service) HandleDueSoonCount(c *gin.Context) {
	cards, err := s.DueSoon(c.Request.Context(), ctxutil.GetUserID(c))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, &structs.Count{Count: len(cards)})
}
