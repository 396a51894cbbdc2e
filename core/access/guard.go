package access

import (
	"context"
	"errors"

	attachment "github.com/taskhive/taskhive/biz/attachment/structs"
	board "github.com/taskhive/taskhive/biz/board/structs"
	card "github.com/taskhive/taskhive/biz/card/structs"
	comment "github.com/taskhive/taskhive/biz/comment/structs"
	tasklist "github.com/taskhive/taskhive/biz/tasklist/structs"
	workspace "github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/ecode"
)

// Finders load one resource by id and return an error wrapping
// ecode.ErrNotFound when it does not exist. WorkspaceFinder must fill the
// member set.
type (
	WorkspaceFinder interface {
		FindByID(ctx context.Context, id string) (*workspace.Workspace, error)
	}
	BoardFinder interface {
		FindByID(ctx context.Context, id string) (*board.Board, error)
	}
	ListFinder interface {
		FindByID(ctx context.Context, id string) (*tasklist.List, error)
	}
	CardFinder interface {
		FindByID(ctx context.Context, id string) (*card.Card, error)
	}
	CommentFinder interface {
		FindByID(ctx context.Context, id string) (*comment.Comment, error)
	}
	AttachmentFinder interface {
		FindByID(ctx context.Context, id string) (*attachment.Attachment, error)
	}
)

var (
	errNotMember   = ecode.New(ecode.ErrForbidden, ecode.Denied("not a member of this workspace"))
	errNotOwner    = ecode.New(ecode.ErrForbidden, ecode.Denied("only the workspace owner may do this"))
	errNotAuthor   = ecode.New(ecode.ErrForbidden, ecode.Denied("only the author may do this"))
	errBrokenChain = ecode.New(ecode.ErrNotFound, ecode.NotExist("resource"))
)

// Finders groups the loaders used by Guard.
type Finders struct {
	Workspaces  WorkspaceFinder
	Boards      BoardFinder
	Lists       ListFinder
	Cards       CardFinder
	Comments    CommentFinder
	Attachments AttachmentFinder
}

// Guard loads resources with their ownership chain and checks membership.
type Guard struct {
	f Finders
}

func NewGuard(f Finders) *Guard {
	return &Guard{f: f}
}

// Workspace returns the workspace when userID is a member.
func (g *Guard) Workspace(ctx context.Context, userID, id string) (*workspace.Workspace, error) {
	ws, err := g.f.Workspaces.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsMember(userID, ws) {
		return nil, errNotMember
	}
	return ws, nil
}

// Owner returns the workspace when userID owns it.
func (g *Guard) Owner(ctx context.Context, userID, id string) (*workspace.Workspace, error) {
	ws, err := g.f.Workspaces.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsOwner(userID, ws) {
		return nil, errNotOwner
	}
	return ws, nil
}

// Board returns the board and its workspace when userID may access it.
func (g *Guard) Board(ctx context.Context, userID, id string) (*board.Board, *workspace.Workspace, error) {
	b, err := g.f.Boards.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ws, err := g.parentWorkspace(ctx, b.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	if !CanAccessBoard(userID, b, ws) {
		return nil, nil, errNotMember
	}
	return b, ws, nil
}

// ListChain is a list with its ancestors.
type ListChain struct {
	List      *tasklist.List
	Board     *board.Board
	Workspace *workspace.Workspace
}

// List returns the list chain when userID may access the list.
func (g *Guard) List(ctx context.Context, userID, id string) (*ListChain, error) {
	l, err := g.f.Lists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := g.parentBoard(ctx, l.BoardID)
	if err != nil {
		return nil, err
	}
	ws, err := g.parentWorkspace(ctx, b.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !CanAccessList(userID, l, b, ws) {
		return nil, errNotMember
	}
	return &ListChain{List: l, Board: b, Workspace: ws}, nil
}

// Card returns the card chain when userID may access the card.
func (g *Guard) Card(ctx context.Context, userID, id string) (*CardChain, error) {
	c, err := g.f.Cards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.cardChain(ctx, userID, c)
}

// Comment returns the comment and its card chain when userID may access the
// comment's card.
func (g *Guard) Comment(ctx context.Context, userID, id string) (*comment.Comment, *CardChain, error) {
	cm, err := g.f.Comments.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	chain, err := g.loadCardChain(ctx, cm.CardID)
	if err != nil {
		return nil, nil, err
	}
	if !CanAccessComment(userID, cm, chain) {
		return nil, nil, errNotMember
	}
	return cm, chain, nil
}

// CommentAuthor is Comment restricted to the comment's author.
func (g *Guard) CommentAuthor(ctx context.Context, userID, id string) (*comment.Comment, *CardChain, error) {
	cm, chain, err := g.Comment(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if !IsAuthor(userID, cm) {
		return nil, nil, errNotAuthor
	}
	return cm, chain, nil
}

// Attachment returns the attachment and its card chain when userID may
// access the attachment's card.
func (g *Guard) Attachment(ctx context.Context, userID, id string) (*attachment.Attachment, *CardChain, error) {
	a, err := g.f.Attachments.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	chain, err := g.loadCardChain(ctx, a.CardID)
	if err != nil {
		return nil, nil, err
	}
	if !CanAccessAttachment(userID, a, chain) {
		return nil, nil, errNotMember
	}
	return a, chain, nil
}

func (g *Guard) cardChain(ctx context.Context, userID string, c *card.Card) (*CardChain, error) {
	l, err := g.parentList(ctx, c.ListID)
	if err != nil {
		return nil, err
	}
	b, err := g.parentBoard(ctx, l.BoardID)
	if err != nil {
		return nil, err
	}
	ws, err := g.parentWorkspace(ctx, b.WorkspaceID)
	if err != nil {
		return nil, err
	}
	chain := &CardChain{Card: c, List: l, Board: b, Workspace: ws}
	if !CanAccessCard(userID, chain) {
		return nil, errNotMember
	}
	return chain, nil
}

// loadCardChain loads a card chain without checking membership.
func (g *Guard) loadCardChain(ctx context.Context, cardID string) (*CardChain, error) {
	c, err := g.f.Cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, dangling(err)
	}
	l, err := g.parentList(ctx, c.ListID)
	if err != nil {
		return nil, err
	}
	b, err := g.parentBoard(ctx, l.BoardID)
	if err != nil {
		return nil, err
	}
	ws, err := g.parentWorkspace(ctx, b.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return &CardChain{Card: c, List: l, Board: b, Workspace: ws}, nil
}

func (g *Guard) parentList(ctx context.Context, id string) (*tasklist.List, error) {
	l, err := g.f.Lists.FindByID(ctx, id)
	if err != nil {
		return nil, dangling(err)
	}
	return l, nil
}

func (g *Guard) parentBoard(ctx context.Context, id string) (*board.Board, error) {
	b, err := g.f.Boards.FindByID(ctx, id)
	if err != nil {
		return nil, dangling(err)
	}
	return b, nil
}

func (g *Guard) parentWorkspace(ctx context.Context, id string) (*workspace.Workspace, error) {
	ws, err := g.f.Workspaces.FindByID(ctx, id)
	if err != nil {
		return nil, dangling(err)
	}
	return ws, nil
}

// dangling reports a missing ancestor as the requested resource not being
// found.
func dangling(err error) error {
	if errors.Is(err, ecode.ErrNotFound) {
		return errBrokenChain
	}
	return err
}
