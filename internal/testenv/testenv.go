// Package testenv builds a migrated store with every repository and the
// access guard, and seeds ownership chains for service tests.
package testenv

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	attachmentrepo "github.com/taskhive/taskhive/biz/attachment/data/repository"
	boardrepo "github.com/taskhive/taskhive/biz/board/data/repository"
	boardstructs "github.com/taskhive/taskhive/biz/board/structs"
	cardrepo "github.com/taskhive/taskhive/biz/card/data/repository"
	cardstructs "github.com/taskhive/taskhive/biz/card/structs"
	commentrepo "github.com/taskhive/taskhive/biz/comment/data/repository"
	listrepo "github.com/taskhive/taskhive/biz/tasklist/data/repository"
	liststructs "github.com/taskhive/taskhive/biz/tasklist/structs"
	"github.com/taskhive/taskhive/core/access"
	userrepo "github.com/taskhive/taskhive/core/user/data/repository"
	userstructs "github.com/taskhive/taskhive/core/user/structs"
	wsrepo "github.com/taskhive/taskhive/core/workspace/data/repository"
	wsstructs "github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/datatest"
	"github.com/taskhive/taskhive/logging/logger"
)

type Env struct {
	T           testing.TB
	Data        *data.Data
	Users       userrepo.UserRepository
	Workspaces  wsrepo.WorkspaceRepository
	Boards      boardrepo.BoardRepository
	Lists       listrepo.ListRepository
	Cards       cardrepo.CardRepository
	Comments    commentrepo.CommentRepository
	Attachments attachmentrepo.AttachmentRepository
	Guard       *access.Guard
}

func New(t testing.TB) *Env {
	t.Helper()
	d := datatest.New(t)
	l := logger.Nop()
	e := &Env{T: t, Data: d}

	var err error
	check := func() {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	e.Users, err = userrepo.NewUserRepository(d, l)
	check()
	e.Workspaces, err = wsrepo.NewWorkspaceRepository(d, l, time.Minute)
	check()
	e.Boards, err = boardrepo.NewBoardRepository(d, l, time.Minute)
	check()
	e.Lists, err = listrepo.NewListRepository(d, l)
	check()
	e.Cards, err = cardrepo.NewCardRepository(d, l)
	check()
	e.Comments, err = commentrepo.NewCommentRepository(d, l)
	check()
	e.Attachments, err = attachmentrepo.NewAttachmentRepository(d, l)
	check()

	e.Guard = access.NewGuard(access.Finders{
		Workspaces:  e.Workspaces,
		Boards:      e.Boards,
		Lists:       e.Lists,
		Cards:       e.Cards,
		Comments:    e.Comments,
		Attachments: e.Attachments,
	})
	return e
}

// User creates a user with the given email; the username is the local part.
func (e *Env) User(email string) *userstructs.User {
	e.T.Helper()
	now := data.Now()
	name := email
	for i, r := range email {
		if r == '@' {
			name = email[:i]
			break
		}
	}
	u := &userstructs.User{ID: uuid.NewString(), Email: email, Username: name, CreatedAt: now, UpdatedAt: now}
	if err := e.Users.Create(context.Background(), u); err != nil {
		e.T.Fatal(err)
	}
	return u
}

// Chain is a seeded workspace → board → list.
type Chain struct {
	Workspace *wsstructs.Workspace
	Board     *boardstructs.Board
	List      *liststructs.List
}

// Chain creates a workspace owned by ownerID with the extra members, one
// board and one list.
func (e *Env) Chain(ownerID string, members ...string) *Chain {
	e.T.Helper()
	ctx := context.Background()
	now := data.Now()

	ws := &wsstructs.Workspace{ID: uuid.NewString(), Name: "Team", OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := e.Workspaces.Create(ctx, ws); err != nil {
		e.T.Fatal(err)
	}
	for _, m := range members {
		if _, err := e.Workspaces.AddMember(ctx, ws.ID, m); err != nil {
			e.T.Fatal(err)
		}
		ws.MemberIDs = append(ws.MemberIDs, m)
	}
	b := &boardstructs.Board{ID: uuid.NewString(), WorkspaceID: ws.ID, Title: "Board", CreatedBy: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := e.Boards.Create(ctx, b); err != nil {
		e.T.Fatal(err)
	}
	l := &liststructs.List{ID: uuid.NewString(), BoardID: b.ID, Title: "To do", CreatedAt: now, UpdatedAt: now}
	if err := e.Lists.Create(ctx, l); err != nil {
		e.T.Fatal(err)
	}
	return &Chain{Workspace: ws, Board: b, List: l}
}

// Card stores a card in listID. A zero due time means no due date.
func (e *Env) Card(listID, title, assigneeID string, due time.Time) *cardstructs.Card {
	e.T.Helper()
	now := data.Now()
	c := &cardstructs.Card{
		ID: uuid.NewString(), ListID: listID, Title: title, AssigneeID: assigneeID,
		CreatedBy: assigneeID, CreatedAt: now, UpdatedAt: now,
	}
	if !due.IsZero() {
		d := data.Timestamp(due)
		c.DueDate = &d
	}
	if err := e.Cards.Create(context.Background(), c); err != nil {
		e.T.Fatal(err)
	}
	return c
}
