package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/datatest"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

func newWorkspace(owner string) *structs.Workspace {
	now := data.Now()
	return &structs.Workspace{ID: uuid.NewString(), Name: "Team", OwnerID: owner, CreatedAt: now, UpdatedAt: now}
}

func TestCreateInsertsOwnerMembership(t *testing.T) {
	ctx := context.Background()
	repo, err := NewWorkspaceRepository(datatest.New(t), logger.Nop(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	ws := newWorkspace("u1")
	if err := repo.Create(ctx, ws); err != nil {
		t.Fatal(err)
	}
	got, err := repo.FindByID(ctx, ws.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != "u1" {
		t.Errorf("members = %v", got.MemberIDs)
	}

	list, err := repo.ListByMember(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByMember = %v, %v", list, err)
	}
	ids, err := repo.IDsByMember(ctx, "u1")
	if err != nil || len(ids) != 1 || ids[0] != ws.ID {
		t.Errorf("IDsByMember = %v, %v", ids, err)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewWorkspaceRepository(datatest.New(t), logger.Nop(), time.Minute)
	ws := newWorkspace("u1")
	if err := repo.Create(ctx, ws); err != nil {
		t.Fatal(err)
	}

	for i, want := range []bool{true, false} {
		added, err := repo.AddMember(ctx, ws.ID, "u2")
		if err != nil || added != want {
			t.Fatalf("AddMember #%d = %v, %v", i, added, err)
		}
	}
	if added, _ := repo.AddMember(ctx, ws.ID, "u1"); added {
		t.Error("owner added twice")
	}
	got, _ := repo.FindByID(ctx, ws.ID)
	if len(got.MemberIDs) != 2 {
		t.Errorf("members = %v", got.MemberIDs)
	}
}

func TestInvitations(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewWorkspaceRepository(datatest.New(t), logger.Nop(), time.Minute)
	ws := newWorkspace("u1")
	_ = repo.Create(ctx, ws)

	inv := &structs.Invitation{ID: uuid.NewString(), WorkspaceID: ws.ID, Email: "x@example.com", InvitedBy: "u1", CreatedAt: data.Now()}
	created, err := repo.CreateInvitation(ctx, inv)
	if err != nil || !created {
		t.Fatalf("CreateInvitation = %v, %v", created, err)
	}
	dup := *inv
	dup.ID = uuid.NewString()
	if created, err := repo.CreateInvitation(ctx, &dup); err != nil || created {
		t.Errorf("duplicate CreateInvitation = %v, %v", created, err)
	}

	pending, err := repo.PendingInvitations(ctx, "x@example.com")
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, %v", pending, err)
	}
	if err := repo.MarkInvitationAccepted(ctx, pending[0].ID, data.Now()); err != nil {
		t.Fatal(err)
	}
	pending, _ = repo.PendingInvitations(ctx, "x@example.com")
	if len(pending) != 0 {
		t.Errorf("pending after accept = %v", pending)
	}
}

func TestFindByIDUsesCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	d := datatest.New(t)
	d.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo, _ := NewWorkspaceRepository(d, logger.Nop(), time.Minute)
	ws := newWorkspace("u1")
	if err := repo.Create(ctx, ws); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, ws.ID); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("workspaces:" + ws.ID) {
		t.Fatal("workspace not cached")
	}

	if _, err := repo.AddMember(ctx, ws.ID, "u2"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("workspaces:" + ws.ID) {
		t.Error("cache not invalidated by AddMember")
	}
	got, _ := repo.FindByID(ctx, ws.ID)
	if len(got.MemberIDs) != 2 {
		t.Errorf("members = %v", got.MemberIDs)
	}

	if _, err := repo.Delete(ctx, ws.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, ws.ID); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("find after delete err = %v", err)
	}
}
