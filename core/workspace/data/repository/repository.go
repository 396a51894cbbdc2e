// Package repository stores workspaces, their members and pending
// invitations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/cache"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

var ErrWorkspaceNotFound = ecode.New(ecode.ErrNotFound, ecode.NotExist("workspace"))

type WorkspaceRepository interface {
	// Create stores the workspace and its owner membership in one transaction.
	Create(ctx context.Context, ws *structs.Workspace) error
	FindByID(ctx context.Context, id string) (*structs.Workspace, error)
	ListByMember(ctx context.Context, userID string) ([]*structs.Workspace, error)
	// Delete removes the workspace and everything below it and returns the
	// storage paths of the removed attachments.
	Delete(ctx context.Context, id string) ([]string, error)

	// AddMember is an idempotent set insert; it reports whether a row was added.
	AddMember(ctx context.Context, workspaceID, userID string) (bool, error)
	IDsByMember(ctx context.Context, userID string) ([]string, error)

	// CreateInvitation stores a pending invitation unless one already
	// exists for the workspace and email; it reports whether it was created.
	CreateInvitation(ctx context.Context, inv *structs.Invitation) (bool, error)
	PendingInvitations(ctx context.Context, email string) ([]*structs.Invitation, error)
	MarkInvitationAccepted(ctx context.Context, id string, at time.Time) error
}

type workspaceRepository struct {
	d      *data.Data
	logger *logger.Logger
	cache  *cache.Cache[structs.Workspace]
}

// NewWorkspaceRepository creates the repository. Workspace lookups are
// cached in redis when the data layer has a client.
func NewWorkspaceRepository(d *data.Data, l *logger.Logger, ttl time.Duration) (WorkspaceRepository, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &workspaceRepository{
		d:      d,
		logger: l,
		cache:  cache.NewCache[structs.Workspace](d.Redis, "workspaces", ttl),
	}, nil
}

func (r *workspaceRepository) Create(ctx context.Context, ws *structs.Workspace) error {
	err := r.d.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.d.Exec(ctx, `
			INSERT INTO workspaces (id, name, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, ws.ID, ws.Name, ws.OwnerID, ws.CreatedAt, ws.UpdatedAt); err != nil {
			return err
		}
		_, err := r.d.Exec(ctx, `
			INSERT INTO workspace_members (workspace_id, user_id, joined_at) VALUES (?, ?, ?)
		`, ws.ID, ws.OwnerID, ws.CreatedAt)
		return err
	})
	if err != nil {
		return err
	}
	if !ws.HasMember(ws.OwnerID) {
		ws.MemberIDs = append([]string{ws.OwnerID}, ws.MemberIDs...)
	}
	r.logger.Debug(ctx, "workspace created", "workspace_id", ws.ID, "owner_id", ws.OwnerID)
	return nil
}

func (r *workspaceRepository) FindByID(ctx context.Context, id string) (*structs.Workspace, error) {
	_, inTx := data.GetTx(ctx)
	if !inTx {
		if cached, err := r.cache.Get(ctx, id); err != nil {
			r.logger.Warn(ctx, "workspace cache read failed", "error", err, "workspace_id", id)
		} else if cached != nil {
			return cached, nil
		}
	}

	ws := &structs.Workspace{}
	if err := r.d.Get(ctx, ws, `SELECT id, name, owner_id, created_at, updated_at FROM workspaces WHERE id = ?`, id); err != nil {
		if data.IsNotFound(err) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	members, err := r.memberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	ws.MemberIDs = members

	if !inTx {
		if err := r.cache.Set(ctx, id, ws); err != nil {
			r.logger.Warn(ctx, "workspace cache write failed", "error", err, "workspace_id", id)
		}
	}
	return ws, nil
}

func (r *workspaceRepository) memberIDs(ctx context.Context, workspaceID string) ([]string, error) {
	ids := []string{}
	err := r.d.Select(ctx, &ids, `
		SELECT user_id FROM workspace_members WHERE workspace_id = ? ORDER BY joined_at, user_id
	`, workspaceID)
	return ids, err
}

func (r *workspaceRepository) ListByMember(ctx context.Context, userID string) ([]*structs.Workspace, error) {
	list := []*structs.Workspace{}
	if err := r.d.Select(ctx, &list, `
		SELECT w.id, w.name, w.owner_id, w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY w.created_at, w.id
	`, userID); err != nil {
		return nil, err
	}
	for _, ws := range list {
		members, err := r.memberIDs(ctx, ws.ID)
		if err != nil {
			return nil, err
		}
		ws.MemberIDs = members
	}
	return list, nil
}

func (r *workspaceRepository) Delete(ctx context.Context, id string) ([]string, error) {
	paths, err := r.d.Cascade(ctx, data.ScopeWorkspace, id)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return paths, nil
}

func (r *workspaceRepository) AddMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	added := false
	err := r.d.WithTx(ctx, func(ctx context.Context) error {
		var n int
		if err := r.d.Get(ctx, &n, `
			SELECT COUNT(*) FROM workspace_members WHERE workspace_id = ? AND user_id = ?
		`, workspaceID, userID); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if _, err := r.d.Exec(ctx, `
			INSERT INTO workspace_members (workspace_id, user_id, joined_at) VALUES (?, ?, ?)
		`, workspaceID, userID, data.Now()); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		if data.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	if added {
		r.invalidate(ctx, workspaceID)
	}
	return added, nil
}

func (r *workspaceRepository) IDsByMember(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.d.Select(ctx, &ids, `SELECT workspace_id FROM workspace_members WHERE user_id = ?`, userID)
	return ids, err
}

func (r *workspaceRepository) CreateInvitation(ctx context.Context, inv *structs.Invitation) (bool, error) {
	var n int
	if err := r.d.Get(ctx, &n, `
		SELECT COUNT(*) FROM invitations WHERE workspace_id = ? AND email = ?
	`, inv.WorkspaceID, inv.Email); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := r.d.Exec(ctx, `
		INSERT INTO invitations (id, workspace_id, email, invited_by, created_at, accepted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.WorkspaceID, inv.Email, inv.InvitedBy, inv.CreatedAt, inv.AcceptedAt); err != nil {
		if data.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *workspaceRepository) PendingInvitations(ctx context.Context, email string) ([]*structs.Invitation, error) {
	list := []*structs.Invitation{}
	err := r.d.Select(ctx, &list, `
		SELECT id, workspace_id, email, invited_by, created_at, accepted_at
		FROM invitations
		WHERE email = ? AND accepted_at IS NULL
		ORDER BY created_at, id
	`, email)
	return list, err
}

func (r *workspaceRepository) MarkInvitationAccepted(ctx context.Context, id string, at time.Time) error {
	_, err := r.d.Exec(ctx, `UPDATE invitations SET accepted_at = ? WHERE id = ? AND accepted_at IS NULL`, at, id)
	return err
}

func (r *workspaceRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.logger.Warn(ctx, "workspace cache delete failed", "error", err, "workspace_id", id)
	}
}
