// Package repository stores boards.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive/taskhive/biz/board/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/cache"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

var ErrBoardNotFound = ecode.New(ecode.ErrNotFound, ecode.NotExist("board"))

type BoardRepository interface {
	Create(ctx context.Context, b *structs.Board) error
	FindByID(ctx context.Context, id string) (*structs.Board, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*structs.Board, error)
	Update(ctx context.Context, b *structs.Board) error
	// Delete removes the board and everything below it and returns the
	// storage paths of the removed attachments.
	Delete(ctx context.Context, b *structs.Board) ([]string, error)
	// TitleTaken reports whether another board of the workspace has the
	// title, compared case-insensitively.
	TitleTaken(ctx context.Context, workspaceID, title, exceptID string) (bool, error)
	CountByWorkspace(ctx context.Context, workspaceID string) (int, error)
}

const boardColumns = `id, workspace_id, title, created_by, position, created_at, updated_at`

type boardRepository struct {
	d      *data.Data
	logger *logger.Logger
	// boards of a workspace, keyed by workspace id
	cache *cache.Cache[[]*structs.Board]
}

func NewBoardRepository(d *data.Data, l *logger.Logger, ttl time.Duration) (BoardRepository, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &boardRepository{
		d:      d,
		logger: l,
		cache:  cache.NewCache[[]*structs.Board](d.Redis, "workspace_boards", ttl),
	}, nil
}

func (r *boardRepository) Create(ctx context.Context, b *structs.Board) error {
	if _, err := r.d.Exec(ctx, `
		INSERT INTO boards (`+boardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.WorkspaceID, b.Title, b.CreatedBy, b.Position, b.CreatedAt, b.UpdatedAt); err != nil {
		return err
	}
	r.invalidate(ctx, b.WorkspaceID)
	return nil
}

func (r *boardRepository) FindByID(ctx context.Context, id string) (*structs.Board, error) {
	b := &structs.Board{}
	if err := r.d.Get(ctx, b, `SELECT `+boardColumns+` FROM boards WHERE id = ?`, id); err != nil {
		if data.IsNotFound(err) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *boardRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*structs.Board, error) {
	if cached, err := r.cache.Get(ctx, workspaceID); err != nil {
		r.logger.Warn(ctx, "board cache read failed", "error", err, "workspace_id", workspaceID)
	} else if cached != nil {
		return *cached, nil
	}

	boards := []*structs.Board{}
	if err := r.d.Select(ctx, &boards, `
		SELECT `+boardColumns+` FROM boards WHERE workspace_id = ? ORDER BY position, created_at, id
	`, workspaceID); err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, workspaceID, &boards); err != nil {
		r.logger.Warn(ctx, "board cache write failed", "error", err, "workspace_id", workspaceID)
	}
	return boards, nil
}

func (r *boardRepository) Update(ctx context.Context, b *structs.Board) error {
	b.UpdatedAt = data.Now()
	res, err := r.d.Exec(ctx, `
		UPDATE boards SET title = ?, position = ?, updated_at = ? WHERE id = ?
	`, b.Title, b.Position, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBoardNotFound
	}
	r.invalidate(ctx, b.WorkspaceID)
	return nil
}

func (r *boardRepository) Delete(ctx context.Context, b *structs.Board) ([]string, error) {
	paths, err := r.d.Cascade(ctx, data.ScopeBoard, b.ID)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, b.WorkspaceID)
	return paths, nil
}

func (r *boardRepository) TitleTaken(ctx context.Context, workspaceID, title, exceptID string) (bool, error) {
	var n int
	err := r.d.Get(ctx, &n, `
		SELECT COUNT(*) FROM boards WHERE workspace_id = ? AND LOWER(title) = LOWER(?) AND id <> ?
	`, workspaceID, title, exceptID)
	return n > 0, err
}

func (r *boardRepository) CountByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	var n int
	err := r.d.Get(ctx, &n, `SELECT COUNT(*) FROM boards WHERE workspace_id = ?`, workspaceID)
	return n, err
}

func (r *boardRepository) invalidate(ctx context.Context, workspaceID string) {
	if err := r.cache.Delete(ctx, workspaceID); err != nil {
		r.logger.Warn(ctx, "board cache delete failed", "error", err, "workspace_id", workspaceID)
	}
}
