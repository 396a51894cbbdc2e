// Package repository stores lists.
package repository

import (
	"context"
	"errors"

	"github.com/taskhive/taskhive/biz/tasklist/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

var ErrListNotFound = ecode.New(ecode.ErrNotFound, ecode.NotExist("list"))

type ListRepository interface {
	Create(ctx context.Context, l *structs.List) error
	FindByID(ctx context.Context, id string) (*structs.List, error)
	ListByBoard(ctx context.Context, boardID string) ([]*structs.List, error)
	Update(ctx context.Context, l *structs.List) error
	Delete(ctx context.Context, id string) ([]string, error)
	CountByBoard(ctx context.Context, boardID string) (int, error)
}

const listColumns = `id, board_id, title, position, created_at, updated_at`

type listRepository struct {
	d      *data.Data
	logger *logger.Logger
}

func NewListRepository(d *data.Data, l *logger.Logger) (ListRepository, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &listRepository{d: d, logger: l}, nil
}

func (r *listRepository) Create(ctx context.Context, l *structs.List) error {
	_, err := r.d.Exec(ctx, `INSERT INTO task_lists (`+listColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.BoardID, l.Title, l.Position, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *listRepository) FindByID(ctx context.Context, id string) (*structs.List, error) {
	l := &structs.List{}
	if err := r.d.Get(ctx, l, `SELECT `+listColumns+` FROM task_lists WHERE id = ?`, id); err != nil {
		if data.IsNotFound(err) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *listRepository) ListByBoard(ctx context.Context, boardID string) ([]*structs.List, error) {
	lists := []*structs.List{}
	err := r.d.Select(ctx, &lists, `
		SELECT `+listColumns+` FROM task_lists WHERE board_id = ? ORDER BY position, created_at, id
	`, boardID)
	return lists, err
}

func (r *listRepository) Update(ctx context.Context, l *structs.List) error {
	l.UpdatedAt = data.Now()
	res, err := r.d.Exec(ctx, `UPDATE task_lists SET title = ?, position = ?, updated_at = ? WHERE id = ?`,
		l.Title, l.Position, l.UpdatedAt, l.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrListNotFound
	}
	return nil
}

func (r *listRepository) Delete(ctx context.Context, id string) ([]string, error) {
	return r.d.Cascade(ctx, data.ScopeList, id)
}

func (r *listRepository) CountByBoard(ctx context.Context, boardID string) (int, error) {
	var n int
	err := r.d.Get(ctx, &n, `SELECT COUNT(*) FROM task_lists WHERE board_id = ?`, boardID)
	return n, err
}
