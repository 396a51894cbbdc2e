// Package repository stores activity log entries in SQL or MongoDB.
package repository

import (
	"context"
	"errors"

	"github.com/taskhive/taskhive/biz/activity/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/paging"
)

// Store persists activity entries. Lists are newest first and start after
// the before cursor when it is not nil.
type Store interface {
	Save(ctx context.Context, entry *structs.Entry) error
	ListByUser(ctx context.Context, userID string, before *paging.Cursor, limit int) ([]*structs.Entry, error)
	ListByWorkspace(ctx context.Context, workspaceID string, before *paging.Cursor, limit int) ([]*structs.Entry, error)
}

type sqlStore struct {
	d      *data.Data
	logger *logger.Logger
}

// NewSQLStore stores entries in the activity_logs table.
func NewSQLStore(d *data.Data, l *logger.Logger) (Store, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &sqlStore{d: d, logger: l}, nil
}

func (s *sqlStore) Save(ctx context.Context, e *structs.Entry) error {
	_, err := s.d.Exec(ctx, `
		INSERT INTO activity_logs (id, user_id, workspace_id, action, location, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.WorkspaceID, e.Action, e.Location, e.CreatedAt)
	return err
}

func (s *sqlStore) ListByUser(ctx context.Context, userID string, before *paging.Cursor, limit int) ([]*structs.Entry, error) {
	return s.list(ctx, `user_id = ?`, userID, before, limit)
}

func (s *sqlStore) ListByWorkspace(ctx context.Context, workspaceID string, before *paging.Cursor, limit int) ([]*structs.Entry, error) {
	return s.list(ctx, `workspace_id = ?`, workspaceID, before, limit)
}

func (s *sqlStore) list(ctx context.Context, where, arg string, before *paging.Cursor, limit int) ([]*structs.Entry, error) {
	args := []any{arg}
	if before != nil {
		where += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		at := data.Timestamp(before.Time)
		args = append(args, at, at, before.ID)
	}
	args = append(args, limit)

	entries := []*structs.Entry{}
	err := s.d.Select(ctx, &entries, `
		SELECT id, user_id, workspace_id, action, location, created_at
		FROM activity_logs
		WHERE `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, args...)
	return entries, err
}
