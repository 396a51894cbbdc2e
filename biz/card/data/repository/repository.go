// Package repository stores cards and answers the due-date queries of the
// reminder scheduler.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive/taskhive/biz/card/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

var ErrCardNotFound = ecode.New(ecode.ErrNotFound, ecode.NotExist("card"))

type CardRepository interface {
	Create(ctx context.Context, c *structs.Card) error
	FindByID(ctx context.Context, id string) (*structs.Card, error)
	ListByList(ctx context.Context, listID string) ([]*structs.Card, error)
	// Update writes the mutable fields, including list_id. reminder_sent is
	// only written, as false, when resetReminder is set; otherwise the stored
	// flag is kept even if a scan marked it after c was loaded.
	Update(ctx context.Context, c *structs.Card, resetReminder bool) error
	Delete(ctx context.Context, id string) ([]string, error)
	CountByList(ctx context.Context, listID string) (int, error)

	// FindDueBetween returns the cards due in [start, end) that have not
	// been reminded, earliest first.
	FindDueBetween(ctx context.Context, start, end time.Time) ([]*structs.Card, error)
	// FindDueBetweenInWorkspaces is FindDueBetween limited to the given
	// workspaces.
	FindDueBetweenInWorkspaces(ctx context.Context, workspaceIDs []string, start, end time.Time) ([]*structs.Card, error)
	// MarkReminderSent sets reminder_sent only while the card still has
	// dueDate and has not been marked; it reports whether the row changed.
	MarkReminderSent(ctx context.Context, id string, dueDate time.Time) (bool, error)
}

const cardColumns = `id, list_id, title, description, due_date, assignee_id, reminder_sent, position, created_by, created_at, updated_at`

type cardRepository struct {
	d      *data.Data
	logger *logger.Logger
}

func NewCardRepository(d *data.Data, l *logger.Logger) (CardRepository, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &cardRepository{d: d, logger: l}, nil
}

func (r *cardRepository) Create(ctx context.Context, c *structs.Card) error {
	_, err := r.d.Exec(ctx, `
		INSERT INTO cards (`+cardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.ListID, c.Title, c.Description, c.DueDate, c.AssigneeID, c.ReminderSent,
		c.Position, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *cardRepository) FindByID(ctx context.Context, id string) (*structs.Card, error) {
	c := &structs.Card{}
	if err := r.d.Get(ctx, c, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id); err != nil {
		if data.IsNotFound(err) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *cardRepository) ListByList(ctx context.Context, listID string) ([]*structs.Card, error) {
	cards := []*structs.Card{}
	err := r.d.Select(ctx, &cards, `
		SELECT `+cardColumns+` FROM cards WHERE list_id = ? ORDER BY position, created_at, id
	`, listID)
	return cards, err
}

func (r *cardRepository) Update(ctx context.Context, c *structs.Card, resetReminder bool) error {
	c.UpdatedAt = data.Now()
	set := `list_id = ?, title = ?, description = ?, due_date = ?, assignee_id = ?, position = ?, updated_at = ?`
	args := []any{c.ListID, c.Title, c.Description, c.DueDate, c.AssigneeID, c.Position, c.UpdatedAt}
	if resetReminder {
		set += `, reminder_sent = ?`
		args = append(args, false)
		c.ReminderSent = false
	}
	res, err := r.d.Exec(ctx, `UPDATE cards SET `+set+` WHERE id = ?`, append(args, c.ID)...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *cardRepository) Delete(ctx context.Context, id string) ([]string, error) {
	return r.d.Cascade(ctx, data.ScopeCard, id)
}

func (r *cardRepository) CountByList(ctx context.Context, listID string) (int, error) {
	var n int
	err := r.d.Get(ctx, &n, `SELECT COUNT(*) FROM cards WHERE list_id = ?`, listID)
	return n, err
}

func (r *cardRepository) FindDueBetween(ctx context.Context, start, end time.Time) ([]*structs.Card, error) {
	cards := []*structs.Card{}
	err := r.d.Select(ctx, &cards, `
		SELECT `+cardColumns+` FROM cards
		WHERE reminder_sent = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date < ?
		ORDER BY due_date, id
	`, false, data.Timestamp(start), data.Timestamp(end))
	return cards, err
}

func (r *cardRepository) FindDueBetweenInWorkspaces(ctx context.Context, workspaceIDs []string, start, end time.Time) ([]*structs.Card, error) {
	cards := []*structs.Card{}
	if len(workspaceIDs) == 0 {
		return cards, nil
	}
	err := r.d.SelectIn(ctx, &cards, `
		SELECT c.id, c.list_id, c.title, c.description, c.due_date, c.assignee_id, c.reminder_sent,
			c.position, c.created_by, c.created_at, c.updated_at
		FROM cards c
		JOIN task_lists l ON l.id = c.list_id
		JOIN boards b ON b.id = l.board_id
		WHERE b.workspace_id IN (?)
			AND c.reminder_sent = ? AND c.due_date IS NOT NULL AND c.due_date >= ? AND c.due_date < ?
		ORDER BY c.due_date, c.id
	`, workspaceIDs, false, data.Timestamp(start), data.Timestamp(end))
	return cards, err
}

func (r *cardRepository) MarkReminderSent(ctx context.Context, id string, dueDate time.Time) (bool, error) {
	res, err := r.d.Exec(ctx, `
		UPDATE cards SET reminder_sent = ?
		WHERE id = ? AND reminder_sent = ? AND due_date = ?
	`, true, id, false, data.Timestamp(dueDate))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
