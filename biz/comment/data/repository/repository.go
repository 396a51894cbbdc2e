package repository

import (
	"context"
	"errors"

	"github.com/taskhive/taskhive/biz/comment/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

var ErrCommentNotFound = ecode.New(ecode.ErrNotFound, ecode.NotExist("comment"))

type CommentRepository interface {
	Create(ctx context.Context, c *structs.Comment) error
	FindByID(ctx context.Context, id string) (*structs.Comment, error)
	// ListByCard returns the comments of a card, oldest first.
	ListByCard(ctx context.Context, cardID string) ([]*structs.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	d      *data.Data
	logger *logger.Logger
}

func NewCommentRepository(d *data.Data, l *logger.Logger) (CommentRepository, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &commentRepository{d: d, logger: l}, nil
}

func (r *commentRepository) Create(ctx context.Context, c *structs.Comment) error {
	_, err := r.d.Exec(ctx, `
		INSERT INTO comments (id, card_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.CardID, c.AuthorID, c.Content, c.CreatedAt)
	return err
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*structs.Comment, error) {
	c := &structs.Comment{}
	err := r.d.Get(ctx, c, `SELECT id, card_id, author_id, content, created_at FROM comments WHERE id = ?`, id)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) ListByCard(ctx context.Context, cardID string) ([]*structs.Comment, error) {
	comments := []*structs.Comment{}
	err := r.d.Select(ctx, &comments, `
		SELECT id, card_id, author_id, content, created_at FROM comments
		WHERE card_id = ? ORDER BY created_at, id
	`, cardID)
	return comments, err
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.d.Exec(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
