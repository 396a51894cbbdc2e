package repository

import (
	"context"
	"errors"

	"github.com/taskhive/taskhive/biz/attachment/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

var ErrAttachmentNotFound = ecode.New(ecode.ErrNotFound, ecode.NotExist("attachment"))

type AttachmentRepository interface {
	Create(ctx context.Context, a *structs.Attachment) error
	FindByID(ctx context.Context, id string) (*structs.Attachment, error)
	ListByCard(ctx context.Context, cardID string) ([]*structs.Attachment, error)
	Delete(ctx context.Context, id string) error
}

const attachmentColumns = `id, card_id, file_name, storage_path, content_type, size, uploaded_by, uploaded_at`

type attachmentRepository struct {
	d      *data.Data
	logger *logger.Logger
}

func NewAttachmentRepository(d *data.Data, l *logger.Logger) (AttachmentRepository, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &attachmentRepository{d: d, logger: l}, nil
}

func (r *attachmentRepository) Create(ctx context.Context, a *structs.Attachment) error {
	_, err := r.d.Exec(ctx, `
		INSERT INTO attachments (`+attachmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.CardID, a.FileName, a.StoragePath, a.ContentType, a.Size, a.UploadedBy, a.UploadedAt)
	return err
}

func (r *attachmentRepository) FindByID(ctx context.Context, id string) (*structs.Attachment, error) {
	a := &structs.Attachment{}
	if err := r.d.Get(ctx, a, `SELECT `+attachmentColumns+` FROM attachments WHERE id = ?`, id); err != nil {
		if data.IsNotFound(err) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attachmentRepository) ListByCard(ctx context.Context, cardID string) ([]*structs.Attachment, error) {
	list := []*structs.Attachment{}
	err := r.d.Select(ctx, &list, `
		SELECT `+attachmentColumns+` FROM attachments WHERE card_id = ? ORDER BY uploaded_at, id
	`, cardID)
	return list, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.d.Exec(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
