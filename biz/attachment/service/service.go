// Package service stores card attachments in object storage and their
// metadata in the database.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/biz/attachment/data/repository"
	"github.com/taskhive/taskhive/biz/attachment/structs"
	"github.com/taskhive/taskhive/core/access"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/oss"
	"github.com/taskhive/taskhive/utils"
)

// DefaultMaxSize is used when no positive limit is configured.
const DefaultMaxSize int64 = 10 << 20

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

var ErrEmptyFile = ecode.New(ecode.ErrValidation, "file is missing or empty")

type Guard interface {
	Card(ctx context.Context, userID, id string) (*access.CardChain, error)
	Attachment(ctx context.Context, userID, id string) (*structs.Attachment, *access.CardChain, error)
}

type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	repo    repository.AttachmentRepository
	guard   Guard
	storage oss.Interface
	maxSize int64
	logger  *logger.Logger
}

func NewService(repo repository.AttachmentRepository, guard Guard, storage oss.Interface, maxSize int64, l *logger.Logger) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{repo: repo, guard: guard, storage: storage, maxSize: maxSize, logger: l}
}

func tooLarge(limit int64) error {
	return ecode.Newf(ecode.ErrTooLarge, "file exceeds the %d byte limit", limit)
}

// ObjectPath is the storage key of an upload: cards/<card>/<uuid>_<name>.
func ObjectPath(cardID, fileName string) string {
	return path.Join("cards", cardID, uuid.NewString()+"_"+utils.SafeFileName(fileName))
}

// Upload stores the blob first and then the row; the blob is removed again
// when the row cannot be written.
func (s *Service) Upload(ctx context.Context, userID, cardID string, up *Upload) (*structs.Attachment, error) {
	if up == nil || up.Body == nil || up.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if up.Size > s.maxSize {
		return nil, tooLarge(s.maxSize)
	}
	chain, err := s.guard.Card(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	a := &structs.Attachment{
		ID:          uuid.NewString(),
		CardID:      chain.Card.ID,
		FileName:    path.Base(strings.ReplaceAll(up.FileName, "\\", "/")),
		StoragePath: ObjectPath(chain.Card.ID, up.FileName),
		ContentType: contentType,
		Size:        up.Size,
		UploadedBy:  userID,
		UploadedAt:  data.Now(),
	}

	obj, err := s.storage.Put(ctx, a.StoragePath, io.LimitReader(up.Body, s.maxSize+1), up.Size, contentType)
	if err != nil {
		s.logger.Error(ctx, "Failed to store attachment", "error", err, "path", a.StoragePath)
		return nil, err
	}
	if obj != nil && obj.Size > s.maxSize {
		_ = s.storage.Delete(ctx, a.StoragePath)
		return nil, tooLarge(s.maxSize)
	}
	if obj != nil && obj.Size > 0 {
		a.Size = obj.Size
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if derr := s.storage.Delete(ctx, a.StoragePath); derr != nil {
			s.logger.Warn(ctx, "Failed to remove orphaned blob", "error", derr, "path", a.StoragePath)
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) ListByCard(ctx context.Context, userID, cardID string) ([]*structs.Attachment, error) {
	chain, err := s.guard.Card(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCard(ctx, chain.Card.ID)
}

// Open returns the attachment and a reader over its blob. The caller closes
// the reader.
func (s *Service) Open(ctx context.Context, userID, id string) (*structs.Attachment, io.ReadCloser, error) {
	a, _, err := s.guard.Attachment(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.GetStream(ctx, a.StoragePath)
	if errors.Is(err, oss.ErrObjectNotFound) {
		return nil, nil, ecode.New(ecode.ErrNotFound, ecode.NotExist("attachment content"))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", a.StoragePath, err)
	}
	return a, rc, nil
}

// Delete removes the row, then the blob. A blob that cannot be removed is
// logged and left behind.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	a, _, err := s.guard.Attachment(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, a.StoragePath); err != nil {
		s.logger.Warn(ctx, "Failed to delete attachment blob", "error", err, "path", a.StoragePath)
	}
	return nil
}

func (s *Service) HandleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxSize+formOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			resp.Fail(c.Writer, resp.FromError(tooLarge(s.maxSize)))
		default:
			resp.Fail(c.Writer, resp.FromError(ErrEmptyFile))
		}
		return
	}
	f, err := fh.Open()
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	defer f.Close()

	a, err := s.Upload(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), &Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, a)
}

func (s *Service) HandleList(c *gin.Context) {
	list, err := s.ListByCard(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, list)
}

func (s *Service) HandleDownload(c *gin.Context) {
	a, rc, err := s.Open(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, a.Size, a.ContentType, rc, map[string]string{
		"Content-Disposition":    mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}),
		"X-Content-Type-Options": "nosniff",
	})
}

func (s *Service) HandleDelete(c *gin.Context) {
	if err := s.Delete(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id")); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusNoContent)
}
