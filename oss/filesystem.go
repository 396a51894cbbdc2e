package oss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem stores objects as files below a root folder.
type FileSystem struct {
	Folder string
}

// NewFileSystem creates a new local file system storage, creating the
// folder when missing.
func NewFileSystem(folder string) (*FileSystem, error) {
	if folder == "" {
		folder = "./uploads"
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage folder: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage folder: %w", err)
	}
	return &FileSystem{Folder: abs}, nil
}

// Name returns the provider name.
func (f *FileSystem) Name() string { return "filesystem" }

// fullPath resolves p below the root and rejects paths escaping it.
func (f *FileSystem) fullPath(p string) (string, error) {
	fp := filepath.Join(f.Folder, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	if fp != f.Folder && !strings.HasPrefix(fp, f.Folder+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes storage root", p)
	}
	return fp, nil
}

// Put writes the reader to the file at path
func (f *FileSystem) Put(ctx context.Context, path string, reader io.Reader, _ int64, contentType string) (*Object, error) {
	fp, err := f.fullPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return nil, err
	}

	dst, err := os.CreateTemp(filepath.Dir(fp), ".upload-*")
	if err != nil {
		return nil, err
	}
	written, err := io.Copy(dst, &ctxReader{ctx: ctx, r: reader})
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, err
	}
	if err := os.Rename(dst.Name(), fp); err != nil {
		_ = os.Remove(dst.Name())
		return nil, err
	}

	info, err := os.Stat(fp)
	if err != nil {
		return nil, err
	}
	return &Object{Path: path, Size: written, ContentType: contentType, LastModified: info.ModTime()}, nil
}

// GetStream opens the file at path
func (f *FileSystem) GetStream(_ context.Context, path string) (io.ReadCloser, error) {
	fp, err := f.fullPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fp)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return file, err
}

// Delete removes the file at path
func (f *FileSystem) Delete(_ context.Context, path string) error {
	fp, err := f.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Stat returns the file metadata
func (f *FileSystem) Stat(_ context.Context, path string) (*Object, error) {
	fp, err := f.fullPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(fp)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Object{
		Path:         path,
		Size:         info.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(fp)),
		LastModified: info.ModTime(),
	}, nil
}

// ctxReader stops a copy when the context ends.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
