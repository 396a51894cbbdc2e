// Package oss stores attachment blobs on the local filesystem, MinIO or any
// S3-compatible service behind one Interface.
package oss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/taskhive/taskhive/config"
)

// ErrObjectNotFound is returned when no object exists at a path.
var ErrObjectNotFound = errors.New("object not found")

// Interface defines unified object storage operations.
type Interface interface {
	// Put uploads size bytes from reader to path. A negative size means
	// unknown.
	Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (*Object, error)

	// GetStream returns a readable stream. Caller closes it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// Stat retrieves object metadata without downloading content.
	Stat(ctx context.Context, path string) (*Object, error)

	// Name returns the provider name.
	Name() string
}

// Object represents metadata about a stored object.
type Object struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// NewStorage creates a storage instance based on the provided configuration.
func NewStorage(ctx context.Context, c *config.Storage) (Interface, error) {
	if c == nil {
		return nil, errors.New("storage configuration is required")
	}
	switch c.Provider {
	case "filesystem", "local", "":
		return NewFileSystem(c.Path)
	case "minio":
		if c.ID == "" || c.Secret == "" || c.Bucket == "" || c.Endpoint == "" {
			return nil, errors.New("id, secret, bucket, and endpoint are required for MinIO")
		}
		return NewMinioAdapter(ctx, c.Endpoint, c.ID, c.Secret, c.Bucket, c.UseSSL)
	case "s3", "aws":
		if c.ID == "" || c.Secret == "" || c.Bucket == "" {
			return nil, errors.New("id, secret, and bucket are required for AWS S3")
		}
		return NewS3Adapter(ctx, c.ID, c.Secret, c.Region, c.Bucket, c.Endpoint)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", c.Provider)
	}
}

// Deleter is the part of Interface needed to remove objects.
type Deleter interface {
	Delete(ctx context.Context, path string) error
}

// DeleteAll removes every path, continuing past failures. A nil Deleter
// removes nothing.
func DeleteAll(ctx context.Context, d Deleter, paths []string) error {
	if d == nil {
		return nil
	}
	var errs []error
	for _, p := range paths {
		if err := d.Delete(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
