package oss

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioAdapter implements Interface for MinIO.
type MinioAdapter struct {
	client *minio.Client
	bucket string
}

// NewMinioAdapter creates the client and makes sure the bucket exists
func NewMinioAdapter(ctx context.Context, endpoint, accessKeyID, secretAccessKey, bucket string, useSSL bool) (*MinioAdapter, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioAdapter{client: client, bucket: bucket}, nil
}

// Name returns the provider name.
func (a *MinioAdapter) Name() string { return "minio" }

// Put uploads an object
func (a *MinioAdapter) Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (*Object, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := a.client.PutObject(ctx, a.bucket, path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}
	return &Object{Path: path, Size: info.Size, ContentType: contentType, LastModified: info.LastModified}, nil
}

// GetStream returns the object reader
func (a *MinioAdapter) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	if _, err := a.Stat(ctx, path); err != nil {
		return nil, err
	}
	object, err := a.client.GetObject(ctx, a.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return object, nil
}

// Delete removes an object
func (a *MinioAdapter) Delete(ctx context.Context, path string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Stat returns object metadata
func (a *MinioAdapter) Stat(ctx context.Context, path string) (*Object, error) {
	info, err := a.client.StatObject(ctx, a.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	return &Object{Path: path, Size: info.Size, ContentType: info.ContentType, LastModified: info.LastModified}, nil
}
