package oss

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/taskhive/taskhive/config"
)

func TestFileSystemRoundTrip(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	obj, err := fs.Put(ctx, "cards/c1/a_file.txt", strings.NewReader("hello"), 5, "text/plain")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if obj.Size != 5 {
		t.Errorf("size = %d", obj.Size)
	}

	rc, err := fs.GetStream(ctx, "cards/c1/a_file.txt")
	if err != nil {
		t.Fatalf("GetStream: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}

	if err := fs.Delete(ctx, "cards/c1/a_file.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Stat(ctx, "cards/c1/a_file.txt"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("stat after delete: %v", err)
	}
	if err := fs.Delete(ctx, "cards/c1/a_file.txt"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestFileSystemRejectsEscape(t *testing.T) {
	fs, _ := NewFileSystem(t.TempDir())
	if _, err := fs.Put(context.Background(), "../../evil", strings.NewReader("x"), 1, ""); err == nil {
		t.Fatal("expected escape to be rejected")
	}
}

func TestNewStorageValidation(t *testing.T) {
	cfg := config.Default().Storage
	cfg.Path = t.TempDir()
	s, err := NewStorage(context.Background(), cfg)
	if err != nil || s.Name() != "filesystem" {
		t.Fatalf("filesystem: %v %v", s, err)
	}

	cfg.Provider = "minio"
	if _, err := NewStorage(context.Background(), cfg); err == nil {
		t.Error("minio without credentials should fail")
	}
	cfg.Provider = "floppy"
	if _, err := NewStorage(context.Background(), cfg); err == nil {
		t.Error("unknown provider should fail")
	}
}
