// Package datatest opens migrated in-memory SQLite stores for tests.
package datatest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"

	_ "github.com/mattn/go-sqlite3"
)

var seq atomic.Int64

// New returns a migrated store private to the test. It is closed when the
// test ends.
func New(t testing.TB) *data.Data {
	t.Helper()

	dsn := fmt.Sprintf("file:taskhive_test_%d?mode=memory&cache=shared&_busy_timeout=5000", seq.Add(1))
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	d := data.NewWithDB(db, data.DriverSQLite, logger.Nop())
	if _, err := d.Migrate(context.Background()); err != nil {
		_ = db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}
