package data_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/datatest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	d := datatest.New(t)
	applied, err := d.Migrate(context.Background())
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("re-applied %v", applied)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	d := datatest.New(t)
	ctx := context.Background()
	now := data.Now()

	boom := errors.New("boom")
	err := d.WithTx(ctx, func(ctx context.Context) error {
		if _, err := d.Exec(ctx, `INSERT INTO workspaces (id, name, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			"w1", "W", "u1", now, now); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	var n int
	if err := d.Get(ctx, &n, `SELECT COUNT(*) FROM workspaces`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rows after rollback = %d", n)
	}
}

func TestUniqueViolationAndTimes(t *testing.T) {
	d := datatest.New(t)
	ctx := context.Background()
	now := data.Now()

	insert := `INSERT INTO users (id, email, username, provider, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := d.Exec(ctx, insert, "u1", "a@example.com", "a", "local", now, now); err != nil {
		t.Fatal(err)
	}
	_, err := d.Exec(ctx, insert, "u2", "a@example.com", "b", "local", now, now)
	if !data.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	var created time.Time
	if err := d.Get(ctx, &created, `SELECT created_at FROM users WHERE id = ?`, "u1"); err != nil {
		t.Fatal(err)
	}
	if !created.Equal(now) {
		t.Errorf("created_at = %v, want %v", created, now)
	}

	var ids []string
	if err := d.SelectIn(ctx, &ids, `SELECT id FROM users WHERE id IN (?)`, []string{"u1", "zz"}); err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Errorf("ids = %v", ids)
	}
}

func TestHealth(t *testing.T) {
	d := datatest.New(t)
	h := d.Health(context.Background())
	if h["status"] != "healthy" {
		t.Errorf("health = %v", h)
	}
}
