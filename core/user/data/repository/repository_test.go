package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/datatest"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

func newRepo(t *testing.T) UserRepository {
	t.Helper()
	repo, err := NewUserRepository(datatest.New(t), logger.Nop())
	if err != nil {
		t.Fatalf("NewUserRepository: %v", err)
	}
	return repo
}

func newUser(email string) *structs.User {
	now := data.Now()
	return &structs.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  "alice",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	u := newUser("  Alice@Example.COM ")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "alice@example.com" || u.Provider != structs.ProviderLocal {
		t.Fatalf("normalised user = %+v", u)
	}

	byEmail, err := repo.FindByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("FindByEmail id = %s, want %s", byEmail.ID, u.ID)
	}

	byID, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !byID.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("created_at = %v, want %v", byID.CreatedAt, u.CreatedAt)
	}
	if byID.OTPExpiry != nil {
		t.Errorf("otp expiry = %v, want nil", byID.OTPExpiry)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	if err := repo.Create(ctx, newUser("bob@example.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, newUser("BOB@example.com"))
	if !errors.Is(err, ecode.ErrConflict) {
		t.Fatalf("duplicate Create err = %v, want conflict", err)
	}
}

func TestFindMissing(t *testing.T) {
	repo := newRepo(t)
	if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("FindByID err = %v", err)
	}
	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("FindByEmail err = %v", err)
	}
}

func TestUpdateOTPState(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	u := newUser("carol@example.com")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	expiry := data.Timestamp(time.Now().Add(5 * time.Minute))
	u.OTP = "123456"
	u.OTPExpiry = &expiry
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.OTP != "123456" || got.OTPExpiry == nil || !got.OTPExpiry.Equal(expiry) {
		t.Fatalf("otp state = %q %v", got.OTP, got.OTPExpiry)
	}

	got.IsVerified = true
	got.OTP = ""
	got.OTPExpiry = nil
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.FindByID(ctx, u.ID)
	if !got.IsVerified || got.OTP != "" || got.OTPExpiry != nil {
		t.Errorf("verified state = %+v", got)
	}

	if err := repo.Update(ctx, newUser("ghost@example.com")); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("Update missing err = %v", err)
	}
}

func TestListByIDs(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	a, b := newUser("a@example.com"), newUser("b@example.com")
	for _, u := range []*structs.User{a, b, newUser("c@example.com")} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	users, err := repo.ListByIDs(ctx, []string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}

	empty, err := repo.ListByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ListByIDs(nil) = %v, %v", empty, err)
	}
}
