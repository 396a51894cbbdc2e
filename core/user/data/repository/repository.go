// Package repository stores users.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

var (
	ErrUserNotFound = ecode.New(ecode.ErrNotFound, ecode.NotExist("user"))
	ErrEmailTaken   = ecode.New(ecode.ErrConflict, ecode.AlreadyExist("email"))
)

type UserRepository interface {
	Create(ctx context.Context, user *structs.User) error
	FindByID(ctx context.Context, id string) (*structs.User, error)
	FindByEmail(ctx context.Context, email string) (*structs.User, error)
	Update(ctx context.Context, user *structs.User) error
	ListByIDs(ctx context.Context, ids []string) ([]*structs.User, error)
}

const userColumns = `id, email, username, password_hash, provider, is_verified, otp, otp_expiry, created_at, updated_at`

type userRepository struct {
	d      *data.Data
	logger *logger.Logger
}

func NewUserRepository(d *data.Data, l *logger.Logger) (UserRepository, error) {
	if d == nil {
		return nil, errors.New("data layer is nil")
	}
	return &userRepository{d: d, logger: l}, nil
}

// NormalizeEmail lower-cases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, user *structs.User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.Provider == "" {
		user.Provider = structs.ProviderLocal
	}
	_, err := r.d.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.Username, user.PasswordHash, user.Provider, user.IsVerified,
		user.OTP, user.OTPExpiry, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if data.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	r.logger.Debug(ctx, "user created", "user_id", user.ID)
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*structs.User, error) {
	user := &structs.User{}
	if err := r.d.Get(ctx, user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		if data.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*structs.User, error) {
	user := &structs.User{}
	if err := r.d.Get(ctx, user, `SELECT `+userColumns+` FROM users WHERE email = ?`, NormalizeEmail(email)); err != nil {
		if data.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update writes the mutable fields: username, verification and OTP state.
func (r *userRepository) Update(ctx context.Context, user *structs.User) error {
	user.UpdatedAt = data.Now()
	res, err := r.d.Exec(ctx, `
		UPDATE users
		SET username = ?, password_hash = ?, is_verified = ?, otp = ?, otp_expiry = ?, updated_at = ?
		WHERE id = ?
	`, user.Username, user.PasswordHash, user.IsVerified, user.OTP, user.OTPExpiry, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*structs.User, error) {
	if len(ids) == 0 {
		return []*structs.User{}, nil
	}
	users := []*structs.User{}
	if err := r.d.SelectIn(ctx, &users, `SELECT `+userColumns+` FROM users WHERE id IN (?) ORDER BY created_at, id`, ids); err != nil {
		return nil, err
	}
	return users, nil
}
