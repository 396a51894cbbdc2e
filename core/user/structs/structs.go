// Package structs defines user domain models.
package structs

import "time"

// Sign-up providers
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Provider     string     `json:"provider" db:"provider"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	OTP          string     `json:"-" db:"otp"`
	OTPExpiry    *time.Time `json:"-" db:"otp_expiry"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Summary is the public view of a user shown in member lists.
type Summary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Summary returns the public view of u.
func (u *User) Summary() *Summary {
	return &Summary{ID: u.ID, Email: u.Email, Username: u.Username}
}
