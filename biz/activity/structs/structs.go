// Package structs defines activity log models.
package structs

import "time"

// List limits
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Entry struct {
	ID          string    `json:"id" db:"id" bson:"id"`
	UserID      string    `json:"user_id" db:"user_id" bson:"user_id"`
	WorkspaceID string    `json:"workspace_id,omitempty" db:"workspace_id" bson:"workspace_id,omitempty"`
	Action      string    `json:"action" db:"action" bson:"action"`
	Location    string    `json:"location" db:"location" bson:"location"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

type CreateEntryRequest struct {
	Action   string `json:"action" binding:"required,min=1,max=255"`
	Location string `json:"location" binding:"max=1024"`
}
