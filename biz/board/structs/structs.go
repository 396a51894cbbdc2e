// Package structs defines board domain models.
package structs

import "time"

type Board struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Title       string    `json:"title" db:"title"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CreateBoardRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

type UpdateBoardRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}
