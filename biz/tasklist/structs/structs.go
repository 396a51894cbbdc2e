// Package structs defines list domain models.
package structs

import "time"

type List struct {
	ID        string    `json:"id" db:"id"`
	BoardID   string    `json:"board_id" db:"board_id"`
	Title     string    `json:"title" db:"title"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateListRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	Position *int   `json:"position" binding:"omitempty,gte=0"`
}

type UpdateListRequest struct {
	Title    string `json:"title" binding:"omitempty,min=1,max=255"`
	Position *int   `json:"position" binding:"omitempty,gte=0"`
}
