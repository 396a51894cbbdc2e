// Package structs defines card domain models.
package structs

import "time"

type Card struct {
	ID           string     `json:"id" db:"id"`
	ListID       string     `json:"list_id" db:"list_id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	DueDate      *time.Time `json:"due_date,omitempty" db:"due_date"`
	AssigneeID   string     `json:"assignee_id,omitempty" db:"assignee_id"`
	ReminderSent bool       `json:"reminder_sent" db:"reminder_sent"`
	Position     int        `json:"position" db:"position"`
	CreatedBy    string     `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateCardRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  string     `json:"assignee_id"`
	Position    *int       `json:"position" binding:"omitempty,gte=0"`
}

// UpdateCardRequest is a partial update. ClearDueDate and a present but
// empty AssigneeID remove the due date and the assignee.
type UpdateCardRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
	AssigneeID   *string    `json:"assignee_id"`
	Position     *int       `json:"position" binding:"omitempty,gte=0"`
}

type MoveCardRequest struct {
	ListID   string `json:"list_id" binding:"required"`
	Position *int   `json:"position" binding:"omitempty,gte=0"`
}
