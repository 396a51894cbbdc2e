// Package structs defines workspace domain models.
package structs

import "time"

// DefaultName is the name of the workspace created for every new account.
const DefaultName = "My Workspace"

type Workspace struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	MemberIDs []string  `json:"member_ids" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasMember reports whether userID is in the member set.
func (w *Workspace) HasMember(userID string) bool {
	for _, id := range w.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Invitation is a pending invite for an email that has no account yet.
type Invitation struct {
	ID          string     `json:"id" db:"id"`
	WorkspaceID string     `json:"workspace_id" db:"workspace_id"`
	Email       string     `json:"email" db:"email"`
	InvitedBy   string     `json:"invited_by" db:"invited_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// InviteResult is returned by the invite endpoint.
type InviteResult struct {
	Workspace *Workspace `json:"workspace"`
	// Pending is true when the email has no account and an invitation was
	// stored instead of a membership.
	Pending bool `json:"pending"`
}
