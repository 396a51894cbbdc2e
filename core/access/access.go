// Package access answers whether a user may act on a resource.
//
// The predicates in this file are pure: they look only at the loaded
// resources and never touch storage. Guard loads the ownership chain of a
// resource and turns a false predicate into ecode.ErrForbidden.
//
// Every resource resolves to a workspace through its parents
// (card → list → board → workspace) and membership of that workspace is the
// only thing that grants access.
package access

import (
	attachment "github.com/taskhive/taskhive/biz/attachment/structs"
	board "github.com/taskhive/taskhive/biz/board/structs"
	card "github.com/taskhive/taskhive/biz/card/structs"
	comment "github.com/taskhive/taskhive/biz/comment/structs"
	tasklist "github.com/taskhive/taskhive/biz/tasklist/structs"
	workspace "github.com/taskhive/taskhive/core/workspace/structs"
)

// CardChain is a card with its ancestors.
type CardChain struct {
	Card      *card.Card
	List      *tasklist.List
	Board     *board.Board
	Workspace *workspace.Workspace
}

// Consistent reports whether every link of the chain points at the next one.
func (c *CardChain) Consistent() bool {
	if c == nil || c.Card == nil || c.List == nil || c.Board == nil || c.Workspace == nil {
		return false
	}
	return c.Card.ListID == c.List.ID &&
		c.List.BoardID == c.Board.ID &&
		c.Board.WorkspaceID == c.Workspace.ID
}

// IsMember reports whether userID belongs to ws. The owner is always a member.
func IsMember(userID string, ws *workspace.Workspace) bool {
	if ws == nil || userID == "" {
		return false
	}
	return userID == ws.OwnerID || ws.HasMember(userID)
}

// IsOwner reports whether userID owns ws.
func IsOwner(userID string, ws *workspace.Workspace) bool {
	if ws == nil || userID == "" {
		return false
	}
	return userID == ws.OwnerID
}

func CanAccessBoard(userID string, b *board.Board, ws *workspace.Workspace) bool {
	if b == nil || ws == nil {
		return false
	}
	return b.WorkspaceID == ws.ID && IsMember(userID, ws)
}

func CanAccessList(userID string, l *tasklist.List, b *board.Board, ws *workspace.Workspace) bool {
	if l == nil || b == nil {
		return false
	}
	return l.BoardID == b.ID && CanAccessBoard(userID, b, ws)
}

func CanAccessCard(userID string, chain *CardChain) bool {
	return chain.Consistent() && IsMember(userID, chain.Workspace)
}

func CanAccessComment(userID string, cm *comment.Comment, chain *CardChain) bool {
	if cm == nil || !chain.Consistent() {
		return false
	}
	return cm.CardID == chain.Card.ID && CanAccessCard(userID, chain)
}

// IsAuthor reports whether userID wrote cm.
func IsAuthor(userID string, cm *comment.Comment) bool {
	return cm != nil && userID != "" && cm.AuthorID == userID
}

func CanAccessAttachment(userID string, a *attachment.Attachment, chain *CardChain) bool {
	if a == nil || !chain.Consistent() {
		return false
	}
	return a.CardID == chain.Card.ID && CanAccessCard(userID, chain)
}
