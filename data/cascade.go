package data

import (
	"context"
	"fmt"
)

// Scope is the level at which a cascading delete starts.
type Scope int

const (
	ScopeWorkspace Scope = iota
	ScopeBoard
	ScopeList
	ScopeCard
)

func (s Scope) String() string {
	switch s {
	case ScopeWorkspace:
		return "workspace"
	case ScopeBoard:
		return "board"
	case ScopeList:
		return "list"
	case ScopeCard:
		return "card"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// cardFilter selects the cards below a scope, written against the cards
// table so that MySQL accepts it in a DELETE.
func (s Scope) cardFilter() string {
	switch s {
	case ScopeWorkspace:
		return `list_id IN (SELECT l.id FROM task_lists l JOIN boards b ON b.id = l.board_id WHERE b.workspace_id = ?)`
	case ScopeBoard:
		return `list_id IN (SELECT id FROM task_lists WHERE board_id = ?)`
	case ScopeList:
		return `list_id = ?`
	default:
		return `id = ?`
	}
}

// Cascade deletes a workspace, board, list or card together with everything
// below it, in one transaction. It returns the storage paths of the removed
// attachments so the caller can delete the blobs.
func (d *Data) Cascade(ctx context.Context, scope Scope, id string) ([]string, error) {
	var paths []string
	err := d.WithTx(ctx, func(ctx context.Context) error {
		cards := scope.cardFilter()
		children := `card_id IN (SELECT id FROM cards WHERE ` + cards + `)`

		if err := d.Select(ctx, &paths, `SELECT storage_path FROM attachments WHERE `+children, id); err != nil {
			return err
		}

		stmts := []string{
			`DELETE FROM comments WHERE ` + children,
			`DELETE FROM attachments WHERE ` + children,
			`DELETE FROM cards WHERE ` + cards,
		}
		switch scope {
		case ScopeWorkspace:
			stmts = append(stmts,
				`DELETE FROM task_lists WHERE board_id IN (SELECT id FROM boards WHERE workspace_id = ?)`,
				`DELETE FROM boards WHERE workspace_id = ?`,
				`DELETE FROM invitations WHERE workspace_id = ?`,
				`DELETE FROM workspace_members WHERE workspace_id = ?`,
				`DELETE FROM workspaces WHERE id = ?`,
			)
		case ScopeBoard:
			stmts = append(stmts,
				`DELETE FROM task_lists WHERE board_id = ?`,
				`DELETE FROM boards WHERE id = ?`,
			)
		case ScopeList:
			stmts = append(stmts, `DELETE FROM task_lists WHERE id = ?`)
		}

		for _, stmt := range stmts {
			if _, err := d.Exec(ctx, stmt, id); err != nil {
				return fmt.Errorf("cascade %s %s: %w", scope, id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
