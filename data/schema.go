package data

import (
	"context"
	"fmt"
	"strings"
)

// migration is one schema step; its statements run in one transaction where
// the driver supports transactional DDL.
type migration struct {
	version    int
	name       string
	statements []string
}

// Column types are written for SQLite/PostgreSQL and adjusted per dialect.
var migrations = []migration{
	{
		version: 1,
		name:    "create core tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id VARCHAR(36) PRIMARY KEY,
				email VARCHAR(255) NOT NULL UNIQUE,
				username VARCHAR(255) NOT NULL,
				password_hash VARCHAR(255) NOT NULL DEFAULT '',
				provider VARCHAR(32) NOT NULL DEFAULT 'local',
				is_verified BOOLEAN NOT NULL DEFAULT FALSE,
				otp VARCHAR(16) NOT NULL DEFAULT '',
				otp_expiry TIMESTAMP NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS workspaces (
				id VARCHAR(36) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				owner_id VARCHAR(36) NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS workspace_members (
				workspace_id VARCHAR(36) NOT NULL,
				user_id VARCHAR(36) NOT NULL,
				joined_at TIMESTAMP NOT NULL,
				PRIMARY KEY (workspace_id, user_id)
			)`,
			`CREATE TABLE IF NOT EXISTS invitations (
				id VARCHAR(36) PRIMARY KEY,
				workspace_id VARCHAR(36) NOT NULL,
				email VARCHAR(255) NOT NULL,
				invited_by VARCHAR(36) NOT NULL,
				created_at TIMESTAMP NOT NULL,
				accepted_at TIMESTAMP NULL,
				UNIQUE (workspace_id, email)
			)`,
			`CREATE TABLE IF NOT EXISTS boards (
				id VARCHAR(36) PRIMARY KEY,
				workspace_id VARCHAR(36) NOT NULL,
				title VARCHAR(255) NOT NULL,
				created_by VARCHAR(36) NOT NULL,
				position INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS task_lists (
				id VARCHAR(36) PRIMARY KEY,
				board_id VARCHAR(36) NOT NULL,
				title VARCHAR(255) NOT NULL,
				position INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS cards (
				id VARCHAR(36) PRIMARY KEY,
				list_id VARCHAR(36) NOT NULL,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				due_date TIMESTAMP NULL,
				assignee_id VARCHAR(36) NOT NULL DEFAULT '',
				reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
				position INTEGER NOT NULL DEFAULT 0,
				created_by VARCHAR(36) NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS comments (
				id VARCHAR(36) PRIMARY KEY,
				card_id VARCHAR(36) NOT NULL,
				author_id VARCHAR(36) NOT NULL,
				content TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS attachments (
				id VARCHAR(36) PRIMARY KEY,
				card_id VARCHAR(36) NOT NULL,
				file_name VARCHAR(255) NOT NULL,
				storage_path VARCHAR(512) NOT NULL,
				content_type VARCHAR(255) NOT NULL,
				size BIGINT NOT NULL,
				uploaded_by VARCHAR(36) NOT NULL,
				uploaded_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS activity_logs (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				workspace_id VARCHAR(36) NOT NULL DEFAULT '',
				action VARCHAR(255) NOT NULL,
				location TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "create indexes",
		statements: []string{
			`CREATE INDEX idx_workspace_members_user ON workspace_members (user_id)`,
			`CREATE INDEX idx_invitations_email ON invitations (email)`,
			`CREATE INDEX idx_boards_workspace ON boards (workspace_id)`,
			`CREATE INDEX idx_task_lists_board ON task_lists (board_id)`,
			`CREATE INDEX idx_cards_list ON cards (list_id)`,
			`CREATE INDEX idx_cards_due ON cards (reminder_sent, due_date)`,
			`CREATE INDEX idx_comments_card ON comments (card_id)`,
			`CREATE INDEX idx_attachments_card ON attachments (card_id)`,
			`CREATE INDEX idx_activity_user ON activity_logs (user_id, created_at)`,
			`CREATE INDEX idx_activity_workspace ON activity_logs (workspace_id, created_at)`,
		},
	},
}

// dialect adjusts a statement written for SQLite/PostgreSQL to the driver
func (d *Data) dialect(stmt string) string {
	if d.driver == DriverMySQL {
		return strings.ReplaceAll(stmt, "TIMESTAMP", "DATETIME(6)")
	}
	return stmt
}

// Migrate applies pending migrations and returns the applied versions
func (d *Data) Migrate(ctx context.Context) ([]int, error) {
	if _, err := d.DB.ExecContext(ctx, d.dialect(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`)); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current []int
	if err := d.DB.SelectContext(ctx, &current, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(current))
	for _, v := range current {
		done[v] = true
	}

	var applied []int
	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := d.WithTx(ctx, func(ctx context.Context) error {
			for _, stmt := range m.statements {
				if _, err := d.Ext(ctx).ExecContext(ctx, d.dialect(stmt)); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
				}
			}
			_, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, Now())
			return err
		})
		if err != nil {
			return applied, err
		}
		d.logger.Info(ctx, "applied migration", "version", m.version, "name", m.name)
		applied = append(applied, m.version)
	}
	return applied, nil
}

// Tables lists the application tables in deletion order, children first
func Tables() []string {
	return []string{
		"activity_logs", "attachments", "comments", "cards", "task_lists",
		"boards", "invitations", "workspace_members", "workspaces", "users",
	}
}
