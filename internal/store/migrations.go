package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all tables. Each statement uses
// IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'USER',
		is_active     INTEGER NOT NULL DEFAULT 1,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		last_login    TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email)`,

	`CREATE TABLE IF NOT EXISTS tokens (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		expires_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'TODO',
		priority    TEXT NOT NULL DEFAULT 'MEDIUM',
		owner_id    TEXT NOT NULL,
		assignee_id TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		user_email    TEXT NOT NULL DEFAULT '',
		action        TEXT NOT NULL,
		resource_type TEXT NOT NULL DEFAULT '',
		resource_id   TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'SUCCESS',
		detail        TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)`,
}

// migrate applies the schema. Safe to run repeatedly.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
