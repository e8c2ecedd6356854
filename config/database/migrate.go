package database

import (
	"database/sql"

	"collabdocs/pkg/logger"
)

// The unique indexes are what make the idempotent mutations safe under truly
// concurrent callers; the application-level checks alone are not enough.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		is_archived BOOLEAN NOT NULL DEFAULT FALSE,
		is_published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents (owner_id)`,

	`CREATE TABLE IF NOT EXISTS document_access (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		invited_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (document_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_document_access_user ON document_access (user_id)`,

	`CREATE TABLE IF NOT EXISTS invitations (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		invited_by TEXT NOT NULL,
		invited_email TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending
		ON invitations (document_id, invited_email) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations (invited_email)`,

	`CREATE TABLE IF NOT EXISTS access_requests (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (document_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS presence (
		document_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		avatar_url TEXT NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (document_id, user_id)
	)`,
}

// Migrate creates the schema on startup. Statements are idempotent.
func Migrate(db *sql.DB) {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			logger.Sugar.Fatalf("Migration failed: %v", err)
		}
	}
	logger.Sugar.Info("Database schema is up to date")
}
