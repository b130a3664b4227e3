package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the object and group tables and their ACL relations.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS objects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			location TEXT NOT NULL,
			size_estimate INTEGER NOT NULL DEFAULT -1,
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			modified_at TEXT NOT NULL,
			resolved_at TEXT,
			deleted_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_active_name ON objects (name) WHERE active = 1`,
		`CREATE TABLE IF NOT EXISTS object_readers (
			object_id TEXT NOT NULL REFERENCES objects (id),
			username TEXT NOT NULL,
			PRIMARY KEY (object_id, username)
		)`,
		`CREATE TABLE IF NOT EXISTS object_writers (
			object_id TEXT NOT NULL REFERENCES objects (id),
			username TEXT NOT NULL,
			PRIMARY KEY (object_id, username)
		)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			directory TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			modified_at TEXT NOT NULL,
			deleted_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS group_readers (
			group_id TEXT NOT NULL REFERENCES groups (id),
			username TEXT NOT NULL,
			PRIMARY KEY (group_id, username)
		)`,
		`CREATE TABLE IF NOT EXISTS group_writers (
			group_id TEXT NOT NULL REFERENCES groups (id),
			username TEXT NOT NULL,
			PRIMARY KEY (group_id, username)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
