package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the object and group tables and their ACL relations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sql := `
		CREATE TABLE IF NOT EXISTS objects (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			location TEXT NOT NULL,
			size_estimate BIGINT NOT NULL DEFAULT -1,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			resolved_at TIMESTAMPTZ,
			deleted_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_objects_active_name
		ON objects (name)
		WHERE active;

		CREATE TABLE IF NOT EXISTS object_readers (
			object_id UUID NOT NULL REFERENCES objects (id),
			username TEXT NOT NULL,
			PRIMARY KEY (object_id, username)
		);

		CREATE TABLE IF NOT EXISTS object_writers (
			object_id UUID NOT NULL REFERENCES objects (id),
			username TEXT NOT NULL,
			PRIMARY KEY (object_id, username)
		);

		CREATE TABLE IF NOT EXISTS groups (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			directory TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS group_readers (
			group_id UUID NOT NULL REFERENCES groups (id),
			username TEXT NOT NULL,
			PRIMARY KEY (group_id, username)
		);

		CREATE TABLE IF NOT EXISTS group_writers (
			group_id UUID NOT NULL REFERENCES groups (id),
			username TEXT NOT NULL,
			PRIMARY KEY (group_id, username)
		);
	`

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
