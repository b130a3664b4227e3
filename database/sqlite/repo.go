// Package sqlite implements the metadata repos on SQLite. Timestamps are
// stored as RFC3339Nano text and ids as their string form. Transaction rules
// match the postgres implementation: one logical operation, one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/vana"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const objectColumns = `id, name, owner_id, platform, location, size_estimate,
	active, created_at, modified_at, resolved_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(row rowScanner) (vana.Object, error) {
	var o vana.Object
	var idStr, createdAt, modifiedAt string
	var resolvedAt, deletedAt sql.NullString

	err := row.Scan(
		&idStr, &o.Name, &o.OwnerID, &o.Platform, &o.Location, &o.SizeEstimateBytes,
		&o.Active, &createdAt, &modifiedAt, &resolvedAt, &deletedAt,
	)
	if err != nil {
		return vana.Object{}, err
	}

	if o.ID, err = uuid.Parse(idStr); err != nil {
		return vana.Object{}, fmt.Errorf("parse id: %w", err)
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return vana.Object{}, fmt.Errorf("parse created_at: %w", err)
	}
	if o.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return vana.Object{}, fmt.Errorf("parse modified_at: %w", err)
	}
	if o.ResolvedAt, err = parseNullTime(resolvedAt); err != nil {
		return vana.Object{}, fmt.Errorf("parse resolved_at: %w", err)
	}
	if o.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return vana.Object{}, fmt.Errorf("parse deleted_at: %w", err)
	}

	return o, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (vana.Object, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+objectColumns+` FROM objects WHERE id = ?`, id.String())

	o, err := scanObject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vana.Object{}, vana.ErrNotFound
		}
		return vana.Object{}, fmt.Errorf("get object: %w", err)
	}

	if !o.Active {
		return vana.Object{}, vana.ErrGone
	}

	if o.Readers, err = loadACL(ctx, r.db, "object_readers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("get object: %w", err)
	}
	if o.Writers, err = loadACL(ctx, r.db, "object_writers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("get object: %w", err)
	}

	return o, nil
}

func (r *Repo) Insert(ctx context.Context, obj vana.Object) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO objects (id, name, owner_id, platform, location, size_estimate, active, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, obj.ID.String(), obj.Name, obj.OwnerID, string(obj.Platform), obj.Location, obj.SizeEstimateBytes,
		obj.Active, formatTime(obj.CreatedAt), formatTime(obj.ModifiedAt))
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}

	if err = addACL(ctx, tx, "object_readers", "object_id", obj.ID, obj.Readers); err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	if err = addACL(ctx, tx, "object_writers", "object_id", obj.ID, obj.Writers); err != nil {
		return fmt.Errorf("insert object: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, upd vana.ObjectUpdate) (vana.Object, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE objects SET owner_id = ?, modified_at = ?
		WHERE id = ? AND active = 1
	`, upd.OwnerID, formatTime(time.Now().UTC()), id.String())
	if err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return vana.Object{}, r.missing(ctx, "objects", id)
	}

	if err = applyACLDelta(ctx, tx, "object_readers", "object_id", id, upd.Readers); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if err = applyACLDelta(ctx, tx, "object_writers", "object_id", id, upd.Writers); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}

	o, err := scanObject(tx.QueryRowContext(ctx, `SELECT `+objectColumns+` FROM objects WHERE id = ?`, id.String()))
	if err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if o.Readers, err = loadACL(ctx, tx, "object_readers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if o.Writers, err = loadACL(ctx, tx, "object_writers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	return o, nil
}

func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := formatTime(time.Now().UTC())
	result, err := r.db.ExecContext(ctx, `
		UPDATE objects SET active = 0, deleted_at = ?, modified_at = ?
		WHERE id = ? AND active = 1
	`, now, now, id.String())
	if err != nil {
		return fmt.Errorf("soft delete object: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return r.missing(ctx, "objects", id)
	}
	return nil
}

func (r *Repo) Restore(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE objects SET active = 1, deleted_at = NULL, modified_at = ?
		WHERE id = ? AND active = 0
	`, formatTime(time.Now().UTC()), id.String())
	if err != nil {
		return fmt.Errorf("restore object: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("restore object: %w", vana.ErrNotFound)
	}
	return nil
}

func (r *Repo) TouchResolved(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE objects SET resolved_at = ? WHERE id = ? AND active = 1
	`, formatTime(time.Now().UTC()), id.String())
	if err != nil {
		return fmt.Errorf("touch resolved: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return r.missing(ctx, "objects", id)
	}
	return nil
}

func (r *Repo) ListByName(ctx context.Context, name, reader string) ([]vana.Object, error) {
	query := `
		SELECT ` + objectColumns + `
		FROM objects o
		JOIN object_readers rd ON rd.object_id = o.id AND rd.username = ?
		WHERE o.name = ? AND o.active = 1
		ORDER BY o.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, reader, name)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var objs []vana.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("list objects: scan: %w", err)
		}
		objs = append(objs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list objects: rows: %w", err)
	}

	for i := range objs {
		if objs[i].Readers, err = loadACL(ctx, r.db, "object_readers", "object_id", objs[i].ID); err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		if objs[i].Writers, err = loadACL(ctx, r.db, "object_writers", "object_id", objs[i].ID); err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
	}

	return objs, nil
}

func (r *Repo) missing(ctx context.Context, table string, id uuid.UUID) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = ?)`, table)
	if err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&exists); err != nil {
		return fmt.Errorf("check row: %w", err)
	}
	if exists {
		return vana.ErrGone
	}
	return vana.ErrNotFound
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func loadACL(ctx context.Context, q querier, table, fk string, id uuid.UUID) ([]string, error) {
	query := fmt.Sprintf(`SELECT username FROM %s WHERE %s = ? ORDER BY username`, table, fk)
	rows, err := q.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("load acl %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("load acl %s: scan: %w", table, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load acl %s: rows: %w", table, err)
	}
	return users, nil
}

func addACL(ctx context.Context, e executor, table, fk string, id uuid.UUID, users []string) error {
	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s, username) VALUES (?, ?)`, table, fk)
	for _, u := range users {
		if _, err := e.ExecContext(ctx, query, id.String(), u); err != nil {
			return fmt.Errorf("add acl %s: %w", table, err)
		}
	}
	return nil
}

func applyACLDelta(ctx context.Context, e executor, table, fk string, id uuid.UUID, delta vana.ACLDelta) error {
	if delta.Empty() {
		return nil
	}
	removeQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND username = ?`, table, fk)
	for _, u := range delta.Remove {
		if _, err := e.ExecContext(ctx, removeQuery, id.String(), u); err != nil {
			return fmt.Errorf("remove acl %s: %w", table, err)
		}
	}
	return addACL(ctx, e, table, fk, id, delta.Add)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
