// Package postgres implements the metadata repos on PostgreSQL. One logical
// operation maps to one transaction: either all rows change or none do, and
// concurrent operations on the same id serialize on the row lock.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/vana"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const objectColumns = `id, name, owner_id, platform, location, size_estimate,
	active, created_at, modified_at, resolved_at, deleted_at`

func scanObject(row pgx.Row) (vana.Object, error) {
	var o vana.Object
	err := row.Scan(
		&o.ID, &o.Name, &o.OwnerID, &o.Platform, &o.Location, &o.SizeEstimateBytes,
		&o.Active, &o.CreatedAt, &o.ModifiedAt, &o.ResolvedAt, &o.DeletedAt,
	)
	return o, err
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (vana.Object, error) {
	query := `SELECT ` + objectColumns + ` FROM objects WHERE id = $1`

	o, err := scanObject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vana.Object{}, vana.ErrNotFound
		}
		return vana.Object{}, fmt.Errorf("get object: %w", err)
	}

	if !o.Active {
		return vana.Object{}, vana.ErrGone
	}

	if o.Readers, err = r.loadACL(ctx, "object_readers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("get object: %w", err)
	}
	if o.Writers, err = r.loadACL(ctx, "object_writers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("get object: %w", err)
	}

	return o, nil
}

func (r *Repo) Insert(ctx context.Context, obj vana.Object) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO objects (id, name, owner_id, platform, location, size_estimate, active, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, obj.ID, obj.Name, obj.OwnerID, obj.Platform, obj.Location, obj.SizeEstimateBytes, obj.Active, obj.CreatedAt, obj.ModifiedAt)
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}

	if err = addACL(ctx, tx, "object_readers", "object_id", obj.ID, obj.Readers); err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	if err = addACL(ctx, tx, "object_writers", "object_id", obj.ID, obj.Writers); err != nil {
		return fmt.Errorf("insert object: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, upd vana.ObjectUpdate) (vana.Object, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE objects SET owner_id = $2, modified_at = NOW()
		WHERE id = $1 AND active
	`, id, upd.OwnerID)
	if err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return vana.Object{}, r.missing(ctx, "objects", id)
	}

	if err = applyACLDelta(ctx, tx, "object_readers", "object_id", id, upd.Readers); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if err = applyACLDelta(ctx, tx, "object_writers", "object_id", id, upd.Writers); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}

	o, err := scanObject(tx.QueryRow(ctx, `SELECT `+objectColumns+` FROM objects WHERE id = $1`, id))
	if err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if o.Readers, err = loadACLTx(ctx, tx, "object_readers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	if o.Writers, err = loadACLTx(ctx, tx, "object_writers", "object_id", id); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return vana.Object{}, fmt.Errorf("update object: %w", err)
	}
	return o, nil
}

func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE objects SET active = FALSE, deleted_at = NOW(), modified_at = NOW()
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete object: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missing(ctx, "objects", id)
	}
	return nil
}

func (r *Repo) Restore(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE objects SET active = TRUE, deleted_at = NULL, modified_at = NOW()
		WHERE id = $1 AND NOT active
	`, id)
	if err != nil {
		return fmt.Errorf("restore object: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("restore object: %w", vana.ErrNotFound)
	}
	return nil
}

func (r *Repo) TouchResolved(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE objects SET resolved_at = NOW() WHERE id = $1 AND active
	`, id)
	if err != nil {
		return fmt.Errorf("touch resolved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missing(ctx, "objects", id)
	}
	return nil
}

func (r *Repo) ListByName(ctx context.Context, name, reader string) ([]vana.Object, error) {
	query := `
		SELECT ` + objectColumns + `
		FROM objects o
		JOIN object_readers rd ON rd.object_id = o.id AND rd.username = $2
		WHERE o.name = $1 AND o.active
		ORDER BY o.created_at
	`

	rows, err := r.pool.Query(ctx, query, name, reader)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer rows.Close()

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
		if objs[i].Readers, err = r.loadACL(ctx, "object_readers", "object_id", objs[i].ID); err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		if objs[i].Writers, err = r.loadACL(ctx, "object_writers", "object_id", objs[i].ID); err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
	}

	return objs, nil
}

// missing reports why a guarded update matched no row: the row is either
// soft-deleted or absent.
func (r *Repo) missing(ctx context.Context, table string, id uuid.UUID) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("check row: %w", err)
	}
	if exists {
		return vana.ErrGone
	}
	return vana.ErrNotFound
}

func (r *Repo) loadACL(ctx context.Context, table, fk string, id uuid.UUID) ([]string, error) {
	query := fmt.Sprintf(`SELECT username FROM %s WHERE %s = $1 ORDER BY username`, table, fk)
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("load acl %s: %w", table, err)
	}
	defer rows.Close()
	return collectUsers(rows, table)
}

func loadACLTx(ctx context.Context, tx pgx.Tx, table, fk string, id uuid.UUID) ([]string, error) {
	query := fmt.Sprintf(`SELECT username FROM %s WHERE %s = $1 ORDER BY username`, table, fk)
	rows, err := tx.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("load acl %s: %w", table, err)
	}
	defer rows.Close()
	return collectUsers(rows, table)
}

func collectUsers(rows pgx.Rows, table string) ([]string, error) {
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

func addACL(ctx context.Context, tx pgx.Tx, table, fk string, id uuid.UUID, users []string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, username) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, fk)
	for _, u := range users {
		if _, err := tx.Exec(ctx, query, id, u); err != nil {
			return fmt.Errorf("add acl %s: %w", table, err)
		}
	}
	return nil
}

func applyACLDelta(ctx context.Context, tx pgx.Tx, table, fk string, id uuid.UUID, delta vana.ACLDelta) error {
	if delta.Empty() {
		return nil
	}
	if len(delta.Remove) > 0 {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND username = ANY($2)`, table, fk)
		if _, err := tx.Exec(ctx, query, id, delta.Remove); err != nil {
			return fmt.Errorf("remove acl %s: %w", table, err)
		}
	}
	return addACL(ctx, tx, table, fk, id, delta.Add)
}
