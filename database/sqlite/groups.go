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

// GroupRepo implements vana.GroupRepo on the same handle as Repo.
type GroupRepo struct {
	*Repo
}

func NewGroupRepo(repo *Repo) *GroupRepo {
	return &GroupRepo{Repo: repo}
}

const groupColumns = `id, name, owner_id, kind, directory, active, created_at, modified_at, deleted_at`

func scanGroup(row rowScanner) (vana.Group, error) {
	var g vana.Group
	var idStr, createdAt, modifiedAt string
	var deletedAt sql.NullString

	err := row.Scan(
		&idStr, &g.Name, &g.OwnerID, &g.Kind, &g.Directory,
		&g.Active, &createdAt, &modifiedAt, &deletedAt,
	)
	if err != nil {
		return vana.Group{}, err
	}

	if g.ID, err = uuid.Parse(idStr); err != nil {
		return vana.Group{}, fmt.Errorf("parse id: %w", err)
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return vana.Group{}, fmt.Errorf("parse created_at: %w", err)
	}
	if g.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return vana.Group{}, fmt.Errorf("parse modified_at: %w", err)
	}
	if g.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return vana.Group{}, fmt.Errorf("parse deleted_at: %w", err)
	}

	return g, nil
}

func (r *GroupRepo) Get(ctx context.Context, id uuid.UUID) (vana.Group, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id.String())

	g, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vana.Group{}, vana.ErrNotFound
		}
		return vana.Group{}, fmt.Errorf("get group: %w", err)
	}

	if !g.Active {
		return vana.Group{}, vana.ErrGone
	}

	if g.Readers, err = loadACL(ctx, r.db, "group_readers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("get group: %w", err)
	}
	if g.Writers, err = loadACL(ctx, r.db, "group_writers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("get group: %w", err)
	}

	return g, nil
}

func (r *GroupRepo) Insert(ctx context.Context, g vana.Group) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO groups (id, name, owner_id, kind, directory, active, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID.String(), g.Name, g.OwnerID, string(g.Kind), g.Directory,
		g.Active, formatTime(g.CreatedAt), formatTime(g.ModifiedAt))
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	if err = addACL(ctx, tx, "group_readers", "group_id", g.ID, g.Readers); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	if err = addACL(ctx, tx, "group_writers", "group_id", g.ID, g.Writers); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *GroupRepo) Update(ctx context.Context, id uuid.UUID, upd vana.ObjectUpdate) (vana.Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE groups SET owner_id = ?, modified_at = ?
		WHERE id = ? AND active = 1
	`, upd.OwnerID, formatTime(time.Now().UTC()), id.String())
	if err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return vana.Group{}, r.missing(ctx, "groups", id)
	}

	if err = applyACLDelta(ctx, tx, "group_readers", "group_id", id, upd.Readers); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if err = applyACLDelta(ctx, tx, "group_writers", "group_id", id, upd.Writers); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}

	g, err := scanGroup(tx.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id.String()))
	if err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if g.Readers, err = loadACL(ctx, tx, "group_readers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if g.Writers, err = loadACL(ctx, tx, "group_writers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	return g, nil
}

func (r *GroupRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := formatTime(time.Now().UTC())
	result, err := r.db.ExecContext(ctx, `
		UPDATE groups SET active = 0, deleted_at = ?, modified_at = ?
		WHERE id = ? AND active = 1
	`, now, now, id.String())
	if err != nil {
		return fmt.Errorf("soft delete group: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return r.missing(ctx, "groups", id)
	}
	return nil
}
