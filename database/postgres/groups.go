package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sagarc03/vana"
)

// GroupRepo implements vana.GroupRepo on the same pool as Repo.
type GroupRepo struct {
	*Repo
}

func NewGroupRepo(repo *Repo) *GroupRepo {
	return &GroupRepo{Repo: repo}
}

const groupColumns = `id, name, owner_id, kind, directory, active, created_at, modified_at, deleted_at`

func scanGroup(row pgx.Row) (vana.Group, error) {
	var g vana.Group
	err := row.Scan(
		&g.ID, &g.Name, &g.OwnerID, &g.Kind, &g.Directory,
		&g.Active, &g.CreatedAt, &g.ModifiedAt, &g.DeletedAt,
	)
	return g, err
}

func (r *GroupRepo) Get(ctx context.Context, id uuid.UUID) (vana.Group, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vana.Group{}, vana.ErrNotFound
		}
		return vana.Group{}, fmt.Errorf("get group: %w", err)
	}

	if !g.Active {
		return vana.Group{}, vana.ErrGone
	}

	if g.Readers, err = r.loadACL(ctx, "group_readers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("get group: %w", err)
	}
	if g.Writers, err = r.loadACL(ctx, "group_writers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("get group: %w", err)
	}

	return g, nil
}

func (r *GroupRepo) Insert(ctx context.Context, g vana.Group) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO groups (id, name, owner_id, kind, directory, active, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, g.ID, g.Name, g.OwnerID, g.Kind, g.Directory, g.Active, g.CreatedAt, g.ModifiedAt)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	if err = addACL(ctx, tx, "group_readers", "group_id", g.ID, g.Readers); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	if err = addACL(ctx, tx, "group_writers", "group_id", g.ID, g.Writers); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *GroupRepo) Update(ctx context.Context, id uuid.UUID, upd vana.ObjectUpdate) (vana.Group, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE groups SET owner_id = $2, modified_at = NOW()
		WHERE id = $1 AND active
	`, id, upd.OwnerID)
	if err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return vana.Group{}, r.missing(ctx, "groups", id)
	}

	if err = applyACLDelta(ctx, tx, "group_readers", "group_id", id, upd.Readers); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if err = applyACLDelta(ctx, tx, "group_writers", "group_id", id, upd.Writers); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}

	g, err := scanGroup(tx.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id))
	if err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if g.Readers, err = loadACLTx(ctx, tx, "group_readers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	if g.Writers, err = loadACLTx(ctx, tx, "group_writers", "group_id", id); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return vana.Group{}, fmt.Errorf("update group: %w", err)
	}
	return g, nil
}

func (r *GroupRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE groups SET active = FALSE, deleted_at = NOW(), modified_at = NOW()
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missing(ctx, "groups", id)
	}
	return nil
}
