package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/vana"
)

func TestRepo_InsertGet(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	obj := testObject()
	require.NoError(t, repo.Insert(ctx, obj))

	got, err := repo.Get(ctx, obj.ID)
	require.NoError(t, err)

	assert.Equal(t, obj.ID, got.ID)
	assert.Equal(t, obj.Name, got.Name)
	assert.Equal(t, obj.OwnerID, got.OwnerID)
	assert.Equal(t, obj.Platform, got.Platform)
	assert.Equal(t, obj.Location, got.Location)
	assert.Equal(t, obj.SizeEstimateBytes, got.SizeEstimateBytes)
	assert.True(t, got.Active)
	assert.ElementsMatch(t, obj.Readers, got.Readers)
	assert.ElementsMatch(t, obj.Writers, got.Writers)
	assert.Nil(t, got.ResolvedAt)
	assert.Nil(t, got.DeletedAt)
}

func TestRepo_Get_Missing(t *testing.T) {
	repo, _ := setupTestRepo(t)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, vana.ErrNotFound)
}

func TestRepo_Insert_DuplicateACLUsers(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	obj := testObject()
	obj.Readers = []string{"alice", "alice", "bob"}
	require.NoError(t, repo.Insert(ctx, obj))

	got, err := repo.Get(ctx, obj.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, got.Readers)
}

func TestRepo_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner and ACL deltas commit together", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		obj := testObject()
		require.NoError(t, repo.Insert(ctx, obj))

		got, err := repo.Update(ctx, obj.ID, vana.ObjectUpdate{
			OwnerID: "bob",
			Readers: vana.ACLDelta{Add: []string{"carol"}, Remove: []string{"alice"}},
			Writers: vana.ACLDelta{Add: []string{"bob"}},
		})
		require.NoError(t, err)

		assert.Equal(t, "bob", got.OwnerID)
		assert.ElementsMatch(t, []string{"bob", "carol"}, got.Readers)
		assert.ElementsMatch(t, []string{"alice", "bob"}, got.Writers)

		reread, err := repo.Get(ctx, obj.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", reread.OwnerID)
		assert.ElementsMatch(t, got.Readers, reread.Readers)
	})

	t.Run("deleted object", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		obj := testObject()
		require.NoError(t, repo.Insert(ctx, obj))
		require.NoError(t, repo.SoftDelete(ctx, obj.ID))

		_, err := repo.Update(ctx, obj.ID, vana.ObjectUpdate{OwnerID: "bob"})
		assert.ErrorIs(t, err, vana.ErrGone)
	})

	t.Run("missing object", func(t *testing.T) {
		repo, _ := setupTestRepo(t)

		_, err := repo.Update(ctx, uuid.New(), vana.ObjectUpdate{OwnerID: "bob"})
		assert.ErrorIs(t, err, vana.ErrNotFound)
	})
}

func TestRepo_SoftDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("get after delete is gone", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		obj := testObject()
		require.NoError(t, repo.Insert(ctx, obj))

		require.NoError(t, repo.SoftDelete(ctx, obj.ID))

		_, err := repo.Get(ctx, obj.ID)
		assert.ErrorIs(t, err, vana.ErrGone)
	})

	t.Run("double delete is gone", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		obj := testObject()
		require.NoError(t, repo.Insert(ctx, obj))
		require.NoError(t, repo.SoftDelete(ctx, obj.ID))

		assert.ErrorIs(t, repo.SoftDelete(ctx, obj.ID), vana.ErrGone)
	})

	t.Run("missing object", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		assert.ErrorIs(t, repo.SoftDelete(ctx, uuid.New()), vana.ErrNotFound)
	})

	t.Run("restore reverses it", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		obj := testObject()
		require.NoError(t, repo.Insert(ctx, obj))
		require.NoError(t, repo.SoftDelete(ctx, obj.ID))

		require.NoError(t, repo.Restore(ctx, obj.ID))

		got, err := repo.Get(ctx, obj.ID)
		require.NoError(t, err)
		assert.True(t, got.Active)
		assert.Nil(t, got.DeletedAt)
	})
}

func TestRepo_TouchResolved(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	obj := testObject()
	require.NoError(t, repo.Insert(ctx, obj))

	require.NoError(t, repo.TouchResolved(ctx, obj.ID))

	got, err := repo.Get(ctx, obj.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.WithinDuration(t, time.Now().UTC(), *got.ResolvedAt, time.Minute)
}

func TestRepo_ListByName(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	visible := testObject()
	require.NoError(t, repo.Insert(ctx, visible))

	hidden := testObject()
	hidden.Readers = []string{"carol"}
	require.NoError(t, repo.Insert(ctx, hidden))

	otherName := testObject()
	otherName.Name = "other.csv"
	require.NoError(t, repo.Insert(ctx, otherName))

	deleted := testObject()
	require.NoError(t, repo.Insert(ctx, deleted))
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID))

	objs, err := repo.ListByName(ctx, "results.csv", "bob")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, visible.ID, objs[0].ID)
	assert.ElementsMatch(t, visible.Readers, objs[0].Readers)
}

func TestGroupRepo(t *testing.T) {
	ctx := context.Background()

	group := func() vana.Group {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return vana.Group{
			ID:         uuid.New(),
			Name:       "experiment-12",
			OwnerID:    "alice",
			Kind:       vana.GroupKindRecord,
			Active:     true,
			CreatedAt:  now,
			ModifiedAt: now,
			Readers:    []string{"alice"},
			Writers:    []string{"alice"},
		}
	}

	t.Run("insert and get", func(t *testing.T) {
		_, groups := setupTestRepo(t)
		g := group()
		require.NoError(t, groups.Insert(ctx, g))

		got, err := groups.Get(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, g.Name, got.Name)
		assert.Equal(t, vana.GroupKindRecord, got.Kind)
		assert.ElementsMatch(t, g.Readers, got.Readers)
	})

	t.Run("update ACLs", func(t *testing.T) {
		_, groups := setupTestRepo(t)
		g := group()
		require.NoError(t, groups.Insert(ctx, g))

		got, err := groups.Update(ctx, g.ID, vana.ObjectUpdate{
			OwnerID: "bob",
			Writers: vana.ACLDelta{Add: []string{"bob"}, Remove: []string{"alice"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "bob", got.OwnerID)
		assert.ElementsMatch(t, []string{"bob"}, got.Writers)
	})

	t.Run("soft delete is terminal", func(t *testing.T) {
		_, groups := setupTestRepo(t)
		g := group()
		require.NoError(t, groups.Insert(ctx, g))
		require.NoError(t, groups.SoftDelete(ctx, g.ID))

		_, err := groups.Get(ctx, g.ID)
		assert.ErrorIs(t, err, vana.ErrGone)
	})
}
