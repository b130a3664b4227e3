package vana_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/vana"
)

func activeGroup(id uuid.UUID) vana.Group {
	return vana.Group{
		ID:      id,
		Name:    "experiment-12",
		OwnerID: "alice",
		Kind:    vana.GroupKindRecord,
		Active:  true,
		Readers: []string{"alice", "bob"},
		Writers: []string{"alice"},
	}
}

func TestService_CreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to record kind", func(t *testing.T) {
		service, _, groups, _ := NewService(t)

		var inserted vana.Group
		groups.On("Insert", ctx, mock.MatchedBy(func(g vana.Group) bool {
			inserted = g
			return true
		})).Return(nil)

		g, err := service.CreateGroup(ctx, "alice", vana.CreateGroup{
			Name:    "experiment-12",
			OwnerID: "alice",
			Readers: []string{"alice"},
		})
		require.NoError(t, err)
		assert.Equal(t, vana.GroupKindRecord, g.Kind)
		assert.Empty(t, inserted.Directory)
	})

	t.Run("directory kind generates a directory from the id", func(t *testing.T) {
		service, _, groups, _ := NewService(t)

		var inserted vana.Group
		groups.On("Insert", ctx, mock.MatchedBy(func(g vana.Group) bool {
			inserted = g
			return true
		})).Return(nil)

		_, err := service.CreateGroup(ctx, "alice", vana.CreateGroup{
			Name:    "experiment-12",
			OwnerID: "alice",
			Kind:    vana.GroupKindDirectory,
		})
		require.NoError(t, err)
		assert.Equal(t, inserted.ID.String()+"/", inserted.Directory)
		assert.True(t, strings.HasSuffix(inserted.Directory, "/"))
	})

	t.Run("unknown kind", func(t *testing.T) {
		service, _, _, _ := NewService(t)

		_, err := service.CreateGroup(ctx, "alice", vana.CreateGroup{
			Name: "experiment-12", OwnerID: "alice", Kind: "folder",
		})
		assert.ErrorIs(t, err, vana.ErrInvalidInput)
	})

	t.Run("no group storage configured", func(t *testing.T) {
		service, err := vana.NewService(new(SpyObjectRepo), nil, nil)
		require.NoError(t, err)

		_, err = service.CreateGroup(ctx, "alice", vana.CreateGroup{
			Name: "experiment-12", OwnerID: "alice",
		})
		assert.ErrorIs(t, err, vana.ErrUnsupported)
	})
}

func TestService_UpdateGroup(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("name is immutable", func(t *testing.T) {
		service, _, groups, _ := NewService(t)
		groups.On("Get", ctx, id).Return(activeGroup(id), nil)

		_, err := service.UpdateGroup(ctx, "alice", id, vana.UpdateGroup{Name: "renamed"})
		assert.ErrorIs(t, err, vana.ErrInvalidInput)
		groups.AssertNotCalled(t, "Update")
	})

	t.Run("applies ACL deltas", func(t *testing.T) {
		service, _, groups, _ := NewService(t)
		g := activeGroup(id)

		groups.On("Get", ctx, id).Return(g, nil)
		groups.On("Update", ctx, id, vana.ObjectUpdate{
			OwnerID: "alice",
			Writers: vana.ACLDelta{Add: []string{"bob"}},
		}).Return(g, nil)

		_, err := service.UpdateGroup(ctx, "alice", id, vana.UpdateGroup{
			Writers: []string{"alice", "bob"},
		})
		require.NoError(t, err)
		groups.AssertExpectations(t)
	})

	t.Run("reader cannot update", func(t *testing.T) {
		service, _, groups, _ := NewService(t)
		groups.On("Get", ctx, id).Return(activeGroup(id), nil)

		_, err := service.UpdateGroup(ctx, "bob", id, vana.UpdateGroup{OwnerID: "bob"})
		assert.ErrorIs(t, err, vana.ErrForbidden)
	})
}

func TestService_DeleteGroup(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("writer soft-deletes", func(t *testing.T) {
		service, _, groups, _ := NewService(t)

		groups.On("Get", ctx, id).Return(activeGroup(id), nil)
		groups.On("SoftDelete", ctx, id).Return(nil)

		err := service.DeleteGroup(ctx, "alice", id)
		require.NoError(t, err)
		groups.AssertExpectations(t)
	})

	t.Run("deleted group stays gone", func(t *testing.T) {
		service, _, groups, _ := NewService(t)
		groups.On("Get", ctx, id).Return(vana.Group{}, vana.ErrGone)

		err := service.DeleteGroup(ctx, "alice", id)
		assert.ErrorIs(t, err, vana.ErrGone)
	})
}
