package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/vana"
	"github.com/sagarc03/vana/backend"
	"github.com/sagarc03/vana/keystore"
)

func emptyKeystore(t *testing.T) *keystore.Store {
	t.Helper()
	store, err := keystore.NewStore(keystore.Config{})
	require.NoError(t, err)
	return store
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend needs no credentials", func(t *testing.T) {
		signers, err := backend.Build(ctx, map[string]backend.Config{
			"local": {Type: "memory", ReadOnly: true},
		}, emptyKeystore(t))
		require.NoError(t, err)

		require.True(t, signers.Has("local"))
		signer, err := signers.For("local")
		require.NoError(t, err)
		assert.True(t, signer.ReadOnly())
	})

	t.Run("block names become platform names", func(t *testing.T) {
		signers, err := backend.Build(ctx, map[string]backend.Config{
			"mem-a": {Type: "memory"},
			"mem-b": {Type: "memory"},
		}, emptyKeystore(t))
		require.NoError(t, err)

		assert.True(t, signers.Has("mem-a"))
		assert.True(t, signers.Has("mem-b"))
		assert.False(t, signers.Has("mem-c"))
	})

	t.Run("reserved platform name", func(t *testing.T) {
		_, err := backend.Build(ctx, map[string]backend.Config{
			string(vana.PlatformOpaqueURI): {Type: "memory"},
		}, emptyKeystore(t))
		assert.Error(t, err)
	})

	t.Run("unknown backend type", func(t *testing.T) {
		_, err := backend.Build(ctx, map[string]backend.Config{
			"tape": {Type: "tape"},
		}, emptyKeystore(t))
		assert.Error(t, err)
	})

	t.Run("credentialed backend without a credential", func(t *testing.T) {
		_, err := backend.Build(ctx, map[string]backend.Config{
			"cloud": {Type: "s3", Bucket: "b"},
		}, emptyKeystore(t))
		assert.ErrorIs(t, err, keystore.ErrCredentialNotFound)
	})
}
