package keystore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/vana/keystore"
)

func TestStore_Lookup(t *testing.T) {
	t.Run("inline credentials", func(t *testing.T) {
		store, err := keystore.NewStore(keystore.Config{
			Inline: []keystore.NamedCredential{
				{Backend: "objectstore", Credential: keystore.Credential{
					AccessID:       "svc@example.iam",
					PrivateKeyFile: "/etc/vana/sign.pem",
				}},
			},
		})
		require.NoError(t, err)

		cred, err := store.Lookup("objectstore")
		require.NoError(t, err)
		assert.Equal(t, "svc@example.iam", cred.AccessID)
		assert.Equal(t, "/etc/vana/sign.pem", cred.PrivateKeyFile)
	})

	t.Run("unknown backend", func(t *testing.T) {
		store, err := keystore.NewStore(keystore.Config{})
		require.NoError(t, err)

		_, err = store.Lookup("no-such-backend")
		assert.ErrorIs(t, err, keystore.ErrCredentialNotFound)
	})

	t.Run("file credentials override inline", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		content := `[{"backend": "objectstore", "access_id": "from-file", "secret": "s3cret"}]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		store, err := keystore.NewStore(keystore.Config{
			Inline: []keystore.NamedCredential{
				{Backend: "objectstore", Credential: keystore.Credential{AccessID: "from-inline"}},
			},
			File: path,
		})
		require.NoError(t, err)

		cred, err := store.Lookup("objectstore")
		require.NoError(t, err)
		assert.Equal(t, "from-file", cred.AccessID)
		assert.Equal(t, "s3cret", cred.Secret)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := keystore.NewStore(keystore.Config{
			File: filepath.Join(t.TempDir(), "absent.json"),
		})
		assert.Error(t, err)
	})
}

func TestLoadCredentialsFromFile(t *testing.T) {
	t.Run("nameless entries are skipped", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		content := `[
			{"backend": "a", "access_id": "ak"},
			{"access_id": "orphan"}
		]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		creds, err := keystore.LoadCredentialsFromFile(path)
		require.NoError(t, err)
		assert.Len(t, creds, 1)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		require.NoError(t, os.WriteFile(path, []byte("{not an array"), 0o600))

		_, err := keystore.LoadCredentialsFromFile(path)
		assert.Error(t, err)
	})
}
