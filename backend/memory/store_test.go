package memory_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/vana"
	"github.com/sagarc03/vana/backend/memory"
)

func TestStore_ResolveRoundTrip(t *testing.T) {
	store := memory.NewStore("")
	srv := httptest.NewServer(store.Handler())
	defer srv.Close()
	store.SetBaseURL(srv.URL)

	ctx := context.Background()
	expiry := time.Now().Add(time.Minute)

	putURL, err := store.Resolve(ctx, "abc-123", http.MethodPut, expiry, "text/plain", "")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, putURL, bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	getURL, err := store.Resolve(ctx, "abc-123", http.MethodGet, expiry, "", "")
	require.NoError(t, err)

	resp, err = http.Get(getURL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestStore_Copy(t *testing.T) {
	store := memory.NewStore("http://memory.local")
	ctx := context.Background()

	store.Put("source", []byte("payload"))

	_, err := store.Copy(ctx, "dest", "source", time.Now().Add(time.Minute))
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "dest")
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("copies are independent", func(t *testing.T) {
		store.Put("source", []byte("changed"))

		srv := httptest.NewServer(store.Handler())
		defer srv.Close()
		store.SetBaseURL(srv.URL)

		resp, err := http.Get(srv.URL + "/dest")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, "payload", string(body))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := store.Copy(ctx, "dest", "no-such-key", time.Now().Add(time.Minute))
		assert.ErrorIs(t, err, vana.ErrNotFound)
	})
}

func TestStore_Delete(t *testing.T) {
	store := memory.NewStore("http://memory.local")
	ctx := context.Background()

	store.Put("abc-123", []byte("bytes"))
	require.NoError(t, store.Delete(ctx, "abc-123"))

	exists, err := store.Exists(ctx, "abc-123")
	require.NoError(t, err)
	assert.False(t, exists)

	t.Run("absent key is success", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-existed"))
	})
}

func TestStore_ReadOnly(t *testing.T) {
	store := memory.NewStore("")
	store.SetReadOnly(true)
	assert.True(t, store.ReadOnly())

	srv := httptest.NewServer(store.Handler())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/abc-123", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStore_Handler_Errors(t *testing.T) {
	store := memory.NewStore("")
	srv := httptest.NewServer(store.Handler())
	defer srv.Close()

	t.Run("unknown key", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/no-such-key")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing key", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
