package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	vanahttp "github.com/sagarc03/vana/http"
)

func TestIdentityMiddleware(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = vanahttp.CallerFromContext(r.Context())
	})
	wrapped := vanahttp.IdentityMiddleware(inner)

	t.Run("header flows into context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(vanahttp.IdentityHeader, "alice")

		wrapped.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "alice", seen)
	})

	t.Run("missing header is the empty caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		wrapped.ServeHTTP(httptest.NewRecorder(), req)
		assert.Empty(t, seen)
	})
}

func TestCallerFromContext_Unset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, vanahttp.CallerFromContext(req.Context()))
}
