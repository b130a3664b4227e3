package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/vana"
	vanahttp "github.com/sagarc03/vana/http"
)

func TestHandleError(t *testing.T) {
	catalog := vana.NewMessageCatalog()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unauthenticated", vana.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", vana.ErrForbidden, http.StatusForbidden},
		{"read only", vana.ErrReadOnly, http.StatusForbidden},
		{"gone", vana.ErrGone, http.StatusGone},
		{"not found", vana.ErrNotFound, http.StatusNotFound},
		{"conflict", vana.ErrConflict, http.StatusConflict},
		{"unsupported", vana.ErrUnsupported, http.StatusBadRequest},
		{"invalid input", vana.ErrInvalidInput, http.StatusBadRequest},
		{"internal", vana.ErrInternal, http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			vanahttp.HandleError(rec, catalog, fmt.Errorf("op: %w", tt.err))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Body.String())
		})
	}

	t.Run("wrapped sentinels keep their status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := fmt.Errorf("delete object: backend delete failed (%w): %w", errors.New("denied"), vana.ErrInternal)
		vanahttp.HandleError(rec, catalog, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("validation detail is included", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := fmt.Errorf("update object: objectName is immutable: %w", vana.ErrInvalidInput)
		vanahttp.HandleError(rec, catalog, err)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "objectName is immutable")
	})

	t.Run("catalog text is used", func(t *testing.T) {
		rec := httptest.NewRecorder()
		vanahttp.HandleError(rec, catalog, vana.ErrGone)
		assert.Contains(t, rec.Body.String(), catalog.Lookup(vana.MsgGone))
	})
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	err := vanahttp.WriteJSON(rec, http.StatusOK, map[string]string{"k": "v"})

	assert.NoError(t, err)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"k":"v"}`, rec.Body.String())
}
