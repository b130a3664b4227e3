package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/vana"
)

// WriteText writes a plain-text response body.
func WriteText(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(message + "\n"))
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// HandleError maps a service error onto the fixed status taxonomy and a
// plain-text body looked up from the message catalog. Validation errors also
// carry their collected violations so callers see every problem at once.
func HandleError(w http.ResponseWriter, catalog *vana.MessageCatalog, err error) {
	switch {
	case errors.Is(err, vana.ErrUnauthenticated):
		WriteText(w, http.StatusUnauthorized, catalog.Lookup(vana.MsgIdentityMissing))

	case errors.Is(err, vana.ErrForbidden):
		WriteText(w, http.StatusForbidden, catalog.Lookup(vana.MsgForbidden))

	case errors.Is(err, vana.ErrReadOnly):
		WriteText(w, http.StatusForbidden, catalog.Lookup(vana.MsgReadOnly))

	case errors.Is(err, vana.ErrGone):
		WriteText(w, http.StatusGone, catalog.Lookup(vana.MsgGone))

	case errors.Is(err, vana.ErrNotFound):
		WriteText(w, http.StatusNotFound, catalog.Lookup(vana.MsgNotFound))

	case errors.Is(err, vana.ErrConflict):
		WriteText(w, http.StatusConflict, catalog.Lookup(vana.MsgConflict))

	case errors.Is(err, vana.ErrUnsupported):
		WriteText(w, http.StatusBadRequest, catalog.Lookup(vana.MsgUnsupported))

	case errors.Is(err, vana.ErrInvalidInput):
		WriteText(w, http.StatusBadRequest, catalog.Lookup(vana.MsgInvalidInput)+": "+err.Error())

	default:
		slog.Error("request failed", "err", err)
		WriteText(w, http.StatusInternalServerError, catalog.Lookup(vana.MsgInternal))
	}
}
