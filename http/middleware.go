package http

import (
	"context"
	"net/http"
)

// IdentityHeader carries the caller's principal name. The service trusts the
// fronting proxy to have authenticated it.
const IdentityHeader = "REMOTE_USER"

type callerKey struct{}

// CallerFromContext returns the caller identity set by IdentityMiddleware,
// or the empty string when none was supplied.
func CallerFromContext(ctx context.Context) string {
	user, _ := ctx.Value(callerKey{}).(string)
	return user
}

// IdentityMiddleware extracts the caller identity header into the request
// context. A missing header is not rejected here: the service distinguishes
// unauthenticated from unauthorized per operation.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(IdentityHeader)
		ctx := context.WithValue(r.Context(), callerKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
