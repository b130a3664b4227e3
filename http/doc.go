// Package http provides the HTTP API for the Vana object registry.
//
// The package exposes a RESTful surface over the registry service: object
// create/describe/update/delete, name listing, and the three resolve
// operations (transfer, copy, resumable upload), plus the auxiliary group
// resource.
//
// # Identity
//
// Callers are identified by the REMOTE_USER header, set by a trusted reverse
// proxy in front of the server. IdentityMiddleware copies the header into the
// request context; the service layer rejects requests with no identity.
//
// # Errors
//
// Error responses are plain text, one line, drawn from a message catalog so
// deployments can override the wording without rebuilding:
//
//   - 400 malformed input or unsupported operation
//   - 401 missing identity
//   - 403 permission denied or read-only backend
//   - 404 unknown object
//   - 409 forced-location conflict
//   - 410 deleted object
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{Catalog: catalog, Ping: repos.Ping}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":8080", handler.Router())
//
// The service parameter must implement the Service interface.
package http
