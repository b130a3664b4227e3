package vana

import "errors"

var (
	// ErrUnauthenticated is returned when no caller identity was supplied.
	ErrUnauthenticated = errors.New("caller identity missing")
	// ErrForbidden is returned when the caller lacks permission for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when no record exists for the given id.
	ErrNotFound = errors.New("not found")
	// ErrGone is returned when the record exists but has been soft-deleted.
	ErrGone = errors.New("gone")
	// ErrConflict is returned when a forced location does not already exist in the backend.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is returned when request validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported is returned when a backend cannot perform the requested operation.
	ErrUnsupported = errors.New("operation not supported by backend")
	// ErrReadOnly is returned when a mutating operation targets a read-only backend.
	ErrReadOnly = errors.New("backend is read-only")
	// ErrInternal is returned when a backend or transport failure occurs.
	ErrInternal = errors.New("internal error")
)
