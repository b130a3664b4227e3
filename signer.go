package vana

import (
	"context"
	"fmt"
	"time"
)

// Signer is the per-storage-technology strategy for producing signed,
// time-bounded access URLs and for the small set of synchronous backend
// calls the engine needs (delete, existence probe).
//
// Implementations never see the metadata store; the engine selects a Signer
// by an object's recorded storage platform. Not every backend supports every
// operation: Copy and StartResumableUpload must fail with ErrUnsupported
// rather than silently degrading.
type Signer interface {
	// Resolve produces a URL valid until expiry that performs verb against
	// key. contentType and contentMD5 (standard base64 of the raw digest) may
	// be empty; when given they are bound into the signature so a mismatched
	// upload is rejected by the backend itself.
	Resolve(ctx context.Context, key, verb string, expiry time.Time, contentType, contentMD5 string) (string, error)

	// Copy produces a URL that, when PUT with no body and the backend's copy
	// source header, duplicates bytes from sourceRef into destKey.
	Copy(ctx context.Context, destKey, sourceRef string, expiry time.Time) (string, error)

	// Delete removes key synchronously. An already absent key is success.
	Delete(ctx context.Context, key string) error

	// Exists probes key with a zero-body HEAD-style request.
	Exists(ctx context.Context, key string) (bool, error)

	// StartResumableUpload initiates a backend-specific resumable upload
	// session for key and returns the session URL.
	StartResumableUpload(ctx context.Context, key string) (string, error)

	// ReadOnly reports whether the backend refuses mutating operations.
	ReadOnly() bool
}

// SignerSet holds the configured signers keyed by storage platform name.
// The set of keys defines the legal StoragePlatform values other than the
// reserved opaque-URI sentinel.
type SignerSet map[StoragePlatform]Signer

// For returns the signer recorded for platform.
func (s SignerSet) For(platform StoragePlatform) (Signer, error) {
	signer, ok := s[platform]
	if !ok {
		return nil, fmt.Errorf("no backend configured for platform %q: %w", platform, ErrInvalidInput)
	}
	return signer, nil
}

// Has reports whether platform is a configured backend name.
func (s SignerSet) Has(platform StoragePlatform) bool {
	_, ok := s[platform]
	return ok
}
