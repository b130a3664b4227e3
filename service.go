package vana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the resolution and lifecycle engine. It loads metadata, checks
// permissions, mutates metadata transactionally and delegates byte-level
// operations to the Signer selected by an object's recorded storage platform.
//
// The service is stateless between requests; all durable state lives in the
// repos. Concurrent operations on different ids are fully independent, and
// operations on the same id are serialized by the underlying transactional
// row locks. Last writer to commit wins.
type Service struct {
	objects ObjectRepo
	groups  GroupRepo
	signers SignerSet
}

// NewService creates a Service over the given repos and configured backends.
func NewService(objects ObjectRepo, groups GroupRepo, signers SignerSet) (*Service, error) {
	if objects == nil {
		return nil, errors.New("new service: object repo is required")
	}
	if signers == nil {
		signers = SignerSet{}
	}
	if _, ok := signers[PlatformOpaqueURI]; ok {
		return nil, fmt.Errorf("new service: %q is a reserved platform name", PlatformOpaqueURI)
	}
	return &Service{objects: objects, groups: groups, signers: signers}, nil
}

func authenticate(user string) error {
	if user == "" {
		return ErrUnauthenticated
	}
	return nil
}

// violations collects validation failures so a malformed request reports
// every problem at once rather than just the first.
type violations []string

func (v *violations) addf(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v violations) err(op string) error {
	if len(v) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", op, strings.Join(v, "; "), ErrInvalidInput)
}

// Create validates the request, generates a fresh id and, for non-opaque
// non-forced platforms, a collision-free backend location derived from that
// id. On the forced-location path the backend existence probe must succeed
// before any row is written, otherwise the create is rejected with
// ErrConflict. The object row and its initial ACL rows are inserted in one
// transaction.
func (s *Service) Create(ctx context.Context, user string, in CreateObject) (Object, error) {
	if err := authenticate(user); err != nil {
		return Object{}, fmt.Errorf("create object: %w", err)
	}

	var v violations
	if in.Name == "" {
		v.addf("objectName is required")
	}
	if in.OwnerID == "" {
		v.addf("ownerId is required")
	}

	opaque := in.Platform == PlatformOpaqueURI
	switch {
	case in.Platform == "":
		v.addf("storagePlatform is required")
	case !opaque && !s.signers.Has(in.Platform):
		v.addf("unknown storagePlatform %q", in.Platform)
	}

	switch {
	case opaque && in.ForceLocation:
		v.addf("forceLocation has no meaning for opaque-URI objects")
	case opaque && in.DirectoryPath == "":
		v.addf("directoryPath is required for opaque-URI objects")
	case !opaque && in.ForceLocation && in.DirectoryPath == "":
		v.addf("directoryPath is required when forceLocation is set")
	case !opaque && !in.ForceLocation && in.DirectoryPath != "":
		v.addf("directoryPath may not be supplied; locations are generated")
	}

	if err := v.err("create object"); err != nil {
		return Object{}, err
	}

	id := uuid.New()
	location := GenerateLocation(id)

	switch {
	case opaque:
		location = in.DirectoryPath
	case in.ForceLocation:
		signer, err := s.signers.For(in.Platform)
		if err != nil {
			return Object{}, fmt.Errorf("create object: %w", err)
		}
		exists, err := signer.Exists(ctx, in.DirectoryPath)
		if err != nil {
			return Object{}, fmt.Errorf("create object: probe forced location: %w: %w", err, ErrInternal)
		}
		if !exists {
			return Object{}, fmt.Errorf("create object: forced location %q not present in backend: %w", in.DirectoryPath, ErrConflict)
		}
		location = in.DirectoryPath
	}

	size := in.SizeEstimateBytes
	if size <= 0 {
		size = SizeUnknown
	}

	now := time.Now().UTC()
	obj := Object{
		ID:                id,
		Name:              in.Name,
		OwnerID:           in.OwnerID,
		Platform:          in.Platform,
		Location:          location,
		SizeEstimateBytes: size,
		Active:            true,
		CreatedAt:         now,
		ModifiedAt:        now,
		Readers:           DedupeUsers(in.Readers),
		Writers:           DedupeUsers(in.Writers),
	}

	if err := s.objects.Insert(ctx, obj); err != nil {
		return Object{}, fmt.Errorf("create object: %w", err)
	}

	return redacted(obj), nil
}

// Describe returns an object's metadata to a caller with read permission.
// The backend location is redacted unless the object is an opaque-URI object,
// where the location is the caller's own URI.
func (s *Service) Describe(ctx context.Context, user string, id uuid.UUID) (Object, error) {
	if err := authenticate(user); err != nil {
		return Object{}, fmt.Errorf("describe object: %w", err)
	}

	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		return Object{}, fmt.Errorf("describe object: %w", err)
	}

	if !CanRead(obj, user) {
		return Object{}, fmt.Errorf("describe object: user %q may not read %s: %w", user, id, ErrForbidden)
	}

	return redacted(obj), nil
}

// Update applies owner and ACL changes to an object. Immutable fields are
// re-validated against the stored row first; any attempted change fails the
// whole update before a single row is written. ACL changes are computed as
// set differences and applied atomically with the owner change.
func (s *Service) Update(ctx context.Context, user string, id uuid.UUID, in UpdateObject) (Object, error) {
	if err := authenticate(user); err != nil {
		return Object{}, fmt.Errorf("update object: %w", err)
	}

	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		return Object{}, fmt.Errorf("update object: %w", err)
	}

	if !CanWrite(obj, user) {
		return Object{}, fmt.Errorf("update object: user %q may not write %s: %w", user, id, ErrForbidden)
	}

	var v violations
	if in.Name != "" && in.Name != obj.Name {
		v.addf("objectName is immutable")
	}
	if in.Platform != "" && in.Platform != obj.Platform {
		v.addf("storagePlatform is immutable")
	}
	if in.SizeEstimateBytes != nil && *in.SizeEstimateBytes != obj.SizeEstimateBytes {
		v.addf("sizeEstimateBytes is immutable")
	}
	if in.DirectoryPath != "" && in.DirectoryPath != obj.Location {
		v.addf("directoryPath is immutable")
	}
	if in.ForceLocation {
		v.addf("forceLocation is only valid at creation")
	}
	if err := v.err("update object"); err != nil {
		return Object{}, err
	}

	upd := ObjectUpdate{OwnerID: obj.OwnerID}
	if in.OwnerID != "" {
		upd.OwnerID = in.OwnerID
	}
	if in.Readers != nil {
		upd.Readers = DiffUsers(obj.Readers, DedupeUsers(in.Readers))
	}
	if in.Writers != nil {
		upd.Writers = DiffUsers(obj.Writers, DedupeUsers(in.Writers))
	}

	updated, err := s.objects.Update(ctx, id, upd)
	if err != nil {
		return Object{}, fmt.Errorf("update object: %w", err)
	}

	return redacted(updated), nil
}

// Delete soft-deletes an object and removes its backend bytes. The metadata
// row is marked deleted first so the object logically disappears even if the
// backend call then fails; on backend failure the soft delete is compensated
// by a restore, so the caller observes all-or-nothing at the cost of one
// extra database round-trip. Opaque-URI objects carry caller-managed bytes
// and only the metadata is touched.
func (s *Service) Delete(ctx context.Context, user string, id uuid.UUID) error {
	if err := authenticate(user); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if !CanWrite(obj, user) {
		return fmt.Errorf("delete object: user %q may not write %s: %w", user, id, ErrForbidden)
	}

	var signer Signer
	if obj.Platform != PlatformOpaqueURI {
		signer, err = s.signers.For(obj.Platform)
		if err != nil {
			return fmt.Errorf("delete object: %w", err)
		}
		if signer.ReadOnly() {
			return fmt.Errorf("delete object: platform %q: %w", obj.Platform, ErrReadOnly)
		}
	}

	if err := s.objects.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if signer == nil {
		return nil
	}

	if delErr := signer.Delete(ctx, obj.Location); delErr != nil {
		if restoreErr := s.objects.Restore(ctx, id); restoreErr != nil {
			return fmt.Errorf("delete object: backend delete failed (%w) and restore failed: %w: %w", delErr, restoreErr, ErrInternal)
		}
		return fmt.Errorf("delete object: backend delete failed, metadata restored: %w: %w", delErr, ErrInternal)
	}

	return nil
}

// ResolveTransfer converts an object id into a time-bounded access URL for
// one HTTP verb. GET and HEAD require read permission, PUT requires write.
// An optional content MD5 is validated as 32 hex characters before any
// signing occurs and re-encoded to the backends' base64 representation.
// Opaque-URI objects short-circuit to their stored URI with no signing.
// The last-resolved timestamp is touched on success.
func (s *Service) ResolveTransfer(ctx context.Context, user string, id uuid.UUID, req ResolveRequest) (ResolveResult, error) {
	if err := authenticate(user); err != nil {
		return ResolveResult{}, fmt.Errorf("resolve object: %w", err)
	}

	var v violations
	switch req.HTTPMethod {
	case VerbGet, VerbPut, VerbHead:
	default:
		v.addf("httpMethod must be GET, PUT or HEAD")
	}
	if req.ValidityPeriodSeconds <= 0 {
		v.addf("validityPeriodSeconds must be positive")
	}

	var contentMD5 string
	if req.ContentMD5Hex != "" {
		b64, err := MD5HexToBase64(req.ContentMD5Hex)
		if err != nil {
			v.addf("contentMD5Hex must be 32 hex characters")
		}
		contentMD5 = b64
	}
	if err := v.err("resolve object"); err != nil {
		return ResolveResult{}, err
	}

	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("resolve object: %w", err)
	}

	if req.HTTPMethod == VerbPut {
		if !CanWrite(obj, user) {
			return ResolveResult{}, fmt.Errorf("resolve object: user %q may not write %s: %w", user, id, ErrForbidden)
		}
	} else if !CanRead(obj, user) {
		return ResolveResult{}, fmt.Errorf("resolve object: user %q may not read %s: %w", user, id, ErrForbidden)
	}

	expiry := time.Now().Add(time.Duration(req.ValidityPeriodSeconds) * time.Second)

	var objectURL string
	if obj.Platform == PlatformOpaqueURI {
		objectURL = obj.Location
	} else {
		signer, err := s.signers.For(obj.Platform)
		if err != nil {
			return ResolveResult{}, fmt.Errorf("resolve object: %w", err)
		}
		if req.HTTPMethod == VerbPut && signer.ReadOnly() {
			return ResolveResult{}, fmt.Errorf("resolve object: platform %q: %w", obj.Platform, ErrReadOnly)
		}
		objectURL, err = signer.Resolve(ctx, obj.Location, req.HTTPMethod, expiry, req.ContentType, contentMD5)
		if err != nil {
			return ResolveResult{}, fmt.Errorf("resolve object: %w: %w", err, ErrInternal)
		}
	}

	if err := s.objects.TouchResolved(ctx, id); err != nil {
		return ResolveResult{}, fmt.Errorf("resolve object: %w", err)
	}

	return ResolveResult{
		ObjectURL:             objectURL,
		ValidityPeriodSeconds: req.ValidityPeriodSeconds,
		ContentType:           req.ContentType,
		ContentMD5Hex:         req.ContentMD5Hex,
	}, nil
}

// ResolveCopy produces a signed URL that copies bytes from a source location
// reference into the object's backend key. Requires write permission. There
// is nothing to copy into for an opaque-URI object, and backends without a
// server-side copy surface the unsupported error distinctly.
func (s *Service) ResolveCopy(ctx context.Context, user string, id uuid.UUID, req CopyRequest) (ResolveResult, error) {
	if err := authenticate(user); err != nil {
		return ResolveResult{}, fmt.Errorf("resolve copy: %w", err)
	}

	var v violations
	if req.ValidityPeriodSeconds <= 0 {
		v.addf("validityPeriodSeconds must be positive")
	}
	if req.SourceLocationRef == "" {
		v.addf("sourceLocation is required")
	}
	if err := v.err("resolve copy"); err != nil {
		return ResolveResult{}, err
	}

	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("resolve copy: %w", err)
	}

	if !CanWrite(obj, user) {
		return ResolveResult{}, fmt.Errorf("resolve copy: user %q may not write %s: %w", user, id, ErrForbidden)
	}

	if obj.Platform == PlatformOpaqueURI {
		return ResolveResult{}, fmt.Errorf("resolve copy: opaque-URI objects have no backend to copy into: %w", ErrUnsupported)
	}

	signer, err := s.signers.For(obj.Platform)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("resolve copy: %w", err)
	}
	if signer.ReadOnly() {
		return ResolveResult{}, fmt.Errorf("resolve copy: platform %q: %w", obj.Platform, ErrReadOnly)
	}

	expiry := time.Now().Add(time.Duration(req.ValidityPeriodSeconds) * time.Second)
	objectURL, err := signer.Copy(ctx, obj.Location, req.SourceLocationRef, expiry)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return ResolveResult{}, fmt.Errorf("resolve copy: %w", err)
		}
		return ResolveResult{}, fmt.Errorf("resolve copy: %w: %w", err, ErrInternal)
	}

	return ResolveResult{
		ObjectURL:             objectURL,
		ValidityPeriodSeconds: req.ValidityPeriodSeconds,
	}, nil
}

// ResolveResumable initiates a backend resumable upload session for the
// object. Requires write permission; rejected for opaque-URI objects and
// read-only backends.
func (s *Service) ResolveResumable(ctx context.Context, user string, id uuid.UUID) (string, error) {
	if err := authenticate(user); err != nil {
		return "", fmt.Errorf("resolve resumable: %w", err)
	}

	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve resumable: %w", err)
	}

	if !CanWrite(obj, user) {
		return "", fmt.Errorf("resolve resumable: user %q may not write %s: %w", user, id, ErrForbidden)
	}

	if obj.Platform == PlatformOpaqueURI {
		return "", fmt.Errorf("resolve resumable: opaque-URI objects cannot host uploads: %w", ErrUnsupported)
	}

	signer, err := s.signers.For(obj.Platform)
	if err != nil {
		return "", fmt.Errorf("resolve resumable: %w", err)
	}
	if signer.ReadOnly() {
		return "", fmt.Errorf("resolve resumable: platform %q: %w", obj.Platform, ErrReadOnly)
	}

	sessionURL, err := signer.StartResumableUpload(ctx, obj.Location)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return "", fmt.Errorf("resolve resumable: %w", err)
		}
		return "", fmt.Errorf("resolve resumable: %w: %w", err, ErrInternal)
	}

	return sessionURL, nil
}

// ListByName returns the active objects with the given name that the caller
// may read, locations redacted.
func (s *Service) ListByName(ctx context.Context, user, name string) ([]Object, error) {
	if err := authenticate(user); err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	if name == "" {
		return nil, fmt.Errorf("list objects: name is required: %w", ErrInvalidInput)
	}

	objs, err := s.objects.ListByName(ctx, name, user)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	out := make([]Object, 0, len(objs))
	for _, obj := range objs {
		out = append(out, redacted(obj))
	}
	return out, nil
}

// redacted hides the backend location for non-opaque objects. Opaque-URI
// locations are the caller's own URIs and safe to re-expose.
func redacted(obj Object) Object {
	if obj.Platform != PlatformOpaqueURI {
		obj.Location = ""
	}
	return obj
}
