package vana

import (
	"time"

	"github.com/google/uuid"
)

// StoragePlatform names the storage technology an object's bytes live in.
// The legal values are the backend names configured at startup, plus the
// reserved PlatformOpaqueURI sentinel for caller-managed storage.
type StoragePlatform string

// PlatformOpaqueURI marks objects whose location is a caller-supplied URI
// that is never interpreted or signed by any backend.
const PlatformOpaqueURI StoragePlatform = "opaqueURI"

// SizeUnknown is the sentinel size estimate for objects of unknown size.
const SizeUnknown int64 = -1

// HTTP verbs accepted by resolve operations.
const (
	VerbGet  = "GET"
	VerbPut  = "PUT"
	VerbHead = "HEAD"
)

// Object is the central entity: one logical unit of managed data plus its
// metadata and access control lists.
//
// Name, Platform, Location and SizeEstimateBytes are immutable after create.
// OwnerID and the two ACL relations are the only mutable fields. Location is
// generated by the engine for non-opaque platforms and never exposed to
// callers; for opaque-URI objects it is the caller's own URI.
type Object struct {
	ID                uuid.UUID
	Name              string
	OwnerID           string
	Platform          StoragePlatform
	Location          string
	SizeEstimateBytes int64
	Active            bool
	CreatedAt         time.Time
	ModifiedAt        time.Time
	ResolvedAt        *time.Time
	DeletedAt         *time.Time
	Readers           []string
	Writers           []string
}

// GroupKind distinguishes the two group variants.
type GroupKind string

const (
	// GroupKindRecord is a plain database-row group with no physical location.
	GroupKindRecord GroupKind = "record"
	// GroupKindDirectory is a group backed by a single physical directory.
	GroupKindDirectory GroupKind = "directory"
)

// Group is the simplified object variant used by the auxiliary group path.
// It shares the owner/ACL shape but has no storage platform mediation.
type Group struct {
	ID         uuid.UUID
	Name       string
	OwnerID    string
	Kind       GroupKind
	Directory  string
	Active     bool
	CreatedAt  time.Time
	ModifiedAt time.Time
	DeletedAt  *time.Time
	Readers    []string
	Writers    []string
}

// CreateObject carries caller input for object creation.
// DirectoryPath is only legal for opaque-URI objects (the stored URI) or
// together with ForceLocation (a pre-existing backend key).
type CreateObject struct {
	Name              string
	OwnerID           string
	Platform          StoragePlatform
	SizeEstimateBytes int64
	Readers           []string
	Writers           []string
	DirectoryPath     string
	ForceLocation     bool
}

// UpdateObject carries caller input for object updates. Immutable fields are
// present so that attempted changes can be detected and rejected; a zero
// value means "not supplied".
type UpdateObject struct {
	Name              string
	OwnerID           string
	Platform          StoragePlatform
	SizeEstimateBytes *int64
	Readers           []string
	Writers           []string
	DirectoryPath     string
	ForceLocation     bool
}

// CreateGroup carries caller input for group creation.
type CreateGroup struct {
	Name    string
	OwnerID string
	Kind    GroupKind
	Readers []string
	Writers []string
}

// UpdateGroup carries caller input for group updates.
type UpdateGroup struct {
	Name    string
	OwnerID string
	Readers []string
	Writers []string
}

// ResolveRequest carries caller input for resolve-for-transfer.
type ResolveRequest struct {
	ValidityPeriodSeconds int
	HTTPMethod            string
	ContentType           string
	ContentMD5Hex         string
}

// ResolveResult is the outcome of a successful resolve: the signed URL plus
// an echo of the validity window and content constraints bound into it.
type ResolveResult struct {
	ObjectURL             string
	ValidityPeriodSeconds int
	ContentType           string
	ContentMD5Hex         string
}

// CopyRequest carries caller input for resolve-for-copy. SourceLocationRef is
// the backend-specific "copy source" reference the destination backend will
// pull bytes from.
type CopyRequest struct {
	ValidityPeriodSeconds int
	SourceLocationRef     string
}
