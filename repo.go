package vana

import (
	"context"

	"github.com/google/uuid"
)

// ACLDelta is the set-difference outcome of an ACL update: exactly the
// usernames to add and remove for one relation.
type ACLDelta struct {
	Add    []string
	Remove []string
}

// Empty reports whether the delta changes nothing.
func (d ACLDelta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// ObjectUpdate is the transactional unit an update applies: the new owner
// plus the reader/writer deltas. All parts commit or none do.
type ObjectUpdate struct {
	OwnerID string
	Readers ACLDelta
	Writers ACLDelta
}

// ObjectRepo is the persistent record of objects and their ACL relations.
//
// All writes for one logical operation are wrapped in a single transaction.
// Implementations must not remove rows on delete: soft delete sets the
// inactive flag and the deleted timestamp, keeping the id permanently
// unusable. Get on a soft-deleted row returns ErrGone; on a missing row,
// ErrNotFound.
type ObjectRepo interface {
	// Get loads an object together with its reader and writer relations.
	Get(ctx context.Context, id uuid.UUID) (Object, error)

	// Insert persists a new object row and its initial ACL rows atomically.
	Insert(ctx context.Context, obj Object) error

	// Update applies the owner change and ACL deltas atomically and returns
	// the committed state.
	Update(ctx context.Context, id uuid.UUID, upd ObjectUpdate) (Object, error)

	// SoftDelete marks an active object inactive and stamps the deletion
	// time. Returns ErrGone if already inactive, ErrNotFound if absent.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Restore reverses a SoftDelete performed earlier in the same logical
	// operation. It exists only as the compensation step for delete's
	// two-system failure model and must not resurrect externally deleted
	// objects.
	Restore(ctx context.Context, id uuid.UUID) error

	// TouchResolved stamps the last-resolved time.
	TouchResolved(ctx context.Context, id uuid.UUID) error

	// ListByName returns active objects with the given name that reader is
	// permitted to read.
	ListByName(ctx context.Context, name, reader string) ([]Object, error)
}

// GroupRepo is the persistent record of groups and their ACL relations.
// Same transactional and soft-delete rules as ObjectRepo.
type GroupRepo interface {
	Get(ctx context.Context, id uuid.UUID) (Group, error)
	Insert(ctx context.Context, g Group) error
	Update(ctx context.Context, id uuid.UUID, upd ObjectUpdate) (Group, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
