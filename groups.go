package vana

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Group operations: the auxiliary path sharing the owner/ACL shape of
// objects but with no storage platform mediation. Directory-kind groups
// carry a single physical directory location generated from the new id.

// CreateGroup validates and inserts a new group with its initial ACLs in one
// transaction.
func (s *Service) CreateGroup(ctx context.Context, user string, in CreateGroup) (Group, error) {
	if err := authenticate(user); err != nil {
		return Group{}, fmt.Errorf("create group: %w", err)
	}
	if s.groups == nil {
		return Group{}, fmt.Errorf("create group: group storage not configured: %w", ErrUnsupported)
	}

	var v violations
	if in.Name == "" {
		v.addf("groupName is required")
	}
	if in.OwnerID == "" {
		v.addf("ownerId is required")
	}
	switch in.Kind {
	case GroupKindRecord, GroupKindDirectory:
	case "":
		in.Kind = GroupKindRecord
	default:
		v.addf("unknown group kind %q", in.Kind)
	}
	if err := v.err("create group"); err != nil {
		return Group{}, err
	}

	id := uuid.New()
	now := time.Now().UTC()
	g := Group{
		ID:         id,
		Name:       in.Name,
		OwnerID:    in.OwnerID,
		Kind:       in.Kind,
		Active:     true,
		CreatedAt:  now,
		ModifiedAt: now,
		Readers:    DedupeUsers(in.Readers),
		Writers:    DedupeUsers(in.Writers),
	}
	if in.Kind == GroupKindDirectory {
		g.Directory = GenerateLocation(id) + "/"
	}

	if err := s.groups.Insert(ctx, g); err != nil {
		return Group{}, fmt.Errorf("create group: %w", err)
	}

	return g, nil
}

// DescribeGroup returns a group's metadata to a caller with read permission.
func (s *Service) DescribeGroup(ctx context.Context, user string, id uuid.UUID) (Group, error) {
	if err := authenticate(user); err != nil {
		return Group{}, fmt.Errorf("describe group: %w", err)
	}
	if s.groups == nil {
		return Group{}, fmt.Errorf("describe group: group storage not configured: %w", ErrUnsupported)
	}

	g, err := s.groups.Get(ctx, id)
	if err != nil {
		return Group{}, fmt.Errorf("describe group: %w", err)
	}

	if !CanReadGroup(g, user) {
		return Group{}, fmt.Errorf("describe group: user %q may not read %s: %w", user, id, ErrForbidden)
	}

	return g, nil
}

// UpdateGroup applies owner and ACL changes. Name and kind are immutable.
func (s *Service) UpdateGroup(ctx context.Context, user string, id uuid.UUID, in UpdateGroup) (Group, error) {
	if err := authenticate(user); err != nil {
		return Group{}, fmt.Errorf("update group: %w", err)
	}
	if s.groups == nil {
		return Group{}, fmt.Errorf("update group: group storage not configured: %w", ErrUnsupported)
	}

	g, err := s.groups.Get(ctx, id)
	if err != nil {
		return Group{}, fmt.Errorf("update group: %w", err)
	}

	if !CanWriteGroup(g, user) {
		return Group{}, fmt.Errorf("update group: user %q may not write %s: %w", user, id, ErrForbidden)
	}

	if in.Name != "" && in.Name != g.Name {
		return Group{}, fmt.Errorf("update group: groupName is immutable: %w", ErrInvalidInput)
	}

	upd := ObjectUpdate{OwnerID: g.OwnerID}
	if in.OwnerID != "" {
		upd.OwnerID = in.OwnerID
	}
	if in.Readers != nil {
		upd.Readers = DiffUsers(g.Readers, DedupeUsers(in.Readers))
	}
	if in.Writers != nil {
		upd.Writers = DiffUsers(g.Writers, DedupeUsers(in.Writers))
	}

	updated, err := s.groups.Update(ctx, id, upd)
	if err != nil {
		return Group{}, fmt.Errorf("update group: %w", err)
	}

	return updated, nil
}

// DeleteGroup soft-deletes a group. Groups own no backend bytes, so only the
// metadata is touched.
func (s *Service) DeleteGroup(ctx context.Context, user string, id uuid.UUID) error {
	if err := authenticate(user); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if s.groups == nil {
		return fmt.Errorf("delete group: group storage not configured: %w", ErrUnsupported)
	}

	g, err := s.groups.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	if !CanWriteGroup(g, user) {
		return fmt.Errorf("delete group: user %q may not write %s: %w", user, id, ErrForbidden)
	}

	if err := s.groups.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	return nil
}
