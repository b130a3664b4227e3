package vana

import "slices"

// CanRead reports whether user is a member of the object's reader relation.
// There is no implicit owner bypass: the engine enforces list membership.
func CanRead(obj Object, user string) bool {
	return slices.Contains(obj.Readers, user)
}

// CanWrite reports whether user is a member of the object's writer relation.
func CanWrite(obj Object, user string) bool {
	return slices.Contains(obj.Writers, user)
}

// CanReadGroup reports whether user may read the group.
func CanReadGroup(g Group, user string) bool {
	return slices.Contains(g.Readers, user)
}

// CanWriteGroup reports whether user may write the group.
func CanWriteGroup(g Group, user string) bool {
	return slices.Contains(g.Writers, user)
}
