package vana

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"

	"github.com/google/uuid"
)

var md5HexRegex = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// IsValidMD5Hex reports whether s is exactly 32 hexadecimal characters,
// the textual form of an MD5 digest.
func IsValidMD5Hex(s string) bool {
	return md5HexRegex.MatchString(s)
}

// MD5HexToBase64 re-encodes a 32-character hex MD5 digest to the standard
// base64 representation backends expect in Content-MD5 semantics.
func MD5HexToBase64(md5Hex string) (string, error) {
	if !IsValidMD5Hex(md5Hex) {
		return "", fmt.Errorf("contentMD5Hex must be 32 hex characters: %w", ErrInvalidInput)
	}
	raw, err := hex.DecodeString(md5Hex)
	if err != nil {
		return "", fmt.Errorf("contentMD5Hex must be 32 hex characters: %w", ErrInvalidInput)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// GenerateLocation derives the backend key for a freshly created object from
// its new id. Callers can never choose or guess backend keys.
func GenerateLocation(id uuid.UUID) string {
	return id.String()
}

// DedupeUsers removes duplicate usernames, preserving first-seen order.
// Usernames are case-sensitive.
func DedupeUsers(users []string) []string {
	if len(users) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// DiffUsers computes the set-difference delta from current to desired:
// desired−current to add, current−desired to remove.
func DiffUsers(current, desired []string) ACLDelta {
	var d ACLDelta
	for _, u := range desired {
		if !slices.Contains(current, u) {
			d.Add = append(d.Add, u)
		}
	}
	for _, u := range current {
		if !slices.Contains(desired, u) {
			d.Remove = append(d.Remove, u)
		}
	}
	return d
}
