package vana_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/vana"
)

func TestIsValidMD5Hex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase digest", "d41d8cd98f00b204e9800998ecf8427e", true},
		{"uppercase digest", "D41D8CD98F00B204E9800998ECF8427E", true},
		{"mixed case", "d41D8cd98F00b204E9800998ecf8427E", true},
		{"too short", "d41d8cd98f00b204e9800998ecf8427", false},
		{"too long", "d41d8cd98f00b204e9800998ecf8427e0", false},
		{"non-hex characters", "z41d8cd98f00b204e9800998ecf8427e", false},
		{"base64 form rejected", "1B2M2Y8AsgTpgAmY7PhCfg==", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vana.IsValidMD5Hex(tt.input))
		})
	}
}

func TestMD5HexToBase64(t *testing.T) {
	t.Run("re-encodes the empty-input digest", func(t *testing.T) {
		got, err := vana.MD5HexToBase64("d41d8cd98f00b204e9800998ecf8427e")
		require.NoError(t, err)
		assert.Equal(t, "1B2M2Y8AsgTpgAmY7PhCfg==", got)
	})

	t.Run("case-insensitive input", func(t *testing.T) {
		got, err := vana.MD5HexToBase64("D41D8CD98F00B204E9800998ECF8427E")
		require.NoError(t, err)
		assert.Equal(t, "1B2M2Y8AsgTpgAmY7PhCfg==", got)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := vana.MD5HexToBase64("not-a-digest")
		assert.ErrorIs(t, err, vana.ErrInvalidInput)
	})
}

func TestGenerateLocation(t *testing.T) {
	id := uuid.New()
	loc := vana.GenerateLocation(id)
	assert.Equal(t, id.String(), loc)

	other := vana.GenerateLocation(uuid.New())
	assert.NotEqual(t, loc, other, "locations are unique per id")
}

func TestDedupeUsers(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"preserves first-seen order", []string{"bob", "alice", "bob", "carol", "alice"}, []string{"bob", "alice", "carol"}},
		{"case-sensitive", []string{"Alice", "alice"}, []string{"Alice", "alice"}},
		{"no duplicates", []string{"alice", "bob"}, []string{"alice", "bob"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vana.DedupeUsers(tt.input))
		})
	}
}

func TestDiffUsers(t *testing.T) {
	tests := []struct {
		name       string
		current    []string
		desired    []string
		wantAdd    []string
		wantRemove []string
	}{
		{"add and remove", []string{"alice", "bob"}, []string{"bob", "carol"}, []string{"carol"}, []string{"alice"}},
		{"no change", []string{"alice"}, []string{"alice"}, nil, nil},
		{"clear all", []string{"alice", "bob"}, nil, nil, []string{"alice", "bob"}},
		{"from empty", nil, []string{"alice"}, []string{"alice"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := vana.DiffUsers(tt.current, tt.desired)
			assert.Equal(t, tt.wantAdd, d.Add)
			assert.Equal(t, tt.wantRemove, d.Remove)
			assert.Equal(t, len(d.Add) == 0 && len(d.Remove) == 0, d.Empty())
		})
	}
}
