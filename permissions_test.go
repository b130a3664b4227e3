package vana_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/vana"
)

func TestPermissions(t *testing.T) {
	obj := vana.Object{
		OwnerID: "alice",
		Readers: []string{"bob"},
		Writers: []string{"carol"},
	}

	t.Run("read follows the reader relation", func(t *testing.T) {
		assert.True(t, vana.CanRead(obj, "bob"))
		assert.False(t, vana.CanRead(obj, "carol"))
	})

	t.Run("write follows the writer relation", func(t *testing.T) {
		assert.True(t, vana.CanWrite(obj, "carol"))
		assert.False(t, vana.CanWrite(obj, "bob"))
	})

	t.Run("ownership grants nothing by itself", func(t *testing.T) {
		assert.False(t, vana.CanRead(obj, "alice"))
		assert.False(t, vana.CanWrite(obj, "alice"))
	})

	t.Run("groups mirror objects", func(t *testing.T) {
		g := vana.Group{Readers: []string{"bob"}, Writers: []string{"carol"}}
		assert.True(t, vana.CanReadGroup(g, "bob"))
		assert.False(t, vana.CanWriteGroup(g, "bob"))
		assert.True(t, vana.CanWriteGroup(g, "carol"))
	})
}
