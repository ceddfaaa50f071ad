package omitnilpointers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOmitNilPointers(t *testing.T) {
	name := "Brave Otter"
	var ping *int64

	got := OmitNilPointers(map[string]any{
		"name":  &name,
		"ping":  ping,
		"raw":   3,
		"empty": nil,
	})

	assert.Equal(t, map[string]any{"name": "Brave Otter", "raw": 3}, got)
}
