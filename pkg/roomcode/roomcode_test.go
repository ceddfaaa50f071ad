package roomcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g, err := New(DefaultLength, DefaultAlphabet)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		assert.Len(t, code, DefaultLength)
		assert.Equal(t, strings.ToUpper(code), code, "code must be uppercase")
		for _, c := range code {
			assert.True(t, strings.ContainsRune(DefaultAlphabet, c), "unexpected character %q", c)
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190, "codes should rarely collide")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(2, DefaultAlphabet)
	assert.Error(t, err)

	_, err = New(DefaultLength, "A")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC123", Normalize(" abc123 "))
}
