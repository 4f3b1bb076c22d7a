package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	id, err := Generate("token")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "token-"))
	// prefix + dash + 21-char nanoid
	assert.Len(t, id, len("token-")+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := Generate("token")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate("session")
		assert.True(t, strings.HasPrefix(id, "session-"))
	})
}
