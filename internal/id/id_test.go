package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("req")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "req-"))
	assert.Len(t, id, len("req-")+21)
}

func TestRequestID_Alphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := RequestID()
		require.NoError(t, err)
		require.Len(t, id, 16)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(requestAlphabet, r), "unexpected rune %q in %s", r, id)
		}
	}
}

func TestRequestID_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := MustRequestID()
		assert.False(t, seen[id], "duplicate ID: %s", id)
		seen[id] = true
	}
}
