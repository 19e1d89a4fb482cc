package invoices

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		ref, err := NewReference()
		require.NoError(t, err)
		assert.Len(t, ref, referenceLength)
		for _, c := range ref {
			assert.True(t, strings.ContainsRune(referenceAlphabet, c), "unexpected character %q in %s", c, ref)
		}
		seen[ref] = true
	}

	// With a 29^6 space, 100 draws colliding down to a handful would mean
	// the generator is broken.
	assert.Greater(t, len(seen), 90)
}
