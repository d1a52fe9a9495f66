package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the atomic writer:
// - Documents mirror the source tree under the output directory
// - Write then Read round-trips
// - Exists reflects written documents
// - No temp leftovers in the final location

func TestAtomicWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), ".digest")
	w, err := NewAtomicWriter(out)
	require.NoError(t, err)

	assert.False(t, w.Exists("src/api.ts"))

	doc := []byte("# src/api.ts\nlanguage: typescript\n")
	require.NoError(t, w.Write("src/api.ts", doc))

	assert.True(t, w.Exists("src/api.ts"))
	assert.Equal(t, filepath.Join(out, "src", "api.ts.dg"), w.DocPath("src/api.ts"))

	got, err := w.Read("src/api.ts")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	w.Cleanup()
	_, err = os.Stat(filepath.Join(out, ".tmp"))
	assert.True(t, os.IsNotExist(err))
}
