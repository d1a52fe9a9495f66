package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Rust extractor:
// - Classify structs, consts, free functions, and impl methods
// - Derive visibility from the pub modifier
// - Flatten grouped use declarations into imports
// - Mark pub use as re-exports
// - Resolve calls through use bindings

func TestRustExtractor_Definitions(t *testing.T) {
	t.Parallel()

	e := NewRustExtractor()
	ext, err := e.Extract(context.Background(), "src/engine.rs", loadFixture(t, "rust/engine.rs"))
	require.NoError(t, err)

	assert.Equal(t, "rust", ext.Language)

	limit := ext.Definition("LIMIT")
	require.NotNil(t, limit)
	assert.Equal(t, KindConst, limit.Kind)
	assert.Equal(t, Exported, limit.Visibility)
	assert.Equal(t, "usize", limit.Signature)

	engine := ext.Definition("Engine")
	require.NotNil(t, engine)
	assert.Equal(t, KindClass, engine.Kind)
	assert.Equal(t, Exported, engine.Visibility)

	enqueue := ext.Definition("Engine::enqueue")
	require.NotNil(t, enqueue)
	assert.Equal(t, KindFunction, enqueue.Kind)
	assert.Equal(t, Exported, enqueue.Visibility)

	drain := ext.Definition("Engine::drain")
	require.NotNil(t, drain)
	assert.Equal(t, Internal, drain.Visibility)

	run := ext.Definition("run")
	require.NotNil(t, run)
	assert.Equal(t, Exported, run.Visibility)
}

func TestRustExtractor_UseDeclarations(t *testing.T) {
	t.Parallel()

	e := NewRustExtractor()
	ext, err := e.Extract(context.Background(), "src/engine.rs", loadFixture(t, "rust/engine.rs"))
	require.NoError(t, err)

	require.Len(t, ext.Imports, 2)
	assert.Equal(t, "crate::store", ext.Imports[0].Specifier)
	assert.Equal(t, []string{"save", "Record"}, ext.Imports[0].Names)
	assert.Equal(t, "std::collections", ext.Imports[1].Specifier)
	assert.Equal(t, []string{"HashMap"}, ext.Imports[1].Names)
}

func TestRustExtractor_Calls(t *testing.T) {
	t.Parallel()

	e := NewRustExtractor()
	ext, err := e.Extract(context.Background(), "src/engine.rs", loadFixture(t, "rust/engine.rs"))
	require.NoError(t, err)

	require.Len(t, ext.Calls, 1)
	assert.Equal(t, "save", ext.Calls[0].Root)
	assert.Equal(t, "Engine::enqueue", ext.Calls[0].FromDefinition)
}

func TestRustExtractor_PubUseReExport(t *testing.T) {
	t.Parallel()

	source := []byte("pub use crate::store::Record;\nuse crate::queue::push;\n")
	e := NewRustExtractor()
	ext, err := e.Extract(context.Background(), "src/lib.rs", source)
	require.NoError(t, err)

	require.Len(t, ext.Imports, 2)
	assert.True(t, ext.Imports[0].ReExport)
	assert.Equal(t, "crate::store", ext.Imports[0].Specifier)
	assert.False(t, ext.Imports[1].ReExport)
}
