package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for annotation parsing:
// - Locate @digest blocks in line comments, block comments, and # comments
// - Record block line spans for adjacency attachment
// - Pin a block to a definition via @digest Name
// - Parse field headers, bullets, inline semicolon items, and ! criticals
// - Normalize field names (case, underscores, singular forms)
// - Keep unknown fields verbatim with a diagnostic
// - Continue bare lines onto the previous item

func TestParse_LineCommentBlock(t *testing.T) {
	t.Parallel()

	source := []byte(`// @digest
// purpose: user session cache
// invariants:
// - sessions expire after an hour
// - ! never store plaintext tokens

func x() {}
`)
	blocks, diags := Parse(source, "go")
	require.Len(t, blocks, 1)
	assert.Empty(t, diags)

	b := blocks[0]
	assert.Equal(t, "", b.Scope)
	assert.Equal(t, 1, b.Line)
	assert.Equal(t, 5, b.EndLine)

	require.Len(t, b.Fields, 2)
	assert.Equal(t, "purpose", b.Fields[0].Name)
	require.Len(t, b.Fields[0].Items, 1)
	assert.Equal(t, "user session cache", b.Fields[0].Items[0].Text)

	inv := b.Fields[1]
	assert.Equal(t, "invariants", inv.Name)
	require.Len(t, inv.Items, 2)
	assert.False(t, inv.Items[0].Critical)
	assert.True(t, inv.Items[1].Critical)
	assert.Equal(t, "never store plaintext tokens", inv.Items[1].Text)
}

func TestParse_BlockComment(t *testing.T) {
	t.Parallel()

	source := []byte(`/**
 * @digest
 * purpose: renders the login form
 * gotchas: autofocus fights with modals
 */
export function LoginForm() {}
`)
	blocks, _ := Parse(source, "typescript")
	require.Len(t, blocks, 1)
	assert.Equal(t, 2, blocks[0].Line)
	assert.Equal(t, 5, blocks[0].EndLine)
	require.Len(t, blocks[0].Fields, 2)
	assert.Equal(t, "gotchas", blocks[0].Fields[1].Name)
}

func TestParse_HashComments(t *testing.T) {
	t.Parallel()

	source := []byte(`# @digest
# purpose: nightly batch entry point
# do-not: run twice for the same date

def main():
    pass
`)
	blocks, _ := Parse(source, "python")
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].EndLine)
	require.Len(t, blocks[0].Fields, 2)
	assert.Equal(t, "do-not", blocks[0].Fields[1].Name)
	assert.Equal(t, "run twice for the same date", blocks[0].Fields[1].Items[0].Text)
}

func TestParse_ExplicitScope(t *testing.T) {
	t.Parallel()

	source := []byte(`// @digest refresh
// when-editing: debounce stays at 200ms
`)
	blocks, _ := Parse(source, "typescript")
	require.Len(t, blocks, 1)
	assert.Equal(t, "refresh", blocks[0].Scope)
}

func TestParse_InlineSemicolonItems(t *testing.T) {
	t.Parallel()

	source := []byte(`# @digest
# constraints: max 3 retries; backoff doubles; ! never retry writes
`)
	blocks, _ := Parse(source, "ruby")
	require.Len(t, blocks, 1)
	items := blocks[0].Fields[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, "max 3 retries", items[0].Text)
	assert.Equal(t, "backoff doubles", items[1].Text)
	assert.True(t, items[2].Critical)
}

func TestParse_UnknownFieldKeptWithDiagnostic(t *testing.T) {
	t.Parallel()

	source := []byte(`// @digest
// deployment: requires the feature flag
`)
	blocks, diags := Parse(source, "go")
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Fields, 1)
	assert.Equal(t, "deployment", blocks[0].Fields[0].Name)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "deployment")
}

func TestParse_ContinuationLines(t *testing.T) {
	t.Parallel()

	source := []byte(`// @digest
// flows:
// - request comes in, gets validated
//   and queued for the worker pool
`)
	blocks, _ := Parse(source, "go")
	require.Len(t, blocks, 1)
	items := blocks[0].Fields[0].Items
	require.Len(t, items, 1)
	assert.Equal(t, "request comes in, gets validated and queued for the worker pool", items[0].Text)
}

func TestParse_NoMarkerNoBlocks(t *testing.T) {
	t.Parallel()

	source := []byte("// plain comment\n// purpose: not an annotation\nfunc y() {}\n")
	blocks, diags := Parse(source, "go")
	assert.Empty(t, blocks)
	assert.Empty(t, diags)
}

func TestNormalizeFieldName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "invariants", NormalizeFieldName("Invariant"))
	assert.Equal(t, "when-editing", NormalizeFieldName("when_editing"))
	assert.Equal(t, "common-mistakes", NormalizeFieldName("Common Mistake"))
	assert.Equal(t, "gotchas", NormalizeFieldName("gotcha"))
}
