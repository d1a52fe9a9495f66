package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-digest/internal/annotate"
	"github.com/mvp-joe/project-digest/internal/digest"
	"github.com/mvp-joe/project-digest/internal/extract"
)

// Test Plan for validation:
// - A document re-rendered from an equal summary validates clean
// - Fingerprint drift is an error
// - Added, removed, or reclassified definitions are errors
// - A persisted annotation item missing from source is an error
// - Token overruns warn below the hard limit, error above it
// - Strict mode fails on warnings

var thresholds = digest.Thresholds{Target: 250, Warn: 500, Error: 1000}

func freshSummary() *digest.FileSummary {
	ext := &extract.Extraction{
		FilePath: "src/users.ts",
		Language: "typescript",
		Definitions: []extract.Definition{
			{Name: "useUsers", Kind: extract.KindHook, Visibility: extract.Exported, StartLine: 5, EndLine: 9},
		},
	}
	blocks := []annotate.Block{
		{Line: 1, EndLine: 3, Fields: []annotate.Field{
			{Name: "purpose", Items: []annotate.Item{{Text: "user state"}}},
			{Name: "when-editing", Items: []annotate.Item{{Text: "run the users suite"}}},
		}},
	}
	s := digest.Merge(ext, blocks, nil)
	s.TokenCount = digest.EstimateTokens(digest.Render(s))
	s.Tier = digest.ClassifyTier(s.TokenCount, thresholds)
	return s
}

func TestFile_CleanWhenUnchanged(t *testing.T) {
	t.Parallel()

	s := freshSummary()
	persisted := digest.Render(s)

	res := File(persisted, freshSummary(), thresholds)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.Ok(true))
}

func TestFile_FingerprintDrift(t *testing.T) {
	t.Parallel()

	persisted := digest.Render(freshSummary())

	changed := freshSummary()
	changed.Fingerprint++

	res := File(persisted, changed, thresholds)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "fingerprint")
}

func TestFile_DefinitionSetDrift(t *testing.T) {
	t.Parallel()

	persisted := digest.Render(freshSummary())

	changed := freshSummary()
	changed.Definitions = append(changed.Definitions, digest.DefinitionSummary{
		Definition: extract.Definition{Name: "refresh", Kind: extract.KindFunction},
	})
	changed.Fingerprint = freshSummary().Fingerprint

	res := File(persisted, changed, thresholds)
	assert.Contains(t, res.Errors, `stale: definition "refresh" missing from document`)
}

func TestFile_KindReclassification(t *testing.T) {
	t.Parallel()

	persisted := digest.Render(freshSummary())

	changed := freshSummary()
	changed.Definitions[0].Kind = extract.KindFunction

	res := File(persisted, changed, thresholds)
	require.NotEmpty(t, res.Errors)
}

func TestFile_AnnotationRemoved(t *testing.T) {
	t.Parallel()

	persisted := digest.Render(freshSummary())

	changed := freshSummary()
	changed.FileFields = nil

	res := File(persisted, changed, thresholds)
	assert.Contains(t, res.Errors, `stale: annotation "run the users suite" no longer in source`)
}

func TestFile_TokenThresholds(t *testing.T) {
	t.Parallel()

	s := freshSummary()
	persisted := digest.Render(s)

	warned := freshSummary()
	warned.TokenCount = 600
	res := File(persisted, warned, thresholds)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.True(t, res.Ok(false))
	assert.False(t, res.Ok(true), "strict mode fails on warnings")

	errored := freshSummary()
	errored.TokenCount = 1200
	res = File(persisted, errored, thresholds)
	require.NotEmpty(t, res.Errors)
}

func TestFile_UnreadableDocument(t *testing.T) {
	t.Parallel()

	res := File([]byte("garbage"), freshSummary(), thresholds)
	require.NotEmpty(t, res.Errors)
	assert.False(t, res.Ok(false))
}
