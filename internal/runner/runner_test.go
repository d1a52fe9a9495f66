package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-digest/internal/config"
)

// Test Plan for the run pipeline:
// - Generate writes one document per source file with cross-references
// - A second run skips existing documents unless forced
// - Parse failures are tallied as errors without failing the run
// - Validate passes on fresh documents and flags staleness after edits

const apiSource = `// @digest
// purpose: user lookup API

export function fetchUser(id: string): string {
  return id;
}
`

const usersSource = `import { fetchUser } from "./api";

export function useUsers(): string {
  return fetchUser("1");
}
`

func setupProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/api.ts", apiSource)
	writeFile(t, root, "src/users.ts", usersSource)

	cfg, err := config.LoadConfigFromDir(root)
	require.NoError(t, err)
	return root, cfg
}

func TestGenerate_WritesDocuments(t *testing.T) {
	t.Parallel()

	root, cfg := setupProject(t)
	r := New(root, cfg)

	stats, err := r.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
	assert.NotEmpty(t, stats.RunID)

	apiDoc, err := os.ReadFile(filepath.Join(root, ".digest", "src", "api.ts.dg"))
	require.NoError(t, err)
	assert.Contains(t, string(apiDoc), "purpose: user lookup API")
	assert.Contains(t, string(apiDoc), "- fetchUser [fn]")
	assert.Contains(t, string(apiDoc), "imported-by:\n- src/users.ts")
	assert.Contains(t, string(apiDoc), "- src/users.ts#useUsers")

	usersDoc, err := os.ReadFile(filepath.Join(root, ".digest", "src", "users.ts.dg"))
	require.NoError(t, err)
	assert.Contains(t, string(usersDoc), "- ./api -> src/api.ts")
	assert.Contains(t, string(usersDoc), "- fetchUser -> src/api.ts#fetchUser (from useUsers)")
	assert.Contains(t, string(usersDoc), "- useUsers [hook]")
}

func TestGenerate_SkipsExistingUnlessForced(t *testing.T) {
	t.Parallel()

	root, cfg := setupProject(t)

	_, err := New(root, cfg).Generate(context.Background())
	require.NoError(t, err)

	stats, err := New(root, cfg).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 2, stats.Skipped)

	stats, err = New(root, cfg, WithForce(true)).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	root, cfg := setupProject(t)

	_, err := New(root, cfg).Generate(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(root, ".digest", "src", "users.ts.dg"))
	require.NoError(t, err)

	_, err = New(root, cfg, WithForce(true)).Generate(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(root, ".digest", "src", "users.ts.dg"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidate_FreshThenStale(t *testing.T) {
	t.Parallel()

	root, cfg := setupProject(t)

	_, err := New(root, cfg).Generate(context.Background())
	require.NoError(t, err)

	stats, results, err := New(root, cfg).Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	for _, res := range results {
		assert.True(t, res.Ok(true), "fresh document %s should validate clean: %v", res.File, res.Errors)
	}

	// Rename the exported function: fingerprint and definition set drift.
	writeFile(t, root, "src/api.ts", `export function fetchAccount(id: string): string {
  return id;
}
`)

	stats, results, err = New(root, cfg).Validate(context.Background())
	require.NoError(t, err)
	assert.Greater(t, stats.Errors, 0)

	stale := false
	for _, res := range results {
		if res.File == "src/api.ts" && !res.Ok(false) {
			stale = true
		}
	}
	assert.True(t, stale, "edited file should fail validation")
}

func TestGenerate_ContextCancelled(t *testing.T) {
	t.Parallel()

	root, cfg := setupProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(root, cfg).Generate(ctx)
	assert.Error(t, err)
}
