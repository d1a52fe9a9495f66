package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for file discovery:
// - Match include patterns anywhere in the tree and at the root
// - Skip ignore patterns including bare directory names
// - Never descend into the output directory or .git

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.ts", "export const x = 1;\n")
	writeFile(t, root, "src/api.ts", "export const y = 2;\n")
	writeFile(t, root, "src/notes.md", "# notes\n")
	writeFile(t, root, "node_modules/pkg/index.ts", "exports.z = 3;\n")
	writeFile(t, root, ".digest/src/api.ts.dg", "# src/api.ts\n")

	fd, err := NewFileDiscovery(root, ".digest",
		[]string{"**/*.ts"},
		[]string{"node_modules/**"},
	)
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.ts", "src/api.ts"}, files)
}

func TestDiscoverFiles_IgnoresNestedTestFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "api.ts", "export const a = 1;\n")
	writeFile(t, root, "api.spec.ts", "test();\n")
	writeFile(t, root, "pkg/users.ts", "export const u = 1;\n")
	writeFile(t, root, "pkg/users.spec.ts", "test();\n")
	writeFile(t, root, "pkg/deep/util_test.go", "package deep\n")

	fd, err := NewFileDiscovery(root, ".digest",
		[]string{"**/*.ts", "**/*.go"},
		[]string{"**/*.spec.ts", "*_test.go"},
	)
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"api.ts", "pkg/users.ts"}, files)
}

func TestDiscoverFiles_BadPattern(t *testing.T) {
	t.Parallel()

	_, err := NewFileDiscovery(t.TempDir(), ".digest", []string{"[unclosed"}, nil)
	assert.Error(t, err)
}
