package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-digest/internal/digest"
	"github.com/mvp-joe/project-digest/internal/extract"
)

// Test Plan for the project index:
// - Resolve relative imports with extension and index-file inference
// - Resolve calls through the importing file's bindings to a definition
// - Populate ImportedBy and CalledBy reverse edges, sorted and deduplicated
// - Count re-exporting files as importers of the origin
// - Leave external and unknown specifiers unresolved
// - Survive import cycles
// - Drop edges cleanly when a file disappears between runs
// - Resolve Ruby constant calls through required files

func summary(filePath, language string, defs []extract.Definition, imports []extract.Import, calls []extract.Call) *digest.FileSummary {
	ext := &extract.Extraction{
		FilePath:    filePath,
		Language:    language,
		Definitions: defs,
		Imports:     imports,
		Calls:       calls,
	}
	return digest.Merge(ext, nil, nil)
}

func buildResolved(t *testing.T, summaries ...*digest.FileSummary) *Index {
	t.Helper()
	idx := Build(summaries, []string{"src"})
	require.NoError(t, idx.Resolve())
	return idx
}

func TestIndex_ImportAndCallResolution(t *testing.T) {
	t.Parallel()

	a := summary("src/a.ts", "typescript",
		[]extract.Definition{{Name: "main", Kind: extract.KindFunction, StartLine: 3, EndLine: 6}},
		[]extract.Import{{Specifier: "./b", Names: []string{"* as b"}}},
		[]extract.Call{{Expression: "b.run", Root: "b", Method: "run", FromDefinition: "main"}},
	)
	b := summary("src/b.ts", "typescript",
		[]extract.Definition{{Name: "run", Kind: extract.KindFunction, Visibility: extract.Exported, StartLine: 1, EndLine: 3}},
		nil, nil,
	)

	idx := buildResolved(t, a, b)

	require.Equal(t, "src/b.ts", a.Imports[0].Target)
	require.Equal(t, "src/b.ts", a.Calls[0].TargetFile)
	assert.Equal(t, "run", a.Calls[0].TargetDefinition)

	assert.Equal(t, []string{"src/a.ts"}, b.ImportedBy)
	require.Len(t, b.CalledBy, 1)
	assert.Equal(t, digest.Caller{File: "src/a.ts", Definition: "main"}, b.CalledBy[0])
	_ = idx
}

func TestIndex_IndexFileFallback(t *testing.T) {
	t.Parallel()

	a := summary("src/a.ts", "typescript", nil,
		[]extract.Import{{Specifier: "./widgets"}}, nil)
	w := summary("src/widgets/index.ts", "typescript", nil, nil, nil)

	buildResolved(t, a, w)
	assert.Equal(t, "src/widgets/index.ts", a.Imports[0].Target)
}

func TestIndex_ExternalStaysUnresolved(t *testing.T) {
	t.Parallel()

	a := summary("src/a.ts", "typescript", nil,
		[]extract.Import{{Specifier: "react", Names: []string{"useState"}}}, nil)

	buildResolved(t, a)
	assert.Empty(t, a.Imports[0].Target)
	assert.Empty(t, a.ImportedBy)
}

func TestIndex_ReExportCountsAsImporter(t *testing.T) {
	t.Parallel()

	origin := summary("src/api.ts", "typescript",
		[]extract.Definition{{Name: "fetchUser", Kind: extract.KindFunction, Visibility: extract.Exported, StartLine: 1, EndLine: 2}},
		nil, nil)
	barrel := summary("src/index.ts", "typescript", nil,
		[]extract.Import{{Specifier: "./api", Names: []string{"fetchUser"}, ReExport: true}}, nil)

	buildResolved(t, origin, barrel)

	assert.Equal(t, "src/api.ts", barrel.Imports[0].Target)
	assert.Equal(t, []string{"src/index.ts"}, origin.ImportedBy)
}

func TestIndex_CycleSafe(t *testing.T) {
	t.Parallel()

	a := summary("src/a.ts", "typescript", nil,
		[]extract.Import{{Specifier: "./b", Names: []string{"x"}}}, nil)
	b := summary("src/b.ts", "typescript", nil,
		[]extract.Import{{Specifier: "./a", Names: []string{"y"}}}, nil)

	buildResolved(t, a, b)
	assert.Equal(t, []string{"src/b.ts"}, a.ImportedBy)
	assert.Equal(t, []string{"src/a.ts"}, b.ImportedBy)
}

func TestIndex_RemovedFileDropsEdges(t *testing.T) {
	t.Parallel()

	// First run: a imports b. Second run without b: the edge disappears
	// instead of pointing at a ghost.
	mkA := func() *digest.FileSummary {
		return summary("src/a.ts", "typescript", nil,
			[]extract.Import{{Specifier: "./b", Names: []string{"x"}}}, nil)
	}
	b := summary("src/b.ts", "typescript", nil, nil, nil)

	first := mkA()
	buildResolved(t, first, b)
	require.Equal(t, "src/b.ts", first.Imports[0].Target)

	second := mkA()
	buildResolved(t, second)
	assert.Empty(t, second.Imports[0].Target)
}

func TestIndex_PythonPackageResolution(t *testing.T) {
	t.Parallel()

	app := summary("src/app.py", "python", nil,
		[]extract.Import{{Specifier: "orders", Names: []string{"orders"}}}, nil)
	pkg := summary("src/orders/__init__.py", "python", nil, nil, nil)

	buildResolved(t, app, pkg)
	assert.Equal(t, "src/orders/__init__.py", app.Imports[0].Target)
}

func TestIndex_RubyConstantCall(t *testing.T) {
	t.Parallel()

	report := summary("lib/report.rb", "ruby",
		[]extract.Definition{{Name: "Report", Kind: extract.KindClass, StartLine: 3, EndLine: 10}},
		[]extract.Import{{Specifier: "./formatter"}},
		[]extract.Call{{Expression: "Formatter.render", Root: "Formatter", Method: "render", FromDefinition: "Report#build"}},
	)
	formatter := summary("lib/formatter.rb", "ruby",
		[]extract.Definition{
			{Name: "Formatter", Kind: extract.KindClass, StartLine: 1, EndLine: 8},
			{Name: "Formatter#render", Kind: extract.KindFunction, StartLine: 2, EndLine: 4},
		},
		nil, nil,
	)

	buildResolved(t, report, formatter)

	require.Equal(t, "lib/formatter.rb", report.Calls[0].TargetFile)
	assert.Equal(t, "Formatter#render", report.Calls[0].TargetDefinition)
	require.Len(t, formatter.CalledBy, 1)
	assert.Equal(t, "Report#build", formatter.CalledBy[0].Definition)
}

func TestIndex_RustCrateResolution(t *testing.T) {
	t.Parallel()

	engine := summary("src/engine.rs", "rust", nil,
		[]extract.Import{{Specifier: "crate::store", Names: []string{"save"}}}, nil)
	store := summary("src/store.rs", "rust",
		[]extract.Definition{{Name: "save", Kind: extract.KindFunction, Visibility: extract.Exported, StartLine: 1, EndLine: 2}},
		nil, nil)

	buildResolved(t, engine, store)
	assert.Equal(t, "src/store.rs", engine.Imports[0].Target)
	assert.Equal(t, []string{"src/engine.rs"}, store.ImportedBy)
}

func TestIndex_RustSuperResolution(t *testing.T) {
	t.Parallel()

	// For src/jobs/mod.rs the first super already leaves src/jobs; for
	// src/jobs/queue.rs it stays in src/jobs.
	modRoot := summary("src/jobs/mod.rs", "rust", nil,
		[]extract.Import{{Specifier: "super::store", Names: []string{"save"}}}, nil)
	sibling := summary("src/jobs/queue.rs", "rust", nil,
		[]extract.Import{{Specifier: "super::worker", Names: []string{"spawn"}}}, nil)
	store := summary("src/store.rs", "rust", nil, nil, nil)
	worker := summary("src/jobs/worker.rs", "rust", nil, nil, nil)

	buildResolved(t, modRoot, sibling, store, worker)

	assert.Equal(t, "src/store.rs", modRoot.Imports[0].Target)
	assert.Equal(t, "src/jobs/worker.rs", sibling.Imports[0].Target)
}
