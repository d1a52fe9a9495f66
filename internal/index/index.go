// Package index cross-references merged file summaries across the whole
// project: import targets, call targets, and the reverse edges.
package index

import (
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/project-digest/internal/digest"
	"github.com/mvp-joe/project-digest/internal/extract"
)

// Index is the run-scoped cross-reference structure. Build registers all
// files, Resolve fills edge targets and reverse edges. Neither phase
// traverses the import graph, so cycles cost nothing.
type Index struct {
	summaries map[string]*digest.FileSummary
	order     []string
	roots     []string
	fileGraph graph.Graph[string, string]
}

// Build registers the summaries (phase 1). roots are the directories bare
// import specifiers resolve against.
func Build(summaries []*digest.FileSummary, roots []string) *Index {
	idx := &Index{
		summaries: make(map[string]*digest.FileSummary, len(summaries)),
		roots:     roots,
		fileGraph: graph.New(graph.StringHash, graph.Directed()),
	}
	for _, s := range summaries {
		idx.summaries[s.FilePath] = s
		idx.order = append(idx.order, s.FilePath)
		_ = idx.fileGraph.AddVertex(s.FilePath)
	}
	sort.Strings(idx.order)
	return idx
}

// Files returns all indexed paths in sorted order.
func (idx *Index) Files() []string { return idx.order }

// Summary returns the summary for a path, or nil.
func (idx *Index) Summary(filePath string) *digest.FileSummary {
	return idx.summaries[filePath]
}

// Resolve fills Import.Target, Call.TargetFile/TargetDefinition, and the
// reverse ImportedBy/CalledBy lists (phase 2). Unresolved specifiers stay
// empty: external and genuinely ambiguous imports are not errors.
func (idx *Index) Resolve() error {
	for _, filePath := range idx.order {
		s := idx.summaries[filePath]
		bindings := idx.resolveImports(s)
		idx.resolveCalls(s, bindings)
	}
	return idx.populateImportedBy()
}

// resolveImports fills import targets and returns the local binding map
// (imported name → target file).
func (idx *Index) resolveImports(s *digest.FileSummary) map[string]string {
	bindings := make(map[string]string)

	for i := range s.Imports {
		imp := &s.Imports[i]
		target := idx.lookup(candidatePaths(imp.Specifier, s.FilePath, s.Language, idx.roots))
		if target == "" || target == s.FilePath {
			continue
		}
		imp.Target = target
		idx.addEdge(s.FilePath, target)

		if len(imp.Names) == 0 {
			// Ruby requires bind no names; the required file's constants
			// become resolvable instead.
			idx.bindConstants(bindings, target)
			continue
		}
		if imp.ReExport {
			continue
		}
		for _, name := range imp.Names {
			bindings[strings.TrimPrefix(name, "* as ")] = target
		}
	}
	return bindings
}

func (idx *Index) bindConstants(bindings map[string]string, target string) {
	t := idx.summaries[target]
	if t == nil {
		return
	}
	for i := range t.Definitions {
		d := &t.Definitions[i]
		switch d.Kind {
		case extract.KindClass, extract.KindModule, extract.KindConst:
			bindings[d.Name] = target
		}
	}
}

// resolveCalls fills call targets through the file's own resolved bindings
// and appends the reverse CalledBy entries.
func (idx *Index) resolveCalls(s *digest.FileSummary, bindings map[string]string) {
	for i := range s.Calls {
		c := &s.Calls[i]
		target, ok := bindings[c.Root]
		if !ok {
			continue
		}
		t := idx.summaries[target]
		if t == nil {
			continue
		}

		def := callTarget(t, c)
		if def == "" {
			continue
		}
		c.TargetFile = target
		c.TargetDefinition = def
		t.CalledBy = append(t.CalledBy, digest.Caller{
			File:       s.FilePath,
			Definition: c.FromDefinition,
		})
	}
}

// callTarget picks the definition a call lands on, preferring the most
// specific form: the method, the namespaced method, then the bare binding.
func callTarget(t *digest.FileSummary, c *extract.Call) string {
	for _, name := range []string{
		c.Method,
		c.Root + "#" + c.Method,
		c.Root + "::" + c.Method,
		c.Root,
	} {
		if name != "" && t.Definition(name) != nil {
			return name
		}
	}
	return ""
}

// lookup returns the first indexed path among the candidates, which are
// already in preference order.
func (idx *Index) lookup(candidates []string) string {
	for _, c := range candidates {
		if _, ok := idx.summaries[c]; ok {
			return c
		}
	}
	return ""
}

func (idx *Index) addEdge(from, to string) {
	// Duplicate edges are fine; vertices are pre-registered and self-edges
	// filtered upstream.
	_ = idx.fileGraph.AddEdge(from, to)
}

// populateImportedBy writes sorted, deduplicated reverse lists into each
// summary from the graph's predecessor map.
func (idx *Index) populateImportedBy() error {
	pred, err := idx.fileGraph.PredecessorMap()
	if err != nil {
		return err
	}

	for _, filePath := range idx.order {
		s := idx.summaries[filePath]

		importers := make([]string, 0, len(pred[filePath]))
		for from := range pred[filePath] {
			importers = append(importers, from)
		}
		sort.Strings(importers)
		s.ImportedBy = importers

		s.CalledBy = dedupeCallers(s.CalledBy)
	}
	return nil
}

func dedupeCallers(callers []digest.Caller) []digest.Caller {
	sort.Slice(callers, func(i, j int) bool {
		if callers[i].File != callers[j].File {
			return callers[i].File < callers[j].File
		}
		return callers[i].Definition < callers[j].Definition
	})
	out := callers[:0]
	var last digest.Caller
	for i, c := range callers {
		if i > 0 && c == last {
			continue
		}
		out = append(out, c)
		last = c
	}
	return out
}
