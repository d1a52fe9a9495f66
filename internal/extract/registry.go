package extract

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor is the per-language extraction contract. Implementations cover
// only the capabilities that are meaningful for their language; a language
// without an export keyword classifies visibility by naming convention, a
// language without default exports never sets the marker, and so on.
type Extractor interface {
	// Language returns the language identifier (e.g. "typescript").
	Language() string

	// Extensions returns the file extensions handled, without leading dot.
	Extensions() []string

	// Extract parses source and returns the structural extraction.
	// Unparseable source returns an error wrapping ErrParse.
	Extract(ctx context.Context, filePath string, source []byte) (*Extraction, error)
}

// Registry maps file extensions to language extractors.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a registry with all supported languages registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.register(NewTypeScriptExtractor())
	r.register(NewGoExtractor())
	r.register(NewPythonExtractor())
	r.register(NewRustExtractor())
	r.register(NewRubyExtractor())
	r.register(NewCSharpExtractor())
	return r
}

func (r *Registry) register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[ext] = e
	}
}

// ForPath returns the extractor for a file path, or nil if unsupported.
func (r *Registry) ForPath(path string) Extractor {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return r.byExt[ext]
}

// ForLanguage returns the extractor for a language identifier, or nil.
func (r *Registry) ForLanguage(lang string) Extractor {
	for _, e := range r.byExt {
		if e.Language() == lang {
			return e
		}
	}
	return nil
}

// Supported reports whether any extractor handles the path.
func (r *Registry) Supported(path string) bool {
	return r.ForPath(path) != nil
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
