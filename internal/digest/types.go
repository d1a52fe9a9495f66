// Package digest merges extraction and annotation results into per-file
// summaries and renders them as digest documents.
package digest

import (
	"github.com/mvp-joe/project-digest/internal/annotate"
	"github.com/mvp-joe/project-digest/internal/extract"
)

// Severity grades a diagnostic. Errors fail the run; warnings fail it only
// in strict mode.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a per-file problem surfaced to the run tally.
type Diagnostic struct {
	File     string
	Severity Severity
	Message  string
}

// Tier buckets a document by its token cost.
type Tier string

const (
	TierSimple   Tier = "simple"
	TierStandard Tier = "standard"
	TierComplex  Tier = "complex"
)

// Thresholds are the token limits a document is classified against.
type Thresholds struct {
	Target int
	Warn   int
	Error  int
}

// Caller identifies a project-internal call site.
type Caller struct {
	File       string
	Definition string
}

// DefinitionSummary pairs an extracted definition with its annotation
// fields, if a block attached to it.
type DefinitionSummary struct {
	extract.Definition
	Fields []annotate.Field
}

// FileSummary is the complete merged view of one source file. The project
// index fills ImportedBy and CalledBy after all files are merged.
type FileSummary struct {
	FilePath string
	Language string
	Purpose  string

	TokenCount int
	Tier       Tier

	Definitions []DefinitionSummary
	FileFields  []annotate.Field
	Imports     []extract.Import
	Calls       []extract.Call

	// DefaultExport names a default export that aliases no declared
	// definition (re-exports of declared symbols are flagged on the
	// definition itself).
	DefaultExport string

	ImportedBy []string
	CalledBy   []Caller

	Fingerprint uint64
	Diagnostics []Diagnostic
}

// Definition returns the summary for name, or nil.
func (s *FileSummary) Definition(name string) *DefinitionSummary {
	for i := range s.Definitions {
		if s.Definitions[i].Name == name {
			return &s.Definitions[i]
		}
	}
	return nil
}

// AnnotationItems returns every annotation item text in the file, file-level
// fields first, then per-definition fields in definition order. Used by the
// validator's verbatim staleness check.
func (s *FileSummary) AnnotationItems() []string {
	var items []string
	collect := func(fields []annotate.Field) {
		for _, f := range fields {
			for _, it := range f.Items {
				items = append(items, it.Text)
			}
		}
	}
	collect(s.FileFields)
	for i := range s.Definitions {
		collect(s.Definitions[i].Fields)
	}
	return items
}
