// Package validate checks persisted digest documents against freshly
// computed summaries.
package validate

import (
	"fmt"

	"github.com/mvp-joe/project-digest/internal/digest"
)

// Result is the validation outcome for one file.
type Result struct {
	File     string
	Errors   []string
	Warnings []string
}

// Ok reports whether the result passes. Strict mode promotes warnings to
// failures.
func (r *Result) Ok(strict bool) bool {
	if len(r.Errors) > 0 {
		return false
	}
	return !strict || len(r.Warnings) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// File validates one persisted document against the fresh summary computed
// from current source. fresh must have TokenCount populated.
func File(persisted []byte, fresh *digest.FileSummary, t digest.Thresholds) *Result {
	r := &Result{File: fresh.FilePath}

	doc, err := digest.Parse(persisted)
	if err != nil {
		r.errorf("unreadable digest document: %v", err)
		return r
	}

	if doc.Fingerprint != fresh.Fingerprint {
		r.errorf("stale: fingerprint %s does not match current source (%s)",
			digest.FormatFingerprint(doc.Fingerprint),
			digest.FormatFingerprint(fresh.Fingerprint))
	}

	checkDefinitions(r, doc, fresh)
	checkAnnotations(r, doc, fresh)

	switch {
	case fresh.TokenCount > t.Error:
		r.errorf("document is %d tokens, over the %d limit", fresh.TokenCount, t.Error)
	case fresh.TokenCount > t.Warn:
		r.warnf("document is %d tokens, over the %d warning threshold", fresh.TokenCount, t.Warn)
	}

	return r
}

// checkDefinitions compares the persisted name/kind set against the current
// extraction. A rename, removal, or reclassification marks the document
// stale.
func checkDefinitions(r *Result, doc *digest.Document, fresh *digest.FileSummary) {
	current := make(map[string]string, len(fresh.Definitions))
	for _, d := range fresh.Definitions {
		current[d.Name] = string(d.Kind)
	}

	persisted := make(map[string]string, len(doc.Definitions))
	for _, d := range doc.Definitions {
		if d.Kind == "" {
			continue
		}
		persisted[d.Name] = d.Kind
	}

	for name, kind := range persisted {
		got, ok := current[name]
		switch {
		case !ok:
			r.errorf("stale: definition %q no longer exists", name)
		case got != kind:
			r.errorf("stale: definition %q is now %s, document says %s", name, got, kind)
		}
	}
	for name := range current {
		if _, ok := persisted[name]; !ok {
			r.errorf("stale: definition %q missing from document", name)
		}
	}
}

// checkAnnotations requires every persisted annotation item to still appear
// verbatim in the current source annotations.
func checkAnnotations(r *Result, doc *digest.Document, fresh *digest.FileSummary) {
	current := make(map[string]bool)
	for _, item := range fresh.AnnotationItems() {
		current[item] = true
	}

	for _, item := range doc.AnnotationItems {
		if !current[item] {
			r.errorf("stale: annotation %q no longer in source", item)
		}
	}
}
