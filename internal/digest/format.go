package digest

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/project-digest/internal/annotate"
	"github.com/mvp-joe/project-digest/internal/extract"
)

// Field ordering inside a document. High-attention fields render near the
// top, reference material in the middle, and gotchas last, where a reader
// scanning from either end still hits them.
var (
	headFields = []string{"when-editing", "invariants", "do-not"}
	tailFields = []string{"error-handling", "constraints", "flows", "testing",
		"common-mistakes", "change-impacts", "related"}
)

// importedByDisplayCap limits the imported-by list; the remainder collapses
// to a "(+N more)" line.
const importedByDisplayCap = 10

// Render produces the digest document for a summary. Byte-stable: equal
// summaries render to equal bytes.
func Render(s *FileSummary) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", s.FilePath)
	fmt.Fprintf(&b, "language: %s\n", s.Language)
	fmt.Fprintf(&b, "purpose: %s\n", s.Purpose)
	fmt.Fprintf(&b, "tokens: %d (%s)\n", s.TokenCount, s.Tier)
	fmt.Fprintf(&b, "fingerprint: %s\n", FormatFingerprint(s.Fingerprint))

	renderExports(&b, s)
	renderSignatures(&b, s)

	for _, name := range headFields {
		renderField(&b, s.FileFields, name)
	}

	renderImports(&b, s)
	renderCalls(&b, s)
	renderImportedBy(&b, s)
	renderCalledBy(&b, s)

	for _, name := range tailFields {
		renderField(&b, s.FileFields, name)
	}
	renderUnknownFields(&b, s.FileFields)

	renderDefinitions(&b, s)

	// Last on purpose.
	renderField(&b, s.FileFields, "gotchas")

	return []byte(b.String())
}

func renderExports(b *strings.Builder, s *FileSummary) {
	if len(s.Definitions) == 0 {
		return
	}
	b.WriteString("\nexports:\n")
	for _, d := range s.Definitions {
		fmt.Fprintf(b, "- %s [%s]", d.Name, d.Kind)
		if d.DefaultExport {
			b.WriteString(" (default)")
		}
		if d.Visibility != extract.Exported {
			b.WriteString(" (internal)")
		}
		b.WriteString("\n")
	}
	if s.DefaultExport != "" {
		fmt.Fprintf(b, "- %s (default)\n", s.DefaultExport)
	}
}

func renderSignatures(b *strings.Builder, s *FileSummary) {
	any := false
	for _, d := range s.Definitions {
		if d.Signature == "" {
			continue
		}
		if !any {
			b.WriteString("\nsignatures:\n")
			any = true
		}
		fmt.Fprintf(b, "- %s%s%s\n", d.Name, signatureSeparator(d.Signature), d.Signature)
	}
}

// signatureSeparator keeps `name(params)` tight and `name { ... }` spaced.
func signatureSeparator(sig string) string {
	if strings.HasPrefix(sig, "(") {
		return ""
	}
	return " "
}

func renderField(b *strings.Builder, fields []annotate.Field, name string) {
	for _, f := range fields {
		if f.Name != name || len(f.Items) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s:\n", f.Name)
		for _, it := range f.Items {
			renderItem(b, it)
		}
	}
}

func renderItem(b *strings.Builder, it annotate.Item) {
	if it.Critical {
		fmt.Fprintf(b, "- ! %s\n", it.Text)
	} else {
		fmt.Fprintf(b, "- %s\n", it.Text)
	}
}

// renderUnknownFields emits fields outside the known set, preserving their
// source order and names.
func renderUnknownFields(b *strings.Builder, fields []annotate.Field) {
	for _, f := range fields {
		if annotate.Known(f.Name) || len(f.Items) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s:\n", f.Name)
		for _, it := range f.Items {
			renderItem(b, it)
		}
	}
}

func renderImports(b *strings.Builder, s *FileSummary) {
	if len(s.Imports) == 0 {
		return
	}
	b.WriteString("\nimports:\n")
	for _, imp := range s.Imports {
		fmt.Fprintf(b, "- %s", imp.Specifier)
		switch {
		case imp.Target != "":
			fmt.Fprintf(b, " -> %s", imp.Target)
		default:
			b.WriteString(" (external)")
		}
		if imp.ReExport {
			b.WriteString(" (re-export)")
		}
		b.WriteString("\n")
	}
}

func renderCalls(b *strings.Builder, s *FileSummary) {
	any := false
	for _, c := range s.Calls {
		if c.TargetFile == "" {
			continue
		}
		if !any {
			b.WriteString("\ncalls:\n")
			any = true
		}
		fmt.Fprintf(b, "- %s -> %s#%s", c.Expression, c.TargetFile, c.TargetDefinition)
		if c.FromDefinition != "" {
			fmt.Fprintf(b, " (from %s)", c.FromDefinition)
		}
		b.WriteString("\n")
	}
}

func renderImportedBy(b *strings.Builder, s *FileSummary) {
	if len(s.ImportedBy) == 0 {
		return
	}
	b.WriteString("\nimported-by:\n")
	shown := s.ImportedBy
	if len(shown) > importedByDisplayCap {
		shown = shown[:importedByDisplayCap]
	}
	for _, f := range shown {
		fmt.Fprintf(b, "- %s\n", f)
	}
	if rest := len(s.ImportedBy) - len(shown); rest > 0 {
		fmt.Fprintf(b, "  (+%d more)\n", rest)
	}
}

func renderCalledBy(b *strings.Builder, s *FileSummary) {
	if len(s.CalledBy) == 0 {
		return
	}
	b.WriteString("\ncalled-by:\n")
	for _, c := range s.CalledBy {
		fmt.Fprintf(b, "- %s#%s\n", c.File, c.Definition)
	}
}

func renderDefinitions(b *strings.Builder, s *FileSummary) {
	for _, d := range s.Definitions {
		if len(d.Fields) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n## %s [%s]\n", d.Name, d.Kind)
		for _, f := range d.Fields {
			if len(f.Items) == 0 {
				continue
			}
			fmt.Fprintf(b, "%s:\n", f.Name)
			for _, it := range f.Items {
				renderItem(b, it)
			}
		}
	}
}
