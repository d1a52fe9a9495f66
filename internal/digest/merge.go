package digest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-digest/internal/annotate"
	"github.com/mvp-joe/project-digest/internal/extract"
)

// Merge combines a file's extraction with its annotation blocks into a
// FileSummary. Pure: no I/O, no globals, deterministic for equal inputs.
//
// Attachment rules, in order:
//  1. a block naming a definition explicitly attaches to it;
//  2. a block ending directly above a definition's first line attaches to
//     that definition, exported or not;
//  3. a block above the first definition is file-level;
//  4. anything else is kept file-level with a Warning.
func Merge(ext *extract.Extraction, blocks []annotate.Block, diags []annotate.Diagnostic) *FileSummary {
	s := &FileSummary{
		FilePath:      ext.FilePath,
		Language:      ext.Language,
		Imports:       ext.Imports,
		Calls:         ext.Calls,
		DefaultExport: ext.DefaultExport,
	}

	for _, d := range ext.Definitions {
		s.Definitions = append(s.Definitions, DefinitionSummary{Definition: d})
	}

	for _, d := range diags {
		s.Diagnostics = append(s.Diagnostics, Diagnostic{
			File:     ext.FilePath,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("annotation line %d: %s", d.Line, d.Message),
		})
	}

	firstDefLine := 0
	if len(ext.Definitions) > 0 {
		firstDefLine = ext.Definitions[0].StartLine
	}

	for _, b := range blocks {
		if b.Scope != "" {
			if def := s.Definition(b.Scope); def != nil {
				def.Fields = append(def.Fields, b.Fields...)
				continue
			}
			s.attachOrphan(b, fmt.Sprintf(
				"annotation line %d names unknown definition %q", b.Line, b.Scope))
			continue
		}

		if def := s.definitionStartingAt(b.EndLine + 1); def != nil {
			def.Fields = append(def.Fields, b.Fields...)
			continue
		}

		if firstDefLine == 0 || b.Line < firstDefLine {
			s.FileFields = append(s.FileFields, b.Fields...)
			continue
		}

		s.attachOrphan(b, fmt.Sprintf(
			"annotation line %d attaches to no definition", b.Line))
	}

	s.Purpose = purposeOf(s.FileFields, ext.FilePath)
	s.Fingerprint = Fingerprint(ext, blocks)
	return s
}

func (s *FileSummary) definitionStartingAt(line int) *DefinitionSummary {
	for i := range s.Definitions {
		if s.Definitions[i].StartLine == line {
			return &s.Definitions[i]
		}
	}
	return nil
}

func (s *FileSummary) attachOrphan(b annotate.Block, msg string) {
	s.FileFields = append(s.FileFields, b.Fields...)
	s.Diagnostics = append(s.Diagnostics, Diagnostic{
		File:     s.FilePath,
		Severity: SeverityWarning,
		Message:  msg,
	})
}

// purposeOf takes the first purpose item, defaulting to "<stem> module".
func purposeOf(fields []annotate.Field, filePath string) string {
	for _, f := range fields {
		if f.Name != "purpose" {
			continue
		}
		if len(f.Items) > 0 {
			return f.Items[0].Text
		}
	}
	base := filepath.Base(filePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + " module"
}
