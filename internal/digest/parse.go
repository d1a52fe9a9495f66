package digest

import (
	"fmt"
	"strings"
)

// Document is a digest document read back from disk. It carries the parts
// the validator compares against a freshly computed FileSummary.
type Document struct {
	FilePath    string
	Language    string
	Purpose     string
	TokenCount  int
	Tier        Tier
	Fingerprint uint64

	// Definitions as listed in the exports section.
	Definitions []DocDefinition

	// AnnotationItems are all annotation field items, file-level and
	// per-definition, in document order. Structural lists (exports,
	// imports and friends) are not annotation items.
	AnnotationItems []string
}

// DocDefinition is one exports entry.
type DocDefinition struct {
	Name string
	Kind string
}

// structuralSections are list sections the tool itself generates; their
// entries are not annotation items.
var structuralSections = map[string]bool{
	"exports":     true,
	"signatures":  true,
	"imports":     true,
	"calls":       true,
	"imported-by": true,
	"called-by":   true,
}

// Parse reads a rendered digest document. Unknown lines are skipped rather
// than rejected so older documents still validate.
func Parse(doc []byte) (*Document, error) {
	d := &Document{}
	section := ""

	for _, line := range strings.Split(string(doc), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "# "):
			d.FilePath = strings.TrimPrefix(trimmed, "# ")
			continue
		case strings.HasPrefix(trimmed, "## "):
			// Per-definition section; its fields are annotation fields.
			section = ""
			continue
		}

		if strings.HasSuffix(trimmed, ":") && !strings.HasPrefix(trimmed, "-") {
			section = strings.TrimSuffix(trimmed, ":")
			continue
		}

		if key, value, found := strings.Cut(trimmed, ": "); found && section == "" && !strings.HasPrefix(trimmed, "-") {
			if err := d.setHeader(key, value); err != nil {
				return nil, err
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "- ") {
			continue
		}
		entry := strings.TrimPrefix(trimmed, "- ")

		switch {
		case section == "exports":
			d.Definitions = append(d.Definitions, parseExportEntry(entry))
		case structuralSections[section]:
			// skip
		default:
			d.AnnotationItems = append(d.AnnotationItems,
				strings.TrimSpace(strings.TrimPrefix(entry, "!")))
		}
	}

	if d.FilePath == "" {
		return nil, fmt.Errorf("digest document missing file header")
	}
	return d, nil
}

func (d *Document) setHeader(key, value string) error {
	switch key {
	case "language":
		d.Language = value
	case "purpose":
		d.Purpose = value
	case "tokens":
		var tier string
		if _, err := fmt.Sscanf(value, "%d (%s", &d.TokenCount, &tier); err != nil {
			return fmt.Errorf("malformed tokens line %q: %w", value, err)
		}
		d.Tier = Tier(strings.TrimSuffix(tier, ")"))
	case "fingerprint":
		fp, err := ParseFingerprint(value)
		if err != nil {
			return fmt.Errorf("malformed fingerprint %q: %w", value, err)
		}
		d.Fingerprint = fp
	}
	return nil
}

// parseExportEntry reads "Name [kind]" with optional trailing markers.
func parseExportEntry(entry string) DocDefinition {
	def := DocDefinition{Name: entry}
	open := strings.Index(entry, " [")
	if open < 0 {
		return def
	}
	def.Name = entry[:open]
	rest := entry[open+2:]
	if end := strings.Index(rest, "]"); end >= 0 {
		def.Kind = rest[:end]
	}
	return def
}
