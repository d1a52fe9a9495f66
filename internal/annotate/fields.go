package annotate

import (
	"fmt"
	"strings"
)

// Canonical field names, in no particular order. Aliases (singular forms,
// underscores, mixed case) normalize onto these; anything else is kept
// verbatim under its normalized name.
var knownFields = map[string]bool{
	"purpose":         true,
	"when-editing":    true,
	"invariants":      true,
	"do-not":          true,
	"error-handling":  true,
	"constraints":     true,
	"gotchas":         true,
	"flows":           true,
	"testing":         true,
	"common-mistakes": true,
	"change-impacts":  true,
	"related":         true,
}

// singularAliases maps singular spellings onto the canonical plural.
var singularAliases = map[string]string{
	"invariant":      "invariants",
	"gotcha":         "gotchas",
	"constraint":     "constraints",
	"flow":           "flows",
	"common-mistake": "common-mistakes",
	"change-impact":  "change-impacts",
}

// NormalizeFieldName lowercases, converts spaces and underscores to
// dashes, and folds singular spellings onto the canonical plural.
func NormalizeFieldName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	n = strings.ReplaceAll(n, " ", "-")
	if canonical, ok := singularAliases[n]; ok {
		return canonical
	}
	return n
}

// Known reports whether a normalized field name is a recognized semantic
// field.
func Known(name string) bool {
	return knownFields[name]
}

// parseFields runs the line scanner over cleaned comment lines following
// the marker. A `name:` line opens a field; `-` or `•` lines add items;
// semicolons split inline content into separate items; a `!` prefix marks
// an item critical. Bare continuation lines extend the previous item.
func parseFields(lines []commentLine) ([]Field, []Diagnostic) {
	var fields []Field
	var diags []Diagnostic

	current := -1
	addItem := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		item := Item{Text: text}
		if strings.HasPrefix(text, "!") {
			item.Critical = true
			item.Text = strings.TrimSpace(strings.TrimPrefix(text, "!"))
		}
		if item.Text == "" {
			return
		}
		fields[current].Items = append(fields[current].Items, item)
	}

	for _, line := range lines {
		text := line.text
		if text == "" {
			continue
		}

		if name, inline, ok := splitFieldHeader(text); ok {
			name = NormalizeFieldName(name)
			if !Known(name) {
				diags = append(diags, Diagnostic{
					Line:    line.number,
					Message: fmt.Sprintf("unknown annotation field %q", name),
				})
			}
			fields = append(fields, Field{Name: name})
			current = len(fields) - 1
			for _, part := range strings.Split(inline, ";") {
				addItem(part)
			}
			continue
		}

		if bullet, ok := stripBullet(text); ok {
			if current == -1 {
				diags = append(diags, Diagnostic{
					Line:    line.number,
					Message: "annotation item before any field header",
				})
				fields = append(fields, Field{Name: "purpose"})
				current = 0
			}
			addItem(bullet)
			continue
		}

		// Bare text: before any field it reads as the purpose, after a
		// field it continues the previous item.
		if current == -1 {
			fields = append(fields, Field{Name: "purpose"})
			current = 0
			addItem(text)
			continue
		}
		if n := len(fields[current].Items); n > 0 {
			fields[current].Items[n-1].Text += " " + text
		} else {
			addItem(text)
		}
	}

	return fields, diags
}

// splitFieldHeader matches `name: inline` lines. The name must look like an
// identifier so URLs and prose with colons are not misread as headers.
func splitFieldHeader(text string) (name, inline string, ok bool) {
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", "", false
	}
	name = text[:idx]
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9', r == '-', r == '_', r == ' ':
		default:
			return "", "", false
		}
	}
	return name, text[idx+1:], true
}

func stripBullet(text string) (string, bool) {
	for _, b := range []string{"- ", "• ", "-", "•"} {
		if strings.HasPrefix(text, b) {
			return strings.TrimPrefix(text, b), true
		}
	}
	return "", false
}
