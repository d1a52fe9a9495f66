// Package annotate locates and parses @digest annotation blocks inside
// source comments. Parsing is tolerant: malformed lines produce diagnostics
// and a partial result, never an error for the whole file.
package annotate

import (
	"strings"
)

// Marker opens an annotation block inside a comment.
const Marker = "@digest"

// Item is one annotation entry. Critical items are prefixed with ! in
// source and rendered with the same prefix.
type Item struct {
	Text     string
	Critical bool
}

// Field is a named group of items, order preserved as written.
type Field struct {
	Name  string
	Items []Item
}

// Block is one @digest annotation block.
type Block struct {
	// Scope is the definition name the block documents, or "" when the
	// block is file-level or positional (attached later by adjacency).
	Scope string

	// Line and EndLine delimit the enclosing comment, 1-indexed. EndLine is
	// used for adjacency attachment: a block ending directly above a
	// definition documents that definition.
	Line    int
	EndLine int

	Fields []Field
}

// Diagnostic is a non-fatal parse problem.
type Diagnostic struct {
	Line    int
	Message string
}

// commentSyntax describes how a language writes comments.
type commentSyntax struct {
	linePrefix string
	blockOpen  string
	blockClose string
}

var syntaxByLanguage = map[string]commentSyntax{
	"typescript": {linePrefix: "//", blockOpen: "/*", blockClose: "*/"},
	"go":         {linePrefix: "//", blockOpen: "/*", blockClose: "*/"},
	"rust":       {linePrefix: "//", blockOpen: "/*", blockClose: "*/"},
	"csharp":     {linePrefix: "//", blockOpen: "/*", blockClose: "*/"},
	"python":     {linePrefix: "#"},
	"ruby":       {linePrefix: "#"},
}

// Parse scans source for @digest blocks using the language's comment
// syntax. Blocks come back in source order with Scope unset unless the
// marker names a definition explicitly (@digest Name).
func Parse(source []byte, language string) ([]Block, []Diagnostic) {
	syntax, ok := syntaxByLanguage[language]
	if !ok {
		return nil, nil
	}

	lines := strings.Split(string(source), "\n")

	var blocks []Block
	var diags []Diagnostic

	for i := 0; i < len(lines); i++ {
		run, next := commentRun(lines, i, syntax)
		if run == nil {
			i = next
			continue
		}

		if block, blockDiags, found := parseRun(run); found {
			blocks = append(blocks, block)
			diags = append(diags, blockDiags...)
		}
		i = next
	}
	return blocks, diags
}

// commentLine is one cleaned line of a comment run.
type commentLine struct {
	number int // 1-indexed source line
	text   string
}

// commentRun collects the comment starting at index i, or returns nil when
// lines[i] is not a comment. next is the index of the last consumed line.
func commentRun(lines []string, i int, syntax commentSyntax) ([]commentLine, int) {
	trimmed := strings.TrimSpace(lines[i])

	if syntax.blockOpen != "" && strings.HasPrefix(trimmed, syntax.blockOpen) {
		var run []commentLine
		for j := i; j < len(lines); j++ {
			run = append(run, commentLine{number: j + 1, text: cleanBlockLine(lines[j], syntax)})
			if strings.Contains(lines[j], syntax.blockClose) {
				return run, j
			}
		}
		return run, len(lines) - 1
	}

	if strings.HasPrefix(trimmed, syntax.linePrefix) {
		var run []commentLine
		j := i
		for ; j < len(lines); j++ {
			t := strings.TrimSpace(lines[j])
			if !strings.HasPrefix(t, syntax.linePrefix) {
				break
			}
			run = append(run, commentLine{
				number: j + 1,
				text:   strings.TrimSpace(strings.TrimPrefix(t, syntax.linePrefix)),
			})
		}
		return run, j - 1
	}

	return nil, i
}

// cleanBlockLine strips block comment decoration: the opener, closer, and a
// leading * used for alignment.
func cleanBlockLine(line string, syntax commentSyntax) string {
	t := strings.TrimSpace(line)
	t = strings.TrimPrefix(t, syntax.blockOpen+"*") // /** opener
	t = strings.TrimPrefix(t, syntax.blockOpen)
	if idx := strings.Index(t, syntax.blockClose); idx >= 0 {
		t = t[:idx]
	}
	t = strings.TrimSpace(t)
	t = strings.TrimPrefix(t, "*")
	return strings.TrimSpace(t)
}

// parseRun extracts the annotation block from one comment run, if the
// marker is present.
func parseRun(run []commentLine) (Block, []Diagnostic, bool) {
	markerAt := -1
	scope := ""
	for idx, line := range run {
		if !strings.HasPrefix(line.text, Marker) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line.text, Marker))
		// @digest Name pins the block to a definition regardless of
		// position.
		if rest != "" && !strings.Contains(rest, ":") {
			scope = rest
		}
		markerAt = idx
		break
	}
	if markerAt == -1 {
		return Block{}, nil, false
	}

	fields, diags := parseFields(run[markerAt+1:])
	return Block{
		Scope:   scope,
		Line:    run[markerAt].number,
		EndLine: run[len(run)-1].number,
		Fields:  fields,
	}, diags, true
}
