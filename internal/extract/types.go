package extract

import "errors"

// ErrParse indicates a file could not be parsed at all. The caller excludes
// the file from the run and keeps going; one bad file never fails a run.
var ErrParse = errors.New("parse failed")

// Kind classifies an extracted definition.
type Kind string

const (
	KindFunction  Kind = "fn"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindType      Kind = "type"
	KindEnum      Kind = "enum"
	KindConst     Kind = "const"
	KindVariable  Kind = "var"
	KindHook      Kind = "hook"
	KindComponent Kind = "component"
	KindContext   Kind = "context"
	KindModule    Kind = "module"
)

// Visibility mirrors the language's native export mechanism.
type Visibility string

const (
	Exported Visibility = "exported"
	Internal Visibility = "internal"
)

// Definition is a named, classified declaration extracted from source.
type Definition struct {
	Name       string
	Kind       Kind
	Visibility Visibility
	Signature  string
	StartLine  int // 1-indexed
	EndLine    int

	// DefaultExport marks a declaration that is also the file's default
	// export. A default export re-exporting an existing symbol sets this
	// flag on the original Definition instead of duplicating it.
	DefaultExport bool
}

// Import is a single import statement as written in source.
type Import struct {
	Specifier string   // module specifier exactly as written
	Names     []string // imported names; "* as x" recorded as "* as x"
	ReExport  bool     // true for re-export forms (export ... from "m")

	// Target is filled by the project index: the project-relative path of
	// the resolved file, or empty for external/unresolvable specifiers.
	Target string
}

// Call is an outgoing reference through an imported binding.
type Call struct {
	Expression     string // callee as written, e.g. "api.run" or "fetchUser"
	Root           string // leading identifier ("api", "fetchUser")
	Method         string // called member, equal to Root for bare calls
	FromDefinition string // enclosing definition name, if any

	// Filled by the project index when the callee statically traces through
	// an import binding to a known definition.
	TargetFile       string
	TargetDefinition string
}

// Extraction is the structural result for one file. Definitions appear in
// source order.
type Extraction struct {
	FilePath    string
	Language    string
	Definitions []Definition
	Imports     []Import
	Calls       []Call

	// DefaultExport names the default-exported symbol when the file has one
	// and it does not alias a declared Definition (those are marked on the
	// Definition itself).
	DefaultExport string
}

// Definition lookup by name; returns nil when absent.
func (e *Extraction) Definition(name string) *Definition {
	for i := range e.Definitions {
		if e.Definitions[i].Name == name {
			return &e.Definitions[i]
		}
	}
	return nil
}
