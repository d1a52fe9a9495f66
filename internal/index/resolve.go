package index

import (
	"path"
	"strings"
)

// candidatePaths expands an import specifier into the project-relative
// paths it could name, in preference order. fromFile is the importing file;
// roots are the configured roots bare specifiers resolve against.
// Resolution is purely lexical.
func candidatePaths(specifier, fromFile, language string, roots []string) []string {
	fromDir := path.Dir(fromFile)

	switch language {
	case "python":
		return pythonCandidates(specifier, fromDir, roots)
	case "rust":
		return rustCandidates(specifier, fromFile, roots)
	}

	if isRelative(specifier) {
		base := path.Clean(path.Join(fromDir, specifier))
		return expandExtensions(base, language)
	}

	var out []string
	for _, root := range roots {
		base := path.Clean(path.Join(root, specifier))
		out = append(out, expandExtensions(base, language)...)
	}
	return out
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".."
}

// expandExtensions appends per-language extension and index-file variants
// to a resolved base path.
func expandExtensions(base, language string) []string {
	switch language {
	case "typescript":
		return []string{
			base,
			base + ".ts", base + ".tsx", base + ".js", base + ".jsx",
			base + "/index.ts", base + "/index.tsx", base + "/index.js", base + "/index.jsx",
		}
	case "go":
		return []string{base, base + ".go"}
	case "ruby":
		return []string{base, base + ".rb"}
	default:
		return []string{base}
	}
}

// pythonCandidates resolves dotted module paths. Leading dots walk up from
// the importing file's package: one dot is the current package, each
// further dot one level up.
func pythonCandidates(specifier, fromDir string, roots []string) []string {
	dots := 0
	for dots < len(specifier) && specifier[dots] == '.' {
		dots++
	}
	rest := strings.ReplaceAll(specifier[dots:], ".", "/")

	if dots > 0 {
		dir := fromDir
		for i := 1; i < dots; i++ {
			dir = path.Dir(dir)
		}
		base := path.Clean(path.Join(dir, rest))
		return pythonVariants(base)
	}

	var out []string
	for _, root := range roots {
		base := path.Clean(path.Join(root, rest))
		out = append(out, pythonVariants(base)...)
	}
	return out
}

func pythonVariants(base string) []string {
	return []string{base, base + ".py", base + "/__init__.py"}
}

// rustCandidates resolves use paths. crate:: anchors at each configured
// root; self:: and super:: are relative to the importing module's
// directory; anything else is an external crate.
func rustCandidates(specifier, fromFile string, roots []string) []string {
	segments := strings.Split(specifier, "::")
	if len(segments) == 0 {
		return nil
	}

	fromDir := path.Dir(fromFile)

	rel := func(dir string, rest []string) []string {
		base := path.Clean(path.Join(dir, path.Join(rest...)))
		return []string{base, base + ".rs", base + "/mod.rs"}
	}

	switch segments[0] {
	case "crate":
		var out []string
		for _, root := range roots {
			out = append(out, rel(root, segments[1:])...)
		}
		return out
	case "self":
		return rel(fromDir, segments[1:])
	case "super":
		dir := fromDir
		// A module-root file's directory is its own module, so the first
		// super already leaves it. For src/a.rs the parent module lives in
		// src/ itself.
		if isRustModuleRoot(fromFile) {
			dir = path.Dir(dir)
		}
		rest := segments[1:]
		for len(rest) > 0 && rest[0] == "super" {
			dir = path.Dir(dir)
			rest = rest[1:]
		}
		return rel(dir, rest)
	}
	return nil
}

func isRustModuleRoot(fromFile string) bool {
	switch path.Base(fromFile) {
	case "mod.rs", "lib.rs", "main.rs":
		return true
	}
	return false
}
