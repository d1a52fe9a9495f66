package digest

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/mvp-joe/project-digest/internal/annotate"
	"github.com/mvp-joe/project-digest/internal/extract"
)

// Fingerprint hashes the extraction-relevant shape of a file plus its
// annotation text. Whitespace and comments outside annotation blocks do not
// feed the hash, so reformatting a file never invalidates its document; any
// change to a definition, import, or annotation item does.
func Fingerprint(ext *extract.Extraction, blocks []annotate.Block) uint64 {
	h := xxhash.New()

	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.WriteString(p)
			_, _ = h.Write([]byte{0})
		}
	}

	write("v1", ext.Language)

	for _, d := range ext.Definitions {
		write("def", d.Name, string(d.Kind), string(d.Visibility), d.Signature,
			strconv.FormatBool(d.DefaultExport))
	}
	for _, imp := range ext.Imports {
		write("imp", imp.Specifier, strconv.FormatBool(imp.ReExport))
		write(imp.Names...)
	}
	write("default", ext.DefaultExport)

	for _, b := range blocks {
		write("block", b.Scope)
		for _, f := range b.Fields {
			write("field", f.Name)
			for _, it := range f.Items {
				write(it.Text, strconv.FormatBool(it.Critical))
			}
		}
	}

	return h.Sum64()
}

// FormatFingerprint renders a fingerprint the way documents store it.
func FormatFingerprint(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

// ParseFingerprint reads a fingerprint back from its document form.
func ParseFingerprint(s string) (uint64, error) {
	return strconv.ParseUint(s, 16, 64)
}
