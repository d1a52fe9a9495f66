package extract

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

// csharpExtractor extracts C# files. Only members carrying an explicit
// public modifier are exported; the language default is internal, never
// public. Using directives name namespaces, not files, so no call targets
// resolve through them.
type csharpExtractor struct {
	lang *sitter.Language
}

// NewCSharpExtractor creates the C# extractor.
func NewCSharpExtractor() Extractor {
	return &csharpExtractor{lang: sitter.NewLanguage(tree_sitter_csharp.Language())}
}

func (e *csharpExtractor) Language() string     { return "csharp" }
func (e *csharpExtractor) Extensions() []string { return []string{"cs"} }

func (e *csharpExtractor) Extract(ctx context.Context, filePath string, source []byte) (*Extraction, error) {
	tree, err := parseTree(e.lang, "csharp", filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	ext := &Extraction{FilePath: filePath, Language: "csharp"}

	walkTree(tree.RootNode(), func(node *sitter.Node) bool {
		switch node.Kind() {
		case "using_directive":
			if imp := e.parseUsing(node, source); imp != nil {
				ext.Imports = append(ext.Imports, *imp)
			}
		case "class_declaration", "struct_declaration", "record_declaration":
			e.collectNamed(node, source, ext, KindClass)
		case "interface_declaration":
			e.collectNamed(node, source, ext, KindInterface)
		case "enum_declaration":
			e.collectNamed(node, source, ext, KindEnum)
		case "method_declaration":
			e.collectMethod(node, source, ext)
		}
		return true
	})

	return ext, nil
}

func (e *csharpExtractor) collectNamed(node *sitter.Node, source []byte, ext *Extraction, kind Kind) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return
	}
	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       kind,
		Visibility: csharpVisibility(node, source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	})
}

func (e *csharpExtractor) collectMethod(node *sitter.Node, source []byte, ext *Extraction) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return
	}

	sig := nodeText(findChildByType(node, "parameter_list"), source)
	if sig == "" {
		sig = "()"
	}
	if ret := nodeText(node.ChildByFieldName("returns"), source); ret != "" && ret != "void" {
		sig += ": " + ret
	}

	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       KindFunction,
		Visibility: csharpVisibility(node, source),
		Signature:  sig,
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	})
}

// parseUsing reads a using directive. The namespace is kept whole as the
// specifier; it binds nothing file-local.
func (e *csharpExtractor) parseUsing(node *sitter.Node, source []byte) *Import {
	text := strings.TrimSpace(nodeText(node, source))
	text = strings.TrimPrefix(text, "global ")
	text = strings.TrimPrefix(text, "using")
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	text = strings.TrimSpace(strings.TrimPrefix(text, "static "))
	if text == "" {
		return nil
	}
	return &Import{Specifier: text, Names: []string{text}}
}

func csharpVisibility(node *sitter.Node, source []byte) Visibility {
	for _, mod := range findChildrenByType(node, "modifier") {
		if nodeText(mod, source) == "public" {
			return Exported
		}
	}
	return Internal
}
