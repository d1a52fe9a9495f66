package extract

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// rustExtractor extracts Rust files. Visibility follows the pub modifier;
// pub(crate) and narrower scopes count as internal since they never cross
// the crate boundary.
type rustExtractor struct {
	lang *sitter.Language
}

// NewRustExtractor creates the Rust extractor.
func NewRustExtractor() Extractor {
	return &rustExtractor{lang: sitter.NewLanguage(tree_sitter_rust.Language())}
}

func (e *rustExtractor) Language() string     { return "rust" }
func (e *rustExtractor) Extensions() []string { return []string{"rs"} }

func (e *rustExtractor) Extract(ctx context.Context, filePath string, source []byte) (*Extraction, error) {
	tree, err := parseTree(e.lang, "rust", filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	ext := &Extraction{FilePath: filePath, Language: "rust"}

	for i := 0; i < int(root.ChildCount()); i++ {
		e.collectItem(root.Child(uint(i)), source, ext)
	}

	ext.Calls = dedupeCalls(e.extractCalls(root, source, ext))
	return ext, nil
}

func (e *rustExtractor) collectItem(node *sitter.Node, source []byte, ext *Extraction) {
	switch node.Kind() {
	case "use_declaration":
		if imp := e.parseUse(node, source); imp != nil {
			ext.Imports = append(ext.Imports, *imp)
		}

	case "function_item":
		name := nodeText(node.ChildByFieldName("name"), source)
		if name == "" {
			return
		}
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       KindFunction,
			Visibility: rustVisibility(node, source),
			Signature:  e.fnSignature(node, source),
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})

	case "struct_item":
		e.collectNamed(node, source, ext, KindClass)

	case "enum_item":
		e.collectNamed(node, source, ext, KindEnum)

	case "trait_item":
		e.collectNamed(node, source, ext, KindInterface)

	case "type_item":
		name := nodeText(node.ChildByFieldName("name"), source)
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       KindType,
			Visibility: rustVisibility(node, source),
			Signature:  nodeText(node.ChildByFieldName("type"), source),
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})

	case "const_item":
		e.collectTyped(node, source, ext, KindConst)

	case "static_item":
		e.collectTyped(node, source, ext, KindVariable)

	case "mod_item":
		name := nodeText(node.ChildByFieldName("name"), source)
		if name == "" {
			return
		}
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       KindModule,
			Visibility: rustVisibility(node, source),
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})

	case "impl_item":
		e.collectImplMethods(node, source, ext)
	}
}

func (e *rustExtractor) collectNamed(node *sitter.Node, source []byte, ext *Extraction, kind Kind) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return
	}
	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       kind,
		Visibility: rustVisibility(node, source),
		Signature:  nodeText(node.ChildByFieldName("type_parameters"), source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	})
}

func (e *rustExtractor) collectTyped(node *sitter.Node, source []byte, ext *Extraction, kind Kind) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return
	}
	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       kind,
		Visibility: rustVisibility(node, source),
		Signature:  nodeText(node.ChildByFieldName("type"), source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	})
}

// collectImplMethods records pub methods in inherent impl blocks, named
// Type::method so callers can tell them apart from free functions.
func (e *rustExtractor) collectImplMethods(node *sitter.Node, source []byte, ext *Extraction) {
	typeName := nodeText(node.ChildByFieldName("type"), source)
	body := node.ChildByFieldName("body")
	if body == nil || node.ChildByFieldName("trait") != nil {
		return
	}
	for _, fn := range findChildrenByType(body, "function_item") {
		name := nodeText(fn.ChildByFieldName("name"), source)
		if name == "" {
			continue
		}
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       typeName + "::" + name,
			Kind:       KindFunction,
			Visibility: rustVisibility(fn, source),
			Signature:  e.fnSignature(fn, source),
			StartLine:  startLine(fn),
			EndLine:    endLine(fn),
		})
	}
}

func (e *rustExtractor) fnSignature(node *sitter.Node, source []byte) string {
	params := nodeText(node.ChildByFieldName("parameters"), source)
	if params == "" {
		params = "()"
	}
	if ret := nodeText(node.ChildByFieldName("return_type"), source); ret != "" {
		return params + " -> " + ret
	}
	return params
}

// parseUse flattens a use declaration. Grouped imports like
// use foo::{a, b} produce one Import with both names; pub use marks a
// re-export.
func (e *rustExtractor) parseUse(node *sitter.Node, source []byte) *Import {
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return nil
	}
	imp := &Import{ReExport: rustVisibility(node, source) == Exported}

	switch arg.Kind() {
	case "identifier":
		imp.Specifier = nodeText(arg, source)
		imp.Names = []string{imp.Specifier}
	case "scoped_identifier":
		imp.Specifier = nodeText(arg.ChildByFieldName("path"), source)
		imp.Names = []string{nodeText(arg.ChildByFieldName("name"), source)}
	case "use_as_clause":
		path := arg.ChildByFieldName("path")
		imp.Specifier = usePathPrefix(path, source)
		imp.Names = []string{nodeText(arg.ChildByFieldName("alias"), source)}
	case "scoped_use_list":
		imp.Specifier = nodeText(arg.ChildByFieldName("path"), source)
		if list := arg.ChildByFieldName("list"); list != nil {
			for i := 0; i < int(list.ChildCount()); i++ {
				child := list.Child(uint(i))
				switch child.Kind() {
				case "identifier":
					imp.Names = append(imp.Names, nodeText(child, source))
				case "scoped_identifier":
					imp.Names = append(imp.Names, nodeText(child.ChildByFieldName("name"), source))
				case "use_as_clause":
					imp.Names = append(imp.Names, nodeText(child.ChildByFieldName("alias"), source))
				case "self":
					imp.Names = append(imp.Names, lastPathSegment(imp.Specifier))
				}
			}
		}
	case "use_wildcard":
		imp.Specifier = usePathPrefix(arg.Child(0), source)
		imp.Names = []string{"*"}
	default:
		imp.Specifier = nodeText(arg, source)
	}

	if imp.Specifier == "" {
		return nil
	}
	return imp
}

func usePathPrefix(node *sitter.Node, source []byte) string {
	return nodeText(node, source)
}

func lastPathSegment(path string) string {
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[idx+2:]
	}
	return path
}

// extractCalls finds calls whose path root or bare name is a use binding.
func (e *rustExtractor) extractCalls(root *sitter.Node, source []byte, ext *Extraction) []Call {
	bindings := importBindings(ext.Imports)
	if len(bindings) == 0 {
		return nil
	}

	var calls []Call
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "call_expression" {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return true
		}

		var rootName, method string
		switch fn.Kind() {
		case "identifier":
			rootName = nodeText(fn, source)
			method = rootName
		case "scoped_identifier":
			rootName = rustPathRoot(fn, source)
			method = nodeText(fn.ChildByFieldName("name"), source)
		default:
			return true
		}

		if rootName == "" || !bindings[rootName] {
			return true
		}
		calls = append(calls, Call{
			Expression:     nodeText(fn, source),
			Root:           rootName,
			Method:         method,
			FromDefinition: enclosingDefinition(ext.Definitions, startLine(n)),
		})
		return true
	})
	return calls
}

func rustPathRoot(node *sitter.Node, source []byte) string {
	for node != nil {
		path := node.ChildByFieldName("path")
		if path == nil {
			if node.Kind() == "identifier" {
				return nodeText(node, source)
			}
			return ""
		}
		if path.Kind() == "identifier" {
			return nodeText(path, source)
		}
		node = path
	}
	return ""
}

func rustVisibility(node *sitter.Node, source []byte) Visibility {
	vis := findChildByType(node, "visibility_modifier")
	if vis == nil {
		return Internal
	}
	if nodeText(vis, source) == "pub" {
		return Exported
	}
	return Internal
}
