package extract

import (
	"context"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// goExtractor extracts Go files. Visibility follows the language rule: a
// capitalized identifier is exported, anything else is internal.
type goExtractor struct {
	lang *sitter.Language
}

// NewGoExtractor creates the Go extractor.
func NewGoExtractor() Extractor {
	return &goExtractor{lang: sitter.NewLanguage(tree_sitter_go.Language())}
}

func (e *goExtractor) Language() string     { return "go" }
func (e *goExtractor) Extensions() []string { return []string{"go"} }

func (e *goExtractor) Extract(ctx context.Context, filePath string, source []byte) (*Extraction, error) {
	tree, err := parseTree(e.lang, "go", filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	ext := &Extraction{FilePath: filePath, Language: "go"}

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "import_declaration":
			e.parseImports(node, source, ext)

		case "function_declaration":
			name := nodeText(node.ChildByFieldName("name"), source)
			if name == "" {
				continue
			}
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       name,
				Kind:       KindFunction,
				Visibility: goVisibility(name),
				Signature:  e.funcSignature(node, source),
				StartLine:  startLine(node),
				EndLine:    endLine(node),
			})

		case "method_declaration":
			name := nodeText(node.ChildByFieldName("name"), source)
			recv := nodeText(node.ChildByFieldName("receiver"), source)
			if name == "" {
				continue
			}
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       name,
				Kind:       KindFunction,
				Visibility: goVisibility(name),
				Signature:  strings.TrimSpace(recv + " " + e.funcSignature(node, source)),
				StartLine:  startLine(node),
				EndLine:    endLine(node),
			})

		case "type_declaration":
			for _, spec := range findChildrenByType(node, "type_spec") {
				e.collectTypeSpec(spec, source, ext)
			}
			for _, spec := range findChildrenByType(node, "type_alias") {
				e.collectTypeSpec(spec, source, ext)
			}

		case "const_declaration":
			e.collectValueSpecs(node, source, ext, KindConst)

		case "var_declaration":
			e.collectValueSpecs(node, source, ext, KindVariable)
		}
	}

	ext.Calls = dedupeCalls(e.extractCalls(root, source, ext))
	return ext, nil
}

func (e *goExtractor) collectTypeSpec(spec *sitter.Node, source []byte, ext *Extraction) {
	name := nodeText(spec.ChildByFieldName("name"), source)
	if name == "" {
		return
	}
	typeNode := spec.ChildByFieldName("type")
	kind := KindType
	sig := ""
	if typeNode != nil {
		switch typeNode.Kind() {
		case "struct_type":
			kind = KindClass
			sig = e.structSignature(typeNode, source)
		case "interface_type":
			kind = KindInterface
			sig = e.interfaceSignature(typeNode, source)
		default:
			sig = nodeText(typeNode, source)
		}
	}
	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       kind,
		Visibility: goVisibility(name),
		Signature:  sig,
		StartLine:  startLine(spec),
		EndLine:    endLine(spec),
	})
}

func (e *goExtractor) collectValueSpecs(node *sitter.Node, source []byte, ext *Extraction, kind Kind) {
	walkTree(node, func(n *sitter.Node) bool {
		if n.Kind() != "const_spec" && n.Kind() != "var_spec" {
			return true
		}
		for _, id := range findChildrenByType(n, "identifier") {
			name := nodeText(id, source)
			if name == "" || name == "_" {
				continue
			}
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       name,
				Kind:       kind,
				Visibility: goVisibility(name),
				Signature:  strings.TrimSpace(nodeText(n.ChildByFieldName("type"), source)),
				StartLine:  startLine(n),
				EndLine:    endLine(n),
			})
		}
		return false
	})
}

func (e *goExtractor) funcSignature(node *sitter.Node, source []byte) string {
	params := nodeText(node.ChildByFieldName("parameters"), source)
	if params == "" {
		params = "()"
	}
	if result := nodeText(node.ChildByFieldName("result"), source); result != "" {
		return params + " " + result
	}
	return params
}

// structSignature summarizes a struct body as { Field Type; ... }, capped at
// five fields.
func (e *goExtractor) structSignature(node *sitter.Node, source []byte) string {
	body := findChildByType(node, "field_declaration_list")
	if body == nil {
		return "struct"
	}
	var fields []string
	for _, decl := range findChildrenByType(body, "field_declaration") {
		name := nodeText(decl.ChildByFieldName("name"), source)
		typ := nodeText(decl.ChildByFieldName("type"), source)
		if name == "" {
			fields = append(fields, typ) // embedded field
		} else {
			fields = append(fields, name+" "+typ)
		}
		if len(fields) >= 5 {
			fields = append(fields, "...")
			break
		}
	}
	if len(fields) == 0 {
		return "struct{}"
	}
	return "struct { " + strings.Join(fields, "; ") + " }"
}

func (e *goExtractor) interfaceSignature(node *sitter.Node, source []byte) string {
	var methods []string
	walkTree(node, func(n *sitter.Node) bool {
		if n.Kind() == "method_elem" {
			name := nodeText(n.ChildByFieldName("name"), source)
			params := nodeText(n.ChildByFieldName("parameters"), source)
			methods = append(methods, name+params)
			return false
		}
		return len(methods) < 5
	})
	if len(methods) == 0 {
		return "interface{}"
	}
	return "interface { " + strings.Join(methods, "; ") + " }"
}

// parseImports records each import spec. The binding name is the explicit
// alias when present, otherwise the last path element.
func (e *goExtractor) parseImports(node *sitter.Node, source []byte, ext *Extraction) {
	walkTree(node, func(n *sitter.Node) bool {
		if n.Kind() != "import_spec" {
			return true
		}
		path := strings.Trim(nodeText(n.ChildByFieldName("path"), source), "\"")
		if path == "" {
			return false
		}
		binding := nodeText(n.ChildByFieldName("name"), source)
		if binding == "" {
			if idx := strings.LastIndex(path, "/"); idx >= 0 {
				binding = path[idx+1:]
			} else {
				binding = path
			}
		}
		imp := Import{Specifier: path}
		if binding != "_" && binding != "." {
			imp.Names = []string{binding}
		}
		ext.Imports = append(ext.Imports, imp)
		return false
	})
}

// extractCalls finds pkg.Func selector calls whose package qualifier is an
// import binding.
func (e *goExtractor) extractCalls(root *sitter.Node, source []byte, ext *Extraction) []Call {
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
		if fn == nil || fn.Kind() != "selector_expression" {
			return true
		}
		operand := fn.ChildByFieldName("operand")
		if operand == nil || operand.Kind() != "identifier" {
			return true
		}
		pkg := nodeText(operand, source)
		if !bindings[pkg] {
			return true
		}
		calls = append(calls, Call{
			Expression:     nodeText(fn, source),
			Root:           pkg,
			Method:         nodeText(fn.ChildByFieldName("field"), source),
			FromDefinition: enclosingDefinition(ext.Definitions, startLine(n)),
		})
		return true
	})
	return calls
}

func goVisibility(name string) Visibility {
	if name == "" {
		return Internal
	}
	if unicode.IsUpper(rune(name[0])) {
		return Exported
	}
	return Internal
}
