package extract

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// rubyExtractor extracts Ruby files. Constants, classes, and modules are
// exported; methods are exported until a bare private marker, after which
// later methods in the same body are internal.
type rubyExtractor struct {
	lang *sitter.Language
}

// NewRubyExtractor creates the Ruby extractor.
func NewRubyExtractor() Extractor {
	return &rubyExtractor{lang: sitter.NewLanguage(tree_sitter_ruby.Language())}
}

func (e *rubyExtractor) Language() string     { return "ruby" }
func (e *rubyExtractor) Extensions() []string { return []string{"rb"} }

func (e *rubyExtractor) Extract(ctx context.Context, filePath string, source []byte) (*Extraction, error) {
	tree, err := parseTree(e.lang, "ruby", filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	ext := &Extraction{FilePath: filePath, Language: "ruby"}

	e.collectBody(root, source, ext, "")
	ext.Calls = dedupeCalls(e.extractCalls(root, source, ext))
	return ext, nil
}

// collectBody walks one body (program, class, or module) collecting
// definitions. prefix namespaces nested methods as Klass#method.
func (e *rubyExtractor) collectBody(body *sitter.Node, source []byte, ext *Extraction, prefix string) {
	private := false
	for i := 0; i < int(body.ChildCount()); i++ {
		node := body.Child(uint(i))
		switch node.Kind() {
		case "call":
			e.collectRequire(node, source, ext)

		case "identifier":
			switch nodeText(node, source) {
			case "private":
				private = true
			case "public":
				private = false
			}

		case "method", "singleton_method":
			name := nodeText(node.ChildByFieldName("name"), source)
			if name == "" {
				continue
			}
			full := name
			if prefix != "" {
				full = prefix + "#" + name
			}
			vis := Exported
			if private {
				vis = Internal
			}
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       full,
				Kind:       KindFunction,
				Visibility: vis,
				Signature:  nodeText(node.ChildByFieldName("parameters"), source),
				StartLine:  startLine(node),
				EndLine:    endLine(node),
			})

		case "class":
			name := nodeText(node.ChildByFieldName("name"), source)
			if name == "" {
				continue
			}
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       name,
				Kind:       KindClass,
				Visibility: Exported,
				Signature:  nodeText(node.ChildByFieldName("superclass"), source),
				StartLine:  startLine(node),
				EndLine:    endLine(node),
			})
			if inner := node.ChildByFieldName("body"); inner != nil {
				e.collectBody(inner, source, ext, name)
			}

		case "module":
			name := nodeText(node.ChildByFieldName("name"), source)
			if name == "" {
				continue
			}
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       name,
				Kind:       KindModule,
				Visibility: Exported,
				StartLine:  startLine(node),
				EndLine:    endLine(node),
			})
			if inner := node.ChildByFieldName("body"); inner != nil {
				e.collectBody(inner, source, ext, name)
			}

		case "assignment":
			left := node.ChildByFieldName("left")
			if left == nil || left.Kind() != "constant" {
				continue
			}
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       nodeText(left, source),
				Kind:       KindConst,
				Visibility: Exported,
				StartLine:  startLine(node),
				EndLine:    endLine(node),
			})
		}
	}
}

// collectRequire records require and require_relative statements as imports.
// Only require_relative can resolve inside the project; plain require is
// kept for the external dependency list.
func (e *rubyExtractor) collectRequire(node *sitter.Node, source []byte, ext *Extraction) {
	method := nodeText(node.ChildByFieldName("method"), source)
	if method != "require" && method != "require_relative" {
		return
	}
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	str := findChildByType(args, "string")
	if str == nil {
		return
	}
	spec := strings.Trim(nodeText(str, source), "\"'")
	if spec == "" {
		return
	}
	if method == "require_relative" && !strings.HasPrefix(spec, ".") {
		spec = "./" + spec
	}
	ext.Imports = append(ext.Imports, Import{Specifier: spec})
}

// extractCalls records Const.method calls. Requires introduce no local
// bindings, so resolution against required files happens at index time by
// matching the constant name.
func (e *rubyExtractor) extractCalls(root *sitter.Node, source []byte, ext *Extraction) []Call {
	if len(ext.Imports) == 0 {
		return nil
	}

	var calls []Call
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		recv := n.ChildByFieldName("receiver")
		if recv == nil {
			return true
		}
		rootName := rootIdentifier(recv, source, "receiver")
		if rootName == "" || !isRubyConstant(rootName) {
			return true
		}
		// Skip calls on constants defined in this file.
		if ext.Definition(rootName) != nil {
			return true
		}
		calls = append(calls, Call{
			Expression:     rootName + "." + nodeText(n.ChildByFieldName("method"), source),
			Root:           rootName,
			Method:         nodeText(n.ChildByFieldName("method"), source),
			FromDefinition: enclosingDefinition(ext.Definitions, startLine(n)),
		})
		return true
	})
	return calls
}

func isRubyConstant(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
