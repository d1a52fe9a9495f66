package extract

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonExtractor extracts Python files. Without an export keyword,
// visibility follows convention: a leading underscore is internal. When the
// module declares __all__, only the listed names are exported.
type pythonExtractor struct {
	lang *sitter.Language
}

// NewPythonExtractor creates the Python extractor.
func NewPythonExtractor() Extractor {
	return &pythonExtractor{lang: sitter.NewLanguage(tree_sitter_python.Language())}
}

func (e *pythonExtractor) Language() string     { return "python" }
func (e *pythonExtractor) Extensions() []string { return []string{"py"} }

func (e *pythonExtractor) Extract(ctx context.Context, filePath string, source []byte) (*Extraction, error) {
	tree, err := parseTree(e.lang, "python", filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	ext := &Extraction{FilePath: filePath, Language: "python"}

	var allList []string
	hasAll := false

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "import_statement", "import_from_statement":
			if imp := e.parseImport(node, source); imp != nil {
				ext.Imports = append(ext.Imports, *imp)
			}

		case "function_definition":
			e.collectFunction(node, source, ext)

		case "class_definition":
			e.collectClass(node, source, ext)

		case "decorated_definition":
			if def := node.ChildByFieldName("definition"); def != nil {
				switch def.Kind() {
				case "function_definition":
					e.collectFunction(def, source, ext)
				case "class_definition":
					e.collectClass(def, source, ext)
				}
			}

		case "expression_statement":
			if names, ok := e.parseAllAssignment(node, source); ok {
				allList = names
				hasAll = true
				continue
			}
			e.collectAssignment(node, source, ext)
		}
	}

	if hasAll {
		allowed := make(map[string]bool, len(allList))
		for _, name := range allList {
			allowed[name] = true
		}
		for i := range ext.Definitions {
			if allowed[ext.Definitions[i].Name] {
				ext.Definitions[i].Visibility = Exported
			} else {
				ext.Definitions[i].Visibility = Internal
			}
		}
	}

	ext.Calls = dedupeCalls(e.extractCalls(root, source, ext))
	return ext, nil
}

func (e *pythonExtractor) collectFunction(node *sitter.Node, source []byte, ext *Extraction) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return
	}
	params := nodeText(node.ChildByFieldName("parameters"), source)
	sig := params
	if ret := nodeText(node.ChildByFieldName("return_type"), source); ret != "" {
		sig = params + " -> " + ret
	}
	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       KindFunction,
		Visibility: pythonVisibility(name),
		Signature:  sig,
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	})
}

func (e *pythonExtractor) collectClass(node *sitter.Node, source []byte, ext *Extraction) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return
	}
	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       KindClass,
		Visibility: pythonVisibility(name),
		Signature:  nodeText(node.ChildByFieldName("superclasses"), source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	})
}

// collectAssignment records module-level name = value assignments. ALL_CAPS
// names are constants by convention.
func (e *pythonExtractor) collectAssignment(node *sitter.Node, source []byte, ext *Extraction) {
	assign := findChildByType(node, "assignment")
	if assign == nil {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return
	}
	name := nodeText(left, source)
	kind := KindVariable
	if name == strings.ToUpper(name) && strings.ContainsAny(name, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		kind = KindConst
	}
	ext.Definitions = append(ext.Definitions, Definition{
		Name:       name,
		Kind:       kind,
		Visibility: pythonVisibility(name),
		Signature:  strings.TrimSpace(strings.TrimPrefix(nodeText(assign.ChildByFieldName("type"), source), ":")),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	})
}

// parseAllAssignment detects __all__ = [...] and returns the listed names.
func (e *pythonExtractor) parseAllAssignment(node *sitter.Node, source []byte) ([]string, bool) {
	assign := findChildByType(node, "assignment")
	if assign == nil {
		return nil, false
	}
	left := assign.ChildByFieldName("left")
	if left == nil || nodeText(left, source) != "__all__" {
		return nil, false
	}
	right := assign.ChildByFieldName("right")
	if right == nil {
		return nil, true
	}
	var names []string
	walkTree(right, func(n *sitter.Node) bool {
		if n.Kind() == "string_content" {
			names = append(names, nodeText(n, source))
		}
		return true
	})
	return names, true
}

// parseImport handles both import m / import m as x and from m import a, b.
func (e *pythonExtractor) parseImport(node *sitter.Node, source []byte) *Import {
	switch node.Kind() {
	case "import_statement":
		// import a.b.c [as x]: binding is the alias or the first segment.
		imp := &Import{}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			switch child.Kind() {
			case "dotted_name":
				spec := nodeText(child, source)
				if imp.Specifier == "" {
					imp.Specifier = spec
				}
				imp.Names = append(imp.Names, strings.SplitN(spec, ".", 2)[0])
			case "aliased_import":
				name := nodeText(child.ChildByFieldName("name"), source)
				alias := nodeText(child.ChildByFieldName("alias"), source)
				if imp.Specifier == "" {
					imp.Specifier = name
				}
				imp.Names = append(imp.Names, alias)
			}
		}
		if imp.Specifier == "" {
			return nil
		}
		return imp

	case "import_from_statement":
		module := node.ChildByFieldName("module_name")
		if module == nil {
			return nil
		}
		imp := &Import{Specifier: nodeText(module, source)}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			if child.StartByte() <= module.StartByte() {
				continue
			}
			switch child.Kind() {
			case "dotted_name":
				imp.Names = append(imp.Names, nodeText(child, source))
			case "aliased_import":
				imp.Names = append(imp.Names, nodeText(child.ChildByFieldName("alias"), source))
			case "wildcard_import":
				imp.Names = append(imp.Names, "*")
			}
		}
		return imp
	}
	return nil
}

func (e *pythonExtractor) extractCalls(root *sitter.Node, source []byte, ext *Extraction) []Call {
	bindings := importBindings(ext.Imports)
	if len(bindings) == 0 {
		return nil
	}

	var calls []Call
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() != "call" {
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
		case "attribute":
			rootName = rootIdentifier(fn.ChildByFieldName("object"), source, "object")
			method = nodeText(fn.ChildByFieldName("attribute"), source)
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

func pythonVisibility(name string) Visibility {
	if strings.HasPrefix(name, "_") {
		return Internal
	}
	return Exported
}
