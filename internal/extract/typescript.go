package extract

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// componentTypeNames are type annotations that mark a value as a component.
var componentTypeNames = map[string]bool{
	"FC":                true,
	"FunctionComponent": true,
	"ComponentType":     true,
	"Element":           true,
}

// contextFactories and componentWrappers drive reclassification of
// call-initialized assignments. The callee may appear bare or as the member
// of a namespace (React.createContext).
var (
	contextFactories  = map[string]bool{"createContext": true}
	componentWrappers = map[string]bool{"memo": true, "forwardRef": true, "lazy": true}
)

// typeScriptExtractor extracts TypeScript and JavaScript files.
type typeScriptExtractor struct {
	tsLang  *sitter.Language
	tsxLang *sitter.Language
}

// NewTypeScriptExtractor creates the TypeScript/JavaScript extractor.
func NewTypeScriptExtractor() Extractor {
	return &typeScriptExtractor{
		tsLang:  sitter.NewLanguage(typescript.LanguageTypescript()),
		tsxLang: sitter.NewLanguage(typescript.LanguageTSX()),
	}
}

func (e *typeScriptExtractor) Language() string { return "typescript" }

func (e *typeScriptExtractor) Extensions() []string {
	return []string{"ts", "tsx", "js", "jsx"}
}

func (e *typeScriptExtractor) Extract(ctx context.Context, filePath string, source []byte) (*Extraction, error) {
	lang := e.tsLang
	switch strings.TrimPrefix(filepath.Ext(filePath), ".") {
	case "tsx", "jsx":
		lang = e.tsxLang
	}

	tree, err := parseTree(lang, "typescript", filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()

	ext := &Extraction{
		FilePath: filePath,
		Language: "typescript",
	}

	// Pass 1: declarations and imports, in source order.
	var exportedNames []string
	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "import_statement":
			if imp := e.parseImport(node, source, false); imp != nil {
				ext.Imports = append(ext.Imports, *imp)
			}
		case "export_statement":
			exportedNames = append(exportedNames, e.parseExport(node, source, ext)...)
		default:
			e.collectDeclaration(node, source, ext, Internal)
		}
	}

	// Export clauses (export { a, b }) flip visibility on declarations
	// collected earlier with Internal visibility.
	for _, name := range exportedNames {
		if def := ext.Definition(name); def != nil {
			def.Visibility = Exported
		}
	}

	ext.Calls = dedupeCalls(e.extractCalls(root, source, ext))
	return ext, nil
}

// parseExport handles one export_statement: declarations, export clauses,
// re-exports, and default exports. Returns names exported via clauses.
func (e *typeScriptExtractor) parseExport(node *sitter.Node, source []byte, ext *Extraction) []string {
	// export ... from "m" re-exports: the specifier string child is present.
	if src := findChildByType(node, "string"); src != nil {
		imp := Import{
			Specifier: strings.Trim(nodeText(src, source), "\"'"),
			ReExport:  true,
		}
		if clause := findChildByType(node, "export_clause"); clause != nil {
			for _, spec := range findChildrenByType(clause, "export_specifier") {
				if name := spec.ChildByFieldName("name"); name != nil {
					imp.Names = append(imp.Names, nodeText(name, source))
				}
			}
		}
		ext.Imports = append(ext.Imports, imp)
		return nil
	}

	isDefault := false
	var clauseNames []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "default":
			isDefault = true
		case "export_clause":
			for _, spec := range findChildrenByType(child, "export_specifier") {
				if name := spec.ChildByFieldName("name"); name != nil {
					clauseNames = append(clauseNames, nodeText(name, source))
				}
			}
		case "identifier":
			// export default someName: attach the marker to the existing
			// declaration rather than duplicating it.
			name := nodeText(child, source)
			if def := ext.Definition(name); def != nil {
				def.DefaultExport = true
				def.Visibility = Exported
			} else {
				ext.DefaultExport = name
			}
		default:
			if e.collectDeclaration(child, source, ext, Exported) && isDefault {
				ext.Definitions[len(ext.Definitions)-1].DefaultExport = true
			}
		}
	}
	return clauseNames
}

// collectDeclaration records a top-level declaration node. Returns true if
// at least one Definition was added.
func (e *typeScriptExtractor) collectDeclaration(node *sitter.Node, source []byte, ext *Extraction, vis Visibility) bool {
	switch node.Kind() {
	case "function_declaration", "function_signature", "generator_function_declaration":
		name := nodeText(node.ChildByFieldName("name"), source)
		if name == "" {
			return false
		}
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       e.functionKind(node, name),
			Visibility: vis,
			Signature:  e.functionSignature(node, source),
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})
		return true

	case "class_declaration", "abstract_class_declaration":
		name := nodeText(node.ChildByFieldName("name"), source)
		if name == "" {
			return false
		}
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       KindClass,
			Visibility: vis,
			Signature:  e.heritageSignature(node, source),
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})
		return true

	case "interface_declaration":
		name := nodeText(node.ChildByFieldName("name"), source)
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       KindInterface,
			Visibility: vis,
			Signature:  e.interfaceSignature(node, source),
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})
		return true

	case "type_alias_declaration":
		name := nodeText(node.ChildByFieldName("name"), source)
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       KindType,
			Visibility: vis,
			Signature:  nodeText(node.ChildByFieldName("value"), source),
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})
		return true

	case "enum_declaration":
		name := nodeText(node.ChildByFieldName("name"), source)
		ext.Definitions = append(ext.Definitions, Definition{
			Name:       name,
			Kind:       KindEnum,
			Visibility: vis,
			StartLine:  startLine(node),
			EndLine:    endLine(node),
		})
		return true

	case "lexical_declaration", "variable_declaration":
		added := false
		isConst := strings.HasPrefix(nodeText(node, source), "const")
		for _, decl := range findChildrenByType(node, "variable_declarator") {
			name := nodeText(decl.ChildByFieldName("name"), source)
			if name == "" {
				continue
			}
			kind, sig := e.declaratorKindAndSignature(decl, name, source, isConst)
			ext.Definitions = append(ext.Definitions, Definition{
				Name:       name,
				Kind:       kind,
				Visibility: vis,
				Signature:  sig,
				StartLine:  startLine(decl),
				EndLine:    endLine(decl),
			})
			added = true
		}
		return added
	}
	return false
}

// functionKind refines a declared function: component when it structurally
// returns markup, hook by naming convention, plain function otherwise.
func (e *typeScriptExtractor) functionKind(node *sitter.Node, name string) Kind {
	if containsJSX(node) {
		return KindComponent
	}
	return refineCallableKind(name)
}

// declaratorKindAndSignature classifies a variable_declarator and builds its
// signature from the type annotation or initializer.
func (e *typeScriptExtractor) declaratorKindAndSignature(decl *sitter.Node, name string, source []byte, isConst bool) (Kind, string) {
	baseKind := KindVariable
	if isConst {
		baseKind = KindConst
	}

	var sig string
	if typeNode := decl.ChildByFieldName("type"); typeNode != nil {
		sig = strings.TrimSpace(strings.TrimPrefix(nodeText(typeNode, source), ":"))
		if hasComponentType(typeNode, source) {
			return KindComponent, sig
		}
	}

	value := decl.ChildByFieldName("value")
	if value == nil {
		return baseKind, sig
	}

	switch value.Kind() {
	case "arrow_function", "function", "function_expression":
		if sig == "" {
			sig = e.arrowSignature(value, source)
		}
		// Markup wins over the use- naming convention: a hook is an
		// otherwise ordinary callable.
		if containsJSX(value) {
			return KindComponent, sig
		}
		if isHookName(name) {
			return KindHook, sig
		}
		return KindFunction, sig

	case "call_expression":
		// createContext(...) and memo/forwardRef/lazy(...) reclassify the
		// assignment; any other call keeps the produced value's kind.
		callee := calleeName(value, source)
		switch {
		case contextFactories[callee]:
			return KindContext, sig
		case componentWrappers[callee]:
			return KindComponent, sig
		}
		return baseKind, sig
	}
	return baseKind, sig
}

// calleeName returns the called identifier, unwrapping one namespace level
// so both createContext(...) and React.createContext(...) match.
func calleeName(call *sitter.Node, source []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil && call.ChildCount() > 0 {
		fn = call.Child(0)
	}
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return nodeText(fn, source)
	case "member_expression":
		return nodeText(fn.ChildByFieldName("property"), source)
	}
	return ""
}

// containsJSX reports whether node or any descendant is a JSX construct.
func containsJSX(node *sitter.Node) bool {
	found := false
	walkTree(node, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			found = true
		}
		return !found
	})
	return found
}

// hasComponentType reports whether a type annotation names one of the
// recognized component type aliases, bare or as ns.Alias.
func hasComponentType(typeNode *sitter.Node, source []byte) bool {
	found := false
	walkTree(typeNode, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "type_identifier":
			if componentTypeNames[nodeText(n, source)] {
				found = true
			}
		case "nested_type_identifier":
			if name := n.ChildByFieldName("name"); name != nil && componentTypeNames[nodeText(name, source)] {
				found = true
			}
		}
		return !found
	})
	return found
}

func (e *typeScriptExtractor) functionSignature(node *sitter.Node, source []byte) string {
	params := nodeText(node.ChildByFieldName("parameters"), source)
	if params == "" {
		params = "()"
	}
	if ret := nodeText(node.ChildByFieldName("return_type"), source); ret != "" {
		return params + " " + ret
	}
	return params
}

func (e *typeScriptExtractor) arrowSignature(node *sitter.Node, source []byte) string {
	params := nodeText(node.ChildByFieldName("parameters"), source)
	if params == "" {
		if p := node.ChildByFieldName("parameter"); p != nil {
			params = "(" + nodeText(p, source) + ")"
		} else {
			params = "()"
		}
	}
	if ret := nodeText(node.ChildByFieldName("return_type"), source); ret != "" {
		return params + " " + ret + " => ..."
	}
	return params + " => ..."
}

func (e *typeScriptExtractor) heritageSignature(node *sitter.Node, source []byte) string {
	if heritage := findChildByType(node, "class_heritage"); heritage != nil {
		return strings.TrimSpace(nodeText(heritage, source))
	}
	return ""
}

// interfaceSignature summarizes an interface body as { field: T; ... },
// capped at five fields to keep signatures readable.
func (e *typeScriptExtractor) interfaceSignature(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return "{}"
	}

	var fields []string
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		switch child.Kind() {
		case "property_signature", "method_signature":
			name := nodeText(child.ChildByFieldName("name"), source)
			typ := nodeText(child.ChildByFieldName("type"), source)
			fields = append(fields, name+typ)
		}
		if len(fields) >= 5 {
			fields = append(fields, "...")
			break
		}
	}

	if len(fields) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(fields, "; ") + " }"
}

// parseImport converts an import_statement into an Import.
func (e *typeScriptExtractor) parseImport(node *sitter.Node, source []byte, reExport bool) *Import {
	src := findChildByType(node, "string")
	if src == nil {
		return nil
	}
	imp := &Import{
		Specifier: strings.Trim(nodeText(src, source), "\"'"),
		ReExport:  reExport,
	}

	if clause := findChildByType(node, "import_clause"); clause != nil {
		collectImportNames(clause, source, &imp.Names)
	}
	return imp
}

func collectImportNames(node *sitter.Node, source []byte, names *[]string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "identifier":
			*names = append(*names, nodeText(child, source))
		case "named_imports":
			for _, spec := range findChildrenByType(child, "import_specifier") {
				if name := spec.ChildByFieldName("name"); name != nil {
					*names = append(*names, nodeText(name, source))
				}
			}
		case "namespace_import":
			if id := findChildByType(child, "identifier"); id != nil {
				*names = append(*names, "* as "+nodeText(id, source))
			}
		default:
			collectImportNames(child, source, names)
		}
	}
}

// extractCalls finds call expressions whose callee traces to an import
// binding, tagging each with the enclosing top-level definition.
func (e *typeScriptExtractor) extractCalls(root *sitter.Node, source []byte, ext *Extraction) []Call {
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
		if fn == nil && n.ChildCount() > 0 {
			fn = n.Child(0)
		}
		if fn == nil {
			return true
		}

		var rootName, method string
		switch fn.Kind() {
		case "identifier":
			rootName = nodeText(fn, source)
			method = rootName
		case "member_expression":
			rootName = rootIdentifier(fn.ChildByFieldName("object"), source, "object")
			method = nodeText(fn.ChildByFieldName("property"), source)
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

// importBindings returns the set of local names introduced by imports.
func importBindings(imports []Import) map[string]bool {
	bindings := make(map[string]bool)
	for _, imp := range imports {
		if imp.ReExport {
			continue
		}
		for _, name := range imp.Names {
			bindings[strings.TrimPrefix(name, "* as ")] = true
		}
	}
	return bindings
}

// enclosingDefinition returns the name of the innermost definition whose
// span contains the given line, or "" for module-level code.
func enclosingDefinition(defs []Definition, line int) string {
	name := ""
	innermost := -1
	for i := range defs {
		if line >= defs[i].StartLine && line <= defs[i].EndLine && defs[i].StartLine > innermost {
			innermost = defs[i].StartLine
			name = defs[i].Name
		}
	}
	return name
}
