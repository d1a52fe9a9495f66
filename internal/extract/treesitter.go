package extract

import (
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// parseTree parses source with the given grammar and returns the tree.
// Callers must Close() the returned tree.
func parseTree(language *sitter.Language, lang, filePath string, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s file %s", ErrParse, lang, filePath)
	}
	return tree, nil
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// startLine returns the 1-indexed start line of a node.
func startLine(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// endLine returns the 1-indexed end line of a node.
func endLine(node *sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for
// each node. Returning false from the visitor prunes the subtree.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// rootIdentifier returns the leading identifier of a (possibly nested)
// member/attribute expression, e.g. "a" for a.b.c.
func rootIdentifier(node *sitter.Node, source []byte, objectField string) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "type_identifier", "constant":
			return nodeText(node, source)
		}
		obj := node.ChildByFieldName(objectField)
		if obj == nil {
			return ""
		}
		node = obj
	}
	return ""
}

// isHookName reports whether name follows the use+Capital hook convention.
func isHookName(name string) bool {
	if !strings.HasPrefix(name, "use") || len(name) < 4 {
		return false
	}
	return unicode.IsUpper(rune(name[3]))
}

// refineCallableKind applies the hook naming refinement to a callable that
// would otherwise be an ordinary function.
func refineCallableKind(name string) Kind {
	if isHookName(name) {
		return KindHook
	}
	return KindFunction
}

// dedupeCalls removes duplicate (root, method) pairs while preserving the
// first-seen order.
func dedupeCalls(calls []Call) []Call {
	seen := make(map[string]bool, len(calls))
	out := calls[:0]
	for _, c := range calls {
		key := c.Root + "\x00" + c.Method
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
