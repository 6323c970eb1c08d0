// Package tsparse wraps tree-sitter parsing of TypeScript/JavaScript
// sources and provides the tree-walking helpers the analyzer is built on.
package tsparse

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// language is the shared TypeScript grammar. JavaScript sources parse with
// the same grammar; the TypeScript-only constructs simply never appear.
var language = sitter.NewLanguage(typescript.LanguageTypescript())

// SourceUnit is one resolved source file: absolute path, raw text, and its
// parsed syntax tree. Immutable once parsed. The owner must call Close to
// release the tree.
type SourceUnit struct {
	Path   string
	Source []byte
	Lines  []string

	tree *sitter.Tree
}

// ParseFile reads and parses a source file.
func ParseFile(path string) (*SourceUnit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(path, source)
}

// ParseSource parses source text already in memory.
func ParseSource(path string, source []byte) (*SourceUnit, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}

	return &SourceUnit{
		Path:   path,
		Source: source,
		Lines:  strings.Split(string(source), "\n"),
		tree:   tree,
	}, nil
}

// Root returns the root node of the unit's syntax tree.
func (u *SourceUnit) Root() *sitter.Node {
	return u.tree.RootNode()
}

// Text returns the source text covered by a node.
func (u *SourceUnit) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(u.Source[node.StartByte():node.EndByte()])
}

// Line returns a node's 1-based start line.
func (u *SourceUnit) Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// Close releases the parsed tree. The unit must not be used afterwards.
func (u *SourceUnit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

// WalkTree recursively walks a tree and calls the visitor for each node.
// Returning false from the visitor skips the node's children.
func WalkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		WalkTree(node.Child(uint(i)), visitor)
	}
}

// FindChildByKind finds the first direct child with the given kind.
func FindChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// FindChildrenByKind finds all direct children with the given kind.
func FindChildrenByKind(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}

// NamedChildren returns all named children of a node in order.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		results = append(results, node.NamedChild(uint(i)))
	}
	return results
}

// HasChildToken reports whether a node has a direct anonymous child with the
// given token text (e.g. the "?" optional marker on a property signature).
func HasChildToken(node *sitter.Node, token string) bool {
	if node == nil {
		return false
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// StringValue unwraps a string literal node to its inner text. Non-string
// nodes return their verbatim text.
func (u *SourceUnit) StringValue(node *sitter.Node) string {
	text := u.Text(node)
	if len(text) >= 2 {
		switch text[0] {
		case '\'', '"', '`':
			if text[len(text)-1] == text[0] {
				return text[1 : len(text)-1]
			}
		}
	}
	return text
}
