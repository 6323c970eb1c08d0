package analyzer

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// Checker is the type-checking facility the expander and the constant
// folder are written against. The full implementation resolves names over
// the whole discovered file set; NoopChecker degrades every lookup to a
// miss, leaving the textual fallback paths in charge.
type Checker interface {
	// ResolveType resolves a type name to its declaration node
	// (interface_declaration or type_alias_declaration).
	ResolveType(name string) (*tsparse.SourceUnit, *sitter.Node, bool)

	// ConstInitializer resolves an identifier to the initializer
	// expression of its declaring variable declarator.
	ConstInitializer(name string) (*tsparse.SourceUnit, *sitter.Node, bool)

	// LiteralTypeText returns the statically known literal type of an
	// identifier rendered as text, when narrower than the identifier
	// itself.
	LiteralTypeText(name string) (string, bool)
}

// NoopChecker is the null-object Checker.
type NoopChecker struct{}

func (NoopChecker) ResolveType(string) (*tsparse.SourceUnit, *sitter.Node, bool) {
	return nil, nil, false
}

func (NoopChecker) ConstInitializer(string) (*tsparse.SourceUnit, *sitter.Node, bool) {
	return nil, nil, false
}

func (NoopChecker) LiteralTypeText(string) (string, bool) { return "", false }

type typeDecl struct {
	unit *tsparse.SourceUnit
	node *sitter.Node
}

type valueDecl struct {
	unit       *tsparse.SourceUnit
	declarator *sitter.Node
	isConst    bool
}

// projectChecker indexes type and value declarations across a discovered
// file set. Names live in one flat namespace; the first declaration of a
// name wins.
type projectChecker struct {
	types  map[string]typeDecl
	values map[string]valueDecl
}

// NewProjectChecker builds a checker over the given units. Construction is
// best-effort: a panic while indexing one unit surfaces as an error so the
// caller can degrade to NoopChecker.
func NewProjectChecker(units []*tsparse.SourceUnit) (checker Checker, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("checker construction failed: %v", r)
		}
	}()

	pc := &projectChecker{
		types:  make(map[string]typeDecl),
		values: make(map[string]valueDecl),
	}

	for _, unit := range units {
		if unit == nil {
			continue
		}
		pc.indexUnit(unit)
	}

	return pc, nil
}

func (pc *projectChecker) indexUnit(unit *tsparse.SourceUnit) {
	tsparse.WalkTree(unit.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "interface_declaration", "type_alias_declaration":
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				return true
			}
			name := unit.Text(nameNode)
			if _, exists := pc.types[name]; !exists {
				pc.types[name] = typeDecl{unit: unit, node: n}
			}

		case "lexical_declaration", "variable_declaration":
			isConst := tsparse.FindChildByKind(n, "const") != nil
			for _, decl := range tsparse.FindChildrenByKind(n, "variable_declarator") {
				nameNode := decl.ChildByFieldName("name")
				if nameNode == nil || nameNode.Kind() != "identifier" {
					continue
				}
				name := unit.Text(nameNode)
				if _, exists := pc.values[name]; !exists {
					pc.values[name] = valueDecl{unit: unit, declarator: decl, isConst: isConst}
				}
			}
		}
		return true
	})
}

func (pc *projectChecker) ResolveType(name string) (*tsparse.SourceUnit, *sitter.Node, bool) {
	decl, ok := pc.types[name]
	if !ok {
		return nil, nil, false
	}
	return decl.unit, decl.node, true
}

func (pc *projectChecker) ConstInitializer(name string) (*tsparse.SourceUnit, *sitter.Node, bool) {
	decl, ok := pc.values[name]
	if !ok {
		return nil, nil, false
	}
	value := decl.declarator.ChildByFieldName("value")
	if value == nil {
		return nil, nil, false
	}
	return decl.unit, value, true
}

// LiteralTypeText reports a literal type for identifiers declared with an
// explicit literal annotation (`const m: 'fast' = ...`), an `as const`
// assertion, or a direct literal const initializer. Computed initializers
// miss here and are handled by initializer recursion in the folder.
func (pc *projectChecker) LiteralTypeText(name string) (string, bool) {
	decl, ok := pc.values[name]
	if !ok || !decl.isConst {
		return "", false
	}

	if annotation := decl.declarator.ChildByFieldName("type"); annotation != nil {
		if inner := firstNamedChild(annotation); inner != nil && inner.Kind() == "literal_type" {
			return decl.unit.Text(inner), true
		}
	}

	value := decl.declarator.ChildByFieldName("value")
	if value == nil {
		return "", false
	}

	if value.Kind() == "as_expression" {
		expr := value.NamedChild(0)
		// The const assertion keyword is an anonymous token, not a type node.
		isConstAssertion := tsparse.FindChildByKind(value, "const") != nil
		if expr != nil && isConstAssertion && isLiteralExpr(expr.Kind()) {
			return decl.unit.Text(expr), true
		}
		return "", false
	}

	if isLiteralExpr(value.Kind()) {
		return decl.unit.Text(value), true
	}
	return "", false
}

func isLiteralExpr(kind string) bool {
	switch kind {
	case "string", "number", "true", "false":
		return true
	}
	return false
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil || node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}
