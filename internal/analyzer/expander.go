package analyzer

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// Expander flattens a structural type descriptor into field rows. It is
// written against the Checker interface only, so the textual-only
// NoopChecker substitutes cleanly (type references then degrade to
// unknown).
type Expander struct {
	checker Checker
}

// NewExpander creates an expander over the given checker.
func NewExpander(checker Checker) *Expander {
	return &Expander{checker: checker}
}

// Expand returns the flat field list of a type expression, or nil when the
// type has no enumerable members. Expansion of nested and aliased type
// definitions is guarded by a visited set keyed on a type-identity token,
// so cyclic type graphs contribute each definition once.
func (e *Expander) Expand(unit *tsparse.SourceUnit, typeNode *sitter.Node) []FieldRow {
	var rows []FieldRow
	seen := make(map[string]bool)
	e.expand(unit, typeNode, make(map[string]bool), seen, &rows)
	return rows
}

func typeToken(unit *tsparse.SourceUnit, node *sitter.Node) string {
	return fmt.Sprintf("%s:%d", unit.Path, node.StartByte())
}

func (e *Expander) expand(unit *tsparse.SourceUnit, node *sitter.Node, visited, seen map[string]bool, rows *[]FieldRow) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "object_type", "interface_body":
		e.expandMembers(unit, node, visited, seen, rows)

	case "parenthesized_type":
		e.expand(unit, firstNamedChild(node), visited, seen, rows)

	case "intersection_type":
		for _, part := range tsparse.NamedChildren(node) {
			e.expand(unit, part, visited, seen, rows)
		}

	case "type_identifier", "generic_type":
		name := typeRefName(unit, node)
		declUnit, decl, ok := e.checker.ResolveType(name)
		if !ok {
			return
		}
		token := typeToken(declUnit, decl)
		if visited[token] {
			// Already being expanded; a cyclic reference contributes nothing.
			return
		}
		visited[token] = true
		defer delete(visited, token)
		e.expandDeclaration(declUnit, decl, visited, seen, rows)

	case "interface_declaration", "type_alias_declaration":
		e.expandDeclaration(unit, node, visited, seen, rows)
	}
}

func (e *Expander) expandDeclaration(unit *tsparse.SourceUnit, decl *sitter.Node, visited, seen map[string]bool, rows *[]FieldRow) {
	switch decl.Kind() {
	case "interface_declaration":
		if body := decl.ChildByFieldName("body"); body != nil {
			e.expandMembers(unit, body, visited, seen, rows)
		}
		// Inherited members come after the interface's own, so first-wins
		// deduplication keeps overriding declarations.
		if extends := tsparse.FindChildByKind(decl, "extends_type_clause"); extends != nil {
			for _, base := range tsparse.NamedChildren(extends) {
				e.expand(unit, base, visited, seen, rows)
			}
		}

	case "type_alias_declaration":
		e.expand(unit, decl.ChildByFieldName("value"), visited, seen, rows)
	}
}

func (e *Expander) expandMembers(unit *tsparse.SourceUnit, body *sitter.Node, visited, seen map[string]bool, rows *[]FieldRow) {
	for _, member := range tsparse.NamedChildren(body) {
		switch member.Kind() {
		case "property_signature":
			row, ok := e.propertyRow(unit, member, visited)
			if !ok || seen[row.Name] {
				continue
			}
			seen[row.Name] = true
			*rows = append(*rows, row)

		case "index_signature":
			row, ok := e.indexSignatureRow(unit, member)
			if !ok || seen[row.Name] {
				continue
			}
			seen[row.Name] = true
			*rows = append(*rows, row)
		}
	}
}

func (e *Expander) propertyRow(unit *tsparse.SourceUnit, member *sitter.Node, visited map[string]bool) (FieldRow, bool) {
	nameNode := member.ChildByFieldName("name")
	if nameNode == nil {
		return FieldRow{}, false
	}

	kind := KindUnknown
	var accepted []string
	if annotation := member.ChildByFieldName("type"); annotation != nil {
		kind, accepted = e.classify(unit, firstNamedChild(annotation), visited)
	}

	info := ExtractCommentInfo(unit, member)
	if info.Sensitive && kind == KindString {
		// Sensitivity only ever replaces a string classification.
		kind = KindPassword
	}

	return FieldRow{
		Name:           unit.StringValue(nameNode),
		Type:           kind,
		Optional:       tsparse.HasChildToken(member, "?"),
		Description:    info.Description,
		Example:        info.Example,
		AcceptedValues: accepted,
	}, true
}

// indexSignatureRow emits the synthetic row for a string- or number-keyed
// index signature: named "[key: <kind>]", required, empty description.
func (e *Expander) indexSignatureRow(unit *tsparse.SourceUnit, member *sitter.Node) (FieldRow, bool) {
	keyType := member.ChildByFieldName("index_type")
	if keyType == nil {
		return FieldRow{}, false
	}
	keyKind := strings.TrimSpace(unit.Text(keyType))
	if keyKind != KindString && keyKind != KindNumber {
		return FieldRow{}, false
	}

	kind := KindUnknown
	if annotation := member.ChildByFieldName("type"); annotation != nil {
		kind, _ = e.classify(unit, firstNamedChild(annotation), make(map[string]bool))
	}

	return FieldRow{
		Name: fmt.Sprintf("[key: %s]", keyKind),
		Type: kind,
	}, true
}

// classify recursively reduces a type expression to a primitive
// classification and, for unions of literals, the accepted literal values.
// Union branches reduce to the sorted, deduplicated union of their
// classifications; any irreducible branch degrades the whole union to
// unknown.
func (e *Expander) classify(unit *tsparse.SourceUnit, node *sitter.Node, visited map[string]bool) (string, []string) {
	if node == nil {
		return KindUnknown, nil
	}

	switch node.Kind() {
	case "predefined_type":
		switch unit.Text(node) {
		case "string":
			return KindString, nil
		case "number":
			return KindNumber, nil
		case "boolean":
			return KindBoolean, nil
		}
		return KindUnknown, nil

	case "literal_type":
		return classifyLiteral(unit, node)

	case "parenthesized_type":
		return e.classify(unit, firstNamedChild(node), visited)

	case "union_type":
		return e.classifyUnion(unit, node, visited)

	case "type_identifier", "generic_type":
		name := typeRefName(unit, node)
		declUnit, decl, ok := e.checker.ResolveType(name)
		if !ok || decl.Kind() != "type_alias_declaration" {
			return KindUnknown, nil
		}
		token := typeToken(declUnit, decl)
		if visited[token] {
			return KindUnknown, nil
		}
		visited[token] = true
		defer delete(visited, token)
		// The value field is the aliased type node itself.
		return e.classify(declUnit, decl.ChildByFieldName("value"), visited)
	}

	return KindUnknown, nil
}

// classifyLiteral maps a literal subtype to its runtime kind and value.
func classifyLiteral(unit *tsparse.SourceUnit, node *sitter.Node) (string, []string) {
	inner := firstNamedChild(node)
	if inner == nil {
		return KindUnknown, nil
	}

	switch inner.Kind() {
	case "string":
		return KindString, []string{unit.StringValue(inner)}
	case "number":
		return KindNumber, []string{unit.Text(inner)}
	case "true", "false":
		return KindBoolean, []string{unit.Text(inner)}
	case "unary_expression":
		return KindNumber, []string{unit.Text(inner)}
	}
	return KindUnknown, nil
}

func (e *Expander) classifyUnion(unit *tsparse.SourceUnit, node *sitter.Node, visited map[string]bool) (string, []string) {
	branches := flattenUnion(node)

	kinds := make(map[string]bool)
	var values []string
	allLiteral := true

	for _, branch := range branches {
		kind, branchValues := e.classify(unit, branch, visited)
		if kind == KindUnknown {
			return KindUnknown, nil
		}
		for _, k := range strings.Split(kind, " | ") {
			kinds[k] = true
		}
		if branchValues == nil {
			allLiteral = false
		} else {
			values = append(values, branchValues...)
		}
	}

	sorted := make([]string, 0, len(kinds))
	for k := range kinds {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	if !allLiteral {
		values = nil
	} else {
		values = sortedUnique(values)
	}
	return strings.Join(sorted, " | "), values
}

func flattenUnion(node *sitter.Node) []*sitter.Node {
	var branches []*sitter.Node
	for _, child := range tsparse.NamedChildren(node) {
		if child.Kind() == "union_type" {
			branches = append(branches, flattenUnion(child)...)
		} else {
			branches = append(branches, child)
		}
	}
	return branches
}

func sortedUnique(values []string) []string {
	sort.Strings(values)
	var out []string
	for _, v := range values {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}

// typeRefName returns the referenced type name of a type_identifier or a
// generic_type's base name.
func typeRefName(unit *tsparse.SourceUnit, node *sitter.Node) string {
	if node.Kind() == "generic_type" {
		if name := node.ChildByFieldName("name"); name != nil {
			return unit.Text(name)
		}
	}
	return unit.Text(node)
}
