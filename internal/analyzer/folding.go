package analyzer

import (
	"math"
	"strconv"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// maxFoldDepth caps constant-folding recursion. Beyond the cap the
// evaluator returns the verbatim source substring, a normal termination
// path rather than an error.
const maxFoldDepth = 5

// FoldConstant resolves an initializer expression to its literal textual
// representation, or the verbatim source substring when it cannot be
// reduced. Identifier resolution goes through the checker; a NoopChecker
// leaves identifiers verbatim.
func FoldConstant(unit *tsparse.SourceUnit, node *sitter.Node, checker Checker) string {
	return fold(unit, node, checker, 0)
}

func fold(unit *tsparse.SourceUnit, node *sitter.Node, checker Checker, depth int) string {
	if node == nil {
		return ""
	}
	verbatim := unit.Text(node)
	if depth >= maxFoldDepth {
		return verbatim
	}

	switch node.Kind() {
	case "string", "template_string":
		return verbatim

	case "number", "true", "false", "null", "undefined":
		return verbatim

	case "parenthesized_expression":
		if inner := firstNamedChild(node); inner != nil {
			return fold(unit, inner, checker, depth+1)
		}
		return verbatim

	case "binary_expression":
		if result, ok := foldBinary(unit, node, checker, depth); ok {
			return result
		}
		return verbatim

	case "unary_expression":
		operator := node.ChildByFieldName("operator")
		operand := node.ChildByFieldName("argument")
		if operator == nil || operand == nil || unit.Text(operator) != "-" {
			return verbatim
		}
		reduced := fold(unit, operand, checker, depth+1)
		if _, err := strconv.ParseFloat(reduced, 64); err != nil {
			return verbatim
		}
		return "-" + reduced

	case "identifier", "shorthand_property_identifier":
		if resolved, ok := foldIdentifier(unit, node, checker, depth); ok {
			return resolved
		}
		return verbatim
	}

	return verbatim
}

// foldBinary reduces both operands and applies the arithmetic operator only
// when both reduce to numeric text. Division or modulo by zero is treated
// as non-reducible.
func foldBinary(unit *tsparse.SourceUnit, node *sitter.Node, checker Checker, depth int) (string, bool) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	operator := node.ChildByFieldName("operator")
	if left == nil || right == nil || operator == nil {
		return "", false
	}

	lv, err := strconv.ParseFloat(fold(unit, left, checker, depth+1), 64)
	if err != nil {
		return "", false
	}
	rv, err := strconv.ParseFloat(fold(unit, right, checker, depth+1), 64)
	if err != nil {
		return "", false
	}

	var result float64
	switch unit.Text(operator) {
	case "+":
		result = lv + rv
	case "-":
		result = lv - rv
	case "*":
		result = lv * rv
	case "/":
		if rv == 0 {
			return "", false
		}
		result = lv / rv
	case "%":
		if rv == 0 {
			return "", false
		}
		result = math.Mod(lv, rv)
	default:
		return "", false
	}

	return strconv.FormatFloat(result, 'f', -1, 64), true
}

// foldIdentifier renders an identifier's statically known literal type when
// the checker reports one, otherwise recurses into the declaring
// initializer, consuming one unit of depth. Resolution panics are swallowed
// and fall through to the verbatim rule.
func foldIdentifier(unit *tsparse.SourceUnit, node *sitter.Node, checker Checker, depth int) (result string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			result, ok = "", false
		}
	}()

	name := unit.Text(node)

	if text, found := checker.LiteralTypeText(name); found && text != name && text != "any" {
		return text, true
	}

	declUnit, initializer, found := checker.ConstInitializer(name)
	if !found {
		return "", false
	}
	return fold(declUnit, initializer, checker, depth+1), true
}
