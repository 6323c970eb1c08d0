package analyzer

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// DefaultFunction is the designated parameter-declaration function name.
const DefaultFunction = "getScriptParams"

// DefaultCommentWindow is how many lines above a call a fallback type-shape
// comment may appear.
const DefaultCommentWindow = 5

// ScanOptions configure the declaration site scanner.
type ScanOptions struct {
	// Function is the callee identifier that marks a declaration call.
	Function string
	// CommentWindow bounds the backward comment search, in lines.
	CommentWindow int
}

func (o *ScanOptions) fill() {
	if o.Function == "" {
		o.Function = DefaultFunction
	}
	if o.CommentWindow <= 0 {
		o.CommentWindow = DefaultCommentWindow
	}
}

// Scanner walks one file's syntax tree and assembles a declaration call
// record for every parameter-declaring call site.
type Scanner struct {
	checker  Checker
	expander *Expander
	opts     ScanOptions
}

// NewScanner creates a scanner over the given checker. Pass NoopChecker
// for textual-fallback extraction.
func NewScanner(checker Checker, opts ScanOptions) *Scanner {
	opts.fill()
	return &Scanner{
		checker:  checker,
		expander: NewExpander(checker),
		opts:     opts,
	}
}

// ScanUnit returns the declaration calls found in a unit, in source order.
func (s *Scanner) ScanUnit(unit *tsparse.SourceUnit) []DeclarationCall {
	var calls []DeclarationCall
	if unit == nil {
		return calls
	}

	tsparse.WalkTree(unit.Root(), func(n *sitter.Node) bool {
		if n.Kind() != "call_expression" {
			return true
		}
		callee := n.ChildByFieldName("function")
		if callee == nil || callee.Kind() != "identifier" || unit.Text(callee) != s.opts.Function {
			return true
		}
		calls = append(calls, s.declarationCall(unit, n))
		return true
	})

	return calls
}

func (s *Scanner) declarationCall(unit *tsparse.SourceUnit, call *sitter.Node) DeclarationCall {
	record := DeclarationCall{
		File: unit.Path,
		Line: unit.Line(call),
	}

	if typeArg := firstTypeArgument(call); typeArg != nil {
		rows := s.expander.Expand(unit, typeArg)
		if len(rows) > 0 {
			record.Fields = rows
		} else {
			// No enumerable members; keep the written type verbatim.
			record.RawType = unit.Text(typeArg)
		}
	} else if shape, ok := nearestShapeComment(unit, record.Line, s.opts.CommentWindow); ok {
		record.RawType = shape
	}

	record.Defaults = s.defaultValues(unit, call)
	return record
}

func firstTypeArgument(call *sitter.Node) *sitter.Node {
	typeArgs := call.ChildByFieldName("type_arguments")
	if typeArgs == nil || typeArgs.NamedChildCount() == 0 {
		return nil
	}
	return typeArgs.NamedChild(0)
}

// defaultValues evaluates each property initializer of an object-literal
// first argument. Non-object-literal first arguments produce no defaults.
func (s *Scanner) defaultValues(unit *tsparse.SourceUnit, call *sitter.Node) []DefaultValue {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	object := args.NamedChild(0)
	if object.Kind() != "object" {
		return nil
	}

	var defaults []DefaultValue
	index := make(map[string]int)

	record := func(name, value string) {
		if i, ok := index[name]; ok {
			// Later duplicate keys overwrite the value, keeping first position.
			defaults[i].Value = value
			return
		}
		index[name] = len(defaults)
		defaults = append(defaults, DefaultValue{Name: name, Value: value})
	}

	for _, prop := range tsparse.NamedChildren(object) {
		switch prop.Kind() {
		case "pair":
			key := prop.ChildByFieldName("key")
			value := prop.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			record(unit.StringValue(key), FoldConstant(unit, value, s.checker))

		case "shorthand_property_identifier":
			record(unit.Text(prop), FoldConstant(unit, prop, s.checker))
		}
	}

	return defaults
}
