// Package analyzer implements static extraction of script parameter
// schemas: module graph resolution, declaration-site scanning, structural
// type expansion, comment metadata parsing, and bounded constant folding.
package analyzer

// Field type classifications. A union of primitives renders as the sorted
// joined form, e.g. "number | string".
const (
	KindString   = "string"
	KindNumber   = "number"
	KindBoolean  = "boolean"
	KindPassword = "password"
	KindUnknown  = "unknown"
)

// FieldRow is one parameter's resolved shape.
type FieldRow struct {
	// Name is unique within a declaration's field list; later duplicates
	// are dropped, first occurrence wins.
	Name string
	// Type is the classification: string, number, boolean, password,
	// unknown, or a sorted union of primitives.
	Type        string
	Optional    bool
	Description string
	Example     string
	// AcceptedValues holds the sorted, deduplicated literal values of a
	// union-of-literals type. Nil for non-literal-union types.
	AcceptedValues []string
}

// DefaultValue is one resolved default, keyed by parameter name.
// Slice order equals source order.
type DefaultValue struct {
	Name  string
	Value string
}

// DeclarationCall is one parameter-declaring call site. Fields and RawType
// are mutually exclusive: structural rows when type information could be
// expanded, verbatim fallback text otherwise.
type DeclarationCall struct {
	File     string
	Line     int
	Fields   []FieldRow
	RawType  string
	Defaults []DefaultValue
}

// Default returns the resolved default text for a parameter name.
func (c *DeclarationCall) Default(name string) (string, bool) {
	for _, d := range c.Defaults {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// CommentInfo is the parsed documentation fragment attached to a
// declaration: first-paragraph description, example text (from an @example
// tag, else @default), and the @secret sensitivity flag.
type CommentInfo struct {
	Description string
	Example     string
	Sensitive   bool
}

// ExtractionResult is the ordered sequence of declaration calls discovered
// from one entry file's module graph.
type ExtractionResult struct {
	// Entry is the resolved absolute path extraction started from.
	Entry string
	Calls []DeclarationCall
}
