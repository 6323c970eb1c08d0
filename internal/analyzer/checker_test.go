package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// Test Plan for the project checker:
// - Resolve interface and type alias declarations by name
// - First declaration wins on name collisions across files
// - Resolve const initializers; ignore destructuring declarators
// - Report literal types for annotated, as-const, and direct literal consts
// - Miss on let declarations and computed initializers
// - NoopChecker misses everything

func parseUnit(t *testing.T, path, source string) *tsparse.SourceUnit {
	t.Helper()
	unit, err := tsparse.ParseSource(path, []byte(source))
	require.NoError(t, err)
	t.Cleanup(unit.Close)
	return unit
}

func newChecker(t *testing.T, units ...*tsparse.SourceUnit) Checker {
	t.Helper()
	checker, err := NewProjectChecker(units)
	require.NoError(t, err)
	return checker
}

func TestProjectChecker_ResolveType(t *testing.T) {
	t.Parallel()

	unit := parseUnit(t, "a.ts", "interface Config { a: string }\ntype Mode = 'fast' | 'slow';\n")
	checker := newChecker(t, unit)

	declUnit, decl, ok := checker.ResolveType("Config")
	require.True(t, ok)
	assert.Equal(t, unit, declUnit)
	assert.Equal(t, "interface_declaration", decl.Kind())

	_, decl, ok = checker.ResolveType("Mode")
	require.True(t, ok)
	assert.Equal(t, "type_alias_declaration", decl.Kind())

	_, _, ok = checker.ResolveType("Nope")
	assert.False(t, ok)
}

func TestProjectChecker_FirstDeclarationWins(t *testing.T) {
	t.Parallel()

	first := parseUnit(t, "a.ts", "interface Config { a: string }\n")
	second := parseUnit(t, "b.ts", "interface Config { b: number }\n")
	checker := newChecker(t, first, second)

	declUnit, _, ok := checker.ResolveType("Config")
	require.True(t, ok)
	assert.Equal(t, first, declUnit)
}

func TestProjectChecker_ConstInitializer(t *testing.T) {
	t.Parallel()

	unit := parseUnit(t, "a.ts", "const TIMEOUT = 60 * 2;\nlet counter = 0;\n")
	checker := newChecker(t, unit)

	declUnit, init, ok := checker.ConstInitializer("TIMEOUT")
	require.True(t, ok)
	assert.Equal(t, unit, declUnit)
	assert.Equal(t, "60 * 2", unit.Text(init))

	// let declarations still have initializers; only literal-type queries
	// require const.
	_, init, ok = checker.ConstInitializer("counter")
	require.True(t, ok)
	assert.Equal(t, "0", unit.Text(init))
}

func TestProjectChecker_LiteralTypeText(t *testing.T) {
	t.Parallel()

	unit := parseUnit(t, "a.ts",
		"const annotated: 'fast' = 'fast';\n"+
			"const asserted = 'slow' as const;\n"+
			"const direct = 42;\n"+
			"const computed = 6 * 7;\n"+
			"let mutable = 'x';\n")
	checker := newChecker(t, unit)

	text, ok := checker.LiteralTypeText("annotated")
	require.True(t, ok)
	assert.Equal(t, "'fast'", text)

	text, ok = checker.LiteralTypeText("asserted")
	require.True(t, ok)
	assert.Equal(t, "'slow'", text)

	text, ok = checker.LiteralTypeText("direct")
	require.True(t, ok)
	assert.Equal(t, "42", text)

	// Computed initializers are the folder's job, not the checker's.
	_, ok = checker.LiteralTypeText("computed")
	assert.False(t, ok)

	_, ok = checker.LiteralTypeText("mutable")
	assert.False(t, ok)
}

func TestProjectChecker_NilUnitsSkipped(t *testing.T) {
	t.Parallel()

	unit := parseUnit(t, "a.ts", "const A = 1;\n")
	checker, err := NewProjectChecker([]*tsparse.SourceUnit{nil, unit, nil})
	require.NoError(t, err)

	_, _, ok := checker.ConstInitializer("A")
	assert.True(t, ok)
}

func TestNoopChecker_MissesEverything(t *testing.T) {
	t.Parallel()

	checker := NoopChecker{}
	_, _, ok := checker.ResolveType("A")
	assert.False(t, ok)
	_, _, ok = checker.ConstInitializer("A")
	assert.False(t, ok)
	_, ok = checker.LiteralTypeText("A")
	assert.False(t, ok)
}
