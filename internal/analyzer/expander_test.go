package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for structural type expansion:
// - Inline object types expand to rows with primitive classifications
// - Optional markers set Optional
// - Named interface and type alias references expand through the checker
// - Interface inheritance appends base members after own members
// - Intersection types merge members, first occurrence winning
// - Cyclic type references terminate
// - Literal unions yield sorted accepted values
// - Mixed primitive unions join sorted kinds without accepted values
// - Unions containing an irreducible branch degrade to unknown
// - Index signatures emit synthetic bracketed rows
// - @secret flips string classifications to password, nothing else

// expandSource scans source with a project checker and returns the rows of
// the first declaration call.
func expandSource(t *testing.T, source string) []FieldRow {
	t.Helper()
	unit := parseUnit(t, "expand.ts", source)
	checker := newChecker(t, unit)

	calls := NewScanner(checker, ScanOptions{}).ScanUnit(unit)
	require.NotEmpty(t, calls, "no declaration call found")
	return calls[0].Fields
}

func TestExpand_InlineObjectType(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, "const p = getScriptParams<{ a: string; b?: number; c: boolean }>();\n")
	require.Len(t, rows, 3)

	assert.Equal(t, FieldRow{Name: "a", Type: KindString}, rows[0])
	assert.Equal(t, FieldRow{Name: "b", Type: KindNumber, Optional: true}, rows[1])
	assert.Equal(t, FieldRow{Name: "c", Type: KindBoolean}, rows[2])
}

func TestExpand_InlineObjectTypeWithoutChecker(t *testing.T) {
	t.Parallel()

	// Inline shapes need no name resolution; NoopChecker is enough.
	unit := parseUnit(t, "expand.ts", "const p = getScriptParams<{ a: string; b?: number }>();\n")
	calls := NewScanner(NoopChecker{}, ScanOptions{}).ScanUnit(unit)
	require.Len(t, calls, 1)

	rows := calls[0].Fields
	require.Len(t, rows, 2)
	assert.Equal(t, FieldRow{Name: "a", Type: KindString}, rows[0])
	assert.Equal(t, FieldRow{Name: "b", Type: KindNumber, Optional: true}, rows[1])
}

func TestExpand_NamedInterface(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `interface Params { host: string; port: number }
const p = getScriptParams<Params>();
`)
	require.Len(t, rows, 2)
	assert.Equal(t, "host", rows[0].Name)
	assert.Equal(t, "port", rows[1].Name)
}

func TestExpand_TypeAlias(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `type Params = { verbose: boolean };
const p = getScriptParams<Params>();
`)
	require.Len(t, rows, 1)
	assert.Equal(t, FieldRow{Name: "verbose", Type: KindBoolean}, rows[0])
}

func TestExpand_InterfaceInheritance(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `interface Base { shared: number; common: string }
interface Params extends Base { shared: string; own: boolean }
const p = getScriptParams<Params>();
`)
	require.Len(t, rows, 3)

	// Own members come first, so the override keeps its classification.
	assert.Equal(t, "shared", rows[0].Name)
	assert.Equal(t, KindString, rows[0].Type)
	assert.Equal(t, "own", rows[1].Name)
	assert.Equal(t, "common", rows[2].Name)
}

func TestExpand_Intersection(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `const p = getScriptParams<{ a: string; b: number } & { b: boolean; c: string }>();
`)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Name)
	assert.Equal(t, "b", rows[1].Name)
	assert.Equal(t, KindNumber, rows[1].Type, "first occurrence of b must win")
	assert.Equal(t, "c", rows[2].Name)
}

func TestExpand_CyclicTypeReference(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `type A = B;
type B = A;
const p = getScriptParams<A>();
`)
	assert.Empty(t, rows)
}

func TestExpand_SelfReferentialInterface(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `interface Params { name: string; parent: Params }
const p = getScriptParams<Params>();
`)
	require.Len(t, rows, 2)
	assert.Equal(t, KindString, rows[0].Type)
	assert.Equal(t, KindUnknown, rows[1].Type)
}

func TestExpand_LiteralUnion(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, "const p = getScriptParams<{ mode: 'z' | 'x' | 'y' | 'x' }>();\n")
	require.Len(t, rows, 1)
	assert.Equal(t, KindString, rows[0].Type)
	assert.Equal(t, []string{"x", "y", "z"}, rows[0].AcceptedValues)
}

func TestExpand_MixedPrimitiveUnion(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, "const p = getScriptParams<{ id: string | number }>();\n")
	require.Len(t, rows, 1)
	assert.Equal(t, "number | string", rows[0].Type)
	assert.Nil(t, rows[0].AcceptedValues)
}

func TestExpand_UnionWithIrreducibleBranch(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, "const p = getScriptParams<{ v: string | Date }>();\n")
	require.Len(t, rows, 1)
	assert.Equal(t, KindUnknown, rows[0].Type)
	assert.Nil(t, rows[0].AcceptedValues)
}

func TestExpand_AliasedLiteralUnion(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `type Mode = 'fast' | 'slow';
const p = getScriptParams<{ mode: Mode }>();
`)
	require.Len(t, rows, 1)
	assert.Equal(t, KindString, rows[0].Type)
	assert.Equal(t, []string{"fast", "slow"}, rows[0].AcceptedValues)
}

func TestExpand_AliasedPrimitive(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `type Port = number;
const p = getScriptParams<{ port: Port }>();
`)
	require.Len(t, rows, 1)
	assert.Equal(t, KindNumber, rows[0].Type)
}

func TestExpand_IndexSignature(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, "const p = getScriptParams<{ [key: string]: number }>();\n")
	require.Len(t, rows, 1)
	assert.Equal(t, "[key: string]", rows[0].Name)
	assert.Equal(t, KindNumber, rows[0].Type)
	assert.False(t, rows[0].Optional)
}

func TestExpand_SecretClassification(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `interface Params {
  /** Account password. @secret */
  password: string;
  /** Retry count. @secret */
  retries: number;
}
const p = getScriptParams<Params>();
`)
	require.Len(t, rows, 2)
	assert.Equal(t, KindPassword, rows[0].Type)
	// Sensitivity never rewrites non-string classifications.
	assert.Equal(t, KindNumber, rows[1].Type)
}

func TestExpand_UndocumentedSiblingUnaffected(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `interface Params {
  /** Account password. @secret */
  key: string;
  other: string;
}
const p = getScriptParams<Params>();
`)
	require.Len(t, rows, 2)
	assert.Equal(t, KindPassword, rows[0].Type)

	// A documentation block attaches to its own member only; the
	// undocumented neighbor keeps a plain classification and no metadata.
	assert.Equal(t, KindString, rows[1].Type)
	assert.Empty(t, rows[1].Description)
	assert.Empty(t, rows[1].Example)
}

func TestExpand_CommentMetadataOnRows(t *testing.T) {
	t.Parallel()

	rows := expandSource(t, `interface Params {
  /**
   * Target environment.
   * @example production
   */
  env: string;
}
const p = getScriptParams<Params>();
`)
	require.Len(t, rows, 1)
	assert.Equal(t, "Target environment.", rows[0].Description)
	assert.Equal(t, "production", rows[0].Example)
}
