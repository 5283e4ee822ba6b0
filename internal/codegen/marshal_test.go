package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// newTestBuilder returns a builder wired to a Generator whose imports have
// already been declared, so storeValue/loadValue's callByName("store-i32-be",
// ...) etc. resolve without running a full Compile.
func newTestBuilder(t *testing.T) (*Generator, *builder) {
	t.Helper()
	g := New(&ast.Contract{})
	require.NoError(t, g.stageImports())
	b := newBuilder(g, nil, nil)
	return g, b
}

func TestStoreLoadValueRoundTripsLocalShape(t *testing.T) {
	cases := []ast.Type{
		ast.IntType{},
		ast.UintType{},
		ast.BoolType{},
		ast.BufferType{Max: 16},
		ast.PrincipalType{},
		ast.TupleType{Fields: []ast.TupleField{
			{Key: "a", Type: ast.BoolType{}},
			{Key: "b", Type: ast.UintType{}},
		}},
		ast.OptionalType{Some: ast.PrincipalType{}},
	}
	for _, ty := range cases {
		g, b := newTestBuilder(t)
		indices := b.declareLocal(ty)
		base := b.declareLocalRaw(types.I32)

		storeInstrs, err := g.storeValue(b, ty, indices, base)
		require.NoError(t, err)
		require.NotEmpty(t, storeInstrs)

		loadInstrs, loadedIndices, err := g.loadValue(b, ty, base)
		require.NoError(t, err)
		require.NotEmpty(t, loadInstrs)
		require.Len(t, loadedIndices, StackSize(ty))
	}
}

// The persisted path must differ structurally from the plain path for any
// type containing a principal component: it writes an extra 4-byte length
// header, so it always emits strictly more instructions. See DESIGN.md's
// "Fixed" section.
func TestPersistedPrincipalEmitsMoreThanPlain(t *testing.T) {
	g, b := newTestBuilder(t)
	indices := b.declareLocal(ast.PrincipalType{})
	base := b.declareLocalRaw(types.I32)

	plain, err := g.storeValue(b, ast.PrincipalType{}, indices, base)
	require.NoError(t, err)

	g2, b2 := newTestBuilder(t)
	indices2 := b2.declareLocal(ast.PrincipalType{})
	base2 := b2.declareLocalRaw(types.I32)
	persisted, err := g2.storePersistedValue(b2, ast.PrincipalType{}, indices2, base2)
	require.NoError(t, err)

	require.Greater(t, len(persisted), len(plain))
}

// A scalar type with no principal component is unaffected by the persisted
// flag: storeValue and storePersistedValue must emit identically-shaped
// output for it.
func TestPersistedScalarMatchesPlain(t *testing.T) {
	g, b := newTestBuilder(t)
	indices := b.declareLocal(ast.UintType{})
	base := b.declareLocalRaw(types.I32)
	plain, err := g.storeValue(b, ast.UintType{}, indices, base)
	require.NoError(t, err)

	g2, b2 := newTestBuilder(t)
	indices2 := b2.declareLocal(ast.UintType{})
	base2 := b2.declareLocalRaw(types.I32)
	persisted, err := g2.storePersistedValue(b2, ast.UintType{}, indices2, base2)
	require.NoError(t, err)

	require.Equal(t, len(plain), len(persisted))
}

func TestLoadPersistedValueRecoversLocalShape(t *testing.T) {
	g, b := newTestBuilder(t)
	base := b.declareLocalRaw(types.I32)
	instrs, indices, err := g.loadPersistedValue(b, ast.PrincipalType{}, base)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
	require.Len(t, indices, StackSize(ast.PrincipalType{}))
}

func TestStoreValueUnhandledTypeFails(t *testing.T) {
	g, b := newTestBuilder(t)
	base := b.declareLocalRaw(types.I32)
	_, err := g.storeValue(b, unhandledType{}, nil, base)
	require.Error(t, err)
}

// unhandledType is a bogus ast.Type implementation used only to exercise
// storeWalk/loadWalk's default error branch.
type unhandledType struct{}

func (unhandledType) Kind() ast.Kind  { return ast.Kind(-1) }
func (unhandledType) String() string  { return "unhandled" }
