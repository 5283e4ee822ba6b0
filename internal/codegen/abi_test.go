package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/types"
)

func TestShape(t *testing.T) {
	cases := []struct {
		name string
		t    ast.Type
		want []types.ValueType
	}{
		{"no-type", ast.NoType{}, []types.ValueType{types.I32}},
		{"int", ast.IntType{}, []types.ValueType{types.I64, types.I64}},
		{"uint", ast.UintType{}, []types.ValueType{types.I64, types.I64}},
		{"bool", ast.BoolType{}, []types.ValueType{types.I32}},
		{"principal", ast.PrincipalType{}, []types.ValueType{types.I32, types.I32}},
		{"buffer", ast.BufferType{Max: 10}, []types.ValueType{types.I32, types.I32}},
		{"list", ast.ListType{Elem: ast.IntType{}, Max: 4}, []types.ValueType{types.I32, types.I32}},
		{
			"tuple",
			ast.TupleType{Fields: []ast.TupleField{
				{Key: "a", Type: ast.BoolType{}},
				{Key: "b", Type: ast.IntType{}},
			}},
			[]types.ValueType{types.I32, types.I64, types.I64},
		},
		{
			"optional",
			ast.OptionalType{Some: ast.UintType{}},
			[]types.ValueType{types.I32, types.I64, types.I64},
		},
		{
			"response",
			ast.ResponseType{Ok: ast.BoolType{}, Err: ast.UintType{}},
			[]types.ValueType{types.I32, types.I32, types.I64, types.I64},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, Shape(c.t))
			require.Equal(t, len(c.want), StackSize(c.t))
		})
	}
}

func TestIsInMemory(t *testing.T) {
	inMemory := []ast.Type{
		ast.PrincipalType{}, ast.CallableType{}, ast.TraitReferenceType{},
		ast.BufferType{Max: 1}, ast.StringASCIIType{Max: 1}, ast.StringUTF8Type{Max: 1},
		ast.ListType{Elem: ast.IntType{}, Max: 1},
	}
	for _, ty := range inMemory {
		require.Truef(t, IsInMemory(ty), "%s should be in-memory", ty)
	}

	notInMemory := []ast.Type{
		ast.NoType{}, ast.IntType{}, ast.UintType{}, ast.BoolType{},
		ast.TupleType{}, ast.OptionalType{Some: ast.IntType{}},
		ast.ResponseType{Ok: ast.IntType{}, Err: ast.NoType{}},
	}
	for _, ty := range notInMemory {
		require.Falsef(t, IsInMemory(ty), "%s should not be in-memory", ty)
	}
}

func TestMemSize(t *testing.T) {
	cases := []struct {
		name string
		t    ast.Type
		want int
	}{
		{"no-type", ast.NoType{}, 4},
		{"int", ast.IntType{}, 16},
		{"uint", ast.UintType{}, 16},
		{"bool", ast.BoolType{}, 4},
		{"principal", ast.PrincipalType{}, principalMemSize},
		{"callable", ast.CallableType{}, principalMemSize},
		{"trait", ast.TraitReferenceType{}, principalMemSize},
		{"buffer", ast.BufferType{Max: 64}, 64},
		{"string-ascii", ast.StringASCIIType{Max: 32}, 32},
		{"string-utf8", ast.StringUTF8Type{Max: 8}, 32},
		{"list-of-int", ast.ListType{Elem: ast.IntType{}, Max: 3}, 48},
		{
			"tuple",
			ast.TupleType{Fields: []ast.TupleField{
				{Key: "a", Type: ast.BoolType{}},
				{Key: "b", Type: ast.IntType{}},
			}},
			4 + 16,
		},
		{"optional-uint", ast.OptionalType{Some: ast.UintType{}}, 4 + 16},
		{"response-bool-uint", ast.ResponseType{Ok: ast.BoolType{}, Err: ast.UintType{}}, 4 + 4 + 16},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, MemSize(c.t))
		})
	}
}

func TestElementStrideMatchesMemSize(t *testing.T) {
	elems := []ast.Type{ast.IntType{}, ast.BoolType{}, ast.BufferType{Max: 10}, ast.PrincipalType{}}
	for _, elem := range elems {
		require.Equal(t, MemSize(elem), ElementStride(elem))
	}
}

func TestPersistedSizeAddsPrincipalHeader(t *testing.T) {
	require.Equal(t, 4+principalMemSize, PersistedSize(ast.PrincipalType{}))
	require.Equal(t, 4+principalMemSize, PersistedSize(ast.CallableType{}))
	require.Equal(t, 4+principalMemSize, PersistedSize(ast.TraitReferenceType{}))
}

func TestPersistedSizeMatchesMemSizeForScalars(t *testing.T) {
	scalars := []ast.Type{ast.NoType{}, ast.IntType{}, ast.UintType{}, ast.BoolType{}, ast.BufferType{Max: 10}}
	for _, ty := range scalars {
		require.Equal(t, MemSize(ty), PersistedSize(ty))
	}
}

func TestPersistedSizeRecursesThroughComposites(t *testing.T) {
	tuple := ast.TupleType{Fields: []ast.TupleField{
		{Key: "owner", Type: ast.PrincipalType{}},
		{Key: "amount", Type: ast.UintType{}},
	}}
	require.Equal(t, (4+principalMemSize)+16, PersistedSize(tuple))

	opt := ast.OptionalType{Some: ast.PrincipalType{}}
	require.Equal(t, 4+(4+principalMemSize), PersistedSize(opt))

	resp := ast.ResponseType{Ok: ast.PrincipalType{}, Err: ast.UintType{}}
	require.Equal(t, 4+(4+principalMemSize)+16, PersistedSize(resp))
}

// A list never gets a persisted length header, even when its element type
// would: index arithmetic throughout the generator depends on a list's
// per-element stride being MemSize(elem), not PersistedSize(elem). See
// PersistedSize's doc comment and DESIGN.md's "Fixed" section.
func TestPersistedSizeExcludesListElements(t *testing.T) {
	listOfPrincipal := ast.ListType{Elem: ast.PrincipalType{}, Max: 5}
	require.Equal(t, MemSize(listOfPrincipal), PersistedSize(listOfPrincipal))

	nestedInTuple := ast.TupleType{Fields: []ast.TupleField{
		{Key: "members", Type: ast.ListType{Elem: ast.PrincipalType{}, Max: 2}},
	}}
	require.Equal(t, MemSize(nestedInTuple), PersistedSize(nestedInTuple))
}
