package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/types"
)

func TestConsensusMaxSize(t *testing.T) {
	cases := []struct {
		name string
		t    ast.Type
		want int32
	}{
		{"no-type", ast.NoType{}, 1},
		{"int", ast.IntType{}, 17},
		{"uint", ast.UintType{}, 17},
		{"bool", ast.BoolType{}, 1},
		{"buffer", ast.BufferType{Max: 10}, 1 + 4 + 10},
		{"string-ascii", ast.StringASCIIType{Max: 5}, 1 + 4 + 5},
		{"string-utf8", ast.StringUTF8Type{Max: 5}, 1 + 4 + 5*4},
		{"principal", ast.PrincipalType{}, 1 + int32(principalBytes) + int32(contractNameLengthBytes) + int32(contractNameMaxLength)},
		{"optional-bool", ast.OptionalType{Some: ast.BoolType{}}, 1 + 1},
		{
			"response-bool-uint",
			ast.ResponseType{Ok: ast.BoolType{}, Err: ast.UintType{}},
			1 + 1 + 17,
		},
		{"list-of-bool", ast.ListType{Elem: ast.BoolType{}, Max: 3}, 1 + 4 + 3*1},
		{
			"tuple",
			ast.TupleType{Fields: []ast.TupleField{
				{Key: "a", Type: ast.BoolType{}},
				{Key: "bb", Type: ast.UintType{}},
			}},
			(1 + 4) + (1 + 1 + 1) + (1 + 2 + 17),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, consensusMaxSize(c.t))
		})
	}
}

func TestConsensusMaxSizeUnhandledTypePanics(t *testing.T) {
	require.Panics(t, func() {
		consensusMaxSize(unhandledType{})
	})
}

// TestLowerToConsensusBuffAndDecodeWalk exercises lowerToConsensusBuff/decodeWalk
// structurally: both must emit non-empty, error-free instruction
// sequences, and decodeWalk's returned value locals must match t's
// Shape length, for every representative type.
func TestLowerToConsensusBuffAndDecodeWalk(t *testing.T) {
	cases := []ast.Type{
		ast.IntType{},
		ast.UintType{},
		ast.BoolType{},
		ast.BufferType{Max: 8},
		ast.PrincipalType{},
		ast.OptionalType{Some: ast.UintType{}},
		ast.ResponseType{Ok: ast.BoolType{}, Err: ast.UintType{}},
		ast.ListType{Elem: ast.IntType{}, Max: 2},
		ast.TupleType{Fields: []ast.TupleField{
			{Key: "a", Type: ast.BoolType{}},
			{Key: "b", Type: ast.UintType{}},
		}},
	}
	for _, ty := range cases {
		g, b := newTestBuilder(t)
		indices := b.declareLocal(ty)

		encodeInstrs, err := g.lowerToConsensusBuff(b, ty, indices)
		require.NoError(t, err)
		require.NotEmpty(t, encodeInstrs)

		dc := decodeCursor{buf: b.declareLocalRaw(types.I32), pos: b.declareLocalRaw(types.I32)}
		ok, valueIndices, decodeInstrs, err := g.decodeWalk(b, ty, dc)
		require.NoError(t, err)
		require.NotEmpty(t, decodeInstrs)
		require.NotZero(t, ok)
		require.Len(t, valueIndices, StackSize(ty))
	}
}

func TestToConsensusBuffWordRegistered(t *testing.T) {
	_, ok := words["to-consensus-buff?"]
	require.True(t, ok)
	_, ok = words["from-consensus-buff?"]
	require.True(t, ok)
}
