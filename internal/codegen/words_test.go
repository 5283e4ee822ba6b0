package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/ast"
)

// newTestFullGenerator returns a Generator with imports and globals declared
// against a caller-supplied contract, so word handlers that call chargeWord
// or callByName resolve against a real (if otherwise empty) module, without
// running a full Compile.
func newTestFullGenerator(t *testing.T, contract *ast.Contract) *Generator {
	t.Helper()
	g := New(contract)
	require.NoError(t, g.stageImports())
	require.NoError(t, g.stageGlobals())
	return g
}

func intLit(v int64) ast.Expr {
	return ast.Expr{Type: ast.IntType{}, Literal: &ast.Literal{Int: ast.Int128{Low: uint64(v)}}}
}

func uintLit(v uint64) ast.Expr {
	return ast.Expr{Type: ast.UintType{}, Literal: &ast.Literal{Int: ast.Int128{Low: v}}}
}

func boolLit(v bool) ast.Expr {
	return ast.Expr{Type: ast.BoolType{}, Literal: &ast.Literal{Bool: v}}
}

func bufLit(data []byte) ast.Expr {
	return ast.Expr{Type: ast.BufferType{Max: len(data)}, Literal: &ast.Literal{Buffer: data}}
}

func principalLit(raw []byte) ast.Expr {
	return ast.Expr{Type: ast.PrincipalType{}, Literal: &ast.Literal{Buffer: raw}}
}

func TestLowerArithWords(t *testing.T) {
	g, b := newTestBuilder(t)
	e := ast.Expr{Op: "+", Type: ast.UintType{}, Args: []ast.Expr{uintLit(1), uintLit(2)}}
	instrs, err := g.lower(b, e)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)

	g2, b2 := newTestBuilder(t)
	e2 := ast.Expr{Op: "bit-not", Type: ast.IntType{}, Args: []ast.Expr{intLit(5)}}
	instrs2, err := g2.lower(b2, e2)
	require.NoError(t, err)
	require.NotEmpty(t, instrs2)

	g3, b3 := newTestBuilder(t)
	e3 := ast.Expr{Op: "sqrti", Type: ast.UintType{}, Args: []ast.Expr{uintLit(9)}}
	instrs3, err := g3.lower(b3, e3)
	require.NoError(t, err)
	require.NotEmpty(t, instrs3)
}

func TestLowerArithWrongArgCountFails(t *testing.T) {
	g, b := newTestBuilder(t)
	e := ast.Expr{Op: "bit-not", Type: ast.IntType{}, Args: []ast.Expr{intLit(1), intLit(2)}}
	_, err := g.lower(b, e)
	require.Error(t, err)
}

func TestLowerCompareWords(t *testing.T) {
	g, b := newTestBuilder(t)
	lt := ast.Expr{Op: "<", Type: ast.BoolType{}, Args: []ast.Expr{uintLit(1), uintLit(2)}}
	instrs, err := g.lower(b, lt)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)

	g2, b2 := newTestBuilder(t)
	eq := ast.Expr{Op: "=", Type: ast.BoolType{}, Args: []ast.Expr{uintLit(1), uintLit(1), uintLit(1)}}
	instrs2, err := g2.lower(b2, eq)
	require.NoError(t, err)
	require.NotEmpty(t, instrs2)
}

func TestLowerBoolWords(t *testing.T) {
	cases := []ast.Expr{
		{Op: "and", Type: ast.BoolType{}, Args: []ast.Expr{boolLit(true), boolLit(false)}},
		{Op: "or", Type: ast.BoolType{}, Args: []ast.Expr{boolLit(true), boolLit(false)}},
		{Op: "not", Type: ast.BoolType{}, Args: []ast.Expr{boolLit(true)}},
	}
	for _, e := range cases {
		g, b := newTestBuilder(t)
		instrs, err := g.lower(b, e)
		require.NoError(t, err)
		require.NotEmpty(t, instrs)
	}
}

func TestLowerControlWords(t *testing.T) {
	g, b := newTestBuilder(t)
	ifExpr := ast.Expr{
		Op:   "if",
		Type: ast.UintType{},
		Args: []ast.Expr{boolLit(true), uintLit(1), uintLit(2)},
	}
	instrs, err := g.lower(b, ifExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)

	g2, b2 := newTestBuilder(t)
	beginExpr := ast.Expr{Op: "begin", Type: ast.UintType{}, Args: []ast.Expr{uintLit(1), uintLit(2)}}
	instrs2, err := g2.lower(b2, beginExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs2)

	g3, b3 := newTestBuilder(t)
	someExpr := ast.Expr{Op: "some", Type: ast.OptionalType{Some: ast.UintType{}}, Args: []ast.Expr{uintLit(1)}}
	instrs3, err := g3.lower(b3, someExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs3)

	g4, b4 := newTestBuilder(t)
	noneExpr := ast.Expr{Op: "none", Type: ast.OptionalType{Some: ast.UintType{}}}
	instrs4, err := g4.lower(b4, noneExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs4)

	g5, b5 := newTestBuilder(t)
	okExpr := ast.Expr{Op: "ok", Type: ast.ResponseType{Ok: ast.UintType{}, Err: ast.UintType{}}, Args: []ast.Expr{uintLit(1)}}
	instrs5, err := g5.lower(b5, okExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs5)

	g6, b6 := newTestBuilder(t)
	isSomeExpr := ast.Expr{Op: "is-some", Type: ast.BoolType{}, Args: []ast.Expr{someExpr}}
	instrs6, err := g6.lower(b6, isSomeExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs6)
}

func TestLowerTupleWords(t *testing.T) {
	tupleTy := ast.TupleType{Fields: []ast.TupleField{
		{Key: "a", Type: ast.BoolType{}},
		{Key: "b", Type: ast.UintType{}},
	}}
	tupleExpr := ast.Expr{Op: "tuple", Type: tupleTy, Args: []ast.Expr{boolLit(true), uintLit(1)}}

	g, b := newTestBuilder(t)
	instrs, err := g.lower(b, tupleExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)

	g2, b2 := newTestBuilder(t)
	getExpr := ast.Expr{Op: "get", Type: ast.UintType{}, Extra: "b", Args: []ast.Expr{tupleExpr}}
	instrs2, err := g2.lower(b2, getExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs2)

	otherTupleTy := ast.TupleType{Fields: []ast.TupleField{{Key: "c", Type: ast.BoolType{}}}}
	otherTuple := ast.Expr{Op: "tuple", Type: otherTupleTy, Args: []ast.Expr{boolLit(false)}}
	mergedTy := ast.TupleType{Fields: append(append([]ast.TupleField{}, tupleTy.Fields...), otherTupleTy.Fields...)}
	g3, b3 := newTestBuilder(t)
	mergeExpr := ast.Expr{Op: "merge", Type: mergedTy, Args: []ast.Expr{tupleExpr, otherTuple}}
	instrs3, err := g3.lower(b3, mergeExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs3)
}

func TestLowerStorageWords(t *testing.T) {
	contract := &ast.Contract{
		DataVars: []ast.DataVar{{Name: "count", Type: ast.UintType{}}},
		Maps:     []ast.Map{{Name: "balances", KeyType: ast.PrincipalType{}, ValType: ast.UintType{}}},
	}

	g := newTestFullGenerator(t, contract)
	b := newBuilder(g, nil, nil)
	getExpr := ast.Expr{Op: "var-get", Type: ast.UintType{}, Extra: "count"}
	instrs, err := g.lower(b, getExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)

	g2 := newTestFullGenerator(t, contract)
	b2 := newBuilder(g2, nil, nil)
	setExpr := ast.Expr{Op: "var-set", Type: ast.BoolType{}, Extra: "count", Args: []ast.Expr{uintLit(5)}}
	instrs2, err := g2.lower(b2, setExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs2)

	raw := make([]byte, principalBytes)
	raw[0] = versionMainnetSingleSig

	g3 := newTestFullGenerator(t, contract)
	b3 := newBuilder(g3, nil, nil)
	mapGetExpr := ast.Expr{
		Op: "map-get?", Type: ast.OptionalType{Some: ast.UintType{}}, Extra: "balances",
		Args: []ast.Expr{principalLit(raw)},
	}
	instrs3, err := g3.lower(b3, mapGetExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs3)

	g4 := newTestFullGenerator(t, contract)
	b4 := newBuilder(g4, nil, nil)
	mapSetExpr := ast.Expr{
		Op: "map-set", Type: ast.BoolType{}, Extra: "balances",
		Args: []ast.Expr{principalLit(raw), uintLit(10)},
	}
	instrs4, err := g4.lower(b4, mapSetExpr)
	require.NoError(t, err)
	require.NotEmpty(t, instrs4)
}

func TestLowerStorageUndeclaredFails(t *testing.T) {
	g := newTestFullGenerator(t, &ast.Contract{})
	b := newBuilder(g, nil, nil)
	_, err := g.lower(b, ast.Expr{Op: "var-get", Type: ast.UintType{}, Extra: "nope"})
	require.Error(t, err)
}

func TestLowerHashWords(t *testing.T) {
	g := newTestFullGenerator(t, &ast.Contract{})
	b := newBuilder(g, nil, nil)
	e := ast.Expr{Op: "sha256", Type: ast.BufferType{Max: 32}, Args: []ast.Expr{bufLit([]byte("hello"))}}
	instrs, err := g.lower(b, e)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
}

func TestLowerPrincipalWords(t *testing.T) {
	g := newTestFullGenerator(t, &ast.Contract{})
	b := newBuilder(g, nil, nil)
	respTy := ast.ResponseType{Ok: ast.PrincipalType{}, Err: ast.UintType{}}
	e := ast.Expr{Op: "principal-of?", Type: respTy, Args: []ast.Expr{bufLit(make([]byte, 33))}}
	instrs, err := g.lower(b, e)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
}

func TestLowerTokenWords(t *testing.T) {
	raw := make([]byte, principalBytes)
	raw[0] = versionMainnetSingleSig

	g := newTestFullGenerator(t, &ast.Contract{})
	b := newBuilder(g, nil, nil)
	burn := ast.Expr{
		Op: "stx-burn?", Type: ast.ResponseType{Ok: ast.BoolType{}, Err: ast.UintType{}},
		Args: []ast.Expr{uintLit(1), principalLit(raw)},
	}
	instrs, err := g.lower(b, burn)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)

	g2 := newTestFullGenerator(t, &ast.Contract{})
	b2 := newBuilder(g2, nil, nil)
	supply := ast.Expr{Op: "ft-get-supply", Type: ast.UintType{}, Extra: "widget"}
	instrs2, err := g2.lower(b2, supply)
	require.NoError(t, err)
	require.NotEmpty(t, instrs2)
}

func TestLowerNoopWords(t *testing.T) {
	g, b := newTestBuilder(t)
	e := ast.Expr{Op: "to-uint", Type: ast.UintType{}, Args: []ast.Expr{intLit(1)}}
	instrs, err := g.lower(b, e)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
}

func TestLowerPrintWord(t *testing.T) {
	g, b := newTestBuilder(t)
	e := ast.Expr{Op: "print", Type: ast.UintType{}, Args: []ast.Expr{uintLit(42)}}
	instrs, err := g.lower(b, e)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
}

func TestLowerVarReference(t *testing.T) {
	g, b := newTestBuilder(t)
	b.bind("x", b.declareLocal(ast.UintType{}))
	instrs, err := g.lower(b, ast.Expr{Op: "var", Ident: "x", Type: ast.UintType{}})
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
}

func TestLowerUnboundVarFails(t *testing.T) {
	g, b := newTestBuilder(t)
	_, err := g.lower(b, ast.Expr{Op: "var", Ident: "nope", Type: ast.UintType{}})
	require.Error(t, err)
}

func TestLowerUnknownWordFails(t *testing.T) {
	g, b := newTestBuilder(t)
	_, err := g.lower(b, ast.Expr{Op: "not-a-real-word"})
	require.Error(t, err)
}
