package hostsim

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/codegen"
	"github.com/clarlang/c2w/internal/wasm/encoding"
)

// compile lowers contract to Wasm bytes via the real codegen pipeline, the
// same path cmd/c2w's compile subcommand uses.
func compile(t *testing.T, contract *ast.Contract) []byte {
	t.Helper()
	g := codegen.New(contract)
	mod, err := g.Compile()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, encoding.WriteModule(&buf, mod))
	return buf.Bytes()
}

func uintLiteral(v uint64) ast.Expr {
	return ast.Expr{Type: ast.UintType{}, Literal: &ast.Literal{Int: ast.Int128{Low: v}}}
}

// addOneContract is a single read-only function, (define-read-only
// (add-one (n uint)) (+ n u1)), compiled end to end and run through wazero.
// It exercises the generator's uint ABI and the stdlib int128 host import
// without touching any persisted storage.
func addOneContract() *ast.Contract {
	return &ast.Contract{
		Functions: []ast.Function{
			{
				Kind:       ast.FunctionReadOnly,
				Name:       "add-one",
				Params:     []ast.Param{{Name: "n", Type: ast.UintType{}}},
				ReturnType: ast.UintType{},
				Body: []ast.Expr{
					{
						Op:   "+",
						Type: ast.UintType{},
						Args: []ast.Expr{
							{Op: "var", Ident: "n", Type: ast.UintType{}},
							uintLiteral(1),
						},
					},
				},
			},
		},
	}
}

func TestRunTopLevelSucceeds(t *testing.T) {
	wasmBytes := compile(t, addOneContract())
	res, err := Run(context.Background(), wasmBytes, true /* mainnet */, ".top-level")
	require.NoError(t, err)
	require.NotNil(t, res)
}

func TestRunAddOneReadOnlyFunction(t *testing.T) {
	wasmBytes := compile(t, addOneContract())

	// add-one(41) == 42, ABI-lowered as (low, high) i64 words.
	res, err := Run(context.Background(), wasmBytes, true, "add-one", 41, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{42, 0}, res.Values)
}

// dataVarContract exercises persisted storage (var-get/var-set) through the
// host's in-memory State: .top-level seeds "count" to 0, then increment
// both mutates it and returns it wrapped in (ok ...).
func dataVarContract() *ast.Contract {
	return &ast.Contract{
		DataVars: []ast.DataVar{
			{Name: "count", Type: ast.UintType{}, Init: uintLiteral(0)},
		},
		Functions: []ast.Function{
			{
				Kind:       ast.FunctionPublic,
				Name:       "increment",
				Params:     []ast.Param{},
				ReturnType: ast.ResponseType{Ok: ast.UintType{}, Err: ast.UintType{}},
				Body: []ast.Expr{
					{
						Op:    "var-set",
						Type:  ast.BoolType{},
						Extra: "count",
						Args: []ast.Expr{
							{
								Op:   "+",
								Type: ast.UintType{},
								Args: []ast.Expr{
									{Op: "var-get", Type: ast.UintType{}, Extra: "count"},
									uintLiteral(1),
								},
							},
						},
					},
					{
						Op:   "ok",
						Type: ast.ResponseType{Ok: ast.UintType{}, Err: ast.UintType{}},
						Args: []ast.Expr{
							{Op: "var-get", Type: ast.UintType{}, Extra: "count"},
						},
					},
				},
			},
		},
	}
}

// TestInstantiateIncrementPersistsAcrossCalls instantiates the module once
// (unlike Run, which wires a fresh host per call) so .top-level's seeded
// data var and increment's mutation are observed on the same State, the way
// a long-lived contract instance behaves.
func TestInstantiateIncrementPersistsAcrossCalls(t *testing.T) {
	wasmBytes := compile(t, dataVarContract())
	ctx := context.Background()

	s := NewState(true)
	rt, err := Instantiate(ctx, s)
	require.NoError(t, err)
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, wasmBytes)
	require.NoError(t, err)

	_, err = mod.ExportedFunction(".top-level").Call(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.balanceOf("").Uint64()) // sanity: ledger untouched by .top-level

	first, err := mod.ExportedFunction("increment").Call(ctx)
	require.NoError(t, err)
	// ResponseType{Ok: uint, Err: uint} shape: [indicator, ok-low, ok-high, err-low, err-high].
	require.Len(t, first, 5)
	require.EqualValues(t, 1, first[0]) // ok
	require.EqualValues(t, 1, first[1]) // count is now 1

	second, err := mod.ExportedFunction("increment").Call(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, second[1]) // count persisted and incremented again
}

func TestRunUnknownEntrypointFails(t *testing.T) {
	wasmBytes := compile(t, addOneContract())
	_, err := Run(context.Background(), wasmBytes, true, "does-not-exist")
	require.Error(t, err)
}
