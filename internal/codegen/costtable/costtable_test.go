package costtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormulaEvalConstant(t *testing.T) {
	f := Formula{Kind: Constant, B: 1000}
	require.EqualValues(t, 1000, f.Eval(0))
	require.EqualValues(t, 1000, f.Eval(500))
}

func TestFormulaEvalLinear(t *testing.T) {
	f := Formula{Kind: Linear, A: 1000, B: 1000}
	require.EqualValues(t, 1000, f.Eval(0))
	require.EqualValues(t, 6000, f.Eval(5))
}

func TestFormulaEvalNLogN(t *testing.T) {
	f := Formula{Kind: NLogN, A: 1, B: 0}
	// 8 * log2(8) == 24
	require.EqualValues(t, 24, f.Eval(8))
	// n <= 0 is floored to 1, so 1 * log2(1) == 0
	require.EqualValues(t, 0, f.Eval(0))
	require.EqualValues(t, 0, f.Eval(-5))
}

func TestFormulaEvalNone(t *testing.T) {
	var f Formula // zero value is Kind: None
	require.EqualValues(t, 0, f.Eval(100))
}

func TestLookupKnownWord(t *testing.T) {
	wc, ok := Lookup(DefaultVersion, "+")
	require.True(t, ok)
	require.Equal(t, Formula{Kind: Linear, A: 1000, B: 1000}, wc.Runtime)
}

func TestLookupUnknownWordNotFound(t *testing.T) {
	_, ok := Lookup(DefaultVersion, "definitely-not-a-word")
	require.False(t, ok)
}

func TestLookupUnknownVersionFallsBackToDefault(t *testing.T) {
	wc, ok := Lookup("not-a-real-version", "+")
	wantWC, wantOK := Lookup(DefaultVersion, "+")
	require.Equal(t, wantOK, ok)
	require.Equal(t, wantWC, wc)
}

func TestVersionsIncludesDefault(t *testing.T) {
	require.Contains(t, Versions(), DefaultVersion)
}
