package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

// newTestGenerator returns a Generator with enough state set up
// (globals + the runtime-error import declared) for cost.go's charge
// helpers to emit real instruction sequences against, without running a
// full Compile.
func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g := New(&ast.Contract{})
	require.NoError(t, g.stageImports())
	require.NoError(t, g.stageGlobals())
	return g
}

func TestChargeWordKnownWordEmitsInstructions(t *testing.T) {
	g := newTestGenerator(t)
	instrs, err := g.chargeWord("+", 1)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
}

func TestChargeWordUnknownWordEmitsNothing(t *testing.T) {
	g := newTestGenerator(t)
	instrs, err := g.chargeWord("not-a-real-word", 1)
	require.NoError(t, err)
	require.Nil(t, instrs)
}

func TestChargeConstantEmitsInstructions(t *testing.T) {
	g := newTestGenerator(t)
	instrs, err := g.chargeConstant(CostRuntime, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
}

func TestGlobalAndTrapCoversEveryCounter(t *testing.T) {
	g := newTestGenerator(t)
	counters := []CostCounter{CostRuntime, CostReadCount, CostReadLength, CostWriteCount, CostWriteLength}
	seen := map[uint32]bool{}
	for _, c := range counters {
		global, trap := g.globalAndTrap(c)
		require.False(t, seen[global], "global index %d reused across counters", global)
		seen[global] = true
		require.GreaterOrEqual(t, trap, int32(0))
	}
}

func TestGlobalAndTrapPanicsOnUnknownCounter(t *testing.T) {
	g := newTestGenerator(t)
	require.Panics(t, func() {
		g.globalAndTrap(CostCounter(999))
	})
}

func TestEmitTrapEndsWithUnreachable(t *testing.T) {
	g := newTestGenerator(t)
	instrs, err := g.emitTrap(trapOverflow)
	require.NoError(t, err)
	require.NotEmpty(t, instrs)
	require.Equal(t, instruction.Unreachable{}, instrs[len(instrs)-1])
}
