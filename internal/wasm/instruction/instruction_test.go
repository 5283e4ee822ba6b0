package instruction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/wasm/opcode"
)

func TestConstImmediates(t *testing.T) {
	i32 := I32Const{Value: 42}
	require.Equal(t, opcode.I32Const, i32.Op())
	require.Equal(t, []interface{}{int32(42)}, i32.ImmediateArgs())

	i64 := I64Const{Value: -7}
	require.Equal(t, opcode.I64Const, i64.Op())
	require.Equal(t, []interface{}{int64(-7)}, i64.ImmediateArgs())
}

func TestSimpleInstructionsCarryNoImmediates(t *testing.T) {
	cases := []Instruction{I32Eqz{}, I32Eq{}, I32Add{}, I32And{}, I32Or{}}
	for _, instr := range cases {
		require.Empty(t, instr.ImmediateArgs())
	}
}

func TestVariableInstructionsCarryIndex(t *testing.T) {
	get := GetLocal{Index: 3}
	require.Equal(t, opcode.LocalGet, get.Op())
	require.Equal(t, []interface{}{uint32(3)}, get.ImmediateArgs())

	set := SetLocal{Index: 5}
	require.Equal(t, opcode.LocalSet, set.Op())
	require.Equal(t, []interface{}{uint32(5)}, set.ImmediateArgs())

	getGlobal := GetGlobal{Index: 1}
	require.Equal(t, opcode.GlobalGet, getGlobal.Op())

	setGlobal := SetGlobal{Index: 2}
	require.Equal(t, opcode.GlobalSet, setGlobal.Op())
}

func TestMemoryInstructionsOrderAlignThenOffset(t *testing.T) {
	load := I32Load{Offset: 8, Align: 2}
	require.Equal(t, opcode.I32Load, load.Op())
	require.Equal(t, []interface{}{uint32(2), uint32(8)}, load.ImmediateArgs())

	store := I32Store{Offset: 16, Align: 2}
	require.Equal(t, opcode.I32Store, store.Op())
	require.Equal(t, []interface{}{uint32(2), uint32(16)}, store.ImmediateArgs())
}

func TestMemoryGrowHasNoImmediates(t *testing.T) {
	grow := MemoryGrow{}
	require.Equal(t, opcode.MemoryGrow, grow.Op())
	require.Empty(t, grow.ImmediateArgs())
}

func TestStructuredControlInstructions(t *testing.T) {
	block := Block{Instrs: []Instruction{I32Const{Value: 1}}}
	require.Equal(t, opcode.Block, block.Op())

	loop := Loop{Instrs: []Instruction{I32Const{Value: 1}}}
	require.Equal(t, opcode.Loop, loop.Op())

	ifInstr := If{Then: []Instruction{I32Const{Value: 1}}, Else: []Instruction{I32Const{Value: 0}}}
	require.Equal(t, opcode.If, ifInstr.Op())
}
