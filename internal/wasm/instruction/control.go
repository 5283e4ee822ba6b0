package instruction

import (
	"github.com/clarlang/c2w/internal/wasm/opcode"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// Unreachable represents the Wasm unreachable instruction; it traps
// immediately. The generator emits it after a call to the runtime-error
// host function to satisfy a block's declared result type.
type Unreachable struct{ NoImmediateArgs }

func (Unreachable) Op() opcode.Opcode { return opcode.Unreachable }

// Nop represents the Wasm nop instruction.
type Nop struct{ NoImmediateArgs }

func (Nop) Op() opcode.Opcode { return opcode.Nop }

// Drop represents the Wasm drop instruction; it pops and discards one value.
// Dropping a multi-component source value (e.g. a buffer's offset/length
// pair) requires one Drop per component.
type Drop struct{ NoImmediateArgs }

func (Drop) Op() opcode.Opcode { return opcode.Drop }

// Return represents the Wasm return instruction.
type Return struct{ NoImmediateArgs }

func (Return) Op() opcode.Opcode { return opcode.Return }

// Block represents a Wasm structured block. Its result type must match the
// operand-stack shape of whatever the block computes; multi-value shapes
// (e.g. an optional's indicator-then-payload) are modeled as a sequence of
// single-result blocks, never a single multi-value block type, per the ABI
// discipline in the specification.
type Block struct {
	Result *types.ValueType
	Instrs []Instruction
}

func (Block) Op() opcode.Opcode           { return opcode.Block }
func (Block) ImmediateArgs() []interface{} { return nil }

// Loop represents a Wasm loop. Branching to index 0 from within the loop
// body jumps back to the top.
type Loop struct {
	Instrs []Instruction
}

func (Loop) Op() opcode.Opcode           { return opcode.Loop }
func (Loop) ImmediateArgs() []interface{} { return nil }

// If represents a Wasm if/else. Both branches must leave the operand stack
// in the same shape; an asymmetric if/else is a generator bug (see the
// operand-stack shape discipline notes).
type If struct {
	Result *types.ValueType
	Then   []Instruction
	Else   []Instruction
}

func (If) Op() opcode.Opcode           { return opcode.If }
func (If) ImmediateArgs() []interface{} { return nil }

// Br represents the Wasm br instruction: an unconditional branch to the
// enclosing block/loop at the given nesting depth.
type Br struct {
	Index uint32
}

func (Br) Op() opcode.Opcode              { return opcode.Br }
func (i Br) ImmediateArgs() []interface{} { return []interface{}{i.Index} }

// BrIf represents the Wasm br_if instruction: a conditional branch,
// consuming an i32 condition from the stack.
type BrIf struct {
	Index uint32
}

func (BrIf) Op() opcode.Opcode              { return opcode.BrIf }
func (i BrIf) ImmediateArgs() []interface{} { return []interface{}{i.Index} }

// Call represents the Wasm call instruction, invoking a function (imported
// or locally defined) by its module-global index.
type Call struct {
	Index uint32
}

func (Call) Op() opcode.Opcode              { return opcode.Call }
func (i Call) ImmediateArgs() []interface{} { return []interface{}{i.Index} }

// CallIndirect represents the Wasm call_indirect instruction, used for
// dynamic dispatch through a table (e.g. trait-typed contract-call?).
type CallIndirect struct {
	TypeIndex  uint32
	TableIndex uint32
}

func (CallIndirect) Op() opcode.Opcode { return opcode.CallIndirect }
func (i CallIndirect) ImmediateArgs() []interface{} {
	return []interface{}{i.TypeIndex, i.TableIndex}
}
