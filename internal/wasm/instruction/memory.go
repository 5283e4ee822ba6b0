package instruction

import "github.com/clarlang/c2w/internal/wasm/opcode"

// I32Load represents the Wasm i32.load instruction.
type I32Load struct {
	Offset uint32
	Align  uint32
}

func (I32Load) Op() opcode.Opcode { return opcode.I32Load }
func (i I32Load) ImmediateArgs() []interface{} {
	return []interface{}{i.Align, i.Offset}
}

// I64Load represents the Wasm i64.load instruction.
type I64Load struct {
	Offset uint32
	Align  uint32
}

func (I64Load) Op() opcode.Opcode { return opcode.I64Load }
func (i I64Load) ImmediateArgs() []interface{} {
	return []interface{}{i.Align, i.Offset}
}

// I32Load8U represents the Wasm i32.load8_u instruction, used to read a
// single byte (e.g. a tuple key length or ASCII character) as an unsigned
// i32.
type I32Load8U struct {
	Offset uint32
	Align  uint32
}

func (I32Load8U) Op() opcode.Opcode { return opcode.I32Load8U }
func (i I32Load8U) ImmediateArgs() []interface{} {
	return []interface{}{i.Align, i.Offset}
}

// I32Store represents the Wasm i32.store instruction.
type I32Store struct {
	Offset uint32
	Align  uint32
}

func (I32Store) Op() opcode.Opcode { return opcode.I32Store }
func (i I32Store) ImmediateArgs() []interface{} {
	return []interface{}{i.Align, i.Offset}
}

// I64Store represents the Wasm i64.store instruction.
type I64Store struct {
	Offset uint32
	Align  uint32
}

func (I64Store) Op() opcode.Opcode { return opcode.I64Store }
func (i I64Store) ImmediateArgs() []interface{} {
	return []interface{}{i.Align, i.Offset}
}

// I32Store8 represents the Wasm i32.store8 instruction.
type I32Store8 struct {
	Offset uint32
	Align  uint32
}

func (I32Store8) Op() opcode.Opcode { return opcode.I32Store8 }
func (i I32Store8) ImmediateArgs() []interface{} {
	return []interface{}{i.Align, i.Offset}
}

// MemoryGrow represents the Wasm memory.grow instruction; grows linear
// memory by the given number of 64KiB pages and returns the previous size
// (or -1 on failure).
type MemoryGrow struct{ NoImmediateArgs }

func (MemoryGrow) Op() opcode.Opcode { return opcode.MemoryGrow }
