package instruction

import "github.com/clarlang/c2w/internal/wasm/opcode"

// GetLocal represents the Wasm local.get instruction.
type GetLocal struct {
	Index uint32
}

func (GetLocal) Op() opcode.Opcode                 { return opcode.LocalGet }
func (i GetLocal) ImmediateArgs() []interface{}    { return []interface{}{i.Index} }

// SetLocal represents the Wasm local.set instruction.
type SetLocal struct {
	Index uint32
}

func (SetLocal) Op() opcode.Opcode              { return opcode.LocalSet }
func (i SetLocal) ImmediateArgs() []interface{} { return []interface{}{i.Index} }

// TeeLocal represents the Wasm local.tee instruction: sets the local and
// leaves the value on the stack.
type TeeLocal struct {
	Index uint32
}

func (TeeLocal) Op() opcode.Opcode              { return opcode.LocalTee }
func (i TeeLocal) ImmediateArgs() []interface{} { return []interface{}{i.Index} }

// GetGlobal represents the Wasm global.get instruction.
type GetGlobal struct {
	Index uint32
}

func (GetGlobal) Op() opcode.Opcode              { return opcode.GlobalGet }
func (i GetGlobal) ImmediateArgs() []interface{} { return []interface{}{i.Index} }

// SetGlobal represents the Wasm global.set instruction.
type SetGlobal struct {
	Index uint32
}

func (SetGlobal) Op() opcode.Opcode              { return opcode.GlobalSet }
func (i SetGlobal) ImmediateArgs() []interface{} { return []interface{}{i.Index} }
