// Package instruction defines the typed Wasm instruction set the code
// generator assembles into instruction sequences. Each instruction is a
// small Go value that knows its own opcode and (where applicable) immediate
// operands; the encoding package walks these to produce the binary code
// section.
package instruction

import (
	"github.com/clarlang/c2w/internal/wasm/opcode"
)

// Instruction is satisfied by every emittable Wasm instruction.
type Instruction interface {
	// Op returns the instruction's primary opcode.
	Op() opcode.Opcode
	// ImmediateArgs returns the instruction's immediate operands, in the
	// order they must be encoded, for encoding or pretty-printing.
	ImmediateArgs() []interface{}
}

// NoImmediateArgs is embedded by instructions that carry no immediates.
type NoImmediateArgs struct{}

// ImmediateArgs implements Instruction.
func (NoImmediateArgs) ImmediateArgs() []interface{} { return nil }
