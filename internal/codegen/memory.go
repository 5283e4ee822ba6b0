package codegen

import (
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// prelude saves the current stack pointer into the function's frame-pointer
// local. Every function that reserves call-stack scratch space (directly or
// by calling a word that does) must run this first.
func (b *builder) prelude() []instruction.Instruction {
	return []instruction.Instruction{
		instruction.GetGlobal{Index: b.g.stackPointer},
		instruction.SetLocal{Index: b.framePointer},
	}
}

// postlude restores the stack pointer from the frame-pointer local,
// releasing everything the function reserved. It must run on every exit
// path, including early returns from asserts!/unwrap-panic/contract-call
// failure propagation.
func (b *builder) postlude() []instruction.Instruction {
	return []instruction.Instruction{
		instruction.GetLocal{Index: b.framePointer},
		instruction.SetGlobal{Index: b.g.stackPointer},
	}
}

// reserve bumps the stack pointer by size bytes and returns a fresh local
// holding the offset of the reserved region, plus the instructions that
// compute it. The region lives until the enclosing function's postlude
// runs; it is never explicitly freed earlier.
func (b *builder) reserve(size int32) (uint32, []instruction.Instruction) {
	offsetLocal := b.declareLocalRaw(types.I32)
	instrs := []instruction.Instruction{
		instruction.GetGlobal{Index: b.g.stackPointer},
		instruction.SetLocal{Index: offsetLocal},
		instruction.GetGlobal{Index: b.g.stackPointer},
		instruction.I32Const{Value: size},
		instruction.I32Add{},
		instruction.SetGlobal{Index: b.g.stackPointer},
	}
	return offsetLocal, instrs
}
