// Package opcode enumerates the WebAssembly instruction opcodes the
// generator and its standard library linkage can emit. Only the MVP opcode
// set is listed; the generator never needs SIMD, reference types, or bulk
// memory operations.
package opcode

// Opcode is a single-byte (or, for some loads/stores, prefixed) WebAssembly
// instruction opcode.
type Opcode byte

const (
	Unreachable Opcode = 0x00
	Nop         Opcode = 0x01
	Block       Opcode = 0x02
	Loop        Opcode = 0x03
	If          Opcode = 0x04
	Else        Opcode = 0x05
	End         Opcode = 0x0B
	Br          Opcode = 0x0C
	BrIf        Opcode = 0x0D
	BrTable     Opcode = 0x0E
	Return      Opcode = 0x0F
	Call        Opcode = 0x10
	CallIndirect Opcode = 0x11

	Drop   Opcode = 0x1A
	Select Opcode = 0x1B

	LocalGet  Opcode = 0x20
	LocalSet  Opcode = 0x21
	LocalTee  Opcode = 0x22
	GlobalGet Opcode = 0x23
	GlobalSet Opcode = 0x24

	I32Load  Opcode = 0x28
	I64Load  Opcode = 0x29
	I32Load8S Opcode = 0x2C
	I32Load8U Opcode = 0x2D
	I32Store Opcode = 0x36
	I64Store Opcode = 0x37
	I32Store8 Opcode = 0x3A
	MemorySize Opcode = 0x3F
	MemoryGrow Opcode = 0x40

	I32Const Opcode = 0x41
	I64Const Opcode = 0x42
	F32Const Opcode = 0x43
	F64Const Opcode = 0x44

	I32Eqz Opcode = 0x45
	I32Eq  Opcode = 0x46
	I32Ne  Opcode = 0x47
	I32LtS Opcode = 0x48
	I32GtS Opcode = 0x4A
	I32LeS Opcode = 0x4C
	I32GeS Opcode = 0x4E

	I64Eqz Opcode = 0x50
	I64Eq  Opcode = 0x51
	I64Ne  Opcode = 0x52
	I64LtS Opcode = 0x53
	I64GtS Opcode = 0x55
	I64LeS Opcode = 0x57
	I64GeS Opcode = 0x59

	I32Clz    Opcode = 0x67
	I32Add    Opcode = 0x6A
	I32Sub    Opcode = 0x6B
	I32Mul    Opcode = 0x6C
	I32DivS   Opcode = 0x6D
	I32DivU   Opcode = 0x6E
	I32And    Opcode = 0x71
	I32Or     Opcode = 0x72
	I32Xor    Opcode = 0x73
	I32Shl    Opcode = 0x74
	I32ShrS   Opcode = 0x75
	I32ShrU   Opcode = 0x76

	I64Clz    Opcode = 0x79
	I64Add    Opcode = 0x7C
	I64Sub    Opcode = 0x7D
	I64Mul    Opcode = 0x7E
	I64DivS   Opcode = 0x7F
	I64DivU   Opcode = 0x80
	I64And    Opcode = 0x83
	I64Or     Opcode = 0x84
	I64Xor    Opcode = 0x85
	I64Shl    Opcode = 0x86
	I64ShrS   Opcode = 0x87
	I64ShrU   Opcode = 0x88

	I32WrapI64    Opcode = 0xA7
	I64ExtendI32S Opcode = 0xAC
	I64ExtendI32U Opcode = 0xAD
)
