// Package types defines the small set of WebAssembly value types used by the
// emitted modules. Only the numeric types are needed: the code generator
// never materializes a source-language value as a Wasm reference or vector
// type, per the value ABI in the specification.
package types

// ValueType identifies a WebAssembly value type carried on the operand stack,
// in a local, or in a global.
type ValueType byte

// The four Wasm numeric value types. Binary encodings match the MVP spec.
const (
	I32 ValueType = 0x7F
	I64 ValueType = 0x7E
	F32 ValueType = 0x7D
	F64 ValueType = 0x7C
)

func (t ValueType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// BlockType represents the type annotation on a structured control
// instruction (block/loop/if). Zero or one result value covers everything
// the generator emits; multi-value block signatures are not needed because
// every source type's operand-stack shape is flattened into a sequence of
// instructions that leave the individual components on the stack, never a
// single block with a multi-value signature.
type BlockType struct {
	Result *ValueType
}

// Empty reports whether the block produces no value.
func (b BlockType) Empty() bool {
	return b.Result == nil
}
