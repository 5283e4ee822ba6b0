// Package serialize implements the bit-exact consensus buffer codec:
// Encode/Decode mirror the Wasm-side to-consensus-buff?/from-consensus-buff?
// primitives (internal/codegen/words_consensus.go) over a host-side Go
// value representation, so the format can be tested directly without
// running the emitted Wasm through a runtime.
package serialize

import (
	"math/big"

	"github.com/clarlang/c2w/internal/ast"
)

// Value is a host-side representation of one source-language value, tagged
// by the ast.Kind it holds. Exactly the fields matching Kind are meaningful,
// mirroring ast.Literal's "one active field" discipline.
type Value struct {
	Kind ast.Kind

	Int     *big.Int // Int, Uint
	Bool    bool
	Bytes   []byte // Buffer, StringASCII (raw)
	Runes   []rune // StringUTF8
	List    []Value
	Tuple   []TupleValue
	Some    *Value // Optional: nil means none
	Ok      bool   // Response: true selects OkValue, false selects ErrValue
	OkValue *Value
	ErrValue *Value

	// Principal/Callable/Trait fields.
	PrincipalVersion byte
	PrincipalHash    []byte // 20 bytes
	ContractName     string // empty selects the standard-principal prefix
}

// TupleValue is one key/value pair of a Tuple Value, in the same canonical
// key order as the owning ast.TupleType.
type TupleValue struct {
	Key   string
	Value Value
}

func IntValue(v *big.Int) Value  { return Value{Kind: ast.KindInt, Int: v} }
func UintValue(v *big.Int) Value { return Value{Kind: ast.KindUint, Int: v} }
func BoolValue(v bool) Value     { return Value{Kind: ast.KindBool, Bool: v} }
func BufferValue(b []byte) Value { return Value{Kind: ast.KindBuffer, Bytes: b} }

func NoneValue() Value       { return Value{Kind: ast.KindOptional} }
func SomeValue(v Value) Value { return Value{Kind: ast.KindOptional, Some: &v} }

func OkValue(v Value) Value  { return Value{Kind: ast.KindResponse, Ok: true, OkValue: &v} }
func ErrValue(v Value) Value { return Value{Kind: ast.KindResponse, Ok: false, ErrValue: &v} }
