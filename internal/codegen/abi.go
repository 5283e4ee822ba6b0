package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// Bytes reserved for a principal's in-memory representation: a 1-byte
// version, a 20-byte Hash160, a 1-byte contract-name length, and up to 128
// bytes of contract name.
const (
	principalVersionBytes    = 1
	principalHashBytes       = 20
	principalBytes           = principalVersionBytes + principalHashBytes
	contractNameLengthBytes  = 1
	standardPrincipalBytes   = principalBytes + contractNameLengthBytes
	contractNameMaxLength    = 128
	principalMemSize         = standardPrincipalBytes + contractNameMaxLength
)

// Shape returns the sequence of Wasm value types used to pass a value of
// type t on the operand stack (as a local-variable group, a function
// parameter list, or a function result list). Composite types expand to the
// concatenation of their components' shapes so that every value has a
// static, fixed-width Wasm representation — there is never a variable
// number of stack slots for a given Clarity type.
func Shape(t ast.Type) []types.ValueType {
	switch ty := t.(type) {
	case ast.NoType:
		return []types.ValueType{types.I32}
	case ast.IntType:
		return []types.ValueType{types.I64, types.I64}
	case ast.UintType:
		return []types.ValueType{types.I64, types.I64}
	case ast.BoolType:
		return []types.ValueType{types.I32}
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		return []types.ValueType{types.I32, types.I32} // offset, length
	case ast.BufferType, ast.StringASCIIType, ast.StringUTF8Type:
		return []types.ValueType{types.I32, types.I32} // offset, length
	case ast.ListType:
		return []types.ValueType{types.I32, types.I32} // offset, length
	case ast.TupleType:
		var shape []types.ValueType
		for _, f := range ty.Fields {
			shape = append(shape, Shape(f.Type)...)
		}
		return shape
	case ast.OptionalType:
		shape := []types.ValueType{types.I32} // indicator
		return append(shape, Shape(ty.Some)...)
	case ast.ResponseType:
		shape := []types.ValueType{types.I32} // indicator
		shape = append(shape, Shape(ty.Ok)...)
		shape = append(shape, Shape(ty.Err)...)
		return shape
	default:
		panic("codegen: Shape: unhandled type " + t.String())
	}
}

// StackSize is len(Shape(t)): how many operand-stack slots (and therefore
// how many contiguous locals) a value of type t occupies.
func StackSize(t ast.Type) int {
	return len(Shape(t))
}

// IsInMemory reports whether a value of type t is passed on the stack as an
// (offset, length) pair into linear memory, as opposed to being passed by
// value directly in its stack slots.
func IsInMemory(t ast.Type) bool {
	switch t.(type) {
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType,
		ast.BufferType, ast.StringASCIIType, ast.StringUTF8Type, ast.ListType:
		return true
	default:
		return false
	}
}

// MemSize returns the number of linear-memory bytes needed to hold a value
// of type t, excluding the (offset, length) representation pair used for
// in-memory types on the stack — i.e. the size of the bytes the pair points
// at, or of the flattened byte layout for composite non-in-memory types
// whose components recurse into in-memory types (e.g. a tuple containing a
// buffer field).
func MemSize(t ast.Type) int {
	switch ty := t.(type) {
	case ast.NoType:
		return 4
	case ast.IntType, ast.UintType:
		return 16
	case ast.BoolType:
		return 4
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		return principalMemSize
	case ast.BufferType:
		return ty.Max
	case ast.StringASCIIType:
		return ty.Max
	case ast.StringUTF8Type:
		return ty.Max * 4 // one big-endian 32-bit scalar per character
	case ast.ListType:
		return ty.Max * MemSize(ty.Elem)
	case ast.TupleType:
		size := 0
		for _, f := range ty.Fields {
			size += MemSize(f.Type)
		}
		return size
	case ast.OptionalType:
		return 4 + MemSize(ty.Some)
	case ast.ResponseType:
		return 4 + MemSize(ty.Ok) + MemSize(ty.Err)
	default:
		panic("codegen: MemSize: unhandled type " + t.String())
	}
}

// ElementStride is the fixed number of bytes between successive elements of
// a list(elem, N) in linear memory: every element, including in-memory
// types, is stored by value (not by reference) so that list indexing is a
// constant-offset computation.
func ElementStride(elem ast.Type) int {
	return MemSize(elem)
}

// PersistedSize is MemSize plus a 4-byte length header for every
// principal/callable/trait-reference component a value of type t contains
// (recursively, through Tuple/Optional/Response). It sizes the region
// storePersistedValue/loadPersistedValue use for a data-var or map value
// crossing the host storage boundary (define_variable/set_variable/
// get_variable, map_set/map_insert/map_get), as opposed to MemSize's use
// for ordinary in-memory layout (list construction, contract-call/host-call
// argument marshalling), where no header is written.
//
// A principal's payload bytes alone don't carry their own length: a
// standard principal is principalBytes long, a contract principal is
// longer by a name-dependent amount, and only the bytes — never the
// length — survive a plain memcpy into a fixed-capacity slot. Without the
// header, reading such a value back out of storage has no way to recover
// anything but the slot's worst-case capacity, which corrupts any
// consensus-buffer encoding taken of a storage-round-tripped principal.
//
// List values are deliberately excluded: a list's elements are stored by
// value at ElementStride(elem)-fixed offsets, and index arithmetic
// throughout the generator depends on that stride being a constant
// derived from MemSize alone. Giving a variable-length element its own
// header would mean a per-element stride, which is out of scope here;
// PersistedSize falls back to MemSize for ast.ListType (and for any
// element type nested inside one).
func PersistedSize(t ast.Type) int {
	switch ty := t.(type) {
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		return 4 + principalMemSize
	case ast.TupleType:
		size := 0
		for _, f := range ty.Fields {
			size += PersistedSize(f.Type)
		}
		return size
	case ast.OptionalType:
		return 4 + PersistedSize(ty.Some)
	case ast.ResponseType:
		return 4 + PersistedSize(ty.Ok) + PersistedSize(ty.Err)
	default:
		return MemSize(t)
	}
}
