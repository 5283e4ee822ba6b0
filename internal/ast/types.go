// Package ast defines the trusted, fully-analyzed representation of a
// source-language contract that the code generator consumes. Nothing in
// this package parses or type-checks source text: every Type and Expr here
// is assumed to already have been validated by an external front end, and
// the generator treats it as authoritative (see the purpose and scope notes
// on the external collaborators this package stands in for).
package ast

import "fmt"

// Kind enumerates the source-language value kinds the generator knows how
// to lower. Every other type in the source language reduces to some
// combination of these.
type Kind int

const (
	KindNoType Kind = iota
	KindInt
	KindUint
	KindBool
	KindPrincipal
	KindCallable
	KindTrait
	KindBuffer
	KindStringASCII
	KindStringUTF8
	KindList
	KindTuple
	KindOptional
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindNoType:
		return "NoType"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindBool:
		return "bool"
	case KindPrincipal:
		return "principal"
	case KindCallable:
		return "callable"
	case KindTrait:
		return "trait"
	case KindBuffer:
		return "buffer"
	case KindStringASCII:
		return "string-ascii"
	case KindStringUTF8:
		return "string-utf8"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindOptional:
		return "optional"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Type is the static type of an expression. Implementations are value
// types; composite types (list, tuple, optional, response) embed their
// component types by value. TupleType keeps its fields in a slice, so ==
// on two Types panics when both hold the same tuple-bearing dynamic type.
type Type interface {
	Kind() Kind
	String() string
}

// NoType is used as a structural placeholder where the source language has
// no value to offer (e.g. the "then" side of an asserts! that always
// panics).
type NoType struct{}

func (NoType) Kind() Kind      { return KindNoType }
func (NoType) String() string  { return "NoType" }

// IntType is the signed 128-bit integer type.
type IntType struct{}

func (IntType) Kind() Kind     { return KindInt }
func (IntType) String() string { return "int" }

// UintType is the unsigned 128-bit integer type.
type UintType struct{}

func (UintType) Kind() Kind     { return KindUint }
func (UintType) String() string { return "uint" }

// BoolType is the two-valued boolean type.
type BoolType struct{}

func (BoolType) Kind() Kind     { return KindBool }
func (BoolType) String() string { return "bool" }

// PrincipalType is a standard or contract principal.
type PrincipalType struct{}

func (PrincipalType) Kind() Kind     { return KindPrincipal }
func (PrincipalType) String() string { return "principal" }

// CallableType marshals like a principal; it names a contract (and
// optionally a trait it must implement).
type CallableType struct {
	TraitName string // empty if untyped
}

func (CallableType) Kind() Kind     { return KindCallable }
func (CallableType) String() string { return "callable" }

// TraitReferenceType marshals like a principal; it names the trait a
// dynamic contract-call? target must implement.
type TraitReferenceType struct {
	TraitName string
}

func (TraitReferenceType) Kind() Kind     { return KindTrait }
func (t TraitReferenceType) String() string { return fmt.Sprintf("trait<%s>", t.TraitName) }

// BufferType is a byte sequence with a fixed maximum length.
type BufferType struct {
	Max int
}

func (BufferType) Kind() Kind      { return KindBuffer }
func (t BufferType) String() string { return fmt.Sprintf("buff %d", t.Max) }

// StringASCIIType is an ASCII string with a fixed maximum length.
type StringASCIIType struct {
	Max int
}

func (StringASCIIType) Kind() Kind      { return KindStringASCII }
func (t StringASCIIType) String() string { return fmt.Sprintf("string-ascii %d", t.Max) }

// StringUTF8Type is a UTF-8 string with a fixed maximum number of unicode
// scalars; stored in memory as 4 bytes per scalar, big-endian.
type StringUTF8Type struct {
	Max int
}

func (StringUTF8Type) Kind() Kind      { return KindStringUTF8 }
func (t StringUTF8Type) String() string { return fmt.Sprintf("string-utf8 %d", t.Max) }

// ListType is an ordered, homogeneous sequence with a fixed maximum length.
type ListType struct {
	Elem Type
	Max  int
}

func (ListType) Kind() Kind      { return KindList }
func (t ListType) String() string { return fmt.Sprintf("(list %d %s)", t.Max, t.Elem) }

// TupleField is one key/type pair of a tuple type. Fields are always stored
// in TupleType.Fields in canonical (lexicographic-by-key) order: that order
// is both the Wasm ABI field order and the consensus serialization field
// order.
type TupleField struct {
	Key  string
	Type Type
}

// TupleType is an ordered key->value map; field order is fixed by the type,
// not by how the source expression wrote the literal.
type TupleType struct {
	Fields []TupleField
}

func (TupleType) Kind() Kind { return KindTuple }
func (t TupleType) String() string {
	s := "(tuple"
	for _, f := range t.Fields {
		s += fmt.Sprintf(" (%s %s)", f.Key, f.Type)
	}
	return s + ")"
}

// FieldIndex returns the canonical-order index of key, or -1 if absent.
func (t TupleType) FieldIndex(key string) int {
	for i, f := range t.Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// OptionalType is the sum {none, some T}.
type OptionalType struct {
	Some Type
}

func (OptionalType) Kind() Kind      { return KindOptional }
func (t OptionalType) String() string { return fmt.Sprintf("(optional %s)", t.Some) }

// ResponseType is the sum {ok O, err E}.
type ResponseType struct {
	Ok  Type
	Err Type
}

func (ResponseType) Kind() Kind { return KindResponse }
func (t ResponseType) String() string {
	return fmt.Sprintf("(response %s %s)", t.Ok, t.Err)
}
