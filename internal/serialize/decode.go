package serialize

import (
	"math/big"
	"unicode/utf8"

	"github.com/clarlang/c2w/internal/ast"
)

// Decode parses data as one value of static type t, requiring that data is
// consumed exactly (spec.md §4.8: "top-level callers must verify the entire
// input buffer was consumed, otherwise return none"). It never panics on
// malformed input; any failure reports ok == false.
func Decode(data []byte, t ast.Type) (v Value, ok bool) {
	val, n, ok := decodeAt(data, 0, t)
	if !ok || n != len(data) {
		return Value{}, false
	}
	return val, true
}

func need(data []byte, offset, n int) bool {
	return offset >= 0 && n >= 0 && offset+n <= len(data) && offset+n >= offset
}

func getUint32BE(data []byte, offset int) uint32 {
	return uint32(data[offset])<<24 | uint32(data[offset+1])<<16 | uint32(data[offset+2])<<8 | uint32(data[offset+3])
}

func decodeInt128(data []byte, offset int, signed bool) *big.Int {
	mag := new(big.Int).SetBytes(data[offset : offset+16])
	if signed && mag.Bit(127) == 1 {
		mag.Sub(mag, twoTo128)
	}
	return mag
}

// decodeAt parses one value of type t starting at offset, returning the
// offset immediately past it. ok is false for any structural violation:
// an out-of-range read, a prefix mismatch, or a domain violation (an
// invalid principal version byte, a non-ASCII string-ascii byte, a list
// count exceeding its declared max, or a tuple key mismatch).
func decodeAt(data []byte, offset int, t ast.Type) (Value, int, bool) {
	if !need(data, offset, 1) {
		return Value{}, 0, false
	}
	prefix := Prefix(data[offset])
	offset++

	switch ty := t.(type) {
	case ast.IntType:
		if prefix != PrefixInt || !need(data, offset, 16) {
			return Value{}, 0, false
		}
		return IntValue(decodeInt128(data, offset, true)), offset + 16, true

	case ast.UintType:
		if prefix != PrefixUint || !need(data, offset, 16) {
			return Value{}, 0, false
		}
		return UintValue(decodeInt128(data, offset, false)), offset + 16, true

	case ast.BoolType:
		switch prefix {
		case PrefixBoolTrue:
			return BoolValue(true), offset, true
		case PrefixBoolFalse:
			return BoolValue(false), offset, true
		default:
			return Value{}, 0, false
		}

	case ast.BufferType:
		if prefix != PrefixBuffer || !need(data, offset, 4) {
			return Value{}, 0, false
		}
		n := int(getUint32BE(data, offset))
		offset += 4
		if n > ty.Max || !need(data, offset, n) {
			return Value{}, 0, false
		}
		return BufferValue(append([]byte(nil), data[offset:offset+n]...)), offset + n, true

	case ast.StringASCIIType:
		if prefix != PrefixStringASCII || !need(data, offset, 4) {
			return Value{}, 0, false
		}
		n := int(getUint32BE(data, offset))
		offset += 4
		if n > ty.Max || !need(data, offset, n) {
			return Value{}, 0, false
		}
		raw := data[offset : offset+n]
		for _, c := range raw {
			if c < asciiMin || c > asciiMax {
				return Value{}, 0, false
			}
		}
		return Value{Kind: ast.KindStringASCII, Bytes: append([]byte(nil), raw...)}, offset + n, true

	case ast.StringUTF8Type:
		if prefix != PrefixStringUTF8 || !need(data, offset, 4) {
			return Value{}, 0, false
		}
		n := int(getUint32BE(data, offset))
		offset += 4
		if !need(data, offset, n) {
			return Value{}, 0, false
		}
		raw := data[offset : offset+n]
		if !utf8.Valid(raw) {
			return Value{}, 0, false
		}
		runes := []rune(string(raw))
		if len(runes) > ty.Max {
			return Value{}, 0, false
		}
		return Value{Kind: ast.KindStringUTF8, Runes: runes}, offset + n, true

	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		return decodePrincipal(data, offset, prefix)

	case ast.OptionalType:
		switch prefix {
		case PrefixOptionalNone:
			return NoneValue(), offset, true
		case PrefixOptionalSome:
			inner, n, ok := decodeAt(data, offset, ty.Some)
			if !ok {
				return Value{}, 0, false
			}
			return SomeValue(inner), n, true
		default:
			return Value{}, 0, false
		}

	case ast.ResponseType:
		switch prefix {
		case PrefixResponseOk:
			inner, n, ok := decodeAt(data, offset, ty.Ok)
			if !ok {
				return Value{}, 0, false
			}
			return OkValue(inner), n, true
		case PrefixResponseErr:
			inner, n, ok := decodeAt(data, offset, ty.Err)
			if !ok {
				return Value{}, 0, false
			}
			return ErrValue(inner), n, true
		default:
			return Value{}, 0, false
		}

	case ast.ListType:
		if prefix != PrefixList || !need(data, offset, 4) {
			return Value{}, 0, false
		}
		count := int(getUint32BE(data, offset))
		offset += 4
		if count > ty.Max {
			return Value{}, 0, false
		}
		elems := make([]Value, 0, count)
		for i := 0; i < count; i++ {
			elem, n, ok := decodeAt(data, offset, ty.Elem)
			if !ok {
				return Value{}, 0, false
			}
			elems = append(elems, elem)
			offset = n
		}
		return Value{Kind: ast.KindList, List: elems}, offset, true

	case ast.TupleType:
		if prefix != PrefixTuple || !need(data, offset, 4) {
			return Value{}, 0, false
		}
		count := int(getUint32BE(data, offset))
		offset += 4
		if count != len(ty.Fields) {
			return Value{}, 0, false
		}
		fields := make([]TupleValue, 0, count)
		for _, decl := range ty.Fields {
			if !need(data, offset, 1) {
				return Value{}, 0, false
			}
			keyLen := int(data[offset])
			offset++
			if keyLen != len(decl.Key) || !need(data, offset, keyLen) {
				return Value{}, 0, false
			}
			if string(data[offset:offset+keyLen]) != decl.Key {
				return Value{}, 0, false
			}
			offset += keyLen
			val, n, ok := decodeAt(data, offset, decl.Type)
			if !ok {
				return Value{}, 0, false
			}
			fields = append(fields, TupleValue{Key: decl.Key, Value: val})
			offset = n
		}
		return Value{Kind: ast.KindTuple, Tuple: fields}, offset, true

	default:
		return Value{}, 0, false
	}
}

func decodePrincipal(data []byte, offset int, prefix Prefix) (Value, int, bool) {
	if !need(data, offset, 21) {
		return Value{}, 0, false
	}
	version := data[offset]
	if version < principalVersionMin || version > principalVersionMax {
		return Value{}, 0, false
	}
	hash := append([]byte(nil), data[offset+1:offset+21]...)
	offset += 21

	switch prefix {
	case PrefixStandardPrincipal:
		return Value{Kind: ast.KindPrincipal, PrincipalVersion: version, PrincipalHash: hash}, offset, true
	case PrefixContractPrincipal:
		if !need(data, offset, 1) {
			return Value{}, 0, false
		}
		nameLen := int(data[offset])
		offset++
		if nameLen > contractNameMax || !need(data, offset, nameLen) {
			return Value{}, 0, false
		}
		name := string(data[offset : offset+nameLen])
		offset += nameLen
		return Value{Kind: ast.KindPrincipal, PrincipalVersion: version, PrincipalHash: hash, ContractName: name}, offset, true
	default:
		return Value{}, 0, false
	}
}
