package serialize

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/clarlang/c2w/internal/ast"
)

var twoTo128 = new(big.Int).Lsh(big.NewInt(1), 128)

// encodeInt128 lays out v as 16 big-endian bytes: two's-complement for a
// signed int, plain unsigned magnitude for uint. v must fit in 128 bits.
func encodeInt128(v *big.Int, signed bool) []byte {
	mag := v
	if signed && v.Sign() < 0 {
		mag = new(big.Int).Add(twoTo128, v)
	}
	raw := mag.Bytes()
	out := make([]byte, 16)
	copy(out[16-len(raw):], raw)
	return out
}

func putUint32BE(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v >> 24))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

// Encode writes v's consensus-buffer encoding (spec table, §4.8) to buf,
// validated against its static type t.
func Encode(buf *bytes.Buffer, v Value, t ast.Type) error {
	switch ty := t.(type) {
	case ast.IntType:
		buf.WriteByte(byte(PrefixInt))
		buf.Write(encodeInt128(v.Int, true))
		return nil
	case ast.UintType:
		buf.WriteByte(byte(PrefixUint))
		buf.Write(encodeInt128(v.Int, false))
		return nil
	case ast.BoolType:
		if v.Bool {
			buf.WriteByte(byte(PrefixBoolTrue))
		} else {
			buf.WriteByte(byte(PrefixBoolFalse))
		}
		return nil
	case ast.BufferType:
		buf.WriteByte(byte(PrefixBuffer))
		putUint32BE(buf, uint32(len(v.Bytes)))
		buf.Write(v.Bytes)
		return nil
	case ast.StringASCIIType:
		buf.WriteByte(byte(PrefixStringASCII))
		putUint32BE(buf, uint32(len(v.Bytes)))
		buf.Write(v.Bytes)
		return nil
	case ast.StringUTF8Type:
		data := []byte(string(v.Runes))
		buf.WriteByte(byte(PrefixStringUTF8))
		putUint32BE(buf, uint32(len(data)))
		buf.Write(data)
		return nil
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		if v.ContractName == "" {
			buf.WriteByte(byte(PrefixStandardPrincipal))
			buf.WriteByte(v.PrincipalVersion)
			buf.Write(v.PrincipalHash)
			return nil
		}
		buf.WriteByte(byte(PrefixContractPrincipal))
		buf.WriteByte(v.PrincipalVersion)
		buf.Write(v.PrincipalHash)
		buf.WriteByte(byte(len(v.ContractName)))
		buf.WriteString(v.ContractName)
		return nil
	case ast.OptionalType:
		if v.Some == nil {
			buf.WriteByte(byte(PrefixOptionalNone))
			return nil
		}
		buf.WriteByte(byte(PrefixOptionalSome))
		return Encode(buf, *v.Some, ty.Some)
	case ast.ResponseType:
		if v.Ok {
			buf.WriteByte(byte(PrefixResponseOk))
			return Encode(buf, *v.OkValue, ty.Ok)
		}
		buf.WriteByte(byte(PrefixResponseErr))
		return Encode(buf, *v.ErrValue, ty.Err)
	case ast.ListType:
		buf.WriteByte(byte(PrefixList))
		putUint32BE(buf, uint32(len(v.List)))
		for _, elem := range v.List {
			if err := Encode(buf, elem, ty.Elem); err != nil {
				return err
			}
		}
		return nil
	case ast.TupleType:
		buf.WriteByte(byte(PrefixTuple))
		putUint32BE(buf, uint32(len(ty.Fields)))
		byKey := make(map[string]Value, len(v.Tuple))
		for _, f := range v.Tuple {
			byKey[f.Key] = f.Value
		}
		for _, f := range ty.Fields {
			buf.WriteByte(byte(len(f.Key)))
			buf.WriteString(f.Key)
			if err := Encode(buf, byKey[f.Key], f.Type); err != nil {
				return err
			}
		}
		return nil
	default:
		return internalErrorf("serialize: unsupported type %s", t)
	}
}

// Size returns the exact encoded byte length of v as type t, without
// writing anything — used to validate MAX_VALUE_SIZE bounds before
// allocating (spec.md §4.8, "Serialization size").
func Size(v Value, t ast.Type) int {
	var buf bytes.Buffer
	_ = Encode(&buf, v, t)
	return buf.Len()
}

func internalErrorf(format string, args ...interface{}) error {
	return &EncodeError{Message: fmt.Sprintf(format, args...)}
}

// EncodeError reports a value that does not match its declared static type
// closely enough to serialize; the analyzed AST is trusted (spec.md §1), so
// this indicates a generator-internal bug, not untrusted input.
type EncodeError struct {
	Message string
}

func (e *EncodeError) Error() string { return e.Message }
