package serialize

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/ast"
)

func TestRoundTripInt(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40)}
	for _, c := range cases {
		v := IntValue(big.NewInt(c))
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, v, ast.IntType{}))
		got, ok := Decode(buf.Bytes(), ast.IntType{})
		require.True(t, ok)
		require.Equal(t, 0, v.Int.Cmp(got.Int))
	}
}

func TestEndToEndInt42(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, IntValue(big.NewInt(42)), ast.IntType{}))
	require.Equal(t, "000000000000000000000000000000002a", hexString(buf.Bytes()))
}

func TestEndToEndUint42(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, UintValue(big.NewInt(42)), ast.UintType{}))
	require.Equal(t, "010000000000000000000000000000002a", hexString(buf.Bytes()))
}

func TestEndToEndOkInt(t *testing.T) {
	respType := ast.ResponseType{Ok: ast.IntType{}, Err: ast.NoType{}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, OkValue(IntValue(big.NewInt(42))), respType))
	require.Equal(t, "07000000000000000000000000000000002a", hexString(buf.Bytes()))
}

func TestFromConsensusBuffInt123456(t *testing.T) {
	data := hexBytes(t, "000000000000000000000000000001e240")
	v, ok := Decode(data, ast.IntType{})
	require.True(t, ok)
	require.Equal(t, 0, v.Int.Cmp(big.NewInt(123456)))
}

func TestFromConsensusBuffTrailingByteFails(t *testing.T) {
	data := hexBytes(t, "000000000000000000000000000001e24000")
	_, ok := Decode(data, ast.IntType{})
	require.False(t, ok)
}

func TestTupleCanonicalOrder(t *testing.T) {
	tupleType := ast.TupleType{Fields: []ast.TupleField{
		{Key: "bar", Type: ast.UintType{}},
		{Key: "foo", Type: ast.IntType{}},
	}}
	v := Value{Kind: ast.KindTuple, Tuple: []TupleValue{
		{Key: "foo", Value: IntValue(big.NewInt(123))},
		{Key: "bar", Value: UintValue(big.NewInt(789))},
	}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, v, tupleType))
	want := hexBytes(t, "0c0000000203626172010000000000000000000000000000031503666f6f000000000000000000000000000000007b")
	require.Equal(t, want, buf.Bytes())

	got, ok := Decode(buf.Bytes(), tupleType)
	require.True(t, ok)
	require.Equal(t, "bar", got.Tuple[0].Key)
	require.Equal(t, "foo", got.Tuple[1].Key)
}

func TestDeserializeRejectsBadPrincipalVersion(t *testing.T) {
	hash := bytes.Repeat([]byte{0x01}, 20)
	data := append([]byte{byte(PrefixStandardPrincipal), 0xff}, hash...)
	_, ok := Decode(data, ast.PrincipalType{})
	require.False(t, ok)
}

func TestDeserializeRejectsNonASCII(t *testing.T) {
	data := []byte{byte(PrefixStringASCII), 0, 0, 0, 1, 0x80}
	_, ok := Decode(data, ast.StringASCIIType{Max: 10})
	require.False(t, ok)
}

func TestDeserializeRejectsListOverMax(t *testing.T) {
	data := []byte{byte(PrefixList), 0, 0, 0, 5}
	_, ok := Decode(data, ast.ListType{Elem: ast.IntType{}, Max: 2})
	require.False(t, ok)
}

func TestDeserializeRejectsTupleKeyMismatch(t *testing.T) {
	tupleType := ast.TupleType{Fields: []ast.TupleField{{Key: "foo", Type: ast.IntType{}}}}
	data := append([]byte{byte(PrefixTuple), 0, 0, 0, 1, 3}, []byte("bad")...)
	data = append(data, make([]byte, 17)...)
	_, ok := Decode(data, tupleType)
	require.False(t, ok)
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 2*len(b))
	for i, c := range b {
		out[2*i] = digits[c>>4]
		out[2*i+1] = digits[c&0xf]
	}
	return string(out)
}

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	if len(s)%2 != 0 {
		t.Fatalf("odd length hex string %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := hexDigit(t, s[2*i])
		lo := hexDigit(t, s[2*i+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexDigit(t *testing.T, c byte) byte {
	t.Helper()
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		t.Fatalf("invalid hex digit %q", c)
		return 0
	}
}
