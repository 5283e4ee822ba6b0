package module

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/wasm/types"
)

func TestNewHasDefaultMemory(t *testing.T) {
	m := New()
	require.EqualValues(t, 1, m.Version)
	require.Len(t, m.Memory.Memories, 1)
	require.EqualValues(t, 2, m.Memory.Memories[0].Lim.Min)
	require.Nil(t, m.Memory.Memories[0].Lim.Max)
}

func TestFunctionTypeEqual(t *testing.T) {
	a := FunctionType{Params: []types.ValueType{types.I32, types.I64}, Results: []types.ValueType{types.I32}}
	b := FunctionType{Params: []types.ValueType{types.I32, types.I64}, Results: []types.ValueType{types.I32}}
	c := FunctionType{Params: []types.ValueType{types.I64, types.I32}, Results: []types.ValueType{types.I32}}
	d := FunctionType{Params: []types.ValueType{types.I32}, Results: []types.ValueType{types.I32}}

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(d))
}

func TestFunctionTypeString(t *testing.T) {
	fn := FunctionType{Params: []types.ValueType{types.I32}, Results: []types.ValueType{types.I64}}
	require.Contains(t, fn.String(), "->")
}

func TestPrettyDoesNotPanicOnEmptyModule(t *testing.T) {
	m := New()
	var buf bytes.Buffer
	require.NotPanics(t, func() { Pretty(&buf, m) })
	require.Contains(t, buf.String(), "version:")
}

func TestPrettyWithContentsDumpsDataAndCode(t *testing.T) {
	m := New()
	m.Data.Segments = []DataSegment{{Init: []byte("hello")}}
	m.Code.Segments = []CodeSegment{{Code: []byte{0x01, 0x02}}}
	var buf bytes.Buffer
	Pretty(&buf, m, PrettyOption{Contents: true})
	require.Contains(t, buf.String(), "data section:")
	require.Contains(t, buf.String(), "code section:")
}

func TestPrettyFunctionIndexOutOfRange(t *testing.T) {
	m := New()
	m.Function.TypeIndices = []uint32{5}
	var buf bytes.Buffer
	require.NotPanics(t, func() { Pretty(&buf, m) })
	require.Contains(t, buf.String(), "???")
}
