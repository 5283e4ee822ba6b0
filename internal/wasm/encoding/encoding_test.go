package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/module"
	"github.com/clarlang/c2w/internal/wasm/types"
)

func TestWriteUvarint(t *testing.T) {
	cases := []struct {
		in   uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, writeUvarint(&buf, c.in))
		require.Equal(t, c.want, buf.Bytes())
	}
}

func TestWriteVarint(t *testing.T) {
	cases := []struct {
		in   int64
		want []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x7f}},
		{63, []byte{0x3f}},
		{-64, []byte{0x40}},
		{64, []byte{0xc0, 0x00}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, writeVarint(&buf, c.in))
		require.Equal(t, c.want, buf.Bytes())
	}
}

func TestWriteName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeName(&buf, "clarity"))
	require.Equal(t, append([]byte{7}, []byte("clarity")...), buf.Bytes())
}

func TestWriteModuleMagicAndVersion(t *testing.T) {
	m := module.New()
	var buf bytes.Buffer
	require.NoError(t, WriteModule(&buf, m))
	out := buf.Bytes()
	require.True(t, len(out) >= 8)
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, out[:4])
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, out[4:8])
}

func TestWriteModuleEmitsExpectedSections(t *testing.T) {
	m := module.New()
	m.Type.Functions = []module.FunctionType{
		{Params: []types.ValueType{types.I32}, Results: []types.ValueType{types.I32}},
	}
	m.Import.Imports = []module.Import{
		{Module: "clarity", Name: "print", Descriptor: module.FunctionImport{Type: 0}},
	}
	m.Function.TypeIndices = []uint32{0}
	m.Global.Globals = []module.Global{
		{Type: types.I32, Mutable: true, Init: module.Expr{Instrs: []instruction.Instruction{instruction.I32Const{Value: 0}}}},
	}
	m.Export.Exports = []module.Export{
		{Name: "run", Descriptor: module.ExportDescriptor{Type: module.FunctionExportType, Index: 1}},
	}
	m.Data.Segments = []module.DataSegment{
		{Index: 0, Offset: module.Expr{Instrs: []instruction.Instruction{instruction.I32Const{Value: 0}}}, Init: []byte("hi")},
	}

	var codeBuf bytes.Buffer
	entry := &module.CodeEntry{Func: module.Func{
		Locals: nil,
		Instrs: []instruction.Instruction{instruction.I32Const{Value: 1}},
	}}
	require.NoError(t, WriteCodeEntry(&codeBuf, entry))
	m.Code.Segments = []module.CodeSegment{{Code: codeBuf.Bytes()}}

	var buf bytes.Buffer
	require.NoError(t, WriteModule(&buf, m))
	out := buf.Bytes()

	// after magic + version, the import name, export name and data bytes
	// must each appear somewhere in the encoded sections.
	require.Contains(t, string(out[8:]), "print")
	require.Contains(t, string(out[8:]), "run")
	require.Contains(t, string(out[8:]), "hi")
}

func TestWriteCodeEntryEncodesLocalsAndEnd(t *testing.T) {
	entry := &module.CodeEntry{Func: module.Func{
		Locals: []module.LocalDeclaration{{Count: 2, Type: types.I64}},
		Instrs: []instruction.Instruction{instruction.I32Const{Value: 5}},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCodeEntry(&buf, entry))
	out := buf.Bytes()
	require.NotEmpty(t, out)
	// last byte of the function body is the implicit End opcode (0x0B).
	require.Equal(t, byte(0x0B), out[len(out)-1])
}

func TestWriteInstrNestedBlocks(t *testing.T) {
	result := types.I32
	ifInstr := instruction.If{
		Result: &result,
		Then:   []instruction.Instruction{instruction.I32Const{Value: 1}},
		Else:   []instruction.Instruction{instruction.I32Const{Value: 0}},
	}
	var buf bytes.Buffer
	require.NoError(t, writeInstr(&buf, ifInstr))
	out := buf.Bytes()
	require.NotEmpty(t, out)
	// opcode.If, block type byte, then-branch, else marker, else-branch, end.
	require.Equal(t, byte(0x0B), out[len(out)-1])
}
