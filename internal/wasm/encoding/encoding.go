// Package encoding serializes an in-progress module.Module to the binary
// WebAssembly format. The generator calls WriteModule exactly once, after
// every code-generation stage has run.
package encoding

import (
	"bytes"
	"io"

	"github.com/clarlang/c2w/internal/wasm/module"
)

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionTable    = 4
	sectionMemory   = 5
	sectionGlobal   = 6
	sectionExport   = 7
	sectionStart    = 8
	sectionElement  = 9
	sectionCode     = 10
	sectionData     = 11
	sectionCustom   = 0
)

// WriteModule encodes m in its entirety to w.
func WriteModule(w io.Writer, m *module.Module) error {
	if _, err := w.Write([]byte{0x00, 0x61, 0x73, 0x6d}); err != nil { // magic: \0asm
		return err
	}
	if err := writeU32LE(w, 1); err != nil { // binary format version
		return err
	}

	sections := []struct {
		id  byte
		buf *bytes.Buffer
	}{
		{sectionType, encodeTypeSection(m)},
		{sectionImport, encodeImportSection(m)},
		{sectionFunction, encodeFunctionSection(m)},
		{sectionTable, encodeTableSection(m)},
		{sectionMemory, encodeMemorySection(m)},
		{sectionGlobal, encodeGlobalSection(m)},
		{sectionExport, encodeExportSection(m)},
		{sectionStart, encodeStartSection(m)},
		{sectionElement, encodeElementSection(m)},
		{sectionCode, encodeCodeSection(m)},
		{sectionData, encodeDataSection(m)},
	}

	for _, s := range sections {
		if s.buf == nil || s.buf.Len() == 0 {
			continue
		}
		if err := writeByte(w, s.id); err != nil {
			return err
		}
		if err := writeU32(w, uint32(s.buf.Len())); err != nil {
			return err
		}
		if _, err := w.Write(s.buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

func writeU32LE(w io.Writer, x uint32) error {
	buf := []byte{byte(x), byte(x >> 8), byte(x >> 16), byte(x >> 24)}
	_, err := w.Write(buf)
	return err
}

func encodeTypeSection(m *module.Module) *bytes.Buffer {
	if len(m.Type.Functions) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Type.Functions)))
	for _, fn := range m.Type.Functions {
		writeByte(&buf, 0x60) // func type tag
		writeU32(&buf, uint32(len(fn.Params)))
		for _, p := range fn.Params {
			writeByte(&buf, byte(p))
		}
		writeU32(&buf, uint32(len(fn.Results)))
		for _, r := range fn.Results {
			writeByte(&buf, byte(r))
		}
	}
	return &buf
}

func encodeImportSection(m *module.Module) *bytes.Buffer {
	if len(m.Import.Imports) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Import.Imports)))
	for _, imp := range m.Import.Imports {
		writeName(&buf, imp.Module)
		writeName(&buf, imp.Name)
		switch d := imp.Descriptor.(type) {
		case module.FunctionImport:
			writeByte(&buf, 0x00)
			writeU32(&buf, d.Type)
		}
	}
	return &buf
}

func encodeFunctionSection(m *module.Module) *bytes.Buffer {
	if len(m.Function.TypeIndices) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Function.TypeIndices)))
	for _, idx := range m.Function.TypeIndices {
		writeU32(&buf, idx)
	}
	return &buf
}

func encodeLimits(buf *bytes.Buffer, lim module.Limits) {
	if lim.Max != nil {
		writeByte(buf, 0x01)
		writeU32(buf, lim.Min)
		writeU32(buf, *lim.Max)
	} else {
		writeByte(buf, 0x00)
		writeU32(buf, lim.Min)
	}
}

func encodeTableSection(m *module.Module) *bytes.Buffer {
	if len(m.Table.Tables) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Table.Tables)))
	for _, t := range m.Table.Tables {
		writeByte(&buf, 0x70) // funcref
		encodeLimits(&buf, t.Lim)
	}
	return &buf
}

func encodeMemorySection(m *module.Module) *bytes.Buffer {
	if len(m.Memory.Memories) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Memory.Memories)))
	for _, mem := range m.Memory.Memories {
		encodeLimits(&buf, mem.Lim)
	}
	return &buf
}

func encodeExpr(buf *bytes.Buffer, e module.Expr) {
	writeInstrs(buf, e.Instrs)
	writeByte(buf, 0x0B) // end
}

func encodeGlobalSection(m *module.Module) *bytes.Buffer {
	if len(m.Global.Globals) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Global.Globals)))
	for _, g := range m.Global.Globals {
		writeByte(&buf, byte(g.Type))
		if g.Mutable {
			writeByte(&buf, 0x01)
		} else {
			writeByte(&buf, 0x00)
		}
		encodeExpr(&buf, g.Init)
	}
	return &buf
}

func encodeExportSection(m *module.Module) *bytes.Buffer {
	if len(m.Export.Exports) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Export.Exports)))
	for _, e := range m.Export.Exports {
		writeName(&buf, e.Name)
		writeByte(&buf, byte(e.Descriptor.Type))
		writeU32(&buf, e.Descriptor.Index)
	}
	return &buf
}

func encodeStartSection(m *module.Module) *bytes.Buffer {
	if m.Start.FuncIndex == nil {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, *m.Start.FuncIndex)
	return &buf
}

func encodeElementSection(m *module.Module) *bytes.Buffer {
	if len(m.Element.Segments) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Element.Segments)))
	for _, seg := range m.Element.Segments {
		writeU32(&buf, seg.Index)
		encodeExpr(&buf, seg.Offset)
		writeU32(&buf, uint32(len(seg.Indices)))
		for _, idx := range seg.Indices {
			writeU32(&buf, idx)
		}
	}
	return &buf
}

func encodeCodeSection(m *module.Module) *bytes.Buffer {
	if len(m.Code.Segments) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Code.Segments)))
	for _, seg := range m.Code.Segments {
		buf.Write(seg.Code)
	}
	return &buf
}

func encodeDataSection(m *module.Module) *bytes.Buffer {
	if len(m.Data.Segments) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(m.Data.Segments)))
	for _, seg := range m.Data.Segments {
		writeU32(&buf, seg.Index)
		encodeExpr(&buf, seg.Offset)
		writeU32(&buf, uint32(len(seg.Init)))
		buf.Write(seg.Init)
	}
	return &buf
}
