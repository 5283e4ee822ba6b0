package encoding

import (
	"bytes"
	"fmt"
	"io"

	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/module"
	"github.com/clarlang/c2w/internal/wasm/opcode"
	"github.com/clarlang/c2w/internal/wasm/types"
)

func writeBlockType(w io.Writer, t *types.ValueType) error {
	if t == nil {
		return writeByte(w, 0x40) // empty block type
	}
	return writeByte(w, byte(*t))
}

// writeInstr encodes a single instruction, recursing into the bodies of
// structured control instructions.
func writeInstr(w io.Writer, instr instruction.Instruction) error {
	switch i := instr.(type) {
	case instruction.Block:
		if err := writeByte(w, byte(opcode.Block)); err != nil {
			return err
		}
		if err := writeBlockType(w, i.Result); err != nil {
			return err
		}
		if err := writeInstrs(w, i.Instrs); err != nil {
			return err
		}
		return writeByte(w, byte(opcode.End))
	case instruction.Loop:
		if err := writeByte(w, byte(opcode.Loop)); err != nil {
			return err
		}
		if err := writeBlockType(w, nil); err != nil {
			return err
		}
		if err := writeInstrs(w, i.Instrs); err != nil {
			return err
		}
		return writeByte(w, byte(opcode.End))
	case instruction.If:
		if err := writeByte(w, byte(opcode.If)); err != nil {
			return err
		}
		if err := writeBlockType(w, i.Result); err != nil {
			return err
		}
		if err := writeInstrs(w, i.Then); err != nil {
			return err
		}
		if len(i.Else) > 0 {
			if err := writeByte(w, byte(opcode.Else)); err != nil {
				return err
			}
			if err := writeInstrs(w, i.Else); err != nil {
				return err
			}
		}
		return writeByte(w, byte(opcode.End))
	default:
		if err := writeByte(w, byte(instr.Op())); err != nil {
			return err
		}
		return writeImmediates(w, instr)
	}
}

func writeImmediates(w io.Writer, instr instruction.Instruction) error {
	for _, arg := range instr.ImmediateArgs() {
		switch v := arg.(type) {
		case int32:
			if err := writeI32(w, v); err != nil {
				return err
			}
		case int64:
			if err := writeI64(w, v); err != nil {
				return err
			}
		case uint32:
			if err := writeU32(w, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported immediate type %T", v)
		}
	}
	return nil
}

func writeInstrs(w io.Writer, instrs []instruction.Instruction) error {
	for _, instr := range instrs {
		if err := writeInstr(w, instr); err != nil {
			return err
		}
	}
	return nil
}

// WriteCodeEntry encodes a function's locals and body as the contents of one
// code-section entry, including its byte-length prefix.
func WriteCodeEntry(w io.Writer, entry *module.CodeEntry) error {
	var body bytes.Buffer
	if err := writeU32(&body, uint32(len(entry.Func.Locals))); err != nil {
		return err
	}
	for _, l := range entry.Func.Locals {
		if err := writeU32(&body, l.Count); err != nil {
			return err
		}
		if err := writeByte(&body, byte(l.Type)); err != nil {
			return err
		}
	}
	if err := writeInstrs(&body, entry.Func.Instrs); err != nil {
		return err
	}
	if err := writeByte(&body, byte(opcode.End)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(body.Len())); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}
