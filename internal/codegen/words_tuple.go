package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

func init() {
	// tuple construction: the analyzer normalizes Args into the same order
	// as e.Type.(ast.TupleType).Fields, so lowering is just "evaluate every
	// field value in order" — the flattened per-field shapes concatenate
	// into the tuple's own Shape with no further work.
	registerWord("tuple", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		tupleTy, ok := e.Type.(ast.TupleType)
		if !ok {
			return nil, internalError(e.Location, "tuple: expected tuple type, got %s", e.Type)
		}
		if len(e.Args) != len(tupleTy.Fields) {
			return nil, argumentCountMismatch(e.Location, e.Op, len(tupleTy.Fields), len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, int64(len(e.Args)))
		if err != nil {
			return nil, err
		}
		instrs, err := g.lowerArgs(b, e)
		if err != nil {
			return nil, err
		}
		return seq(charge, instrs), nil
	})

	registerWord("get", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		key, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "get: missing field name")
		}
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		tupleTy, ok := e.Args[0].Type.(ast.TupleType)
		if !ok {
			return nil, internalError(e.Location, "get: expected tuple type, got %s", e.Args[0].Type)
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		valInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		indices := b.declareLocal(e.Args[0].Type)
		start, fieldTy, ok := fieldSlots(tupleTy, key)
		if !ok {
			return nil, internalError(e.Location, "get: missing field %q in tuple", key)
		}
		n := StackSize(fieldTy)
		return seq(charge, valInstrs, setLocals(indices), getLocals(indices[start:start+n])), nil
	})

	registerWord("merge", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		mergedTy, ok := e.Type.(ast.TupleType)
		if !ok {
			return nil, internalError(e.Location, "merge: expected tuple type, got %s", e.Type)
		}
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		leftTy, ok := e.Args[0].Type.(ast.TupleType)
		if !ok {
			return nil, internalError(e.Location, "merge: expected tuple type, got %s", e.Args[0].Type)
		}
		rightTy, ok := e.Args[1].Type.(ast.TupleType)
		if !ok {
			return nil, internalError(e.Location, "merge: expected tuple type, got %s", e.Args[1].Type)
		}
		leftInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		leftIndices := b.declareLocal(e.Args[0].Type)
		rightInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		rightIndices := b.declareLocal(e.Args[1].Type)

		charge, err := g.chargeWord(e.Op, int64(len(mergedTy.Fields)))
		if err != nil {
			return nil, err
		}
		out := append([]instruction.Instruction{}, charge...)
		out = append(out, seq(leftInstrs, setLocals(leftIndices), rightInstrs, setLocals(rightIndices))...)
		for _, f := range mergedTy.Fields {
			// right-hand fields win on a key collision (standard tuple-merge
			// semantics: the second argument's fields take priority).
			if start, fieldTy, ok := fieldSlots(rightTy, f.Key); ok {
				out = append(out, getLocals(rightIndices[start:start+StackSize(fieldTy)])...)
				continue
			}
			start, fieldTy, ok := fieldSlots(leftTy, f.Key)
			if !ok {
				return nil, internalError(e.Location, "merge: missing field %q in either tuple", f.Key)
			}
			out = append(out, getLocals(leftIndices[start:start+StackSize(fieldTy)])...)
		}
		return out, nil
	})
}

// fieldSlots finds the start offset of key's locals within the declareLocal
// slice for a whole tuple value of type t (fields are laid out, and their
// locals declared, in field order), along with the field's declared type.
func fieldSlots(t ast.TupleType, key string) (int, ast.Type, bool) {
	offset := 0
	for _, f := range t.Fields {
		if f.Key == key {
			return offset, f.Type, true
		}
		offset += StackSize(f.Type)
	}
	return 0, nil, false
}
