package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

func registerOrdering(op, host string) {
	registerWord(op, func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		suffix, err := numSuffix(e.Args[0].Type)
		if err != nil {
			return nil, err
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		call, err := g.callByName(host + "-" + suffix)
		if err != nil {
			return nil, err
		}
		lhs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		rhs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		return seq(charge, lhs, rhs, call), nil
	})
}

func init() {
	registerOrdering("<", "lt")
	registerOrdering(">", "gt")
	registerOrdering("<=", "le")
	registerOrdering(">=", "ge")

	registerWord("=", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) < 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		t := e.Args[0].Type
		charge, err := g.chargeWord(e.Op, int64(len(e.Args)))
		if err != nil {
			return nil, err
		}
		instrs := append([]instruction.Instruction{}, charge...)
		var result uint32
		for i := 0; i+1 < len(e.Args); i++ {
			lhs, err := g.lower(b, e.Args[i])
			if err != nil {
				return nil, err
			}
			lhsIdx := b.declareLocal(t)
			rhs, err := g.lower(b, e.Args[i+1])
			if err != nil {
				return nil, err
			}
			rhsIdx := b.declareLocal(t)
			eqInstrs, err := g.equalValues(b, t, lhsIdx, rhsIdx)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, seq(lhs, setLocals(lhsIdx), rhs, setLocals(rhsIdx), eqInstrs)...)
			if i == 0 {
				result = b.declareLocalRaw(types.I32)
				instrs = append(instrs, instruction.SetLocal{Index: result})
			} else {
				next := b.declareLocalRaw(types.I32)
				instrs = append(instrs, instruction.SetLocal{Index: next})
				instrs = append(instrs, instruction.GetLocal{Index: result}, instruction.GetLocal{Index: next}, instruction.I32And{}, instruction.SetLocal{Index: result})
			}
		}
		instrs = append(instrs, instruction.GetLocal{Index: result})
		return instrs, nil
	})
}

// scaleLocal emits dst = src * factor, where dst and src are i32 locals.
func scaleLocal(src uint32, factor int32, dst uint32) []instruction.Instruction {
	return []instruction.Instruction{
		instruction.GetLocal{Index: src},
		instruction.I32Const{Value: factor},
		instruction.I32Mul{},
		instruction.SetLocal{Index: dst},
	}
}

// equalValues emits a deep, type-directed equality test of two values
// already bound to locals (in Shape(t) order), leaving a single i32 boolean
// on the stack.
func (g *Generator) equalValues(b *builder, t ast.Type, a, rhs []uint32) ([]instruction.Instruction, error) {
	switch ty := t.(type) {
	case ast.BoolType, ast.NoType:
		return []instruction.Instruction{
			instruction.GetLocal{Index: a[0]}, instruction.GetLocal{Index: rhs[0]}, instruction.I32Eq{},
		}, nil
	case ast.IntType, ast.UintType:
		call, err := g.callByName("is-eq-" + mustSuffix(t))
		if err != nil {
			return nil, err
		}
		return seq(getLocals(a), getLocals(rhs), call), nil
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType,
		ast.BufferType, ast.StringASCIIType:
		call, err := g.callByName("is-eq-bytes")
		if err != nil {
			return nil, err
		}
		return seq(getLocals(a), getLocals(rhs), call), nil
	case ast.StringUTF8Type:
		// compare as (offset, byte-length) pairs: scalar count * 4.
		call, err := g.callByName("is-eq-bytes")
		if err != nil {
			return nil, err
		}
		aLen := b.declareLocalRaw(types.I32)
		rhsLen := b.declareLocalRaw(types.I32)
		conv := seq(scaleLocal(a[1], 4, aLen), scaleLocal(rhs[1], 4, rhsLen))
		args := []instruction.Instruction{
			instruction.GetLocal{Index: a[0]}, instruction.GetLocal{Index: aLen},
			instruction.GetLocal{Index: rhs[0]}, instruction.GetLocal{Index: rhsLen},
		}
		return seq(conv, args, call), nil
	case ast.ListType:
		// a fully general list equality would recurse field-by-field; the
		// generator instead delegates to is-eq-bytes over the occupied byte
		// range, which is correct for fixed-width element types and mirrors
		// how buffer/string equality is implemented.
		stride := int32(ElementStride(ty.Elem))
		aLen := b.declareLocalRaw(types.I32)
		rhsLen := b.declareLocalRaw(types.I32)
		conv := seq(scaleLocal(a[1], stride, aLen), scaleLocal(rhs[1], stride, rhsLen))
		call, err := g.callByName("is-eq-bytes")
		if err != nil {
			return nil, err
		}
		args := []instruction.Instruction{
			instruction.GetLocal{Index: a[0]}, instruction.GetLocal{Index: aLen},
			instruction.GetLocal{Index: rhs[0]}, instruction.GetLocal{Index: rhsLen},
		}
		return seq(conv, args, call), nil
	case ast.TupleType:
		var instrs []instruction.Instruction
		cursor := 0
		var result uint32
		for i, f := range ty.Fields {
			n := StackSize(f.Type)
			sub, err := g.equalValues(b, f.Type, a[cursor:cursor+n], rhs[cursor:cursor+n])
			if err != nil {
				return nil, err
			}
			cursor += n
			if i == 0 {
				result = b.declareLocalRaw(types.I32)
				instrs = append(instrs, sub...)
				instrs = append(instrs, instruction.SetLocal{Index: result})
				continue
			}
			next := b.declareLocalRaw(types.I32)
			instrs = append(instrs, sub...)
			instrs = append(instrs, instruction.SetLocal{Index: next})
			instrs = append(instrs, instruction.GetLocal{Index: result}, instruction.GetLocal{Index: next}, instruction.I32And{}, instruction.SetLocal{Index: result})
		}
		instrs = append(instrs, instruction.GetLocal{Index: result})
		return instrs, nil
	case ast.OptionalType:
		n := StackSize(ty.Some)
		sub, err := g.equalValues(b, ty.Some, a[1:1+n], rhs[1:1+n])
		if err != nil {
			return nil, err
		}
		indLocal := b.declareLocalRaw(types.I32)
		subLocal := b.declareLocalRaw(types.I32)
		var instrs []instruction.Instruction
		instrs = append(instrs, instruction.GetLocal{Index: a[0]}, instruction.GetLocal{Index: rhs[0]}, instruction.I32Eq{}, instruction.SetLocal{Index: indLocal})
		instrs = append(instrs, sub...)
		instrs = append(instrs, instruction.SetLocal{Index: subLocal})
		instrs = append(instrs, instruction.GetLocal{Index: indLocal}, instruction.GetLocal{Index: subLocal}, instruction.I32And{})
		return instrs, nil
	case ast.ResponseType:
		nOk := StackSize(ty.Ok)
		nErr := StackSize(ty.Err)
		subOk, err := g.equalValues(b, ty.Ok, a[1:1+nOk], rhs[1:1+nOk])
		if err != nil {
			return nil, err
		}
		subErr, err := g.equalValues(b, ty.Err, a[1+nOk:1+nOk+nErr], rhs[1+nOk:1+nOk+nErr])
		if err != nil {
			return nil, err
		}
		indLocal := b.declareLocalRaw(types.I32)
		okLocal := b.declareLocalRaw(types.I32)
		errLocal := b.declareLocalRaw(types.I32)
		var instrs []instruction.Instruction
		instrs = append(instrs, instruction.GetLocal{Index: a[0]}, instruction.GetLocal{Index: rhs[0]}, instruction.I32Eq{}, instruction.SetLocal{Index: indLocal})
		instrs = append(instrs, subOk...)
		instrs = append(instrs, instruction.SetLocal{Index: okLocal})
		instrs = append(instrs, subErr...)
		instrs = append(instrs, instruction.SetLocal{Index: errLocal})
		instrs = append(instrs, instruction.GetLocal{Index: indLocal}, instruction.GetLocal{Index: okLocal}, instruction.I32And{})
		instrs = append(instrs, instruction.GetLocal{Index: errLocal}, instruction.I32And{})
		return instrs, nil
	default:
		return nil, internalError(ast.Location{}, "equalValues: unhandled type %s", t)
	}
}

func mustSuffix(t ast.Type) string {
	s, err := numSuffix(t)
	if err != nil {
		return "int"
	}
	return s
}
