package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// shortCircuitAnd lowers (and a1 a2 ... an) so that a1..a(k-1) are evaluated
// and found true before ak is ever evaluated, matching source-level
// short-circuit semantics rather than eagerly evaluating every argument.
func (g *Generator) shortCircuitAnd(b *builder, args []ast.Expr) ([]instruction.Instruction, error) {
	if len(args) == 1 {
		return g.lower(b, args[0])
	}
	head, err := g.lower(b, args[0])
	if err != nil {
		return nil, err
	}
	rest, err := g.shortCircuitAnd(b, args[1:])
	if err != nil {
		return nil, err
	}
	result := types.I32
	return seq(head, []instruction.Instruction{
		instruction.If{Result: &result, Then: rest, Else: []instruction.Instruction{instruction.I32Const{Value: 0}}},
	}), nil
}

// shortCircuitOr lowers (or a1 a2 ... an) so that evaluation stops at the
// first argument found true.
func (g *Generator) shortCircuitOr(b *builder, args []ast.Expr) ([]instruction.Instruction, error) {
	if len(args) == 1 {
		return g.lower(b, args[0])
	}
	head, err := g.lower(b, args[0])
	if err != nil {
		return nil, err
	}
	rest, err := g.shortCircuitOr(b, args[1:])
	if err != nil {
		return nil, err
	}
	result := types.I32
	return seq(head, []instruction.Instruction{
		instruction.If{Result: &result, Then: []instruction.Instruction{instruction.I32Const{Value: 1}}, Else: rest},
	}), nil
}

func init() {
	registerWord("and", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) < 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, int64(len(e.Args)))
		if err != nil {
			return nil, err
		}
		instrs, err := g.shortCircuitAnd(b, e.Args)
		if err != nil {
			return nil, err
		}
		return seq(charge, instrs), nil
	})
	registerWord("or", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) < 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, int64(len(e.Args)))
		if err != nil {
			return nil, err
		}
		instrs, err := g.shortCircuitOr(b, e.Args)
		if err != nil {
			return nil, err
		}
		return seq(charge, instrs), nil
	})
	registerWord("not", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		arg, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		return seq(charge, arg, []instruction.Instruction{instruction.I32Eqz{}}), nil
	})
}
