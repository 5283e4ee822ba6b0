package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

// numSuffix picks the stdlib import suffix ("int" or "uint") matching an
// arithmetic expression's result type; int and uint share every arithmetic
// and comparison word but never the same stdlib helper, since their
// overflow/underflow behavior differs.
func numSuffix(t ast.Type) (string, error) {
	switch t.(type) {
	case ast.IntType:
		return "int", nil
	case ast.UintType:
		return "uint", nil
	default:
		return "", internalError(ast.Location{}, "expected int or uint, got %s", t)
	}
}

// foldBinary left-folds a variadic word over its arguments using the named
// stdlib helper, which takes two (low, high) i64 pairs and returns one.
func (g *Generator) foldBinary(b *builder, e ast.Expr, stdlibName string) ([]instruction.Instruction, error) {
	if len(e.Args) < 2 {
		return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
	}
	charge, err := g.chargeWord(e.Op, int64(len(e.Args)))
	if err != nil {
		return nil, err
	}
	call, err := g.callByName(stdlibName)
	if err != nil {
		return nil, err
	}
	acc, err := g.lower(b, e.Args[0])
	if err != nil {
		return nil, err
	}
	for _, arg := range e.Args[1:] {
		rhs, err := g.lower(b, arg)
		if err != nil {
			return nil, err
		}
		acc = seq(acc, rhs, call)
	}
	return seq(charge, acc), nil
}

func registerArith(op, host string) {
	registerWord(op, func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		suffix, err := numSuffix(e.Type)
		if err != nil {
			return nil, err
		}
		return g.foldBinary(b, e, host+"-"+suffix)
	})
}

func init() {
	registerArith("+", "add")
	registerArith("-", "sub")
	registerArith("*", "mul")
	registerArith("/", "div")
	registerArith("mod", "mod")
	registerArith("pow", "pow")
	registerArith("bit-and", "bit-and")
	registerArith("bit-or", "bit-or")
	registerArith("bit-xor", "bit-xor")
	registerArith("bit-shift-left", "bit-shift-left")
	registerArith("bit-shift-right", "bit-shift-right")

	registerWord("bit-not", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		suffix, err := numSuffix(e.Type)
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("bit-not-" + suffix)
		if err != nil {
			return nil, err
		}
		arg, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		return seq(arg, call), nil
	})

	for _, name := range []string{"sqrti", "log2"} {
		name := name
		registerWord(name, func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
			if len(e.Args) != 1 {
				return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
			}
			suffix, err := numSuffix(e.Args[0].Type)
			if err != nil {
				return nil, err
			}
			charge, err := g.chargeWord(name, 1)
			if err != nil {
				return nil, err
			}
			call, err := g.callByName(name + "-" + suffix)
			if err != nil {
				return nil, err
			}
			arg, err := g.lower(b, e.Args[0])
			if err != nil {
				return nil, err
			}
			return seq(charge, arg, call), nil
		})
	}
}
