package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

func init() {
	// print evaluates its argument, serializes it to the consensus buffer
	// via the shared to-consensus-buff? lowering, then hands (offset,
	// length) to the host for logging. The argument's own value is
	// returned unchanged, matching the source language's `print` acting as
	// an identity function with a side effect.
	registerWord("print", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		arg := e.Args[0]
		valInstrs, err := g.lower(b, arg)
		if err != nil {
			return nil, err
		}
		indices := b.declareLocal(arg.Type)
		encInstrs, err := g.lowerToConsensusBuff(b, arg.Type, indices)
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("print")
		if err != nil {
			return nil, err
		}
		return seq(valInstrs, setLocals(indices), encInstrs, call, getLocals(indices)), nil
	})
}
