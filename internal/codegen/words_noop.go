package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

// registerNoop wires a word whose source-level effect is purely a type
// change the analyzer already accounted for: Int and Uint share a Shape,
// and a trait reference's wasm value already is its underlying principal,
// so lowering the single argument is the entire job.
func registerNoop(name string) {
	registerWord(name, func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		return g.lower(b, e.Args[0])
	})
}

func init() {
	// to-int/to-uint reinterpret the same two i64 locals under the other
	// sign; overflow from uint->int on values >= 2^127 is rejected earlier,
	// during analysis, since the generator never sees the original literal.
	registerNoop("to-int")
	registerNoop("to-uint")
	// a trait value already carries the callee's (offset, length) principal
	// pair as its entire wasm representation.
	registerNoop("contract-of")
}
