package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

// wordFunc lowers one Expr whose Op names it, given a builder tracking the
// enclosing function's locals and name bindings. Handlers are responsible
// for recursively lowering their own Args (via g.lower) in whatever order
// the word's evaluation semantics require; the dispatcher does not
// pre-lower arguments because some words (and, or, if, match, asserts!)
// have short-circuiting or conditional evaluation order.
type wordFunc func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error)

// words is the name -> handler table every Op in the analyzed AST dispatches
// through. It is populated by the register* functions in each words_*.go
// file via package-level init, mirroring how a large word-count interpreter
// keeps each family of operators in its own source file.
var words = map[string]wordFunc{}

func registerWord(name string, fn wordFunc) {
	if _, exists := words[name]; exists {
		panic("codegen: duplicate word registration for " + name)
	}
	words[name] = fn
}

// lower lowers a single expression, leaving its value ABI shape (abi.go) on
// the operand stack.
func (g *Generator) lower(b *builder, e ast.Expr) ([]instruction.Instruction, error) {
	if e.Literal != nil {
		return g.lowerLiteral(b, e)
	}
	if e.Op == "var" {
		indices, ok := b.lookup(e.Ident)
		if !ok {
			return nil, internalError(e.Location, "reference to unbound identifier %q", e.Ident)
		}
		return getLocals(indices), nil
	}
	handler, ok := words[e.Op]
	if !ok {
		return nil, notImplemented(e.Location, e.Op)
	}
	instrs, err := handler(g, b, e)
	if err != nil {
		return nil, wrap(err, "lowering %q", e.Op)
	}
	return instrs, nil
}

// lowerArgs lowers each of e.Args in order and concatenates the results;
// used by the large majority of words whose arguments evaluate strictly
// left to right with no short-circuiting.
func (g *Generator) lowerArgs(b *builder, e ast.Expr) ([]instruction.Instruction, error) {
	var out []instruction.Instruction
	for _, arg := range e.Args {
		instrs, err := g.lower(b, arg)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

// lowerBody lowers a sequence of expressions executed for effect, keeping
// only the final expression's value (the source language's `begin`
// semantics, also used for function and let bodies): every non-final
// expression's value is dropped.
func (g *Generator) lowerBody(b *builder, body []ast.Expr) ([]instruction.Instruction, error) {
	var out []instruction.Instruction
	for i, expr := range body {
		instrs, err := g.lower(b, expr)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
		if i < len(body)-1 {
			out = append(out, dropType(expr.Type)...)
		}
	}
	return out, nil
}

func (g *Generator) lowerLiteral(b *builder, e ast.Expr) ([]instruction.Instruction, error) {
	lit := e.Literal
	switch ty := e.Type.(type) {
	case ast.IntType:
		return i128Const(lit.Int), nil
	case ast.UintType:
		return i128Const(lit.Int), nil
	case ast.BoolType:
		v := int32(0)
		if lit.Bool {
			v = 1
		}
		return i32Const(v), nil
	case ast.BufferType, ast.StringASCIIType:
		off := g.allocateLiteral(lit.Buffer)
		return seq(i32Const(off), i32Const(int32(len(lit.Buffer)))), nil
	case ast.StringUTF8Type:
		data := encodeUTF8Scalars(lit.StringUTF8)
		off := g.allocateLiteral(data)
		return seq(i32Const(off), i32Const(int32(len(lit.StringUTF8)))), nil
	case ast.PrincipalType, ast.CallableType:
		off := g.allocateLiteral(lit.Buffer)
		return seq(i32Const(off), i32Const(int32(len(lit.Buffer)))), nil
	default:
		_ = ty
		return nil, internalError(e.Location, "literal of unsupported type %s", e.Type)
	}
}

func i128Const(v ast.Int128) []instruction.Instruction {
	return []instruction.Instruction{
		instruction.I64Const{Value: int64(v.Low)},
		instruction.I64Const{Value: int64(v.High)},
	}
}

// encodeUTF8Scalars lays out a string-utf8 literal's runes as 4-byte
// big-endian scalars, matching the in-memory representation used
// everywhere else for string-utf8 values.
func encodeUTF8Scalars(runes []rune) []byte {
	out := make([]byte, 4*len(runes))
	for i, r := range runes {
		out[4*i] = byte(r >> 24)
		out[4*i+1] = byte(r >> 16)
		out[4*i+2] = byte(r >> 8)
		out[4*i+3] = byte(r)
	}
	return out
}
