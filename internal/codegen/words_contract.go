package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// contract-call? always receives the callee's identifier as its first
// argument (a literal contract principal for a static call, an arbitrary
// principal- or trait-typed expression for a dynamic one — both already
// carry their wasm value as an (offset, length) pair, so there is nothing
// static-vs-dynamic to distinguish once lowering is reached), the callee's
// function name as its second, and zero or more call arguments after that.
func init() {
	registerWord("contract-call?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) < 2 {
			return nil, internalError(e.Location, "contract-call?: expected at least 2 arguments, got %d", len(e.Args))
		}
		calleeInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		fnName := e.Args[1].Ident
		// the function name is always known at compile time, whether the
		// call target is resolved statically or through a trait.
		if fnName == "" {
			if s, ok := e.Args[1].Extra.(string); ok {
				fnName = s
			}
		}
		if fnName == "" {
			return nil, internalError(e.Location, "contract-call?: missing function name")
		}

		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}

		callArgs := e.Args[2:]
		var total int32
		for _, a := range callArgs {
			total += int32(MemSize(a.Type))
		}
		argsBase, reserveArgs := b.reserve(total)
		var writeArgs []instruction.Instruction
		var cursor int32
		for _, a := range callArgs {
			argOff, addrInstrs := addrConst(b, argsBase, cursor)
			valInstrs, err := g.lower(b, a)
			if err != nil {
				return nil, err
			}
			indices := b.declareLocal(a.Type)
			storeInstrs, err := g.storeValue(b, a.Type, indices, argOff)
			if err != nil {
				return nil, err
			}
			writeArgs = append(writeArgs, seq(addrInstrs, valInstrs, setLocals(indices), storeInstrs)...)
			cursor += int32(MemSize(a.Type))
		}

		resultOff, reserveResult := g.reserveFor(b, e.Type)
		call, err := g.callByName("contract_call")
		if err != nil {
			return nil, err
		}
		status := b.declareLocalRaw(types.I32)
		loadInstrs, valIdx, err := g.loadValue(b, e.Type, resultOff)
		if err != nil {
			return nil, err
		}
		return seq(
			charge, reserveArgs, writeArgs, reserveResult,
			calleeInstrs, g.literalName(fnName),
			[]instruction.Instruction{instruction.GetLocal{Index: argsBase}}, i32Const(total),
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}}, i32Const(int32(MemSize(e.Type))),
			call,
			[]instruction.Instruction{instruction.SetLocal{Index: status}},
			loadInstrs,
			getLocals(valIdx),
		), nil
	})
}
