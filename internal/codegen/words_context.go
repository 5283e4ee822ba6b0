package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// blockInfoProps assigns a compile-time-stable i32 tag to each recognized
// get-block-info?/get-burn-block-info? property name, replacing the
// string-literal property id the original passes across the host
// boundary with a single constant the host interface switches on.
var blockInfoProps = map[string]int32{
	"time":                  0,
	"header-hash":           1,
	"burnchain-header-hash": 2,
	"id-header-hash":        3,
	"miner-address":         4,
	"vrf-seed":              5,
	"block-reward":          6,
	"miner-spend-total":     7,
	"miner-spend-winner":    8,
}

func registerBlockInfo(op, host string) {
	registerWord(op, func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		name := e.Args[0].Ident
		if name == "" {
			return nil, internalError(e.Location, "%s: missing property name", op)
		}
		propID, ok := blockInfoProps[name]
		if !ok {
			return nil, internalError(e.Location, "%s: unknown property %q", op, name)
		}
		optTy, ok := e.Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "%s: expected optional type, got %s", op, e.Type)
		}
		heightInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		charge, err := g.chargeWord(op, 1)
		if err != nil {
			return nil, err
		}
		resultOff, reserveInstrs := g.reserveFor(b, optTy.Some)
		call, err := g.callByName(host)
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		loadInstrs, valIdx, err := g.loadValue(b, optTy.Some, resultOff)
		if err != nil {
			return nil, err
		}
		return seq(charge, reserveInstrs, i32Const(propID), heightInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}}, call,
			[]instruction.Instruction{instruction.SetLocal{Index: indicator}},
			loadInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: indicator}},
			getLocals(valIdx),
		), nil
	})
}

func init() {
	registerBlockInfo("get-block-info?", "get_block_info")
	registerBlockInfo("get-burn-block-info?", "get_burn_block_info")

	registerWord("as-contract", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		enterCall, err := g.callByName("enter_as_contract")
		if err != nil {
			return nil, err
		}
		innerInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		exitCall, err := g.callByName("exit_as_contract")
		if err != nil {
			return nil, err
		}
		// the host already tracks the running contract's own identity;
		// these two reserved i32 slots keep enter_as_contract's arity
		// symmetric with enter_at_block's (principal offset, length) shape
		// for a future multi-tenant host that must be told which identity
		// to switch into.
		return seq(charge, i32Const(0), i32Const(0), enterCall, innerInstrs, exitCall), nil
	})

	registerWord("at-block", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		blockArg, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		enterCall, err := g.callByName("enter_at_block")
		if err != nil {
			return nil, err
		}
		innerInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		exitCall, err := g.callByName("exit_at_block")
		if err != nil {
			return nil, err
		}
		// enter_at_block's i32 result (whether the referenced block exists)
		// is discarded here: an unresolvable block hash is a runtime
		// condition the host traps on rather than one at-block needs to
		// branch around, since the source language has no way to express
		// "the referenced block is missing" as a value.
		ok := b.declareLocalRaw(types.I32)
		return seq(charge, blockArg, enterCall, []instruction.Instruction{instruction.SetLocal{Index: ok}},
			innerInstrs, exitCall), nil
	})
}
