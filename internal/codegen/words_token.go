package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// okBoolErrUint assembles a response(bool, uint) value from a single i32
// success flag returned by a host ledger call: the flag doubles as the
// Ok-branch's bool payload (Ok's Shape is exactly one i32), and the Err
// branch carries no detail beyond "it failed", so its uint payload is
// always the zero constant.
func okBoolErrUint(indicator uint32) []instruction.Instruction {
	return seq(
		[]instruction.Instruction{instruction.GetLocal{Index: indicator}},
		[]instruction.Instruction{instruction.GetLocal{Index: indicator}},
		i64Const(0), i64Const(0),
	)
}

func init() {
	registerWord("stx-burn?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		// stx-burn?'s upstream cost table charges nothing against any
		// counter at all — flagged there as suspicious but never corrected,
		// so chargeWord("stx-burn?", ...) is a deliberate no-op here too.
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		amount, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		sender, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("stx_burn")
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		return seq(charge, amount, sender, call,
			[]instruction.Instruction{instruction.SetLocal{Index: indicator}},
			okBoolErrUint(indicator),
		), nil
	})

	registerWord("stx-get-balance", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		owner, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("stx_get_balance")
		if err != nil {
			return nil, err
		}
		return seq(charge, owner, call), nil
	})

	// stx-transfer-memo? shares the same simplified host call as
	// stx-transfer?: the memo argument is accepted and lowered (so its own
	// sub-expressions still run) but is not part of the host interface's
	// signature, so its values are dropped before the call.
	transferWord := func(name string, hasMemo bool) {
		registerWord(name, func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
			want := 3
			if hasMemo {
				want = 4
			}
			if len(e.Args) != want {
				return nil, argumentCountMismatch(e.Location, e.Op, want, len(e.Args))
			}
			amount, err := g.lower(b, e.Args[0])
			if err != nil {
				return nil, err
			}
			sender, err := g.lower(b, e.Args[1])
			if err != nil {
				return nil, err
			}
			recipient, err := g.lower(b, e.Args[2])
			if err != nil {
				return nil, err
			}
			var memoInstrs []instruction.Instruction
			if hasMemo {
				memoInstrs, err = g.lower(b, e.Args[3])
				if err != nil {
					return nil, err
				}
				memoInstrs = seq(memoInstrs, dropType(e.Args[3].Type))
			}
			call, err := g.callByName("stx_transfer")
			if err != nil {
				return nil, err
			}
			indicator := b.declareLocalRaw(types.I32)
			return seq(amount, sender, recipient, memoInstrs, call,
				[]instruction.Instruction{instruction.SetLocal{Index: indicator}},
				okBoolErrUint(indicator),
			), nil
		})
	}
	transferWord("stx-transfer?", false)
	transferWord("stx-transfer-memo?", true)

	registerWord("stx-account", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		owner, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("stx_account")
		if err != nil {
			return nil, err
		}
		return seq(owner, call), nil
	})

	registerWord("ft-mint?", ftWord("ft_mint", 1))
	registerWord("ft-burn?", ftWord("ft_burn", 1))
	registerWord("ft-transfer?", ftWord("ft_transfer", 2))

	registerWord("ft-get-balance", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "ft-get-balance: missing token name")
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		owner, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("ft_get_balance")
		if err != nil {
			return nil, err
		}
		return seq(charge, g.literalName(name), owner, call), nil
	})

	registerWord("ft-get-supply", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "ft-get-supply: missing token name")
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("ft_get_supply")
		if err != nil {
			return nil, err
		}
		return seq(charge, g.literalName(name), call), nil
	})

	registerWord("nft-mint?", nftWord("nft_mint", 1))
	registerWord("nft-burn?", nftWord("nft_burn", 0))
	registerWord("nft-transfer?", nftWord("nft_transfer", 2))

	registerWord("nft-get-owner?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "nft-get-owner?: missing token name")
		}
		optTy, ok := e.Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "nft-get-owner?: expected optional type, got %s", e.Type)
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		idArg, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		resultOff, reserveInstrs := g.reserveFor(b, optTy.Some)
		call, err := g.callByName("nft_get_owner")
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		loadInstrs, valIdx, err := g.loadValue(b, optTy.Some, resultOff)
		if err != nil {
			return nil, err
		}
		return seq(charge, reserveInstrs, g.literalName(name), idArg,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}}, call,
			[]instruction.Instruction{instruction.SetLocal{Index: indicator}},
			loadInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: indicator}},
			getLocals(valIdx),
		), nil
	})
}

// ftWord builds an ft-mint?/ft-burn?/ft-transfer? lowering: the asset's
// token name (from the define-fungible-token declaration, carried on Extra
// the same way var-get/map-get? carry their declaration name), an amount,
// and principalArgs more principal-typed arguments (sender/recipient, in
// source-argument order starting at index 1), producing response(bool,
// uint) from the host's single success flag.
func ftWord(host string, principalArgs int) wordFunc {
	return func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		want := 1 + principalArgs
		if len(e.Args) != want {
			return nil, argumentCountMismatch(e.Location, e.Op, want, len(e.Args))
		}
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "%s: missing token name", e.Op)
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		amount, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		var principals []instruction.Instruction
		for i := 0; i < principalArgs; i++ {
			instrs, err := g.lower(b, e.Args[1+i])
			if err != nil {
				return nil, err
			}
			principals = append(principals, instrs...)
		}
		call, err := g.callByName(host)
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		return seq(charge, g.literalName(name), amount, principals, call,
			[]instruction.Instruction{instruction.SetLocal{Index: indicator}},
			okBoolErrUint(indicator),
		), nil
	}
}

// nftWord builds an nft-mint?/nft-burn?/nft-transfer? lowering: the asset's
// token name, an asset-identifier value of whatever type the collection
// was declared with (marshaled to memory, since its type is generic), and
// principalArgs principal-typed arguments after it.
func nftWord(host string, principalArgs int) wordFunc {
	return func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		want := 1 + principalArgs
		if len(e.Args) != want {
			return nil, argumentCountMismatch(e.Location, e.Op, want, len(e.Args))
		}
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "%s: missing token name", e.Op)
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		idArg, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		var principals []instruction.Instruction
		for i := 0; i < principalArgs; i++ {
			instrs, err := g.lower(b, e.Args[1+i])
			if err != nil {
				return nil, err
			}
			principals = append(principals, instrs...)
		}
		call, err := g.callByName(host)
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		return seq(charge, g.literalName(name), idArg, principals, call,
			[]instruction.Instruction{instruction.SetLocal{Index: indicator}},
			okBoolErrUint(indicator),
		), nil
	}
}
