package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// c32 address version bytes, mirrored from the mainnet/testnet single-sig
// and multisig constants a real network node would validate against.
const (
	versionMainnetSingleSig = 22
	versionMainnetMultiSig  = 20
	versionTestnetSingleSig = 26
	versionTestnetMultiSig  = 21
)

func init() {
	registerWord("is-standard", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		valInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		indices := b.declareLocal(e.Args[0].Type)
		off := indices[0]
		versionByte, versionInstrs, err := g.readByteAt(b, off)
		if err != nil {
			return nil, err
		}
		mainnetCall, err := g.callByName("is_in_mainnet")
		if err != nil {
			return nil, err
		}
		mainnetFlag := b.declareLocalRaw(types.I32)
		isMainnetMatch := b.declareLocalRaw(types.I32)
		mainnetCheck := seq(
			[]instruction.Instruction{
				instruction.GetLocal{Index: versionByte}, instruction.I32Const{Value: versionMainnetMultiSig}, instruction.I32Eq{},
			},
			[]instruction.Instruction{
				instruction.GetLocal{Index: versionByte}, instruction.I32Const{Value: versionMainnetSingleSig}, instruction.I32Eq{},
			},
			[]instruction.Instruction{instruction.I32Or{}, instruction.SetLocal{Index: isMainnetMatch}},
		)
		isTestnetMatch := b.declareLocalRaw(types.I32)
		testnetCheck := seq(
			[]instruction.Instruction{
				instruction.GetLocal{Index: versionByte}, instruction.I32Const{Value: versionTestnetMultiSig}, instruction.I32Eq{},
			},
			[]instruction.Instruction{
				instruction.GetLocal{Index: versionByte}, instruction.I32Const{Value: versionTestnetSingleSig}, instruction.I32Eq{},
			},
			[]instruction.Instruction{instruction.I32Or{}, instruction.SetLocal{Index: isTestnetMatch}},
		)
		result := b.declareLocalRaw(types.I32)
		selectInstrs := []instruction.Instruction{
			instruction.GetLocal{Index: mainnetFlag},
			instruction.If{
				Then: []instruction.Instruction{instruction.GetLocal{Index: isMainnetMatch}, instruction.SetLocal{Index: result}},
				Else: []instruction.Instruction{instruction.GetLocal{Index: isTestnetMatch}, instruction.SetLocal{Index: result}},
			},
		}
		instrs := seq(valInstrs, setLocals(indices), versionInstrs,
			mainnetCall, []instruction.Instruction{instruction.SetLocal{Index: mainnetFlag}},
			mainnetCheck, testnetCheck, selectInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: result}},
		)
		return instrs, nil
	})

	registerWord("principal-of?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		if _, ok := e.Type.(ast.ResponseType); !ok {
			return nil, internalError(e.Location, "principal-of?: expected response type, got %s", e.Type)
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		pkArg, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		// principal-of? only ever constructs a standard (non-contract)
		// principal, always principalBytes long.
		resultOff, reserveInstrs := b.reserve(int32(principalBytes))
		call, err := g.callByName("principal_of")
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		errLo := b.declareLocalRaw(types.I64)
		errHi := b.declareLocalRaw(types.I64)
		callInstrs := seq(reserveInstrs, pkArg,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}}, call,
			[]instruction.Instruction{instruction.SetLocal{Index: errHi}, instruction.SetLocal{Index: errLo}, instruction.SetLocal{Index: indicator}},
		)
		okLen := b.declareLocalRaw(types.I32)
		fixLen := []instruction.Instruction{instruction.I32Const{Value: int32(principalBytes)}, instruction.SetLocal{Index: okLen}}
		return seq(charge, callInstrs, fixLen,
			[]instruction.Instruction{instruction.GetLocal{Index: indicator}},
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}, instruction.GetLocal{Index: okLen}},
			[]instruction.Instruction{instruction.GetLocal{Index: errLo}, instruction.GetLocal{Index: errHi}},
		), nil
	})

	registerWord("principal-construct?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) < 2 || len(e.Args) > 3 {
			return nil, internalError(e.Location, "principal-construct?: expected 2 or 3 arguments, got %d", len(e.Args))
		}
		versionArg, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		hashArg, err := g.marshalArg(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		var contractInstrs []instruction.Instruction
		if len(e.Args) == 3 {
			nameArg, err := g.marshalArg(b, e.Args[2])
			if err != nil {
				return nil, err
			}
			contractInstrs = seq(i32Const(1), nameArg)
		} else {
			contractInstrs = seq(i32Const(0), i32Const(0), i32Const(0))
		}
		resultOff, reserveInstrs := b.reserve(int32(principalMemSize))
		call, err := g.callByName("principal_construct")
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		errLo := b.declareLocalRaw(types.I64)
		errHi := b.declareLocalRaw(types.I64)
		resultLen := b.declareLocalRaw(types.I32)
		callInstrs := seq(reserveInstrs, versionArg, hashArg, contractInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}}, call,
			[]instruction.Instruction{instruction.SetLocal{Index: errHi}, instruction.SetLocal{Index: errLo}, instruction.SetLocal{Index: indicator}},
		)
		// matches the length convention encodeWalk/decodeWalk use elsewhere:
		// a standard principal's length is exactly principalBytes, a
		// contract principal's adds the name-length byte plus the name.
		var resultLenInstrs []instruction.Instruction
		if len(e.Args) == 3 {
			nameLenAddr, nameLenAddrInstrs := addrConst(b, resultOff, int32(principalBytes))
			nameLenVal, nameLenValInstrs, err := g.readByteAt(b, nameLenAddr)
			if err != nil {
				return nil, err
			}
			resultLenInstrs = seq(nameLenAddrInstrs, nameLenValInstrs, []instruction.Instruction{
				instruction.GetLocal{Index: nameLenVal},
				instruction.I32Const{Value: int32(principalBytes) + int32(contractNameLengthBytes)},
				instruction.I32Add{},
				instruction.SetLocal{Index: resultLen},
			})
		} else {
			resultLenInstrs = []instruction.Instruction{
				instruction.I32Const{Value: int32(principalBytes)}, instruction.SetLocal{Index: resultLen},
			}
		}
		return seq(callInstrs, resultLenInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: indicator}},
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}, instruction.GetLocal{Index: resultLen}},
			[]instruction.Instruction{instruction.GetLocal{Index: errLo}, instruction.GetLocal{Index: errHi}},
		), nil
	})
}
