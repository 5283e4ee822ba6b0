package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// lowerHash marshals its single argument to linear memory exactly as
// marshalArg does for storage words, then calls the named host digest
// function over that (offset, length) byte view. The digest is always a
// fixed-size buffer, so the result is just the reservation's own address
// paired with the compile-time-known digest length.
func lowerHash(hostName string, outLen int32) wordFunc {
	return func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, int64(MemSize(e.Args[0].Type)))
		if err != nil {
			return nil, err
		}
		argInstrs, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		resultOff, reserveInstrs := b.reserve(outLen)
		call, err := g.callByName(hostName)
		if err != nil {
			return nil, err
		}
		return seq(charge, reserveInstrs, argInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}},
			call,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}},
			i32Const(outLen),
		), nil
	}
}

func init() {
	registerWord("hash160", lowerHash("hash160", 20))
	registerWord("sha256", lowerHash("sha256", 32))
	registerWord("keccak256", lowerHash("keccak256", 32))
	registerWord("sha512", lowerHash("sha512", 64))
	registerWord("sha512/256", lowerHash("sha512-256", 32))

	registerWord("secp256k1-verify", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 3 {
			return nil, argumentCountMismatch(e.Location, e.Op, 3, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		msgArg, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		sigArg, err := g.marshalArg(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		pubArg, err := g.marshalArg(b, e.Args[2])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("secp256k1_verify")
		if err != nil {
			return nil, err
		}
		return seq(charge, msgArg, sigArg, pubArg, call), nil
	})

	registerWord("secp256k1-recover?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		respTy, ok := e.Type.(ast.ResponseType)
		if !ok {
			return nil, internalError(e.Location, "secp256k1-recover?: expected response type, got %s", e.Type)
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		msgArg, err := g.marshalArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		sigArg, err := g.marshalArg(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		// the host writes only the Ok payload into resultOff on success
		// (the recovered public key); on failure it writes the Err payload
		// there instead and the indicator it returns directly is false.
		// Either way the untaken branch's locals still need a deterministic
		// value, since both branches of the response share one Shape.
		okSize := int32(MemSize(respTy.Ok))
		resultOff, reserveInstrs := b.reserve(okSize + int32(MemSize(respTy.Err)))
		call, err := g.callByName("secp256k1_recover")
		if err != nil {
			return nil, err
		}
		indicator := b.declareLocalRaw(types.I32)
		callInstrs := seq(reserveInstrs, msgArg, sigArg,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}}, call,
			[]instruction.Instruction{instruction.SetLocal{Index: indicator}},
		)
		okLoad, okIdx, err := g.loadValue(b, respTy.Ok, resultOff)
		if err != nil {
			return nil, err
		}
		errOff, errAddrInstrs := addrConst(b, resultOff, okSize)
		errLoad, errIdx, err := g.loadValue(b, respTy.Err, errOff)
		if err != nil {
			return nil, err
		}
		resultOkIdx := b.declareLocal(respTy.Ok)
		resultErrIdx := b.declareLocal(respTy.Err)
		merge := instruction.If{
			Then: seq(okLoad, getLocals(okIdx), setLocals(resultOkIdx), zeroValue(b, respTy.Err), setLocals(resultErrIdx)),
			Else: seq(zeroValue(b, respTy.Ok), setLocals(resultOkIdx), errAddrInstrs, errLoad, getLocals(errIdx), setLocals(resultErrIdx)),
		}
		out := seq(charge, callInstrs, []instruction.Instruction{instruction.GetLocal{Index: indicator}, merge},
			[]instruction.Instruction{instruction.GetLocal{Index: indicator}},
			getLocals(resultOkIdx), getLocals(resultErrIdx),
		)
		return out, nil
	})
}
