package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// elemAddr computes base + idx*stride into a fresh local, where idx is
// itself a local (a loop counter or a runtime index argument).
func elemAddr(b *builder, base, idx uint32, stride int32) (uint32, []instruction.Instruction) {
	dst := b.declareLocalRaw(types.I32)
	instrs := []instruction.Instruction{
		instruction.GetLocal{Index: base},
		instruction.GetLocal{Index: idx},
		instruction.I32Const{Value: stride},
		instruction.I32Mul{},
		instruction.I32Add{},
		instruction.SetLocal{Index: dst},
	}
	return dst, instrs
}

// addrConst computes base + delta (a compile-time constant byte offset)
// into a fresh local.
func addrConst(b *builder, base uint32, delta int32) (uint32, []instruction.Instruction) {
	dst := b.declareLocalRaw(types.I32)
	instrs := []instruction.Instruction{
		instruction.GetLocal{Index: base},
		instruction.I32Const{Value: delta},
		instruction.I32Add{},
		instruction.SetLocal{Index: dst},
	}
	return dst, instrs
}

// seqByteLen converts a sequence's ABI "length" local (byte count for
// buffer/string-ascii, scalar count for string-utf8, element count for
// list) to an actual byte count in a fresh local.
func seqByteLen(b *builder, t ast.Type, lengthLocal uint32) (uint32, []instruction.Instruction) {
	dst := b.declareLocalRaw(types.I32)
	switch ty := t.(type) {
	case ast.StringUTF8Type:
		return dst, []instruction.Instruction{
			instruction.GetLocal{Index: lengthLocal}, instruction.I32Const{Value: 4}, instruction.I32Mul{},
			instruction.SetLocal{Index: dst},
		}
	case ast.ListType:
		stride := int32(ElementStride(ty.Elem))
		return dst, []instruction.Instruction{
			instruction.GetLocal{Index: lengthLocal}, instruction.I32Const{Value: stride}, instruction.I32Mul{},
			instruction.SetLocal{Index: dst},
		}
	default: // buffer, string-ascii: length is already a byte count
		return dst, []instruction.Instruction{
			instruction.GetLocal{Index: lengthLocal}, instruction.SetLocal{Index: dst},
		}
	}
}

// elemUnitSize returns the stride, in bytes, between successive elements of
// a sequence type as seen by element-at/replace-at/slice? — ElementStride
// for a list, 1 for buffer/string-ascii, 4 for string-utf8 (its on-stack
// length is a scalar count, not a byte count).
func elemUnitSize(t ast.Type) int32 {
	switch ty := t.(type) {
	case ast.ListType:
		return int32(ElementStride(ty.Elem))
	case ast.StringUTF8Type:
		return 4
	default:
		return 1
	}
}

func (g *Generator) memcpyCall(dst, src, size []instruction.Instruction) ([]instruction.Instruction, error) {
	call, err := g.callByName("memcpy")
	if err != nil {
		return nil, err
	}
	return seq(dst, src, size, call), nil
}

// countedLoop runs body once per i in [0, count), with i bound to a fresh
// local passed to body, wrapped in the standard block/loop/br_if idiom: a
// br_if 1 from inside the loop exits the enclosing block, a br 0 at the end
// of the body repeats the loop.
func countedLoop(b *builder, count uint32, body func(i uint32) []instruction.Instruction) []instruction.Instruction {
	i := b.declareLocalRaw(types.I32)
	init := []instruction.Instruction{instruction.I32Const{Value: 0}, instruction.SetLocal{Index: i}}
	exitCheck := []instruction.Instruction{
		instruction.GetLocal{Index: i}, instruction.GetLocal{Index: count}, instruction.I32GeS{},
		instruction.BrIf{Index: 1},
	}
	advance := []instruction.Instruction{
		instruction.GetLocal{Index: i}, instruction.I32Const{Value: 1}, instruction.I32Add{}, instruction.SetLocal{Index: i},
		instruction.Br{Index: 0},
	}
	loop := instruction.Loop{Instrs: seq(exitCheck, body(i), advance)}
	return seq(init, []instruction.Instruction{instruction.Block{Instrs: []instruction.Instruction{loop}}})
}

func init() {
	registerWord("len", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		argInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		indices := b.declareLocal(e.Args[0].Type)
		lengthLocal := indices[1]
		return seq(charge, argInstrs, setLocals(indices),
			[]instruction.Instruction{instruction.GetLocal{Index: lengthLocal}, instruction.I64ExtendI32U{}},
			i64Const(0),
		), nil
	})

	registerWord("concat", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		lhs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		lhsIdx := b.declareLocal(e.Args[0].Type)
		rhs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		rhsIdx := b.declareLocal(e.Args[1].Type)

		charge, err := g.chargeWord(e.Op, int64(MemSize(e.Type)))
		if err != nil {
			return nil, err
		}
		outOff, reserve := b.reserve(int32(MemSize(e.Type)))
		lhsBytes, lhsBytesInstrs := seqByteLen(b, e.Args[0].Type, lhsIdx[1])
		rhsBytes, rhsBytesInstrs := seqByteLen(b, e.Args[1].Type, rhsIdx[1])

		copyLhs, err := g.memcpyCall(
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}},
			[]instruction.Instruction{instruction.GetLocal{Index: lhsIdx[0]}},
			[]instruction.Instruction{instruction.GetLocal{Index: lhsBytes}},
		)
		if err != nil {
			return nil, err
		}
		secondDst, secondDstInstrs := elemAddr(b, outOff, lhsBytes, 1)
		copyRhs, err := g.memcpyCall(
			[]instruction.Instruction{instruction.GetLocal{Index: secondDst}},
			[]instruction.Instruction{instruction.GetLocal{Index: rhsIdx[0]}},
			[]instruction.Instruction{instruction.GetLocal{Index: rhsBytes}},
		)
		if err != nil {
			return nil, err
		}

		resultLen := b.declareLocalRaw(types.I32)
		lenInstrs := []instruction.Instruction{
			instruction.GetLocal{Index: lhsIdx[1]}, instruction.GetLocal{Index: rhsIdx[1]}, instruction.I32Add{},
			instruction.SetLocal{Index: resultLen},
		}

		return seq(
			charge, lhs, setLocals(lhsIdx), rhs, setLocals(rhsIdx),
			reserve, lhsBytesInstrs, rhsBytesInstrs,
			copyLhs, secondDstInstrs, copyRhs, lenInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}, instruction.GetLocal{Index: resultLen}},
		), nil
	})

	registerWord("list", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		lt, ok := e.Type.(ast.ListType)
		if !ok {
			return nil, internalError(e.Location, "list: expected list type, got %s", e.Type)
		}
		charge, err := g.chargeWord(e.Op, int64(len(e.Args)))
		if err != nil {
			return nil, err
		}
		outOff, reserve := b.reserve(int32(MemSize(e.Type)))
		stride := int32(ElementStride(lt.Elem))
		out := append([]instruction.Instruction{}, charge...)
		out = append(out, reserve...)
		for i, arg := range e.Args {
			argInstrs, err := g.lower(b, arg)
			if err != nil {
				return nil, err
			}
			indices := b.declareLocal(lt.Elem)
			addr, addrInstrs := addrConst(b, outOff, int32(i)*stride)
			storeInstrs, err := g.storeValue(b, lt.Elem, indices, addr)
			if err != nil {
				return nil, err
			}
			out = append(out, argInstrs...)
			out = append(out, setLocals(indices)...)
			out = append(out, addrInstrs...)
			out = append(out, storeInstrs...)
		}
		out = append(out, instruction.GetLocal{Index: outOff})
		out = append(out, i32Const(int32(len(e.Args)))...)
		return out, nil
	})

	registerWord("append", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		lt, ok := e.Type.(ast.ListType)
		if !ok {
			return nil, internalError(e.Location, "append: expected list type, got %s", e.Type)
		}
		srcInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		srcIdx := b.declareLocal(e.Args[0].Type)
		elemInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		elemIdx := b.declareLocal(lt.Elem)

		charge, err := g.chargeWord(e.Op, int64(MemSize(e.Type)))
		if err != nil {
			return nil, err
		}
		stride := int32(ElementStride(lt.Elem))
		outOff, reserve := b.reserve(int32(MemSize(e.Type)))
		srcBytes, srcBytesInstrs := seqByteLen(b, e.Args[0].Type, srcIdx[1])
		copySrc, err := g.memcpyCall(
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}},
			[]instruction.Instruction{instruction.GetLocal{Index: srcIdx[0]}},
			[]instruction.Instruction{instruction.GetLocal{Index: srcBytes}},
		)
		if err != nil {
			return nil, err
		}
		tailAddr, tailAddrInstrs := elemAddr(b, outOff, srcIdx[1], stride)
		storeElem, err := g.storeValue(b, lt.Elem, elemIdx, tailAddr)
		if err != nil {
			return nil, err
		}
		resultLen := b.declareLocalRaw(types.I32)
		lenInstrs := []instruction.Instruction{
			instruction.GetLocal{Index: srcIdx[1]}, instruction.I32Const{Value: 1}, instruction.I32Add{},
			instruction.SetLocal{Index: resultLen},
		}
		return seq(
			charge, srcInstrs, setLocals(srcIdx), elemInstrs, setLocals(elemIdx),
			reserve, srcBytesInstrs, copySrc, tailAddrInstrs, storeElem, lenInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}, instruction.GetLocal{Index: resultLen}},
		), nil
	})

	registerWord("element-at", lowerElementAt)
	registerWord("element-at?", lowerElementAt)

	registerWord("replace-at?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 3 {
			return nil, argumentCountMismatch(e.Location, e.Op, 3, len(e.Args))
		}
		optType, ok := e.Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "replace-at?: expected optional type, got %s", e.Type)
		}
		seqInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		seqIdx := b.declareLocal(e.Args[0].Type)
		idxInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		idxIdx := b.declareLocal(e.Args[1].Type)
		elemType, unit := sequenceUnit(e.Args[0].Type)
		valInstrs, err := g.lower(b, e.Args[2])
		if err != nil {
			return nil, err
		}
		valIdx := b.declareLocal(elemType)

		i32Idx := b.declareLocalRaw(types.I32)
		wrapIdx := []instruction.Instruction{instruction.GetLocal{Index: idxIdx[0]}, instruction.I32WrapI64{}, instruction.SetLocal{Index: i32Idx}}

		inBounds := []instruction.Instruction{instruction.GetLocal{Index: i32Idx}, instruction.GetLocal{Index: seqIdx[1]}, instruction.I32LtS{}}

		outOff, reserve := b.reserve(int32(MemSize(e.Args[0].Type)))
		totalBytes, totalBytesInstrs := seqByteLen(b, e.Args[0].Type, seqIdx[1])
		copyAll, err := g.memcpyCall(
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}},
			[]instruction.Instruction{instruction.GetLocal{Index: seqIdx[0]}},
			[]instruction.Instruction{instruction.GetLocal{Index: totalBytes}},
		)
		if err != nil {
			return nil, err
		}
		addr, addrInstrs := elemAddr(b, outOff, i32Idx, unit)
		storeInstrs, err := g.storeValue(b, elemType, valIdx, addr)
		if err != nil {
			return nil, err
		}
		success := seq(i32Const(1), reserve, totalBytesInstrs, copyAll, addrInstrs, storeInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}, instruction.GetLocal{Index: seqIdx[1]}})
		failure := seq(i32Const(0), zeroValue(b, optType.Some))

		return seq(
			seqInstrs, setLocals(seqIdx), idxInstrs, setLocals(idxIdx), valInstrs, setLocals(valIdx),
			wrapIdx,
			g.selectValue(b, inBounds, success, failure, e.Type),
		), nil
	})

	registerWord("slice?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 3 {
			return nil, argumentCountMismatch(e.Location, e.Op, 3, len(e.Args))
		}
		optType, ok := e.Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "slice?: expected optional type, got %s", e.Type)
		}
		seqInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		seqIdx := b.declareLocal(e.Args[0].Type)
		leftInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		leftIdx := b.declareLocal(e.Args[1].Type)
		rightInstrs, err := g.lower(b, e.Args[2])
		if err != nil {
			return nil, err
		}
		rightIdx := b.declareLocal(e.Args[2].Type)

		unit := elemUnitSize(e.Args[0].Type)
		leftI32 := b.declareLocalRaw(types.I32)
		rightI32 := b.declareLocalRaw(types.I32)
		wrap := []instruction.Instruction{
			instruction.GetLocal{Index: leftIdx[0]}, instruction.I32WrapI64{}, instruction.SetLocal{Index: leftI32},
			instruction.GetLocal{Index: rightIdx[0]}, instruction.I32WrapI64{}, instruction.SetLocal{Index: rightI32},
		}

		// left <= right, expressed as not(right < left)
		leLeftRight := []instruction.Instruction{
			instruction.GetLocal{Index: rightI32}, instruction.GetLocal{Index: leftI32}, instruction.I32LtS{}, instruction.I32Eqz{},
		}
		// right <= length, expressed as not(length < right)
		leRightLen := []instruction.Instruction{
			instruction.GetLocal{Index: seqIdx[1]}, instruction.GetLocal{Index: rightI32}, instruction.I32LtS{}, instruction.I32Eqz{},
		}

		addr, addrInstrs := elemAddr(b, seqIdx[0], leftI32, unit)
		resultLen := b.declareLocalRaw(types.I32)
		lenInstrs := []instruction.Instruction{
			instruction.GetLocal{Index: rightI32}, instruction.GetLocal{Index: leftI32}, instruction.I32Sub{},
			instruction.SetLocal{Index: resultLen},
		}
		success := seq(i32Const(1), addrInstrs, lenInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: addr}, instruction.GetLocal{Index: resultLen}})
		failure := seq(i32Const(0), zeroValue(b, optType.Some))

		allOK := seq(leLeftRight, leRightLen, []instruction.Instruction{instruction.I32And{}})

		return seq(
			seqInstrs, setLocals(seqIdx), leftInstrs, setLocals(leftIdx), rightInstrs, setLocals(rightIdx), wrap,
			g.selectValue(b, allOK, success, failure, e.Type),
		), nil
	})

	registerWord("as-max-len?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		optType, ok := e.Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "as-max-len?: expected optional type, got %s", e.Type)
		}
		if e.Args[1].Literal == nil {
			return nil, internalError(e.Location, "as-max-len?: bound argument must be a literal")
		}
		n := int32(e.Args[1].Literal.Int.Low)

		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		seqInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		seqIdx := b.declareLocal(e.Args[0].Type)

		cond := []instruction.Instruction{
			instruction.GetLocal{Index: seqIdx[1]}, instruction.I32Const{Value: n}, instruction.I32LeS{},
		}
		success := seq(i32Const(1), getLocals(seqIdx))
		failure := seq(i32Const(0), zeroValue(b, optType.Some))

		return seq(charge, seqInstrs, setLocals(seqIdx), g.selectValue(b, cond, success, failure, e.Type)), nil
	})

	registerWord("filter", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		cb, ok := e.Extra.(ast.FunctionCallbackArg)
		if !ok {
			return nil, internalError(e.Location, "filter: missing callback")
		}
		if _, ok := g.functionDef(cb.FuncName); !ok {
			return nil, internalError(e.Location, "filter: undeclared function %q", cb.FuncName)
		}
		lt, ok := e.Args[0].Type.(ast.ListType)
		if !ok {
			return nil, internalError(e.Location, "filter: expected list argument, got %s", e.Args[0].Type)
		}
		call, err := g.callByName(cb.FuncName)
		if err != nil {
			return nil, err
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}

		srcInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		srcIdx := b.declareLocal(e.Args[0].Type)

		stride := int32(ElementStride(lt.Elem))
		outOff, reserve := b.reserve(int32(MemSize(e.Type)))
		outCount := b.declareLocalRaw(types.I32)
		initCount := []instruction.Instruction{instruction.I32Const{Value: 0}, instruction.SetLocal{Index: outCount}}

		body := func(i uint32) []instruction.Instruction {
			srcAddr, srcAddrInstrs := elemAddr(b, srcIdx[0], i, stride)
			loadInstrs, elemIdx, err := g.loadValue(b, lt.Elem, srcAddr)
			if err != nil {
				g.errs = append(g.errs, err)
				return nil
			}
			keepInstrs := seq(getLocals(elemIdx), call)
			keepLocal := b.declareLocalRaw(types.I32)
			dstAddr, dstAddrInstrs := elemAddr(b, outOff, outCount, stride)
			storeInstrs, err := g.storeValue(b, lt.Elem, elemIdx, dstAddr)
			if err != nil {
				g.errs = append(g.errs, err)
				return nil
			}
			bumpCount := []instruction.Instruction{
				instruction.GetLocal{Index: outCount}, instruction.I32Const{Value: 1}, instruction.I32Add{},
				instruction.SetLocal{Index: outCount},
			}
			onKeep := seq(dstAddrInstrs, storeInstrs, bumpCount)
			return seq(srcAddrInstrs, loadInstrs, keepInstrs, []instruction.Instruction{instruction.SetLocal{Index: keepLocal}},
				[]instruction.Instruction{instruction.GetLocal{Index: keepLocal}, instruction.If{Then: onKeep}},
			)
		}
		loop := countedLoop(b, srcIdx[1], body)
		return seq(charge, srcInstrs, setLocals(srcIdx), reserve, initCount, loop,
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}, instruction.GetLocal{Index: outCount}},
		), nil
	})

	registerWord("fold", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		cb, ok := e.Extra.(ast.FunctionCallbackArg)
		if !ok {
			return nil, internalError(e.Location, "fold: missing callback")
		}
		lt, ok := e.Args[0].Type.(ast.ListType)
		if !ok {
			return nil, internalError(e.Location, "fold: expected list argument, got %s", e.Args[0].Type)
		}
		call, err := g.callByName(cb.FuncName)
		if err != nil {
			return nil, err
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}

		srcInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		srcIdx := b.declareLocal(e.Args[0].Type)
		initInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		accIdx := b.declareLocal(e.Type)

		stride := int32(ElementStride(lt.Elem))
		body := func(i uint32) []instruction.Instruction {
			addr, addrInstrs := elemAddr(b, srcIdx[0], i, stride)
			loadInstrs, elemIdx, err := g.loadValue(b, lt.Elem, addr)
			if err != nil {
				g.errs = append(g.errs, err)
				return nil
			}
			callInstrs := seq(getLocals(elemIdx), getLocals(accIdx), call)
			return seq(addrInstrs, loadInstrs, callInstrs, setLocals(accIdx))
		}
		loop := countedLoop(b, srcIdx[1], body)

		return seq(charge, srcInstrs, setLocals(srcIdx), initInstrs, setLocals(accIdx), loop, getLocals(accIdx)), nil
	})

	registerWord("map", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		cb, ok := e.Extra.(ast.FunctionCallbackArg)
		if !ok {
			return nil, internalError(e.Location, "map: missing callback")
		}
		srcLt, ok := e.Args[0].Type.(ast.ListType)
		if !ok {
			return nil, internalError(e.Location, "map: expected list argument, got %s", e.Args[0].Type)
		}
		outLt, ok := e.Type.(ast.ListType)
		if !ok {
			return nil, internalError(e.Location, "map: expected list result, got %s", e.Type)
		}
		call, err := g.callByName(cb.FuncName)
		if err != nil {
			return nil, err
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}

		srcInstrs, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		srcIdx := b.declareLocal(e.Args[0].Type)

		srcStride := int32(ElementStride(srcLt.Elem))
		dstStride := int32(ElementStride(outLt.Elem))
		outOff, reserve := b.reserve(int32(MemSize(e.Type)))

		body := func(i uint32) []instruction.Instruction {
			srcAddr, srcAddrInstrs := elemAddr(b, srcIdx[0], i, srcStride)
			loadInstrs, elemIdx, err := g.loadValue(b, srcLt.Elem, srcAddr)
			if err != nil {
				g.errs = append(g.errs, err)
				return nil
			}
			callInstrs := seq(getLocals(elemIdx), call)
			resultIdx := b.declareLocal(outLt.Elem)
			dstAddr, dstAddrInstrs := elemAddr(b, outOff, i, dstStride)
			storeInstrs, err := g.storeValue(b, outLt.Elem, resultIdx, dstAddr)
			if err != nil {
				g.errs = append(g.errs, err)
				return nil
			}
			return seq(srcAddrInstrs, loadInstrs, callInstrs, setLocals(resultIdx), dstAddrInstrs, storeInstrs)
		}
		loop := countedLoop(b, srcIdx[1], body)

		return seq(charge, srcInstrs, setLocals(srcIdx), reserve, loop,
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}, instruction.GetLocal{Index: srcIdx[1]}},
		), nil
	})
}

// sequenceUnit returns the element type and per-element byte stride used by
// element-at/replace-at? for t: for a list, its declared element type and
// ElementStride; for buffer/string-ascii/string-utf8 indexing a single
// character, a length-1 window of the same kind with a 1- or 4-byte unit.
func sequenceUnit(t ast.Type) (ast.Type, int32) {
	switch ty := t.(type) {
	case ast.ListType:
		return ty.Elem, int32(ElementStride(ty.Elem))
	case ast.BufferType:
		return ast.BufferType{Max: 1}, 1
	case ast.StringASCIIType:
		return ast.StringASCIIType{Max: 1}, 1
	case ast.StringUTF8Type:
		return ast.StringUTF8Type{Max: 1}, 4
	default:
		return ast.NoType{}, 1
	}
}

func lowerElementAt(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
	if len(e.Args) != 2 {
		return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
	}
	optType, ok := e.Type.(ast.OptionalType)
	if !ok {
		return nil, internalError(e.Location, "element-at: expected optional type, got %s", e.Type)
	}
	charge, err := g.chargeWord(e.Op, 1)
	if err != nil {
		return nil, err
	}
	seqInstrs, err := g.lower(b, e.Args[0])
	if err != nil {
		return nil, err
	}
	seqIdx := b.declareLocal(e.Args[0].Type)
	idxInstrs, err := g.lower(b, e.Args[1])
	if err != nil {
		return nil, err
	}
	idxIdx := b.declareLocal(e.Args[1].Type)

	elemType, unit := sequenceUnit(e.Args[0].Type)
	i32Idx := b.declareLocalRaw(types.I32)
	wrap := []instruction.Instruction{
		instruction.GetLocal{Index: idxIdx[0]}, instruction.I32WrapI64{}, instruction.SetLocal{Index: i32Idx},
	}
	inBounds := []instruction.Instruction{
		instruction.GetLocal{Index: i32Idx}, instruction.GetLocal{Index: seqIdx[1]}, instruction.I32LtS{},
	}

	var success []instruction.Instruction
	if _, isList := e.Args[0].Type.(ast.ListType); isList {
		addr, addrInstrs := elemAddr(b, seqIdx[0], i32Idx, unit)
		loadInstrs, elemIdx, lerr := g.loadValue(b, elemType, addr)
		if lerr != nil {
			return nil, lerr
		}
		success = seq(i32Const(1), addrInstrs, loadInstrs, getLocals(elemIdx))
	} else {
		// buffer/string-ascii/string-utf8: a single element is a length-1
		// window pointing directly into the source, never copied.
		addr, addrInstrs := elemAddr(b, seqIdx[0], i32Idx, unit)
		success = seq(i32Const(1), addrInstrs, []instruction.Instruction{instruction.GetLocal{Index: addr}}, i32Const(1))
	}
	failure := seq(i32Const(0), zeroValue(b, optType.Some))

	return seq(
		charge, seqInstrs, setLocals(seqIdx), idxInstrs, setLocals(idxIdx), wrap,
		g.selectValue(b, inBounds, success, failure, e.Type),
	), nil
}
