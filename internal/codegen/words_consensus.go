package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/serialize"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// consensusMaxSize is the worst-case byte length of t's consensus-buffer
// encoding (internal/serialize's wire format, mirrored here for values that
// live inside a compiled module rather than on the host). Unlike MemSize,
// which is an exact fixed layout, a value's actual encoded length varies
// with its runtime contents (e.g. a short buffer within its declared max);
// this is only ever used to size the scratch region before encoding starts.
func consensusMaxSize(t ast.Type) int32 {
	switch ty := t.(type) {
	case ast.NoType:
		return 1
	case ast.IntType, ast.UintType:
		return 1 + 16
	case ast.BoolType:
		return 1
	case ast.BufferType:
		return 1 + 4 + int32(ty.Max)
	case ast.StringASCIIType:
		return 1 + 4 + int32(ty.Max)
	case ast.StringUTF8Type:
		return 1 + 4 + int32(ty.Max)*4
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		return 1 + int32(principalBytes) + int32(contractNameLengthBytes) + int32(contractNameMaxLength)
	case ast.OptionalType:
		return 1 + consensusMaxSize(ty.Some)
	case ast.ResponseType:
		return 1 + consensusMaxSize(ty.Ok) + consensusMaxSize(ty.Err)
	case ast.ListType:
		return 1 + 4 + int32(ty.Max)*consensusMaxSize(ty.Elem)
	case ast.TupleType:
		size := int32(1 + 4)
		for _, f := range ty.Fields {
			size += 1 + int32(len(f.Key)) + consensusMaxSize(f.Type)
		}
		return size
	default:
		panic("codegen: consensusMaxSize: unhandled type " + t.String())
	}
}

// consensusBuf is a write cursor into a reserved scratch region: buf is the
// local holding its base address, pos the local tracking how many bytes
// have been written so far.
type consensusBuf struct {
	buf uint32
	pos uint32
}

func curAddr(b *builder, base, pos uint32) (uint32, []instruction.Instruction) {
	return elemAddr(b, base, pos, 1)
}

func advancePos(posLocal uint32, n int32) []instruction.Instruction {
	return []instruction.Instruction{
		instruction.GetLocal{Index: posLocal}, instruction.I32Const{Value: n}, instruction.I32Add{},
		instruction.SetLocal{Index: posLocal},
	}
}

func advancePosLocal(posLocal, nLocal uint32) []instruction.Instruction {
	return []instruction.Instruction{
		instruction.GetLocal{Index: posLocal}, instruction.GetLocal{Index: nLocal}, instruction.I32Add{},
		instruction.SetLocal{Index: posLocal},
	}
}

func (g *Generator) writeByteConst(b *builder, cb consensusBuf, v byte) ([]instruction.Instruction, error) {
	return g.writeConstBytes(b, cb, []byte{v})
}

func (g *Generator) writeConstBytes(b *builder, cb consensusBuf, data []byte) ([]instruction.Instruction, error) {
	addr, addrInstrs := curAddr(b, cb.buf, cb.pos)
	lit := g.allocateLiteral(data)
	copyInstrs, err := g.memcpyCall(
		[]instruction.Instruction{instruction.GetLocal{Index: addr}},
		i32Const(lit),
		i32Const(int32(len(data))),
	)
	if err != nil {
		return nil, err
	}
	return seq(addrInstrs, copyInstrs, advancePos(cb.pos, int32(len(data)))), nil
}

// writeI32BE stores the 32-bit value held in valueLocal, big-endian, and
// advances the cursor by 4.
func (g *Generator) writeI32BE(b *builder, cb consensusBuf, valueLocal uint32) ([]instruction.Instruction, error) {
	call, err := g.callByName("store-i32-be")
	if err != nil {
		return nil, err
	}
	addr, addrInstrs := curAddr(b, cb.buf, cb.pos)
	instrs := seq(addrInstrs,
		[]instruction.Instruction{instruction.GetLocal{Index: addr}, instruction.GetLocal{Index: valueLocal}},
		call,
		advancePos(cb.pos, 4),
	)
	return instrs, nil
}

func (g *Generator) writeI32BEConst(b *builder, cb consensusBuf, v int32) ([]instruction.Instruction, error) {
	call, err := g.callByName("store-i32-be")
	if err != nil {
		return nil, err
	}
	addr, addrInstrs := curAddr(b, cb.buf, cb.pos)
	instrs := seq(addrInstrs,
		[]instruction.Instruction{instruction.GetLocal{Index: addr}, instruction.I32Const{Value: v}},
		call,
		advancePos(cb.pos, 4),
	)
	return instrs, nil
}

// writeI64BE stores the 64-bit value held in valueLocal, big-endian, and
// advances the cursor by 8.
func (g *Generator) writeI64BE(b *builder, cb consensusBuf, valueLocal uint32) ([]instruction.Instruction, error) {
	call, err := g.callByName("store-i64-be")
	if err != nil {
		return nil, err
	}
	addr, addrInstrs := curAddr(b, cb.buf, cb.pos)
	instrs := seq(addrInstrs,
		[]instruction.Instruction{instruction.GetLocal{Index: addr}, instruction.GetLocal{Index: valueLocal}},
		call,
		advancePos(cb.pos, 8),
	)
	return instrs, nil
}

// writeBytesDyn copies sizeLocal bytes from srcAddrLocal and advances the
// cursor by the same runtime amount.
func (g *Generator) writeBytesDyn(b *builder, cb consensusBuf, srcAddrLocal, sizeLocal uint32) ([]instruction.Instruction, error) {
	addr, addrInstrs := curAddr(b, cb.buf, cb.pos)
	copyInstrs, err := g.memcpyCall(
		[]instruction.Instruction{instruction.GetLocal{Index: addr}},
		[]instruction.Instruction{instruction.GetLocal{Index: srcAddrLocal}},
		[]instruction.Instruction{instruction.GetLocal{Index: sizeLocal}},
	)
	if err != nil {
		return nil, err
	}
	return seq(addrInstrs, copyInstrs, advancePosLocal(cb.pos, sizeLocal)), nil
}

// encodeWalk recursively lowers a value already resident in indices (in
// Shape(t) order, consumed via cursor — the same convention storeWalk uses)
// into cb, and reports the instructions that do so. It mirrors
// internal/serialize.Encode byte for byte, since that package exists
// specifically to test this one's output.
func (g *Generator) encodeWalk(b *builder, t ast.Type, indices []uint32, cursor *int, cb consensusBuf) ([]instruction.Instruction, error) {
	next := func() uint32 {
		idx := indices[*cursor]
		*cursor++
		return idx
	}
	switch ty := t.(type) {
	case ast.NoType:
		next()
		return nil, nil

	case ast.IntType, ast.UintType:
		lo, hi := next(), next()
		prefix := byte(serialize.PrefixInt)
		if _, isUint := t.(ast.UintType); isUint {
			prefix = byte(serialize.PrefixUint)
		}
		tagInstrs, err := g.writeByteConst(b, cb, prefix)
		if err != nil {
			return nil, err
		}
		hiInstrs, err := g.writeI64BE(b, cb, hi)
		if err != nil {
			return nil, err
		}
		loInstrs, err := g.writeI64BE(b, cb, lo)
		if err != nil {
			return nil, err
		}
		return seq(tagInstrs, hiInstrs, loInstrs), nil

	case ast.BoolType:
		v := next()
		trueInstrs, err := g.writeByteConst(b, cb, byte(serialize.PrefixBoolTrue))
		if err != nil {
			return nil, err
		}
		falseInstrs, err := g.writeByteConst(b, cb, byte(serialize.PrefixBoolFalse))
		if err != nil {
			return nil, err
		}
		return []instruction.Instruction{
			instruction.GetLocal{Index: v},
			instruction.If{Then: trueInstrs, Else: falseInstrs},
		}, nil

	case ast.BufferType, ast.StringASCIIType:
		off, length := next(), next()
		prefix := byte(serialize.PrefixBuffer)
		if _, isAscii := t.(ast.StringASCIIType); isAscii {
			prefix = byte(serialize.PrefixStringASCII)
		}
		tagInstrs, err := g.writeByteConst(b, cb, prefix)
		if err != nil {
			return nil, err
		}
		lenInstrs, err := g.writeI32BE(b, cb, length)
		if err != nil {
			return nil, err
		}
		payloadInstrs, err := g.writeBytesDyn(b, cb, off, length)
		if err != nil {
			return nil, err
		}
		return seq(tagInstrs, lenInstrs, payloadInstrs), nil

	case ast.StringUTF8Type:
		off, scalars := next(), next()
		tagInstrs, err := g.writeByteConst(b, cb, byte(serialize.PrefixStringUTF8))
		if err != nil {
			return nil, err
		}
		scratchOff, scratchReserve := b.reserve(int32(ty.Max) * 4)
		convertCall, err := g.callByName("convert-scalars-to-utf8")
		if err != nil {
			return nil, err
		}
		byteLen := b.declareLocalRaw(types.I32)
		convertInstrs := seq(
			[]instruction.Instruction{instruction.GetLocal{Index: off}, instruction.GetLocal{Index: scalars}, instruction.GetLocal{Index: scratchOff}},
			convertCall,
			[]instruction.Instruction{instruction.SetLocal{Index: byteLen}},
		)
		lenInstrs, err := g.writeI32BE(b, cb, byteLen)
		if err != nil {
			return nil, err
		}
		payloadInstrs, err := g.writeBytesDyn(b, cb, scratchOff, byteLen)
		if err != nil {
			return nil, err
		}
		return seq(tagInstrs, scratchReserve, convertInstrs, lenInstrs, payloadInstrs), nil

	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		off, length := next(), next()
		isStd := b.declareLocalRaw(types.I32)
		checkInstrs := []instruction.Instruction{
			instruction.GetLocal{Index: length}, instruction.I32Const{Value: int32(principalBytes)}, instruction.I32Eq{},
			instruction.SetLocal{Index: isStd},
		}
		stdTag, err := g.writeByteConst(b, cb, byte(serialize.PrefixStandardPrincipal))
		if err != nil {
			return nil, err
		}
		contractTag, err := g.writeByteConst(b, cb, byte(serialize.PrefixContractPrincipal))
		if err != nil {
			return nil, err
		}
		tagInstr := []instruction.Instruction{
			instruction.GetLocal{Index: isStd},
			instruction.If{Then: stdTag, Else: contractTag},
		}
		payloadInstrs, err := g.writeBytesDyn(b, cb, off, length)
		if err != nil {
			return nil, err
		}
		return seq(checkInstrs, tagInstr, payloadInstrs), nil

	case ast.OptionalType:
		ind := next()
		someTag, err := g.writeByteConst(b, cb, byte(serialize.PrefixOptionalSome))
		if err != nil {
			return nil, err
		}
		someVal, err := g.encodeWalk(b, ty.Some, indices, cursor, cb)
		if err != nil {
			return nil, err
		}
		noneTag, err := g.writeByteConst(b, cb, byte(serialize.PrefixOptionalNone))
		if err != nil {
			return nil, err
		}
		return []instruction.Instruction{
			instruction.GetLocal{Index: ind},
			instruction.If{Then: seq(someTag, someVal), Else: noneTag},
		}, nil

	case ast.ResponseType:
		ind := next()
		okTag, err := g.writeByteConst(b, cb, byte(serialize.PrefixResponseOk))
		if err != nil {
			return nil, err
		}
		okVal, err := g.encodeWalk(b, ty.Ok, indices, cursor, cb)
		if err != nil {
			return nil, err
		}
		errTag, err := g.writeByteConst(b, cb, byte(serialize.PrefixResponseErr))
		if err != nil {
			return nil, err
		}
		errVal, err := g.encodeWalk(b, ty.Err, indices, cursor, cb)
		if err != nil {
			return nil, err
		}
		return []instruction.Instruction{
			instruction.GetLocal{Index: ind},
			instruction.If{Then: seq(okTag, okVal), Else: seq(errTag, errVal)},
		}, nil

	case ast.ListType:
		off, count := next(), next()
		tagInstrs, err := g.writeByteConst(b, cb, byte(serialize.PrefixList))
		if err != nil {
			return nil, err
		}
		countInstrs, err := g.writeI32BE(b, cb, count)
		if err != nil {
			return nil, err
		}
		stride := int32(ElementStride(ty.Elem))
		var loopErr error
		loop := countedLoop(b, count, func(i uint32) []instruction.Instruction {
			addr, addrInstrs := elemAddr(b, off, i, stride)
			loadInstrs, elemIdx, err := g.loadValue(b, ty.Elem, addr)
			if err != nil {
				loopErr = err
				return nil
			}
			elemCursor := 0
			encInstrs, err := g.encodeWalk(b, ty.Elem, elemIdx, &elemCursor, cb)
			if err != nil {
				loopErr = err
				return nil
			}
			return seq(addrInstrs, loadInstrs, encInstrs)
		})
		if loopErr != nil {
			return nil, loopErr
		}
		return seq(tagInstrs, countInstrs, loop), nil

	case ast.TupleType:
		tagInstrs, err := g.writeByteConst(b, cb, byte(serialize.PrefixTuple))
		if err != nil {
			return nil, err
		}
		countInstrs, err := g.writeI32BEConst(b, cb, int32(len(ty.Fields)))
		if err != nil {
			return nil, err
		}
		out := seq(tagInstrs, countInstrs)
		for _, f := range ty.Fields {
			keyLenInstrs, err := g.writeByteConst(b, cb, byte(len(f.Key)))
			if err != nil {
				return nil, err
			}
			keyInstrs, err := g.writeConstBytes(b, cb, []byte(f.Key))
			if err != nil {
				return nil, err
			}
			fieldInstrs, err := g.encodeWalk(b, f.Type, indices, cursor, cb)
			if err != nil {
				return nil, err
			}
			out = append(out, keyLenInstrs...)
			out = append(out, keyInstrs...)
			out = append(out, fieldInstrs...)
		}
		return out, nil

	default:
		return nil, internalError(ast.Location{}, "to-consensus-buff?: unsupported type %s", t)
	}
}

// lowerToConsensusBuff encodes the value bound to indices (of type t) into
// a freshly reserved scratch region and leaves (offset, length) — the
// encoded buffer's own ABI pair — on the stack.
func (g *Generator) lowerToConsensusBuff(b *builder, t ast.Type, indices []uint32) ([]instruction.Instruction, error) {
	bufOff, reserveInstrs := b.reserve(consensusMaxSize(t))
	pos := b.declareLocalRaw(types.I32)
	initPos := []instruction.Instruction{instruction.I32Const{Value: 0}, instruction.SetLocal{Index: pos}}
	cb := consensusBuf{buf: bufOff, pos: pos}
	cursor := 0
	body, err := g.encodeWalk(b, t, indices, &cursor, cb)
	if err != nil {
		return nil, err
	}
	return seq(reserveInstrs, initPos, body,
		[]instruction.Instruction{instruction.GetLocal{Index: bufOff}, instruction.GetLocal{Index: pos}},
	), nil
}

// decodeCursor is a read cursor into a source (buff N) value: buf is the
// local holding its base address, pos the running read offset.
type decodeCursor struct {
	buf uint32
	pos uint32
}

func (g *Generator) readByteAt(b *builder, addr uint32) (uint32, []instruction.Instruction, error) {
	call, err := g.callByName("load-i32-be")
	if err != nil {
		return 0, nil, err
	}
	val := b.declareLocalRaw(types.I32)
	instrs := seq(
		[]instruction.Instruction{instruction.GetLocal{Index: addr}},
		call,
		[]instruction.Instruction{instruction.I32Const{Value: 24}, instruction.I32ShrU{}, instruction.SetLocal{Index: val}},
	)
	return val, instrs, nil
}

// readByte reads and consumes the single tag/length byte at dc's current
// position, advancing it by 1.
func (g *Generator) readByte(b *builder, dc decodeCursor) (uint32, []instruction.Instruction, error) {
	addr, addrInstrs := curAddr(b, dc.buf, dc.pos)
	val, valInstrs, err := g.readByteAt(b, addr)
	if err != nil {
		return 0, nil, err
	}
	return val, seq(addrInstrs, valInstrs, advancePos(dc.pos, 1)), nil
}

// readU32 reads a big-endian 32-bit length field, advancing dc by 4.
func (g *Generator) readU32(b *builder, dc decodeCursor) (uint32, []instruction.Instruction, error) {
	call, err := g.callByName("load-i32-be")
	if err != nil {
		return 0, nil, err
	}
	addr, addrInstrs := curAddr(b, dc.buf, dc.pos)
	val := b.declareLocalRaw(types.I32)
	instrs := seq(addrInstrs,
		[]instruction.Instruction{instruction.GetLocal{Index: addr}},
		call,
		[]instruction.Instruction{instruction.SetLocal{Index: val}},
		advancePos(dc.pos, 4),
	)
	return val, instrs, nil
}

// readI64 reads a big-endian 64-bit field, advancing dc by 8.
func (g *Generator) readI64(b *builder, dc decodeCursor) (uint32, []instruction.Instruction, error) {
	call, err := g.callByName("load-i64-be")
	if err != nil {
		return 0, nil, err
	}
	addr, addrInstrs := curAddr(b, dc.buf, dc.pos)
	val := b.declareLocalRaw(types.I64)
	instrs := seq(addrInstrs,
		[]instruction.Instruction{instruction.GetLocal{Index: addr}},
		call,
		[]instruction.Instruction{instruction.SetLocal{Index: val}},
		advancePos(dc.pos, 8),
	)
	return val, instrs, nil
}

func and2(out, a, b uint32) []instruction.Instruction {
	return []instruction.Instruction{
		instruction.GetLocal{Index: a}, instruction.GetLocal{Index: b}, instruction.I32And{},
		instruction.SetLocal{Index: out},
	}
}

// decodeWalk parses one value of type t starting at dc, reporting a bool
// local (1 on success), the locals (in Shape(t) order) the parsed value now
// lives in, and the instructions that do both. It trusts that bytes it
// reads exist in allocated linear memory even past a malformed buffer's
// logical length (the scratch/literal regions around it make this safe,
// if imprecise).
func (g *Generator) decodeWalk(b *builder, t ast.Type, dc decodeCursor) (uint32, []uint32, []instruction.Instruction, error) {
	switch ty := t.(type) {
	case ast.NoType:
		ok := b.declareLocalRaw(types.I32)
		v := b.declareLocalRaw(types.I32)
		return ok, []uint32{v}, []instruction.Instruction{instruction.I32Const{Value: 1}, instruction.SetLocal{Index: ok}}, nil

	case ast.IntType, ast.UintType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		expect := byte(serialize.PrefixInt)
		if _, isUint := t.(ast.UintType); isUint {
			expect = byte(serialize.PrefixUint)
		}
		ok := b.declareLocalRaw(types.I32)
		checkInstr := []instruction.Instruction{
			instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(expect)}, instruction.I32Eq{},
			instruction.SetLocal{Index: ok},
		}
		hi, hiInstrs, err := g.readI64(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		lo, loInstrs, err := g.readI64(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		return ok, []uint32{lo, hi}, seq(tagInstrs, checkInstr, hiInstrs, loInstrs), nil

	case ast.BoolType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		val := b.declareLocalRaw(types.I32)
		isFalse := b.declareLocalRaw(types.I32)
		ok := b.declareLocalRaw(types.I32)
		orInstr := []instruction.Instruction{
			instruction.GetLocal{Index: val}, instruction.GetLocal{Index: isFalse}, instruction.I32Or{},
			instruction.SetLocal{Index: ok},
		}
		instrs := seq(tagInstrs,
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixBoolTrue)}, instruction.I32Eq{},
				instruction.SetLocal{Index: val},
			},
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixBoolFalse)}, instruction.I32Eq{},
				instruction.SetLocal{Index: isFalse},
			},
			orInstr,
		)
		return ok, []uint32{val}, instrs, nil

	case ast.BufferType, ast.StringASCIIType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		expect := byte(serialize.PrefixBuffer)
		if _, isAscii := t.(ast.StringASCIIType); isAscii {
			expect = byte(serialize.PrefixStringASCII)
		}
		tagOK := b.declareLocalRaw(types.I32)
		tagCheck := []instruction.Instruction{
			instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(expect)}, instruction.I32Eq{},
			instruction.SetLocal{Index: tagOK},
		}
		n, nInstrs, err := g.readU32(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		boundsOK := b.declareLocalRaw(types.I32)
		boundsCheck := []instruction.Instruction{
			instruction.GetLocal{Index: n}, instruction.I32Const{Value: int32(MemSize(t))}, instruction.I32LeS{},
			instruction.SetLocal{Index: boundsOK},
		}
		dstOff, reserve := b.reserve(int32(MemSize(t)))
		srcAddr, srcAddrInstrs := curAddr(b, dc.buf, dc.pos)
		copyInstrs, err := g.memcpyCall(
			[]instruction.Instruction{instruction.GetLocal{Index: dstOff}},
			[]instruction.Instruction{instruction.GetLocal{Index: srcAddr}},
			[]instruction.Instruction{instruction.GetLocal{Index: n}},
		)
		if err != nil {
			return 0, nil, nil, err
		}
		ok := b.declareLocalRaw(types.I32)
		instrs := seq(tagInstrs, tagCheck, nInstrs, boundsCheck, reserve, srcAddrInstrs, copyInstrs,
			advancePosLocal(dc.pos, n), and2(ok, tagOK, boundsOK))
		return ok, []uint32{dstOff, n}, instrs, nil

	case ast.StringUTF8Type:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		tagOK := b.declareLocalRaw(types.I32)
		tagCheck := []instruction.Instruction{
			instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixStringUTF8)}, instruction.I32Eq{},
			instruction.SetLocal{Index: tagOK},
		}
		n, nInstrs, err := g.readU32(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		srcAddr, srcAddrInstrs := curAddr(b, dc.buf, dc.pos)
		dstOff, reserve := b.reserve(int32(ty.Max) * 4)
		convertCall, err := g.callByName("convert-utf8-to-scalars")
		if err != nil {
			return 0, nil, nil, err
		}
		scalars := b.declareLocalRaw(types.I32)
		convertInstrs := seq(
			[]instruction.Instruction{instruction.GetLocal{Index: srcAddr}, instruction.GetLocal{Index: n}, instruction.GetLocal{Index: dstOff}},
			convertCall,
			[]instruction.Instruction{instruction.SetLocal{Index: scalars}},
		)
		boundsOK := b.declareLocalRaw(types.I32)
		boundsCheck := []instruction.Instruction{
			instruction.GetLocal{Index: scalars}, instruction.I32Const{Value: int32(ty.Max)}, instruction.I32LeS{},
			instruction.SetLocal{Index: boundsOK},
		}
		ok := b.declareLocalRaw(types.I32)
		instrs := seq(tagInstrs, tagCheck, nInstrs, srcAddrInstrs, reserve, convertInstrs, boundsCheck,
			advancePosLocal(dc.pos, n), and2(ok, tagOK, boundsOK))
		return ok, []uint32{dstOff, scalars}, instrs, nil

	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		isStd := b.declareLocalRaw(types.I32)
		isContract := b.declareLocalRaw(types.I32)
		tagChecks := seq(
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixStandardPrincipal)}, instruction.I32Eq{},
				instruction.SetLocal{Index: isStd},
			},
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixContractPrincipal)}, instruction.I32Eq{},
				instruction.SetLocal{Index: isContract},
			},
		)
		outOff, reserve := b.reserve(int32(principalMemSize))
		fixedAddr, fixedAddrInstrs := curAddr(b, dc.buf, dc.pos)
		copyFixed, err := g.memcpyCall(
			[]instruction.Instruction{instruction.GetLocal{Index: outOff}},
			[]instruction.Instruction{instruction.GetLocal{Index: fixedAddr}},
			i32Const(int32(principalBytes)),
		)
		if err != nil {
			return 0, nil, nil, err
		}
		versionVal, versionInstrs, err := g.readByteAt(b, outOff)
		if err != nil {
			return 0, nil, nil, err
		}
		versionOK := b.declareLocalRaw(types.I32)
		versionCheck := []instruction.Instruction{
			instruction.GetLocal{Index: versionVal}, instruction.I32Const{Value: 0x1f}, instruction.I32LeS{},
			instruction.SetLocal{Index: versionOK},
		}
		outLen := b.declareLocalRaw(types.I32)

		nameLenAddr, nameLenAddrInstrs := curAddr(b, dc.buf, dc.pos)
		// nameLenAddr is read relative to dc *before* the fixed 21 bytes are
		// consumed from dc, so it must be offset past them explicitly.
		nameLenAddr2, nameLenAddr2Instrs := addrConst(b, nameLenAddr, int32(principalBytes))
		nameLenVal, nameLenValInstrs, err := g.readByteAt(b, nameLenAddr2)
		if err != nil {
			return 0, nil, nil, err
		}
		extra := b.declareLocalRaw(types.I32)
		extraInstrs := []instruction.Instruction{
			instruction.GetLocal{Index: nameLenVal}, instruction.I32Const{Value: 1}, instruction.I32Add{},
			instruction.SetLocal{Index: extra},
		}
		extraDstAddr, extraDstAddrInstrs := addrConst(b, outOff, int32(principalBytes))
		copyExtra, err := g.memcpyCall(
			[]instruction.Instruction{instruction.GetLocal{Index: extraDstAddr}},
			[]instruction.Instruction{instruction.GetLocal{Index: nameLenAddr2}},
			[]instruction.Instruction{instruction.GetLocal{Index: extra}},
		)
		if err != nil {
			return 0, nil, nil, err
		}
		contractBranch := seq(
			nameLenAddr2Instrs, nameLenValInstrs, extraInstrs,
			extraDstAddrInstrs, copyExtra,
			advancePosLocal(dc.pos, extra),
			[]instruction.Instruction{
				instruction.GetLocal{Index: extra}, instruction.I32Const{Value: int32(principalBytes)}, instruction.I32Add{},
				instruction.SetLocal{Index: outLen},
			},
		)
		standardBranch := []instruction.Instruction{instruction.I32Const{Value: int32(principalBytes)}, instruction.SetLocal{Index: outLen}}

		ok := b.declareLocalRaw(types.I32)
		instrs := seq(tagInstrs, tagChecks, reserve, fixedAddrInstrs, nameLenAddrInstrs, copyFixed,
			advancePos(dc.pos, int32(principalBytes)),
			versionInstrs, versionCheck,
			[]instruction.Instruction{instruction.GetLocal{Index: isContract}, instruction.If{Then: contractBranch, Else: standardBranch}},
			and2(ok, isStd, versionOK),
			[]instruction.Instruction{instruction.GetLocal{Index: isContract}, instruction.GetLocal{Index: versionOK}, instruction.I32And{},
				instruction.GetLocal{Index: ok}, instruction.I32Or{}, instruction.SetLocal{Index: ok}},
		)
		return ok, []uint32{outOff, outLen}, instrs, nil

	case ast.OptionalType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		isSome := b.declareLocalRaw(types.I32)
		isNone := b.declareLocalRaw(types.I32)
		checks := seq(
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixOptionalSome)}, instruction.I32Eq{},
				instruction.SetLocal{Index: isSome},
			},
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixOptionalNone)}, instruction.I32Eq{},
				instruction.SetLocal{Index: isNone},
			},
		)
		someOK, someIdx, someInstrs, err := g.decodeWalk(b, ty.Some, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		resultIdx := b.declareLocal(ty.Some)
		finalOK := b.declareLocalRaw(types.I32)
		ifInstr := instruction.If{
			Then: seq(someInstrs, getLocals(someIdx), setLocals(resultIdx),
				[]instruction.Instruction{instruction.GetLocal{Index: someOK}, instruction.SetLocal{Index: finalOK}}),
			Else: seq(zeroValue(b, ty.Some), setLocals(resultIdx),
				[]instruction.Instruction{instruction.GetLocal{Index: isNone}, instruction.SetLocal{Index: finalOK}}),
		}
		instrs := seq(tagInstrs, checks, []instruction.Instruction{instruction.GetLocal{Index: isSome}, ifInstr})
		return finalOK, resultIdx, instrs, nil

	case ast.ResponseType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		isOk := b.declareLocalRaw(types.I32)
		isErr := b.declareLocalRaw(types.I32)
		checks := seq(
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixResponseOk)}, instruction.I32Eq{},
				instruction.SetLocal{Index: isOk},
			},
			[]instruction.Instruction{
				instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixResponseErr)}, instruction.I32Eq{},
				instruction.SetLocal{Index: isErr},
			},
		)
		okOK, okIdx, okInstrs, err := g.decodeWalk(b, ty.Ok, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		errOK, errIdx, errInstrs, err := g.decodeWalk(b, ty.Err, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		resultOkIdx := b.declareLocal(ty.Ok)
		resultErrIdx := b.declareLocal(ty.Err)
		indicator := b.declareLocalRaw(types.I32)
		finalOK := b.declareLocalRaw(types.I32)
		ifInstr := instruction.If{
			Then: seq(okInstrs, getLocals(okIdx), setLocals(resultOkIdx),
				zeroValue(b, ty.Err), setLocals(resultErrIdx),
				[]instruction.Instruction{instruction.I32Const{Value: 1}, instruction.SetLocal{Index: indicator}},
				and2(finalOK, isOk, okOK)),
			Else: seq(zeroValue(b, ty.Ok), setLocals(resultOkIdx),
				errInstrs, getLocals(errIdx), setLocals(resultErrIdx),
				[]instruction.Instruction{instruction.I32Const{Value: 0}, instruction.SetLocal{Index: indicator}},
				and2(finalOK, isErr, errOK)),
		}
		instrs := seq(tagInstrs, checks, []instruction.Instruction{instruction.GetLocal{Index: isOk}, ifInstr})
		valIdx := append([]uint32{indicator}, resultOkIdx...)
		valIdx = append(valIdx, resultErrIdx...)
		return finalOK, valIdx, instrs, nil

	case ast.ListType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		tagOK := b.declareLocalRaw(types.I32)
		tagCheck := []instruction.Instruction{
			instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixList)}, instruction.I32Eq{},
			instruction.SetLocal{Index: tagOK},
		}
		count, countInstrs, err := g.readU32(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		boundsOK := b.declareLocalRaw(types.I32)
		boundsCheck := []instruction.Instruction{
			instruction.GetLocal{Index: count}, instruction.I32Const{Value: int32(ty.Max)}, instruction.I32LeS{},
			instruction.SetLocal{Index: boundsOK},
		}
		// safeCount never exceeds ty.Max, so the decode loop below can
		// never write past the listOff region reserved for it even when
		// the source buffer's declared count is malformed/oversized.
		safeCount := b.declareLocalRaw(types.I32)
		selectSafe := instruction.If{
			Then: []instruction.Instruction{instruction.GetLocal{Index: count}, instruction.SetLocal{Index: safeCount}},
			Else: []instruction.Instruction{instruction.I32Const{Value: 0}, instruction.SetLocal{Index: safeCount}},
		}
		listOff, listReserve := b.reserve(int32(MemSize(ty)))
		stride := int32(ElementStride(ty.Elem))
		elemOK := b.declareLocalRaw(types.I32)
		initElemOK := []instruction.Instruction{instruction.I32Const{Value: 1}, instruction.SetLocal{Index: elemOK}}
		var loopErr error
		loop := countedLoop(b, safeCount, func(i uint32) []instruction.Instruction {
			eOK, eIdx, eInstrs, err := g.decodeWalk(b, ty.Elem, dc)
			if err != nil {
				loopErr = err
				return nil
			}
			dstAddr, dstAddrInstrs := elemAddr(b, listOff, i, stride)
			storeInstrs, err := g.storeValue(b, ty.Elem, eIdx, dstAddr)
			if err != nil {
				loopErr = err
				return nil
			}
			return seq(eInstrs, dstAddrInstrs, storeInstrs, and2(elemOK, elemOK, eOK))
		})
		if loopErr != nil {
			return 0, nil, nil, loopErr
		}
		finalOK := b.declareLocalRaw(types.I32)
		instrs := seq(tagInstrs, tagCheck, countInstrs, boundsCheck,
			[]instruction.Instruction{instruction.GetLocal{Index: boundsOK}, selectSafe},
			listReserve, initElemOK, loop,
			and2(finalOK, tagOK, boundsOK),
			and2(finalOK, finalOK, elemOK),
		)
		return finalOK, []uint32{listOff, count}, instrs, nil

	case ast.TupleType:
		tag, tagInstrs, err := g.readByte(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		tagOK := b.declareLocalRaw(types.I32)
		tagCheck := []instruction.Instruction{
			instruction.GetLocal{Index: tag}, instruction.I32Const{Value: int32(serialize.PrefixTuple)}, instruction.I32Eq{},
			instruction.SetLocal{Index: tagOK},
		}
		fieldCount, fcInstrs, err := g.readU32(b, dc)
		if err != nil {
			return 0, nil, nil, err
		}
		countOK := b.declareLocalRaw(types.I32)
		countCheck := []instruction.Instruction{
			instruction.GetLocal{Index: fieldCount}, instruction.I32Const{Value: int32(len(ty.Fields))}, instruction.I32Eq{},
			instruction.SetLocal{Index: countOK},
		}
		allOK := b.declareLocalRaw(types.I32)
		out := seq(tagInstrs, tagCheck, fcInstrs, countCheck, and2(allOK, tagOK, countOK))
		var combined []uint32
		for _, f := range ty.Fields {
			keyLen, keyLenInstrs, err := g.readByte(b, dc)
			if err != nil {
				return 0, nil, nil, err
			}
			keyLenOK := b.declareLocalRaw(types.I32)
			keyLenCheck := []instruction.Instruction{
				instruction.GetLocal{Index: keyLen}, instruction.I32Const{Value: int32(len(f.Key))}, instruction.I32Eq{},
				instruction.SetLocal{Index: keyLenOK},
			}
			keyAddr, keyAddrInstrs := curAddr(b, dc.buf, dc.pos)
			keyLit := g.allocateLiteral([]byte(f.Key))
			eqCall, err := g.callByName("is-eq-bytes")
			if err != nil {
				return 0, nil, nil, err
			}
			keyMatch := b.declareLocalRaw(types.I32)
			keyMatchInstrs := seq(
				[]instruction.Instruction{instruction.GetLocal{Index: keyAddr}},
				i32Const(int32(len(f.Key))),
				i32Const(keyLit),
				i32Const(int32(len(f.Key))),
				eqCall,
				[]instruction.Instruction{instruction.SetLocal{Index: keyMatch}},
			)
			out = append(out, keyLenInstrs...)
			out = append(out, keyLenCheck...)
			out = append(out, keyAddrInstrs...)
			out = append(out, keyMatchInstrs...)
			out = append(out, advancePos(dc.pos, int32(len(f.Key)))...)

			fieldOK, fieldIdx, fieldInstrs, err := g.decodeWalk(b, f.Type, dc)
			if err != nil {
				return 0, nil, nil, err
			}
			out = append(out, fieldInstrs...)
			out = append(out, and2(allOK, allOK, keyLenOK)...)
			out = append(out, and2(allOK, allOK, keyMatch)...)
			out = append(out, and2(allOK, allOK, fieldOK)...)
			combined = append(combined, fieldIdx...)
		}
		return allOK, combined, out, nil

	default:
		return 0, nil, nil, internalError(ast.Location{}, "from-consensus-buff?: unsupported type %s", t)
	}
}

func init() {
	registerWord("to-consensus-buff?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		if _, ok := e.Type.(ast.OptionalType); !ok {
			return nil, internalError(e.Location, "to-consensus-buff?: expected optional type, got %s", e.Type)
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
		// encoding a value against its own static type never exceeds the
		// scratch region sized by consensusMaxSize, so this is always Some.
		return seq(valInstrs, setLocals(indices), i32Const(1), encInstrs), nil
	})

	registerWord("from-consensus-buff?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		optTy, ok := e.Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "from-consensus-buff?: expected optional type, got %s", e.Type)
		}
		arg := e.Args[0]
		bufInstrs, err := g.lower(b, arg)
		if err != nil {
			return nil, err
		}
		bufIdx := b.declareLocal(arg.Type)
		pos := b.declareLocalRaw(types.I32)
		initPos := []instruction.Instruction{instruction.I32Const{Value: 0}, instruction.SetLocal{Index: pos}}
		dc := decodeCursor{buf: bufIdx[0], pos: pos}

		okLocal, valIdx, decodeInstrs, err := g.decodeWalk(b, optTy.Some, dc)
		if err != nil {
			return nil, err
		}
		// a buffer with unconsumed trailing bytes is not a valid encoding of
		// the target type, even if a well-formed value decodes from its prefix.
		consumedOK := b.declareLocalRaw(types.I32)
		consumedCheck := []instruction.Instruction{
			instruction.GetLocal{Index: pos}, instruction.GetLocal{Index: bufIdx[1]}, instruction.I32Eq{},
			instruction.SetLocal{Index: consumedOK},
		}
		finalOK := b.declareLocalRaw(types.I32)
		finalCheck := and2(finalOK, okLocal, consumedOK)

		resultIdx := b.declareLocal(optTy.Some)
		assemble := instruction.If{
			Then: seq(getLocals(valIdx), setLocals(resultIdx)),
			Else: seq(zeroValue(b, optTy.Some), setLocals(resultIdx)),
		}
		return seq(bufInstrs, setLocals(bufIdx), initPos, decodeInstrs, consumedCheck, finalCheck,
			[]instruction.Instruction{instruction.GetLocal{Index: finalOK}, assemble},
			[]instruction.Instruction{instruction.GetLocal{Index: finalOK}},
			getLocals(resultIdx),
		), nil
	})
}
