package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// marshalWalker lowers a value already sitting in a group of locals
// (indices, in Shape(t) order) into its fixed-size linear-memory layout
// (abi.go's MemSize), or the inverse: reads a fixed-size memory layout back
// into a freshly allocated group of locals. Both directions walk the same
// type recursion so the two stay in lockstep with each other and with
// MemSize/Shape.
type marshalWalker struct {
	g       *Generator
	b       *builder
	base    uint32 // local holding the base memory offset
	byteOff int32
	instrs  []instruction.Instruction
	err     error

	// persisted selects the host-storage encoding for principal-bearing
	// values (a 4-byte true-length header ahead of the payload) instead of
	// the plain in-memory layout used for list elements and host-call
	// argument scratch. Set only by storePersistedValue/loadPersistedValue.
	persisted bool
}

func (w *marshalWalker) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *marshalWalker) emit(instrs ...instruction.Instruction) {
	w.instrs = append(w.instrs, instrs...)
}

func (w *marshalWalker) baseAddr(off int32) {
	w.emit(instruction.GetLocal{Index: w.base}, instruction.I32Const{Value: off}, instruction.I32Add{})
}

func (w *marshalWalker) storeI32At(off int32, valueLocal uint32) {
	call, err := w.g.callByName("store-i32-be")
	if err != nil {
		w.fail(err)
		return
	}
	w.baseAddr(off)
	w.emit(instruction.GetLocal{Index: valueLocal})
	w.emit(call...)
}

func (w *marshalWalker) storeI64At(off int32, valueLocal uint32) {
	call, err := w.g.callByName("store-i64-be")
	if err != nil {
		w.fail(err)
		return
	}
	w.baseAddr(off)
	w.emit(instruction.GetLocal{Index: valueLocal})
	w.emit(call...)
}

func (w *marshalWalker) loadI32At(off int32) uint32 {
	call, err := w.g.callByName("load-i32-be")
	if err != nil {
		w.fail(err)
		return 0
	}
	w.baseAddr(off)
	w.emit(call...)
	dst := w.b.declareLocalRaw(types.I32)
	w.emit(instruction.SetLocal{Index: dst})
	return dst
}

func (w *marshalWalker) loadI64At(off int32) uint32 {
	call, err := w.g.callByName("load-i64-be")
	if err != nil {
		w.fail(err)
		return 0
	}
	w.baseAddr(off)
	w.emit(call...)
	dst := w.b.declareLocalRaw(types.I64)
	w.emit(instruction.SetLocal{Index: dst})
	return dst
}

// memcpyInto copies sizeLocal bytes from srcOffsetLocal into the walker's
// storage region at the current byte offset, then advances by capacity
// (the fixed slot width reserved for this value, always >= the actual
// copied length).
func (w *marshalWalker) memcpyInto(srcOffsetLocal, sizeLocal uint32, capacity int32) {
	call, err := w.g.callByName("memcpy")
	if err != nil {
		w.fail(err)
		return
	}
	w.baseAddr(w.byteOff)
	w.emit(instruction.GetLocal{Index: srcOffsetLocal})
	w.emit(instruction.GetLocal{Index: sizeLocal})
	w.emit(call...)
	w.byteOff += capacity
}

// memcpyFrom is the inverse of memcpyInto: it allocates capacity bytes of
// call-stack scratch, copies from the walker's storage region into it, and
// returns a fresh (offset, length) local pair.
func (w *marshalWalker) memcpyFrom(length int32, capacity int32) (uint32, uint32) {
	dstLocal, reserve := w.b.reserve(capacity)
	w.emit(reserve...)
	call, err := w.g.callByName("memcpy")
	if err != nil {
		w.fail(err)
		return dstLocal, 0
	}
	w.emit(instruction.GetLocal{Index: dstLocal})
	w.baseAddr(w.byteOff)
	w.emit(instruction.I32Const{Value: length})
	w.emit(call...)
	lenLocal := w.b.declareLocalRaw(types.I32)
	w.emit(instruction.I32Const{Value: length}, instruction.SetLocal{Index: lenLocal})
	w.byteOff += capacity
	return dstLocal, lenLocal
}

// memcpyFromDynamic is memcpyFrom for a runtime-known length rather than a
// compile-time constant: it still reserves capacity bytes of destination
// scratch (the field's worst case, so the result stays safely addressable
// regardless of the true length), but copies only lengthLocal bytes and
// reports that local back as the result length instead of capacity.
func (w *marshalWalker) memcpyFromDynamic(lengthLocal uint32, capacity int32) (uint32, uint32) {
	dstLocal, reserve := w.b.reserve(capacity)
	w.emit(reserve...)
	call, err := w.g.callByName("memcpy")
	if err != nil {
		w.fail(err)
		return dstLocal, 0
	}
	w.emit(instruction.GetLocal{Index: dstLocal})
	w.baseAddr(w.byteOff)
	w.emit(instruction.GetLocal{Index: lengthLocal})
	w.emit(call...)
	w.byteOff += capacity
	return dstLocal, lengthLocal
}

// storeValue encodes the value held in indices (Shape(t) order, already
// bound to locals) into memory at the builder-local baseOffset, returning
// the instructions that perform the writes.
func (g *Generator) storeValue(b *builder, t ast.Type, indices []uint32, baseOffset uint32) ([]instruction.Instruction, error) {
	w := &marshalWalker{g: g, b: b, base: baseOffset}
	cursor := 0
	w.storeWalk(t, indices, &cursor)
	if w.err != nil {
		return nil, w.err
	}
	return w.instrs, nil
}

// loadValue reads a value of type t back from memory at the builder-local
// baseOffset, returning the instructions that perform the reads and the
// fresh locals (in Shape(t) order) the value now lives in.
func (g *Generator) loadValue(b *builder, t ast.Type, baseOffset uint32) ([]instruction.Instruction, []uint32, error) {
	w := &marshalWalker{g: g, b: b, base: baseOffset}
	indices := w.loadWalk(t)
	if w.err != nil {
		return nil, nil, w.err
	}
	return w.instrs, indices, nil
}

// storePersistedValue is storeValue for a value crossing the host storage
// boundary (a data-var or map value/key): the region at baseOffset must be
// sized with PersistedSize, not MemSize, since a principal component is
// written with a true-length header so loadPersistedValue can recover it.
func (g *Generator) storePersistedValue(b *builder, t ast.Type, indices []uint32, baseOffset uint32) ([]instruction.Instruction, error) {
	w := &marshalWalker{g: g, b: b, base: baseOffset, persisted: true}
	cursor := 0
	w.storeWalk(t, indices, &cursor)
	if w.err != nil {
		return nil, w.err
	}
	return w.instrs, nil
}

// loadPersistedValue is loadValue for a value read back from the host
// storage boundary; see storePersistedValue.
func (g *Generator) loadPersistedValue(b *builder, t ast.Type, baseOffset uint32) ([]instruction.Instruction, []uint32, error) {
	w := &marshalWalker{g: g, b: b, base: baseOffset, persisted: true}
	indices := w.loadWalk(t)
	if w.err != nil {
		return nil, nil, w.err
	}
	return w.instrs, indices, nil
}

func (w *marshalWalker) storeWalk(t ast.Type, indices []uint32, cursor *int) {
	next := func() uint32 {
		idx := indices[*cursor]
		*cursor++
		return idx
	}
	switch ty := t.(type) {
	case ast.NoType:
		w.storeI32At(w.byteOff, next())
		w.byteOff += 4
	case ast.IntType, ast.UintType:
		lo := next()
		hi := next()
		w.storeI64At(w.byteOff, lo)
		w.storeI64At(w.byteOff+8, hi)
		w.byteOff += 16
	case ast.BoolType:
		w.storeI32At(w.byteOff, next())
		w.byteOff += 4
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		off, size := next(), next()
		if w.persisted {
			w.storeI32At(w.byteOff, size)
			w.byteOff += 4
		}
		w.memcpyInto(off, size, int32(principalMemSize))
	case ast.BufferType:
		off, size := next(), next()
		w.memcpyInto(off, size, int32(ty.Max))
	case ast.StringASCIIType:
		off, size := next(), next()
		w.memcpyInto(off, size, int32(ty.Max))
	case ast.StringUTF8Type:
		off, scalars := next(), next()
		byteLen := w.b.declareLocalRaw(types.I32)
		w.emit(instruction.GetLocal{Index: scalars}, instruction.I32Const{Value: 4}, instruction.I32Mul{}, instruction.SetLocal{Index: byteLen})
		w.memcpyInto(off, byteLen, int32(ty.Max*4))
	case ast.ListType:
		off, count := next(), next()
		stride := ElementStride(ty.Elem)
		byteLen := w.b.declareLocalRaw(types.I32)
		w.emit(instruction.GetLocal{Index: count}, instruction.I32Const{Value: int32(stride)}, instruction.I32Mul{}, instruction.SetLocal{Index: byteLen})
		w.memcpyInto(off, byteLen, int32(ty.Max*stride))
	case ast.TupleType:
		for _, f := range ty.Fields {
			w.storeWalk(f.Type, indices, cursor)
		}
	case ast.OptionalType:
		w.storeI32At(w.byteOff, next())
		w.byteOff += 4
		w.storeWalk(ty.Some, indices, cursor)
	case ast.ResponseType:
		w.storeI32At(w.byteOff, next())
		w.byteOff += 4
		w.storeWalk(ty.Ok, indices, cursor)
		w.storeWalk(ty.Err, indices, cursor)
	default:
		w.fail(internalError(ast.Location{}, "storeValue: unhandled type %s", t))
	}
}

func (w *marshalWalker) loadWalk(t ast.Type) []uint32 {
	switch ty := t.(type) {
	case ast.NoType:
		idx := w.loadI32At(w.byteOff)
		w.byteOff += 4
		return []uint32{idx}
	case ast.IntType, ast.UintType:
		lo := w.loadI64At(w.byteOff)
		hi := w.loadI64At(w.byteOff + 8)
		w.byteOff += 16
		return []uint32{lo, hi}
	case ast.BoolType:
		idx := w.loadI32At(w.byteOff)
		w.byteOff += 4
		return []uint32{idx}
	case ast.PrincipalType, ast.CallableType, ast.TraitReferenceType:
		if w.persisted {
			ln := w.loadI32At(w.byteOff)
			w.byteOff += 4
			off, _ := w.memcpyFromDynamic(ln, int32(principalMemSize))
			return []uint32{off, ln}
		}
		off, ln := w.memcpyFrom(int32(principalMemSize), int32(principalMemSize))
		return []uint32{off, ln}
	case ast.BufferType:
		off, ln := w.memcpyFrom(int32(ty.Max), int32(ty.Max))
		return []uint32{off, ln}
	case ast.StringASCIIType:
		off, ln := w.memcpyFrom(int32(ty.Max), int32(ty.Max))
		return []uint32{off, ln}
	case ast.StringUTF8Type:
		off, lenBytes := w.memcpyFrom(int32(ty.Max*4), int32(ty.Max*4))
		scalars := w.b.declareLocalRaw(types.I32)
		w.emit(instruction.GetLocal{Index: lenBytes}, instruction.I32Const{Value: 4}, instruction.I32DivS{}, instruction.SetLocal{Index: scalars})
		return []uint32{off, scalars}
	case ast.ListType:
		stride := ElementStride(ty.Elem)
		off, lenBytes := w.memcpyFrom(int32(ty.Max*stride), int32(ty.Max*stride))
		count := w.b.declareLocalRaw(types.I32)
		w.emit(instruction.GetLocal{Index: lenBytes}, instruction.I32Const{Value: int32(stride)}, instruction.I32DivS{}, instruction.SetLocal{Index: count})
		return []uint32{off, count}
	case ast.TupleType:
		var indices []uint32
		for _, f := range ty.Fields {
			indices = append(indices, w.loadWalk(f.Type)...)
		}
		return indices
	case ast.OptionalType:
		ind := w.loadI32At(w.byteOff)
		w.byteOff += 4
		indices := append([]uint32{ind}, w.loadWalk(ty.Some)...)
		return indices
	case ast.ResponseType:
		ind := w.loadI32At(w.byteOff)
		w.byteOff += 4
		indices := []uint32{ind}
		indices = append(indices, w.loadWalk(ty.Ok)...)
		indices = append(indices, w.loadWalk(ty.Err)...)
		return indices
	default:
		w.fail(internalError(ast.Location{}, "loadValue: unhandled type %s", t))
		return nil
	}
}
