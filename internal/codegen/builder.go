package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/module"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// builder accumulates the locals and name bindings for a single function
// body. One builder is used per define-private/define-public/
// define-read-only form (and one for the synthetic .top-level function);
// it never outlives the function it is building.
type builder struct {
	g *Generator

	locals    []types.ValueType // additional (non-parameter) local declarations, in allocation order
	nextLocal uint32
	scopes    []map[string][]uint32

	framePointer uint32 // local holding the stack pointer saved by the prelude
}

// newBuilder creates a builder whose first scope already binds paramShape's
// slots under paramNames — parameters occupy locals [0, paramSlotCount)
// by the Wasm calling convention, so no declaration is needed for them.
func newBuilder(g *Generator, paramNames []string, paramTypes []ast.Type) *builder {
	b := &builder{g: g}
	b.pushScope()
	var idx uint32
	for i, name := range paramNames {
		n := uint32(StackSize(paramTypes[i]))
		indices := make([]uint32, n)
		for j := range indices {
			indices[j] = idx
			idx++
		}
		b.bind(name, indices)
	}
	b.nextLocal = idx
	b.framePointer = b.declareLocalRaw(types.I32)
	return b
}

func (b *builder) pushScope() {
	b.scopes = append(b.scopes, map[string][]uint32{})
}

func (b *builder) popScope() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

func (b *builder) bind(name string, indices []uint32) {
	b.scopes[len(b.scopes)-1][name] = indices
}

func (b *builder) lookup(name string) ([]uint32, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if idx, ok := b.scopes[i][name]; ok {
			return idx, true
		}
	}
	return nil, false
}

// declareLocalRaw allocates a single additional local of the given Wasm
// type and returns its index.
func (b *builder) declareLocalRaw(vt types.ValueType) uint32 {
	idx := b.nextLocal
	b.locals = append(b.locals, vt)
	b.nextLocal++
	return idx
}

// declareLocal allocates StackSize(t) contiguous locals shaped like t and
// returns their indices, in the same order Shape(t) lists them.
func (b *builder) declareLocal(t ast.Type) []uint32 {
	shape := Shape(t)
	indices := make([]uint32, len(shape))
	for i, vt := range shape {
		indices[i] = b.declareLocalRaw(vt)
	}
	return indices
}

// localDecls run-length-encodes b.locals into the grouped form the binary
// format requires for a function's local declarations.
func (b *builder) localDecls() []module.LocalDeclaration {
	var decls []module.LocalDeclaration
	for _, vt := range b.locals {
		if n := len(decls); n > 0 && decls[n-1].Type == vt {
			decls[n-1].Count++
			continue
		}
		decls = append(decls, module.LocalDeclaration{Count: 1, Type: vt})
	}
	return decls
}
