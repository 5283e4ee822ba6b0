package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// marshalArg lowers expr, binds it to fresh locals, reserves call-stack
// scratch sized to its in-memory layout, writes it there, and returns the
// (offset, size) instructions the host storage calls expect.
func (g *Generator) marshalArg(b *builder, expr ast.Expr) ([]instruction.Instruction, error) {
	valInstrs, err := g.lower(b, expr)
	if err != nil {
		return nil, err
	}
	indices := b.declareLocal(expr.Type)
	offsetLocal, reserveInstrs := b.reserve(int32(MemSize(expr.Type)))
	storeInstrs, err := g.storeValue(b, expr.Type, indices, offsetLocal)
	if err != nil {
		return nil, err
	}
	return seq(valInstrs, setLocals(indices), reserveInstrs, storeInstrs,
		[]instruction.Instruction{instruction.GetLocal{Index: offsetLocal}},
		i32Const(int32(MemSize(expr.Type))),
	), nil
}

// reserveFor reserves call-stack scratch sized to t's in-memory layout and
// returns the local holding its address plus the instructions to set it up.
func (g *Generator) reserveFor(b *builder, t ast.Type) (uint32, []instruction.Instruction) {
	return b.reserve(int32(MemSize(t)))
}

// marshalPersistedArg is marshalArg for a value crossing into host-managed
// persistent storage — a var-set value, or a map key/value argument to
// map_get/map_set/map_insert/map_delete. These values are later read back
// with loadPersistedValue (get_variable, map_get), so they must be written
// with storePersistedValue/PersistedSize rather than marshalArg's plain
// in-memory layout, or a principal's true byte length is lost on read-back.
func (g *Generator) marshalPersistedArg(b *builder, expr ast.Expr) ([]instruction.Instruction, error) {
	valInstrs, err := g.lower(b, expr)
	if err != nil {
		return nil, err
	}
	indices := b.declareLocal(expr.Type)
	offsetLocal, reserveInstrs := b.reserve(int32(PersistedSize(expr.Type)))
	storeInstrs, err := g.storePersistedValue(b, expr.Type, indices, offsetLocal)
	if err != nil {
		return nil, err
	}
	return seq(valInstrs, setLocals(indices), reserveInstrs, storeInstrs,
		[]instruction.Instruction{instruction.GetLocal{Index: offsetLocal}},
		i32Const(int32(PersistedSize(expr.Type))),
	), nil
}

// reservePersistedFor is reserveFor sized for a value storePersistedValue/
// loadPersistedValue will read or write (see marshalPersistedArg).
func (g *Generator) reservePersistedFor(b *builder, t ast.Type) (uint32, []instruction.Instruction) {
	return b.reserve(int32(PersistedSize(t)))
}

func init() {
	registerWord("var-get", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "var-get: missing variable name")
		}
		v, ok := g.dataVar(name)
		if !ok {
			return nil, internalError(e.Location, "var-get: undeclared data var %q", name)
		}
		// get_variable(nameOff, nameLen, resultOff) writes the value in
		// place; the host already knows its size from define_variable, so
		// no size argument and no direct result cross the call boundary.
		resultOff, reserveInstrs := g.reservePersistedFor(b, v.Type)
		charge, err := g.chargeWord(e.Op, int64(MemSize(v.Type)))
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("get_variable")
		if err != nil {
			return nil, err
		}
		loadInstrs, indices, err := g.loadPersistedValue(b, v.Type, resultOff)
		if err != nil {
			return nil, err
		}
		return seq(charge, reserveInstrs, g.literalName(name),
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}},
			call, loadInstrs, getLocals(indices)), nil
	})

	registerWord("var-set", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "var-set: missing variable name")
		}
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		if _, ok := g.dataVar(name); !ok {
			return nil, internalError(e.Location, "var-set: undeclared data var %q", name)
		}
		charge, err := g.chargeWord(e.Op, int64(MemSize(e.Args[0].Type)))
		if err != nil {
			return nil, err
		}
		arg, err := g.marshalPersistedArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("set_variable")
		if err != nil {
			return nil, err
		}
		return seq(charge, g.literalName(name), arg, call, i32Const(1)), nil
	})

	registerWord("map-get?", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "map-get?: missing map name")
		}
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		m, ok := g.mapDef(name)
		if !ok {
			return nil, internalError(e.Location, "map-get?: undeclared map %q", name)
		}
		keyArg, err := g.marshalPersistedArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		// map_get(nameOff, nameLen, keyOff, keyLen, resultOff) -> i32 found.
		// Only the Some-payload is written to the result region; the
		// optional's indicator comes back as a direct stack result, so the
		// two halves are assembled here rather than via a generic helper.
		resultOff, reserveInstrs := g.reservePersistedFor(b, m.ValType)
		charge, err := g.chargeWord(e.Op, int64(MemSize(m.ValType)))
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("map_get")
		if err != nil {
			return nil, err
		}
		indicatorLocal := b.declareLocalRaw(types.I32)
		loadInstrs, indices, err := g.loadPersistedValue(b, m.ValType, resultOff)
		if err != nil {
			return nil, err
		}
		return seq(
			charge, reserveInstrs,
			g.literalName(name), keyArg,
			[]instruction.Instruction{instruction.GetLocal{Index: resultOff}},
			call,
			[]instruction.Instruction{instruction.SetLocal{Index: indicatorLocal}},
			loadInstrs,
			[]instruction.Instruction{instruction.GetLocal{Index: indicatorLocal}},
			getLocals(indices),
		), nil
	})

	registerWord("map-set", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		// map_set(nameOff, nameLen, keyOff, keyLen, valOff, valLen) has no
		// host result — it always succeeds, so the word's bool result is a
		// compile-time constant true.
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "map-set: missing map name")
		}
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		m, ok := g.mapDef(name)
		if !ok {
			return nil, internalError(e.Location, "map-set: undeclared map %q", name)
		}
		charge, err := g.chargeWord(e.Op, int64(MemSize(m.ValType)))
		if err != nil {
			return nil, err
		}
		keyArg, err := g.marshalPersistedArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		valArg, err := g.marshalPersistedArg(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("map_set")
		if err != nil {
			return nil, err
		}
		return seq(charge, g.literalName(name), keyArg, valArg, call, i32Const(1)), nil
	})
	registerWord("map-insert", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		// map_insert has the same argument shape as map_set but returns an
		// i32 (false when the key already existed) directly on the stack.
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "map-insert: missing map name")
		}
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		m, ok := g.mapDef(name)
		if !ok {
			return nil, internalError(e.Location, "map-insert: undeclared map %q", name)
		}
		charge, err := g.chargeWord(e.Op, int64(MemSize(m.ValType)))
		if err != nil {
			return nil, err
		}
		keyArg, err := g.marshalPersistedArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		valArg, err := g.marshalPersistedArg(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("map_insert")
		if err != nil {
			return nil, err
		}
		return seq(charge, g.literalName(name), keyArg, valArg, call), nil
	})
	registerWord("map-delete", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		name, ok := e.Extra.(string)
		if !ok {
			return nil, internalError(e.Location, "map-delete: missing map name")
		}
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		m, ok := g.mapDef(name)
		if !ok {
			return nil, internalError(e.Location, "map-delete: undeclared map %q", name)
		}
		charge, err := g.chargeWord(e.Op, int64(MemSize(m.ValType)))
		if err != nil {
			return nil, err
		}
		keyArg, err := g.marshalPersistedArg(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		call, err := g.callByName("map_delete")
		if err != nil {
			return nil, err
		}
		return seq(charge, g.literalName(name), keyArg, call), nil
	})
}
