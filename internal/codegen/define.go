package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

func functionKindTag(k ast.FunctionKind) int32 {
	switch k {
	case ast.FunctionPrivate:
		return 0
	case ast.FunctionPublic:
		return 1
	case ast.FunctionReadOnly:
		return 2
	default:
		return 0
	}
}

// emitDefineFunction records a function's kind and name with the host,
// once per function, before .top-level runs any initializer. The function
// body itself was already registered in the module's function index space
// by stageDeclareFunctions/stageFunctionBodies; this call only informs the
// host of the mapping it needs for dispatch and introspection.
func (g *Generator) emitDefineFunction(b *builder, fn ast.Function) ([]instruction.Instruction, error) {
	call, err := g.callByName("define_function")
	if err != nil {
		return nil, err
	}
	return seq(i32Const(functionKindTag(fn.Kind)), g.literalName(fn.Name), call), nil
}

// emitDefineConstant lowers a define-constant's initializer for effect
// (e.g. to surface a malformed literal as a compile error) and discards the
// result: source-level references to the constant's name arrive in the
// analyzed AST already substituted with its value, so there is nothing
// further for the generator to bind.
func (g *Generator) emitDefineConstant(b *builder, c ast.Constant) ([]instruction.Instruction, error) {
	instrs, err := g.lower(b, c.Init)
	if err != nil {
		return nil, err
	}
	return seq(instrs, dropType(c.Init.Type)), nil
}

// emitDefineDataVar evaluates a data var's initializer, writes its in-memory
// encoding into a scratch reservation, and hands the host a pointer to it
// along with the variable's name.
func (g *Generator) emitDefineDataVar(b *builder, v ast.DataVar) ([]instruction.Instruction, error) {
	valInstrs, err := g.lower(b, v.Init)
	if err != nil {
		return nil, err
	}
	indices := b.declareLocal(v.Type)
	bindInstrs := setLocals(indices)

	offsetLocal, reserveInstrs := b.reserve(int32(PersistedSize(v.Type)))
	storeInstrs, err := g.storePersistedValue(b, v.Type, indices, offsetLocal)
	if err != nil {
		return nil, err
	}

	call, err := g.callByName("define_variable")
	if err != nil {
		return nil, err
	}
	callArgs := seq(
		g.literalName(v.Name),
		[]instruction.Instruction{instruction.GetLocal{Index: offsetLocal}},
		i32Const(int32(PersistedSize(v.Type))),
	)
	return seq(valInstrs, bindInstrs, reserveInstrs, storeInstrs, callArgs, call), nil
}

// emitDefineMap informs the host of a new map's existence; keys and values
// are marshalled per-operation by the storage words (words_storage.go), not here.
func (g *Generator) emitDefineMap(b *builder, m ast.Map) ([]instruction.Instruction, error) {
	call, err := g.callByName("define_map")
	if err != nil {
		return nil, err
	}
	return seq(g.literalName(m.Name), call), nil
}

// emitDefineFungibleToken informs the host of a new fungible token and its
// optional total-supply cap, expressed as (indicator, low, high).
func (g *Generator) emitDefineFungibleToken(b *builder, ft ast.FungibleToken) ([]instruction.Instruction, error) {
	call, err := g.callByName("define_ft")
	if err != nil {
		return nil, err
	}
	if ft.TotalSupply == nil {
		return seq(g.literalName(ft.Name), i32Const(0), i64Const(0), i64Const(0), call), nil
	}
	supply, err := g.lower(b, *ft.TotalSupply)
	if err != nil {
		return nil, err
	}
	return seq(g.literalName(ft.Name), i32Const(1), supply, call), nil
}

// emitDefineNonFungibleToken informs the host of a new non-fungible token.
func (g *Generator) emitDefineNonFungibleToken(b *builder, nft ast.NonFungibleToken) ([]instruction.Instruction, error) {
	call, err := g.callByName("define_nft")
	if err != nil {
		return nil, err
	}
	return seq(g.literalName(nft.Name), call), nil
}
