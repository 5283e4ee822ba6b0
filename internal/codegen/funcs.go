package codegen

import (
	"bytes"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/encoding"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/module"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// topLevelName is the synthetic exported function that runs every
// define-form's initializer (grouped by kind, see generateTopLevel) before
// any public function can meaningfully be called.
const topLevelName = ".top-level"

func paramShape(params []ast.Param) []types.ValueType {
	var shape []types.ValueType
	for _, p := range params {
		shape = append(shape, Shape(p.Type)...)
	}
	return shape
}

// stageDeclareFunctions registers a type-section signature and a
// function-index-space slot for every source function plus the synthetic
// .top-level function, before any body is lowered. This lets a function's
// body call another function defined later in source order, and lets
// contract-call?'s static form resolve a same-module target by name.
func (g *Generator) stageDeclareFunctions() error {
	declare := func(name string, params, results []types.ValueType) {
		typeIdx := g.typeOf(params, results)
		idx := uint32(len(g.mod.Import.Imports) + len(g.mod.Function.TypeIndices))
		g.mod.Function.TypeIndices = append(g.mod.Function.TypeIndices, typeIdx)
		g.funcIndex[name] = idx
	}
	declare(topLevelName, nil, nil)
	for _, fn := range g.contract.Functions {
		declare(fn.Name, paramShape(fn.Params), Shape(fn.ReturnType))
	}
	return nil
}

// stageFunctionBodies lowers every function body (and .top-level) and
// appends its encoded bytes as a code-section entry, in the same order
// their indices were assigned.
func (g *Generator) stageFunctionBodies() error {
	topLevel, err := g.generateTopLevel()
	if err != nil {
		return err
	}
	if err := g.appendCodeEntry(topLevel); err != nil {
		return err
	}
	for _, fn := range g.contract.Functions {
		entry, err := g.generateFunction(fn)
		if err != nil {
			return wrap(err, "function %q", fn.Name)
		}
		if err := g.appendCodeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) appendCodeEntry(entry *module.CodeEntry) error {
	var buf bytes.Buffer
	if err := encoding.WriteCodeEntry(&buf, entry); err != nil {
		return err
	}
	g.mod.Code.Segments = append(g.mod.Code.Segments, module.CodeSegment{Code: buf.Bytes()})
	return nil
}

// generateFunction lowers one define-private/define-public/
// define-read-only form: prelude, body (dropping all but the last
// expression's value per begin semantics), postlude, then the final value
// is left on the stack as the Wasm function's result.
func (g *Generator) generateFunction(fn ast.Function) (*module.CodeEntry, error) {
	names := make([]string, len(fn.Params))
	paramTypes := make([]ast.Type, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Name
		paramTypes[i] = p.Type
	}
	b := newBuilder(g, names, paramTypes)

	body, err := g.lowerBody(b, fn.Body)
	if err != nil {
		return nil, err
	}

	instrs := seq(b.prelude(), body, b.postlude())
	return &module.CodeEntry{Func: module.Func{Locals: b.localDecls(), Instrs: instrs}}, nil
}

// generateTopLevel builds the .top-level function: it records every
// function's kind and name with the host (define_function), then runs the
// constant, data-var, map, fungible-token and non-fungible-token
// initializers, one kind after another in that order, each kind in the
// order of its Contract slice.
func (g *Generator) generateTopLevel() (*module.CodeEntry, error) {
	b := newBuilder(g, nil, nil)
	var body []instruction.Instruction
	body = append(body, b.prelude()...)

	for _, fn := range g.contract.Functions {
		instrs, err := g.emitDefineFunction(b, fn)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}
	for _, c := range g.contract.Constants {
		instrs, err := g.emitDefineConstant(b, c)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}
	for _, v := range g.contract.DataVars {
		instrs, err := g.emitDefineDataVar(b, v)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}
	for _, m := range g.contract.Maps {
		instrs, err := g.emitDefineMap(b, m)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}
	for _, ft := range g.contract.FungibleTokens {
		instrs, err := g.emitDefineFungibleToken(b, ft)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}
	for _, nft := range g.contract.NonFungibleTokens {
		instrs, err := g.emitDefineNonFungibleToken(b, nft)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}

	body = append(body, b.postlude()...)
	return &module.CodeEntry{Func: module.Func{Locals: b.localDecls(), Instrs: body}}, nil
}
