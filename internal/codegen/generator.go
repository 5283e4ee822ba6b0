// Package codegen lowers an analyzed contract (internal/ast) into a
// WebAssembly module (internal/wasm/module). It is the generator proper:
// word dispatch, the value ABI, the linear-memory manager, the runtime cost
// meter, and host ABI marshalling all live here.
package codegen

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/codegen/costtable"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/module"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// Generator holds all state accumulated while lowering one contract. Its
// zero value is not usable; construct one with New.
type Generator struct {
	contract *ast.Contract
	mod      *module.Module
	log      *logrus.Entry

	stages []func() error

	// name -> index tables, populated before any function body is lowered
	// so that forward references (a function calling one defined later in
	// source order) and contract-call? resolve without a second pass.
	funcIndex map[string]uint32
	typeIndex map[string]uint32 // signature string -> type index, for dedup

	// linear memory: a bump-allocated literal region, deduplicated by
	// content, backed by a single data segment starting at offset 0.
	literalBytes []byte
	literalDedup map[string]int32

	// globals
	stackPointer   uint32 // mutable i32, end of literal region / top of call stack
	costRuntime    uint32
	costReadCount  uint32
	costReadLen    uint32
	costWriteCount uint32
	costWriteLen   uint32
	errArgOffset   uint32 // i32, parameterizes the current runtime-error trap
	errArgLen      uint32

	costVersion string

	errs []error
}

// Option configures a Generator at construction time.
type Option func(*Generator)

// WithCostVersion selects which costtable.Table a contract is charged
// against. Unset, New defaults to costtable.DefaultVersion.
func WithCostVersion(version string) Option {
	return func(g *Generator) {
		g.costVersion = version
	}
}

// New constructs a Generator for contract. Call Compile to produce the
// module.
func New(contract *ast.Contract, opts ...Option) *Generator {
	g := &Generator{
		contract:     contract,
		mod:          module.New(),
		log:          logrus.WithField("component", "codegen"),
		funcIndex:    map[string]uint32{},
		typeIndex:    map[string]uint32{},
		literalDedup: map[string]int32{},
		costVersion:  costtable.DefaultVersion,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.stages = []func() error{
		g.stageImports,
		g.stageGlobals,
		g.stageDeclareFunctions,
		g.stageFunctionBodies,
		g.stageLiterals,
		g.stageExports,
		g.stageDataSection,
	}
	return g
}

// Compile runs every stage in order and returns the finished module. It
// stops at the first stage to report an error; partial output is never
// returned alongside an error.
func (g *Generator) Compile() (*module.Module, error) {
	for _, stage := range g.stages {
		if err := stage(); err != nil {
			return nil, err
		}
	}
	if len(g.errs) > 0 {
		return nil, g.errs[0]
	}
	return g.mod, nil
}

// typeOf registers (and deduplicates) a Wasm function type, returning its
// index into the module's type section.
func (g *Generator) typeOf(params, results []types.ValueType) uint32 {
	key := signatureKey(params, results)
	if idx, ok := g.typeIndex[key]; ok {
		return idx
	}
	idx := uint32(len(g.mod.Type.Functions))
	g.mod.Type.Functions = append(g.mod.Type.Functions, module.FunctionType{Params: params, Results: results})
	g.typeIndex[key] = idx
	return idx
}

func signatureKey(params, results []types.ValueType) string {
	b := make([]byte, 0, len(params)+len(results)+2)
	b = append(b, byte(len(params)))
	for _, p := range params {
		b = append(b, byte(p))
	}
	b = append(b, byte(len(results)))
	for _, r := range results {
		b = append(b, byte(r))
	}
	return string(b)
}

// function looks up the function index of name, which must already have
// been declared by stageImports or stageDeclareFunctions.
func (g *Generator) function(name string) (uint32, error) {
	idx, ok := g.funcIndex[name]
	if !ok {
		return 0, internalError(ast.Location{}, "undeclared function %q", name)
	}
	return idx, nil
}

// stageGlobals declares the stack-pointer global and the five cost-meter
// counters (see cost.go), in that fixed order so their indices are stable
// and easy to reason about when reading a disassembly.
func (g *Generator) stageGlobals() error {
	add := func(mutable bool, init int64) uint32 {
		idx := uint32(len(g.mod.Global.Globals))
		g.mod.Global.Globals = append(g.mod.Global.Globals, module.Global{
			Type:    types.I32,
			Mutable: mutable,
			Init:    module.Expr{Instrs: []instruction.Instruction{instruction.I32Const{Value: int32(init)}}},
		})
		return idx
	}
	addI64 := func() uint32 {
		idx := uint32(len(g.mod.Global.Globals))
		g.mod.Global.Globals = append(g.mod.Global.Globals, module.Global{
			Type:    types.I64,
			Mutable: true,
			Init:    module.Expr{Instrs: []instruction.Instruction{instruction.I64Const{Value: 0}}},
		})
		return idx
	}
	g.stackPointer = add(true, 0) // patched to the literal region's end in stageLiterals
	g.costRuntime = addI64()
	g.costReadCount = addI64()
	g.costReadLen = addI64()
	g.costWriteCount = addI64()
	g.costWriteLen = addI64()
	g.errArgOffset = add(true, 0)
	g.errArgLen = add(true, 0)

	g.mod.Export.Exports = append(g.mod.Export.Exports, module.Export{
		Name:       "stack-pointer",
		Descriptor: module.ExportDescriptor{Type: module.GlobalExportType, Index: g.stackPointer},
	})
	return nil
}

// stageLiterals finalizes the literal region: every literal encountered
// while lowering function bodies has already been appended to
// g.literalBytes (see allocateLiteral), so this stage only needs to patch
// the stack pointer's initial value to point past it.
func (g *Generator) stageLiterals() error {
	g.mod.Global.Globals[g.stackPointer].Init = module.Expr{
		Instrs: []instruction.Instruction{instruction.I32Const{Value: int32(len(g.literalBytes))}},
	}
	return nil
}

// stageDataSection emits the single data segment backing the literal
// region, once every literal has been allocated by earlier stages.
func (g *Generator) stageDataSection() error {
	if len(g.literalBytes) == 0 {
		return nil
	}
	g.mod.Data.Segments = append(g.mod.Data.Segments, module.DataSegment{
		Index:  0,
		Offset: module.Expr{Instrs: []instruction.Instruction{instruction.I32Const{Value: 0}}},
		Init:   g.literalBytes,
	})
	return nil
}

// allocateLiteral appends data to the literal region, deduplicating
// identical byte sequences, and returns the i32 offset at which it lives.
func (g *Generator) allocateLiteral(data []byte) int32 {
	key := string(data)
	if off, ok := g.literalDedup[key]; ok {
		return off
	}
	off := int32(len(g.literalBytes))
	g.literalBytes = append(g.literalBytes, data...)
	g.literalDedup[key] = off
	return off
}

// stageExports exports every public and read-only function under its
// source name, plus the linear memory as "memory", matching the host ABI's
// expectations for which symbols it may call.
func (g *Generator) stageExports() error {
	g.mod.Export.Exports = append(g.mod.Export.Exports, module.Export{
		Name:       "memory",
		Descriptor: module.ExportDescriptor{Type: module.MemoryExportType, Index: 0},
	})
	topLevelIdx, err := g.function(topLevelName)
	if err != nil {
		return err
	}
	g.mod.Export.Exports = append(g.mod.Export.Exports, module.Export{
		Name:       topLevelName,
		Descriptor: module.ExportDescriptor{Type: module.FunctionExportType, Index: topLevelIdx},
	})
	names := make([]string, 0, len(g.contract.Functions))
	for _, fn := range g.contract.Functions {
		if fn.Exported() {
			names = append(names, fn.Name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		idx, err := g.function(name)
		if err != nil {
			return err
		}
		g.mod.Export.Exports = append(g.mod.Export.Exports, module.Export{
			Name:       name,
			Descriptor: module.ExportDescriptor{Type: module.FunctionExportType, Index: idx},
		})
	}
	return nil
}

func (g *Generator) errorf(loc ast.Location, format string, args ...interface{}) error {
	err := newError(InternalError, loc, format, args...)
	g.errs = append(g.errs, err)
	return err
}

// dataVar looks up a define-data-var declaration by name.
func (g *Generator) dataVar(name string) (*ast.DataVar, bool) {
	for i := range g.contract.DataVars {
		if g.contract.DataVars[i].Name == name {
			return &g.contract.DataVars[i], true
		}
	}
	return nil, false
}

// mapDef looks up a define-map declaration by name.
func (g *Generator) mapDef(name string) (*ast.Map, bool) {
	for i := range g.contract.Maps {
		if g.contract.Maps[i].Name == name {
			return &g.contract.Maps[i], true
		}
	}
	return nil, false
}

// functionDef looks up a source function declaration by name, used by the
// filter/fold/map words to find their callback's parameter and return
// types.
func (g *Generator) functionDef(name string) (*ast.Function, bool) {
	for i := range g.contract.Functions {
		if g.contract.Functions[i].Name == name {
			return &g.contract.Functions[i], true
		}
	}
	return nil, false
}

// literalName allocates (or reuses, by content dedup) the literal-region
// bytes for an identifier, returning the (offset, length) instructions used
// everywhere an identifier is passed to a host import.
func (g *Generator) literalName(name string) []instruction.Instruction {
	off := g.allocateLiteral([]byte(name))
	return seq(i32Const(off), i32Const(int32(len(name))))
}
