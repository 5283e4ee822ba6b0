// Package module models the sections of a WebAssembly module as plain Go
// values that the generator mutates while it walks the AST, and that the
// encoding package serializes to the binary format. It mirrors the shape of
// a hand-written Wasm module builder: one struct per section, assembled
// incrementally rather than produced by a single encode pass.
package module

import (
	"fmt"

	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// Module represents an in-progress or complete WebAssembly module.
type Module struct {
	Version  uint32
	Type     TypeSection
	Import   ImportSection
	Function FunctionSection
	Table    TableSection
	Memory   MemorySection
	Global   GlobalSection
	Export   ExportSection
	Start    StartSection
	Element  ElementSection
	Code     CodeSection
	Data     DataSection
	Names    NameSection
	Customs  []CustomSection
}

// TypeSection lists the distinct function signatures referenced anywhere in
// the module (imports, declared functions, call_indirect sites).
type TypeSection struct {
	Functions []FunctionType
}

// FunctionType is a function signature: a list of parameter types and a list
// of result types. The generator never emits multi-result functions; the
// field stays a slice because the encoding is generic.
type FunctionType struct {
	Params  []types.ValueType
	Results []types.ValueType
}

func (f FunctionType) String() string {
	return fmt.Sprintf("%v -> %v", f.Params, f.Results)
}

// Equal reports whether two function types have the same shape, used to
// dedupe entries in the type section.
func (f FunctionType) Equal(other FunctionType) bool {
	if len(f.Params) != len(other.Params) || len(f.Results) != len(other.Results) {
		return false
	}
	for i := range f.Params {
		if f.Params[i] != other.Params[i] {
			return false
		}
	}
	for i := range f.Results {
		if f.Results[i] != other.Results[i] {
			return false
		}
	}
	return true
}

// ImportSection lists the host functions the module expects to be linked
// against.
type ImportSection struct {
	Imports []Import
}

// Import is a single imported entity.
type Import struct {
	Module     string
	Name       string
	Descriptor ImportDescriptor
}

func (i Import) String() string {
	return fmt.Sprintf("%s.%s %v", i.Module, i.Name, i.Descriptor)
}

// ImportDescriptor is satisfied by FunctionImport (the only import kind the
// generator needs: every host collaborator in the specification is a
// function).
type ImportDescriptor interface {
	Kind() ImportType
}

// ImportType enumerates import descriptor kinds.
type ImportType int

// FunctionImportType is the only import kind the generator emits.
const FunctionImportType ImportType = 0

// FunctionImport describes an imported function by its type-section index.
type FunctionImport struct {
	Type uint32
}

// Kind implements ImportDescriptor.
func (FunctionImport) Kind() ImportType { return FunctionImportType }

// FunctionSection lists the type-section index of every function defined
// (not imported) by the module, in the order they appear in the code
// section.
type FunctionSection struct {
	TypeIndices []uint32
}

// TableSection declares the indirect-call table used for dynamic
// contract-call? dispatch against trait references.
type TableSection struct {
	Tables []Table
}

// Table is a single table declaration; the generator only ever needs
// funcref tables.
type Table struct {
	Lim Limits
}

// Limits is a min/max pair shared by tables and memories.
type Limits struct {
	Min uint32
	Max *uint32
}

// MemorySection declares the module's single linear memory.
type MemorySection struct {
	Memories []Memory
}

// Memory is a single memory declaration.
type Memory struct {
	Lim Limits
}

// GlobalSection lists the module's mutable and immutable globals: the
// stack-pointer, the five cost counters, and the two runtime-error argument
// globals.
type GlobalSection struct {
	Globals []Global
}

// Global is a single global variable declaration with its initializer
// expression.
type Global struct {
	Type    types.ValueType
	Mutable bool
	Init    Expr
}

// Expr is a constant initializer expression: a short instruction sequence
// (almost always a single const) terminated implicitly by End.
type Expr struct {
	Instrs []instruction.Instruction
}

// ExportSection lists the module's exported functions, memory, and globals.
type ExportSection struct {
	Exports []Export
}

// Export is a single exported entity.
type Export struct {
	Name       string
	Descriptor ExportDescriptor
}

// ExportDescriptor identifies what kind of entity is exported and its index.
type ExportDescriptor struct {
	Type  ExportType
	Index uint32
}

// ExportType enumerates the kinds of entities that can be exported.
type ExportType byte

const (
	FunctionExportType ExportType = 0x00
	TableExportType    ExportType = 0x01
	MemoryExportType   ExportType = 0x02
	GlobalExportType   ExportType = 0x03
)

// StartSection names the function, if any, to run automatically once the
// module instance is created. The generator does not use this: module
// initialization is driven explicitly by the host invoking `.top-level`.
type StartSection struct {
	FuncIndex *uint32
}

// ElementSection populates table entries, used to back call_indirect sites
// for dynamic contract-call?.
type ElementSection struct {
	Segments []ElementSegment
}

// ElementSegment is a single table-population segment.
type ElementSegment struct {
	Index   uint32
	Offset  Expr
	Indices []uint32
}

// CodeSection holds the bodies of every function declared in the function
// section, in the same order.
type CodeSection struct {
	Segments []CodeSegment
}

// CodeSegment is the as-yet-unparsed or already-parsed body of one function.
type CodeSegment struct {
	Code []byte
}

// CodeEntry is a parsed function body: its local declarations and
// instruction sequence.
type CodeEntry struct {
	Func Func
}

// Func is the body of a single function.
type Func struct {
	Locals []LocalDeclaration
	Instrs []instruction.Instruction
}

// LocalDeclaration groups a run of same-typed locals, as the binary format
// requires.
type LocalDeclaration struct {
	Count uint32
	Type  types.ValueType
}

// DataSection holds the module's literal-region initializers.
type DataSection struct {
	Segments []DataSegment
}

// DataSegment is a single passive-free ("active") data segment: bytes
// copied into linear memory at instantiation time, at a constant offset.
type DataSegment struct {
	Index  uint32
	Offset Expr
	Init   []byte
}

// NameSection carries the optional debug names custom section.
type NameSection struct {
	Module    string
	Functions []NameMap
	Locals    []LocalNameMap
}

// NameMap associates an index with a human-readable name.
type NameMap struct {
	Index uint32
	Name  string
}

// LocalNameMap carries the local names for one function.
type LocalNameMap struct {
	FuncIndex uint32
	NameMap   NameMap
}

// CustomSection is an opaque, named custom section copied through verbatim.
type CustomSection struct {
	Name string
	Data []byte
}

// New returns an empty module with the single linear memory the generator
// always emits.
func New() *Module {
	return &Module{
		Version: 1,
		Memory: MemorySection{
			Memories: []Memory{{Lim: Limits{Min: 2}}},
		},
	}
}
