package codegen

import (
	"github.com/clarlang/c2w/internal/wasm/module"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// importDecl is one entry of the fixed host/stdlib interface the generator
// links every module against. Signatures are derived from the operand-stack
// shapes (internal/codegen/abi.go) of the arguments and results each helper
// is documented to take.
type importDecl struct {
	module  string
	name    string
	params  []types.ValueType
	results []types.ValueType
}

var i32, i64 = types.I32, types.I64

func p(vs ...types.ValueType) []types.ValueType { return vs }

// hostImports is the runtime-provided interface: block/chain context,
// persisted storage, token ledgers, contract-call dispatch, hashing, and the
// trap entry point. None of these are defined by the emitted module; the
// host must supply matching functions at instantiation time.
var hostImports = []importDecl{
	{"clarity", "define_function", p(i32, i32, i32), nil},
	{"clarity", "define_variable", p(i32, i32, i32, i32), nil},
	{"clarity", "define_map", p(i32, i32), nil},
	{"clarity", "define_ft", p(i32, i32, i32, i64, i64), nil},
	{"clarity", "define_nft", p(i32, i32), nil},
	{"clarity", "get_variable", p(i32, i32, i32), nil},
	{"clarity", "set_variable", p(i32, i32, i32, i32), nil},
	{"clarity", "map_get", p(i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "map_set", p(i32, i32, i32, i32, i32, i32), nil},
	{"clarity", "map_insert", p(i32, i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "map_delete", p(i32, i32, i32, i32), p(i32)},
	{"clarity", "contract_call", p(i32, i32, i32, i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "enter_as_contract", p(i32, i32), nil},
	{"clarity", "exit_as_contract", nil, nil},
	{"clarity", "enter_at_block", p(i32, i32), p(i32)},
	{"clarity", "exit_at_block", nil, nil},
	{"clarity", "stx_burn", p(i64, i64, i32, i32), p(i32)},
	{"clarity", "stx_get_balance", p(i32, i32), p(i64, i64)},
	{"clarity", "stx_transfer", p(i64, i64, i32, i32, i32, i32), p(i32)},
	{"clarity", "stx_account", p(i32, i32), p(i64, i64, i64, i64, i64, i64)},
	{"clarity", "ft_mint", p(i32, i32, i64, i64, i32, i32), p(i32)},
	{"clarity", "ft_burn", p(i32, i32, i64, i64, i32, i32), p(i32)},
	{"clarity", "ft_transfer", p(i32, i32, i64, i64, i32, i32, i32, i32), p(i32)},
	{"clarity", "ft_get_balance", p(i32, i32, i32, i32), p(i64, i64)},
	{"clarity", "ft_get_supply", p(i32, i32), p(i64, i64)},
	{"clarity", "nft_mint", p(i32, i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "nft_burn", p(i32, i32, i32, i32), p(i32)},
	{"clarity", "nft_transfer", p(i32, i32, i32, i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "nft_get_owner", p(i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "get_block_info", p(i32, i64, i64, i32), p(i32)},
	{"clarity", "get_burn_block_info", p(i32, i64, i64, i32), p(i32)},
	{"clarity", "print", p(i32, i32), nil},
	{"clarity", "is_in_mainnet", nil, p(i32)},
	{"clarity", "principal_construct", p(i32, i32, i32, i32, i32, i32, i32, i32), p(i32, i64, i64)},
	{"clarity", "principal_of", p(i32, i32, i32), p(i32, i64, i64)},
	{"clarity", "runtime-error", p(i32), nil},
	{"clarity", "secp256k1_recover", p(i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "secp256k1_verify", p(i32, i32, i32, i32, i32, i32), p(i32)},
	{"clarity", "hash160", p(i32, i32, i32), nil},
	{"clarity", "sha256", p(i32, i32, i32), nil},
	{"clarity", "keccak256", p(i32, i32, i32), nil},
	{"clarity", "sha512", p(i32, i32, i32), nil},
	{"clarity", "sha512-256", p(i32, i32, i32), nil},
}

// stdlibImports is the prebuilt arithmetic/memory library: 128-bit integer
// arithmetic and comparison, raw memory copy/load/store, and the
// string-ascii/string-utf8 validation and conversion helpers. Modeling
// these as imports (rather than merging a precompiled module into the
// output, as a binary runtime embedding would) keeps the encoding package
// write-only and keeps the arithmetic helpers swappable at link time
// without touching the generator.
var stdlibImports = []importDecl{
	{"stdlib", "memcpy", p(i32, i32, i32), nil},
	{"stdlib", "store-i32-be", p(i32, i32), nil},
	{"stdlib", "load-i32-be", p(i32), p(i32)},
	{"stdlib", "store-i64-be", p(i32, i64), nil},
	{"stdlib", "load-i64-be", p(i32), p(i64)},
	{"stdlib", "is-valid-string-ascii", p(i32, i32), p(i32)},
	{"stdlib", "convert-utf8-to-scalars", p(i32, i32, i32), p(i32)},
	{"stdlib", "convert-scalars-to-utf8", p(i32, i32, i32), p(i32)},
}

func init() {
	for _, op := range []string{"add", "sub", "mul", "div", "mod", "pow"} {
		for _, ty := range []string{"int", "uint"} {
			stdlibImports = append(stdlibImports, importDecl{"stdlib", op + "-" + ty, p(i64, i64, i64, i64), p(i64, i64)})
		}
	}
	for _, op := range []string{"lt", "gt", "le", "ge"} {
		for _, ty := range []string{"int", "uint"} {
			stdlibImports = append(stdlibImports, importDecl{"stdlib", op + "-" + ty, p(i64, i64, i64, i64), p(i32)})
		}
	}
	for _, ty := range []string{"int", "uint"} {
		stdlibImports = append(stdlibImports, importDecl{"stdlib", "is-eq-" + ty, p(i64, i64, i64, i64), p(i32)})
		stdlibImports = append(stdlibImports, importDecl{"stdlib", "sqrti-" + ty, p(i64, i64), p(i64, i64)})
		stdlibImports = append(stdlibImports, importDecl{"stdlib", "log2-" + ty, p(i64, i64), p(i64, i64)})
		stdlibImports = append(stdlibImports, importDecl{"stdlib", "bit-not-" + ty, p(i64, i64), p(i64, i64)})
	}
	for _, op := range []string{"bit-and", "bit-or", "bit-xor", "bit-shift-left", "bit-shift-right"} {
		for _, ty := range []string{"int", "uint"} {
			stdlibImports = append(stdlibImports, importDecl{"stdlib", op + "-" + ty, p(i64, i64, i64, i64), p(i64, i64)})
		}
	}
	stdlibImports = append(stdlibImports, importDecl{"stdlib", "is-eq-bytes", p(i32, i32, i32, i32), p(i32)})
}

// stageImports declares the host interface and the stdlib interface, in
// that order, establishing the first segment of the module's function
// index space (imported functions always precede defined ones).
func (g *Generator) stageImports() error {
	declare := func(decls []importDecl) {
		for _, d := range decls {
			typeIdx := g.typeOf(d.params, d.results)
			idx := uint32(len(g.mod.Import.Imports))
			g.mod.Import.Imports = append(g.mod.Import.Imports, module.Import{
				Module:     d.module,
				Name:       d.name,
				Descriptor: module.FunctionImport{Type: typeIdx},
			})
			g.funcIndex[d.name] = idx
		}
	}
	declare(hostImports)
	declare(stdlibImports)
	return nil
}
