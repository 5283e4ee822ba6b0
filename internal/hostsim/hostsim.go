package hostsim

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
)

// wazeroHostBuilder accumulates host function registrations across the
// "clarity" and "stdlib" namespaces before they are instantiated together,
// so registerClarity/registerStdlib can each be written as a flat list of
// b.fn(...) calls without juggling wazero's per-module builder directly.
type wazeroHostBuilder struct {
	runtime  wazero.Runtime
	builders map[string]wazero.HostModuleBuilder
}

func newHostBuilder(rt wazero.Runtime) *wazeroHostBuilder {
	return &wazeroHostBuilder{runtime: rt, builders: map[string]wazero.HostModuleBuilder{}}
}

// fn registers goFn as moduleName's export name. goFn's signature is mapped
// to Wasm value types by wazero's reflection-based WithFunc: a leading
// context.Context and api.Module parameter are consumed by the runtime, and
// remaining uint32/uint64 parameters and one-or-more uint32/uint64 results
// map to i32/i64 directly.
func (b *wazeroHostBuilder) fn(moduleName, name string, goFn interface{}) {
	hb, ok := b.builders[moduleName]
	if !ok {
		hb = b.runtime.NewHostModuleBuilder(moduleName)
	}
	b.builders[moduleName] = hb.NewFunctionBuilder().WithFunc(goFn).Export(name)
}

func (b *wazeroHostBuilder) instantiate(ctx context.Context) error {
	for name, hb := range b.builders {
		if _, err := hb.Instantiate(ctx); err != nil {
			return errors.Wrapf(err, "hostsim: instantiating host module %q", name)
		}
	}
	return nil
}

// Instantiate wires a fresh wazero runtime against s and returns it along
// with the runtime, ready for a compiled c2w module to be loaded into.
// Callers that only need one Run should prefer the Run helper below; this
// is exposed separately for hostsim's own end-to-end tests, which want to
// inspect s after multiple calls into the same instantiated module.
func Instantiate(ctx context.Context, s *State) (wazero.Runtime, error) {
	rt := wazero.NewRuntime(ctx)
	hb := newHostBuilder(rt)
	registerStdlib(hb)
	registerClarity(hb, s)
	if err := hb.instantiate(ctx); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	return rt, nil
}

// Result is one Run's outcome: the raw i64/i32 stack words the entrypoint
// returned (a Clarity value's ABI-lowered form — see internal/codegen/abi.go's
// Shape), the log lines the contract printed, and the host State it ran
// against (so a caller can assert on storage/ledger effects afterward).
type Result struct {
	Values []uint64
	Logs   []string
	State  *State
}

// Run instantiates wasmBytes against a freshly wired host and calls
// entrypoint with args, returning its raw result words. mainnet selects
// which STX-address version byte principal_of/get_block_info's synthetic
// miner-address use.
func Run(ctx context.Context, wasmBytes []byte, mainnet bool, entrypoint string, args ...uint64) (*Result, error) {
	s := NewState(mainnet)
	rt, err := Instantiate(ctx, s)
	if err != nil {
		return nil, err
	}
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Wrap(err, "hostsim: instantiating compiled module")
	}

	fn := mod.ExportedFunction(entrypoint)
	if fn == nil {
		return nil, errors.Errorf("hostsim: compiled module exports no function %q", entrypoint)
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "hostsim: calling %q", entrypoint)
	}

	return &Result{Values: results, Logs: s.Logs(), State: s}, nil
}
