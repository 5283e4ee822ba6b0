// Package hostsim is a Go-implemented host ABI for a compiled c2w module,
// built on wazero. It satisfies every import internal/codegen/stdlib.go
// declares (the "clarity" and "stdlib" namespaces), so a module produced by
// internal/codegen can be instantiated and actually run against it — used
// by cmd/c2w's run subcommand and by this package's own end-to-end tests.
// It is not part of the generator's compile-time output.
package hostsim

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// readBytes reads n bytes at offset from mod's linear memory.
func readBytes(mod api.Module, offset, n uint32) ([]byte, error) {
	buf, ok := mod.Memory().Read(offset, n)
	if !ok {
		return nil, fmt.Errorf("hostsim: out-of-bounds memory read at %d, len %d", offset, n)
	}
	out := make([]byte, n)
	copy(out, buf)
	return out, nil
}

// writeBytes writes data at offset into mod's linear memory.
func writeBytes(mod api.Module, offset uint32, data []byte) error {
	if !mod.Memory().Write(offset, data) {
		return fmt.Errorf("hostsim: out-of-bounds memory write at %d, len %d", offset, len(data))
	}
	return nil
}

// readU64BE reads an 8-byte big-endian unsigned integer at offset, matching
// the encoding internal/codegen's store-i64-be/load-i64-be imports use for
// int/uint halves (see internal/codegen/marshal.go's storeWalk/loadWalk).
func readU64BE(mod api.Module, offset uint32) (uint64, error) {
	buf, err := readBytes(mod, offset, 8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// writeU64BE writes v as an 8-byte big-endian unsigned integer at offset.
func writeU64BE(mod api.Module, offset uint32, v uint64) error {
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return writeBytes(mod, offset, buf)
}

// readU32BE reads a 4-byte big-endian unsigned integer at offset, matching
// store-i32-be/load-i32-be.
func readU32BE(mod api.Module, offset uint32) (uint32, error) {
	buf, err := readBytes(mod, offset, 4)
	if err != nil {
		return 0, err
	}
	var v uint32
	for _, b := range buf {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// writeU32BE writes v as a 4-byte big-endian unsigned integer at offset.
func writeU32BE(mod api.Module, offset uint32, v uint32) error {
	buf := make([]byte, 4)
	for i := 3; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return writeBytes(mod, offset, buf)
}

// mustOK panics on error, for use inside wazero host functions that have no
// error return in their signature (every import in stdlib.go is value- or
// void-returning). Panicking inside a wazero host function surfaces to the
// caller as a module trap, matching how a genuine out-of-bounds access in a
// compiled module would behave.
func mustOK(err error) {
	if err != nil {
		panic(err)
	}
}

// noCtx is a convenience alias used throughout this package's host function
// signatures: none of them need the context beyond what wazero already
// threads through, but WithFunc requires it as the first parameter.
type noCtx = context.Context
