package hostsim

import (
	"math/big"
	"unicode/utf8"

	"github.com/tetratelabs/wazero/api"
)

// registerStdlib wires every "stdlib" import stdlib.go declares: raw memory
// access and the 128-bit arithmetic/bit/comparison library the generator
// otherwise has no way to perform inline (Wasm has no native i128 type).
func registerStdlib(b *wazeroHostBuilder) {
	b.fn("stdlib", "memcpy", func(_ noCtx, mod api.Module, dst, src, n uint32) {
		buf, err := readBytes(mod, src, n)
		mustOK(err)
		mustOK(writeBytes(mod, dst, buf))
	})
	b.fn("stdlib", "store-i32-be", func(_ noCtx, mod api.Module, off, v uint32) {
		mustOK(writeU32BE(mod, off, v))
	})
	b.fn("stdlib", "load-i32-be", func(_ noCtx, mod api.Module, off uint32) uint32 {
		v, err := readU32BE(mod, off)
		mustOK(err)
		return v
	})
	b.fn("stdlib", "store-i64-be", func(_ noCtx, mod api.Module, off uint32, v uint64) {
		mustOK(writeU64BE(mod, off, v))
	})
	b.fn("stdlib", "load-i64-be", func(_ noCtx, mod api.Module, off uint32) uint64 {
		v, err := readU64BE(mod, off)
		mustOK(err)
		return v
	})
	b.fn("stdlib", "is-valid-string-ascii", func(_ noCtx, mod api.Module, off, n uint32) uint32 {
		buf, err := readBytes(mod, off, n)
		mustOK(err)
		for _, c := range buf {
			if c > 0x7f {
				return 0
			}
		}
		return 1
	})
	b.fn("stdlib", "convert-utf8-to-scalars", func(_ noCtx, mod api.Module, off, n, dst uint32) uint32 {
		buf, err := readBytes(mod, off, n)
		mustOK(err)
		var count uint32
		for i := 0; i < len(buf); {
			r, size := utf8.DecodeRune(buf[i:])
			mustOK(writeU32BE(mod, dst+count*4, uint32(r)))
			count++
			i += size
		}
		return count
	})
	b.fn("stdlib", "convert-scalars-to-utf8", func(_ noCtx, mod api.Module, off, count, dst uint32) uint32 {
		var out []byte
		for i := uint32(0); i < count; i++ {
			scalar, err := readU32BE(mod, off+i*4)
			mustOK(err)
			var tmp [utf8.UTFMax]byte
			n := utf8.EncodeRune(tmp[:], rune(scalar))
			out = append(out, tmp[:n]...)
		}
		mustOK(writeBytes(mod, dst, out))
		return uint32(len(out))
	})
	b.fn("stdlib", "is-eq-bytes", func(_ noCtx, mod api.Module, off1, len1, off2, len2 uint32) uint32 {
		if len1 != len2 {
			return 0
		}
		a, err := readBytes(mod, off1, len1)
		mustOK(err)
		c, err := readBytes(mod, off2, len2)
		mustOK(err)
		return boolToI32(string(a) == string(c))
	})

	registerInt128Ops(b)
}

type binBigOp func(a, bOperand *big.Int) *big.Int
type cmpOp func(a, b *big.Int) bool

func registerInt128Ops(b *wazeroHostBuilder) {
	kinds := []struct {
		suffix string
		decode func(lo, hi uint64) *big.Int
		encode func(v *big.Int) (uint64, uint64)
	}{
		{"int", intFromHalves, halvesFromInt},
		{"uint", uintFromHalves, halvesFromUint},
	}

	for _, k := range kinds {
		decode, encode := k.decode, k.encode

		registerBinArith(b, "add-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int { return new(big.Int).Add(a, c) })
		registerBinArith(b, "sub-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int { return new(big.Int).Sub(a, c) })
		registerBinArith(b, "mul-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int { return new(big.Int).Mul(a, c) })
		registerBinArith(b, "div-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int {
			q, _ := new(big.Int).QuoRem(a, c, new(big.Int))
			return q
		})
		registerBinArith(b, "mod-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int {
			_, r := new(big.Int).QuoRem(a, c, new(big.Int))
			return r
		})
		registerBinArith(b, "pow-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int {
			return new(big.Int).Exp(a, c, two128)
		})
		registerBinArith(b, "bit-and-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int { return new(big.Int).And(a, c) })
		registerBinArith(b, "bit-or-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int { return new(big.Int).Or(a, c) })
		registerBinArith(b, "bit-xor-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int { return new(big.Int).Xor(a, c) })
		registerBinArith(b, "bit-shift-left-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int {
			return new(big.Int).Lsh(a, uint(new(big.Int).Mod(c, big.NewInt(128)).Uint64()))
		})
		registerBinArith(b, "bit-shift-right-"+k.suffix, decode, encode, func(a, c *big.Int) *big.Int {
			return new(big.Int).Rsh(a, uint(new(big.Int).Mod(c, big.NewInt(128)).Uint64()))
		})

		registerUnaryArith(b, "bit-not-"+k.suffix, decode, encode, func(a *big.Int) *big.Int {
			return new(big.Int).Xor(a, uint128Max)
		})
		registerUnaryArith(b, "sqrti-"+k.suffix, decode, encode, func(a *big.Int) *big.Int {
			abs := new(big.Int).Abs(a)
			return new(big.Int).Sqrt(abs)
		})
		registerUnaryArith(b, "log2-"+k.suffix, decode, encode, func(a *big.Int) *big.Int {
			abs := new(big.Int).Abs(a)
			if abs.Sign() == 0 {
				return big.NewInt(0)
			}
			return big.NewInt(int64(abs.BitLen() - 1))
		})

		registerCmp(b, "lt-"+k.suffix, decode, func(a, c *big.Int) bool { return a.Cmp(c) < 0 })
		registerCmp(b, "gt-"+k.suffix, decode, func(a, c *big.Int) bool { return a.Cmp(c) > 0 })
		registerCmp(b, "le-"+k.suffix, decode, func(a, c *big.Int) bool { return a.Cmp(c) <= 0 })
		registerCmp(b, "ge-"+k.suffix, decode, func(a, c *big.Int) bool { return a.Cmp(c) >= 0 })
		registerCmp(b, "is-eq-"+k.suffix, decode, func(a, c *big.Int) bool { return a.Cmp(c) == 0 })
	}
}

func registerBinArith(b *wazeroHostBuilder, name string, decode func(lo, hi uint64) *big.Int, encode func(*big.Int) (uint64, uint64), op binBigOp) {
	b.fn("stdlib", name, func(_ noCtx, _ api.Module, lo1, hi1, lo2, hi2 uint64) (uint64, uint64) {
		a := decode(lo1, hi1)
		c := decode(lo2, hi2)
		lo, hi := encode(op(a, c))
		return lo, hi
	})
}

func registerUnaryArith(b *wazeroHostBuilder, name string, decode func(lo, hi uint64) *big.Int, encode func(*big.Int) (uint64, uint64), op func(*big.Int) *big.Int) {
	b.fn("stdlib", name, func(_ noCtx, _ api.Module, lo, hi uint64) (uint64, uint64) {
		a := decode(lo, hi)
		rlo, rhi := encode(op(a))
		return rlo, rhi
	})
}

func registerCmp(b *wazeroHostBuilder, name string, decode func(lo, hi uint64) *big.Int, op cmpOp) {
	b.fn("stdlib", name, func(_ noCtx, _ api.Module, lo1, hi1, lo2, hi2 uint64) uint32 {
		a := decode(lo1, hi1)
		c := decode(lo2, hi2)
		return boolToI32(op(a, c))
	})
}
