package hostsim

import "math/big"

// c2w's int/uint values cross the host boundary as two i64 stack halves
// (low, high: see internal/codegen/abi.go's Shape), the same convention
// stdlib.go's arithmetic imports use for both operands and results. These
// helpers convert that pair to and from math/big.Int, since no library in
// this project's dependency graph does fixed 128-bit arithmetic and the
// values routinely overflow a native int64/uint64 (e.g. a pow-int result
// or an intermediate mul-int product).
var (
	two64       = new(big.Int).Lsh(big.NewInt(1), 64)
	two128      = new(big.Int).Lsh(big.NewInt(1), 128)
	int128Min   = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	int128Max   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	uint128Max  = new(big.Int).Sub(two128, big.NewInt(1))
)

// uintFromHalves combines a (low, high) pair into an unsigned 128-bit value.
func uintFromHalves(lo, hi uint64) *big.Int {
	v := new(big.Int).Lsh(new(big.Int).SetUint64(hi), 64)
	v.Or(v, new(big.Int).SetUint64(lo))
	return v
}

// intFromHalves combines a (low, high) pair into a signed 128-bit value,
// interpreting the bit pattern as two's complement.
func intFromHalves(lo, hi uint64) *big.Int {
	v := uintFromHalves(lo, hi)
	if v.Cmp(int128Max) > 0 {
		v.Sub(v, two128)
	}
	return v
}

// halvesFromUint splits an unsigned 128-bit value (reduced mod 2^128) into
// its (low, high) pair.
func halvesFromUint(v *big.Int) (lo, hi uint64) {
	m := new(big.Int).Mod(v, two128)
	if m.Sign() < 0 {
		m.Add(m, two128)
	}
	mask64 := new(big.Int).Sub(two64, big.NewInt(1))
	lo = new(big.Int).And(m, mask64).Uint64()
	hi = new(big.Int).Rsh(m, 64).Uint64()
	return lo, hi
}

// halvesFromInt splits a signed 128-bit value into its (low, high) pair,
// encoding it as two's complement exactly like halvesFromUint once the
// value is folded mod 2^128.
func halvesFromInt(v *big.Int) (lo, hi uint64) {
	if v.Sign() < 0 {
		v = new(big.Int).Add(v, two128)
	}
	return halvesFromUint(v)
}

func boolToI32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
