package hostsim

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/tetratelabs/wazero/api"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // hash160 is defined in terms of RIPEMD-160, same as the chain this simulates
	"golang.org/x/crypto/sha3"
)

const (
	versionMainnetSingleSig = 22
	versionTestnetSingleSig = 26
)

// registerClarity wires every "clarity" import stdlib.go declares against
// s: persisted storage, token ledgers, block context, hashing, and the
// trap entry point a compiled module calls into.
func registerClarity(b *wazeroHostBuilder, s *State) {
	b.fn("clarity", "define_function", func(_ noCtx, _ api.Module, _ uint32, _, _ uint32) {})

	b.fn("clarity", "define_variable", func(_ noCtx, mod api.Module, nameOff, nameLen, dataOff, dataLen uint32) {
		name := readName(mod, nameOff, nameLen)
		data, err := readBytes(mod, dataOff, dataLen)
		mustOK(err)
		s.dataVars[name] = data
	})

	b.fn("clarity", "define_map", func(_ noCtx, mod api.Module, nameOff, nameLen uint32) {
		s.mapFor(readName(mod, nameOff, nameLen))
	})

	b.fn("clarity", "define_ft", func(_ noCtx, mod api.Module, nameOff, nameLen, hasSupply uint32, supplyLo, supplyHi uint64) {
		ft := s.ftFor(readName(mod, nameOff, nameLen))
		if hasSupply != 0 {
			ft.totalSupply = uintFromHalves(supplyLo, supplyHi)
		}
	})

	b.fn("clarity", "define_nft", func(_ noCtx, mod api.Module, nameOff, nameLen uint32) {
		s.nftFor(readName(mod, nameOff, nameLen))
	})

	b.fn("clarity", "get_variable", func(_ noCtx, mod api.Module, nameOff, nameLen, resultOff uint32) {
		name := readName(mod, nameOff, nameLen)
		data := s.dataVars[name]
		mustOK(writeBytes(mod, resultOff, data))
	})

	b.fn("clarity", "set_variable", func(_ noCtx, mod api.Module, nameOff, nameLen, dataOff, dataLen uint32) {
		name := readName(mod, nameOff, nameLen)
		data, err := readBytes(mod, dataOff, dataLen)
		mustOK(err)
		s.dataVars[name] = data
	})

	b.fn("clarity", "map_get", func(_ noCtx, mod api.Module, nameOff, nameLen, keyOff, keyLen, resultOff uint32) uint32 {
		m := s.mapFor(readName(mod, nameOff, nameLen))
		key, err := readBytes(mod, keyOff, keyLen)
		mustOK(err)
		val, found := m.entries[string(key)]
		if !found {
			return 0
		}
		mustOK(writeBytes(mod, resultOff, val))
		return 1
	})

	b.fn("clarity", "map_set", func(_ noCtx, mod api.Module, nameOff, nameLen, keyOff, keyLen, valOff, valLen uint32) {
		m := s.mapFor(readName(mod, nameOff, nameLen))
		key, err := readBytes(mod, keyOff, keyLen)
		mustOK(err)
		val, err := readBytes(mod, valOff, valLen)
		mustOK(err)
		m.entries[string(key)] = val
	})

	b.fn("clarity", "map_insert", func(_ noCtx, mod api.Module, nameOff, nameLen, keyOff, keyLen, valOff, valLen uint32) uint32 {
		m := s.mapFor(readName(mod, nameOff, nameLen))
		key, err := readBytes(mod, keyOff, keyLen)
		mustOK(err)
		if _, exists := m.entries[string(key)]; exists {
			return 0
		}
		val, err := readBytes(mod, valOff, valLen)
		mustOK(err)
		m.entries[string(key)] = val
		return 1
	})

	b.fn("clarity", "map_delete", func(_ noCtx, mod api.Module, nameOff, nameLen, keyOff, keyLen uint32) uint32 {
		m := s.mapFor(readName(mod, nameOff, nameLen))
		key, err := readBytes(mod, keyOff, keyLen)
		mustOK(err)
		if _, exists := m.entries[string(key)]; !exists {
			return 0
		}
		delete(m.entries, string(key))
		return 1
	})

	// contract_call has no cross-module linkage in this simulator: only
	// one compiled module is ever loaded per Run, so there is no callee to
	// dispatch to. Reported as a failed call rather than a trap, since a
	// Response failure is a value the compiled contract can still legally
	// branch on.
	b.fn("clarity", "contract_call", func(_ noCtx, _ api.Module, _, _, _, _, _, _, _, _ uint32) uint32 {
		s.logs = append(s.logs, "contract_call: unsupported in hostsim (single-module run)")
		return 0
	})

	b.fn("clarity", "enter_as_contract", func(_ noCtx, mod api.Module, off, ln uint32) {
		var principal string
		if ln > 0 {
			buf, err := readBytes(mod, off, ln)
			mustOK(err)
			principal = string(buf)
		} else {
			principal = s.currentContract()
		}
		s.contractStack = append(s.contractStack, principal)
	})
	b.fn("clarity", "exit_as_contract", func(_ noCtx, _ api.Module) {
		if len(s.contractStack) > 0 {
			s.contractStack = s.contractStack[:len(s.contractStack)-1]
		}
	})

	b.fn("clarity", "enter_at_block", func(_ noCtx, mod api.Module, heightOff, heightLen uint32) uint32 {
		height, err := readUintAt(mod, heightOff, heightLen)
		mustOK(err)
		h := height.Uint64()
		s.heightStack = append(s.heightStack, h)
		if h >= uint64(len(s.blocks)) {
			return 0
		}
		return 1
	})
	b.fn("clarity", "exit_at_block", func(_ noCtx, _ api.Module) {
		if len(s.heightStack) > 0 {
			s.heightStack = s.heightStack[:len(s.heightStack)-1]
		}
	})

	b.fn("clarity", "stx_burn", func(_ noCtx, mod api.Module, amtLo, amtHi uint64, off, ln uint32) uint32 {
		principal := readName(mod, off, ln)
		amt := uintFromHalves(amtLo, amtHi)
		bal := s.balanceOf(principal)
		if bal.Cmp(amt) < 0 {
			return 0
		}
		s.stxBalance[principal] = new(big.Int).Sub(bal, amt)
		return 1
	})
	b.fn("clarity", "stx_get_balance", func(_ noCtx, mod api.Module, off, ln uint32) (uint64, uint64) {
		return halvesFromUint(s.balanceOf(readName(mod, off, ln)))
	})
	b.fn("clarity", "stx_transfer", func(_ noCtx, mod api.Module, amtLo, amtHi uint64, fromOff, fromLen, toOff, toLen uint32) uint32 {
		from := readName(mod, fromOff, fromLen)
		to := readName(mod, toOff, toLen)
		amt := uintFromHalves(amtLo, amtHi)
		bal := s.balanceOf(from)
		if bal.Cmp(amt) < 0 {
			return 0
		}
		s.stxBalance[from] = new(big.Int).Sub(bal, amt)
		s.stxBalance[to] = new(big.Int).Add(s.balanceOf(to), amt)
		return 1
	})
	b.fn("clarity", "stx_account", func(_ noCtx, mod api.Module, off, ln uint32) (uint64, uint64, uint64, uint64, uint64, uint64) {
		unlocked := s.balanceOf(readName(mod, off, ln))
		ulo, uhi := halvesFromUint(unlocked)
		return 0, 0, 0, 0, ulo, uhi
	})

	b.fn("clarity", "ft_mint", func(_ noCtx, mod api.Module, nameOff, nameLen uint32, amtLo, amtHi uint64, off, ln uint32) uint32 {
		ft := s.ftFor(readName(mod, nameOff, nameLen))
		principal := readName(mod, off, ln)
		amt := uintFromHalves(amtLo, amtHi)
		newSupply := new(big.Int).Add(ft.supply, amt)
		if ft.totalSupply != nil && newSupply.Cmp(ft.totalSupply) > 0 {
			return 0
		}
		ft.supply = newSupply
		bal, ok := ft.balances[principal]
		if !ok {
			bal = big.NewInt(0)
		}
		ft.balances[principal] = new(big.Int).Add(bal, amt)
		return 1
	})
	b.fn("clarity", "ft_burn", func(_ noCtx, mod api.Module, nameOff, nameLen uint32, amtLo, amtHi uint64, off, ln uint32) uint32 {
		ft := s.ftFor(readName(mod, nameOff, nameLen))
		principal := readName(mod, off, ln)
		amt := uintFromHalves(amtLo, amtHi)
		bal, ok := ft.balances[principal]
		if !ok || bal.Cmp(amt) < 0 {
			return 0
		}
		ft.balances[principal] = new(big.Int).Sub(bal, amt)
		ft.supply = new(big.Int).Sub(ft.supply, amt)
		return 1
	})
	b.fn("clarity", "ft_transfer", func(_ noCtx, mod api.Module, nameOff, nameLen uint32, amtLo, amtHi uint64, fromOff, fromLen, toOff, toLen uint32) uint32 {
		ft := s.ftFor(readName(mod, nameOff, nameLen))
		from := readName(mod, fromOff, fromLen)
		to := readName(mod, toOff, toLen)
		amt := uintFromHalves(amtLo, amtHi)
		bal, ok := ft.balances[from]
		if !ok || bal.Cmp(amt) < 0 {
			return 0
		}
		ft.balances[from] = new(big.Int).Sub(bal, amt)
		toBal, ok := ft.balances[to]
		if !ok {
			toBal = big.NewInt(0)
		}
		ft.balances[to] = new(big.Int).Add(toBal, amt)
		return 1
	})
	b.fn("clarity", "ft_get_balance", func(_ noCtx, mod api.Module, nameOff, nameLen, off, ln uint32) (uint64, uint64) {
		ft := s.ftFor(readName(mod, nameOff, nameLen))
		bal, ok := ft.balances[readName(mod, off, ln)]
		if !ok {
			bal = big.NewInt(0)
		}
		return halvesFromUint(bal)
	})
	b.fn("clarity", "ft_get_supply", func(_ noCtx, mod api.Module, nameOff, nameLen uint32) (uint64, uint64) {
		ft := s.ftFor(readName(mod, nameOff, nameLen))
		return halvesFromUint(ft.supply)
	})

	b.fn("clarity", "nft_mint", func(_ noCtx, mod api.Module, nameOff, nameLen, idOff, idLen, off, ln uint32) uint32 {
		nft := s.nftFor(readName(mod, nameOff, nameLen))
		id, err := readBytes(mod, idOff, idLen)
		mustOK(err)
		if _, exists := nft.owners[string(id)]; exists {
			return 0
		}
		nft.owners[string(id)] = readName(mod, off, ln)
		return 1
	})
	b.fn("clarity", "nft_burn", func(_ noCtx, mod api.Module, nameOff, nameLen, idOff, idLen uint32) uint32 {
		nft := s.nftFor(readName(mod, nameOff, nameLen))
		id, err := readBytes(mod, idOff, idLen)
		mustOK(err)
		if _, exists := nft.owners[string(id)]; !exists {
			return 0
		}
		delete(nft.owners, string(id))
		return 1
	})
	b.fn("clarity", "nft_transfer", func(_ noCtx, mod api.Module, nameOff, nameLen, idOff, idLen, fromOff, fromLen, toOff, toLen uint32) uint32 {
		nft := s.nftFor(readName(mod, nameOff, nameLen))
		id, err := readBytes(mod, idOff, idLen)
		mustOK(err)
		from := readName(mod, fromOff, fromLen)
		to := readName(mod, toOff, toLen)
		if nft.owners[string(id)] != from {
			return 0
		}
		nft.owners[string(id)] = to
		return 1
	})
	b.fn("clarity", "nft_get_owner", func(_ noCtx, mod api.Module, nameOff, nameLen, idOff, idLen, resultOff uint32) uint32 {
		nft := s.nftFor(readName(mod, nameOff, nameLen))
		id, err := readBytes(mod, idOff, idLen)
		mustOK(err)
		owner, found := nft.owners[string(id)]
		if !found {
			return 0
		}
		mustOK(writeBytes(mod, resultOff, []byte(owner)))
		return 1
	})

	b.fn("clarity", "get_block_info", func(_ noCtx, mod api.Module, prop uint32, heightLo, heightHi uint64, resultOff uint32) uint32 {
		return writeBlockInfo(s, mod, prop, heightLo, heightHi, resultOff, false)
	})
	b.fn("clarity", "get_burn_block_info", func(_ noCtx, mod api.Module, prop uint32, heightLo, heightHi uint64, resultOff uint32) uint32 {
		return writeBlockInfo(s, mod, prop, heightLo, heightHi, resultOff, true)
	})

	b.fn("clarity", "print", func(_ noCtx, mod api.Module, off, ln uint32) {
		data, err := readBytes(mod, off, ln)
		mustOK(err)
		s.logs = append(s.logs, string(data))
	})

	b.fn("clarity", "is_in_mainnet", func(_ noCtx, _ api.Module) uint32 {
		return boolToI32(s.Mainnet)
	})

	b.fn("clarity", "principal_construct", func(_ noCtx, mod api.Module, versionOff, versionLen, hashOff, hashLen, hasName, nameOff, nameLen, resultOff uint32) (uint32, uint64, uint64) {
		return principalConstruct(mod, versionOff, versionLen, hashOff, hashLen, hasName, nameOff, nameLen, resultOff)
	})
	b.fn("clarity", "principal_of", func(_ noCtx, mod api.Module, pkOff, pkLen, resultOff uint32) (uint32, uint64, uint64) {
		return principalOf(s, mod, pkOff, pkLen, resultOff)
	})

	// The compiled module always follows this call with an Unreachable
	// instruction, which is what actually traps the call; this just leaves
	// a readable record of which trap code fired.
	b.fn("clarity", "runtime-error", func(_ noCtx, _ api.Module, code uint32) {
		s.logs = append(s.logs, fmt.Sprintf("runtime-error: trap code %d", code))
	})

	b.fn("clarity", "secp256k1_recover", func(_ noCtx, mod api.Module, msgOff, sigOff, sigLen, pubOff, pubLen uint32) uint32 {
		return secp256k1Recover(mod, msgOff, sigOff, sigLen, pubOff, pubLen)
	})
	b.fn("clarity", "secp256k1_verify", func(_ noCtx, mod api.Module, msgOff, sigOff, sigLen, pubOff, pubLen, _ uint32) uint32 {
		return secp256k1Verify(mod, msgOff, sigOff, sigLen, pubOff, pubLen)
	})

	b.fn("clarity", "hash160", func(_ noCtx, mod api.Module, off, ln, resultOff uint32) {
		data, err := readBytes(mod, off, ln)
		mustOK(err)
		sum := sha256.Sum256(data)
		r := ripemd160.New()
		r.Write(sum[:])
		mustOK(writeBytes(mod, resultOff, r.Sum(nil)))
	})
	b.fn("clarity", "sha256", func(_ noCtx, mod api.Module, off, ln, resultOff uint32) {
		data, err := readBytes(mod, off, ln)
		mustOK(err)
		sum := sha256.Sum256(data)
		mustOK(writeBytes(mod, resultOff, sum[:]))
	})
	b.fn("clarity", "keccak256", func(_ noCtx, mod api.Module, off, ln, resultOff uint32) {
		data, err := readBytes(mod, off, ln)
		mustOK(err)
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		mustOK(writeBytes(mod, resultOff, h.Sum(nil)))
	})
	b.fn("clarity", "sha512", func(_ noCtx, mod api.Module, off, ln, resultOff uint32) {
		data, err := readBytes(mod, off, ln)
		mustOK(err)
		sum := sha512.Sum512(data)
		mustOK(writeBytes(mod, resultOff, sum[:]))
	})
	b.fn("clarity", "sha512-256", func(_ noCtx, mod api.Module, off, ln, resultOff uint32) {
		data, err := readBytes(mod, off, ln)
		mustOK(err)
		sum := sha512.Sum512_256(data)
		mustOK(writeBytes(mod, resultOff, sum[:]))
	})
}

// readName reads a (off, len) byte string, used for storage/map/principal
// names and serialized principal byte strings alike — both cross the host
// boundary the same way.
func readName(mod api.Module, off, ln uint32) string {
	buf, err := readBytes(mod, off, ln)
	mustOK(err)
	return string(buf)
}

// readUintAt decodes a uint stored at off in the two-8-byte-big-endian-
// chunk layout marshal.go's storeWalk uses for IntType/UintType (see
// internal/codegen/marshal.go's storeI64At calls), reduced to however much
// of it ln actually covers (callers only ever pass the full 16 bytes here).
func readUintAt(mod api.Module, off, ln uint32) (*big.Int, error) {
	lo, err := readU64BE(mod, off)
	if err != nil {
		return nil, err
	}
	var hi uint64
	if ln >= 16 {
		hi, err = readU64BE(mod, off+8)
		if err != nil {
			return nil, err
		}
	}
	return uintFromHalves(lo, hi), nil
}

func writeUintAt(mod api.Module, off uint32, v *big.Int) error {
	lo, hi := halvesFromUint(v)
	if err := writeU64BE(mod, off, lo); err != nil {
		return err
	}
	return writeU64BE(mod, off+8, hi)
}

func writeBlockInfo(s *State, mod api.Module, prop uint32, heightLo, heightHi uint64, resultOff uint32, burn bool) uint32 {
	height := uintFromHalves(heightLo, heightHi).Uint64()
	if height >= uint64(len(s.blocks)) {
		return 0
	}
	blk := s.blocks[height]
	switch prop {
	case 0: // time
		mustOK(writeUintAt(mod, resultOff, new(big.Int).SetUint64(blk.time)))
	case 1: // header-hash
		mustOK(writeBytes(mod, resultOff, blk.idHeader[:]))
	case 2: // burnchain-header-hash
		mustOK(writeBytes(mod, resultOff, blk.burnchainHeader[:]))
	case 3: // id-header-hash
		mustOK(writeBytes(mod, resultOff, blk.idHeader[:]))
	case 4: // miner-address
		version := byte(versionTestnetSingleSig)
		if s.Mainnet {
			version = versionMainnetSingleSig
		}
		principal := append([]byte{version}, blk.burnchainHeader[:20]...)
		mustOK(writeBytes(mod, resultOff, principal))
	case 5: // vrf-seed
		mustOK(writeBytes(mod, resultOff, blk.vrfSeed[:]))
	case 6, 7, 8: // block-reward, miner-spend-total, miner-spend-winner
		mustOK(writeUintAt(mod, resultOff, big.NewInt(500000)))
	default:
		return 0
	}
	_ = burn // burn-block-info reuses the same synthetic chain, a deliberate simplification
	return 1
}

func principalConstruct(mod api.Module, versionOff, versionLen, hashOff, hashLen, hasName, nameOff, nameLen, resultOff uint32) (uint32, uint64, uint64) {
	version, err := readUintAt(mod, versionOff, versionLen)
	mustOK(err)
	if version.Sign() < 0 || version.Cmp(big.NewInt(255)) > 0 {
		return 0, 1, 0
	}
	if hashLen != 20 {
		return 0, 2, 0
	}
	hash, err := readBytes(mod, hashOff, hashLen)
	mustOK(err)
	out := append([]byte{byte(version.Uint64())}, hash...)
	if hasName != 0 {
		if nameLen > 128 {
			return 0, 3, 0
		}
		name, err := readBytes(mod, nameOff, nameLen)
		mustOK(err)
		out = append(out, byte(nameLen))
		out = append(out, name...)
	}
	mustOK(writeBytes(mod, resultOff, out))
	return 1, 0, 0
}

func principalOf(s *State, mod api.Module, pkOff, pkLen, resultOff uint32) (uint32, uint64, uint64) {
	pk, err := readBytes(mod, pkOff, pkLen)
	mustOK(err)
	sum := sha256.Sum256(pk)
	r := ripemd160.New()
	r.Write(sum[:])
	hash := r.Sum(nil)
	version := byte(versionTestnetSingleSig)
	if s.Mainnet {
		version = versionMainnetSingleSig
	}
	out := append([]byte{version}, hash...)
	mustOK(writeBytes(mod, resultOff, out))
	return 1, 0, 0
}

func secp256k1Recover(mod api.Module, msgOff, sigOff, sigLen, pubOff, pubLen uint32) uint32 {
	msg, err := readBytes(mod, msgOff, 32)
	mustOK(err)
	sig, err := readBytes(mod, sigOff, sigLen)
	mustOK(err)
	if len(sig) != 65 {
		return 0
	}
	// secp256k1's recoverable-signature layout is (r, s, recoveryID); ecdsa's
	// SignCompact produces (recoveryID, r, s) with the id byte first, so the
	// two halves are swapped here before calling RecoverCompact.
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])
	pub, _, err := ecdsa.RecoverCompact(compact, msg)
	if err != nil {
		return 0
	}
	mustOK(writeBytes(mod, pubOff, pub.SerializeCompressed()))
	_ = pubLen
	return 1
}

func secp256k1Verify(mod api.Module, msgOff, sigOff, sigLen, pubOff, pubLen uint32) uint32 {
	msg, err := readBytes(mod, msgOff, 32)
	mustOK(err)
	sig, err := readBytes(mod, sigOff, sigLen)
	mustOK(err)
	pubBytes, err := readBytes(mod, pubOff, pubLen)
	mustOK(err)
	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return 0
	}
	if len(sig) != 65 {
		return 0
	}
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])
	recovered, _, err := ecdsa.RecoverCompact(compact, msg)
	if err != nil {
		return 0
	}
	return boolToI32(recovered.IsEqual(pub))
}
