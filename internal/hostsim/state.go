package hostsim

import "math/big"

// mapDef records what define_map told the host about a persisted map,
// mirroring how internal/codegen's emitDefineMap informs the real host at
// module-init time; define_variable's values live directly in State.dataVars.
type mapDef struct {
	entries map[string][]byte // serialized key -> persisted value bytes
}

type ftDef struct {
	balances    map[string]*big.Int // principal encoding -> balance
	supply      *big.Int
	totalSupply *big.Int // nil if unbounded
}

type nftDef struct {
	owners map[string]string // serialized id -> owning principal encoding
}

// blockInfo is one synthetic block/burn-block record; Run pre-seeds a small
// deterministic chain (see NewState) since there is no real Stacks node
// behind this simulator.
type blockInfo struct {
	burnchainHeader [32]byte
	idHeader        [32]byte
	time            uint64
	vrfSeed         [32]byte
	minerAddr       []byte
}

// State holds everything a compiled contract's host calls read or mutate
// during one Run: data vars, maps, token ledgers, and the synthetic chain
// context contract_call/enter_as_contract-style words observe. Its zero
// value is not usable; construct with NewState.
type State struct {
	Mainnet bool

	dataVars map[string][]byte
	maps     map[string]*mapDef
	fts      map[string]*ftDef
	nfts     map[string]*nftDef

	blocks     []blockInfo
	tipHeight  uint64
	stxBalance map[string]*big.Int

	// contractStack holds the principals enter_as_contract/exit_as_contract
	// push and pop; the sender context a compiled contract observes at any
	// point is the top of this stack. heightStack holds the block heights
	// enter_at_block/exit_at_block push and pop.
	contractStack []string
	heightStack   []uint64

	logs []string
}

// NewState returns a State pre-seeded with a small synthetic chain (enough
// for get-block-info?/get-burn-block-info? to return stable, deterministic
// values across a Run) and an empty STX/FT/NFT ledger.
func NewState(mainnet bool) *State {
	s := &State{
		Mainnet:    mainnet,
		dataVars:   map[string][]byte{},
		maps:       map[string]*mapDef{},
		fts:        map[string]*ftDef{},
		nfts:       map[string]*nftDef{},
		stxBalance: map[string]*big.Int{},
		tipHeight:  1,
	}
	for h := uint64(0); h < 8; h++ {
		var bh, id, seed [32]byte
		bh[0], id[0], seed[0] = byte(h), byte(h)+1, byte(h)+2
		s.blocks = append(s.blocks, blockInfo{
			burnchainHeader: bh,
			idHeader:        id,
			time:            1600000000 + h*600,
			vrfSeed:         seed,
		})
	}
	return s
}

func (s *State) mapFor(name string) *mapDef {
	m, ok := s.maps[name]
	if !ok {
		m = &mapDef{entries: map[string][]byte{}}
		s.maps[name] = m
	}
	return m
}

func (s *State) ftFor(name string) *ftDef {
	f, ok := s.fts[name]
	if !ok {
		f = &ftDef{balances: map[string]*big.Int{}, supply: big.NewInt(0)}
		s.fts[name] = f
	}
	return f
}

func (s *State) nftFor(name string) *nftDef {
	n, ok := s.nfts[name]
	if !ok {
		n = &nftDef{owners: map[string]string{}}
		s.nfts[name] = n
	}
	return n
}

func (s *State) balanceOf(principal string) *big.Int {
	b, ok := s.stxBalance[principal]
	if !ok {
		return big.NewInt(0)
	}
	return b
}

// currentContract is the innermost enter_as_contract principal, or "" at
// the top level. Storage calls (get_variable, map_set and the like) are not
// scoped by it: every contract shares one set of data vars and maps.
func (s *State) currentContract() string {
	if len(s.contractStack) == 0 {
		return ""
	}
	return s.contractStack[len(s.contractStack)-1]
}

// Logs returns every string the contract printed via (print ...), in order.
func (s *State) Logs() []string {
	return s.logs
}
