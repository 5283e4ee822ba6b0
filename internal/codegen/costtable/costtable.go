// Package costtable holds version-selectable runtime cost-formula
// constants, mirroring original_source/clar2wasm/src/cost/clar1.rs: the
// upstream compiler shipped more than one such table, selected by a
// language version, rather than a single fixed set of constants.
package costtable

import "math/bits"

// Kind identifies which shape of cost formula a Formula evaluates.
type Kind int

const (
	// None means the operation is not charged against this counter at all.
	None Kind = iota
	// Constant charges B regardless of n.
	Constant
	// Linear charges A*n + B.
	Linear
	// NLogN charges A*n*log2(n) + B (n must be > 0).
	NLogN
	// LogN charges A*log2(n) + B (n must be > 0).
	LogN
)

// Formula is one counter's cost function for one word.
type Formula struct {
	Kind Kind
	A, B int64
}

// Eval computes the charge for n (an argument count, byte length, or
// similar size measure, depending on the word). n is ignored for Constant
// and must be > 0 for NLogN/LogN.
func (f Formula) Eval(n int64) int64 {
	switch f.Kind {
	case None:
		return 0
	case Constant:
		return f.B
	case Linear:
		return f.A*n + f.B
	case NLogN, LogN:
		if n <= 0 {
			n = 1
		}
		log2n := int64(63 - bits.LeadingZeros64(uint64(n)))
		if f.Kind == NLogN {
			return f.A*n*log2n + f.B
		}
		return f.A*log2n + f.B
	default:
		return 0
	}
}

// WordCost is the five-counter cost of one word, matching the runtime
// cost meter's five global counters (cost.go's CostCounter).
type WordCost struct {
	Runtime     Formula
	ReadCount   Formula
	ReadLength  Formula
	WriteCount  Formula
	WriteLength Formula
}

// Table maps a word's source name to its cost.
type Table map[string]WordCost

// DefaultVersion is used when a caller does not select one explicitly.
const DefaultVersion = "clarity1"

var versions = map[string]Table{
	"clarity1": clarity1,
}

// Lookup returns the WordCost for word under the named version, and
// whether an entry exists. An unknown word is never charged (the
// generator's charge sites treat "not found" the same as an all-None
// WordCost), matching clar2wasm's behavior of silently not tracking cost
// for words absent from its table.
func Lookup(version, word string) (WordCost, bool) {
	t, ok := versions[version]
	if !ok {
		t = versions[DefaultVersion]
	}
	wc, ok := t[word]
	return wc, ok
}

// Versions lists the available cost-table versions, for a CLI's
// --cost-version flag help text.
func Versions() []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	return out
}
