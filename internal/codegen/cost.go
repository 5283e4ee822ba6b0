package codegen

import (
	"github.com/clarlang/c2w/internal/codegen/costtable"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

// CostCounter selects which of the five runtime cost globals a charge
// debits.
type CostCounter int

const (
	CostRuntime CostCounter = iota
	CostReadCount
	CostReadLength
	CostWriteCount
	CostWriteLength
)

// trap codes reported to the host's runtime-error import; numeric values
// are an internal enumeration, not part of any external wire format.
const (
	trapOverflow = iota
	trapUnderflow
	trapDivideByZero
	trapLogOfNonPositive
	trapSqrtiOfNegative
	trapPanic
	trapArgumentCountMismatchExact
	trapArgumentCountMismatchAtLeast
	trapArgumentCountMismatchAtMost
	trapCostOverrunRuntime
	trapCostOverrunReadCount
	trapCostOverrunReadLength
	trapCostOverrunWriteCount
	trapCostOverrunWriteLength
)

func (g *Generator) globalAndTrap(c CostCounter) (uint32, int32) {
	switch c {
	case CostRuntime:
		return g.costRuntime, trapCostOverrunRuntime
	case CostReadCount:
		return g.costReadCount, trapCostOverrunReadCount
	case CostReadLength:
		return g.costReadLen, trapCostOverrunReadLength
	case CostWriteCount:
		return g.costWriteCount, trapCostOverrunWriteCount
	case CostWriteLength:
		return g.costWriteLen, trapCostOverrunWriteLength
	default:
		panic("codegen: unknown cost counter")
	}
}

// emitTrap emits an unconditional call to the host's runtime-error import
// with the given trap code, followed by Unreachable: no Wasm code the
// generator emits after a trap call is ever expected to run, but each
// caller still terminates the basic block explicitly rather than relying
// on a fallthrough.
func (g *Generator) emitTrap(code int32) ([]instruction.Instruction, error) {
	call, err := g.callByName("runtime-error")
	if err != nil {
		return nil, err
	}
	return seq(i32Const(code), call, []instruction.Instruction{instruction.Unreachable{}}), nil
}

// chargeConstant implements the Constant(c) cost formula: an unconditional
// flat debit of c against counter.
func (g *Generator) chargeConstant(counter CostCounter, c int64) ([]instruction.Instruction, error) {
	return g.charge(counter, i64Const(c))
}

// chargeLinear implements the Linear(a, b, n) cost formula: debits a*n+b
// against counter, where nInstrs computes n (an i64) on the stack.
func (g *Generator) chargeLinear(counter CostCounter, a, b int64, nInstrs []instruction.Instruction) ([]instruction.Instruction, error) {
	cost := seq(
		nInstrs,
		i64Const(a),
		[]instruction.Instruction{instruction.I64Mul{}},
		i64Const(b),
		[]instruction.Instruction{instruction.I64Add{}},
	)
	return g.charge(counter, cost)
}

// chargeNLogN implements the NLogN(a, b, n) formula: debits a*n*log2(n)+b.
// log2(n) is computed as 63 - clz(n): n occupies the high bit position
// (63 - leading zero count) of its i64 representation. n must be > 0; the
// generator never calls this with a statically known n <= 0. nInstrs is
// emitted twice: once for log2(n) and once for the factor n.
func (g *Generator) chargeNLogN(counter CostCounter, a, b int64, nInstrs []instruction.Instruction) ([]instruction.Instruction, error) {
	logN := seq(
		i64Const(63),
		nInstrs,
		[]instruction.Instruction{instruction.I64Clz{}, instruction.I64Sub{}},
	)
	cost := seq(
		logN,
		nInstrs,
		[]instruction.Instruction{instruction.I64Mul{}},
		i64Const(a),
		[]instruction.Instruction{instruction.I64Mul{}},
		i64Const(b),
		[]instruction.Instruction{instruction.I64Add{}},
	)
	return g.charge(counter, cost)
}

// chargeLogN implements the LogN(a, b, n) formula: debits a*log2(n)+b,
// computing log2(n) the same way chargeNLogN does.
func (g *Generator) chargeLogN(counter CostCounter, a, b int64, nInstrs []instruction.Instruction) ([]instruction.Instruction, error) {
	logN := seq(
		i64Const(63),
		nInstrs,
		[]instruction.Instruction{instruction.I64Clz{}, instruction.I64Sub{}},
	)
	cost := seq(
		logN,
		i64Const(a),
		[]instruction.Instruction{instruction.I64Mul{}},
		i64Const(b),
		[]instruction.Instruction{instruction.I64Add{}},
	)
	return g.charge(counter, cost)
}

// chargeWord looks up word's cost formulas in the generator's selected
// costtable version and emits a chargeConstant debit for each counter the
// table assigns a formula to. n is the word's size measure (argument count,
// byte length, whatever the word's cost formula is defined in terms of) —
// every cost formula in costtable is linear or constant in a quantity this
// generator already knows at lowering time (its value ABI is fixed-width,
// so argument counts and byte lengths are never runtime-variable), so n is
// always computed in Go rather than with Wasm instructions on the stack.
// A word absent from the table is not charged at all, matching clar2wasm's
// behavior for words its own table omits.
func (g *Generator) chargeWord(word string, n int64) ([]instruction.Instruction, error) {
	wc, ok := costtable.Lookup(g.costVersion, word)
	if !ok {
		return nil, nil
	}
	var out []instruction.Instruction
	for _, cf := range []struct {
		counter CostCounter
		formula costtable.Formula
	}{
		{CostRuntime, wc.Runtime},
		{CostReadCount, wc.ReadCount},
		{CostReadLength, wc.ReadLength},
		{CostWriteCount, wc.WriteCount},
		{CostWriteLength, wc.WriteLength},
	} {
		if cf.formula.Kind == costtable.None {
			continue
		}
		instrs, err := g.chargeConstant(cf.counter, cf.formula.Eval(n))
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

// charge emits the common debit-then-check sequence once costInstrs have
// computed the i64 amount to subtract from counter's global.
func (g *Generator) charge(counter CostCounter, costInstrs []instruction.Instruction) ([]instruction.Instruction, error) {
	global, errCode := g.globalAndTrap(counter)
	trap, err := g.emitTrap(errCode)
	if err != nil {
		return nil, err
	}
	return seq(
		[]instruction.Instruction{instruction.GetGlobal{Index: global}},
		costInstrs,
		[]instruction.Instruction{
			instruction.I64Sub{},
			instruction.SetGlobal{Index: global},
			instruction.GetGlobal{Index: global},
			instruction.I64Const{Value: 0},
			instruction.I64LtS{},
			instruction.If{
				Then: trap,
			},
		},
	), nil
}
