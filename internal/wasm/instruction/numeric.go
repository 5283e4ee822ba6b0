package instruction

import (
	"github.com/clarlang/c2w/internal/wasm/opcode"
)

// I32Const represents the Wasm i32.const instruction.
type I32Const struct {
	Value int32
}

// Op returns the opcode of the instruction.
func (I32Const) Op() opcode.Opcode { return opcode.I32Const }

// ImmediateArgs returns the i32 value to push onto the stack.
func (i I32Const) ImmediateArgs() []interface{} { return []interface{}{i.Value} }

// I64Const represents the Wasm i64.const instruction.
type I64Const struct {
	Value int64
}

// Op returns the opcode of the instruction.
func (I64Const) Op() opcode.Opcode { return opcode.I64Const }

// ImmediateArgs returns the i64 value to push onto the stack.
func (i I64Const) ImmediateArgs() []interface{} { return []interface{}{i.Value} }

// simple is the base for zero-immediate numeric instructions; each
// generated type below only needs to report its own opcode.
type simple struct{ NoImmediateArgs }

// I32Eqz represents the Wasm i32.eqz instruction.
type I32Eqz struct{ simple }

func (I32Eqz) Op() opcode.Opcode { return opcode.I32Eqz }

// I32Eq represents the Wasm i32.eq instruction.
type I32Eq struct{ simple }

func (I32Eq) Op() opcode.Opcode { return opcode.I32Eq }

// I32Ne represents the Wasm i32.ne instruction.
type I32Ne struct{ simple }

func (I32Ne) Op() opcode.Opcode { return opcode.I32Ne }

// I32LtS represents the Wasm i32.lt_s instruction.
type I32LtS struct{ simple }

func (I32LtS) Op() opcode.Opcode { return opcode.I32LtS }

// I32GtS represents the Wasm i32.gt_s instruction.
type I32GtS struct{ simple }

func (I32GtS) Op() opcode.Opcode { return opcode.I32GtS }

// I32LeS represents the Wasm i32.le_s instruction.
type I32LeS struct{ simple }

func (I32LeS) Op() opcode.Opcode { return opcode.I32LeS }

// I32GeS represents the Wasm i32.ge_s instruction.
type I32GeS struct{ simple }

func (I32GeS) Op() opcode.Opcode { return opcode.I32GeS }

// I32Add represents the Wasm i32.add instruction.
type I32Add struct{ simple }

func (I32Add) Op() opcode.Opcode { return opcode.I32Add }

// I32Sub represents the Wasm i32.sub instruction.
type I32Sub struct{ simple }

func (I32Sub) Op() opcode.Opcode { return opcode.I32Sub }

// I32Mul represents the Wasm i32.mul instruction.
type I32Mul struct{ simple }

func (I32Mul) Op() opcode.Opcode { return opcode.I32Mul }

// I32DivS represents the Wasm i32.div_s instruction.
type I32DivS struct{ simple }

func (I32DivS) Op() opcode.Opcode { return opcode.I32DivS }

// I32DivU represents the Wasm i32.div_u instruction.
type I32DivU struct{ simple }

func (I32DivU) Op() opcode.Opcode { return opcode.I32DivU }

// I32And represents the Wasm i32.and instruction.
type I32And struct{ simple }

func (I32And) Op() opcode.Opcode { return opcode.I32And }

// I32Or represents the Wasm i32.or instruction.
type I32Or struct{ simple }

func (I32Or) Op() opcode.Opcode { return opcode.I32Or }

// I32Xor represents the Wasm i32.xor instruction.
type I32Xor struct{ simple }

func (I32Xor) Op() opcode.Opcode { return opcode.I32Xor }

// I32Shl represents the Wasm i32.shl instruction.
type I32Shl struct{ simple }

func (I32Shl) Op() opcode.Opcode { return opcode.I32Shl }

// I32ShrS represents the Wasm i32.shr_s instruction.
type I32ShrS struct{ simple }

func (I32ShrS) Op() opcode.Opcode { return opcode.I32ShrS }

// I32ShrU represents the Wasm i32.shr_u instruction.
type I32ShrU struct{ simple }

func (I32ShrU) Op() opcode.Opcode { return opcode.I32ShrU }

// I32Clz represents the Wasm i32.clz instruction.
type I32Clz struct{ simple }

func (I32Clz) Op() opcode.Opcode { return opcode.I32Clz }

// I64Eqz represents the Wasm i64.eqz instruction.
type I64Eqz struct{ simple }

func (I64Eqz) Op() opcode.Opcode { return opcode.I64Eqz }

// I64Eq represents the Wasm i64.eq instruction.
type I64Eq struct{ simple }

func (I64Eq) Op() opcode.Opcode { return opcode.I64Eq }

// I64Ne represents the Wasm i64.ne instruction.
type I64Ne struct{ simple }

func (I64Ne) Op() opcode.Opcode { return opcode.I64Ne }

// I64LtS represents the Wasm i64.lt_s instruction.
type I64LtS struct{ simple }

func (I64LtS) Op() opcode.Opcode { return opcode.I64LtS }

// I64GtS represents the Wasm i64.gt_s instruction.
type I64GtS struct{ simple }

func (I64GtS) Op() opcode.Opcode { return opcode.I64GtS }

// I64LeS represents the Wasm i64.le_s instruction.
type I64LeS struct{ simple }

func (I64LeS) Op() opcode.Opcode { return opcode.I64LeS }

// I64GeS represents the Wasm i64.ge_s instruction.
type I64GeS struct{ simple }

func (I64GeS) Op() opcode.Opcode { return opcode.I64GeS }

// I64Add represents the Wasm i64.add instruction.
type I64Add struct{ simple }

func (I64Add) Op() opcode.Opcode { return opcode.I64Add }

// I64Sub represents the Wasm i64.sub instruction.
type I64Sub struct{ simple }

func (I64Sub) Op() opcode.Opcode { return opcode.I64Sub }

// I64Mul represents the Wasm i64.mul instruction.
type I64Mul struct{ simple }

func (I64Mul) Op() opcode.Opcode { return opcode.I64Mul }

// I64DivS represents the Wasm i64.div_s instruction.
type I64DivS struct{ simple }

func (I64DivS) Op() opcode.Opcode { return opcode.I64DivS }

// I64DivU represents the Wasm i64.div_u instruction.
type I64DivU struct{ simple }

func (I64DivU) Op() opcode.Opcode { return opcode.I64DivU }

// I64And represents the Wasm i64.and instruction.
type I64And struct{ simple }

func (I64And) Op() opcode.Opcode { return opcode.I64And }

// I64Or represents the Wasm i64.or instruction.
type I64Or struct{ simple }

func (I64Or) Op() opcode.Opcode { return opcode.I64Or }

// I64Xor represents the Wasm i64.xor instruction.
type I64Xor struct{ simple }

func (I64Xor) Op() opcode.Opcode { return opcode.I64Xor }

// I64Shl represents the Wasm i64.shl instruction.
type I64Shl struct{ simple }

func (I64Shl) Op() opcode.Opcode { return opcode.I64Shl }

// I64ShrS represents the Wasm i64.shr_s instruction.
type I64ShrS struct{ simple }

func (I64ShrS) Op() opcode.Opcode { return opcode.I64ShrS }

// I64ShrU represents the Wasm i64.shr_u instruction.
type I64ShrU struct{ simple }

func (I64ShrU) Op() opcode.Opcode { return opcode.I64ShrU }

// I64Clz represents the Wasm i64.clz instruction. Used by the cost tracker's
// NLogN and LogN formulas: log2(n) = 63 - clz(n).
type I64Clz struct{ simple }

func (I64Clz) Op() opcode.Opcode { return opcode.I64Clz }

// I32WrapI64 represents the Wasm i32.wrap_i64 instruction.
type I32WrapI64 struct{ simple }

func (I32WrapI64) Op() opcode.Opcode { return opcode.I32WrapI64 }

// I64ExtendI32S represents the Wasm i64.extend_i32_s instruction.
type I64ExtendI32S struct{ simple }

func (I64ExtendI32S) Op() opcode.Opcode { return opcode.I64ExtendI32S }

// I64ExtendI32U represents the Wasm i64.extend_i32_u instruction.
type I64ExtendI32U struct{ simple }

func (I64ExtendI32U) Op() opcode.Opcode { return opcode.I64ExtendI32U }
