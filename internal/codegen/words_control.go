package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
	"github.com/clarlang/c2w/internal/wasm/types"
)

// selectValue emits cond, then branches to either thenInstrs or elseInstrs,
// both of which must leave a value shaped like t on the stack. Rather than
// lean on a multi-value if/else (the shared If type models only a single
// Wasm result, per the structured-control-flow discipline in emit.go/
// control.go), both branches store their result into freshly declared
// locals and the merged value is reloaded after the if — this composes for
// any shape, including the common single-slot (bool, i32) case.
func (g *Generator) selectValue(b *builder, cond, thenInstrs, elseInstrs []instruction.Instruction, t ast.Type) []instruction.Instruction {
	indices := b.declareLocal(t)
	ifInstr := instruction.If{
		Then: seq(thenInstrs, setLocals(indices)),
		Else: seq(elseInstrs, setLocals(indices)),
	}
	return seq(cond, []instruction.Instruction{ifInstr}, getLocals(indices))
}

func init() {
	registerWord("begin", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		return g.lowerBody(b, e.Args)
	})

	registerWord("if", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 3 {
			return nil, argumentCountMismatch(e.Location, e.Op, 3, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		cond, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		thenInstrs, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		elseInstrs, err := g.lower(b, e.Args[2])
		if err != nil {
			return nil, err
		}
		return seq(charge, g.selectValue(b, cond, thenInstrs, elseInstrs, e.Type)), nil
	})

	registerWord("let", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		lb, ok := e.Extra.(ast.LetBinding)
		if !ok {
			return nil, internalError(e.Location, "let: missing binding data")
		}
		charge, err := g.chargeWord(e.Op, int64(len(lb.Names)))
		if err != nil {
			return nil, err
		}
		b.pushScope()
		defer b.popScope()
		out := append([]instruction.Instruction{}, charge...)
		for i, name := range lb.Names {
			initInstrs, err := g.lower(b, lb.Inits[i])
			if err != nil {
				return nil, err
			}
			indices := b.declareLocal(lb.Types[i])
			out = append(out, initInstrs...)
			out = append(out, setLocals(indices)...)
			b.bind(name, indices)
		}
		body, err := g.lowerBody(b, lb.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
		return out, nil
	})

	registerWord("some", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		inner, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		return seq(i32Const(1), inner), nil
	})

	registerWord("none", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		opt, ok := e.Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "none: expected optional type, got %s", e.Type)
		}
		return seq(i32Const(0), zeroValue(b, opt.Some)), nil
	})

	registerWord("ok", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		resp, ok := e.Type.(ast.ResponseType)
		if !ok {
			return nil, internalError(e.Location, "ok: expected response type, got %s", e.Type)
		}
		inner, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		return seq(i32Const(1), inner, zeroValue(b, resp.Err)), nil
	})

	registerWord("err", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		resp, ok := e.Type.(ast.ResponseType)
		if !ok {
			return nil, internalError(e.Location, "err: expected response type, got %s", e.Type)
		}
		inner, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		return seq(i32Const(0), zeroValue(b, resp.Ok), inner), nil
	})

	registerWord("is-some", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		return indicatorTest(g, b, e, true)
	})
	registerWord("is-none", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		return indicatorTest(g, b, e, false)
	})
	registerWord("is-ok", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		return indicatorTest(g, b, e, true)
	})
	registerWord("is-err", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		return indicatorTest(g, b, e, false)
	})

	registerWord("unwrap-panic", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		return g.unwrapOrTrap(b, e, nil)
	})
	registerWord("unwrap-err-panic", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		return g.unwrapErrOrTrap(b, e, nil)
	})

	registerWord("unwrap!", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		thenwise, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		instrs, err := g.unwrapOrTrap(b, e, &earlyReturn{instrs: seq(thenwise, b.postlude(), []instruction.Instruction{instruction.Return{}})})
		if err != nil {
			return nil, err
		}
		return seq(charge, instrs), nil
	})

	registerWord("unwrap-err!", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		thenwise, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		return g.unwrapErrOrTrap(b, e, &earlyReturn{instrs: seq(thenwise, b.postlude(), []instruction.Instruction{instruction.Return{}})})
	})

	registerWord("try!", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 1 {
			return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
		}
		return g.tryBang(b, e)
	})

	registerWord("asserts!", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		cond, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		thenwise, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		escape := seq(thenwise, b.postlude(), []instruction.Instruction{instruction.Return{}})
		// inverted: trap/return only when the assertion is false.
		negated := seq(cond, []instruction.Instruction{instruction.I32Eqz{}})
		return seq(charge, negated, []instruction.Instruction{instruction.If{Then: escape}}), nil
	})

	registerWord("default-to", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		if len(e.Args) != 2 {
			return nil, argumentCountMismatch(e.Location, e.Op, 2, len(e.Args))
		}
		def, err := g.lower(b, e.Args[0])
		if err != nil {
			return nil, err
		}
		opt, err := g.lower(b, e.Args[1])
		if err != nil {
			return nil, err
		}
		optType, ok := e.Args[1].Type.(ast.OptionalType)
		if !ok {
			return nil, internalError(e.Location, "default-to: expected optional argument, got %s", e.Args[1].Type)
		}
		indices := b.declareLocal(e.Args[1].Type)
		bindOpt := setLocals(indices)
		someVal := getLocals(indices[1:])
		return seq(opt, bindOpt,
			g.selectValue(b, getLocals(indices[:1]), someVal, def, optType.Some)), nil
	})

	registerWord("match", func(g *Generator, b *builder, e ast.Expr) ([]instruction.Instruction, error) {
		arm, ok := e.Extra.(ast.MatchArm)
		if !ok {
			return nil, internalError(e.Location, "match: missing arm data")
		}
		charge, err := g.chargeWord(e.Op, 1)
		if err != nil {
			return nil, err
		}
		instrs, err := g.lowerMatch(b, e, arm)
		if err != nil {
			return nil, err
		}
		return seq(charge, instrs), nil
	})
}

// lowerMatch lowers (match subject ok-bind ok-body err-bind err-body) or the
// optional form (match subject some-bind some-body none-body): the subject
// is evaluated once, its indicator selects which bind name sees the
// payload, and both arms are lowered to the match expression's common
// result type via selectValue.
func (g *Generator) lowerMatch(b *builder, e ast.Expr, arm ast.MatchArm) ([]instruction.Instruction, error) {
	subject, err := g.lower(b, arm.Subject)
	if err != nil {
		return nil, err
	}
	indices := b.declareLocal(arm.Subject.Type)
	bind := setLocals(indices)

	var payloadType ast.Type
	switch t := arm.Subject.Type.(type) {
	case ast.ResponseType:
		payloadType = t.Ok
	case ast.OptionalType:
		payloadType = t.Some
	default:
		return nil, internalError(e.Location, "match: expected optional or response subject, got %s", arm.Subject.Type)
	}
	nPayload := StackSize(payloadType)
	payload := indices[1 : 1+nPayload]

	b.pushScope()
	b.bind(arm.SomeOrOkBind, payload)
	thenBody, err := g.lowerBody(b, arm.SomeOrOkBody)
	b.popScope()
	if err != nil {
		return nil, err
	}

	b.pushScope()
	if arm.IsResponse {
		respType := arm.Subject.Type.(ast.ResponseType)
		errPayload := indices[1+nPayload : 1+nPayload+StackSize(respType.Err)]
		b.bind(arm.NoneOrErrBind, errPayload)
	}
	elseBody, err := g.lowerBody(b, arm.NoneOrErrBody)
	b.popScope()
	if err != nil {
		return nil, err
	}

	cond := []instruction.Instruction{instruction.GetLocal{Index: indices[0]}}
	return seq(subject, bind, g.selectValue(b, cond, thenBody, elseBody, e.Type)), nil
}

// zeroValue emits a zero-filled value shaped like t, used to pad the unused
// arm of an optional/response constructor so its stack shape matches
// Shape(t) regardless of which arm is populated.
func zeroValue(b *builder, t ast.Type) []instruction.Instruction {
	shape := Shape(t)
	out := make([]instruction.Instruction, 0, len(shape))
	for _, vt := range shape {
		out = append(out, zeroConstFor(vt))
	}
	return out
}

func zeroConstFor(vt types.ValueType) instruction.Instruction {
	if vt == types.I64 {
		return instruction.I64Const{Value: 0}
	}
	return instruction.I32Const{Value: 0}
}

// indicatorTest extracts an optional's/response's leading i32 indicator and
// compares it against want (true for is-some/is-ok, false for is-none/is-err).
func indicatorTest(g *Generator, b *builder, e ast.Expr, want bool) ([]instruction.Instruction, error) {
	if len(e.Args) != 1 {
		return nil, argumentCountMismatch(e.Location, e.Op, 1, len(e.Args))
	}
	inner, err := g.lower(b, e.Args[0])
	if err != nil {
		return nil, err
	}
	indices := b.declareLocal(e.Args[0].Type)
	bind := setLocals(indices)
	cmp := []instruction.Instruction{instruction.GetLocal{Index: indices[0]}}
	if want {
		return seq(inner, bind, cmp, []instruction.Instruction{instruction.I32Const{Value: 0}, instruction.I32Ne{}}), nil
	}
	return seq(inner, bind, cmp, []instruction.Instruction{instruction.I32Eqz{}}), nil
}

// earlyReturn holds the instructions to run and then return from the
// enclosing function when an unwrap fails and no panic branch applies.
type earlyReturn struct {
	instrs []instruction.Instruction
}

// unwrapOrTrap lowers (unwrap-panic opt)/(unwrap! opt else): if the subject
// (an optional or an ok response) is empty/err, either traps (onFail == nil)
// or runs onFail.instrs and returns. Otherwise leaves the payload on the
// stack.
func (g *Generator) unwrapOrTrap(b *builder, e ast.Expr, onFail *earlyReturn) ([]instruction.Instruction, error) {
	subject, err := g.lower(b, e.Args[0])
	if err != nil {
		return nil, err
	}
	var payloadType ast.Type
	switch t := e.Args[0].Type.(type) {
	case ast.OptionalType:
		payloadType = t.Some
	case ast.ResponseType:
		payloadType = t.Ok
	default:
		return nil, internalError(e.Location, "unwrap: expected optional or response, got %s", e.Args[0].Type)
	}
	indices := b.declareLocal(e.Args[0].Type)
	bind := setLocals(indices)
	payload := indices[1 : 1+StackSize(payloadType)]
	fail, err := g.failBranch(onFail)
	if err != nil {
		return nil, err
	}
	check := []instruction.Instruction{
		instruction.GetLocal{Index: indices[0]}, instruction.I32Eqz{},
		instruction.If{Then: fail},
	}
	return seq(subject, bind, check, getLocals(payload)), nil
}

// unwrapErrOrTrap lowers (unwrap-err-panic resp)/(unwrap-err! resp else):
// the mirror of unwrapOrTrap over a response's Err arm, triggered when the
// response is Ok instead of Err.
func (g *Generator) unwrapErrOrTrap(b *builder, e ast.Expr, onFail *earlyReturn) ([]instruction.Instruction, error) {
	subject, err := g.lower(b, e.Args[0])
	if err != nil {
		return nil, err
	}
	resp, ok := e.Args[0].Type.(ast.ResponseType)
	if !ok {
		return nil, internalError(e.Location, "unwrap-err: expected response, got %s", e.Args[0].Type)
	}
	indices := b.declareLocal(e.Args[0].Type)
	bind := setLocals(indices)
	nOk := StackSize(resp.Ok)
	errPayload := indices[1+nOk:]
	fail, err := g.failBranch(onFail)
	if err != nil {
		return nil, err
	}
	check := []instruction.Instruction{
		instruction.GetLocal{Index: indices[0]}, instruction.I32Eqz{}, instruction.I32Eqz{},
		instruction.If{Then: fail},
	}
	return seq(subject, bind, check, getLocals(errPayload)), nil
}

func (g *Generator) failBranch(onFail *earlyReturn) ([]instruction.Instruction, error) {
	if onFail != nil {
		return onFail.instrs, nil
	}
	return g.emitTrap(trapPanic)
}

// tryBang lowers (try! resp-or-opt): propagates Err/None upward by returning
// it immediately (reshaped to the enclosing function's declared return
// type), otherwise continues with the Ok/Some payload.
func (g *Generator) tryBang(b *builder, e ast.Expr) ([]instruction.Instruction, error) {
	subject, err := g.lower(b, e.Args[0])
	if err != nil {
		return nil, err
	}
	indices := b.declareLocal(e.Args[0].Type)
	bind := setLocals(indices)

	var payloadType ast.Type
	switch t := e.Args[0].Type.(type) {
	case ast.OptionalType:
		payloadType = t.Some
	case ast.ResponseType:
		payloadType = t.Ok
	default:
		return nil, internalError(e.Location, "try!: expected optional or response, got %s", e.Args[0].Type)
	}
	payload := indices[1 : 1+StackSize(payloadType)]
	propagate := seq(getLocals(indices), b.postlude(), []instruction.Instruction{instruction.Return{}})
	check := []instruction.Instruction{
		instruction.GetLocal{Index: indices[0]}, instruction.I32Eqz{},
		instruction.If{Then: propagate},
	}
	return seq(subject, bind, check, getLocals(payload)), nil
}
