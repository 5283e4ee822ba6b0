package codegen

import (
	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/wasm/instruction"
)

// seq concatenates instruction slices in argument order; a thin helper so
// word handlers read as a linear list of the steps they emit.
func seq(parts ...[]instruction.Instruction) []instruction.Instruction {
	var out []instruction.Instruction
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func i32Const(v int32) []instruction.Instruction {
	return []instruction.Instruction{instruction.I32Const{Value: v}}
}

func i64Const(v int64) []instruction.Instruction {
	return []instruction.Instruction{instruction.I64Const{Value: v}}
}

func getLocals(indices []uint32) []instruction.Instruction {
	instrs := make([]instruction.Instruction, len(indices))
	for i, idx := range indices {
		instrs[i] = instruction.GetLocal{Index: idx}
	}
	return instrs
}

func setLocals(indices []uint32) []instruction.Instruction {
	// locals are set in reverse so that the first index receives the first
	// value pushed, matching the stack's LIFO pop order.
	instrs := make([]instruction.Instruction, len(indices))
	for i := len(indices) - 1; i >= 0; i-- {
		instrs[len(indices)-1-i] = instruction.SetLocal{Index: indices[i]}
	}
	return instrs
}

// callByName emits a call to a declared (imported or defined) function by
// its source/host name, resolving it through the function-index table.
func (g *Generator) callByName(name string) ([]instruction.Instruction, error) {
	idx, err := g.function(name)
	if err != nil {
		return nil, err
	}
	return []instruction.Instruction{instruction.Call{Index: idx}}, nil
}

// dropType emits the instructions needed to discard a value of type t that
// is sitting on top of the operand stack, one Drop per stack slot in its
// shape (shapes flatten composite types to a fixed number of scalar slots,
// so a single Drop per slot is always correct).
func dropType(t ast.Type) []instruction.Instruction {
	n := StackSize(t)
	instrs := make([]instruction.Instruction, n)
	for i := range instrs {
		instrs[i] = instruction.Drop{}
	}
	return instrs
}
