package lir

import (
	"fmt"

	"github.com/yumety/minic/src/ir/types"
)

// Op identifies the operator of an Instruction. Behaviour is
// dispatched on this tag rather than through a hierarchy of
// instruction types.
type Op int

const (
	OpEntry Op = iota
	OpExit
	OpLabel
	OpGoto   // unconditional (len(Targets)==1) or conditional (len(Targets)==2: true, false) branch
	OpAssign // move: A = B
	OpAddI
	OpSubI
	OpMulI
	OpDivI
	OpModI
	OpAddP // pointer-add: A (Pointer) + B (byte offset), result Pointer(elem) — distinct from AddI
	OpLtI
	OpGtI
	OpLeI
	OpGeI
	OpEqI
	OpNeI
	OpArg
	OpFuncCall
	OpLoadArray
	OpStoreArray
)

var opNames = [...]string{
	"entry", "exit", "label", "goto", "assign",
	"add", "sub", "mul", "div", "mod", "addp",
	"icmp_lt", "icmp_gt", "icmp_le", "icmp_ge", "icmp_eq", "icmp_ne",
	"arg", "call", "load_array", "store_array",
}

func (op Op) String() string {
	if int(op) < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

// relOps lists the relational/equality operators that share one emission
// shape (CmpI producing an i1).
var relOps = map[Op]bool{OpLtI: true, OpGtI: true, OpLeI: true, OpGeI: true, OpEqI: true, OpNeI: true}

// IsRelational reports whether op is one of the six comparison operators.
func (op Op) IsRelational() bool { return relOps[op] }

// IsArithmetic reports whether op is one of the five binary arithmetic
// operators lowered directly from source (+ - * / %).
func (op Op) IsArithmetic() bool {
	switch op {
	case OpAddI, OpSubI, OpMulI, OpDivI, OpModI:
		return true
	default:
		return false
	}
}

// Instruction is every non-Value-constructor IR operation and, when it
// produces a result, a Value in its own right (its printed name is the IR
// temp %tN). Field meaning depends on Op:
//
//   - OpEntry, OpExit: ReturnVal set on OpExit for non-void functions.
//   - OpLabel: LabelName is the printable .Lk name.
//   - OpGoto: Cond nil for unconditional; Targets has 1 (unconditional) or
//     2 (conditional: true-target, false-target) Label instructions.
//   - OpAssign: A is the destination Value, B is the source Value.
//   - arithmetic/relational/OpAddP: A, B are the two operands.
//   - OpArg: A is the single argument Value being staged for the next call.
//   - OpFuncCall: Callee is the target Function, CallArgs the ordered
//     argument list (mirroring the immediately preceding contiguous Arg
//     instructions).
//   - OpLoadArray: A is the address Value to load through.
//   - OpStoreArray: A is the address Value, B is the value being stored.
type Instruction struct {
	regSlot
	fn  *Function
	id  int // identifies the %tN name for value-producing instructions
	Op  Op
	Typ types.Type

	A, B Value

	Cond    Value
	Targets []*Instruction

	LabelName string

	Callee   *Function
	CallArgs []Value

	ReturnVal Value

	// Dead is the one-bit dead flag: the ARM32 selector skips
	// emitting code for any instruction with Dead set to true.
	Dead bool
}

// Name returns the printed IR name of the Instruction when it produces a
// value (%tN); labels print their own LabelName instead.
func (i *Instruction) Name() string {
	if i.Op == OpLabel {
		return i.LabelName
	}
	return fmt.Sprintf("%%t%d", i.id)
}

// Type returns the Instruction's result type.
func (i *Instruction) Type() types.Type { return i.Typ }

// HasResult reports whether the Instruction is one that defines a usable
// value (as opposed to Entry/Exit/Label/Goto/Arg/StoreArray, which are
// executed purely for side effect or control flow).
func (i *Instruction) HasResult() bool {
	switch i.Op {
	case OpEntry, OpExit, OpLabel, OpGoto, OpArg, OpStoreArray:
		return false
	case OpFuncCall:
		return i.Typ.Kind != types.KindVoid
	default:
		return true
	}
}
