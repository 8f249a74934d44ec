package lir

import (
	"github.com/yumety/minic/src/ir/types"
)

// Function is one MiniC function lowered to linear IR: an ordered
// instruction list plus the bookkeeping the back end needs.
type Function struct {
	m          *Module
	name       string
	returnType types.Type
	Params     []*FormalParam
	Locals     []*LocalVariable
	Body       []*Instruction // InterCode: ordered instruction list

	Entry      *Instruction
	ExitLabel  *Instruction
	ReturnSlot *LocalVariable // nil for void functions

	MaxCallArgCount int
	ExistsCall      bool
	ProtectedRegs   map[int]bool // callee-saved registers this function's body pins; the ARM32 selector does not fill it and its prologue saves only fp and lr

	localSeq int // shared %lN counter across params then locals
	tempSeq  int // %tN counter
	labelSeq int // .Lk counter, function-local
}

// Name returns the function's printable IR name (@name).
func (f *Function) Name() string     { return "@" + f.name }
func (f *Function) ReturnType() types.Type { return f.returnType }
func (f *Function) SimpleName() string     { return f.name }

func (f *Function) nextLocalID() int {
	id := f.localSeq
	f.localSeq++
	return id
}

func (f *Function) nextTempID() int {
	id := f.tempSeq
	f.tempSeq++
	return id
}

// NewLabel creates a fresh, not-yet-placed .Lk label instruction. The
// caller must append it to Body exactly once.
func (f *Function) NewLabel() *Instruction {
	name := fmtLabel(f.labelSeq)
	f.labelSeq++
	return &Instruction{fn: f, Op: OpLabel, LabelName: name}
}

// AddParam creates and appends a FormalParam to the Function's signature.
func (f *Function) AddParam(name string, typ types.Type) *FormalParam {
	p := &FormalParam{id: f.nextLocalID(), name: name, typ: typ}
	f.Params = append(f.Params, p)
	return p
}

// AddLocal creates and appends a LocalVariable. name is "" for an anonymous
// compiler-introduced temporary (e.g. the result of bool-widening), which
// receives a synthetic %lN name.
func (f *Function) AddLocal(name string, typ types.Type) *LocalVariable {
	v := &LocalVariable{id: f.nextLocalID(), name: name, typ: typ}
	f.Locals = append(f.Locals, v)
	return v
}

// Append adds instr to the end of the Function body.
func (f *Function) Append(instr *Instruction) {
	instr.fn = f
	f.Body = append(f.Body, instr)
}

// emitValue appends instr to the body and assigns it a %tN identity.
func (f *Function) emitValue(instr *Instruction) *Instruction {
	instr.id = f.nextTempID()
	f.Append(instr)
	return instr
}

// EmitEntry appends the Function's single Entry instruction.
func (f *Function) EmitEntry() *Instruction {
	i := &Instruction{Op: OpEntry}
	f.Entry = i
	f.Append(i)
	return i
}

// EmitExit appends the Function's single Exit instruction. ret is nil for
// void functions.
func (f *Function) EmitExit(ret Value) *Instruction {
	i := &Instruction{Op: OpExit, ReturnVal: ret}
	f.Append(i)
	return i
}

// EmitLabel places lbl (created via NewLabel) at the current position.
func (f *Function) EmitLabel(lbl *Instruction) {
	f.Append(lbl)
}

// EmitGoto appends an unconditional branch to target.
func (f *Function) EmitGoto(target *Instruction) *Instruction {
	i := &Instruction{Op: OpGoto, Targets: []*Instruction{target}}
	f.Append(i)
	return i
}

// EmitCondGoto appends a conditional branch: to trueTarget when cond is
// non-zero, to falseTarget otherwise.
func (f *Function) EmitCondGoto(cond Value, trueTarget, falseTarget *Instruction) *Instruction {
	i := &Instruction{Op: OpGoto, Cond: cond, Targets: []*Instruction{trueTarget, falseTarget}}
	f.Append(i)
	return i
}

// EmitAssign appends a Move dst = src.
func (f *Function) EmitAssign(dst, src Value) *Instruction {
	i := &Instruction{Op: OpAssign, A: dst, B: src, Typ: dst.Type()}
	f.Append(i)
	return i
}

// EmitBinOp appends a binary arithmetic, relational or pointer-add
// instruction and returns its result Value.
func (f *Function) EmitBinOp(op Op, a, b Value, resultType types.Type) *Instruction {
	i := &Instruction{Op: op, A: a, B: b, Typ: resultType}
	return f.emitValue(i)
}

// EmitArg appends an Arg instruction staging v for the next FuncCall.
// Arg instructions for one call must be contiguous and immediately precede
// the FuncCall.
func (f *Function) EmitArg(v Value) *Instruction {
	i := &Instruction{Op: OpArg, A: v}
	f.Append(i)
	return i
}

// EmitCall appends a FuncCall to callee with the given already-Arg'd
// arguments and returns its result Value (meaningless for void callees).
func (f *Function) EmitCall(callee *Function, args []Value) *Instruction {
	i := &Instruction{Op: OpFuncCall, Callee: callee, CallArgs: args, Typ: callee.returnType}
	if len(args) > f.MaxCallArgCount {
		f.MaxCallArgCount = len(args)
	}
	f.ExistsCall = true
	return f.emitValue(i)
}

// EmitLoadArray appends a LoadArray through addr and returns its result.
func (f *Function) EmitLoadArray(addr Value, elemType types.Type) *Instruction {
	i := &Instruction{Op: OpLoadArray, A: addr, Typ: elemType}
	return f.emitValue(i)
}

// EmitStoreArray appends a StoreArray of val through addr.
func (f *Function) EmitStoreArray(addr, val Value) *Instruction {
	i := &Instruction{Op: OpStoreArray, A: addr, B: val}
	f.Append(i)
	return i
}
