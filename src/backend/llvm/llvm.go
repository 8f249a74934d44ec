// Package llvm implements the optional --llvm output mode: a textual
// LLVM IR emitter driven from the same lir.Module that feeds the ARM32
// selector.
//
// Built around the ctx/builder/module triple from tinygo.org/x/go-llvm
// and a map-keyed symbol table from source identifiers to llvm.Value,
// narrowed to MiniC's single scalar type (i32/i1/pointers/arrays-of-i32
// only) and a single-goroutine walk: this package walks
// lir.Module.Functions/Globals once, in order, on the calling goroutine.
// MiniC's IR is already fully lowered and ordered by the time it
// reaches this package, so there is no parallel-decomposable pass left
// to run here.
package llvm

import (
	"fmt"

	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/ir/types"
	goLLVM "tinygo.org/x/go-llvm"
)

// Emit lowers m through a one-shot LLVM IR builder walk and returns the
// resulting module's textual IR.
func Emit(m *lir.Module) (string, error) {
	ctx := goLLVM.NewContext()
	defer ctx.Dispose()
	b := ctx.NewBuilder()
	defer b.Dispose()
	mod := ctx.NewModule(m.Name)
	defer mod.Dispose()

	t := &translator{
		ctx:     ctx,
		b:       b,
		mod:     mod,
		i32:     ctx.Int32Type(),
		i1:      ctx.Int1Type(),
		globals: make(map[*lir.GlobalVariable]goLLVM.Value),
		funcs:   make(map[*lir.Function]goLLVM.Value),
	}

	for _, g := range m.Globals {
		t.declareGlobal(g)
	}
	for _, fn := range m.Functions {
		t.declareFunction(fn)
	}
	for _, fn := range m.Functions {
		if err := t.defineFunction(fn); err != nil {
			return "", err
		}
	}
	return mod.String(), nil
}

type translator struct {
	ctx     goLLVM.Context
	b       goLLVM.Builder
	mod     goLLVM.Module
	i32, i1 goLLVM.Type

	globals map[*lir.GlobalVariable]goLLVM.Value
	funcs   map[*lir.Function]goLLVM.Value

	// Per-function state, reset at the start of defineFunction.
	values map[lir.Value]goLLVM.Value
	blocks map[*lir.Instruction]goLLVM.BasicBlock
}

func globalSymbol(g *lir.GlobalVariable) string {
	return "var_" + g.Name()[1:] // strip the leading '@'
}

// llvmType translates a MiniC type to its LLVM counterpart. Arrays
// become nested LLVM array types, innermost dimension last (matching
// types.Type.Dims' declaration order).
func (t *translator) llvmType(ty types.Type) goLLVM.Type {
	switch ty.Kind {
	case types.KindVoid:
		return t.ctx.VoidType()
	case types.KindInt32:
		return t.i32
	case types.KindBool:
		return t.i1
	case types.KindPointer:
		return goLLVM.PointerType(t.llvmType(*ty.Elem), 0)
	case types.KindArray:
		at := t.llvmType(*ty.Elem)
		for i := len(ty.Dims) - 1; i >= 0; i-- {
			n := ty.Dims[i]
			if n <= 0 {
				n = 1 // size-erased leading dimension: pick 1 for the textual type.
			}
			at = goLLVM.ArrayType(at, n)
		}
		return at
	default:
		return t.i32
	}
}

// paramType is llvmType, except an array parameter decays to a pointer
// to its element type, matching C's own array-parameter decay rule.
func (t *translator) paramType(ty types.Type) goLLVM.Type {
	if ty.IsArray() {
		return goLLVM.PointerType(t.llvmType(*ty.Elem), 0)
	}
	return t.llvmType(ty)
}

func (t *translator) declareGlobal(g *lir.GlobalVariable) {
	ty := t.llvmType(g.Type())
	gv := goLLVM.AddGlobal(t.mod, ty, globalSymbol(g))
	if g.InBSS() {
		gv.SetInitializer(goLLVM.ConstNull(ty))
	} else {
		gv.SetInitializer(goLLVM.ConstInt(t.i32, uint64(uint32(g.Initializer.V)), false))
	}
	t.globals[g] = gv
}

func (t *translator) declareFunction(fn *lir.Function) {
	paramTypes := make([]goLLVM.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = t.paramType(p.Type())
	}
	fnType := goLLVM.FunctionType(t.llvmType(fn.ReturnType()), paramTypes, false)
	f := goLLVM.AddFunction(t.mod, fn.SimpleName(), fnType)
	for i, p := range fn.Params {
		f.Param(i).SetName(p.ParamName())
	}
	t.funcs[fn] = f
}

// defineFunction builds fn's body: one alloca per Local (in the entry
// block, the usual LLVM idiom for addressable locals) and one basic
// block per IR label, then a single linear walk translating every
// instruction.
func (t *translator) defineFunction(fn *lir.Function) error {
	f := t.funcs[fn]
	t.values = make(map[lir.Value]goLLVM.Value)
	t.blocks = make(map[*lir.Instruction]goLLVM.BasicBlock)

	entry := t.ctx.AddBasicBlock(f, "entry")
	t.b.SetInsertPointAtEnd(entry)

	for i, p := range fn.Params {
		t.values[p] = f.Param(i)
	}
	for _, lo := range fn.Locals {
		var ty goLLVM.Type
		if lo.IsParamCopy && lo.Type().IsArray() {
			ty = t.paramType(lo.Type())
		} else {
			ty = t.llvmType(lo.Type())
		}
		t.values[lo] = t.b.CreateAlloca(ty, lo.Name())
	}
	for _, instr := range fn.Body {
		if instr.Op == lir.OpLabel {
			t.blocks[instr] = t.ctx.AddBasicBlock(f, instr.LabelName)
		}
	}

	cur := entry
	var pendingArgs []goLLVM.Value
	for _, instr := range fn.Body {
		switch instr.Op {
		case lir.OpEntry:
			// Entry block already opened above.
		case lir.OpLabel:
			bb := t.blocks[instr]
			if !blockTerminated(cur) {
				t.b.CreateBr(bb)
			}
			t.b.SetInsertPointAtEnd(bb)
			cur = bb
		case lir.OpGoto:
			if instr.Cond == nil {
				t.b.CreateBr(t.blocks[instr.Targets[0]])
			} else {
				cond := t.readBool(instr.Cond)
				t.b.CreateCondBr(cond, t.blocks[instr.Targets[0]], t.blocks[instr.Targets[1]])
			}
		case lir.OpAssign:
			v := t.read(instr.B)
			t.b.CreateStore(v, t.values[instr.A])
		case lir.OpAddI, lir.OpSubI, lir.OpMulI, lir.OpDivI, lir.OpModI:
			a := t.read(instr.A)
			bOperand := t.read(instr.B)
			t.values[instr] = t.genArith(instr.Op, a, bOperand)
		case lir.OpAddP:
			base := t.readAddr(instr.A)
			off := t.read(instr.B)
			bytePtr := t.b.CreateBitCast(base, goLLVM.PointerType(t.ctx.Int8Type(), 0), "")
			gep := t.b.CreateGEP(t.ctx.Int8Type(), bytePtr, []goLLVM.Value{off}, "")
			resultElem := t.llvmType(*instr.Typ.Elem)
			t.values[instr] = t.b.CreateBitCast(gep, goLLVM.PointerType(resultElem, 0), "")
		case lir.OpLtI, lir.OpGtI, lir.OpLeI, lir.OpGeI, lir.OpEqI, lir.OpNeI:
			a := t.read(instr.A)
			bOperand := t.read(instr.B)
			t.values[instr] = t.b.CreateICmp(predFor(instr.Op), a, bOperand, "")
		case lir.OpArg:
			pendingArgs = append(pendingArgs, t.read(instr.A))
		case lir.OpFuncCall:
			callee := t.funcs[instr.Callee]
			ret := t.b.CreateCall(calleeFnType(callee), callee, pendingArgs, "")
			pendingArgs = nil
			if instr.HasResult() {
				t.values[instr] = ret
			}
		case lir.OpLoadArray:
			addr := t.read(instr.A)
			t.values[instr] = t.b.CreateLoad(t.llvmType(instr.Typ), addr, "")
		case lir.OpStoreArray:
			addr := t.read(instr.A)
			v := t.read(instr.B)
			t.b.CreateStore(v, addr)
		case lir.OpExit:
			if instr.ReturnVal != nil {
				t.b.CreateRet(t.read(instr.ReturnVal))
			} else {
				t.b.CreateRetVoid()
			}
		default:
			return fmt.Errorf("llvm backend: unsupported IR op %s", instr.Op)
		}
	}
	return nil
}

// read materializes v's scalar/pointer SSA value: a Local or global is
// loaded from its addressable home (alloca or global), while a formal
// param or temp is already an SSA value and is returned as is.
func (t *translator) read(v lir.Value) goLLVM.Value {
	switch val := v.(type) {
	case *lir.ConstInt:
		return goLLVM.ConstInt(t.i32, uint64(uint32(val.V)), false)
	case *lir.GlobalVariable:
		return t.b.CreateLoad(t.llvmType(val.Type()), t.globals[val], "")
	case *lir.LocalVariable:
		return t.b.CreateLoad(t.allocaElemType(val.IsParamCopy, val.Type()), t.values[val], "")
	case *lir.FormalParam:
		return t.values[val]
	case *lir.Instruction:
		return t.values[val]
	default:
		return goLLVM.ConstInt(t.i32, 0, false)
	}
}

// readAddr materializes the pointer v denotes: a Local array's own
// alloca, a global's address, or an already-pointer-valued temp/local.
func (t *translator) readAddr(v lir.Value) goLLVM.Value {
	switch val := v.(type) {
	case *lir.GlobalVariable:
		return t.globals[val]
	case *lir.LocalVariable:
		if !val.IsParamCopy && val.Type().IsArray() {
			return t.values[val]
		}
		return t.read(val)
	default:
		return t.read(v)
	}
}

func (t *translator) readBool(v lir.Value) goLLVM.Value {
	raw := t.read(v)
	if raw.Type().TypeKind() == goLLVM.IntegerTypeKind && raw.Type().IntTypeWidth() == 1 {
		return raw
	}
	return t.b.CreateICmp(goLLVM.IntNE, raw, goLLVM.ConstInt(raw.Type(), 0, false), "")
}

func (t *translator) allocaElemType(isParamCopy bool, ty types.Type) goLLVM.Type {
	if isParamCopy && ty.IsArray() {
		return t.paramType(ty)
	}
	return t.llvmType(ty)
}

func (t *translator) genArith(op lir.Op, a, b goLLVM.Value) goLLVM.Value {
	switch op {
	case lir.OpAddI:
		return t.b.CreateAdd(a, b, "")
	case lir.OpSubI:
		return t.b.CreateSub(a, b, "")
	case lir.OpMulI:
		return t.b.CreateMul(a, b, "")
	case lir.OpDivI:
		return t.b.CreateSDiv(a, b, "")
	case lir.OpModI:
		return t.b.CreateSRem(a, b, "")
	default:
		return a
	}
}

func predFor(op lir.Op) goLLVM.IntPredicate {
	switch op {
	case lir.OpLtI:
		return goLLVM.IntSLT
	case lir.OpGtI:
		return goLLVM.IntSGT
	case lir.OpLeI:
		return goLLVM.IntSLE
	case lir.OpGeI:
		return goLLVM.IntSGE
	case lir.OpEqI:
		return goLLVM.IntEQ
	default:
		return goLLVM.IntNE
	}
}

// blockTerminated reports whether bb's last instruction is already a
// terminator (br/cond-br/ret), so the per-label fallthrough-br insertion
// doesn't double-terminate a block that already ended in one (e.g. the
// block just emitted an unconditional Goto).
func blockTerminated(bb goLLVM.BasicBlock) bool {
	last := bb.LastInstruction()
	if last.IsNil() {
		return false
	}
	switch last.InstructionOpcode() {
	case goLLVM.Br, goLLVM.Ret:
		return true
	default:
		return false
	}
}

func calleeFnType(f goLLVM.Value) goLLVM.Type {
	return f.GlobalValueType()
}
