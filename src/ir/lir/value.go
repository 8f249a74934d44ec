package lir

import (
	"fmt"

	"github.com/yumety/minic/src/ir/types"
)

// Value is anything the IR can name: a constant, a variable, a formal
// parameter, a memory-resident temporary or an instruction's own result.
// Every Value carries a Type and a printable IR name.
type Value interface {
	Name() string
	Type() types.Type
}

// Addressable is implemented by Values the register allocator and
// instruction selector may bind to a physical register, or pin to an
// explicit frame-relative address, for part of their lifetime.
type Addressable interface {
	Value
	Reg() (reg int, ok bool)
	SetReg(reg int)
	ClearReg()
	Addr() (base Value, offset int, ok bool)
	SetAddr(base Value, offset int)
}

// regSlot is embedded by every Addressable concrete Value to provide the
// optional register id / memory address bookkeeping. Neither lowering
// nor the ARM32 selector (which keeps its own frame-slot map) sets
// these fields.
type regSlot struct {
	hasReg   bool
	reg      int
	hasAddr  bool
	addrBase Value
	addrOff  int
}

func (r *regSlot) Reg() (int, bool) { return r.reg, r.hasReg }
func (r *regSlot) SetReg(reg int)   { r.reg, r.hasReg = reg, true }
func (r *regSlot) ClearReg()        { r.hasReg = false }

func (r *regSlot) Addr() (Value, int, bool) { return r.addrBase, r.addrOff, r.hasAddr }
func (r *regSlot) SetAddr(base Value, offset int) {
	r.addrBase, r.addrOff, r.hasAddr = base, offset, true
}

// ConstInt is an interned 32-bit integer constant. Two ConstInt values
// with the same numeric value and owning Module are always the same
// pointer.
type ConstInt struct {
	V int32
}

func (c *ConstInt) Name() string     { return fmt.Sprintf("#%d", c.V) }
func (c *ConstInt) Type() types.Type { return types.Int32 }

// LocalVariable is a stack-allocated scalar or array local to one Function.
// Anonymous locals (created for the compiler's own intermediate needs, e.g.
// widened-bool results) receive a synthetic %lN name.
type LocalVariable struct {
	regSlot
	id       int
	name     string // user-given name, or "" for an anonymous local
	typ      types.Type
	IsParamCopy bool // true for the local created to shadow a FormalParam
}

func (v *LocalVariable) Name() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprintf("%%l%d", v.id)
}
func (v *LocalVariable) Type() types.Type { return v.typ }

// GlobalVariable is a module-level variable. A nil or zero Initializer
// places it in BSS; any other constant initializer places it in .data.
type GlobalVariable struct {
	name        string
	typ         types.Type
	Initializer *ConstInt
}

func (g *GlobalVariable) Name() string     { return "@" + g.name }
func (g *GlobalVariable) Type() types.Type { return g.typ }

// InBSS reports whether the global has no initializer, or a zero one.
func (g *GlobalVariable) InBSS() bool {
	return g.Initializer == nil || g.Initializer.V == 0
}

// FormalParam is the value holder for a function parameter before its
// copy-in Move to a same-named LocalVariable. Its Type may be an
// Array with a size-erased (0) leading dimension.
type FormalParam struct {
	regSlot
	id   int
	name string
	typ  types.Type
}

func (p *FormalParam) Name() string     { return fmt.Sprintf("%%l%d", p.id) }
func (p *FormalParam) Type() types.Type { return p.typ }
func (p *FormalParam) ParamName() string { return p.name }

// MemVariable is an addressable temporary with an explicit base-register
// plus offset. Nothing creates one at present: the ARM32 selector
// stages stack-passed call arguments in its own frame slots.
type MemVariable struct {
	regSlot
	id  int
	typ types.Type
}

func (m *MemVariable) Name() string     { return fmt.Sprintf("%%m%d", m.id) }
func (m *MemVariable) Type() types.Type { return m.typ }
