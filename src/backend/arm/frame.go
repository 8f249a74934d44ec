// Package arm implements the ARM32/AAPCS instruction selector and
// stack-frame emitter that turn a lir.Module into GNU assembler text.
//
// Narrowed from an AArch64-style, register-rich, load/store-split
// calling convention down to ARM32's four-register AAPCS, with a
// uniform load-compute-store scheme over backend/regfile.File in place
// of an LRU register file: every Value that needs a home gets a fixed
// word (or, for an inline local array, Size()-byte) slot in the frame,
// and the selector loads operands into a transiently acquired register,
// computes, and immediately stores the result back. This avoids
// building a second, cross-instruction liveness analysis on top of the
// already-simple, non-spilling register file, at the cost of the extra
// loads/stores a smarter allocator would elide.
package arm

import "github.com/yumety/minic/src/ir/lir"

// frame is the stack layout computed for one Function: a fixed,
// fp-relative (frame pointer, AAPCS r11) offset for every Value the
// function's instructions reference, plus a scratch area for staging
// outgoing call arguments between the Arg and FuncCall instructions
// that describe one call.
type frame struct {
	slots        map[lir.Value]int
	callArgBase  int // most negative offset; slot k is at callArgBase+4*k
	size         int // total frame size in bytes, 8-byte aligned
}

// buildFrame lays out fn's frame. Order (params, then locals, then
// temps) is arbitrary; what matters is that every Value gets exactly
// one slot.
func buildFrame(fn *lir.Function) *frame {
	f := &frame{slots: make(map[lir.Value]int)}
	off := 0

	assign := func(v lir.Value, size int) {
		off -= size
		f.slots[v] = off
	}

	for _, p := range fn.Params {
		assign(p, 4)
	}
	for _, lo := range fn.Locals {
		if !lo.IsParamCopy && lo.Type().IsArray() {
			assign(lo, lo.Type().Size())
		} else {
			assign(lo, 4)
		}
	}
	for _, instr := range fn.Body {
		if instr.HasResult() {
			assign(instr, 4)
		}
	}

	if fn.MaxCallArgCount > 0 {
		off -= 4 * fn.MaxCallArgCount
		f.callArgBase = off
	} else {
		f.callArgBase = off
	}

	size := -off
	if rem := size % 8; rem != 0 {
		size += 8 - rem
	}
	f.size = size
	return f
}

// offset returns v's frame-relative (from fp) byte offset.
func (f *frame) offset(v lir.Value) (int, bool) {
	o, ok := f.slots[v]
	return o, ok
}

// callArgSlot returns the offset of the k'th staged outgoing call
// argument (0-indexed, left to right).
func (f *frame) callArgSlot(k int) int {
	return f.callArgBase + 4*k
}
