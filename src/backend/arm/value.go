package arm

import (
	"fmt"
	"strings"

	"github.com/yumety/minic/src/backend/regfile"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/util"
)

// selector holds the per-function codegen state: the frame layout, the
// register bitmap, the output buffer and the arguments staged for the
// call currently in progress.
type selector struct {
	fn          *lir.Function
	fr          *frame
	rf          *regfile.File
	w           *util.Writer
	pendingArgs int
}

// globalLabel renders gv's assembler symbol. Globals are prefixed to
// keep their namespace disjoint from function labels.
func globalLabel(gv *lir.GlobalVariable) string {
	return "var_" + strings.TrimPrefix(gv.Name(), "@")
}

func (s *selector) acquire() (int, error) {
	reg, ok := s.rf.Acquire()
	if !ok {
		return 0, diag.RegisterSpillNotSupported(fmt.Sprintf("function %q", s.fn.SimpleName()))
	}
	return reg, nil
}

// isInlineArrayLocal reports whether v denotes a function-local array's
// own storage (as opposed to a param-copy alias, which just holds a
// pointer word).
func isInlineArrayLocal(v lir.Value) bool {
	lv, ok := v.(*lir.LocalVariable)
	return ok && !lv.IsParamCopy && lv.Type().IsArray()
}

// loadValue materializes v's scalar (or pointer) word into a freshly
// acquired register and returns it; the caller releases it.
func (s *selector) loadValue(v lir.Value) (int, error) {
	switch val := v.(type) {
	case *lir.ConstInt:
		reg, err := s.acquire()
		if err != nil {
			return 0, err
		}
		s.w.Write("\tldr\t%s, =%d\n", regfile.Name(reg), val.V)
		return reg, nil
	case *lir.GlobalVariable:
		reg, err := s.acquire()
		if err != nil {
			return 0, err
		}
		s.w.Write("\tldr\t%s, =%s\n", regfile.Name(reg), globalLabel(val))
		s.w.Write("\tldr\t%s, [%s]\n", regfile.Name(reg), regfile.Name(reg))
		return reg, nil
	default:
		off, ok := s.fr.offset(v)
		if !ok {
			return 0, diag.ArgRegisterMisassignment(fmt.Sprintf("value %s has no frame slot", v.Name()))
		}
		reg, err := s.acquire()
		if err != nil {
			return 0, err
		}
		s.w.LoadStore("ldr", regfile.Name(reg), off, "fp")
		return reg, nil
	}
}

// loadAddr materializes the address v denotes (an array's base, or an
// already-computed pointer) into a freshly acquired register.
func (s *selector) loadAddr(v lir.Value) (int, error) {
	if isInlineArrayLocal(v) {
		off, _ := s.fr.offset(v)
		reg, err := s.acquire()
		if err != nil {
			return 0, err
		}
		s.w.Write("\tadd\t%s, %s, #%d\n", regfile.Name(reg), regfile.Name(regfile.FP), off)
		return reg, nil
	}
	if gv, ok := v.(*lir.GlobalVariable); ok {
		reg, err := s.acquire()
		if err != nil {
			return 0, err
		}
		s.w.Write("\tldr\t%s, =%s\n", regfile.Name(reg), globalLabel(gv))
		return reg, nil
	}
	// Local/FormalParam/Instruction: the slot already holds a ready pointer.
	return s.loadValue(v)
}

// storeValue writes reg's contents to v's home (a frame slot, or a
// global's storage, loaded through a scratch register).
func (s *selector) storeValue(v lir.Value, reg int) error {
	if gv, ok := v.(*lir.GlobalVariable); ok {
		scratch, err := s.acquire()
		if err != nil {
			return err
		}
		s.w.Write("\tldr\t%s, =%s\n", regfile.Name(scratch), globalLabel(gv))
		s.w.Write("\tstr\t%s, [%s]\n", regfile.Name(reg), regfile.Name(scratch))
		s.rf.Release(scratch)
		return nil
	}
	off, ok := s.fr.offset(v)
	if !ok {
		return diag.ArgRegisterMisassignment(fmt.Sprintf("value %s has no frame slot", v.Name()))
	}
	s.w.LoadStore("str", regfile.Name(reg), off, "fp")
	return nil
}
