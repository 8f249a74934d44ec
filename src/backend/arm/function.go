package arm

import (
	"errors"

	"github.com/yumety/minic/src/backend/regfile"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/util"
)

// genFunction emits one function's label, prologue, body and epilogue.
// A failure selecting one instruction is logged as an assembly comment
// and does not abort the rest of the function: the selector keeps
// producing best-effort output for post-mortem inspection, and every
// error encountered is returned, joined, once the whole body has been
// walked. Instructions with Dead set are skipped.
func genFunction(fn *lir.Function, w *util.Writer, verbose bool) error {
	fr := buildFrame(fn)
	s := &selector{fn: fn, fr: fr, rf: regfile.New(), w: w}

	w.Write("\n")
	w.Label(fn.SimpleName())

	var errs []error
	for _, instr := range fn.Body {
		if instr.Dead {
			continue
		}
		if verbose {
			w.Comment("%s", instr.String())
		}
		if err := s.gen(instr); err != nil {
			w.Comment("error: %s", err)
			errs = append(errs, err)
			continue
		}
	}
	return errors.Join(errs...)
}

// gen dispatches one IR instruction to its code generator.
func (s *selector) gen(instr *lir.Instruction) error {
	switch instr.Op {
	case lir.OpEntry:
		return s.genPrologue()
	case lir.OpExit:
		return s.genEpilogue(instr)
	case lir.OpLabel:
		s.w.Label(util.AsmLabel(s.fn.SimpleName(), instr.LabelName))
		return nil
	case lir.OpGoto:
		return s.genGoto(instr)
	case lir.OpAssign:
		return s.genAssign(instr)
	case lir.OpArg:
		return s.genArg(instr)
	case lir.OpFuncCall:
		return s.genCall(instr)
	case lir.OpLoadArray:
		return s.genLoadArray(instr)
	case lir.OpStoreArray:
		return s.genStoreArray(instr)
	default:
		if instr.Op.IsArithmetic() || instr.Op.IsRelational() || instr.Op == lir.OpAddP {
			return s.genBinOp(instr)
		}
		return diag.UnsupportedNodeKind(0, instr.Op.String())
	}
}

// genAssign lowers a plain Move, including a parameter's copy-in:
// the source may be a FormalParam, a Local, a temp or a constant; all
// are handled uniformly since each home is just a word-sized slot.
func (s *selector) genAssign(instr *lir.Instruction) error {
	reg, err := s.loadValue(instr.B)
	if err != nil {
		return err
	}
	if err := s.storeValue(instr.A, reg); err != nil {
		s.rf.Release(reg)
		return err
	}
	s.rf.Release(reg)
	return nil
}

// genPrologue emits the AAPCS standard frame setup and copies every
// incoming argument (register- or stack-passed) into its home slot so
// the rest of the body can address every parameter uniformly.
func (s *selector) genPrologue() error {
	w := s.w
	w.Write("\tpush\t{fp, lr}\n")
	w.Write("\tmov\tfp, sp\n")
	if s.fr.size > 0 {
		w.Write("\tsub\tsp, sp, #%d\n", s.fr.size)
	}

	for i, p := range s.fn.Params {
		slot, _ := s.fr.offset(p)
		if i < 4 {
			w.LoadStore("str", regfile.Name(i), slot, "fp")
			continue
		}
		scratch, err := s.acquire()
		if err != nil {
			return err
		}
		callerOff := 8 + 4*(i-4)
		w.LoadStore("ldr", regfile.Name(scratch), callerOff, "fp")
		w.LoadStore("str", regfile.Name(scratch), slot, "fp")
		s.rf.Release(scratch)
	}
	return nil
}

// genEpilogue moves the return value (if any) into r0, tears down the
// frame and returns to the caller.
func (s *selector) genEpilogue(instr *lir.Instruction) error {
	w := s.w
	if instr.ReturnVal != nil {
		reg, err := s.loadValue(instr.ReturnVal)
		if err != nil {
			return err
		}
		if reg != 0 {
			w.Write("\tmov\tr0, %s\n", regfile.Name(reg))
		}
		s.rf.Release(reg)
	}
	w.Write("\tmov\tsp, fp\n")
	w.Write("\tpop\t{fp, lr}\n")
	w.Write("\tbx\tlr\n")
	return nil
}
