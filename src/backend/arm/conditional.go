package arm

import (
	"github.com/yumety/minic/src/backend/regfile"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/util"
)

// genGoto lowers an unconditional or conditional branch. A conditional
// branch's Targets are [trueTarget, falseTarget].
func (s *selector) genGoto(instr *lir.Instruction) error {
	if instr.Cond == nil {
		s.w.Write("\tb\t%s\n", util.AsmLabel(s.fn.SimpleName(), instr.Targets[0].LabelName))
		return nil
	}
	reg, err := s.loadValue(instr.Cond)
	if err != nil {
		return err
	}
	s.w.Write("\tcmp\t%s, #0\n", regfile.Name(reg))
	s.rf.Release(reg)
	s.w.Write("\tbne\t%s\n", util.AsmLabel(s.fn.SimpleName(), instr.Targets[0].LabelName))
	s.w.Write("\tb\t%s\n", util.AsmLabel(s.fn.SimpleName(), instr.Targets[1].LabelName))
	return nil
}
