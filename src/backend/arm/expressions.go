package arm

import (
	"github.com/yumety/minic/src/backend/regfile"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
)

// condSuffix maps a relational Op to the ARM32 condition-code mnemonic
// suffix used by its movCC.
var condSuffix = map[lir.Op]string{
	lir.OpLtI: "lt",
	lir.OpGtI: "gt",
	lir.OpLeI: "le",
	lir.OpGeI: "ge",
	lir.OpEqI: "eq",
	lir.OpNeI: "ne",
}

// genBinOp lowers one arithmetic, relational or pointer-add
// instruction: operands are loaded into registers, the op
// computed destructively into the A register, and the result stored
// back to the instruction's own slot.
func (s *selector) genBinOp(instr *lir.Instruction) error {
	var aReg int
	var err error
	if instr.Op == lir.OpAddP {
		aReg, err = s.loadAddr(instr.A)
	} else {
		aReg, err = s.loadValue(instr.A)
	}
	if err != nil {
		return err
	}
	bReg, err := s.loadValue(instr.B)
	if err != nil {
		return err
	}

	switch instr.Op {
	case lir.OpAddI, lir.OpAddP:
		s.w.Ins3("add", regfile.Name(aReg), regfile.Name(aReg), regfile.Name(bReg))
	case lir.OpSubI:
		s.w.Ins3("sub", regfile.Name(aReg), regfile.Name(aReg), regfile.Name(bReg))
	case lir.OpMulI:
		s.w.Ins3("mul", regfile.Name(aReg), regfile.Name(aReg), regfile.Name(bReg))
	case lir.OpDivI:
		s.w.Ins3("sdiv", regfile.Name(aReg), regfile.Name(aReg), regfile.Name(bReg))
	case lir.OpModI:
		// a % b synthesized as a - (a/b)*b; ARM32 has no integer
		// remainder instruction.
		qReg, err := s.acquire()
		if err != nil {
			return err
		}
		s.w.Ins3("sdiv", regfile.Name(qReg), regfile.Name(aReg), regfile.Name(bReg))
		s.w.Ins3("mul", regfile.Name(qReg), regfile.Name(qReg), regfile.Name(bReg))
		s.w.Ins3("sub", regfile.Name(aReg), regfile.Name(aReg), regfile.Name(qReg))
		s.rf.Release(qReg)
	case lir.OpLtI, lir.OpGtI, lir.OpLeI, lir.OpGeI, lir.OpEqI, lir.OpNeI:
		s.w.Ins2("cmp", regfile.Name(aReg), regfile.Name(bReg))
		s.w.Write("\tmov\t%s, #0\n", regfile.Name(aReg))
		s.w.Write("\tmov%s\t%s, #1\n", condSuffix[instr.Op], regfile.Name(aReg))
	default:
		s.rf.Release(aReg)
		s.rf.Release(bReg)
		return diag.UnsupportedNodeKind(0, instr.Op.String())
	}

	s.rf.Release(bReg)
	if err := s.storeValue(instr, aReg); err != nil {
		s.rf.Release(aReg)
		return err
	}
	s.rf.Release(aReg)
	return nil
}

// genLoadArray lowers a LoadArray: dereference the address in
// instr.A's slot and store the scalar result to instr's own slot.
func (s *selector) genLoadArray(instr *lir.Instruction) error {
	addrReg, err := s.loadValue(instr.A)
	if err != nil {
		return err
	}
	s.w.Write("\tldr\t%s, [%s]\n", regfile.Name(addrReg), regfile.Name(addrReg))
	if err := s.storeValue(instr, addrReg); err != nil {
		s.rf.Release(addrReg)
		return err
	}
	s.rf.Release(addrReg)
	return nil
}

// genStoreArray lowers a StoreArray: write the value in instr.B's slot
// through the address in instr.A's slot.
func (s *selector) genStoreArray(instr *lir.Instruction) error {
	addrReg, err := s.loadValue(instr.A)
	if err != nil {
		return err
	}
	valReg, err := s.loadValue(instr.B)
	if err != nil {
		s.rf.Release(addrReg)
		return err
	}
	s.w.Write("\tstr\t%s, [%s]\n", regfile.Name(valReg), regfile.Name(addrReg))
	s.rf.Release(addrReg)
	s.rf.Release(valReg)
	return nil
}

// genArg stages one outgoing call argument into the frame's call-arg
// scratch area.
func (s *selector) genArg(instr *lir.Instruction) error {
	reg, err := s.loadValue(instr.A)
	if err != nil {
		return err
	}
	s.w.LoadStore("str", regfile.Name(reg), s.fr.callArgSlot(s.pendingArgs), "fp")
	s.rf.Release(reg)
	s.pendingArgs++
	return nil
}

// genCall lowers a FuncCall: the first 4 staged arguments move into
// r0-r3, any remainder is pushed on the stack in reverse order (AAPCS),
// then a bl to the callee. The result, if any, is read back from r0.
func (s *selector) genCall(instr *lir.Instruction) error {
	n := s.pendingArgs
	regN := n
	if regN > 4 {
		regN = 4
	}
	// r0-rN are about to be loaded with staged argument values; reserve
	// them up front so the stack-arg loop's own scratch acquisitions
	// can't hand one back out and clobber an argument before bl runs.
	for i := 0; i < regN; i++ {
		s.rf.Reserve(i)
	}
	for i := 0; i < regN; i++ {
		s.w.LoadStore("ldr", regfile.Name(i), s.fr.callArgSlot(i), "fp")
	}
	for i := n - 1; i >= regN; i-- {
		scratch, err := s.acquire()
		if err != nil {
			for j := 0; j < regN; j++ {
				s.rf.Release(j)
			}
			return err
		}
		s.w.LoadStore("ldr", regfile.Name(scratch), s.fr.callArgSlot(i), "fp")
		s.w.Write("\tpush\t{%s}\n", regfile.Name(scratch))
		s.rf.Release(scratch)
	}
	for i := 0; i < regN; i++ {
		s.rf.Release(i)
	}

	s.w.Write("\tbl\t%s\n", instr.Callee.SimpleName())
	if n > regN {
		s.w.Write("\tadd\tsp, sp, #%d\n", 4*(n-regN))
	}
	s.pendingArgs = 0

	if instr.HasResult() {
		if err := s.storeValue(instr, 0); err != nil {
			return err
		}
	}
	return nil
}
