package arm

import (
	"errors"

	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/util"
)

// Emit lowers m to GNU assembler text for a 32-bit ARM/AAPCS target,
// returning the complete output of one compile unit. When verbose is
// set, each selected instruction is preceded by an '@'-commented line
// of the IR it was generated from. A failure selecting one function
// does not abort the others: it is logged as an assembly comment and
// the remaining functions still get best-effort output, with every
// error encountered joined and returned alongside the full text.
func Emit(m *lir.Module, verbose bool) (string, error) {
	w := util.NewWriter()
	w.Write("\t.syntax unified\n")
	w.Write("\t.arch armv7-a\n")

	w.Write("\t.data\n")
	for _, g := range m.Globals {
		if g.InBSS() {
			continue
		}
		w.Write("\t.align\t2\n")
		w.Label(globalLabel(g))
		w.Write("\t.word\t%d\n", g.Initializer.V)
	}
	w.Write("\t.bss\n")
	for _, g := range m.Globals {
		if !g.InBSS() {
			continue
		}
		w.Write("\t.align\t2\n")
		w.Label(globalLabel(g))
		w.Write("\t.space\t%d\n", g.Type().Size())
	}

	w.Write("\t.text\n")
	var errs []error
	for _, fn := range m.Functions {
		w.Write("\t.global\t%s\n", fn.SimpleName())
		w.Write("\t.type\t%s, %%function\n", fn.SimpleName())
		if err := genFunction(fn, w, verbose); err != nil {
			w.Comment("function %q: %s", fn.SimpleName(), err)
			errs = append(errs, err)
		}
	}
	return w.String(), errors.Join(errs...)
}
