package arm

import (
	"strings"
	"testing"

	"github.com/yumety/minic/src/frontend"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/ir/lower"
	"github.com/yumety/minic/src/ir/types"
	"github.com/yumety/minic/src/util"
)

func lowerSrc(t *testing.T, src string) string {
	t.Helper()
	root, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	m, err := lower.Lower(root, util.Default())
	if err != nil {
		t.Fatalf("Lower: %s", err)
	}
	out, err := Emit(m, false)
	if err != nil {
		t.Fatalf("Emit: %s", err)
	}
	return out
}

// TestEmitArithmeticFunction checks a straight-line function emits a
// function label, a return and the standard AAPCS epilogue.
func TestEmitArithmeticFunction(t *testing.T) {
	out := lowerSrc(t, "int add(int a, int b) { return a + b; }")
	if !strings.Contains(out, "add:") {
		t.Errorf("expected a function label \"add:\", got:\n%s", out)
	}
	if !strings.Contains(out, "bx\tlr") && !strings.Contains(out, "bx lr") {
		t.Errorf("expected an AAPCS return via bx lr, got:\n%s", out)
	}
}

// TestEmitGlobalsSection checks that initialized globals land under
// .data and zero/uninitialized ones under .bss.
func TestEmitGlobalsSection(t *testing.T) {
	out := lowerSrc(t, "int x = 7; int y; int f() { return 0; }")
	dataIdx := strings.Index(out, ".data")
	bssIdx := strings.Index(out, ".bss")
	xIdx := strings.Index(out, "var_x:")
	yIdx := strings.Index(out, "var_y:")
	if dataIdx < 0 || bssIdx < 0 || xIdx < 0 || yIdx < 0 {
		t.Fatalf("expected .data/.bss sections and both labels, got:\n%s", out)
	}
	if !(dataIdx < xIdx && xIdx < bssIdx) {
		t.Errorf("expected x's label between .data and .bss, got:\n%s", out)
	}
	if yIdx < bssIdx {
		t.Errorf("expected y's label after .bss, got:\n%s", out)
	}
}

// TestEmitCallArguments checks a call through more than 4 arguments
// emits stack-passed arguments per AAPCS (the first four go in
// r0-r3).
func TestEmitCallArguments(t *testing.T) {
	out := lowerSrc(t, `
		int sum5(int a, int b, int c, int d, int e) { return a+b+c+d+e; }
		int f() { return sum5(1,2,3,4,5); }
	`)
	if !strings.Contains(out, "bl\tsum5") && !strings.Contains(out, "bl sum5") {
		t.Errorf("expected a call to sum5, got:\n%s", out)
	}
}

// TestEmitCallArgumentsDoesNotClobberRegisterArgs checks that staging
// the 5th (stack-passed) argument never reuses r0-r3 as scratch before
// bl runs, which would clobber an already-loaded register argument.
func TestEmitCallArgumentsDoesNotClobberRegisterArgs(t *testing.T) {
	out := lowerSrc(t, `
		int sum5(int a, int b, int c, int d, int e) { return a+b+c+d+e; }
		int f() { return sum5(1,2,3,4,5); }
	`)
	callIdx := strings.Index(out, "bl\tsum5")
	if callIdx < 0 {
		callIdx = strings.Index(out, "bl sum5")
	}
	if callIdx < 0 {
		t.Fatalf("expected a call to sum5, got:\n%s", out)
	}
	pre := out[:callIdx]

	pushIdx := strings.LastIndex(pre, "push")
	if pushIdx < 0 {
		t.Fatalf("expected a push instruction staging the 5th argument, got:\n%s", pre)
	}
	pushLineStart := strings.LastIndex(pre[:pushIdx], "\n")
	pushLine := pre[pushLineStart:]
	if end := strings.Index(pre[pushIdx:], "\n"); end >= 0 {
		pushLine = pre[pushLineStart : pushIdx+end]
	}
	if strings.Contains(pushLine, "r0") {
		t.Errorf("push clobbered r0 before bl, got %q in:\n%s", pushLine, pre)
	}

	for _, reg := range []string{"r0", "r1", "r2", "r3"} {
		idx := strings.LastIndex(pre, "ldr\t"+reg)
		if idx < 0 {
			idx = strings.LastIndex(pre, "ldr "+reg)
		}
		if idx < 0 || idx > pushIdx {
			t.Errorf("expected %s to be loaded before the stack-arg push, got:\n%s", reg, pre)
		}
	}
}

// TestEmitArrayLocal checks that a function with a local array
// declaration reserves frame space in its prologue.
func TestEmitArrayLocal(t *testing.T) {
	out := lowerSrc(t, "int f() { int a[4]; a[0] = 1; return a[0]; }")
	if !strings.Contains(out, "sub\tsp") && !strings.Contains(out, "sub sp") {
		t.Errorf("expected the prologue to reserve stack space for the array, got:\n%s", out)
	}
}

// TestEmitVerboseInterleavesIRComments checks --verbose places each
// IR instruction's text as an '@'-comment immediately before the
// assembly it lowers to, rather than as one bulk block.
func TestEmitVerboseInterleavesIRComments(t *testing.T) {
	root, err := frontend.Parse("int f() { return 1+2; }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	m, err := lower.Lower(root, util.Default())
	if err != nil {
		t.Fatalf("Lower: %s", err)
	}
	out, err := Emit(m, true)
	if err != nil {
		t.Fatalf("Emit: %s", err)
	}
	addIRIdx := strings.Index(out, "@ %t0 = #1 add #2")
	if addIRIdx < 0 {
		t.Fatalf("expected an '@'-commented add instruction, got:\n%s", out)
	}
	addAsmIdx := strings.Index(out[addIRIdx:], "add\t")
	if addAsmIdx < 0 {
		t.Fatalf("expected an add instruction after its IR comment, got:\n%s", out)
	}
	// No other generated instruction's mnemonic should fall between the
	// comment and its own add: the very next "add" after the comment is
	// the one it describes.
	if addAsmIdx > 80 {
		t.Errorf("expected the add comment to immediately precede its add instruction, got:\n%s", out[addIRIdx:addIRIdx+addAsmIdx+10])
	}
}

// TestEmitContinuesPastSelectorError checks that one function's
// selection failure doesn't abort the whole module: the remaining
// function is still emitted in full, and the failure is recorded as
// an assembly comment plus the returned error.
func TestEmitContinuesPastSelectorError(t *testing.T) {
	m := lir.NewModule("t")

	bad, err := m.CreateFunction("f", types.Void)
	if err != nil {
		t.Fatalf("CreateFunction: %s", err)
	}
	bad.EmitEntry()
	bad.Append(&lir.Instruction{Op: lir.Op(999)}) // unrecognized op
	bad.EmitExit(nil)

	good, err := m.CreateFunction("g", types.Int32)
	if err != nil {
		t.Fatalf("CreateFunction: %s", err)
	}
	good.EmitEntry()
	sum := good.EmitBinOp(lir.OpAddI, m.NewConstInt(1), m.NewConstInt(2), types.Int32)
	good.EmitExit(sum)

	out, err := Emit(m, false)
	if err == nil {
		t.Fatalf("expected an error from the unrecognized instruction in f")
	}
	if !strings.Contains(out, "f:") {
		t.Errorf("expected f's label to still be emitted, got:\n%s", out)
	}
	if !strings.Contains(out, "@ error:") {
		t.Errorf("expected an error comment in the output, got:\n%s", out)
	}
	if !strings.Contains(out, "g:") || !strings.Contains(out, "add\t") {
		t.Errorf("expected g to still be fully emitted after f's failure, got:\n%s", out)
	}
}
