package lower

import (
	"strings"
	"testing"

	"github.com/yumety/minic/src/frontend"
	"github.com/yumety/minic/src/util"
)

// parseAndLower is the common entry point for these tests: parse src,
// lower it with default options, and fail the test on either error.
func parseAndLower(t *testing.T, src string) string {
	t.Helper()
	root, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	m, err := Lower(root, util.Default())
	if err != nil {
		t.Fatalf("Lower: %s", err)
	}
	return m.String()
}

// TestLowerGlobalDecl checks a plain global and an initialized global
// both get a declare line, the initialized one with its constant.
func TestLowerGlobalDecl(t *testing.T) {
	out := parseAndLower(t, "int x; int y = 5; int f() { return 0; }")
	if !strings.Contains(out, "declare i32 x") {
		t.Errorf("expected a declare line for x, got:\n%s", out)
	}
	if !strings.Contains(out, "declare i32 y = #5") {
		t.Errorf("expected y's initializer rendered, got:\n%s", out)
	}
}

// TestLowerGlobalArray checks a global array declares with its
// dimensions.
func TestLowerGlobalArray(t *testing.T) {
	out := parseAndLower(t, "int a[4][8]; int f() { return 0; }")
	if !strings.Contains(out, "declare i32 a[4][8]") {
		t.Errorf("expected a 2-D array declare line, got:\n%s", out)
	}
}

// TestLowerNonConstGlobalInit checks that a non-constant global
// initializer is rejected.
func TestLowerNonConstGlobalInit(t *testing.T) {
	root, err := frontend.Parse("int y; int x = y; int f() { return 0; }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if _, err := Lower(root, util.Default()); err == nil {
		t.Fatalf("expected an error lowering a non-constant global initializer")
	}
}

// TestLowerForwardCall checks that a call to a function defined later
// in the file resolves, via the two-pass declare/lower driver.
func TestLowerForwardCall(t *testing.T) {
	out := parseAndLower(t, "int f() { return g(); } int g() { return 1; }")
	if !strings.Contains(out, "call i32 @g()") {
		t.Errorf("expected a resolved forward call to g, got:\n%s", out)
	}
}

// TestLowerArgCountMismatch checks that calling a function with the
// wrong number of arguments is an error.
func TestLowerArgCountMismatch(t *testing.T) {
	root, err := frontend.Parse("int g(int a) { return a; } int f() { return g(1, 2); }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if _, err := Lower(root, util.Default()); err == nil {
		t.Fatalf("expected an argument-count mismatch error")
	}
}

// TestLowerVoidFunction checks a void function lowers with no return
// slot and a bare "exit" (no return value).
func TestLowerVoidFunction(t *testing.T) {
	out := parseAndLower(t, "void f() { return; }")
	if !strings.Contains(out, "define void @f()") {
		t.Errorf("expected a void-returning define line, got:\n%s", out)
	}
	if !strings.Contains(out, "\texit\n") {
		t.Errorf("expected a bare exit with no return value, got:\n%s", out)
	}
}

// TestLowerConstIf checks that an if with a statically-false condition
// lowers only its else branch, with no conditional branch.
func TestLowerConstIf(t *testing.T) {
	out := parseAndLower(t, "int f() { if (0) { return 1; } else { return 2; } return 3; }")
	if strings.Contains(out, "bc ") {
		t.Errorf("expected no conditional branch for a constant-false if, got:\n%s", out)
	}
	if !strings.Contains(out, "#2") {
		t.Errorf("expected the else branch's constant to survive, got:\n%s", out)
	}
}

// TestLowerWhileFalse checks that "while (0) body" lowers to nothing
// but the loop's condition and end labels: the body is elided.
func TestLowerWhileFalse(t *testing.T) {
	out := parseAndLower(t, "int f() { while (0) { return 1; } return 2; }")
	if strings.Contains(out, "#1") {
		t.Errorf("expected the unreachable while(0) body to be elided, got:\n%s", out)
	}
}

// TestLowerBreakContinueOutsideLoop checks break/continue are rejected
// outside of a loop body.
func TestLowerBreakContinueOutsideLoop(t *testing.T) {
	root, err := frontend.Parse("int f() { break; return 0; }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if _, err := Lower(root, util.Default()); err == nil {
		t.Fatalf("expected an error for break outside a loop")
	}
}

// TestLowerArrayAddressing checks a 2-D array index lowers to a
// Horner's-method offset computation ending in a scalar load.
func TestLowerArrayAddressing(t *testing.T) {
	out := parseAndLower(t, "int f() { int a[3][4]; return a[1][2]; }")
	if !strings.Contains(out, " mul ") || !strings.Contains(out, " add ") {
		t.Errorf("expected a multiply and an add computing the row-major offset, got:\n%s", out)
	}
	if !strings.Contains(out, "= *") {
		t.Errorf("expected a final scalar load through the computed address, got:\n%s", out)
	}
}

// TestLowerPartialArrayIndex checks that indexing fewer dimensions
// than an array declares yields the sub-array's address rather than a
// load, when passed on to a call.
func TestLowerPartialArrayIndex(t *testing.T) {
	out := parseAndLower(t, "int g(int b[]) { return b[0]; } int f() { int a[3][4]; return g(a[1]); }")
	// a[1] must appear as an arg (its address), not as a "= *" load.
	idx := strings.Index(out, "@f")
	fBody := out[idx:]
	if strings.Count(fBody, "= *") != 0 {
		t.Errorf("expected a[1] to be passed by address, not loaded, got:\n%s", fBody)
	}
}

// TestLowerShortCircuitAnd checks that && only evaluates its rhs
// through a dedicated label, never unconditionally.
func TestLowerShortCircuitAnd(t *testing.T) {
	out := parseAndLower(t, "int f(int a, int b) { return a && b; }")
	if strings.Count(out, ".L") < 3 {
		t.Errorf("expected at least 3 labels (rhs/skip/end) for short-circuit &&, got:\n%s", out)
	}
}

// TestLowerDuplicateGlobal checks redeclaring a global is an error.
func TestLowerDuplicateGlobal(t *testing.T) {
	root, err := frontend.Parse("int x; int x; int f() { return 0; }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if _, err := Lower(root, util.Default()); err == nil {
		t.Fatalf("expected an error for a duplicate global declaration")
	}
}

// TestLowerKeepGoingDegradesArrayDim checks that --keep-going degrades
// a non-constant array dimension to 1 instead of failing.
func TestLowerKeepGoingDegradesArrayDim(t *testing.T) {
	root, err := frontend.Parse("int n; int f() { int a[n]; return 0; }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	opt := util.Default()
	opt.KeepGoing = true
	m, err := Lower(root, opt)
	if err != nil {
		t.Fatalf("Lower with KeepGoing: %s", err)
	}
	if !strings.Contains(m.String(), "a[1]") {
		t.Errorf("expected the degraded array dimension to be 1, got:\n%s", m.String())
	}
}
