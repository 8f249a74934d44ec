package lir

import (
	"testing"

	"github.com/yumety/minic/src/ir/types"
)

// TestConstIntInterning checks that two requests for the same integer
// value return the identical *ConstInt pointer.
func TestConstIntInterning(t *testing.T) {
	m := NewModule("t")
	a := m.NewConstInt(5)
	b := m.NewConstInt(5)
	if a != b {
		t.Fatalf("expected NewConstInt(5) to return the same pointer both times")
	}
	c := m.NewConstInt(6)
	if a == c {
		t.Fatalf("expected distinct values to intern to distinct pointers")
	}
}

// TestScopeShadowing checks that Declare in an inner scope shadows an
// outer binding, and that LeaveScope restores visibility of the outer
// one.
func TestScopeShadowing(t *testing.T) {
	m := NewModule("t")
	outer := m.NewConstInt(1)
	if err := m.Declare("x", outer); err != nil {
		t.Fatalf("Declare: %s", err)
	}

	m.EnterScope()
	inner := m.NewConstInt(2)
	if err := m.Declare("x", inner); err != nil {
		t.Fatalf("Declare (inner): %s", err)
	}
	if v, ok := m.Lookup("x"); !ok || v != inner {
		t.Fatalf("expected inner scope's x to shadow the outer one")
	}
	m.LeaveScope()

	if v, ok := m.Lookup("x"); !ok || v != outer {
		t.Fatalf("expected outer x to be visible again after LeaveScope")
	}
}

// TestDeclareDuplicateInSameScope checks redeclaring a name already
// bound in the same scope is rejected.
func TestDeclareDuplicateInSameScope(t *testing.T) {
	m := NewModule("t")
	v := m.NewConstInt(1)
	if err := m.Declare("x", v); err != nil {
		t.Fatalf("Declare: %s", err)
	}
	if err := m.Declare("x", v); err == nil {
		t.Fatalf("expected a duplicate-declaration error")
	}
}

// TestCreateFunctionDuplicate checks two functions cannot share a name.
func TestCreateFunctionDuplicate(t *testing.T) {
	m := NewModule("t")
	if _, err := m.CreateFunction("f", types.Int32); err != nil {
		t.Fatalf("CreateFunction: %s", err)
	}
	if _, err := m.CreateFunction("f", types.Int32); err == nil {
		t.Fatalf("expected a duplicate-function error")
	}
}

// TestFindFunction checks lookup by name after creation.
func TestFindFunction(t *testing.T) {
	m := NewModule("t")
	want, err := m.CreateFunction("f", types.Void)
	if err != nil {
		t.Fatalf("CreateFunction: %s", err)
	}
	got, ok := m.FindFunction("f")
	if !ok || got != want {
		t.Fatalf("expected FindFunction to recover the created Function")
	}
	if _, ok := m.FindFunction("missing"); ok {
		t.Fatalf("expected FindFunction(\"missing\") to report ok=false")
	}
}
