package ast

import (
	"strings"
	"testing"
)

// TestNodeStringVariants checks String()'s per-kind rendering for the
// node kinds that carry extra payload (name, literal value, type
// name) versus a bare kind name.
func TestNodeStringVariants(t *testing.T) {
	id := NewLeaf(LeafVarId, 1)
	id.Name = "x"
	if got, want := id.String(), `LeafVarId "x"`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	lit := NewLeaf(LeafLiteralUint, 1)
	lit.IntValue = 42
	if got, want := lit.String(), "LeafLiteralUint 42"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	block := NewNode(Block, 1)
	if got, want := block.String(), "Block"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestNodeFprintRedirection checks Fprint writes the indented dump to
// an arbitrary writer rather than unconditionally to stdout.
func TestNodeFprintRedirection(t *testing.T) {
	lit := NewLeaf(LeafLiteralUint, 1)
	lit.IntValue = 1
	root := NewNode(Block, 1, lit)

	var sb strings.Builder
	root.Fprint(&sb, 0)
	out := sb.String()
	if !strings.Contains(out, "Block") || !strings.Contains(out, "LeafLiteralUint 1") {
		t.Errorf("expected both nodes in the dump, got:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if strings.HasPrefix(lines[1], " ") == false {
		t.Errorf("expected the child line to be indented, got %q", lines[1])
	}
}

// TestNodeFprintNil checks a nil *Node prints a placeholder instead of
// panicking.
func TestNodeFprintNil(t *testing.T) {
	var n *Node
	var sb strings.Builder
	n.Fprint(&sb, 0)
	if !strings.Contains(sb.String(), "<nil>") {
		t.Errorf("expected <nil> placeholder, got %q", sb.String())
	}
}
