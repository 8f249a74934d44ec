// Package ast defines the typed syntax tree that the front end hands to the
// lowering pipeline. A Node carries a kind tag, source position, optional
// type information and either child nodes or leaf data, per the AST input
// contract.
package ast

import (
	"fmt"
	"io"
)

// NodeType differentiates the kinds of nodes that make up a MiniC syntax tree.
type NodeType int

const (
	CompileUnit NodeType = iota
	FuncDef
	FuncFormalParams
	FuncFormalParam
	FuncCall
	FuncRealParams
	Block
	DeclStmt
	VarDecl
	VarDef
	ArrayDef
	ArrayAccess
	ArrayDims
	Assign
	Return
	If
	While
	Break
	Continue
	Add
	Sub
	Mul
	Div
	Mod
	Neg
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	And
	Or
	Not
	LeafType
	LeafVarId
	LeafLiteralUint
)

// names gives a print friendly label for every NodeType, used by String and
// by diagnostics that quote a node kind.
var names = [...]string{
	"CompileUnit",
	"FuncDef",
	"FuncFormalParams",
	"FuncFormalParam",
	"FuncCall",
	"FuncRealParams",
	"Block",
	"DeclStmt",
	"VarDecl",
	"VarDef",
	"ArrayDef",
	"ArrayAccess",
	"ArrayDims",
	"Assign",
	"Return",
	"If",
	"While",
	"Break",
	"Continue",
	"Add",
	"Sub",
	"Mul",
	"Div",
	"Mod",
	"Neg",
	"Lt",
	"Gt",
	"Le",
	"Ge",
	"Eq",
	"Ne",
	"And",
	"Or",
	"Not",
	"LeafType",
	"LeafVarId",
	"LeafLiteralUint",
}

// String returns the print friendly name of the NodeType.
func (t NodeType) String() string {
	if t < 0 || int(t) >= len(names) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return names[t]
}

// Node is one element of the typed syntax tree produced by the front end.
// Leaves carry Name or IntValue; internal nodes carry Children in syntactic
// (left-to-right, source) order.
type Node struct {
	Kind     NodeType
	Line     int
	Children []*Node

	// Name holds the identifier for LeafVarId, FuncDef, FuncCall and
	// FuncFormalParam nodes.
	Name string

	// IntValue holds the literal value for LeafLiteralUint nodes.
	IntValue int

	// TypeName holds the declared scalar type keyword ("int") for LeafType
	// nodes; MiniC has exactly one scalar type, so this is informational.
	TypeName string
}

// NewLeaf creates a childless Node.
func NewLeaf(kind NodeType, line int) *Node {
	return &Node{Kind: kind, Line: line}
}

// NewNode creates a Node with the given children, in order.
func NewNode(kind NodeType, line int, children ...*Node) *Node {
	return &Node{Kind: kind, Line: line, Children: children}
}

// String renders a single-line, print friendly summary of the Node.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case LeafVarId, FuncDef, FuncCall, FuncFormalParam:
		return fmt.Sprintf("%s %q", n.Kind, n.Name)
	case LeafLiteralUint:
		return fmt.Sprintf("%s %d", n.Kind, n.IntValue)
	case LeafType:
		return fmt.Sprintf("%s %q", n.Kind, n.TypeName)
	default:
		return n.Kind.String()
	}
}

// Print recursively prints the Node and its Children to stdout, indenting
// one level per depth of recursion. Used by the --ast CLI dump mode.
func (n *Node) Print(depth int) {
	n.Fprint(nil, depth)
}

// Fprint is Print, but to an arbitrary writer (nil means os.Stdout via
// fmt.Printf) so the --ast dump mode can honour -o redirection.
func (n *Node) Fprint(w io.Writer, depth int) {
	if n == nil {
		fprintf(w, "%*c<nil>\n", depth<<1, ' ')
		return
	}
	fprintf(w, "%*c%s\n", depth<<1, ' ', n.String())
	for _, c := range n.Children {
		c.Fprint(w, depth+1)
	}
}

func fprintf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		fmt.Printf(format, args...)
		return
	}
	fmt.Fprintf(w, format, args...)
}
