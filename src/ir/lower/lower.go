// Package lower implements the AST walker and lowering driver,
// expression lowering, statement lowering and array addressing that
// together turn a typed ast.Node tree into a lir.Module.
//
// The walk is a single switch-on-node-kind recursive descent, the same
// shape an LLVM IR builder over an AST would take, generalized to this
// project's own lir package. Lowering passes an explicit evaluation
// context (rvalue / condition / lvalue-via-address) down the recursion
// instead of keeping either a global "current buffer" or a side table
// of remembered array addresses, and — since the whole pipeline runs
// on a single goroutine — appends straight into Function.Body as each
// node is visited rather than threading a separate per-node instruction
// buffer for later splicing: the two produce identical instruction
// order for a single-threaded, depth-first walk, so the buffer type
// itself is elided.
package lower

import (
	"fmt"

	"github.com/yumety/minic/src/ast"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/ir/types"
	"github.com/yumety/minic/src/util"
)

// exprContext selects how an expression's boolean-ness is exposed to its
// consumer: ctxCond leaves a relational/logical result as a raw
// i1 branch condition; ctxValue widens it to i32 via the bool->int
// pattern.
type exprContext int

const (
	ctxValue exprContext = iota
	ctxCond
)

// loopCtx records the labels break/continue target for the innermost
// enclosing while loop.
type loopCtx struct {
	cond *lir.Instruction
	end  *lir.Instruction
}

// Lowerer drives the lowering pass over one compile unit.
type Lowerer struct {
	m     *lir.Module
	opt   util.Options
	loops util.Stack[loopCtx]
}

// Lower builds a lir.Module from root, the CompileUnit produced by the
// front end.
func Lower(root *ast.Node, opt util.Options) (*lir.Module, error) {
	l := &Lowerer{m: lir.NewModule("minic"), opt: opt}
	if err := l.declareSignatures(root); err != nil {
		return nil, err
	}
	if err := l.lowerBodies(root); err != nil {
		return nil, err
	}
	return l.m, nil
}

// declareSignatures makes a first pass over the compile unit: every
// global variable/array is fully lowered (they carry no executable
// body), and every function gets its Function shell (params, return
// type) created so calls can resolve regardless of declaration order.
func (l *Lowerer) declareSignatures(root *ast.Node) error {
	for _, child := range root.Children {
		switch child.Kind {
		case ast.DeclStmt:
			if err := l.lowerGlobalDeclStmt(child); err != nil {
				return err
			}
		case ast.FuncDef:
			if err := l.declareFunction(child); err != nil {
				return err
			}
		default:
			return diag.UnsupportedNodeKind(child.Line, child.Kind.String())
		}
	}
	return nil
}

func (l *Lowerer) lowerBodies(root *ast.Node) error {
	for _, child := range root.Children {
		if child.Kind != ast.FuncDef {
			continue
		}
		fn, ok := l.m.FindFunction(child.Name)
		if !ok {
			return fmt.Errorf("internal: function %q not pre-declared", child.Name)
		}
		if err := l.lowerFunctionBody(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// declareFunction registers fnNode's Function shell: return type and
// parameter list.
func (l *Lowerer) declareFunction(fnNode *ast.Node) error {
	retTypeNode := fnNode.Children[0]
	retType := types.Int32
	if retTypeNode.TypeName == "void" {
		retType = types.Void
	}
	fn, err := l.m.CreateFunction(fnNode.Name, retType)
	if err != nil {
		return err
	}
	paramsNode := fnNode.Children[1]
	for _, p := range paramsNode.Children {
		typ := types.Int32
		if len(p.Children) > 1 {
			dims, err := l.resolveDims(p.Children[1], true)
			if err != nil {
				return err
			}
			typ = types.NewArray(types.Int32, dims)
		}
		fn.AddParam(p.Name, typ)
	}
	return nil
}

// lowerFunctionBody builds one function's entry, return slot, parameter
// copy-in, body and exit.
func (l *Lowerer) lowerFunctionBody(fnNode *ast.Node, fn *lir.Function) error {
	l.m.SetCurrentFunction(fn)
	defer l.m.SetCurrentFunction(nil)
	l.m.EnterScope()
	defer l.m.LeaveScope()

	fn.EmitEntry()
	fn.ExitLabel = fn.NewLabel()

	if fn.ReturnType().Kind != types.KindVoid {
		fn.ReturnSlot = fn.AddLocal("", fn.ReturnType())
		fn.EmitAssign(fn.ReturnSlot, l.m.NewConstInt(0))
	}

	paramsNode := fnNode.Children[1]
	for i, p := range paramsNode.Children {
		fp := fn.Params[i]
		local := fn.AddLocal(fp.ParamName(), fp.Type())
		local.IsParamCopy = true
		fn.EmitAssign(local, fp)
		if err := l.m.Declare(p.Name, local); err != nil {
			return err
		}
	}

	bodyNode := fnNode.Children[2]
	if err := l.lowerBlock(fn, bodyNode); err != nil {
		return err
	}

	fn.EmitLabel(fn.ExitLabel)
	var ret lir.Value
	if fn.ReturnType().Kind != types.KindVoid {
		ret = fn.ReturnSlot
	}
	fn.EmitExit(ret)
	return nil
}

// resolveDims evaluates each dimension expression of an ArrayDims node
// to a constant. erasedFirst permits (and requires, if present) a nil
// leading entry for a size-erased parameter dimension, recorded as 0:
// the declared first dimension of an array parameter may be 0.
func (l *Lowerer) resolveDims(dimsNode *ast.Node, erasedFirst bool) ([]int, error) {
	dims := make([]int, len(dimsNode.Children))
	for i, d := range dimsNode.Children {
		if d == nil {
			if !(erasedFirst && i == 0) {
				return nil, fmt.Errorf("line %d: missing array dimension", dimsNode.Line)
			}
			dims[i] = 0
			continue
		}
		v, ok := evalConst(d)
		if !ok {
			if l.opt.KeepGoing {
				dims[i] = 1
				continue
			}
			return nil, diag.NonConstGlobalInit(d.Line, "array dimension")
		}
		if v <= 0 && !(erasedFirst && i == 0) {
			return nil, fmt.Errorf("line %d: array dimension must be positive, got %d", d.Line, v)
		}
		dims[i] = v
	}
	return dims, nil
}
