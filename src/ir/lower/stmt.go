package lower

import (
	"github.com/yumety/minic/src/ast"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/ir/types"
)

// lowerBlock pushes a new scope, lowers every statement in order, then
// pops it.
func (l *Lowerer) lowerBlock(fn *lir.Function, block *ast.Node) error {
	l.m.EnterScope()
	defer l.m.LeaveScope()
	for _, stmt := range block.Children {
		if err := l.lowerStmt(fn, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lowerer) lowerStmt(fn *lir.Function, n *ast.Node) error {
	switch n.Kind {
	case ast.Block:
		return l.lowerBlock(fn, n)
	case ast.DeclStmt:
		return l.lowerLocalDeclStmt(fn, n)
	case ast.Assign:
		return l.lowerAssignStmt(fn, n)
	case ast.Return:
		return l.lowerReturnStmt(fn, n)
	case ast.If:
		return l.lowerIfStmt(fn, n)
	case ast.While:
		return l.lowerWhileStmt(fn, n)
	case ast.Break:
		loop, ok := l.loops.Peek()
		if !ok {
			return diag.BreakContinueOutsideLoop(n.Line, "break")
		}
		fn.EmitGoto(loop.end)
		return nil
	case ast.Continue:
		loop, ok := l.loops.Peek()
		if !ok {
			return diag.BreakContinueOutsideLoop(n.Line, "continue")
		}
		fn.EmitGoto(loop.cond)
		return nil
	case ast.FuncDef:
		return diag.NestedFunctionDefinition(n.Line, n.Name)
	case ast.FuncCall:
		// Expression statement: a call evaluated for its side effect.
		_, err := l.lowerExpr(fn, n, ctxValue)
		return err
	default:
		return diag.UnsupportedNodeKind(n.Line, n.Kind.String())
	}
}

// lowerLocalDeclStmt lowers a function-scope "int ...;" declaration
// statement.
func (l *Lowerer) lowerLocalDeclStmt(fn *lir.Function, declStmt *ast.Node) error {
	defs := declStmt.Children[1:]
	for _, def := range defs {
		switch def.Kind {
		case ast.VarDef:
			local := fn.AddLocal(def.Name, types.Int32)
			if len(def.Children) > 0 {
				v, err := l.lowerExpr(fn, def.Children[0], ctxValue)
				if err != nil {
					return err
				}
				fn.EmitAssign(local, v)
			}
			if err := l.m.Declare(def.Name, local); err != nil {
				return err
			}
		case ast.ArrayDef:
			dims, err := l.resolveDims(def.Children[0], false)
			if err != nil {
				return err
			}
			local := fn.AddLocal(def.Name, types.NewArray(types.Int32, dims))
			if err := l.m.Declare(def.Name, local); err != nil {
				return err
			}
		default:
			return diag.UnsupportedNodeKind(def.Line, def.Kind.String())
		}
	}
	return nil
}

// lowerAssignStmt implements the assignment rule: lower rhs, then
// lhs; an array-access lhs emits StoreArray instead of Move.
func (l *Lowerer) lowerAssignStmt(fn *lir.Function, n *ast.Node) error {
	lhs, rhs := n.Children[0], n.Children[1]
	rhsVal, err := l.lowerExpr(fn, rhs, ctxValue)
	if err != nil {
		return err
	}
	if lhs.Kind == ast.ArrayAccess {
		addr, _, _, err := l.lowerArrayAddr(fn, lhs)
		if err != nil {
			return err
		}
		fn.EmitStoreArray(addr, rhsVal)
		return nil
	}
	v, ok := l.m.Lookup(lhs.Name)
	if !ok {
		return diag.UndefinedSymbol(lhs.Line, lhs.Name)
	}
	fn.EmitAssign(v, rhsVal)
	return nil
}

func (l *Lowerer) lowerReturnStmt(fn *lir.Function, n *ast.Node) error {
	if len(n.Children) > 0 {
		v, err := l.lowerExpr(fn, n.Children[0], ctxValue)
		if err != nil {
			return err
		}
		fn.EmitAssign(fn.ReturnSlot, v)
	}
	fn.EmitGoto(fn.ExitLabel)
	return nil
}

// lowerIfStmt implements if-statement lowering, including the
// constant-condition specialization.
func (l *Lowerer) lowerIfStmt(fn *lir.Function, n *ast.Node) error {
	cond := n.Children[0]
	thenStmt := n.Children[1]
	var elseStmt *ast.Node
	if len(n.Children) > 2 {
		elseStmt = n.Children[2]
	}

	condVal, err := l.lowerExpr(fn, cond, ctxCond)
	if err != nil {
		return err
	}
	if c, ok := condVal.(*lir.ConstInt); ok {
		if c.V != 0 {
			return l.lowerStmt(fn, thenStmt)
		}
		if elseStmt != nil {
			return l.lowerStmt(fn, elseStmt)
		}
		return nil
	}

	lThen := fn.NewLabel()
	lElse := fn.NewLabel()
	lEnd := fn.NewLabel()
	fn.EmitCondGoto(condVal, lThen, lElse)
	fn.EmitLabel(lThen)
	if err := l.lowerStmt(fn, thenStmt); err != nil {
		return err
	}
	fn.EmitGoto(lEnd)
	fn.EmitLabel(lElse)
	if elseStmt != nil {
		if err := l.lowerStmt(fn, elseStmt); err != nil {
			return err
		}
	}
	fn.EmitLabel(lEnd)
	return nil
}

// lowerWhileStmt implements while-loop lowering: L_cond, L_body,
// L_end, with break/continue resolved through the loop stack.
func (l *Lowerer) lowerWhileStmt(fn *lir.Function, n *ast.Node) error {
	cond := n.Children[0]
	body := n.Children[1]

	lCond := fn.NewLabel()
	lEnd := fn.NewLabel()
	l.loops.Push(loopCtx{cond: lCond, end: lEnd})
	defer l.loops.Pop()

	fn.EmitLabel(lCond)
	condVal, err := l.lowerExpr(fn, cond, ctxCond)
	if err != nil {
		return err
	}
	if c, ok := condVal.(*lir.ConstInt); ok {
		if c.V == 0 {
			// while(0) never runs; L_cond falls straight through to L_end.
			fn.EmitLabel(lEnd)
			return nil
		}
		if err := l.lowerStmt(fn, body); err != nil {
			return err
		}
		fn.EmitGoto(lCond)
		fn.EmitLabel(lEnd)
		return nil
	}

	lBody := fn.NewLabel()
	fn.EmitCondGoto(condVal, lBody, lEnd)
	fn.EmitLabel(lBody)
	if err := l.lowerStmt(fn, body); err != nil {
		return err
	}
	fn.EmitGoto(lCond)
	fn.EmitLabel(lEnd)
	return nil
}
