package lower

import (
	"github.com/yumety/minic/src/ast"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/ir/types"
)

var arithOp = map[ast.NodeType]lir.Op{
	ast.Add: lir.OpAddI,
	ast.Sub: lir.OpSubI,
	ast.Mul: lir.OpMulI,
	ast.Div: lir.OpDivI,
	ast.Mod: lir.OpModI,
}

var relOp = map[ast.NodeType]lir.Op{
	ast.Lt: lir.OpLtI,
	ast.Gt: lir.OpGtI,
	ast.Le: lir.OpLeI,
	ast.Ge: lir.OpGeI,
	ast.Eq: lir.OpEqI,
	ast.Ne: lir.OpNeI,
}

// lowerExpr lowers n and returns the Value holding its result. ctx
// selects whether a relational/logical result is left as a raw i1
// (ctxCond, used directly as a branch condition) or widened to i32 via
// the bool->int pattern (ctxValue).
func (l *Lowerer) lowerExpr(fn *lir.Function, n *ast.Node, ctx exprContext) (lir.Value, error) {
	switch n.Kind {
	case ast.LeafLiteralUint:
		return l.m.NewConstInt(int32(n.IntValue)), nil

	case ast.LeafVarId:
		v, ok := l.m.Lookup(n.Name)
		if !ok {
			return nil, diag.UndefinedSymbol(n.Line, n.Name)
		}
		return v, nil

	case ast.ArrayAccess:
		return l.lowerArrayAccess(fn, n)

	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		a, err := l.lowerExpr(fn, n.Children[0], ctxValue)
		if err != nil {
			return nil, err
		}
		b, err := l.lowerExpr(fn, n.Children[1], ctxValue)
		if err != nil {
			return nil, err
		}
		return fn.EmitBinOp(arithOp[n.Kind], a, b, types.Int32), nil

	case ast.Neg:
		if c, ok := tryConstFold(n); ok {
			return l.m.NewConstInt(int32(c)), nil
		}
		v, err := l.lowerExpr(fn, n.Children[0], ctxValue)
		if err != nil {
			return nil, err
		}
		return fn.EmitBinOp(lir.OpSubI, l.m.NewConstInt(0), v, types.Int32), nil

	case ast.Lt, ast.Gt, ast.Le, ast.Ge, ast.Eq, ast.Ne:
		a, err := l.lowerExpr(fn, n.Children[0], ctxValue)
		if err != nil {
			return nil, err
		}
		b, err := l.lowerExpr(fn, n.Children[1], ctxValue)
		if err != nil {
			return nil, err
		}
		cmp := fn.EmitBinOp(relOp[n.Kind], a, b, types.Bool)
		if ctx == ctxCond {
			return cmp, nil
		}
		return l.widenBool(fn, cmp)

	case ast.Not:
		v, err := l.lowerExpr(fn, n.Children[0], ctxCond)
		if err != nil {
			return nil, err
		}
		notV := fn.EmitBinOp(lir.OpEqI, v, l.m.NewConstInt(0), types.Bool)
		if ctx == ctxCond {
			return notV, nil
		}
		return l.widenBool(fn, notV)

	case ast.And:
		return l.lowerShortCircuit(fn, n, ctx, false)

	case ast.Or:
		return l.lowerShortCircuit(fn, n, ctx, true)

	case ast.FuncCall:
		return l.lowerCall(fn, n)

	default:
		return nil, diag.UnsupportedNodeKind(n.Line, n.Kind.String())
	}
}

// widenBool implements the bool->int pattern: an
// anonymous int local is set to 1 or 0 along the two control paths out
// of cond, then read back as the widened i32 value.
func (l *Lowerer) widenBool(fn *lir.Function, cond lir.Value) (lir.Value, error) {
	result := fn.AddLocal("", types.Int32)
	lTrue := fn.NewLabel()
	lFalse := fn.NewLabel()
	lEnd := fn.NewLabel()
	fn.EmitCondGoto(cond, lTrue, lFalse)
	fn.EmitLabel(lTrue)
	fn.EmitAssign(result, l.m.NewConstInt(1))
	fn.EmitGoto(lEnd)
	fn.EmitLabel(lFalse)
	fn.EmitAssign(result, l.m.NewConstInt(0))
	fn.EmitGoto(lEnd)
	fn.EmitLabel(lEnd)
	return result, nil
}

// lowerShortCircuit lowers && and ||: the left operand is always
// widened to i32 and tested against 0, the right operand is evaluated
// only on the side where it can change the result (isOr selects ||
// vs &&'s skip direction). The lhs always runs through the bool->int
// widening even when it is itself a relational expression that could
// stay narrow, rather than special-casing an already-boolean lhs.
func (l *Lowerer) lowerShortCircuit(fn *lir.Function, n *ast.Node, ctx exprContext, isOr bool) (lir.Value, error) {
	lhsVal, err := l.lowerExpr(fn, n.Children[0], ctxValue)
	if err != nil {
		return nil, err
	}
	t0 := fn.EmitBinOp(lir.OpNeI, lhsVal, l.m.NewConstInt(0), types.Bool)

	lRhs := fn.NewLabel()
	lSkip := fn.NewLabel()
	lEnd := fn.NewLabel()
	result := fn.AddLocal("", types.Int32)

	if isOr {
		// lhs true -> short-circuit to 1; lhs false -> evaluate rhs.
		fn.EmitCondGoto(t0, lSkip, lRhs)
	} else {
		// lhs false -> short-circuit to 0; lhs true -> evaluate rhs.
		fn.EmitCondGoto(t0, lRhs, lSkip)
	}

	fn.EmitLabel(lRhs)
	rhsVal, err := l.lowerExpr(fn, n.Children[1], ctxValue)
	if err != nil {
		return nil, err
	}
	rhsBool := fn.EmitBinOp(lir.OpNeI, rhsVal, l.m.NewConstInt(0), types.Bool)
	rhsWidened, err := l.widenBool(fn, rhsBool)
	if err != nil {
		return nil, err
	}
	fn.EmitAssign(result, rhsWidened)
	fn.EmitGoto(lEnd)

	fn.EmitLabel(lSkip)
	skipVal := int32(0)
	if isOr {
		skipVal = 1
	}
	fn.EmitAssign(result, l.m.NewConstInt(skipVal))
	fn.EmitGoto(lEnd)

	fn.EmitLabel(lEnd)
	if ctx == ctxCond {
		return fn.EmitBinOp(lir.OpNeI, result, l.m.NewConstInt(0), types.Bool), nil
	}
	return result, nil
}

// lowerCall lowers a call used in either statement or expression
// position: arguments are lowered strictly left to right, then staged
// with EmitArg immediately before the EmitCall, keeping one call's Arg
// instructions contiguous even when an argument is itself a call.
func (l *Lowerer) lowerCall(fn *lir.Function, n *ast.Node) (lir.Value, error) {
	callee, ok := l.m.FindFunction(n.Name)
	if !ok {
		return nil, diag.UndefinedSymbol(n.Line, n.Name)
	}
	argsNode := n.Children[0]
	if len(argsNode.Children) != len(callee.Params) {
		return nil, diag.ArgCountMismatch(n.Line, n.Name, len(callee.Params), len(argsNode.Children))
	}
	args := make([]lir.Value, len(argsNode.Children))
	for i, a := range argsNode.Children {
		v, err := l.lowerExpr(fn, a, ctxValue)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	for _, v := range args {
		fn.EmitArg(v)
	}
	call := fn.EmitCall(callee, args)
	return call, nil
}

// tryConstFold folds n if it is a compile-time constant, used so that
// e.g. unary minus on a literal lowers to a ConstInt rather than a
// needless SubI instruction.
func tryConstFold(n *ast.Node) (int, bool) {
	return evalConst(n)
}
