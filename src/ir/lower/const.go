package lower

import "github.com/yumety/minic/src/ast"

// evalConst attempts to fold n to a compile-time constant int, for array
// dimension expressions and global initializers. It only ever sees arithmetic on literals and nested
// consts — identifiers are never constant in MiniC, since there is no
// `const` qualifier.
func evalConst(n *ast.Node) (int, bool) {
	switch n.Kind {
	case ast.LeafLiteralUint:
		return n.IntValue, true
	case ast.Neg:
		v, ok := evalConst(n.Children[0])
		return -v, ok
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		a, ok1 := evalConst(n.Children[0])
		b, ok2 := evalConst(n.Children[1])
		if !ok1 || !ok2 {
			return 0, false
		}
		switch n.Kind {
		case ast.Add:
			return a + b, true
		case ast.Sub:
			return a - b, true
		case ast.Mul:
			return a * b, true
		case ast.Div:
			if b == 0 {
				return 0, false
			}
			return a / b, true
		case ast.Mod:
			if b == 0 {
				return 0, false
			}
			return a % b, true
		}
	}
	return 0, false
}
