package lower

import (
	"github.com/yumety/minic/src/ast"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/ir/types"
)

// lowerGlobalDeclStmt lowers one top-level "int ...;" declaration
// statement: every comma-separated declarator becomes a GlobalVariable.
func (l *Lowerer) lowerGlobalDeclStmt(declStmt *ast.Node) error {
	defs := declStmt.Children[1:] // Children[0] is the VarDecl/LeafType node
	for _, def := range defs {
		switch def.Kind {
		case ast.VarDef:
			var init *lir.ConstInt
			if len(def.Children) > 0 {
				v, ok := evalConst(def.Children[0])
				if !ok {
					return diag.NonConstGlobalInit(def.Line, def.Name)
				}
				init = l.m.NewConstInt(int32(v))
			}
			if _, err := l.m.CreateGlobal(def.Name, types.Int32, init); err != nil {
				return err
			}
		case ast.ArrayDef:
			dims, err := l.resolveDims(def.Children[0], false)
			if err != nil {
				return err
			}
			typ := types.NewArray(types.Int32, dims)
			if _, err := l.m.CreateGlobal(def.Name, typ, nil); err != nil {
				return err
			}
		default:
			return diag.UnsupportedNodeKind(def.Line, def.Kind.String())
		}
	}
	return nil
}
