package lower

import (
	"github.com/yumety/minic/src/ast"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/ir/lir"
	"github.com/yumety/minic/src/ir/types"
)

// lowerArrayAddr computes the address an ArrayAccess node refers to,
// using a row-major, Horner's-form linear offset: for a base of
// static type T[d0][d1]...[dk-1] indexed by n index expressions
// (n <= k), the byte offset is
//
//	(((i0*d1 + i1)*d2 + i2)*... + i(n-1)) * elemSize
//
// where elemSize is the size of the *remaining* (sliced) element type.
// full reports whether every declared dimension was indexed (a scalar
// load/store); false means a partial access yielding a pointer to a
// sub-array, which the caller must not dereference.
func (l *Lowerer) lowerArrayAddr(fn *lir.Function, n *ast.Node) (addr lir.Value, elemType types.Type, full bool, err error) {
	base := n.Children[0]
	indices := n.Children[1:]

	v, ok := l.m.Lookup(base.Name)
	if !ok {
		return nil, types.Type{}, false, diag.UndefinedSymbol(base.Line, base.Name)
	}
	baseType := v.Type()
	if !baseType.IsArray() && !baseType.IsPointer() {
		return nil, types.Type{}, false, diag.SemanticErrorf(base.Line, "%q is not an array", base.Name)
	}

	dims := baseType.Dims
	if len(indices) > len(dims) {
		return nil, types.Type{}, false, diag.SemanticErrorf(n.Line, "too many indices for array %q", base.Name)
	}

	full = len(indices) == len(dims)
	var result types.Type
	if full {
		result = *baseType.Elem
	} else {
		result = baseType.Sliced(len(indices))
	}

	// offset (in elements of result's type) via Horner's method.
	var offset lir.Value = l.m.NewConstInt(0)
	for i, idxNode := range indices {
		idxVal, err := l.lowerExpr(fn, idxNode, ctxValue)
		if err != nil {
			return nil, types.Type{}, false, err
		}
		stride := 1
		for _, d := range dims[i+1 : len(indices)] {
			stride *= d
		}
		scaled := idxVal
		if stride != 1 {
			scaled = fn.EmitBinOp(lir.OpMulI, idxVal, l.m.NewConstInt(int32(stride)), types.Int32)
		}
		offset = fn.EmitBinOp(lir.OpAddI, offset, scaled, types.Int32)
	}

	elemSize := result.Size()
	if elemSize == 0 {
		elemSize = 4
	}
	byteOffset := offset
	if elemSize != 1 {
		byteOffset = fn.EmitBinOp(lir.OpMulI, offset, l.m.NewConstInt(int32(elemSize)), types.Int32)
	}

	ptrType := types.NewPointer(result)
	addrInst := fn.EmitBinOp(lir.OpAddP, v, byteOffset, ptrType)
	return addrInst, result, full, nil
}

// lowerArrayAccess lowers an ArrayAccess used in value position: a full
// index loads the scalar element; a partial index yields the sliced
// sub-array's address itself (used e.g. when passing "a[i]" of a 2-D
// array to a function expecting int[]).
func (l *Lowerer) lowerArrayAccess(fn *lir.Function, n *ast.Node) (lir.Value, error) {
	addr, elemType, full, err := l.lowerArrayAddr(fn, n)
	if err != nil {
		return nil, err
	}
	if !full {
		return addr, nil
	}
	return fn.EmitLoadArray(addr, elemType), nil
}
