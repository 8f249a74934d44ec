// Package lir provides the linear three-address intermediate representation
// lowered from the typed syntax tree: Module, Function, Instruction and
// Value, plus the scoped symbol table that lowering builds them through.
package lir

import (
	"fmt"

	"github.com/yumety/minic/src/ir/types"
)

// Module is the top-level IR container: every global, every function, the
// interned-constant pool and the scope stack used while lowering is in
// progress.
type Module struct {
	Name      string
	Globals   []*GlobalVariable
	Functions []*Function

	constIntPool map[int32]*ConstInt
	funcIndex    map[string]*Function
	scopes       []map[string]Value // innermost scope last
	current      *Function
}

// NewModule creates an empty Module ready for lowering.
func NewModule(name string) *Module {
	return &Module{
		Name:         name,
		constIntPool: make(map[int32]*ConstInt),
		funcIndex:    make(map[string]*Function),
		scopes:       []map[string]Value{make(map[string]Value)}, // global scope
	}
}

// NewConstInt interns and returns the ConstInt for v.
func (m *Module) NewConstInt(v int32) *ConstInt {
	if c, ok := m.constIntPool[v]; ok {
		return c
	}
	c := &ConstInt{V: v}
	m.constIntPool[v] = c
	return c
}

// CreateGlobal declares a new module-level variable. init may be nil.
func (m *Module) CreateGlobal(name string, typ types.Type, init *ConstInt) (*GlobalVariable, error) {
	if _, ok := m.scopes[0][name]; ok {
		return nil, fmt.Errorf("duplicate global declaration: %q", name)
	}
	g := &GlobalVariable{name: name, typ: typ, Initializer: init}
	m.Globals = append(m.Globals, g)
	m.scopes[0][name] = g
	return g, nil
}

// CreateFunction declares a new, body-less Function. It does not make
// the Function current; SetCurrentFunction does that.
func (m *Module) CreateFunction(name string, retType types.Type) (*Function, error) {
	if _, ok := m.funcIndex[name]; ok {
		return nil, fmt.Errorf("duplicate function declaration: %q", name)
	}
	f := &Function{m: m, name: name, returnType: retType}
	m.Functions = append(m.Functions, f)
	m.funcIndex[name] = f
	return f, nil
}

// FindFunction looks up a Function by name.
func (m *Module) FindFunction(name string) (*Function, bool) {
	f, ok := m.funcIndex[name]
	return f, ok
}

// SetCurrentFunction marks f as the function new locals should be attached
// to; pass nil to return to module (global) scope.
func (m *Module) SetCurrentFunction(f *Function) { m.current = f }

// CurrentFunction returns the Function currently being lowered, or nil at
// module scope.
func (m *Module) CurrentFunction() *Function { return m.current }

// EnterScope pushes a new, empty lexical scope (function entry or block
// entry).
func (m *Module) EnterScope() {
	m.scopes = append(m.scopes, make(map[string]Value))
}

// LeaveScope pops the innermost lexical scope.
func (m *Module) LeaveScope() {
	if len(m.scopes) > 1 {
		m.scopes = m.scopes[:len(m.scopes)-1]
	}
}

// Declare binds name to v in the innermost scope. Redeclaring a name
// already bound in that same scope is an error; shadowing an outer scope
// is allowed.
func (m *Module) Declare(name string, v Value) error {
	top := m.scopes[len(m.scopes)-1]
	if _, ok := top[name]; ok {
		return fmt.Errorf("duplicate declaration in this scope: %q", name)
	}
	top[name] = v
	return nil
}

// Lookup searches the scope stack from innermost outward and returns the
// bound Value, if any.
func (m *Module) Lookup(name string) (Value, bool) {
	for i := len(m.scopes) - 1; i >= 0; i-- {
		if v, ok := m.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// fmtLabel renders the k'th function-local label name.
func fmtLabel(k int) string {
	return fmt.Sprintf(".L%d", k)
}
