package lir

import (
	"fmt"
	"strings"

	"github.com/yumety/minic/src/ir/types"
)

// String renders the whole Module using the textual IR format.
func (m *Module) String() string {
	sb := strings.Builder{}
	for _, g := range m.Globals {
		sb.WriteString(declareLine(g.name, g.typ))
		if g.Initializer != nil && g.Initializer.V != 0 {
			fmt.Fprintf(&sb, " = #%d", g.Initializer.V)
		}
		sb.WriteRune('\n')
	}
	if len(m.Globals) > 0 {
		sb.WriteRune('\n')
	}
	for i, f := range m.Functions {
		sb.WriteString(f.String())
		if i < len(m.Functions)-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// declareLine renders a `declare <elem> <name>[d1][d2]...` line for a
// scalar or array global/local.
func declareLine(name string, t types.Type) string {
	sb := strings.Builder{}
	sb.WriteString("declare ")
	if t.IsArray() {
		sb.WriteString(t.Elem.String())
		sb.WriteRune(' ')
		sb.WriteString(name)
		for _, d := range t.Dims {
			fmt.Fprintf(&sb, "[%d]", d)
		}
	} else {
		sb.WriteString(t.String())
		sb.WriteRune(' ')
		sb.WriteString(name)
	}
	return sb.String()
}

// String renders a single Function using the textual IR format.
func (f *Function) String() string {
	sb := strings.Builder{}
	sb.WriteString("define ")
	sb.WriteString(f.returnType.String())
	sb.WriteRune(' ')
	sb.WriteString(f.Name())
	sb.WriteRune('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(paramTypeString(p.typ))
		sb.WriteRune(' ')
		sb.WriteString(p.Name())
		if p.typ.IsArray() {
			sb.WriteRune('*')
		}
	}
	sb.WriteString(") {\n")
	for _, l := range f.Locals {
		sb.WriteRune('\t')
		sb.WriteString(declareLine(l.Name(), l.typ))
		sb.WriteRune('\n')
	}
	for _, instr := range f.Body {
		line := instr.line()
		if line == "" {
			continue
		}
		sb.WriteRune('\t')
		sb.WriteString(line)
		sb.WriteRune('\n')
	}
	sb.WriteString("}\n")
	return sb.String()
}

// paramTypeString renders a parameter's declared type: array parameters
// decay to a pointer to their element type in the signature, rendered
// as the element type here with the '*' written after the parameter
// name by Function.String, e.g. `i32 %l1*`.
func paramTypeString(t types.Type) string {
	if t.IsArray() {
		return t.Elem.String()
	}
	return t.String()
}

// String renders one Instruction as a single IR text line, the same
// text that appears inside a Function's multi-line dump. Used by
// callers (e.g. the ARM backend's verbose mode) that interleave the IR
// alongside the code it lowers to, one instruction at a time.
func (i *Instruction) String() string {
	return i.line()
}

// line renders one Instruction as a single IR text line (without leading
// indentation or trailing newline). Labels render "name:", entry/exit
// render bare, everything else follows the same shape.
func (i *Instruction) line() string {
	switch i.Op {
	case OpEntry:
		return "entry:"
	case OpExit:
		if i.ReturnVal != nil {
			return fmt.Sprintf("exit [%s]", i.ReturnVal.Name())
		}
		return "exit"
	case OpLabel:
		return i.LabelName + ":"
	case OpGoto:
		if i.Cond == nil {
			return fmt.Sprintf("br label %s", i.Targets[0].Name())
		}
		return fmt.Sprintf("bc %s, label %s, label %s", i.Cond.Name(), i.Targets[0].Name(), i.Targets[1].Name())
	case OpAssign:
		return fmt.Sprintf("%s = %s", i.A.Name(), i.B.Name())
	case OpArg:
		return fmt.Sprintf("arg %s", i.A.Name())
	case OpFuncCall:
		args := make([]string, len(i.CallArgs))
		for k, a := range i.CallArgs {
			args[k] = a.Name()
		}
		if i.Typ.Kind == types.KindVoid {
			return fmt.Sprintf("call void %s(%s)", i.Callee.Name(), strings.Join(args, ", "))
		}
		return fmt.Sprintf("%s = call %s %s(%s)", i.Name(), i.Typ.String(), i.Callee.Name(), strings.Join(args, ", "))
	case OpLoadArray:
		return fmt.Sprintf("%s = *%s", i.Name(), i.A.Name())
	case OpStoreArray:
		return fmt.Sprintf("*%s = %s", i.A.Name(), i.B.Name())
	default:
		// Arithmetic, relational and pointer-add: %tK = %lX op %lY
		return fmt.Sprintf("%s = %s %s %s", i.Name(), i.A.Name(), i.Op.String(), i.B.Name())
	}
}
