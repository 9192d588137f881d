package ir

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes m's text representation to w in the module's canonical
// format: a MODULE header, one GLOBAL line per global, then one FUNCTION
// block per function (signature, locals, one instruction per line).
// Iteration order follows declaration order, not map order.
func Dump(w io.Writer, m *Module) error {
	if _, err := fmt.Fprintln(w, "MODULE:::"); err != nil {
		return err
	}
	for _, name := range m.GlobalOrder {
		g := m.Globals[name]
		if _, err := fmt.Fprintf(w, "GLOBAL::: %s: %s\n", g.Name, g.IRType); err != nil {
			return err
		}
	}
	for _, name := range m.FuncOrder {
		fn := m.Functions[name]
		if err := dumpFunction(w, fn); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunction(w io.Writer, fn *Function) error {
	names := stringList(fn.ParamNames)
	types := typeList(fn.ParamIRTypes)
	if _, err := fmt.Fprintf(w, "FUNCTION::: %s, %s, %s %s\n", fn.Name, names, types, fn.ReturnIRType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "locals: %s\n", localsMap(fn)); err != nil {
		return err
	}
	for _, instr := range fn.Code {
		if _, err := fmt.Fprintln(w, instr.String()); err != nil {
			return err
		}
	}
	return nil
}

func stringList(ss []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range ss {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", s)
	}
	b.WriteByte(']')
	return b.String()
}

func typeList(ts []ValueType) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range ts {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", t.String())
	}
	b.WriteByte(']')
	return b.String()
}

func localsMap(fn *Function) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range fn.LocalOrder {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %q", name, fn.Locals[name].String())
	}
	b.WriteByte('}')
	return b.String()
}
