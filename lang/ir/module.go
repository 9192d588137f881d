package ir

import "github.com/mna/gox/lang/token"

// ValueType is the IR-level storage class of a value: int or float. Every
// stack slot, local, global and parameter carries one.
type ValueType uint8

const (
	I ValueType = iota // 32-bit signed integer
	F                  // 32-bit IEEE-754 float
)

func (t ValueType) String() string {
	if t == F {
		return "F"
	}
	return "I"
}

// irValueType maps a source base type to its IR storage class: int, bool
// and char are all carried as I; float as F.
func irValueType(t token.Token) ValueType {
	if t == token.FLOATTYPE {
		return F
	}
	return I
}

// Global is a module-level variable, lowered from a VarDecl declared at the
// top level (i.e. inside the synthetic main).
type Global struct {
	Name       string
	IRType     ValueType
	SourceType token.Token
}

// Function is a single function's lowered body: its signature plus a flat,
// linear instruction stream. Locals includes parameters.
type Function struct {
	Name             string
	ParamNames       []string
	ParamIRTypes     []ValueType
	ReturnIRType     ValueType
	ReturnSourceType token.Token // ILLEGAL if the function is void
	Imported         bool

	Locals       map[string]ValueType
	LocalsSource map[string]token.Token
	// LocalOrder preserves first-declaration order for deterministic dumps;
	// Locals/LocalsSource are keyed maps with no inherent order.
	LocalOrder []string

	Code []Instr
}

// NewFunction returns an empty Function ready to receive parameters,
// locals and code.
func NewFunction(name string) *Function {
	return &Function{
		Name:         name,
		Locals:       map[string]ValueType{},
		LocalsSource: map[string]token.Token{},
	}
}

// NewLocal registers name as a local of irType/sourceType, unless already
// present (re-declaring a local, e.g. a parameter, is a no-op).
func (fn *Function) NewLocal(name string, irType ValueType, sourceType token.Token) {
	if _, ok := fn.Locals[name]; ok {
		return
	}
	fn.Locals[name] = irType
	fn.LocalsSource[name] = sourceType
	fn.LocalOrder = append(fn.LocalOrder, name)
}

// Emit appends instr to fn's code.
func (fn *Function) Emit(instr Instr) { fn.Code = append(fn.Code, instr) }

// Module is the complete lowered program: every function and every global
// variable declared at the top level.
type Module struct {
	Functions map[string]*Function
	Globals   map[string]*Global
	// FuncOrder and GlobalOrder preserve declaration order for deterministic
	// dumps.
	FuncOrder   []string
	GlobalOrder []string
}

// NewModule returns an empty Module.
func NewModule() *Module {
	return &Module{Functions: map[string]*Function{}, Globals: map[string]*Global{}}
}

// NewGlobal registers name as a module global, unless already present.
func (m *Module) NewGlobal(name string, irType ValueType, sourceType token.Token) {
	if _, ok := m.Globals[name]; ok {
		return
	}
	m.Globals[name] = &Global{Name: name, IRType: irType, SourceType: sourceType}
	m.GlobalOrder = append(m.GlobalOrder, name)
}

// NewFunc registers and returns a new Function in m.
func (m *Module) NewFunc(name string) *Function {
	fn := NewFunction(name)
	m.Functions[name] = fn
	m.FuncOrder = append(m.FuncOrder, name)
	return fn
}
