package machine

import (
	"github.com/dolthub/swiss"

	"github.com/mna/gox/lang/ir"
)

// globalSlot is a module global's current value plus its declared IR
// type, so GLOBAL_SET can assert the stored type never drifts.
type globalSlot struct {
	value StackValue
	typ   ir.ValueType
}

// globalTable is the machine's global-variable store, keyed by name.
type globalTable struct {
	m *swiss.Map[string, *globalSlot]
}

func newGlobalTable(size int) *globalTable {
	return &globalTable{m: swiss.NewMap[string, *globalSlot](uint32(size))}
}

func (t *globalTable) declare(name string, irType ir.ValueType) {
	t.m.Put(name, &globalSlot{value: zero(irType), typ: irType})
}

func (t *globalTable) get(name string) (*globalSlot, bool) {
	return t.m.Get(name)
}

// funcTable is the machine's function table, keyed by name, built once
// from the lowered module and looked up on every CALL.
type funcTable struct {
	m *swiss.Map[string, *ir.Function]
}

func newFuncTable(mod *ir.Module) *funcTable {
	t := &funcTable{m: swiss.NewMap[string, *ir.Function](uint32(len(mod.Functions)))}
	for name, fn := range mod.Functions {
		t.m.Put(name, fn)
	}
	return t
}

func (t *funcTable) get(name string) (*ir.Function, bool) {
	return t.m.Get(name)
}
