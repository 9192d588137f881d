// Package machine implements the stack machine that executes a lowered
// module: a typed operand stack, call frames, byte-addressable linear
// memory, and structured control flow resolved by forward scan rather
// than pre-resolved jump offsets.
package machine

import (
	"fmt"

	"github.com/mna/gox/lang/ir"
	"github.com/mna/gox/lang/token"
)

// loop is the main fetch-dispatch-advance cycle: bump the step counter
// and check the instruction budget and cancellation, fetch and execute
// the instruction at pc, then advance pc by one unless the instruction
// itself redirected control flow.
func (m *Machine) loop() error {
	for m.running {
		m.steps++
		if m.steps > m.maxSteps {
			return m.runtimeErrorf("instruction budget exceeded")
		}
		if m.cancelled.Load() {
			return m.runtimeErrorf("execution cancelled")
		}

		if m.pc >= len(m.code) {
			if err := m.implicitReturn(); err != nil {
				return err
			}
			continue
		}

		instr := m.code[m.pc]
		m.pcSetByControlFlow = false
		if err := m.dispatch(instr); err != nil {
			return err
		}
		if !m.pcSetByControlFlow {
			m.pc++
		}
	}
	return nil
}

// implicitReturn handles running off the end of a function's
// instructions without an explicit RET: the declared return type's zero
// value is pushed if the stack doesn't already carry a matching result,
// then control returns as if RET had executed.
func (m *Machine) implicitReturn() error {
	if fn, ok := m.funcs.get(m.currentFunctionName); ok && fn.ReturnSourceType != token.ILLEGAL {
		if len(m.operands) == 0 || m.operands[len(m.operands)-1].Type != fn.ReturnIRType {
			m.push(zero(fn.ReturnIRType))
		}
	}
	return m.opRET()
}

func (m *Machine) dispatch(instr ir.Instr) error {
	switch instr.Op {
	case ir.CONSTI:
		m.push(IntValue(instr.IntArg))
	case ir.CONSTF:
		m.push(FloatValue(instr.FloatArg))

	case ir.ADDI, ir.SUBI, ir.MULI, ir.DIVI, ir.LTI, ir.LEI, ir.GTI, ir.GEI, ir.EQI, ir.NEI, ir.ANDI, ir.ORI:
		return m.binInt(instr.Op)
	case ir.ADDF, ir.SUBF, ir.MULF, ir.DIVF, ir.LTF, ir.LEF, ir.GTF, ir.GEF, ir.EQF, ir.NEF:
		return m.binFloat(instr.Op)

	case ir.ITOF:
		v, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		m.push(FloatValue(float64(v.I)))
	case ir.FTOI:
		v, err := m.pop(ir.F)
		if err != nil {
			return err
		}
		m.push(IntValue(int64(v.F)))

	case ir.PRINTI:
		v, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		fmt.Fprintln(m.stdout, v.I)
	case ir.PRINTF:
		v, err := m.pop(ir.F)
		if err != nil {
			return err
		}
		fmt.Fprintln(m.stdout, v.F)
	case ir.PRINTB:
		v, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		fmt.Fprint(m.stdout, string(rune(v.I)))

	case ir.PEEKI, ir.PEEKF, ir.PEEKB:
		return m.peek(instr.Op)
	case ir.POKEI, ir.POKEF, ir.POKEB:
		return m.poke(instr.Op)
	case ir.GROW:
		n, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		m.push(IntValue(m.memory.grow(n.I)))

	case ir.LOCAL_GET:
		v, ok := m.locals[instr.StrArg]
		if !ok {
			return m.runtimeErrorf("unknown local %q", instr.StrArg)
		}
		m.push(v)
	case ir.LOCAL_SET:
		v, err := m.popAny()
		if err != nil {
			return err
		}
		m.locals[instr.StrArg] = v
	case ir.GLOBAL_GET:
		slot, ok := m.globals.get(instr.StrArg)
		if !ok {
			return m.runtimeErrorf("unknown global %q", instr.StrArg)
		}
		m.push(slot.value)
	case ir.GLOBAL_SET:
		v, err := m.popAny()
		if err != nil {
			return err
		}
		slot, ok := m.globals.get(instr.StrArg)
		if !ok {
			return m.runtimeErrorf("unknown global %q", instr.StrArg)
		}
		if v.Type != slot.typ {
			return m.runtimeErrorf("global %q: assigned %s, declared %s", instr.StrArg, v.Type, slot.typ)
		}
		slot.value = v

	case ir.CALL:
		m.trace("CALL", instr.StrArg)
		return m.opCALL(instr.StrArg)
	case ir.RET:
		m.trace("RET", m.currentFunctionName)
		return m.opRET()

	case ir.IF:
		m.trace("IF", "")
		return m.opIF()
	case ir.ELSE:
		m.trace("ELSE", "")
		return m.opELSE()
	case ir.ENDIF:
		m.trace("ENDIF", "")
		return m.opENDIF()
	case ir.LOOP:
		m.trace("LOOP", "")
		m.loopStartStack = append(m.loopStartStack, m.pc)
	case ir.CBREAK:
		m.trace("CBREAK", "")
		return m.opCBREAK()
	case ir.CONTINUE:
		m.trace("CONTINUE", "")
		return m.opCONTINUE()
	case ir.ENDLOOP:
		m.trace("ENDLOOP", "")
		return m.opENDLOOP()

	default:
		return m.runtimeErrorf("unknown opcode %s", instr.Op)
	}
	return nil
}

// trace writes a single opcode-dispatch line to Stderr when Debug is set,
// mirroring the original interpreter's _log_debug tracing of control-flow
// and call/return opcodes.
func (m *Machine) trace(op, arg string) {
	if !m.Debug {
		return
	}
	if arg == "" {
		fmt.Fprintf(m.stderr, "DISPATCH_%s pc=%d fn=%s\n", op, m.pc, m.currentFunctionName)
	} else {
		fmt.Fprintf(m.stderr, "DISPATCH_%s pc=%d fn=%s arg=%s\n", op, m.pc, m.currentFunctionName, arg)
	}
}

func boolInt(cond bool) StackValue {
	if cond {
		return IntValue(1)
	}
	return IntValue(0)
}

func (m *Machine) binInt(op ir.Opcode) error {
	b, err := m.pop(ir.I)
	if err != nil {
		return err
	}
	a, err := m.pop(ir.I)
	if err != nil {
		return err
	}
	switch op {
	case ir.ADDI:
		m.push(IntValue(a.I + b.I))
	case ir.SUBI:
		m.push(IntValue(a.I - b.I))
	case ir.MULI:
		m.push(IntValue(a.I * b.I))
	case ir.DIVI:
		if b.I == 0 {
			return m.runtimeErrorf("division by zero")
		}
		m.push(IntValue(a.I / b.I))
	case ir.LTI:
		m.push(boolInt(a.I < b.I))
	case ir.LEI:
		m.push(boolInt(a.I <= b.I))
	case ir.GTI:
		m.push(boolInt(a.I > b.I))
	case ir.GEI:
		m.push(boolInt(a.I >= b.I))
	case ir.EQI:
		m.push(boolInt(a.I == b.I))
	case ir.NEI:
		m.push(boolInt(a.I != b.I))
	case ir.ANDI:
		m.push(IntValue(a.I & b.I))
	case ir.ORI:
		m.push(IntValue(a.I | b.I))
	}
	return nil
}

func (m *Machine) binFloat(op ir.Opcode) error {
	b, err := m.pop(ir.F)
	if err != nil {
		return err
	}
	a, err := m.pop(ir.F)
	if err != nil {
		return err
	}
	switch op {
	case ir.ADDF:
		m.push(FloatValue(a.F + b.F))
	case ir.SUBF:
		m.push(FloatValue(a.F - b.F))
	case ir.MULF:
		m.push(FloatValue(a.F * b.F))
	case ir.DIVF:
		if b.F == 0 {
			return m.runtimeErrorf("division by zero")
		}
		m.push(FloatValue(a.F / b.F))
	case ir.LTF:
		m.push(boolInt(a.F < b.F))
	case ir.LEF:
		m.push(boolInt(a.F <= b.F))
	case ir.GTF:
		m.push(boolInt(a.F > b.F))
	case ir.GEF:
		m.push(boolInt(a.F >= b.F))
	case ir.EQF:
		m.push(boolInt(a.F == b.F))
	case ir.NEF:
		m.push(boolInt(a.F != b.F))
	}
	return nil
}

func (m *Machine) peek(op ir.Opcode) error {
	addr, err := m.pop(ir.I)
	if err != nil {
		return err
	}
	switch op {
	case ir.PEEKI:
		v, err := m.memory.peekInt(addr.I)
		if err != nil {
			return m.runtimeErrorf("%s", err)
		}
		m.push(IntValue(v))
	case ir.PEEKF:
		v, err := m.memory.peekFloat(addr.I)
		if err != nil {
			return m.runtimeErrorf("%s", err)
		}
		m.push(FloatValue(v))
	case ir.PEEKB:
		v, err := m.memory.peekByte(addr.I)
		if err != nil {
			return m.runtimeErrorf("%s", err)
		}
		m.push(IntValue(v))
	}
	return nil
}

func (m *Machine) poke(op ir.Opcode) error {
	switch op {
	case ir.POKEI:
		v, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		addr, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		if err := m.memory.pokeInt(addr.I, v.I); err != nil {
			return m.runtimeErrorf("%s", err)
		}
	case ir.POKEF:
		v, err := m.pop(ir.F)
		if err != nil {
			return err
		}
		addr, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		if err := m.memory.pokeFloat(addr.I, v.F); err != nil {
			return m.runtimeErrorf("%s", err)
		}
	case ir.POKEB:
		v, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		addr, err := m.pop(ir.I)
		if err != nil {
			return err
		}
		if err := m.memory.pokeByte(addr.I, v.I); err != nil {
			return m.runtimeErrorf("%s", err)
		}
	}
	return nil
}

// opCALL resolves name to its lowered function and dispatches the call.
func (m *Machine) opCALL(name string) error {
	fn, ok := m.funcs.get(name)
	if !ok {
		return m.runtimeErrorf("call to undefined function %q", name)
	}
	return m.call(name, fn, false)
}

// call binds fn's parameters off the operand stack, zero-initializes its
// remaining locals, and switches execution into its code. Imported
// (boundary) functions are a no-op stub: their arguments are discarded
// and a single zero value of the declared return type is pushed, with no
// frame pushed and no code switch. The very first call into main is
// marked isInitial and pushes no return frame, so its eventual RET halts
// the machine instead of returning to a caller.
func (m *Machine) call(name string, fn *ir.Function, isInitial bool) error {
	if fn.Imported {
		for range fn.ParamNames {
			if len(m.operands) == 0 {
				break
			}
			m.operands = m.operands[:len(m.operands)-1]
		}
		m.push(zero(fn.ReturnIRType))
		return nil
	}

	args := make([]StackValue, len(fn.ParamNames))
	for i := len(fn.ParamNames) - 1; i >= 0; i-- {
		v, err := m.pop(fn.ParamIRTypes[i])
		if err != nil {
			return err
		}
		args[i] = v
	}

	newLocals := make(map[string]StackValue, len(fn.Locals))
	for i, pname := range fn.ParamNames {
		newLocals[pname] = args[i]
	}
	for _, lname := range fn.LocalOrder {
		if _, ok := newLocals[lname]; !ok {
			newLocals[lname] = zero(fn.Locals[lname])
		}
	}

	if !isInitial {
		m.callStack = append(m.callStack, &callFrame{
			returnPC:             m.pc + 1,
			returnCode:           m.code,
			previousFunctionName: m.currentFunctionName,
			previousLocals:       m.locals,
		})
	}
	m.locals = newLocals
	m.code = fn.Code
	m.pc = 0
	m.currentFunctionName = name
	m.pcSetByControlFlow = true
	return nil
}

// opRET halts the machine if no frame is active (the outermost RET,
// reached from the synthetic top-level main), otherwise pops the frame
// and restores the caller's pc, code, function name and locals. The
// return value, if any, is left on the operand stack for the caller.
func (m *Machine) opRET() error {
	if len(m.callStack) == 0 {
		m.running = false
		m.pcSetByControlFlow = true
		return nil
	}
	frame := m.callStack[len(m.callStack)-1]
	m.callStack = m.callStack[:len(m.callStack)-1]
	m.pc = frame.returnPC
	m.code = frame.returnCode
	m.currentFunctionName = frame.previousFunctionName
	m.locals = frame.previousLocals
	m.pcSetByControlFlow = true
	return nil
}

// findJumpTarget is the single forward-scan primitive behind every
// structured control-flow resolution: starting just after pc, it scans
// for primary (or secondary, when hasSecondary) at nesting depth zero,
// tracking depth via openOp/closeOp so a nested construct's own markers
// are skipped rather than mistaken for the outer one's.
func (m *Machine) findJumpTarget(pc int, primary, secondary ir.Opcode, hasSecondary bool, openOp, closeOp ir.Opcode) (int, error) {
	nest := 0
	for i := pc + 1; i < len(m.code); i++ {
		op := m.code[i].Op
		if nest == 0 && (op == primary || (hasSecondary && op == secondary)) {
			return i, nil
		}
		switch op {
		case openOp:
			nest++
		case closeOp:
			nest--
		}
	}
	return 0, m.runtimeErrorf("mismatched control flow: no matching %s found", primary)
}

// opIF pushes the IF's pc unconditionally so ELSE/ENDIF can find it, then
// on a falsy condition jumps to the matching ELSE or ENDIF: landing on
// ELSE enters the else-block (pc set just past the marker), landing on
// ENDIF (no else-block) falls through to ENDIF's own bookkeeping. A
// truthy condition simply falls through into the then-block.
func (m *Machine) opIF() error {
	ifPC := m.pc
	m.ifStartStack = append(m.ifStartStack, ifPC)

	cond, err := m.pop(ir.I)
	if err != nil {
		m.ifStartStack = m.ifStartStack[:len(m.ifStartStack)-1]
		return err
	}
	if cond.I == 0 {
		target, err := m.findJumpTarget(ifPC, ir.ELSE, ir.ENDIF, true, ir.IF, ir.ENDIF)
		if err != nil {
			m.ifStartStack = m.ifStartStack[:len(m.ifStartStack)-1]
			return err
		}
		if m.code[target].Op == ir.ELSE {
			m.pc = target + 1
		} else {
			m.pc = target
		}
		m.pcSetByControlFlow = true
	}
	return nil
}

// opELSE only ever runs when the then-block fell through (a truthy
// condition): it skips the else-block by jumping to the matching ENDIF.
func (m *Machine) opELSE() error {
	if len(m.ifStartStack) == 0 {
		return m.runtimeErrorf("ELSE without matching IF")
	}
	ifPC := m.ifStartStack[len(m.ifStartStack)-1]
	target, err := m.findJumpTarget(ifPC, ir.ENDIF, 0, false, ir.IF, ir.ENDIF)
	if err != nil {
		return err
	}
	m.pc = target
	m.pcSetByControlFlow = true
	return nil
}

func (m *Machine) opENDIF() error {
	if len(m.ifStartStack) > 0 {
		m.ifStartStack = m.ifStartStack[:len(m.ifStartStack)-1]
	}
	return nil
}

// opCBREAK pops a condition; a truthy one exits the innermost loop by
// jumping just past its matching ENDLOOP and retiring that loop's marker.
func (m *Machine) opCBREAK() error {
	cond, err := m.pop(ir.I)
	if err != nil {
		return err
	}
	if cond.I == 0 {
		return nil
	}
	if len(m.loopStartStack) == 0 {
		return m.runtimeErrorf("CBREAK without matching LOOP")
	}
	loopPC := m.loopStartStack[len(m.loopStartStack)-1]
	target, err := m.findJumpTarget(loopPC, ir.ENDLOOP, 0, false, ir.LOOP, ir.ENDLOOP)
	if err != nil {
		return err
	}
	m.loopStartStack = m.loopStartStack[:len(m.loopStartStack)-1]
	m.pc = target + 1
	m.pcSetByControlFlow = true
	return nil
}

// opCONTINUE jumps back to the innermost loop's LOOP marker, which
// re-evaluates the loop's condition on the next cycle. The loop's entry is
// popped first, since the LOOP marker pushes it again.
func (m *Machine) opCONTINUE() error {
	if len(m.loopStartStack) == 0 {
		return m.runtimeErrorf("CONTINUE without matching LOOP")
	}
	top := len(m.loopStartStack) - 1
	m.pc = m.loopStartStack[top]
	m.loopStartStack = m.loopStartStack[:top]
	m.pcSetByControlFlow = true
	return nil
}

// opENDLOOP restarts the loop from its LOOP marker. The loop's entry is
// popped first, since the LOOP marker pushes it again; a successful CBREAK
// retires it for good.
func (m *Machine) opENDLOOP() error {
	if len(m.loopStartStack) == 0 {
		return m.runtimeErrorf("ENDLOOP without matching LOOP")
	}
	top := len(m.loopStartStack) - 1
	m.pc = m.loopStartStack[top]
	m.loopStartStack = m.loopStartStack[:top]
	m.pcSetByControlFlow = true
	return nil
}

func (m *Machine) push(v StackValue) { m.operands = append(m.operands, v) }

// pop removes and returns the top of the operand stack, raising a
// RuntimeError on underflow or if its type doesn't match expected.
func (m *Machine) pop(expected ir.ValueType) (StackValue, error) {
	v, err := m.popAny()
	if err != nil {
		return StackValue{}, err
	}
	if v.Type != expected {
		return StackValue{}, m.runtimeErrorf("stack type mismatch: expected %s, got %s", expected, v.Type)
	}
	return v, nil
}

// popAny removes and returns the top of the operand stack without a
// type check, used where the IR guarantees the type (locals/globals
// storage) rather than the machine.
func (m *Machine) popAny() (StackValue, error) {
	if len(m.operands) == 0 {
		return StackValue{}, m.runtimeErrorf("stack underflow")
	}
	v := m.operands[len(m.operands)-1]
	m.operands = m.operands[:len(m.operands)-1]
	return v, nil
}
