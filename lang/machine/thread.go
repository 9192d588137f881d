package machine

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/mna/gox/lang/ir"
)

// Machine is a single run of a lowered module: operand stack, linear
// memory, globals, call frames and the ambient execution budget. It
// replaces the teacher's Thread, carrying over its injectable-I/O and
// step-budget shape (the concern spec.md's resource model calls for)
// while dropping the Starlark-specific recursion/predeclared/Load
// fields GoxLang has no use for.
type Machine struct {
	// Name is an optional name describing the machine, for error context.
	Name string

	// Stdout, Stderr and Stdin are the program's standard I/O streams. If
	// nil, os.Stdout, os.Stderr and os.Stdin are used respectively.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds the number of instructions executed before the
	// machine halts with a budget-exceeded RuntimeError. A value <= 0
	// means no limit.
	MaxSteps int

	// MaxMemory is the linear memory's initial size in bytes. A value <= 0
	// uses defaultMemorySize.
	MaxMemory int

	// Debug, when true, traces control-flow and call/return dispatch to
	// Stderr as each instruction executes.
	Debug bool

	ctx       context.Context
	ctxCancel func()
	cancelled atomic.Bool

	steps, maxSteps uint64

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	globals *globalTable
	funcs   *funcTable
	memory  *linearMemory

	// Execution state for the function currently running: its code, pc,
	// locals, call frames, and the structured-control-flow marker stacks.
	code                []ir.Instr
	pc                  int
	locals              map[string]StackValue
	currentFunctionName string
	callStack           []*callFrame
	operands            []StackValue
	ifStartStack        []int
	loopStartStack      []int
	pcSetByControlFlow  bool
	running             bool
}

// Run executes mod's "main" function to completion, starting via an
// internal call that pushes no return frame, matching the original's
// "run enters main through a frameless initial call" behavior.
func (m *Machine) Run(ctx context.Context, mod *ir.Module) error {
	m.init()
	ctx, cancel := context.WithCancel(ctx)
	m.ctx = ctx
	m.ctxCancel = cancel
	defer cancel()
	m.watchCancellation()

	m.globals = newGlobalTable(len(mod.Globals))
	for _, name := range mod.GlobalOrder {
		g := mod.Globals[name]
		m.globals.declare(name, g.IRType)
	}
	m.funcs = newFuncTable(mod)
	if m.memory == nil {
		m.memory = newLinearMemory(m.MaxMemory)
	}

	main, ok := m.funcs.get("main")
	if !ok {
		return &RuntimeError{Message: "no main function to run"}
	}

	m.running = true
	if err := m.call("main", main, true); err != nil {
		return err
	}
	return m.loop()
}

func (m *Machine) init() {
	if m.MaxSteps <= 0 {
		m.maxSteps-- // MaxUint64
	} else {
		m.maxSteps = uint64(m.MaxSteps)
	}
	if m.Stdout != nil {
		m.stdout = m.Stdout
	} else {
		m.stdout = os.Stdout
	}
	if m.Stderr != nil {
		m.stderr = m.Stderr
	} else {
		m.stderr = os.Stderr
	}
	if m.Stdin != nil {
		m.stdin = m.Stdin
	} else {
		m.stdin = os.Stdin
	}
}

// watchCancellation starts a goroutine that marks the machine cancelled
// once ctx is done, mirroring the teacher's thread-cancellation watcher.
func (m *Machine) watchCancellation() {
	if m.ctx == nil {
		return
	}
	go func() {
		<-m.ctx.Done()
		m.cancelled.Store(true)
	}()
}
