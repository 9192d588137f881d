package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/gox/lang/checker"
	"github.com/mna/gox/lang/ir"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/token"
)

func lower(t *testing.T, src string) *ir.Module {
	t.Helper()
	fs := token.NewFileSet()
	prog, err := parser.ParseFile(fs, "test.gox", []byte(src))
	require.NoError(t, err)
	_, err = checker.Check(fs, prog, 0)
	require.NoError(t, err)
	return ir.Lower(prog)
}

func opcodes(fn *ir.Function) []ir.Opcode {
	ops := make([]ir.Opcode, len(fn.Code))
	for i, instr := range fn.Code {
		ops[i] = instr.Op
	}
	return ops
}

func TestLowerSyntheticMainCallsActualMain(t *testing.T) {
	m := lower(t, `func main() int { return 42; }`)
	require.Contains(t, m.Functions, "_actual_main")
	top := m.Functions["main"]
	require.Equal(t, []ir.Opcode{ir.CALL, ir.RET}, opcodes(top))
	require.Equal(t, "_actual_main", top.Code[0].StrArg)
}

func TestLowerSyntheticMainWithoutUserMain(t *testing.T) {
	m := lower(t, `print 1;`)
	require.NotContains(t, m.Functions, "_actual_main")
	top := m.Functions["main"]
	last := top.Code[len(top.Code)-1]
	require.Equal(t, ir.RET, last.Op)
	require.Equal(t, ir.CONSTI, top.Code[len(top.Code)-2].Op)
	require.EqualValues(t, 0, top.Code[len(top.Code)-2].IntArg)
}

func TestLowerGlobalsAreTopLevelVars(t *testing.T) {
	m := lower(t, `
		var x int = 1;
		func f() {
			var y int = 2;
		}
	`)
	require.Contains(t, m.Globals, "x")
	require.NotContains(t, m.Globals, "y")
	fn := m.Functions["f"]
	require.Contains(t, fn.Locals, "y")
}

func TestLowerFunctionEndsWithRetWhenReturnDeclared(t *testing.T) {
	m := lower(t, `
		func f() int {
			if true {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	fn := m.Functions["f"]
	require.Equal(t, ir.RET, fn.Code[len(fn.Code)-1].Op)
}

func TestLowerControlFlowBracketBalance(t *testing.T) {
	m := lower(t, `
		var i int = 0;
		while i < 5 {
			if i == 3 {
				break;
			}
			print i;
			i = i + 1;
		}
	`)
	top := m.Functions["main"]
	var ifDepth, loopDepth int
	for _, instr := range top.Code {
		switch instr.Op {
		case ir.IF:
			ifDepth++
		case ir.ENDIF:
			ifDepth--
			require.GreaterOrEqual(t, ifDepth, 0)
		case ir.LOOP:
			loopDepth++
		case ir.ENDLOOP:
			loopDepth--
			require.GreaterOrEqual(t, loopDepth, 0)
		}
	}
	require.Zero(t, ifDepth)
	require.Zero(t, loopDepth)
}

func TestLowerShortCircuitAndOr(t *testing.T) {
	m := lower(t, `print true && false;`)
	top := m.Functions["main"]
	require.Equal(t, []ir.Opcode{
		ir.CONSTI, ir.IF, ir.CONSTI, ir.ELSE, ir.CONSTI, ir.ENDIF, ir.PRINTI,
		ir.CONSTI, ir.RET,
	}, opcodes(top))

	m = lower(t, `print true || false;`)
	top = m.Functions["main"]
	require.Equal(t, []ir.Opcode{
		ir.CONSTI, ir.IF, ir.CONSTI, ir.ELSE, ir.CONSTI, ir.ENDIF, ir.PRINTI,
		ir.CONSTI, ir.RET,
	}, opcodes(top))
	require.EqualValues(t, 1, top.Code[2].IntArg) // a true left side short-circuits to 1
}

func TestLowerWhileOneMinusCondTrick(t *testing.T) {
	m := lower(t, `while true { print 1; }`)
	top := m.Functions["main"]
	ops := opcodes(top)
	require.Equal(t, ir.LOOP, ops[0])
	require.Equal(t, ir.CONSTI, ops[1])
	require.Equal(t, ir.CONSTI, ops[2]) // the `true` condition
	require.Equal(t, ir.SUBI, ops[3])
	require.Equal(t, ir.CBREAK, ops[4])
}

func TestLowerIndexedMemoryScaling(t *testing.T) {
	m := lower(t, `var p int = ^4; var x float = `+"`"+`(p + 1);`)
	top := m.Functions["main"]
	ops := opcodes(top)
	// base, index, CONSTI 4, MULI, ADDI, PEEKF somewhere in the tail.
	require.Contains(t, ops, ir.MULI)
	require.Contains(t, ops, ir.ADDI)
	require.Contains(t, ops, ir.PEEKF)
}

func TestLowerBreakIsUnconditionalCBreak(t *testing.T) {
	m := lower(t, `while true { break; }`)
	top := m.Functions["main"]
	ops := opcodes(top)
	// find the break's CONSTI 1; CBREAK pair right before ENDLOOP, which is
	// followed by the synthetic main's trailing CONSTI 0; RET.
	require.Equal(t, ir.CBREAK, ops[len(ops)-4])
	require.Equal(t, ir.ENDLOOP, ops[len(ops)-3])
}

func TestLowerFunctionCallArgOrderAndArity(t *testing.T) {
	m := lower(t, `
		func add(a int, b int) int { return a + b; }
		print add(2, 40);
	`)
	fn := m.Functions["add"]
	require.Equal(t, []string{"a", "b"}, fn.ParamNames)
	require.Equal(t, []ir.ValueType{ir.I, ir.I}, fn.ParamIRTypes)

	top := m.Functions["main"]
	ops := opcodes(top)
	require.Contains(t, ops, ir.CALL)
}

func TestLowerUnaryNegationAndAllocation(t *testing.T) {
	m := lower(t, `var p int = ^4;`)
	top := m.Functions["main"]
	ops := opcodes(top)
	require.Equal(t, []ir.Opcode{ir.CONSTI, ir.CONSTI, ir.MULI, ir.GROW, ir.GLOBAL_SET}, ops[:5])

	m = lower(t, `print -3;`)
	top = m.Functions["main"]
	ops = opcodes(top)
	require.Equal(t, []ir.Opcode{ir.CONSTI, ir.CONSTI, ir.MULI, ir.PRINTI, ir.CONSTI, ir.RET}, ops)
	require.EqualValues(t, -1, top.Code[1].IntArg)
}

func TestLowerBangLowersToConstZeroEqi(t *testing.T) {
	m := lower(t, `print !true;`)
	top := m.Functions["main"]
	ops := opcodes(top)
	require.Equal(t, []ir.Opcode{ir.CONSTI, ir.CONSTI, ir.EQI, ir.PRINTI, ir.CONSTI, ir.RET}, ops)
}

func TestLowerImportedFunctionHasNoBody(t *testing.T) {
	m := lower(t, `import func puts(s int);`)
	fn := m.Functions["puts"]
	require.True(t, fn.Imported)
	require.Empty(t, fn.Code)
}
