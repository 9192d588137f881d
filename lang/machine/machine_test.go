package machine_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mna/gox/lang/checker"
	"github.com/mna/gox/lang/ir"
	"github.com/mna/gox/lang/machine"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/token"
)

func run(t *testing.T, src string, maxSteps int) (string, error) {
	t.Helper()
	fs := token.NewFileSet()
	prog, err := parser.ParseFile(fs, "test.gox", []byte(src))
	require.NoError(t, err)
	_, err = checker.Check(fs, prog, 0)
	require.NoError(t, err)
	mod := ir.Lower(prog)

	var out bytes.Buffer
	m := &machine.Machine{Stdout: &out, MaxSteps: maxSteps}
	err = m.Run(context.Background(), mod)
	return out.String(), err
}

func TestScenarioArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 2 + 3 * 4 - 5;`, 0)
	require.NoError(t, err)
	require.Equal(t, "9\n", out)
}

func TestScenarioWhileLoop(t *testing.T) {
	out, err := run(t, `var x int = 0; while x < 3 { print x; x = x + 1; }`, 0)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestScenarioFunctionCall(t *testing.T) {
	out, err := run(t, `func add(a int, b int) int { return a + b; } print add(2, 40);`, 0)
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}

func TestScenarioIfElse(t *testing.T) {
	out, err := run(t, `if true { print 1; } else { print 2; }`, 0)
	require.NoError(t, err)
	require.Equal(t, "1\n", out)

	out, err = run(t, `if false { print 1; } else { print 2; }`, 0)
	require.NoError(t, err)
	require.Equal(t, "2\n", out)
}

func TestScenarioMemoryRoundTrip(t *testing.T) {
	out, err := run(t, "var p int = ^ 4; `p = 7; print `p;", 0)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestScenarioLoopBreak(t *testing.T) {
	out, err := run(t, `
		var i int = 0;
		while i < 5 {
			if i == 3 { break; }
			print i;
			i = i + 1;
		}
	`, 0)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestInterpreterShortCircuitAnd(t *testing.T) {
	out, err := run(t, `
		func f() int { print 1; return 0; }
		func g() int { print 2; return 1; }
		print f() != 0 && g() != 0;
	`, 0)
	require.NoError(t, err)
	require.Equal(t, "1\n0\n", out) // f prints, g is never called since f is falsy
}

func TestInterpreterShortCircuitOr(t *testing.T) {
	out, err := run(t, `
		func f() int { print 1; return 1; }
		func g() int { print 2; return 1; }
		print f() != 0 || g() != 0;
	`, 0)
	require.NoError(t, err)
	require.Equal(t, "1\n1\n", out) // f is truthy, g is never called
}

func TestEndiannessRoundTripFloat(t *testing.T) {
	out, err := run(t, "var p int = ^ 4; `(p) = 3.5; var q float = `(p); print q;", 0)
	require.NoError(t, err)
	require.Equal(t, "3.5\n", out)
}

func TestInstructionBudgetExceeded(t *testing.T) {
	_, err := run(t, `while true { }`, 1000)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestInstructionBudgetViaContextCancellation(t *testing.T) {
	fs := token.NewFileSet()
	prog, err := parser.ParseFile(fs, "test.gox", []byte(`while true { }`))
	require.NoError(t, err)
	_, err = checker.Check(fs, prog, 0)
	require.NoError(t, err)
	mod := ir.Lower(prog)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	m := &machine.Machine{Stdout: &out}
	err = m.Run(ctx, mod)
	require.Error(t, err)
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, `print 1 / 0;`, 0)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
}
