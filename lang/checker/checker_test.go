package checker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/checker"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/token"
)

func check(t *testing.T, src string, mode checker.Mode) (*checker.Symtab, error) {
	t.Helper()
	fs := token.NewFileSet()
	prog, err := parser.ParseFile(fs, "test.gox", []byte(src))
	require.NoError(t, err)
	return checker.Check(fs, prog, mode)
}

func TestCheckVarDeclInferenceAndExplicitType(t *testing.T) {
	_, err := check(t, "var x int = 1; var y = 2.5; const z bool = true;", 0)
	require.NoError(t, err)
}

func TestCheckVarDeclTypeMismatch(t *testing.T) {
	_, err := check(t, "var x int = 2.5;", 0)
	require.Error(t, err)
}

func TestCheckRedeclaration(t *testing.T) {
	_, err := check(t, "var x int = 1; var x int = 2;", 0)
	require.Error(t, err)
}

func TestCheckShadowingInChildScopeAllowed(t *testing.T) {
	_, err := check(t, `
		var x int = 1;
		if true {
			var x float = 1.5;
			print x;
		}
	`, 0)
	require.NoError(t, err)
}

func TestCheckAssignToConst(t *testing.T) {
	_, err := check(t, "const x int = 1; x = 2;", 0)
	require.Error(t, err)
}

func TestCheckFuncDeclAndCall(t *testing.T) {
	_, err := check(t, `
		func add(a int, b int) int {
			return a + b;
		}
		print add(1, 2);
	`, 0)
	require.NoError(t, err)
}

func TestCheckFuncArityMismatch(t *testing.T) {
	_, err := check(t, `
		func add(a int, b int) int {
			return a + b;
		}
		print add(1);
	`, 0)
	require.Error(t, err)
}

func TestCheckNestedFunctionRejected(t *testing.T) {
	_, err := check(t, `
		func outer() {
			func inner() {
				return;
			}
		}
	`, 0)
	require.Error(t, err)
}

func TestCheckMissingReturnOnSomePath(t *testing.T) {
	_, err := check(t, `
		func f() int {
			if true {
				return 1;
			}
		}
	`, 0)
	require.Error(t, err)
}

func TestCheckReturnInBothBranchesSatisfies(t *testing.T) {
	_, err := check(t, `
		func f() int {
			if true {
				return 1;
			} else {
				return 2;
			}
		}
	`, 0)
	require.NoError(t, err)
}

func TestCheckWhileDoesNotGuaranteeReturn(t *testing.T) {
	_, err := check(t, `
		func f() int {
			while true {
				return 1;
			}
		}
	`, 0)
	require.Error(t, err)
}

func TestCheckBreakContinueOutsideLoop(t *testing.T) {
	_, err := check(t, "break;", 0)
	require.Error(t, err)

	_, err = check(t, "continue;", 0)
	require.Error(t, err)
}

func TestCheckBreakContinueInsideLoop(t *testing.T) {
	_, err := check(t, `
		var i int = 0;
		while i < 3 {
			if i == 1 {
				break;
			}
			i = i + 1;
		}
	`, 0)
	require.NoError(t, err)
}

func TestCheckReturnOutsideFunction(t *testing.T) {
	_, err := check(t, "return 1;", 0)
	require.Error(t, err)
}

func TestCheckIfWhileConditionMustBeBool(t *testing.T) {
	_, err := check(t, "if 1 { print 1; }", 0)
	require.Error(t, err)

	_, err = check(t, "while 1 { print 1; }", 0)
	require.Error(t, err)
}

func TestCheckMemoryLocationElemTypeFromVarDecl(t *testing.T) {
	fs := token.NewFileSet()
	prog, err := parser.ParseFile(fs, "test.gox", []byte("var p int = ^4; var x float = `p;"))
	require.NoError(t, err)
	_, err = checker.Check(fs, prog, 0)
	require.NoError(t, err)

	decl := prog.Stmts[1].(*ast.VarDecl)
	ml := decl.Init.(*ast.MemoryLocation)
	require.Equal(t, token.FLOATTYPE, ml.ElemType)
}

func TestCheckMemoryLocationElemTypeFromStoredValue(t *testing.T) {
	fs := token.NewFileSet()
	prog, err := parser.ParseFile(fs, "test.gox", []byte("var p int = ^4; `p = 7;"))
	require.NoError(t, err)
	_, err = checker.Check(fs, prog, 0)
	require.NoError(t, err)

	assign := prog.Stmts[1].(*ast.Assign)
	ml := assign.Loc.(*ast.MemoryLocation)
	require.Equal(t, token.INTTYPE, ml.ElemType)
}

func TestCheckNameBlocksLeavesRootUnnamed(t *testing.T) {
	root, err := check(t, `
		if true {
			print 1;
		}
		if true {
			print 2;
		}
	`, checker.NameBlocks)
	require.NoError(t, err)
	require.Equal(t, "", root.Name)
}
