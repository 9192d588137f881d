package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/token"
)

func parse(t *testing.T, src string) (*token.FileSet, *ast.Program, error) {
	t.Helper()
	fs := token.NewFileSet()
	prog, err := parser.ParseFile(fs, "test.gox", []byte(src))
	return fs, prog, err
}

func TestParseVarDecl(t *testing.T) {
	_, prog, err := parse(t, "var x int = 1; const y = 2;")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)

	v1 := prog.Stmts[0].(*ast.VarDecl)
	require.False(t, v1.Const)
	require.Equal(t, "x", v1.Name)
	require.Equal(t, token.INTTYPE, v1.Type)
	require.NotNil(t, v1.Init)

	v2 := prog.Stmts[1].(*ast.VarDecl)
	require.True(t, v2.Const)
	require.Equal(t, "y", v2.Name)
	require.Equal(t, token.ILLEGAL, v2.Type)
	require.NotNil(t, v2.Init)
}

func TestParseFuncDecl(t *testing.T) {
	_, prog, err := parse(t, `
		func add(a int, b int) int {
			return a + b;
		}
		import func puts(s int);
	`)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)

	add := prog.Stmts[0].(*ast.FuncDecl)
	require.False(t, add.Imported)
	require.Equal(t, "add", add.Name)
	require.Len(t, add.Params, 2)
	require.Equal(t, token.INTTYPE, add.RetType)
	require.NotNil(t, add.Body)
	require.Len(t, add.Body.Stmts, 1)

	puts := prog.Stmts[1].(*ast.FuncDecl)
	require.True(t, puts.Imported)
	require.Nil(t, puts.Body)
}

func TestParseIfWhile(t *testing.T) {
	_, prog, err := parse(t, `
		if x < 1 {
			print x;
		} else {
			print 0;
		}
		while x < 10 {
			x = x + 1;
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)

	ifs := prog.Stmts[0].(*ast.If)
	require.NotNil(t, ifs.Else)
	require.IsType(t, &ast.BinOp{}, ifs.Cond)

	whiles := prog.Stmts[1].(*ast.While)
	require.Len(t, whiles.Body.Stmts, 1)
}

func TestParseExprPrecedence(t *testing.T) {
	_, prog, err := parse(t, "x = 1 + 2 * 3 || 4 && 5 == 6;")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)

	assign := prog.Stmts[0].(*ast.Assign)
	or := assign.Value.(*ast.BinOp)
	require.Equal(t, token.OROR, or.Op)

	add := or.Left.(*ast.BinOp)
	require.Equal(t, token.PLUS, add.Op)
	require.IsType(t, &ast.IntLit{}, add.Left)
	mul := add.Right.(*ast.BinOp)
	require.Equal(t, token.STAR, mul.Op)

	and := or.Right.(*ast.BinOp)
	require.Equal(t, token.ANDAND, and.Op)
	require.IsType(t, &ast.IntLit{}, and.Left)
	eq := and.Right.(*ast.BinOp)
	require.Equal(t, token.EQL, eq.Op)
}

func TestParseUnaryAndCast(t *testing.T) {
	_, prog, err := parse(t, "x = float(-y) + ^z - !w;")
	require.NoError(t, err)
	assign := prog.Stmts[0].(*ast.Assign)

	minus := assign.Value.(*ast.BinOp)
	require.Equal(t, token.MINUS, minus.Op)

	plus := minus.Left.(*ast.BinOp)
	require.Equal(t, token.PLUS, plus.Op)

	cast := plus.Left.(*ast.TypeCast)
	require.Equal(t, token.FLOATTYPE, cast.Type)
	neg := cast.X.(*ast.UnaryOp)
	require.Equal(t, token.MINUS, neg.Op)
	require.IsType(t, &ast.NamedLocation{}, neg.X)

	caret := plus.Right.(*ast.UnaryOp)
	require.Equal(t, token.CARET, caret.Op)

	bang := minus.Right.(*ast.UnaryOp)
	require.Equal(t, token.BANG, bang.Op)
}

func TestParseCallAndMemoryLocation(t *testing.T) {
	_, prog, err := parse(t, "foo(1, 2 + 3);\n`x = 9;\ny = `x;")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 3)

	call := prog.Stmts[0].(*ast.ExprStmt).X.(*ast.Call)
	require.Equal(t, "foo", call.Name)
	require.Len(t, call.Args, 2)

	store := prog.Stmts[1].(*ast.Assign)
	require.IsType(t, &ast.MemoryLocation{}, store.Loc)

	load := prog.Stmts[2].(*ast.Assign)
	require.IsType(t, &ast.MemoryLocation{}, load.Value)
}

func TestParseBoolLiteralVsType(t *testing.T) {
	_, prog, err := parse(t, "var ok bool = bool(1); ok = true;")
	require.NoError(t, err)
	decl := prog.Stmts[0].(*ast.VarDecl)
	require.Equal(t, token.BOOL, decl.Type)
	cast := decl.Init.(*ast.TypeCast)
	require.Equal(t, token.BOOL, cast.Type)

	assign := prog.Stmts[1].(*ast.Assign)
	lit := assign.Value.(*ast.BoolLit)
	require.True(t, lit.Val)
}

func TestParseHaltsAtFirstSyntaxError(t *testing.T) {
	_, _, err := parse(t, "var x = ;")
	require.Error(t, err)
}

func TestParseBreakContinueReturn(t *testing.T) {
	_, prog, err := parse(t, `
		func f() {
			while true {
				break;
				continue;
			}
			return;
		}
	`)
	require.NoError(t, err)
	fd := prog.Stmts[0].(*ast.FuncDecl)
	w := fd.Body.Stmts[0].(*ast.While)
	require.IsType(t, &ast.Break{}, w.Body.Stmts[0])
	require.IsType(t, &ast.Continue{}, w.Body.Stmts[1])
	ret := fd.Body.Stmts[1].(*ast.Return)
	require.Nil(t, ret.X)
}
