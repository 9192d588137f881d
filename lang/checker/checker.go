// Package checker implements the single-pass semantic analyzer: it walks a
// parsed *ast.Program, resolves names against a lexically scoped Symtab, and
// verifies type and control-flow correctness, halting at the first error.
package checker

import (
	"fmt"

	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/scanner"
	"github.com/mna/gox/lang/token"
)

// Mode is a set of bit flags configuring the checker. The zero value checks
// normally, reporting the first error and giving scopes their bare kind
// name.
type Mode uint

const (
	// NameBlocks gives scopes unique, numbered names ("if_then#3"), useful
	// when dumping the resolved program for inspection.
	NameBlocks Mode = 1 << iota
)

// errHalt is panicked to unwind the recursive walk as soon as the first
// semantic error is recorded; it is recovered in Check. There is no partial
// result: checking always halts at the first error.
var errHalt = fmt.Errorf("halt")

// Check walks prog against a fresh root scope, reporting the first semantic
// error encountered, if any. On success it returns the populated root
// Symtab. The returned error, if non-nil, is guaranteed to be a
// *scanner.Error.
func Check(fset *token.FileSet, prog *ast.Program, mode Mode) (root *Symtab, err error) {
	c := &checker{fset: fset, mode: mode, counters: map[string]int{}}
	root = newSymtab(c.scopeName(""), "", nil, nil)

	defer func() {
		if r := recover(); r != nil {
			if r != errHalt {
				panic(r)
			}
			err = c.err
		}
	}()

	for _, s := range prog.Stmts {
		c.checkStmt(root, s)
	}
	return root, nil
}

type checker struct {
	fset     *token.FileSet
	mode     Mode
	counters map[string]int
	err      error
}

func (c *checker) scopeName(kind string) string {
	if c.mode&NameBlocks == 0 || kind == "" {
		return kind
	}
	c.counters[kind]++
	return fmt.Sprintf("%s#%d", kind, c.counters[kind])
}

func (c *checker) pushScope(kind string, parent *Symtab, owner ast.Node) *Symtab {
	return newSymtab(c.scopeName(kind), kind, parent, owner)
}

func (c *checker) errorf(pos token.Pos, format string, args ...any) {
	if c.err == nil {
		c.err = &scanner.Error{Pos: c.fset.Position(pos), Msg: fmt.Sprintf(format, args...)}
	}
	panic(errHalt)
}

func (c *checker) checkStmt(env *Symtab, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(env, n)
	case *ast.FuncDecl:
		c.checkFuncDecl(env, n)
	case *ast.Assign:
		c.checkAssign(env, n)
	case *ast.ExprStmt:
		c.checkExpr(env, n.X)
	case *ast.Print:
		c.checkPrint(env, n)
	case *ast.If:
		c.checkIf(env, n)
	case *ast.While:
		c.checkWhile(env, n)
	case *ast.Break:
		c.checkLoopStmt(env, n.KwPos, "break")
	case *ast.Continue:
		c.checkLoopStmt(env, n.KwPos, "continue")
	case *ast.Return:
		c.checkReturn(env, n)
	default:
		panic(fmt.Sprintf("checker: unexpected statement %T", s))
	}
}

func (c *checker) checkVarDecl(env *Symtab, n *ast.VarDecl) {
	if _, ok := env.entry(n.Name); ok {
		c.errorf(n.NamePos, "%s is already defined in this scope", n.Name)
	}

	var initType token.Token
	if n.Init != nil {
		initType = c.checkExprHint(env, n.Init, n.Type)
	} else if n.Type == token.ILLEGAL {
		c.errorf(n.NamePos, "variable %s needs a declared type or an initializer", n.Name)
	}

	declType := n.Type
	if declType == token.ILLEGAL {
		declType = initType
	} else if n.Init != nil && declType != initType {
		c.errorf(n.NamePos, "variable %s declared as %s but initialized with %s", n.Name, declType, initType)
	}

	env.Define(n.Name, &Decl{Name: n.Name, Type: declType, Const: n.Const, Node: n})
}

func (c *checker) checkFuncDecl(env *Symtab, n *ast.FuncDecl) {
	if _, ok := env.entry(n.Name); ok {
		c.errorf(n.NamePos, "function %s is already defined", n.Name)
	}
	if env.Owner != nil {
		c.errorf(n.FuncPos, "function %s cannot be declared inside another function", n.Name)
	}

	paramTypes := make([]token.Token, len(n.Params))
	for i, p := range n.Params {
		paramTypes[i] = p.Type
	}
	env.Define(n.Name, &Decl{Name: n.Name, Type: n.RetType, Node: n, ParamTypes: paramTypes})

	if n.Imported {
		return
	}

	fnEnv := c.pushScope(n.Name, env, n)
	for _, p := range n.Params {
		if _, ok := fnEnv.entry(p.Name); ok {
			c.errorf(p.NamePos, "parameter %s is already defined", p.Name)
		}
		fnEnv.Define(p.Name, &Decl{Name: p.Name, Type: p.Type, Node: p})
	}
	for _, s := range n.Body.Stmts {
		c.checkStmt(fnEnv, s)
	}

	if n.RetType != token.ILLEGAL && !hasReturnInAllPaths(n.Body.Stmts) {
		c.errorf(n.FuncPos, "function %s must return on every path", n.Name)
	}
}

// hasReturnInAllPaths is a conservative static analysis: a statement
// sequence returns if it contains a Return, or an If whose both arms
// return. While does not contribute a guaranteed return.
func hasReturnInAllPaths(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Return:
			return true
		case *ast.If:
			if n.Else == nil {
				continue
			}
			if hasReturnInAllPaths(n.Then.Stmts) && hasReturnInAllPaths(n.Else.Stmts) {
				return true
			}
		}
	}
	return false
}

func (c *checker) checkAssign(env *Symtab, n *ast.Assign) {
	if ml, ok := n.Loc.(*ast.MemoryLocation); ok {
		addrType := c.checkExpr(env, ml.Addr)
		if addrType != token.INTTYPE {
			c.errorf(n.AssignPos, "memory address must be int, got %s", addrType)
		}
		ml.ElemType = c.checkExpr(env, n.Value)
		return
	}

	nl := n.Loc.(*ast.NamedLocation)
	decl, _ := env.Lookup(nl.Name)
	if decl == nil {
		c.errorf(nl.Start, "undefined: %s", nl.Name)
	}
	if decl.Const {
		c.errorf(nl.Start, "%s is read-only", nl.Name)
	}

	valType := c.checkExprHint(env, n.Value, decl.Type)
	if _, ok := checkBinOp(token.ASSIGN, decl.Type, valType); !ok {
		c.errorf(n.AssignPos, "cannot assign %s to %s (%s)", valType, nl.Name, decl.Type)
	}
}

func (c *checker) checkPrint(env *Symtab, n *ast.Print) {
	t := c.checkExpr(env, n.X)
	if !isBaseType(t) {
		c.errorf(n.KwPos, "invalid type for print: %s", t)
	}
}

func (c *checker) checkIf(env *Symtab, n *ast.If) {
	condType := c.checkExpr(env, n.Cond)
	if condType != token.BOOL {
		c.errorf(n.KwPos, "if condition must be bool, got %s", condType)
	}

	thenEnv := c.pushScope("if_then", env, n)
	for _, s := range n.Then.Stmts {
		c.checkStmt(thenEnv, s)
	}
	if n.Else != nil {
		elseEnv := c.pushScope("if_else", env, n)
		for _, s := range n.Else.Stmts {
			c.checkStmt(elseEnv, s)
		}
	}
}

func (c *checker) checkWhile(env *Symtab, n *ast.While) {
	condType := c.checkExpr(env, n.Cond)
	if condType != token.BOOL {
		c.errorf(n.KwPos, "while condition must be bool, got %s", condType)
	}

	bodyEnv := c.pushScope("while_body", env, n)
	for _, s := range n.Body.Stmts {
		c.checkStmt(bodyEnv, s)
	}
}

func (c *checker) checkLoopStmt(env *Symtab, pos token.Pos, kind string) {
	if !env.InLoop() {
		c.errorf(pos, "%s must be inside a while loop", kind)
	}
}

func (c *checker) checkReturn(env *Symtab, n *ast.Return) {
	fn, _ := env.EnclosingFunc()
	if fn == nil {
		c.errorf(n.KwPos, "return must be inside a function")
	}
	if n.X != nil {
		t := c.checkExprHint(env, n.X, fn.RetType)
		if t != fn.RetType {
			c.errorf(n.KwPos, "return type mismatch: function %s returns %s, got %s", fn.Name, fn.RetType, t)
		}
	}
}

// checkExpr computes the type of e, reporting an error if it is ill-typed.
func (c *checker) checkExpr(env *Symtab, e ast.Expr) token.Token {
	return c.checkExprHint(env, e, token.ILLEGAL)
}

// checkExprHint is like checkExpr but, when e is a bare *ast.MemoryLocation
// and hint names a base type, resolves the node's ElemType to hint instead
// of defaulting to int. This is how ElemType is populated for the common
// "var x T = `addr;" and "return `addr;" idioms; a MemoryLocation nested
// deeper in an expression (e.g. as an operand of a BinOp) still defaults to
// int, matching §4.3's documented MemoryLocation limitation.
func (c *checker) checkExprHint(env *Symtab, e ast.Expr, hint token.Token) token.Token {
	if ml, ok := e.(*ast.MemoryLocation); ok {
		addrType := c.checkExpr(env, ml.Addr)
		if addrType != token.INTTYPE {
			c.errorf(ml.Backtick, "memory address must be int, got %s", addrType)
		}
		elem := hint
		if !isBaseType(elem) {
			elem = token.INTTYPE
		}
		ml.ElemType = elem
		return elem
	}
	return c.checkExprKind(env, e)
}

func (c *checker) checkExprKind(env *Symtab, e ast.Expr) token.Token {
	switch n := e.(type) {
	case *ast.IntLit:
		return token.INTTYPE
	case *ast.FloatLit:
		return token.FLOATTYPE
	case *ast.CharLit:
		return token.CHARTYPE
	case *ast.BoolLit:
		return token.BOOL
	case *ast.BinOp:
		lt := c.checkExpr(env, n.Left)
		rt := c.checkExpr(env, n.Right)
		t, ok := checkBinOp(n.Op, lt, rt)
		if !ok {
			c.errorf(n.OpPos, "operator %s is not valid for %s and %s", n.Op.GoString(), lt, rt)
		}
		return t
	case *ast.UnaryOp:
		t := c.checkExpr(env, n.X)
		rt, ok := checkUnaryOp(n.Op, t)
		if !ok {
			c.errorf(n.OpPos, "unary operator %s is not valid for %s", n.Op.GoString(), t)
		}
		return rt
	case *ast.TypeCast:
		c.checkExpr(env, n.X)
		return n.Type
	case *ast.Call:
		decl, _ := env.Lookup(n.Name)
		if decl == nil {
			c.errorf(n.Start, "undefined function: %s", n.Name)
		}
		fd, ok := decl.Node.(*ast.FuncDecl)
		if !ok {
			c.errorf(n.Start, "%s is not a function", n.Name)
		}
		if len(n.Args) != len(decl.ParamTypes) {
			c.errorf(n.Start, "function %s expects %d arguments, got %d", n.Name, len(decl.ParamTypes), len(n.Args))
		}
		for i, a := range n.Args {
			at := c.checkExprHint(env, a, decl.ParamTypes[i])
			if at != decl.ParamTypes[i] {
				c.errorf(n.Start, "argument %d to %s: expected %s, got %s", i+1, n.Name, decl.ParamTypes[i], at)
			}
		}
		return fd.RetType
	case *ast.NamedLocation:
		decl, _ := env.Lookup(n.Name)
		if decl == nil {
			c.errorf(n.Start, "undefined: %s", n.Name)
		}
		return decl.Type
	default:
		panic(fmt.Sprintf("checker: unexpected expression %T", e))
	}
}
