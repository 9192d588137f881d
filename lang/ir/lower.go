package ir

import (
	"fmt"

	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/token"
)

// binOpCode maps (leftType, op, rightType) to the concrete typed opcode, for
// every binary operator except the short-circuiting && and || (lowered
// structurally, see lowerExpr).
var binOpCode = map[[3]token.Token]Opcode{
	{token.INTTYPE, token.PLUS, token.INTTYPE}:  ADDI,
	{token.INTTYPE, token.MINUS, token.INTTYPE}: SUBI,
	{token.INTTYPE, token.STAR, token.INTTYPE}:  MULI,
	{token.INTTYPE, token.SLASH, token.INTTYPE}: DIVI,
	{token.INTTYPE, token.LT, token.INTTYPE}:    LTI,
	{token.INTTYPE, token.LE, token.INTTYPE}:    LEI,
	{token.INTTYPE, token.GT, token.INTTYPE}:    GTI,
	{token.INTTYPE, token.GE, token.INTTYPE}:    GEI,
	{token.INTTYPE, token.EQL, token.INTTYPE}:   EQI,
	{token.INTTYPE, token.NEQ, token.INTTYPE}:   NEI,

	{token.FLOATTYPE, token.PLUS, token.FLOATTYPE}:  ADDF,
	{token.FLOATTYPE, token.MINUS, token.FLOATTYPE}: SUBF,
	{token.FLOATTYPE, token.STAR, token.FLOATTYPE}:  MULF,
	{token.FLOATTYPE, token.SLASH, token.FLOATTYPE}: DIVF,
	{token.FLOATTYPE, token.LT, token.FLOATTYPE}:    LTF,
	{token.FLOATTYPE, token.LE, token.FLOATTYPE}:    LEF,
	{token.FLOATTYPE, token.GT, token.FLOATTYPE}:    GTF,
	{token.FLOATTYPE, token.GE, token.FLOATTYPE}:    GEF,
	{token.FLOATTYPE, token.EQL, token.FLOATTYPE}:   EQF,
	{token.FLOATTYPE, token.NEQ, token.FLOATTYPE}:   NEF,

	{token.CHARTYPE, token.LT, token.CHARTYPE}:  LTI,
	{token.CHARTYPE, token.LE, token.CHARTYPE}:  LEI,
	{token.CHARTYPE, token.GT, token.CHARTYPE}:  GTI,
	{token.CHARTYPE, token.GE, token.CHARTYPE}:  GEI,
	{token.CHARTYPE, token.EQL, token.CHARTYPE}: EQI,
	{token.CHARTYPE, token.NEQ, token.CHARTYPE}: NEI,

	{token.BOOL, token.EQL, token.BOOL}: EQI,
	{token.BOOL, token.NEQ, token.BOOL}: NEI,
}

func lookupBinOpCode(left token.Token, op token.Token, right token.Token) (Opcode, bool) {
	oc, ok := binOpCode[[3]token.Token{left, op, right}]
	return oc, ok
}

// typecastCode maps (from, to) to the conversion opcode. Same-type casts
// are a no-op and never appear here.
var typecastCode = map[[2]token.Token]Opcode{
	{token.INTTYPE, token.FLOATTYPE}: ITOF,
	{token.FLOATTYPE, token.INTTYPE}: FTOI,
}

// memSize is the byte size of a value of the given base type, used to scale
// an index in indexed memory access (`` `(base + index) ``).
func memSize(t token.Token) int64 {
	switch t {
	case token.FLOATTYPE:
		return 4
	case token.CHARTYPE:
		return 1
	default: // int, bool
		return 4
	}
}

// Lower lowers a checked *ast.Program into an IR Module. prog must already
// have passed the checker (in particular, every MemoryLocation.ElemType
// populated and every expression well-typed) — Lower does not re-validate
// semantics and panics on a malformed tree.
func Lower(prog *ast.Program) *Module {
	lw := &lowerer{mod: NewModule()}
	top := lw.mod.NewFunc("main")
	for _, s := range prog.Stmts {
		lw.lowerStmt(top, s, true)
	}
	if _, ok := lw.mod.Functions["_actual_main"]; ok {
		top.Emit(Is(CALL, "_actual_main"))
	} else {
		top.Emit(Ii(CONSTI, 0))
	}
	top.Emit(I(RET))
	return lw.mod
}

type lowerer struct {
	mod *Module
}

// varType resolves name's source type, whether it is a global or a local of
// fn, consulting the module's accumulated globals/locals. Lower runs after
// checking, so name is guaranteed to be bound.
func (lw *lowerer) varType(fn *Function, name string) (token.Token, bool) {
	if g, ok := lw.mod.Globals[name]; ok {
		return g.SourceType, true
	}
	if t, ok := fn.LocalsSource[name]; ok {
		return t, false
	}
	panic(fmt.Sprintf("ir: undefined variable %s", name))
}

func (lw *lowerer) lowerStmt(fn *Function, s ast.Stmt, isTop bool) {
	switch n := s.(type) {
	case *ast.VarDecl:
		lw.lowerVarDecl(fn, n, isTop)
	case *ast.FuncDecl:
		lw.lowerFuncDecl(n)
	case *ast.Assign:
		lw.lowerAssign(fn, n)
	case *ast.ExprStmt:
		lw.lowerExpr(fn, n.X)
	case *ast.Print:
		t := lw.lowerExpr(fn, n.X)
		fn.Emit(I(printOpcode(t)))
	case *ast.If:
		lw.lowerExpr(fn, n.Cond)
		fn.Emit(I(IF))
		for _, st := range n.Then.Stmts {
			lw.lowerStmt(fn, st, false)
		}
		fn.Emit(I(ELSE))
		if n.Else != nil {
			for _, st := range n.Else.Stmts {
				lw.lowerStmt(fn, st, false)
			}
		}
		fn.Emit(I(ENDIF))
	case *ast.While:
		fn.Emit(I(LOOP))
		fn.Emit(Ii(CONSTI, 1))
		lw.lowerExpr(fn, n.Cond)
		fn.Emit(I(SUBI))
		fn.Emit(I(CBREAK))
		for _, st := range n.Body.Stmts {
			lw.lowerStmt(fn, st, false)
		}
		fn.Emit(I(ENDLOOP))
	case *ast.Break:
		fn.Emit(Ii(CONSTI, 1))
		fn.Emit(I(CBREAK))
	case *ast.Continue:
		fn.Emit(I(CONTINUE))
	case *ast.Return:
		if n.X != nil {
			lw.lowerExpr(fn, n.X)
		} else {
			fn.Emit(Ii(CONSTI, 0))
		}
		fn.Emit(I(RET))
	default:
		panic(fmt.Sprintf("ir: unexpected statement %T", s))
	}
}

func printOpcode(t token.Token) Opcode {
	switch t {
	case token.FLOATTYPE:
		return PRINTF
	case token.CHARTYPE:
		return PRINTB
	default: // int, bool
		return PRINTI
	}
}

func (lw *lowerer) lowerVarDecl(fn *Function, n *ast.VarDecl, isTop bool) {
	srcType := n.Type
	if n.Init != nil {
		// an inferred declaration takes the initializer's type.
		if t := lw.lowerExpr(fn, n.Init); srcType == token.ILLEGAL {
			srcType = t
		}
	}
	irType := irValueType(srcType)
	if isTop {
		lw.mod.NewGlobal(n.Name, irType, srcType)
	} else {
		fn.NewLocal(n.Name, irType, srcType)
	}
	if n.Init == nil {
		return
	}
	if isTop {
		fn.Emit(Is(GLOBAL_SET, n.Name))
	} else {
		fn.Emit(Is(LOCAL_SET, n.Name))
	}
}

func (lw *lowerer) lowerFuncDecl(n *ast.FuncDecl) {
	name := n.Name
	if name == "main" {
		name = "_actual_main"
	}

	newfn := lw.mod.NewFunc(name)
	newfn.ReturnSourceType = n.RetType
	newfn.ReturnIRType = irValueType(n.RetType)
	newfn.Imported = n.Imported

	for _, p := range n.Params {
		irType := irValueType(p.Type)
		newfn.ParamNames = append(newfn.ParamNames, p.Name)
		newfn.ParamIRTypes = append(newfn.ParamIRTypes, irType)
		newfn.NewLocal(p.Name, irType, p.Type)
	}

	if n.Imported {
		return
	}
	for _, st := range n.Body.Stmts {
		lw.lowerStmt(newfn, st, false)
	}
	// a function with a declared return type always ends with RET, even when
	// its body already returned on every path (e.g. in both arms of an if).
	if n.RetType != token.ILLEGAL {
		if k := len(newfn.Code); k == 0 || newfn.Code[k-1].Op != RET {
			if newfn.ReturnIRType == F {
				newfn.Emit(If(CONSTF, 0))
			} else {
				newfn.Emit(Ii(CONSTI, 0))
			}
			newfn.Emit(I(RET))
		}
	}
}

func (lw *lowerer) lowerAssign(fn *Function, n *ast.Assign) {
	if ml, ok := n.Loc.(*ast.MemoryLocation); ok {
		lw.lowerMemoryStore(fn, ml, n.Value)
		return
	}

	nl := n.Loc.(*ast.NamedLocation)
	lw.lowerExpr(fn, n.Value)
	if _, isGlobal := lw.varType(fn, nl.Name); isGlobal {
		fn.Emit(Is(GLOBAL_SET, nl.Name))
	} else {
		fn.Emit(Is(LOCAL_SET, nl.Name))
	}
}

// lowerExpr lowers e, emitting its code into fn, and returns its source
// (gox) type as resolved during checking.
func (lw *lowerer) lowerExpr(fn *Function, e ast.Expr) token.Token {
	switch n := e.(type) {
	case *ast.IntLit:
		fn.Emit(Ii(CONSTI, n.Val))
		return token.INTTYPE
	case *ast.FloatLit:
		fn.Emit(If(CONSTF, n.Val))
		return token.FLOATTYPE
	case *ast.CharLit:
		fn.Emit(Ii(CONSTI, int64(n.Val)))
		return token.CHARTYPE
	case *ast.BoolLit:
		v := int64(0)
		if n.Val {
			v = 1
		}
		fn.Emit(Ii(CONSTI, v))
		return token.BOOL
	case *ast.BinOp:
		return lw.lowerBinOp(fn, n)
	case *ast.UnaryOp:
		return lw.lowerUnaryOp(fn, n)
	case *ast.TypeCast:
		from := lw.lowerExpr(fn, n.X)
		if oc, ok := typecastCode[[2]token.Token{from, n.Type}]; ok {
			fn.Emit(I(oc))
		}
		return n.Type
	case *ast.Call:
		for _, a := range n.Args {
			lw.lowerExpr(fn, a)
		}
		fn.Emit(Is(CALL, n.Name))
		if callee, ok := lw.mod.Functions[n.Name]; ok {
			return callee.ReturnSourceType
		}
		// the callee hasn't been lowered yet (forward reference); fall back
		// to int, matching the historical ircode.py behavior for this case.
		return token.INTTYPE
	case *ast.NamedLocation:
		t, isGlobal := lw.varType(fn, n.Name)
		if isGlobal {
			fn.Emit(Is(GLOBAL_GET, n.Name))
		} else {
			fn.Emit(Is(LOCAL_GET, n.Name))
		}
		return t
	case *ast.MemoryLocation:
		return lw.lowerMemoryLoad(fn, n)
	default:
		panic(fmt.Sprintf("ir: unexpected expression %T", e))
	}
}

func (lw *lowerer) lowerBinOp(fn *Function, n *ast.BinOp) token.Token {
	switch n.Op {
	case token.ANDAND:
		lw.lowerExpr(fn, n.Left)
		fn.Emit(I(IF))
		lw.lowerExpr(fn, n.Right)
		fn.Emit(I(ELSE))
		fn.Emit(Ii(CONSTI, 0))
		fn.Emit(I(ENDIF))
		return token.BOOL
	case token.OROR:
		lw.lowerExpr(fn, n.Left)
		fn.Emit(I(IF))
		fn.Emit(Ii(CONSTI, 1))
		fn.Emit(I(ELSE))
		lw.lowerExpr(fn, n.Right)
		fn.Emit(I(ENDIF))
		return token.BOOL
	default:
		lt := lw.lowerExpr(fn, n.Left)
		rt := lw.lowerExpr(fn, n.Right)
		oc, ok := lookupBinOpCode(lt, n.Op, rt)
		if !ok {
			panic(fmt.Sprintf("ir: no opcode for %s %s %s", lt, n.Op.GoString(), rt))
		}
		fn.Emit(I(oc))
		rt2, _ := checkBinOpResult(n.Op, lt, rt)
		return rt2
	}
}

// checkBinOpResult duplicates the checker's result-type rule for the
// operators reachable here (the lowerer runs on an already-checked tree, so
// this can never fail).
func checkBinOpResult(op, left, right token.Token) (token.Token, bool) {
	switch op {
	case token.LT, token.LE, token.GT, token.GE, token.EQL, token.NEQ:
		return token.BOOL, true
	default:
		return left, true
	}
}

func (lw *lowerer) lowerUnaryOp(fn *Function, n *ast.UnaryOp) token.Token {
	t := lw.lowerExpr(fn, n.X)
	switch n.Op {
	case token.PLUS:
		return t
	case token.MINUS:
		if t == token.FLOATTYPE {
			fn.Emit(If(CONSTF, -1.0))
			fn.Emit(I(MULF))
		} else {
			fn.Emit(Ii(CONSTI, -1))
			fn.Emit(I(MULI))
		}
		return t
	case token.BANG:
		fn.Emit(Ii(CONSTI, 0))
		fn.Emit(I(EQI))
		return token.BOOL
	case token.CARET:
		fn.Emit(Ii(CONSTI, 4))
		fn.Emit(I(MULI))
		fn.Emit(I(GROW))
		return token.INTTYPE
	default:
		panic(fmt.Sprintf("ir: unexpected unary operator %s", n.Op.GoString()))
	}
}

// lowerMemoryAddr emits the final byte address for a MemoryLocation's Addr
// expression, scaling an index by dataType's size when Addr is a `+` BinOp
// (base + index).
func (lw *lowerer) lowerMemoryAddr(fn *Function, addr ast.Expr, dataType token.Token) {
	if bo, ok := addr.(*ast.BinOp); ok && bo.Op == token.PLUS {
		baseT := lw.lowerExpr(fn, bo.Left)
		if baseT == token.FLOATTYPE {
			fn.Emit(I(FTOI))
		}
		idxT := lw.lowerExpr(fn, bo.Right)
		if idxT == token.FLOATTYPE {
			fn.Emit(I(FTOI))
		}
		if size := memSize(dataType); size > 1 {
			fn.Emit(Ii(CONSTI, size))
			fn.Emit(I(MULI))
		}
		fn.Emit(I(ADDI))
		return
	}
	addrT := lw.lowerExpr(fn, addr)
	if addrT == token.FLOATTYPE {
		fn.Emit(I(FTOI))
	}
}

func (lw *lowerer) lowerMemoryLoad(fn *Function, n *ast.MemoryLocation) token.Token {
	lw.lowerMemoryAddr(fn, n.Addr, n.ElemType)
	switch n.ElemType {
	case token.FLOATTYPE:
		fn.Emit(I(PEEKF))
		return token.FLOATTYPE
	case token.CHARTYPE:
		fn.Emit(I(PEEKB))
		return token.CHARTYPE
	default: // int, bool
		fn.Emit(I(PEEKI))
		return token.INTTYPE
	}
}

func (lw *lowerer) lowerMemoryStore(fn *Function, n *ast.MemoryLocation, value ast.Expr) {
	lw.lowerMemoryAddr(fn, n.Addr, n.ElemType)
	valType := lw.lowerExpr(fn, value)

	if n.ElemType == token.INTTYPE && valType == token.FLOATTYPE {
		fn.Emit(I(FTOI))
	} else if n.ElemType == token.FLOATTYPE && valType == token.INTTYPE {
		fn.Emit(I(ITOF))
	}

	switch n.ElemType {
	case token.FLOATTYPE:
		fn.Emit(I(POKEF))
	case token.CHARTYPE:
		fn.Emit(I(POKEB))
	default: // int, bool
		fn.Emit(I(POKEI))
	}
}
