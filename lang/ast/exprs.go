package ast

import (
	"fmt"

	"github.com/mna/gox/lang/token"
)

type (
	// IntLit represents an integer literal, e.g. 42.
	IntLit struct {
		Start token.Pos
		Raw   string
		Val   int64
	}

	// FloatLit represents a float literal, e.g. 3.14.
	FloatLit struct {
		Start token.Pos
		Raw   string
		Val   float64
	}

	// CharLit represents a char literal, e.g. 'a'.
	CharLit struct {
		Start token.Pos
		Raw   string
		Val   rune
	}

	// BoolLit represents a bool literal, true or false.
	BoolLit struct {
		Start token.Pos
		Val   bool
	}

	// BinOp represents a binary expression, e.g. x + y.
	BinOp struct {
		Left  Expr
		Op    token.Token
		OpPos token.Pos
		Right Expr
	}

	// UnaryOp represents a unary prefix expression, e.g. -x, !x, ^x.
	UnaryOp struct {
		Op    token.Token
		OpPos token.Pos
		X     Expr
	}

	// TypeCast represents a cast expression, e.g. float(x).
	TypeCast struct {
		Type   token.Token
		Start  token.Pos
		Lparen token.Pos
		X      Expr
		Rparen token.Pos
	}

	// Call represents a function call, e.g. add(1, 2).
	Call struct {
		Name   string
		Start  token.Pos
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// NamedLocation represents a reference to a named variable.
	NamedLocation struct {
		Name  string
		Start token.Pos
	}

	// MemoryLocation represents a dereference of a computed address, `expr.
	// ElemType is populated by the checker (see Open Question #1 about memory
	// element typing) and is token.ILLEGAL until then.
	MemoryLocation struct {
		Backtick token.Pos
		Addr     Expr
		ElemType token.Token // INTTYPE, FLOATTYPE, CHARTYPE or BOOL; set by the checker
	}
)

func (n *IntLit) Format(f fmt.State, verb rune) { format(f, verb, n, "int "+n.Raw, nil) }
func (n *IntLit) Span() (start, end token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *IntLit) Walk(Visitor)                  {}
func (n *IntLit) expr()                         {}

func (n *FloatLit) Format(f fmt.State, verb rune) { format(f, verb, n, "float "+n.Raw, nil) }
func (n *FloatLit) Span() (start, end token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *FloatLit) Walk(Visitor)                  {}
func (n *FloatLit) expr()                         {}

func (n *CharLit) Format(f fmt.State, verb rune) { format(f, verb, n, "char "+n.Raw, nil) }
func (n *CharLit) Span() (start, end token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *CharLit) Walk(Visitor)                  {}
func (n *CharLit) expr()                         {}

func (n *BoolLit) Format(f fmt.State, verb rune) {
	lbl := "false"
	if n.Val {
		lbl = "true"
	}
	format(f, verb, n, "bool "+lbl, nil)
}
func (n *BoolLit) Span() (start, end token.Pos) {
	length := 4
	if !n.Val {
		length = 5
	}
	return n.Start, n.Start + token.Pos(length)
}
func (n *BoolLit) Walk(Visitor) {}
func (n *BoolLit) expr()        {}

func (n *BinOp) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.GoString(), nil)
}
func (n *BinOp) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinOp) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinOp) expr() {}

func (n *UnaryOp) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Op.GoString(), nil)
}
func (n *UnaryOp) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.OpPos, end
}
func (n *UnaryOp) Walk(v Visitor) { Walk(v, n.X) }
func (n *UnaryOp) expr()          {}

func (n *TypeCast) Format(f fmt.State, verb rune) {
	format(f, verb, n, "cast "+n.Type.String(), nil)
}
func (n *TypeCast) Span() (start, end token.Pos) {
	return n.Start, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *TypeCast) Walk(v Visitor) { Walk(v, n.X) }
func (n *TypeCast) expr()          {}

func (n *Call) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call "+n.Name, map[string]int{"args": len(n.Args)})
}
func (n *Call) Span() (start, end token.Pos) {
	return n.Start, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *Call) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *Call) expr() {}

func (n *NamedLocation) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *NamedLocation) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Name))
}
func (n *NamedLocation) Walk(Visitor) {}
func (n *NamedLocation) expr()        {}

func (n *MemoryLocation) Format(f fmt.State, verb rune) { format(f, verb, n, "`expr", nil) }
func (n *MemoryLocation) Span() (start, end token.Pos) {
	_, end = n.Addr.Span()
	return n.Backtick, end
}
func (n *MemoryLocation) Walk(v Visitor) { Walk(v, n.Addr) }
func (n *MemoryLocation) expr()          {}

// IsLocation reports whether e is a valid assignment target (NamedLocation
// or MemoryLocation).
func IsLocation(e Expr) bool {
	switch e.(type) {
	case *NamedLocation, *MemoryLocation:
		return true
	default:
		return false
	}
}
