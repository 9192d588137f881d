package ast

import (
	"fmt"

	"github.com/mna/gox/lang/token"
)

type (
	// VarDecl represents a var or const declaration.
	VarDecl struct {
		Const    bool
		KwPos    token.Pos
		Name     string
		NamePos  token.Pos
		Type     token.Token // 0 (ILLEGAL) if not explicitly typed
		TypePos  token.Pos
		Init     Expr // nil if no initializer
		Semi     token.Pos
	}

	// ParamDecl represents one function parameter, "name type".
	ParamDecl struct {
		Name    string
		NamePos token.Pos
		Type    token.Token
		TypePos token.Pos
	}

	// FuncDecl represents a function declaration, optionally imported (no
	// body).
	FuncDecl struct {
		Imported   bool
		ImportPos  token.Pos
		FuncPos    token.Pos
		Name       string
		NamePos    token.Pos
		Lparen     token.Pos
		Params     []*ParamDecl
		Rparen     token.Pos
		RetType    token.Token // 0 (ILLEGAL) if void
		RetTypePos token.Pos
		Body       *Block // nil if Imported
		Semi       token.Pos // set only if Imported
	}

	// Assign represents an assignment statement, loc = value;
	Assign struct {
		Loc      Expr // *NamedLocation or *MemoryLocation
		AssignPos token.Pos
		Value    Expr
		Semi     token.Pos
	}

	// ExprStmt represents a function call used as a statement.
	ExprStmt struct {
		X    Expr
		Semi token.Pos
	}

	// Print represents a print statement.
	Print struct {
		KwPos token.Pos
		X     Expr
		Semi  token.Pos
	}

	// If represents an if statement, with an optional else block.
	If struct {
		KwPos   token.Pos
		Cond    Expr
		Then    *Block
		ElsePos token.Pos // invalid if no else branch
		Else    *Block    // nil if no else branch
	}

	// While represents a while loop.
	While struct {
		KwPos token.Pos
		Cond  Expr
		Body  *Block
	}

	// Break represents a break statement.
	Break struct {
		KwPos token.Pos
		Semi  token.Pos
	}

	// Continue represents a continue statement.
	Continue struct {
		KwPos token.Pos
		Semi  token.Pos
	}

	// Return represents a return statement, with an optional expression.
	Return struct {
		KwPos token.Pos
		X     Expr // nil if no expression
		Semi  token.Pos
	}
)

func (n *VarDecl) Format(f fmt.State, verb rune) {
	lbl := "var " + n.Name
	if n.Const {
		lbl = "const " + n.Name
	}
	format(f, verb, n, lbl, nil)
}
func (n *VarDecl) Span() (start, end token.Pos) { return n.KwPos, n.Semi }
func (n *VarDecl) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
}
func (n *VarDecl) stmt() {}

func (n *ParamDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "param "+n.Name, nil) }
func (n *ParamDecl) Span() (start, end token.Pos) {
	return n.NamePos, n.TypePos + token.Pos(len(n.Type.String()))
}
func (n *ParamDecl) Walk(Visitor) {}
func (n *ParamDecl) stmt()        {}

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	lbl := "func " + n.Name
	if n.Imported {
		lbl = "import func " + n.Name
	}
	format(f, verb, n, lbl, map[string]int{"params": len(n.Params)})
}
func (n *FuncDecl) Span() (start, end token.Pos) {
	start = n.FuncPos
	if n.Imported {
		start = n.ImportPos
	}
	if n.Imported {
		return start, n.Semi
	}
	_, end = n.Body.Span()
	return start, end
}
func (n *FuncDecl) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
}
func (n *FuncDecl) stmt() {}

func (n *Assign) Format(f fmt.State, verb rune) { format(f, verb, n, "assign", nil) }
func (n *Assign) Span() (start, end token.Pos) {
	start, _ = n.Loc.Span()
	return start, n.Semi
}
func (n *Assign) Walk(v Visitor) {
	Walk(v, n.Loc)
	Walk(v, n.Value)
}
func (n *Assign) stmt() {}

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.Semi
}
func (n *ExprStmt) Walk(v Visitor) { Walk(v, n.X) }
func (n *ExprStmt) stmt()          {}

func (n *Print) Format(f fmt.State, verb rune) { format(f, verb, n, "print", nil) }
func (n *Print) Span() (start, end token.Pos)  { return n.KwPos, n.Semi }
func (n *Print) Walk(v Visitor)                { Walk(v, n.X) }
func (n *Print) stmt()                         {}

func (n *If) Format(f fmt.State, verb rune) {
	counts := map[string]int{}
	if n.Else != nil {
		counts["else"] = 1
	}
	format(f, verb, n, "if", counts)
}
func (n *If) Span() (start, end token.Pos) {
	_, end = n.Then.Span()
	if n.Else != nil {
		_, end = n.Else.Span()
	}
	return n.KwPos, end
}
func (n *If) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *If) stmt() {}

func (n *While) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *While) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.KwPos, end
}
func (n *While) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *While) stmt() {}

func (n *Break) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *Break) Span() (start, end token.Pos)  { return n.KwPos, n.Semi }
func (n *Break) Walk(Visitor)                  {}
func (n *Break) stmt()                         {}

func (n *Continue) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *Continue) Span() (start, end token.Pos)  { return n.KwPos, n.Semi }
func (n *Continue) Walk(Visitor)                  {}
func (n *Continue) stmt()                         {}

func (n *Return) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *Return) Span() (start, end token.Pos)  { return n.KwPos, n.Semi }
func (n *Return) Walk(v Visitor) {
	if n.X != nil {
		Walk(v, n.X)
	}
}
func (n *Return) stmt() {}
