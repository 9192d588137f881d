package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/gox/lang/token"
)

// Printer controls pretty-printing of AST nodes as an indented tree, one
// node per line.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// Pos indicates the position printing mode. Use token.PosNone to omit
	// positions.
	Pos token.PosMode

	// Fset resolves positions to file/line/column when Pos != token.PosNone.
	Fset *token.FileSet

	// NodeFmt is the fmt verb used to print each node. Defaults to "%v".
	NodeFmt string
}

// Print pretty-prints the AST rooted at n.
func (p *Printer) Print(n Node) error {
	pp := &printer{w: p.Output, pos: p.Pos, fset: p.Fset, nodeFmt: p.NodeFmt}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w       io.Writer
	pos     token.PosMode
	fset    *token.FileSet
	nodeFmt string
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	p.printNode(n, p.depth-1)
	return p
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}

	format := "%s"
	args := []interface{}{strings.Repeat(". ", indent)}
	if p.pos != token.PosNone && p.fset != nil {
		format += "[%s] "
		start, _ := n.Span()
		args = append(args, token.FormatPos(p.pos, p.fset.Position(start)))
	}
	format += p.nodeFmt + "\n"
	args = append(args, n)

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
