package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/scanner"
	"github.com/mna/gox/lang/token"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, token.PosLong, "", args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, nodeFmt string, files ...string) error {
	fs, progs, err := parser.ParseFiles(ctx, files...)
	for _, prog := range progs {
		if prog == nil {
			continue
		}
		printer := ast.Printer{
			Output:  stdio.Stdout,
			Pos:     posMode,
			Fset:    fs,
			NodeFmt: nodeFmt,
		}
		if err := printer.Print(prog); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
