package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/mna/gox/lang/checker"
	"github.com/mna/gox/lang/ir"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/scanner"
)

func (c *Cmd) Ir(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return IRFiles(ctx, stdio, args...)
}

// IRFiles runs each file through the full parse-check-lower pipeline and
// dumps the resulting module's IR, halting at the first file that fails to
// parse or check.
func IRFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	fs, progs, err := parser.ParseFiles(ctx, files...)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	for _, prog := range progs {
		if _, err := checker.Check(fs, prog, 0); err != nil {
			scanner.PrintError(stdio.Stderr, err)
			return err
		}
		mod := ir.Lower(prog)
		if err := ir.Dump(stdio.Stdout, mod); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
