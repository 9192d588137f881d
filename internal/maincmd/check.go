package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/gox/lang/checker"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/scanner"
)

func (c *Cmd) Check(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var mode checker.Mode
	if c.config != nil && c.config.Debug {
		mode |= checker.NameBlocks
	}
	return CheckFiles(ctx, stdio, mode, args...)
}

// CheckFiles parses and semantically checks each file in turn, printing the
// declared top-level symbols for each file that checks successfully, or the
// first syntax or semantic error encountered.
func CheckFiles(ctx context.Context, stdio mainer.Stdio, mode checker.Mode, files ...string) error {
	fs, progs, err := parser.ParseFiles(ctx, files...)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	for i, prog := range progs {
		root, cerr := checker.Check(fs, prog, mode)
		if cerr != nil {
			scanner.PrintError(stdio.Stderr, cerr)
			return cerr
		}
		fmt.Fprintf(stdio.Stdout, "%s: ok\n", files[i])
		for _, name := range root.Names() {
			fmt.Fprintf(stdio.Stdout, "  %s\n", name)
		}
	}
	return nil
}
