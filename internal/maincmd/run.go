package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/gox/lang/checker"
	"github.com/mna/gox/lang/ir"
	"github.com/mna/gox/lang/machine"
	"github.com/mna/gox/lang/parser"
	"github.com/mna/gox/lang/scanner"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var maxSteps, maxMemory int
	var debug, generateOutputFile bool
	if c.config != nil {
		maxSteps = c.config.MaxSteps
		maxMemory = c.config.MaxMemory
		debug = c.config.Debug
		generateOutputFile = c.config.GenerateOutputFile
	}
	return RunFiles(ctx, stdio, RunOptions{
		MaxSteps:           maxSteps,
		MaxMemory:          maxMemory,
		Debug:              debug,
		GenerateOutputFile: generateOutputFile,
	}, args...)
}

// RunOptions collects the knobs that RunFiles threads onto the Machine and
// the IR dump step, so callers needn't track a growing positional list.
type RunOptions struct {
	MaxSteps           int
	MaxMemory          int
	Debug              bool
	GenerateOutputFile bool
}

// RunFiles parses, checks, lowers and executes each file in turn on a fresh
// Machine, halting at the first file that fails any phase. When
// opts.GenerateOutputFile is set, each file's lowered IR is also written to
// output/<stem>/<stem>.ir before it runs, mirroring the original
// interpreter's CONFIG["GenerateOutputFile"] behavior.
func RunFiles(ctx context.Context, stdio mainer.Stdio, opts RunOptions, files ...string) error {
	fs, progs, err := parser.ParseFiles(ctx, files...)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	for i, prog := range progs {
		if _, err := checker.Check(fs, prog, 0); err != nil {
			scanner.PrintError(stdio.Stderr, err)
			return err
		}
		mod := ir.Lower(prog)

		if opts.GenerateOutputFile {
			if err := writeIRDump(files[i], mod); err != nil {
				return printError(stdio, err)
			}
		}

		m := &machine.Machine{
			Name:      files[i],
			Stdout:    stdio.Stdout,
			Stderr:    stdio.Stderr,
			Stdin:     stdio.Stdin,
			MaxSteps:  opts.MaxSteps,
			MaxMemory: opts.MaxMemory,
			Debug:     opts.Debug,
		}
		if err := m.Run(ctx, mod); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			return err
		}
	}
	return nil
}

// writeIRDump writes mod's text dump to output/<stem>/<stem>.ir, where stem
// is src's base name without its extension.
func writeIRDump(src string, mod *ir.Module) error {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dir := filepath.Join("output", stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ir dump: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, stem+".ir"))
	if err != nil {
		return fmt.Errorf("ir dump: %w", err)
	}
	defer f.Close()
	if err := ir.Dump(f, mod); err != nil {
		return fmt.Errorf("ir dump: %w", err)
	}
	return nil
}
