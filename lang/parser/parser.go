// Package parser implements the recursive-descent parser that transforms
// gox source code into an *ast.Program.
package parser

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/scanner"
	"github.com/mna/gox/lang/token"
)

// ParseFiles parses each of the given source files into an *ast.Program.
// Parsing halts at the first syntax error in a file (no error recovery); the
// error, if non-nil, is guaranteed to be a scanner.ErrorList.
func ParseFiles(ctx context.Context, files ...string) (*token.FileSet, []*ast.Program, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	fs := token.NewFileSet()
	var el scanner.ErrorList
	progs := make([]*ast.Program, 0, len(files))

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}
		prog, perr := ParseFile(fs, file, b)
		if perr != nil {
			el = append(el, perr.(*scanner.Error))
		}
		progs = append(progs, prog)
	}
	el.Sort()
	return fs, progs, el.Err()
}

// ParseFile parses a single file's content, registering it with fset under
// the given name, and returns the resulting program and the first error
// encountered, if any.
func ParseFile(fset *token.FileSet, filename string, src []byte) (prog *ast.Program, err error) {
	var p parser
	p.file = fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, func(pos token.Position, msg string) {
		if p.err == nil {
			p.err = &scanner.Error{Pos: pos, Msg: msg}
		}
	})

	defer func() {
		if r := recover(); r != nil {
			if r != errHalt {
				panic(r)
			}
			err = p.err
		}
	}()

	p.advance()
	prog = p.parseProgram()
	if p.err != nil {
		err = p.err
	}
	return prog, err
}

// errHalt is panicked to unwind the recursive descent as soon as the first
// error (lexical or syntactic) is recorded in p.err; it is recovered in
// ParseFile. There is no error recovery: the parser always halts at the
// first error, per the language's design.
var errHalt = fmt.Errorf("halt")

// parser parses a single source file and produces an *ast.Program.
type parser struct {
	scanner scanner.Scanner
	file    *token.File
	err     error

	tok token.Token
	val token.Value
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
	if p.tok == token.ILLEGAL && p.err != nil {
		panic(errHalt)
	}
}

func (p *parser) pos() token.Pos { return p.val.Pos }

// expect consumes the current token if it matches tok, otherwise records a
// syntax error and halts parsing.
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos()
	if p.tok != tok {
		p.errorf(pos, "expected %s, found %s", tok.GoString(), p.describeCur())
	}
	p.advance()
	return pos
}

func (p *parser) describeCur() string {
	switch p.tok {
	case token.IDENT:
		return "identifier " + p.val.Raw
	case token.INT, token.FLOAT, token.CHAR:
		return p.tok.String() + " " + p.val.Raw
	default:
		return p.tok.GoString()
	}
}

func (p *parser) error(pos token.Pos, msg string) {
	if p.err == nil {
		p.err = &scanner.Error{Pos: p.file.Position(pos), Msg: msg}
	}
	panic(errHalt)
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.error(pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.tok != token.EOF {
		prog.Stmts = append(prog.Stmts, p.parseStatement())
	}
	prog.EOF = p.pos()
	return prog
}
