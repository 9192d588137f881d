// Some of the scanner package (the rune-advance/error-position bookkeeping)
// is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner implements a lexer for the gox language.
package scanner

import (
	"context"
	"fmt"
	"go/scanner"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mna/gox/lang/token"
)

type (
	// Error is a single scanning error at a resolved source position.
	Error = scanner.Error
	// ErrorList aggregates Error values across one or more files.
	ErrorList = scanner.ErrorList
)

// PrintError prints each error in err (if it is an ErrorList, or a single
// line otherwise) to w.
var PrintError = scanner.PrintError

// TokenAndValue combines a token kind with its decoded literal value.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles tokenizes each of the given source files in turn. The lexer
// halts at the first lexical error encountered within a file: the returned
// slice for that file holds only the tokens scanned up to (and including)
// the offending one, and the error is added to the returned ErrorList.
// Subsequent files, if any, are still scanned.
func ScanFiles(ctx context.Context, files ...string) (*token.FileSet, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	fs := token.NewFileSet()
	tokensByFile := make([][]TokenAndValue, len(files))
	var el ErrorList

	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		f := fs.AddFile(file, -1, len(b))
		var s Scanner
		var tokVal token.Value
		var scanErr error
		s.Init(f, b, func(pos token.Position, msg string) {
			if scanErr == nil {
				scanErr = &scanner.Error{Pos: pos, Msg: msg}
			}
		})
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{Token: tok, Value: tokVal})
			if scanErr != nil {
				el = append(el, scanErr.(*scanner.Error))
				break
			}
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}

// Scanner tokenizes a single source file for the parser to consume.
type Scanner struct {
	// immutable state after Init
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	cur  rune // current character; -1 at end of file
	off  int  // byte offset of cur
	roff int  // byte offset following cur
}

// Init initializes the scanner to tokenize a new file. It panics if the
// file's registered size does not match len(src).
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.advance()
}

// peek returns the byte following the most recently read character without
// advancing the scanner, or 0 at end of file.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(match byte) bool {
	if s.cur == rune(match) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source file. At a lexical error it
// invokes the error handler; an illegal character or a malformed char
// literal comes back as token.ILLEGAL, while a malformed number keeps its
// INT or FLOAT kind.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	s.skipIgnorable()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		tok = token.Lookup(lit)
		*tokVal = token.Value{Raw: lit, Pos: pos}
		if tok == token.BOOL {
			tokVal.Bool = lit == "true"
		}

	case isDecimal(cur) || (cur == '.' && isDecimal(rune(s.peek()))):
		tok, *tokVal = s.number(pos)

	default:
		s.advance() // always make progress
		switch cur {
		case '\'':
			tok, *tokVal = s.char(pos, start)

		case '(', ')', '{', '}', ',', ';':
			tok = punctForByte(byte(cur))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '+', '-', '*', '^', '`':
			tok = punctForByte(byte(cur))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '!':
			tok = token.BANG
			if s.advanceIf('=') {
				tok = token.NEQ
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '=':
			tok = token.ASSIGN
			if s.advanceIf('=') {
				tok = token.EQL
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '<':
			tok = token.LT
			if s.advanceIf('=') {
				tok = token.LE
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '>':
			tok = token.GT
			if s.advanceIf('=') {
				tok = token.GE
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '&':
			if s.advanceIf('&') {
				tok = token.ANDAND
			} else {
				s.errorf(start, "illegal character %#U, expected '&&'", cur)
				tok = token.ILLEGAL
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '|':
			if s.advanceIf('|') {
				tok = token.OROR
			} else {
				s.errorf(start, "illegal character %#U, expected '||'", cur)
				tok = token.ILLEGAL
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '/':
			tok = token.SLASH
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case -1:
			tok = token.EOF
			*tokVal = token.Value{Raw: "", Pos: pos}

		default:
			s.errorf(start, "illegal character %#U", cur)
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: string(cur), Pos: pos}
		}
	}
	return tok
}

var punctByte = map[byte]token.Token{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'^': token.CARET,
	'`': token.BACKTICK,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	';': token.SEMI,
}

func punctForByte(b byte) token.Token {
	if tok, ok := punctByte[b]; ok {
		return tok
	}
	return token.ILLEGAL
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// number scans an INT or FLOAT literal: \d+ or (\d+\.\d*)|(\d*\.\d+).
func (s *Scanner) number(pos token.Pos) (token.Token, token.Value) {
	start := s.off
	isFloat := false

	for isDecimal(s.cur) {
		s.advance()
	}
	if s.cur == '.' {
		isFloat = true
		s.advance()
		for isDecimal(s.cur) {
			s.advance()
		}
	}

	lit := string(s.src[start:s.off])
	if isFloat {
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			s.errorf(start, "invalid float literal %q: %s", lit, err)
		}
		return token.FLOAT, token.Value{Raw: lit, Pos: pos, Float: v}
	}
	v, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		s.errorf(start, "invalid int literal %q: %s", lit, err)
	}
	return token.INT, token.Value{Raw: lit, Pos: pos, Int: v}
}

// char scans a CHAR literal: 'a', '\n', '\x41', '\''. The opening quote has
// already been consumed by the caller.
func (s *Scanner) char(pos token.Pos, start int) (token.Token, token.Value) {
	var r rune
	switch s.cur {
	case '\\':
		s.advance()
		r = s.escape()
	case -1, '\'':
		s.errorf(start, "empty or unterminated char literal")
		return token.ILLEGAL, token.Value{Raw: "''", Pos: pos}
	default:
		r = s.cur
		s.advance()
	}
	if s.cur != '\'' {
		s.errorf(start, "char literal must contain exactly one character")
		return token.ILLEGAL, token.Value{Raw: string(s.src[start:s.off]), Pos: pos}
	}
	s.advance() // consume closing quote
	lit := string(s.src[start:s.off])
	return token.CHAR, token.Value{Raw: lit, Pos: pos, Char: r}
}

func (s *Scanner) escape() rune {
	switch c := s.cur; c {
	case 'n':
		s.advance()
		return '\n'
	case 't':
		s.advance()
		return '\t'
	case 'r':
		s.advance()
		return '\r'
	case '\\':
		s.advance()
		return '\\'
	case '\'':
		s.advance()
		return '\''
	case '0':
		s.advance()
		return 0
	case 'x':
		s.advance()
		start := s.off
		for isHexDigit(s.cur) {
			s.advance()
		}
		lit := string(s.src[start:s.off])
		v, err := strconv.ParseInt(lit, 16, 32)
		if err != nil {
			s.errorf(start, "invalid hex escape %q", lit)
			return 0
		}
		return rune(v)
	default:
		s.errorf(s.off, "unknown escape sequence '\\%c'", c)
		s.advance()
		return c
	}
}

// skipIgnorable skips whitespace, "// line comments" and "/* block
// comments */".
func (s *Scanner) skipIgnorable() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '/' && s.peek() == '/':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		case s.cur == '/' && s.peek() == '*':
			start := s.off
			s.advance()
			s.advance()
			for {
				if s.cur == -1 {
					s.errorf(start, "unterminated block comment")
					return
				}
				if s.cur == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		default:
			return
		}
	}
}

func isWhitespace(rn rune) bool {
	return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r'
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return isDecimal(rn) || rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}

func isDecimal(rn rune) bool {
	return '0' <= rn && rn <= '9'
}

func isHexDigit(rn rune) bool {
	return isDecimal(rn) || 'a' <= rn && rn <= 'f' || 'A' <= rn && rn <= 'F'
}
