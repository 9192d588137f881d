package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/gox/lang/scanner"
	"github.com/mna/gox/lang/token"
)

func scanAll(t *testing.T, src string) ([]scanner.TokenAndValue, []string) {
	t.Helper()
	fs := token.NewFileSet()
	f := fs.AddFile("test.gox", -1, len(src))

	var s scanner.Scanner
	var errs []string
	s.Init(f, []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, pos.String()+": "+msg)
	})

	var out []scanner.TokenAndValue
	var tv token.Value
	for {
		tok := s.Scan(&tv)
		out = append(out, scanner.TokenAndValue{Token: tok, Value: tv})
		if tok == token.EOF || len(errs) > 0 {
			break
		}
	}
	return out, errs
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks, errs := scanAll(t, "var x const func foo")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.VAR, token.IDENT, token.CONST, token.FUNC, token.IDENT, token.EOF,
	}, tokenKinds(toks))
}

func TestScanNumbers(t *testing.T) {
	toks, errs := scanAll(t, "42 3.14 .5 7.")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.INT, token.FLOAT, token.FLOAT, token.FLOAT, token.EOF}, tokenKinds(toks))
	require.EqualValues(t, 42, toks[0].Value.Int)
	require.InDelta(t, 3.14, toks[1].Value.Float, 1e-9)
}

func TestScanCharLiteral(t *testing.T) {
	toks, errs := scanAll(t, `'a' '\n' '\x41'`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.CHAR, token.CHAR, token.CHAR, token.EOF}, tokenKinds(toks))
	require.Equal(t, 'a', toks[0].Value.Char)
	require.Equal(t, '\n', toks[1].Value.Char)
	require.Equal(t, 'A', toks[2].Value.Char)
}

func TestScanOperators(t *testing.T) {
	toks, errs := scanAll(t, "<= >= == != && || ! ^ ` ;")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.LE, token.GE, token.EQL, token.NEQ, token.ANDAND, token.OROR,
		token.BANG, token.CARET, token.BACKTICK, token.SEMI, token.EOF,
	}, tokenKinds(toks))
}

func TestScanComments(t *testing.T) {
	toks, errs := scanAll(t, "var x // a comment\n/* block\ncomment */ var y")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.VAR, token.IDENT, token.VAR, token.IDENT, token.EOF}, tokenKinds(toks))
}

func TestScanHaltsAtFirstError(t *testing.T) {
	toks, errs := scanAll(t, "var @ x")
	require.Len(t, errs, 1)
	require.Equal(t, []token.Token{token.VAR, token.ILLEGAL}, tokenKinds(toks))
}

func tokenKinds(toks []scanner.TokenAndValue) []token.Token {
	out := make([]token.Token, len(toks))
	for i, tv := range toks {
		out[i] = tv.Token
	}
	return out
}
