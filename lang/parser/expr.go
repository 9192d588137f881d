package parser

import (
	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/token"
)

// parseExpr parses a full expression, following the precedence chain
// (lowest to highest): ||, &&, relational/equality, additive, multiplicative,
// unary prefix, primary.
func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.tok == token.OROR {
		op, opPos := p.tok, p.pos()
		p.advance()
		right := p.parseAnd()
		left = &ast.BinOp{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseRelational()
	for p.tok == token.ANDAND {
		op, opPos := p.tok, p.pos()
		p.advance()
		right := p.parseRelational()
		left = &ast.BinOp{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for isRelational(p.tok) {
		op, opPos := p.tok, p.pos()
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinOp{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func isRelational(tok token.Token) bool {
	switch tok {
	case token.LT, token.GT, token.LE, token.GE, token.EQL, token.NEQ:
		return true
	default:
		return false
	}
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op, opPos := p.tok, p.pos()
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinOp{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH {
		op, opPos := p.tok, p.pos()
		p.advance()
		right := p.parseUnary()
		left = &ast.BinOp{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.PLUS, token.MINUS, token.CARET, token.BANG:
		op, opPos := p.tok, p.pos()
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryOp{Op: op, OpPos: opPos, X: x}
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.tok {
	case token.INT:
		n := &ast.IntLit{Start: p.pos(), Raw: p.val.Raw, Val: p.val.Int}
		p.advance()
		return n
	case token.FLOAT:
		n := &ast.FloatLit{Start: p.pos(), Raw: p.val.Raw, Val: p.val.Float}
		p.advance()
		return n
	case token.CHAR:
		n := &ast.CharLit{Start: p.pos(), Raw: p.val.Raw, Val: p.val.Char}
		p.advance()
		return n
	case token.BOOL:
		if p.val.Raw == "bool" {
			return p.parseCast()
		}
		n := &ast.BoolLit{Start: p.pos(), Val: p.val.Bool}
		p.advance()
		return n
	case token.INTTYPE, token.FLOATTYPE, token.CHARTYPE:
		return p.parseCast()
	case token.LPAREN:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x
	case token.IDENT:
		name, pos := p.val.Raw, p.pos()
		p.advance()
		if p.tok == token.LPAREN {
			return p.parseCallTail(name, pos)
		}
		return &ast.NamedLocation{Name: name, Start: pos}
	case token.BACKTICK:
		bpos := p.pos()
		p.advance()
		addr := p.parseExpr()
		return &ast.MemoryLocation{Backtick: bpos, Addr: addr}
	default:
		p.errorf(p.pos(), "unexpected %s, expected an expression", p.describeCur())
		panic(errHalt) // unreachable, errorf always panics
	}
}

func (p *parser) parseCast() *ast.TypeCast {
	typ, pos := p.tok, p.pos()
	p.advance()
	lparen := p.expect(token.LPAREN)
	x := p.parseExpr()
	rparen := p.expect(token.RPAREN)
	return &ast.TypeCast{Type: typ, Start: pos, Lparen: lparen, X: x, Rparen: rparen}
}

func (p *parser) parseCallTail(name string, start token.Pos) *ast.Call {
	lparen := p.expect(token.LPAREN)
	var args []ast.Expr
	if p.tok != token.RPAREN {
		args = append(args, p.parseExpr())
		for p.tok == token.COMMA {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	rparen := p.expect(token.RPAREN)
	return &ast.Call{Name: name, Start: start, Lparen: lparen, Args: args, Rparen: rparen}
}
