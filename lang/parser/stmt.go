package parser

import (
	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/token"
)

func (p *parser) parseStatement() ast.Stmt {
	switch p.tok {
	case token.VAR, token.CONST:
		return p.parseVarDecl()
	case token.IMPORT, token.FUNC:
		return p.parseFuncDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.BREAK:
		kw := p.pos()
		p.advance()
		semi := p.expect(token.SEMI)
		return &ast.Break{KwPos: kw, Semi: semi}
	case token.CONTINUE:
		kw := p.pos()
		p.advance()
		semi := p.expect(token.SEMI)
		return &ast.Continue{KwPos: kw, Semi: semi}
	case token.RETURN:
		kw := p.pos()
		p.advance()
		var x ast.Expr
		if p.tok != token.SEMI {
			x = p.parseExpr()
		}
		semi := p.expect(token.SEMI)
		return &ast.Return{KwPos: kw, X: x, Semi: semi}
	case token.PRINT:
		kw := p.pos()
		p.advance()
		x := p.parseExpr()
		semi := p.expect(token.SEMI)
		return &ast.Print{KwPos: kw, X: x, Semi: semi}
	case token.IDENT:
		name, pos := p.val.Raw, p.pos()
		p.advance()
		if p.tok == token.LPAREN {
			call := p.parseCallTail(name, pos)
			semi := p.expect(token.SEMI)
			return &ast.ExprStmt{X: call, Semi: semi}
		}
		return p.parseAssignTail(&ast.NamedLocation{Name: name, Start: pos})
	case token.BACKTICK:
		bpos := p.pos()
		p.advance()
		addr := p.parseExpr()
		return p.parseAssignTail(&ast.MemoryLocation{Backtick: bpos, Addr: addr})
	default:
		p.errorf(p.pos(), "unexpected %s, expected a statement", p.describeCur())
		panic(errHalt) // unreachable, errorf always panics
	}
}

func (p *parser) parseAssignTail(loc ast.Expr) *ast.Assign {
	assignPos := p.expect(token.ASSIGN)
	value := p.parseExpr()
	semi := p.expect(token.SEMI)
	return &ast.Assign{Loc: loc, AssignPos: assignPos, Value: value, Semi: semi}
}

func (p *parser) parseBlock() *ast.Block {
	lbrace := p.expect(token.LBRACE)
	var stmts []ast.Stmt
	for p.tok != token.RBRACE && p.tok != token.EOF {
		stmts = append(stmts, p.parseStatement())
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.Block{Lbrace: lbrace, Stmts: stmts, Rbrace: rbrace}
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	isConst := p.tok == token.CONST
	kwPos := p.pos()
	p.advance() // consume var/const

	namePos := p.pos()
	name := p.val.Raw
	p.expect(token.IDENT)

	var typ token.Token
	var typePos token.Pos
	if p.tok.IsType() {
		typ, typePos = p.tok, p.pos()
		p.advance()
	}

	var init ast.Expr
	if p.tok == token.ASSIGN {
		p.advance()
		init = p.parseExpr()
	}
	semi := p.expect(token.SEMI)

	return &ast.VarDecl{
		Const: isConst, KwPos: kwPos, Name: name, NamePos: namePos,
		Type: typ, TypePos: typePos, Init: init, Semi: semi,
	}
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	var imported bool
	var importPos token.Pos
	if p.tok == token.IMPORT {
		imported, importPos = true, p.pos()
		p.advance()
	}

	funcPos := p.expect(token.FUNC)
	namePos := p.pos()
	name := p.val.Raw
	p.expect(token.IDENT)
	lparen := p.expect(token.LPAREN)

	var params []*ast.ParamDecl
	if p.tok != token.RPAREN {
		params = append(params, p.parseParam())
		for p.tok == token.COMMA {
			p.advance()
			params = append(params, p.parseParam())
		}
	}
	rparen := p.expect(token.RPAREN)

	var retType token.Token
	var retTypePos token.Pos
	if p.tok.IsType() {
		retType, retTypePos = p.tok, p.pos()
		p.advance()
	}

	fd := &ast.FuncDecl{
		Imported: imported, ImportPos: importPos, FuncPos: funcPos,
		Name: name, NamePos: namePos, Lparen: lparen, Params: params, Rparen: rparen,
		RetType: retType, RetTypePos: retTypePos,
	}
	if imported {
		fd.Semi = p.expect(token.SEMI)
	} else {
		fd.Body = p.parseBlock()
	}
	return fd
}

func (p *parser) parseParam() *ast.ParamDecl {
	namePos := p.pos()
	name := p.val.Raw
	p.expect(token.IDENT)
	if !p.tok.IsType() {
		p.errorf(p.pos(), "expected a type, found %s", p.describeCur())
	}
	typePos := p.pos()
	typ := p.tok
	p.advance()
	return &ast.ParamDecl{Name: name, NamePos: namePos, Type: typ, TypePos: typePos}
}

func (p *parser) parseIf() *ast.If {
	kwPos := p.expect(token.IF)
	cond := p.parseExpr()
	then := p.parseBlock()

	n := &ast.If{KwPos: kwPos, Cond: cond, Then: then}
	if p.tok == token.ELSE {
		n.ElsePos = p.pos()
		p.advance()
		n.Else = p.parseBlock()
	}
	return n
}

func (p *parser) parseWhile() *ast.While {
	kwPos := p.expect(token.WHILE)
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.While{KwPos: kwPos, Cond: cond, Body: body}
}
