package checker

import "github.com/mna/gox/lang/token"

// binOpKey identifies a binary operator applied to a pair of operand types.
type binOpKey struct {
	op          token.Token
	left, right token.Token
}

// unaryOpKey identifies a unary operator applied to an operand type.
type unaryOpKey struct {
	op      token.Token
	operand token.Token
}

// binOpResults is the total function checkBinOp(op, t1, t2) -> resultType?
// from spec: arithmetic preserves the operand type, relational/equality
// operators always yield bool, and '=' (used to check assignment
// compatibility) requires identical types and yields that type.
var binOpResults = map[binOpKey]token.Token{
	{token.PLUS, token.INTTYPE, token.INTTYPE}:   token.INTTYPE,
	{token.MINUS, token.INTTYPE, token.INTTYPE}:  token.INTTYPE,
	{token.STAR, token.INTTYPE, token.INTTYPE}:   token.INTTYPE,
	{token.SLASH, token.INTTYPE, token.INTTYPE}:  token.INTTYPE,
	{token.PLUS, token.FLOATTYPE, token.FLOATTYPE}:  token.FLOATTYPE,
	{token.MINUS, token.FLOATTYPE, token.FLOATTYPE}: token.FLOATTYPE,
	{token.STAR, token.FLOATTYPE, token.FLOATTYPE}:  token.FLOATTYPE,
	{token.SLASH, token.FLOATTYPE, token.FLOATTYPE}: token.FLOATTYPE,

	{token.LT, token.INTTYPE, token.INTTYPE}:  token.BOOL,
	{token.LE, token.INTTYPE, token.INTTYPE}:  token.BOOL,
	{token.GT, token.INTTYPE, token.INTTYPE}:  token.BOOL,
	{token.GE, token.INTTYPE, token.INTTYPE}:  token.BOOL,
	{token.EQL, token.INTTYPE, token.INTTYPE}: token.BOOL,
	{token.NEQ, token.INTTYPE, token.INTTYPE}: token.BOOL,

	{token.LT, token.FLOATTYPE, token.FLOATTYPE}:  token.BOOL,
	{token.LE, token.FLOATTYPE, token.FLOATTYPE}:  token.BOOL,
	{token.GT, token.FLOATTYPE, token.FLOATTYPE}:  token.BOOL,
	{token.GE, token.FLOATTYPE, token.FLOATTYPE}:  token.BOOL,
	{token.EQL, token.FLOATTYPE, token.FLOATTYPE}: token.BOOL,
	{token.NEQ, token.FLOATTYPE, token.FLOATTYPE}: token.BOOL,

	{token.LT, token.CHARTYPE, token.CHARTYPE}:  token.BOOL,
	{token.LE, token.CHARTYPE, token.CHARTYPE}:  token.BOOL,
	{token.GT, token.CHARTYPE, token.CHARTYPE}:  token.BOOL,
	{token.GE, token.CHARTYPE, token.CHARTYPE}:  token.BOOL,
	{token.EQL, token.CHARTYPE, token.CHARTYPE}: token.BOOL,
	{token.NEQ, token.CHARTYPE, token.CHARTYPE}: token.BOOL,

	{token.EQL, token.BOOL, token.BOOL}: token.BOOL,
	{token.NEQ, token.BOOL, token.BOOL}: token.BOOL,

	{token.ANDAND, token.BOOL, token.BOOL}: token.BOOL,
	{token.OROR, token.BOOL, token.BOOL}:   token.BOOL,

	{token.ASSIGN, token.INTTYPE, token.INTTYPE}:     token.INTTYPE,
	{token.ASSIGN, token.FLOATTYPE, token.FLOATTYPE}: token.FLOATTYPE,
	{token.ASSIGN, token.CHARTYPE, token.CHARTYPE}:   token.CHARTYPE,
	{token.ASSIGN, token.BOOL, token.BOOL}:           token.BOOL,
}

// unaryOpResults is the total function checkUnaryOp(op, t) -> resultType?
var unaryOpResults = map[unaryOpKey]token.Token{
	{token.PLUS, token.INTTYPE}:    token.INTTYPE,
	{token.PLUS, token.FLOATTYPE}:  token.FLOATTYPE,
	{token.MINUS, token.INTTYPE}:   token.INTTYPE,
	{token.MINUS, token.FLOATTYPE}: token.FLOATTYPE,
	{token.BANG, token.BOOL}:       token.BOOL,
	{token.CARET, token.INTTYPE}:   token.INTTYPE,
}

// checkBinOp reports the result type of applying op to operands of type
// left and right, or false if the combination is invalid.
func checkBinOp(op, left, right token.Token) (token.Token, bool) {
	t, ok := binOpResults[binOpKey{op, left, right}]
	return t, ok
}

// checkUnaryOp reports the result type of applying op to an operand of
// type operand, or false if the combination is invalid.
func checkUnaryOp(op, operand token.Token) (token.Token, bool) {
	t, ok := unaryOpResults[unaryOpKey{op, operand}]
	return t, ok
}

// isBaseType reports whether t is one of the four base types.
func isBaseType(t token.Token) bool {
	switch t {
	case token.INTTYPE, token.FLOATTYPE, token.CHARTYPE, token.BOOL:
		return true
	default:
		return false
	}
}
