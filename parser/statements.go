package parser

import (
	"github.com/femira-lang/femira/ast"
	"github.com/femira-lang/femira/internal/token"
)

// parseKeywordExpr handles "print x", "wait x" and "return x". A return
// directly followed by a statement terminator has no operand.
func (p *Parser) parseKeywordExpr() (ast.Node, bool) {
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	if p.curTokenIs(token.RETURN) && endsStatement(p.peekToken.Type) {
		return &ast.Prefix{OpPos: opPos, Op: op}, true
	}
	if endsStatement(p.peekToken.Type) {
		p.setTokenError(p.curToken, "%s requires an operand", op)
		return nil, false
	}
	if err := p.nextToken(); err != nil {
		return nil, false
	}
	operand := p.parseExpression(LOWEST)
	if operand == nil {
		return nil, false
	}
	return &ast.Prefix{OpPos: opPos, Op: op, X: operand}, true
}

func (p *Parser) parseWhile() (ast.Node, bool) {
	whilePos := p.curToken.StartPosition
	if err := p.nextToken(); err != nil { // move past "while"
		return nil, false
	}
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil, false
	}
	if !p.expectPeek("a while loop", token.LBRACE) {
		return nil, false
	}
	body := p.parseBlock()
	if body == nil {
		return nil, false
	}
	return &ast.While{While: whilePos, Cond: cond, Body: body}, true
}

// parseAssign handles "target := value". Assignment is right associative
// and the target must be a name or an index expression.
func (p *Parser) parseAssign(target ast.Node) (ast.Node, bool) {
	var left ast.Expr
	switch t := target.(type) {
	case *ast.Ident:
		left = t
	case *ast.Index:
		left = t
	default:
		p.setTokenError(p.curToken, "invalid assignment target %s", target.String())
		return nil, false
	}
	opPos := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil, false
	}
	right := p.parseExpression(ASSIGN - 1)
	if right == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid assignment value")
		}
		return nil, false
	}
	return &ast.Infix{X: left, OpPos: opPos, Op: ":=", Y: right}, true
}
