package parser

import (
	"github.com/femira-lang/femira/ast"
	"github.com/femira-lang/femira/internal/token"
)

func (p *Parser) parseIdent() (ast.Node, bool) {
	if p.curToken.Literal == "" {
		p.setTokenError(p.curToken, "invalid identifier")
		return nil, false
	}
	return p.newIdent(p.curToken), true
}

func (p *Parser) parsePrefixExpr() (ast.Node, bool) {
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	if err := p.nextToken(); err != nil {
		return nil, false
	}
	right := p.parseExpression(PREFIX)
	if right == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid prefix expression")
		}
		return nil, false
	}
	return &ast.Prefix{OpPos: opPos, Op: op, X: right}, true
}

func (p *Parser) parseInfixExpr(leftNode ast.Node) (ast.Node, bool) {
	left, ok := leftNode.(ast.Expr)
	if !ok {
		p.setTokenError(p.curToken, "invalid expression")
		return nil, false
	}
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	precedence := p.currentPrecedence()
	if err := p.nextToken(); err != nil {
		return nil, false
	}
	right := p.parseExpression(precedence)
	if right == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid expression")
		}
		return nil, false
	}
	return &ast.Infix{X: left, OpPos: opPos, Op: op, Y: right}, true
}

func (p *Parser) parseGroupedExpr() (ast.Node, bool) {
	lparen := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil, false
	}
	if p.curTokenIs(token.RPAREN) {
		p.setTokenError(p.curToken, "empty parentheses")
		return nil, false
	}
	inner := p.parseExpression(LOWEST)
	if inner == nil {
		return nil, false
	}
	if !p.expectPeek("parenthesized expression", token.RPAREN) {
		return nil, false
	}
	return &ast.Paren{Lparen: lparen, X: inner, Rparen: p.curToken.StartPosition}, true
}

func (p *Parser) parseIf() (ast.Node, bool) {
	ifPos := p.curToken.StartPosition
	if err := p.nextToken(); err != nil { // move past "if"
		return nil, false
	}
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil, false
	}
	if !p.expectPeek("an if expression", token.LBRACE) {
		return nil, false
	}
	consequence := p.parseBlock()
	if consequence == nil {
		return nil, false
	}
	var alternative *ast.Block
	if p.skipNewlinesAndPeek(token.ELSE) {
		p.nextToken()                // move to the "else"
		if p.peekTokenIs(token.IF) { // this is an "else if"
			p.nextToken()
			nestedPos := p.curToken.StartPosition
			nested, ok := p.parseIf()
			if !ok {
				return nil, false
			}
			alternative = &ast.Block{
				Lbrace: nestedPos,
				Stmts:  []ast.Node{nested},
				Rbrace: p.curToken.StartPosition,
			}
		} else {
			if !p.expectPeek("an if expression", token.LBRACE) {
				return nil, false
			}
			alternative = p.parseBlock()
			if alternative == nil {
				return nil, false
			}
		}
	}
	return &ast.If{
		If:          ifPos,
		Cond:        cond,
		Consequence: consequence,
		Alternative: alternative,
	}, true
}

func (p *Parser) parseBlock() *ast.Block {
	lbrace := p.curToken.StartPosition
	statements := []ast.Node{}
	if err := p.nextToken(); err != nil { // Move past the '{'
		return nil
	}
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.cancelled() {
			return nil
		}
		stmt := p.parseStatementStrict()
		if stmt != nil {
			statements = append(statements, stmt)
		} else if p.hadNewError() {
			return nil
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	if p.curTokenIs(token.EOF) {
		p.setTokenError(p.curToken, "unterminated block statement")
		return nil
	}
	return &ast.Block{Lbrace: lbrace, Stmts: statements, Rbrace: p.curToken.StartPosition}
}

func (p *Parser) parseIndex(leftNode ast.Node) (ast.Node, bool) {
	left, ok := leftNode.(ast.Expr)
	if !ok {
		p.setTokenError(p.curToken, "invalid index expression")
		return nil, false
	}
	lbrack := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil, false
	}
	if p.curTokenIs(token.RBRACKET) {
		p.setTokenError(p.curToken, "missing index")
		return nil, false
	}
	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil, false
	}
	if !p.expectPeek("an index expression", token.RBRACKET) {
		return nil, false
	}
	return &ast.Index{X: left, Lbrack: lbrack, Index: index, Rbrack: p.curToken.StartPosition}, true
}

func (p *Parser) parseCall(functionNode ast.Node) (ast.Node, bool) {
	fn, ok := functionNode.(ast.Expr)
	if !ok {
		p.setTokenError(p.curToken, "invalid function call")
		return nil, false
	}
	lparen := p.curToken.StartPosition
	args := p.parseExprList("call arguments", token.RPAREN)
	if args == nil {
		return nil, false
	}
	return &ast.Call{Fun: fn, Lparen: lparen, Args: args, Rparen: p.curToken.StartPosition}, true
}
