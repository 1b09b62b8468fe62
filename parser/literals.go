package parser

import (
	"strconv"
	"strings"

	"github.com/femira-lang/femira/ast"
	"github.com/femira-lang/femira/internal/token"
)

// parseNumber produces a Float when the literal has a decimal point and an
// Int otherwise.
func (p *Parser) parseNumber() (ast.Node, bool) {
	tok := p.curToken
	if strings.Contains(tok.Literal, ".") {
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.setTokenError(tok, "invalid float literal: %s", tok.Literal)
			return nil, false
		}
		return &ast.Float{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}, true
	}
	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.setTokenError(tok, "invalid integer literal: %s", tok.Literal)
		return nil, false
	}
	return &ast.Int{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}, true
}

func (p *Parser) parseBoolean() (ast.Node, bool) {
	return &ast.Bool{
		ValuePos: p.curToken.StartPosition,
		Literal:  p.curToken.Literal,
		Value:    p.curTokenIs(token.TRUE),
	}, true
}

func (p *Parser) parseNil() (ast.Node, bool) {
	return &ast.Nil{NilPos: p.curToken.StartPosition}, true
}

func (p *Parser) parseString() (ast.Node, bool) {
	return &ast.String{
		ValuePos: p.curToken.StartPosition,
		Value:    p.curToken.Literal,
		EndPos:   p.curToken.EndPosition,
	}, true
}

func (p *Parser) parseArray() (ast.Node, bool) {
	lbrack := p.curToken.StartPosition
	items := p.parseExprList("array", token.RBRACKET)
	if items == nil {
		return nil, false
	}
	return &ast.Array{Lbrack: lbrack, Items: items, Rbrack: p.curToken.StartPosition}, true
}

// parseRecord parses "{ name := value, ... }". Fields may be separated by
// commas or newlines. Field shape is checked by the compiler.
func (p *Parser) parseRecord() (ast.Node, bool) {
	lbrace := p.curToken.StartPosition
	fields := p.parseExprList("record", token.RBRACE)
	if fields == nil {
		return nil, false
	}
	return &ast.Record{Lbrace: lbrace, Fields: fields, Rbrace: p.curToken.StartPosition}, true
}

// parseExprList parses a comma-separated list of expressions until the end
// token, leaving the end token as the current token. Trailing commas are
// allowed. Within a record a newline also separates items. Returns nil
// after recording an error.
func (p *Parser) parseExprList(context string, end token.Type) []ast.Expr {
	list := []ast.Expr{}
	if !p.skipPeekNewlines() {
		return nil
	}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	for {
		if err := p.nextToken(); err != nil { // move to the item
			return nil
		}
		item := p.parseExpression(LOWEST)
		if item == nil {
			if !p.hadNewError() {
				p.setTokenError(p.curToken, "invalid syntax in %s", context)
			}
			return nil
		}
		list = append(list, item)
		sawNewline := p.peekTokenIs(token.NEWLINE)
		if !p.skipPeekNewlines() {
			return nil
		}
		if p.peekTokenIs(end) {
			p.nextToken()
			return list
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if !p.skipPeekNewlines() {
				return nil
			}
			if p.peekTokenIs(end) {
				p.nextToken()
				return list
			}
			continue
		}
		if sawNewline && end == token.RBRACE {
			continue
		}
		p.peekError(context, end, p.peekToken)
		return nil
	}
}

// parseFunc parses "fn name(a: T, b) -> T { ... }". Type annotations are
// accepted and dropped, except the return type which is kept on the node.
func (p *Parser) parseFunc() (ast.Node, bool) {
	funcPos := p.curToken.StartPosition
	if !p.expectPeek("function", token.IDENT) {
		return nil, false
	}
	name := p.newIdent(p.curToken)
	if !p.expectPeek("function", token.LPAREN) {
		return nil, false
	}
	params, ok := p.parseFuncParams()
	if !ok {
		return nil, false
	}
	var returnType *ast.Ident
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		if !p.expectPeek("function return type", token.IDENT) {
			return nil, false
		}
		returnType = p.newIdent(p.curToken)
	}
	if !p.expectPeek("function", token.LBRACE) {
		return nil, false
	}
	body := p.parseBlock()
	if body == nil {
		return nil, false
	}
	return &ast.Func{
		Func:       funcPos,
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}, true
}

// parseFuncParams parses the parameter list. The current token is "(" on
// entry and ")" on success.
func (p *Parser) parseFuncParams() ([]*ast.Ident, bool) {
	params := []*ast.Ident{}
	seen := map[string]bool{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}
	for {
		if !p.expectPeek("function parameters", token.IDENT) {
			return nil, false
		}
		ident := p.newIdent(p.curToken)
		if seen[ident.Name] {
			p.setTokenError(p.curToken, "duplicate parameter name %q", ident.Name)
			return nil, false
		}
		seen[ident.Name] = true
		params = append(params, ident)
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			if !p.expectPeek("parameter type", token.IDENT) {
				return nil, false
			}
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("function parameters", token.RPAREN) {
			return nil, false
		}
		return params, true
	}
}
