// Package parser turns Femira source into an *ast.Program.
//
// The parser is a Pratt parser over the token stream of internal/lexer. It
// keeps going after a bad statement so that one Parse call reports as many
// errors as it can, up to a fixed limit.
package parser

import (
	"context"
	"fmt"

	"github.com/femira-lang/femira/ast"
	"github.com/femira-lang/femira/internal/lexer"
	"github.com/femira-lang/femira/internal/token"
)

// DefaultMaxDepth is the nesting limit used unless WithMaxDepth is given.
const DefaultMaxDepth = 500

// maxErrors stops a parse that has gone badly wrong.
const maxErrors = 10

type (
	prefixParseFn func() (ast.Node, bool)
	infixParseFn  func(ast.Node) (ast.Node, bool)
)

// Option configures a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth limits how deeply expressions and blocks may nest.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// Parse lexes and parses input in one step.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	var cfg Parser
	for _, opt := range options {
		opt(&cfg)
	}
	var lexOpts []lexer.Option
	if cfg.filename != "" {
		lexOpts = append(lexOpts, lexer.WithFile(cfg.filename))
	}
	return New(lexer.New(input, lexOpts...), options...).Parse(ctx)
}

// Parser holds a three-token window over the lexer: the token before the
// current one, the current one and one token of lookahead.
type Parser struct {
	ctx      context.Context
	l        *lexer.Lexer
	filename string

	prevToken token.Token
	curToken  token.Token
	peekToken token.Token

	errors []ParserError
	// len(errors) when the current statement began
	stmtErrorCount int

	depth    int
	maxDepth int
}

// New returns a Parser reading from l. A Parser is single use.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{l: l, maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" && l.Filename() == "" {
		l.SetFilename(p.filename)
	}
	// Fill curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse reads statements until end of input. On failure the returned
// program holds the statements that did parse.
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	if len(p.errors) > 0 {
		return nil, newErrors(p.errors)
	}
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) && len(p.errors) < maxErrors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.stmtErrorCount = len(p.errors)
		if stmt := p.parseStatementStrict(); stmt != nil {
			program.Stmts = append(program.Stmts, stmt)
		} else if p.hadNewError() {
			p.skipStatement()
		}
		p.nextToken()
	}
	if len(p.errors) > 0 {
		return program, newErrors(p.errors)
	}
	return program, nil
}

func (p *Parser) prefixFor(t token.Type) prefixParseFn {
	switch t {
	case token.IDENT:
		return p.parseIdent
	case token.NUMBER:
		return p.parseNumber
	case token.STRING:
		return p.parseString
	case token.TRUE, token.FALSE:
		return p.parseBoolean
	case token.NIL:
		return p.parseNil
	case token.BANG, token.MINUS:
		return p.parsePrefixExpr
	case token.PRINT, token.RETURN, token.WAIT:
		return p.parseKeywordExpr
	case token.LPAREN:
		return p.parseGroupedExpr
	case token.LBRACKET:
		return p.parseArray
	case token.LBRACE:
		return p.parseRecord
	case token.FUNCTION:
		return p.parseFunc
	case token.IF:
		return p.parseIf
	case token.WHILE:
		return p.parseWhile
	case token.ILLEGAL:
		return p.illegalToken
	}
	return nil
}

func (p *Parser) infixFor(t token.Type) infixParseFn {
	switch t {
	case token.ASSIGN:
		return p.parseAssign
	case token.LPAREN:
		return p.parseCall
	case token.LBRACKET:
		return p.parseIndex
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
		token.EQ, token.NOT_EQ, token.LT, token.LT_EQUALS, token.GT, token.GT_EQUALS,
		token.AND, token.OR:
		return p.parseInfixExpr
	}
	return nil
}

// endsStatement reports whether t may follow a complete statement. The
// lexer only emits NEWLINE after tokens that can close an expression, so
// a trailing operator carries the expression onto the next line.
func endsStatement(t token.Type) bool {
	switch t {
	case token.SEMICOLON, token.NEWLINE, token.RBRACE, token.EOF:
		return true
	}
	return false
}

// shift slides the token window forward by one.
func (p *Parser) shift() error {
	var err error
	p.prevToken, p.curToken = p.curToken, p.peekToken
	p.peekToken, err = p.l.Next()
	return err
}

// nextToken shifts and records a lexer failure as a syntax error.
func (p *Parser) nextToken() error {
	err := p.shift()
	if err != nil {
		p.addError(NewSyntaxError(ErrorOpts{
			Cause:         err,
			File:          p.l.Filename(),
			StartPosition: p.peekToken.StartPosition,
			EndPosition:   p.peekToken.EndPosition,
			SourceCode:    p.l.GetLineText(p.peekToken),
		}))
	}
	return err
}

// skipStatement drops tokens up to the end of a failed statement.
func (p *Parser) skipStatement() {
	for !p.curTokenIs(token.EOF) && !endsStatement(p.curToken.Type) {
		before := p.curToken.StartPosition
		_ = p.shift()
		if p.curToken.StartPosition == before {
			return
		}
	}
}

func (p *Parser) addError(err ParserError) {
	p.errors = append(p.errors, err)
}

// hadNewError reports whether the current statement has failed.
func (p *Parser) hadNewError() bool {
	return len(p.errors) > p.stmtErrorCount
}

func (p *Parser) setTokenError(t token.Token, msg string, args ...any) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Message:       fmt.Sprintf(msg, args...),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	p.setTokenError(got, "unexpected %s while parsing %s (expected %s)",
		tokenDescription(got), context, tokenTypeDescription(expected))
}

func (p *Parser) illegalToken() (ast.Node, bool) {
	p.setTokenError(p.curToken, "illegal token %s", p.curToken.Literal)
	return nil, false
}

// cancelled records the context error, if any, so that nested block parsing
// unwinds promptly.
func (p *Parser) cancelled() bool {
	if p.ctx == nil || p.ctx.Err() == nil {
		return false
	}
	p.addError(NewParserError(ErrorOpts{
		ErrType: "context error",
		Message: p.ctx.Err().Error(),
	}))
	return true
}

func (p *Parser) parseStatementStrict() ast.Node {
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	if !p.curTokenIs(token.SEMICOLON) && !endsStatement(p.peekToken.Type) {
		p.setTokenError(p.curToken, "unexpected token %q following statement", p.peekToken.Literal)
		return nil
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Node {
	if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
		return nil
	}
	stmt := p.parseNode(LOWEST)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseNode parses one expression whose operators all bind tighter than
// precedence.
func (p *Parser) parseNode(precedence int) ast.Node {
	switch {
	case p.hadNewError():
		return nil
	case p.curTokenIs(token.EOF):
		p.setTokenError(p.curToken, "unexpected end of file")
		return nil
	case p.depth >= p.maxDepth:
		p.setTokenError(p.curToken, "maximum nesting depth exceeded")
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	prefix := p.prefixFor(p.curToken.Type)
	if prefix == nil {
		p.setTokenError(p.curToken, "invalid syntax (unexpected %q)", p.curToken.Literal)
		return nil
	}
	left, ok := prefix()
	if !ok || left == nil || p.hadNewError() {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixFor(p.peekToken.Type)
		if infix == nil {
			break
		}
		if p.nextToken() != nil {
			return nil
		}
		if left, ok = infix(left); !ok || p.hadNewError() {
			return nil
		}
	}
	return left
}

func (p *Parser) parseExpression(precedence int) ast.Expr {
	node := p.parseNode(precedence)
	if node == nil || p.hadNewError() {
		return nil
	}
	expr, ok := node.(ast.Expr)
	if !ok {
		p.setTokenError(p.prevToken, "expected expression")
		return nil
	}
	return expr
}

func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek advances onto the next token if it has type t and records an
// error otherwise.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if !p.peekTokenIs(t) {
		p.peekError(context, t, p.peekToken)
		return false
	}
	return p.nextToken() == nil
}

func precedenceOf(t token.Type) int {
	if prec, ok := precedences[t]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	return precedenceOf(p.peekToken.Type)
}

func (p *Parser) currentPrecedence() int {
	return precedenceOf(p.curToken.Type)
}

func (p *Parser) skipPeekNewlines() bool {
	for p.peekTokenIs(token.NEWLINE) {
		if p.nextToken() != nil {
			return false
		}
	}
	return true
}

// skipNewlinesAndPeek looks past newlines for a token of type target, as
// with an else on the line after a closing brace. When found, the newlines
// are consumed and target is the peek token; otherwise nothing moves.
func (p *Parser) skipNewlinesAndPeek(target token.Type) bool {
	if p.peekTokenIs(target) {
		return true
	}
	if !p.peekTokenIs(token.NEWLINE) {
		return false
	}
	prev, cur, peek := p.prevToken, p.curToken, p.peekToken
	state := p.l.SaveState()
	found := false
	for p.shift() == nil {
		if !p.peekTokenIs(token.NEWLINE) {
			found = p.peekTokenIs(target)
			break
		}
	}
	if found {
		return true
	}
	p.prevToken, p.curToken, p.peekToken = prev, cur, peek
	p.l.RestoreState(state)
	return false
}
