// Package lexer converts Femira source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strings"

	"github.com/femira-lang/femira/internal/token"
)

// Lexer is used to tokenize Femira source code. Newlines are significant:
// a NEWLINE token is produced only after a token that can end a statement,
// and never inside parentheses or brackets.
type Lexer struct {
	input        string
	pos          int  // offset of ch
	readPos      int  // next read offset
	ch           byte // current char, 0 at end of input
	line         int
	lineStart    int
	parenDepth   int
	bracketDepth int
	lastToken    token.Type
	file         string
}

// State is a snapshot of the lexer position, used for lookahead.
type State struct {
	pos          int
	readPos      int
	ch           byte
	line         int
	lineStart    int
	parenDepth   int
	bracketDepth int
	lastToken    token.Type
}

// Option is a configuration function for a Lexer.
type Option func(*Lexer)

// WithFile sets the file name for the Lexer.
func WithFile(file string) Option {
	return func(l *Lexer) {
		l.file = file
	}
}

// New returns a Lexer for the given input.
func New(input string, options ...Option) *Lexer {
	l := &Lexer{input: input, lastToken: token.NEWLINE}
	for _, opt := range options {
		opt(l)
	}
	l.readChar()
	return l
}

// Filename returns the name of the file being lexed, if known.
func (l *Lexer) Filename() string {
	return l.file
}

// SetFilename sets the file name used in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.file = filename
}

// SaveState captures the current lexer position.
func (l *Lexer) SaveState() State {
	return State{
		pos:          l.pos,
		readPos:      l.readPos,
		ch:           l.ch,
		line:         l.line,
		lineStart:    l.lineStart,
		parenDepth:   l.parenDepth,
		bracketDepth: l.bracketDepth,
		lastToken:    l.lastToken,
	}
}

// RestoreState rewinds the lexer to a saved position.
func (l *Lexer) RestoreState(s State) {
	l.pos = s.pos
	l.readPos = s.readPos
	l.ch = s.ch
	l.line = s.line
	l.lineStart = s.lineStart
	l.parenDepth = s.parenDepth
	l.bracketDepth = s.bracketDepth
	l.lastToken = s.lastToken
}

// GetLineText returns the full source line containing the token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : start+end]
}

// Next returns the next token. At the end of input it returns EOF tokens
// indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	for {
		l.skipWhitespace()

		if l.ch == '\n' {
			start := l.position()
			l.readChar()
			if l.parenDepth == 0 && l.bracketDepth == 0 && newlineEligible(l.lastToken) {
				return l.finish(token.NEWLINE, "\n", start), nil
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			start := l.position()
			if !l.skipBlockComment() {
				return l.finish(token.ILLEGAL, "/*", start), l.errorf(start, "unterminated block comment")
			}
			continue
		}
		break
	}

	start := l.position()
	switch l.ch {
	case 0:
		return l.finish(token.EOF, "", start), nil
	case ':':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.ASSIGN, start), nil
		}
		return l.oneCharToken(token.COLON, start), nil
	case '?':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.EQ, start), nil
		}
		return l.illegal(start)
	case '!':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.NOT_EQ, start), nil
		}
		return l.oneCharToken(token.BANG, start), nil
	case '-':
		if l.peekChar() == '>' {
			return l.twoCharToken(token.ARROW, start), nil
		}
		return l.oneCharToken(token.MINUS, start), nil
	case '>':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.GT_EQUALS, start), nil
		}
		return l.oneCharToken(token.GT, start), nil
	case '<':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.LT_EQUALS, start), nil
		}
		return l.oneCharToken(token.LT, start), nil
	case '&':
		if l.peekChar() == '&' {
			return l.twoCharToken(token.AND, start), nil
		}
		return l.illegal(start)
	case '|':
		if l.peekChar() == '|' {
			return l.twoCharToken(token.OR, start), nil
		}
		return l.illegal(start)
	case '+':
		return l.oneCharToken(token.PLUS, start), nil
	case '*':
		return l.oneCharToken(token.ASTERISK, start), nil
	case '/':
		return l.oneCharToken(token.SLASH, start), nil
	case ',':
		return l.oneCharToken(token.COMMA, start), nil
	case ';':
		return l.oneCharToken(token.SEMICOLON, start), nil
	case '(':
		l.parenDepth++
		return l.oneCharToken(token.LPAREN, start), nil
	case ')':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		return l.oneCharToken(token.RPAREN, start), nil
	case '[':
		l.bracketDepth++
		return l.oneCharToken(token.LBRACKET, start), nil
	case ']':
		if l.bracketDepth > 0 {
			l.bracketDepth--
		}
		return l.oneCharToken(token.RBRACKET, start), nil
	case '{':
		return l.oneCharToken(token.LBRACE, start), nil
	case '}':
		return l.oneCharToken(token.RBRACE, start), nil
	case '"':
		return l.readString(start)
	}
	if isLetter(l.ch) {
		return l.readIdentifier(start), nil
	}
	if isDigit(l.ch) {
		return l.readNumber(start), nil
	}
	return l.illegal(start)
}

func (l *Lexer) position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.file,
	}
}

func (l *Lexer) finish(t token.Type, lit string, start token.Position) token.Token {
	l.lastToken = t
	return token.Token{
		Type:          t,
		Literal:       lit,
		StartPosition: start,
		EndPosition:   l.position(),
	}
}

func (l *Lexer) oneCharToken(t token.Type, start token.Position) token.Token {
	lit := string(l.ch)
	l.readChar()
	return l.finish(t, lit, start)
}

func (l *Lexer) twoCharToken(t token.Type, start token.Position) token.Token {
	lit := string(l.ch) + string(l.peekChar())
	l.readChar()
	l.readChar()
	return l.finish(t, lit, start)
}

func (l *Lexer) illegal(start token.Position) (token.Token, error) {
	ch := l.ch
	l.readChar()
	return l.finish(token.ILLEGAL, string(ch), start), l.errorf(start, "unexpected character %q", ch)
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) error {
	return fmt.Errorf("%s (line %d, column %d)", fmt.Sprintf(format, args...),
		pos.LineNumber(), pos.ColumnNumber())
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != 0 && l.ch != '\n' {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() bool {
	l.readChar() // '/'
	l.readChar() // '*'
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return true
		}
		l.readChar()
	}
	return false
}

func (l *Lexer) readIdentifier(start token.Position) token.Token {
	begin := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[begin:l.pos]
	return l.finish(token.LookupIdentifier(lit), lit, start)
}

func (l *Lexer) readNumber(start token.Position) token.Token {
	begin := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.finish(token.NUMBER, l.input[begin:l.pos], start)
}

func (l *Lexer) readString(start token.Position) (token.Token, error) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0, '\n':
			return l.finish(token.ILLEGAL, sb.String(), start), l.errorf(start, "unterminated string literal")
		case '"':
			l.readChar()
			return l.finish(token.STRING, sb.String(), start), nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"', '\\':
				sb.WriteByte(l.ch)
			case 0:
				return l.finish(token.ILLEGAL, sb.String(), start), l.errorf(start, "unterminated string literal")
			default:
				return l.finish(token.ILLEGAL, sb.String(), start), l.errorf(start, "invalid escape sequence \\%c", l.ch)
			}
		default:
			sb.WriteByte(l.ch)
		}
	}
}

func newlineEligible(t token.Type) bool {
	switch t {
	case token.IDENT, token.NUMBER, token.STRING,
		token.TRUE, token.FALSE, token.NIL,
		token.RPAREN, token.RBRACKET, token.RBRACE,
		token.RETURN:
		return true
	default:
		return false
	}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.readPos
	}
	if l.readPos >= len(l.input) {
		l.pos = len(l.input)
		l.ch = 0
		return
	}
	l.ch = l.input[l.readPos]
	l.pos = l.readPos
	l.readPos++
}
