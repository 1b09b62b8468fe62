package parser

import "github.com/femira-lang/femira/internal/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // :=
	OR          // ||
	AND         // &&
	EQUALS      // ?= or !=
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * or /
	PREFIX      // -X or !X
	CALL        // myFunction(X)
	INDEX       // array[index], record["field"]
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.ASSIGN:    ASSIGN,
	token.OR:        OR,
	token.AND:       AND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.LT_EQUALS: LESSGREATER,
	token.GT:        LESSGREATER,
	token.GT_EQUALS: LESSGREATER,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.SLASH:     PRODUCT,
	token.ASTERISK:  PRODUCT,
	token.LPAREN:    CALL,
	token.LBRACKET:  INDEX,
}
