package ast

import (
	"bytes"
	"strings"

	"github.com/femira-lang/femira/internal/token"
)

// Ident is an expression node that refers to a variable by name.
type Ident struct {
	NamePos token.Position // position of identifier
	Name    string         // identifier name
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Prefix is an operator expression where the operator precedes the operand.
// The keyword operators "print", "return" and "wait" are prefix operators
// too. A bare "return" has a nil operand.
type Prefix struct {
	OpPos token.Position // position of operator
	Op    string         // operator: "!", "-", "print", "return", "wait"
	X     Expr           // operand; nil only for a bare return
}

func (x *Prefix) exprNode() {}

func (x *Prefix) Pos() token.Position { return x.OpPos }
func (x *Prefix) End() token.Position {
	if x.X == nil {
		return x.OpPos.Advance(len(x.Op))
	}
	return x.X.End()
}

// IsKeyword reports whether the operator is one of the statement keywords.
func (x *Prefix) IsKeyword() bool {
	switch x.Op {
	case "print", "return", "wait":
		return true
	}
	return false
}

func (x *Prefix) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(x.Op)
	if x.X != nil {
		if x.IsKeyword() {
			out.WriteString(" ")
		}
		out.WriteString(x.X.String())
	}
	out.WriteString(")")
	return out.String()
}

// Infix is a binary operator expression like "1 + 2". Assignment is an
// Infix with the operator ":=".
type Infix struct {
	X     Expr           // left operand
	OpPos token.Position // position of operator
	Op    string         // operator
	Y     Expr           // right operand
}

func (x *Infix) exprNode() {}

func (x *Infix) Pos() token.Position { return x.X.Pos() }
func (x *Infix) End() token.Position { return x.Y.End() }

// IsAssign reports whether the expression is an assignment.
func (x *Infix) IsAssign() bool { return x.Op == ":=" }

func (x *Infix) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(x.X.String())
	out.WriteString(" " + x.Op + " ")
	out.WriteString(x.Y.String())
	out.WriteString(")")
	return out.String()
}

// If is a conditional with an optional else branch. An "else if" chain is
// represented as an Alternative block holding a single nested If.
type If struct {
	If          token.Position // position of "if" keyword
	Cond        Expr           // condition
	Consequence *Block         // then branch
	Alternative *Block         // else branch; nil if no else
}

func (x *If) exprNode() {}

func (x *If) Pos() token.Position { return x.If }
func (x *If) End() token.Position {
	if x.Alternative != nil {
		return x.Alternative.End()
	}
	return x.Consequence.End()
}

func (x *If) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(x.Cond.String())
	out.WriteString(" ")
	out.WriteString(x.Consequence.String())
	if x.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(x.Alternative.String())
	}
	return out.String()
}

// Call is an expression node that invokes a function.
type Call struct {
	Fun    Expr           // function expression
	Lparen token.Position // position of "("
	Args   []Expr         // function arguments
	Rparen token.Position // position of ")"
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	args := make([]string, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, a.String())
	}
	return x.Fun.String() + "(" + strings.Join(args, ", ") + ")"
}

// Index is an expression node that reads an element of an array or a
// field of a record.
type Index struct {
	X      Expr           // expression being indexed
	Lbrack token.Position // position of "["
	Index  Expr           // index expression
	Rbrack token.Position // position of "]"
}

func (x *Index) exprNode() {}

func (x *Index) Pos() token.Position { return x.X.Pos() }
func (x *Index) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Index) String() string {
	return "(" + x.X.String() + "[" + x.Index.String() + "])"
}

// Paren is a parenthesized expression.
type Paren struct {
	Lparen token.Position // position of "("
	X      Expr           // inner expression
	Rparen token.Position // position of ")"
}

func (x *Paren) exprNode() {}

func (x *Paren) Pos() token.Position { return x.Lparen }
func (x *Paren) End() token.Position { return x.Rparen.Advance(1) }

func (x *Paren) String() string { return "(" + x.X.String() + ")" }
