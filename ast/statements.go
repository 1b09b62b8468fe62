package ast

import (
	"github.com/femira-lang/femira/internal/token"
)

// While is a loop that runs its body while the condition holds.
type While struct {
	While token.Position // position of "while" keyword
	Cond  Expr           // loop condition
	Body  *Block         // loop body
}

func (x *While) stmtNode() {}

func (x *While) Pos() token.Position { return x.While }
func (x *While) End() token.Position { return x.Body.End() }

func (x *While) String() string {
	return "while " + x.Cond.String() + " " + x.Body.String()
}
