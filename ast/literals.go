package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/femira-lang/femira/internal/token"
)

// Int is an expression node that holds an integer literal.
type Int struct {
	ValuePos token.Position // position of the literal
	Literal  string         // source text
	Value    int64
}

func (x *Int) exprNode() {}

func (x *Int) Pos() token.Position { return x.ValuePos }
func (x *Int) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Int) String() string { return x.Literal }

// Float is an expression node that holds a floating point literal.
type Float struct {
	ValuePos token.Position
	Literal  string
	Value    float64
}

func (x *Float) exprNode() {}

func (x *Float) Pos() token.Position { return x.ValuePos }
func (x *Float) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Float) String() string { return x.Literal }

// Nil is an expression node that holds a nil literal.
type Nil struct {
	NilPos token.Position
}

func (x *Nil) exprNode() {}

func (x *Nil) Pos() token.Position { return x.NilPos }
func (x *Nil) End() token.Position { return x.NilPos.Advance(3) }

func (x *Nil) String() string { return "nil" }

// Bool is an expression node that holds a boolean literal.
type Bool struct {
	ValuePos token.Position
	Literal  string
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Bool) String() string { return x.Literal }

// String is an expression node that holds a string literal. Value has
// escape sequences resolved.
type String struct {
	ValuePos token.Position
	Value    string
	EndPos   token.Position
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position { return x.EndPos }

func (x *String) String() string { return strconv.Quote(x.Value) }

// Func is a function declaration. Parameter and return type annotations
// are parsed but not kept beyond ReturnType, which nothing enforces.
type Func struct {
	Func       token.Position // position of "fn" keyword
	Name       *Ident         // function name
	Params     []*Ident       // parameter names in declaration order
	ReturnType *Ident         // declared return type; nil if absent
	Body       *Block         // function body
}

func (x *Func) exprNode() {}
func (x *Func) stmtNode() {}

func (x *Func) Pos() token.Position { return x.Func }
func (x *Func) End() token.Position { return x.Body.End() }

// ParamNames returns the parameter names in declaration order.
func (x *Func) ParamNames() []string {
	names := make([]string, 0, len(x.Params))
	for _, p := range x.Params {
		names = append(names, p.Name)
	}
	return names
}

func (x *Func) String() string {
	var out bytes.Buffer
	out.WriteString("fn ")
	out.WriteString(x.Name.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(x.ParamNames(), ", "))
	out.WriteString(") ")
	if x.ReturnType != nil {
		out.WriteString("-> ")
		out.WriteString(x.ReturnType.Name)
		out.WriteString(" ")
	}
	out.WriteString(x.Body.String())
	return out.String()
}

// Array is an expression node that builds an array.
type Array struct {
	Lbrack token.Position // position of "["
	Items  []Expr         // array elements
	Rbrack token.Position // position of "]"
}

func (x *Array) exprNode() {}

func (x *Array) Pos() token.Position { return x.Lbrack }
func (x *Array) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Array) String() string {
	items := make([]string, 0, len(x.Items))
	for _, el := range x.Items {
		items = append(items, el.String())
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// Record is an expression node that builds a record. Each field is
// expected to be an assignment "name := value"; other shapes are accepted
// by the parser and rejected when compiling.
type Record struct {
	Lbrace token.Position // position of "{"
	Fields []Expr         // field expressions
	Rbrace token.Position // position of "}"
}

func (x *Record) exprNode() {}

func (x *Record) Pos() token.Position { return x.Lbrace }
func (x *Record) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Record) String() string {
	fields := make([]string, 0, len(x.Fields))
	for _, f := range x.Fields {
		fields = append(fields, f.String())
	}
	return "{" + strings.Join(fields, ", ") + "}"
}
