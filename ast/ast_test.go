package ast

import (
	"testing"

	"github.com/femira-lang/femira/internal/token"
)

func ident(name string, col int) *Ident {
	return &Ident{NamePos: token.Position{Column: col}, Name: name}
}

func TestString(t *testing.T) {
	program := &Program{
		Stmts: []Node{
			&Infix{
				X:  ident("x", 0),
				Op: ":=",
				Y: &Infix{
					X:  &Int{Literal: "1", Value: 1},
					Op: "+",
					Y:  &Float{Literal: "2.5", Value: 2.5},
				},
			},
			&Prefix{Op: "print", X: ident("x", 6)},
		},
	}
	expected := "(x := (1 + 2.5))\n(print x)"
	if program.String() != expected {
		t.Errorf("program.String() wrong. got=%q", program.String())
	}
}

func TestBadExpr(t *testing.T) {
	from := token.Position{Line: 1, Column: 5, File: "test.fm"}
	to := token.Position{Line: 1, Column: 15, File: "test.fm"}
	bad := &BadExpr{From: from, To: to}
	if bad.Pos() != from {
		t.Errorf("BadExpr.Pos() = %v, want %v", bad.Pos(), from)
	}
	if bad.End() != to {
		t.Errorf("BadExpr.End() = %v, want %v", bad.End(), to)
	}
	if bad.String() != "<bad expression>" {
		t.Errorf("BadExpr.String() = %q", bad.String())
	}
}

func TestNodeStrings(t *testing.T) {
	body := &Block{Stmts: []Node{
		&Prefix{Op: "return", X: &Infix{X: ident("a", 0), Op: "+", Y: ident("b", 0)}},
	}}
	tests := []struct {
		node     Node
		expected string
	}{
		{&Prefix{Op: "-", X: &Int{Literal: "3", Value: 3}}, "(-3)"},
		{&Prefix{Op: "return"}, "(return)"},
		{&String{Value: "hi \"there\""}, `"hi \"there\""`},
		{&Nil{}, "nil"},
		{&Bool{Literal: "true", Value: true}, "true"},
		{&Array{Items: []Expr{&Int{Literal: "1"}, &String{Value: "x"}}}, `[1, "x"]`},
		{&Record{Fields: []Expr{&Infix{X: ident("a", 0), Op: ":=", Y: &Int{Literal: "1"}}}}, "{(a := 1)}"},
		{&Index{X: ident("arr", 0), Index: &Int{Literal: "0"}}, "(arr[0])"},
		{&Call{Fun: ident("add", 0), Args: []Expr{&Int{Literal: "2"}, &Int{Literal: "3"}}}, "add(2, 3)"},
		{&Paren{X: ident("x", 0)}, "(x)"},
		{&Block{}, "{}"},
		{
			&Func{Name: ident("add", 3), Params: []*Ident{ident("a", 7), ident("b", 10)}, ReturnType: ident("int", 0), Body: body},
			"fn add(a, b) -> int { (return (a + b)) }",
		},
		{
			&If{Cond: ident("ok", 0), Consequence: &Block{Stmts: []Node{&Int{Literal: "1"}}}, Alternative: &Block{Stmts: []Node{&Int{Literal: "2"}}}},
			"if ok { 1 } else { 2 }",
		},
		{&While{Cond: ident("go", 0), Body: &Block{}}, "while go {}"},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestPositions(t *testing.T) {
	x := &Ident{NamePos: token.Position{Char: 4, Column: 4}, Name: "abc"}
	if x.End().Column != 7 {
		t.Errorf("Ident.End().Column = %d, want 7", x.End().Column)
	}
	ret := &Prefix{OpPos: token.Position{Column: 2}, Op: "return"}
	if ret.End().Column != 8 {
		t.Errorf("Prefix.End().Column = %d, want 8", ret.End().Column)
	}
	empty := &Program{}
	if empty.Pos() != token.NoPos {
		t.Errorf("empty program should have no position")
	}
}

func TestPreorder(t *testing.T) {
	program := &Program{Stmts: []Node{
		&Infix{X: ident("x", 0), Op: ":=", Y: &Array{Items: []Expr{&Int{Literal: "1"}, &Int{Literal: "2"}}}},
	}}
	var kinds []string
	for n := range Preorder(program) {
		switch n.(type) {
		case *Program:
			kinds = append(kinds, "program")
		case *Infix:
			kinds = append(kinds, "infix")
		case *Ident:
			kinds = append(kinds, "ident")
		case *Array:
			kinds = append(kinds, "array")
		case *Int:
			kinds = append(kinds, "int")
		}
	}
	expected := []string{"program", "infix", "ident", "array", "int", "int"}
	if len(kinds) != len(expected) {
		t.Fatalf("got %v, want %v", kinds, expected)
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Fatalf("got %v, want %v", kinds, expected)
		}
	}
}

type depthVisitor struct {
	depth    int
	maxDepth *int
}

func (v *depthVisitor) Visit(node Node) Visitor {
	if node == nil {
		return nil
	}
	if v.depth > *v.maxDepth {
		*v.maxDepth = v.depth
	}
	return &depthVisitor{depth: v.depth + 1, maxDepth: v.maxDepth}
}

func TestWalkDepth(t *testing.T) {
	program := &Program{Stmts: []Node{
		&While{
			Cond: ident("x", 0),
			Body: &Block{Stmts: []Node{&Prefix{Op: "print", X: ident("x", 0)}}},
		},
	}}
	maxDepth := 0
	Walk(&depthVisitor{maxDepth: &maxDepth}, program)
	// program > while > block > prefix > ident
	if maxDepth != 4 {
		t.Errorf("max depth = %d, want 4", maxDepth)
	}
}

func TestInspectStops(t *testing.T) {
	program := &Program{Stmts: []Node{
		&Call{Fun: ident("f", 0), Args: []Expr{ident("a", 0)}},
	}}
	count := 0
	Inspect(program, func(n Node) bool {
		count++
		_, isCall := n.(*Call)
		return !isCall
	})
	if count != 2 {
		t.Errorf("visited %d nodes, want 2", count)
	}
}
