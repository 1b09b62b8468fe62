package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/femira-lang/femira/ast"
	"github.com/femira-lang/femira/errz"
)

func parseOne(t *testing.T, input string) ast.Node {
	t.Helper()
	program, err := Parse(context.Background(), input)
	assert.Nil(t, err, input)
	assert.Len(t, program.Stmts, 1, input)
	return program.Stmts[0]
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "(((1 + 2)) * 3)"},
		{"-a * b", "((-a) * b)"},
		{"!true ?= false", "((!true) ?= false)"},
		{"a || b && c", "(a || (b && c))"},
		{"a := b := 3", "(a := (b := 3))"},
		{"x := 1 + 2", "(x := (1 + 2))"},
		{"x < 1 ?= true", "((x < 1) ?= true)"},
		{"a >= b != c <= d", "((a >= b) != (c <= d))"},
		{"a - b / c", "(a - (b / c))"},
		{"f(1, 2)[0]", "(f(1, 2)[0])"},
		{"arr[0] := 7", "((arr[0]) := 7)"},
		{"-f(x)", "(-f(x))"},
	}
	for _, tt := range tests {
		node := parseOne(t, tt.input)
		assert.Equal(t, node.String(), tt.expected)
	}
}

func TestNumberLiterals(t *testing.T) {
	node := parseOne(t, "42")
	i, ok := node.(*ast.Int)
	assert.True(t, ok)
	assert.Equal(t, i.Value, int64(42))

	node = parseOne(t, "2.5")
	f, ok := node.(*ast.Float)
	assert.True(t, ok)
	assert.Equal(t, f.Value, 2.5)
	assert.Equal(t, f.Literal, "2.5")
}

func TestLiterals(t *testing.T) {
	node := parseOne(t, `"hi"`)
	s, ok := node.(*ast.String)
	assert.True(t, ok)
	assert.Equal(t, s.Value, "hi")

	node = parseOne(t, "true")
	b, ok := node.(*ast.Bool)
	assert.True(t, ok)
	assert.True(t, b.Value)

	node = parseOne(t, "nil")
	_, ok = node.(*ast.Nil)
	assert.True(t, ok)
}

func TestFunction(t *testing.T) {
	node := parseOne(t, "fn add(a: int, b: int) -> int { return a + b }")
	fn, ok := node.(*ast.Func)
	assert.True(t, ok)
	assert.Equal(t, fn.Name.Name, "add")
	assert.Equal(t, fn.ParamNames(), []string{"a", "b"})
	assert.NotNil(t, fn.ReturnType)
	assert.Equal(t, fn.ReturnType.Name, "int")
	assert.Len(t, fn.Body.Stmts, 1)
	assert.Equal(t, fn.String(), "fn add(a, b) -> int { (return (a + b)) }")
}

func TestFunctionWithoutTypes(t *testing.T) {
	node := parseOne(t, "fn hello() {\n  print \"hello\"\n  return\n}")
	fn, ok := node.(*ast.Func)
	assert.True(t, ok)
	assert.Len(t, fn.Params, 0)
	assert.Nil(t, fn.ReturnType)
	assert.Len(t, fn.Body.Stmts, 2)
	ret, ok := fn.Body.Stmts[1].(*ast.Prefix)
	assert.True(t, ok)
	assert.Equal(t, ret.Op, "return")
	assert.Nil(t, ret.X)
}

func TestIfElseChain(t *testing.T) {
	input := `if x ?= 5 {
  print "five"
}
else if x > 5 {
  print "big"
} else {
  print x
}`
	node := parseOne(t, input)
	ifNode, ok := node.(*ast.If)
	assert.True(t, ok)
	assert.NotNil(t, ifNode.Alternative)
	assert.Len(t, ifNode.Alternative.Stmts, 1)
	nested, ok := ifNode.Alternative.Stmts[0].(*ast.If)
	assert.True(t, ok)
	assert.NotNil(t, nested.Alternative)
	assert.Equal(t, node.String(),
		`if (x ?= 5) { (print "five") } else { if (x > 5) { (print "big") } else { (print x) } }`)
}

func TestIfWithoutElseFollowedByStatement(t *testing.T) {
	program, err := Parse(context.Background(), "if ok { print 1 }\nprint 2")
	assert.Nil(t, err)
	assert.Len(t, program.Stmts, 2)
	ifNode, ok := program.Stmts[0].(*ast.If)
	assert.True(t, ok)
	assert.Nil(t, ifNode.Alternative)
}

func TestWhile(t *testing.T) {
	node := parseOne(t, "while i < 10 { i := i + 1 }")
	loop, ok := node.(*ast.While)
	assert.True(t, ok)
	assert.Equal(t, loop.Cond.String(), "(i < 10)")
	assert.Len(t, loop.Body.Stmts, 1)
}

func TestArrayAndIndex(t *testing.T) {
	program, err := Parse(context.Background(), "arr := [1, 2.5, \"s\"]; arr[0] := 7; print arr[0]")
	assert.Nil(t, err)
	assert.Len(t, program.Stmts, 3)
	assign := program.Stmts[0].(*ast.Infix)
	arr, ok := assign.Y.(*ast.Array)
	assert.True(t, ok)
	assert.Len(t, arr.Items, 3)
	assert.Equal(t, program.Stmts[2].String(), "(print (arr[0]))")
}

func TestRecordLiteral(t *testing.T) {
	node := parseOne(t, `p := { name := "femira", version := 1 }`)
	rec, ok := node.(*ast.Infix).Y.(*ast.Record)
	assert.True(t, ok)
	assert.Len(t, rec.Fields, 2)
	assert.Equal(t, rec.String(), `{(name := "femira"), (version := 1)}`)
}

func TestRecordAcrossLines(t *testing.T) {
	input := "p := {\n  name := \"femira\"\n  tags := [\"a\",\n \"b\"],\n  version := 1,\n}"
	node := parseOne(t, input)
	rec, ok := node.(*ast.Infix).Y.(*ast.Record)
	assert.True(t, ok)
	assert.Len(t, rec.Fields, 3)
}

func TestEmptyLiterals(t *testing.T) {
	node := parseOne(t, "x := {}")
	rec, ok := node.(*ast.Infix).Y.(*ast.Record)
	assert.True(t, ok)
	assert.Len(t, rec.Fields, 0)

	node = parseOne(t, "y := []")
	arr, ok := node.(*ast.Infix).Y.(*ast.Array)
	assert.True(t, ok)
	assert.Len(t, arr.Items, 0)
}

func TestKeywordStatements(t *testing.T) {
	program, err := Parse(context.Background(), "wait 0.1\nprint x + 1\n// done\n")
	assert.Nil(t, err)
	assert.Len(t, program.Stmts, 2)
	assert.Equal(t, program.String(), "(wait 0.1)\n(print (x + 1))")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"x := ", "parse error: unexpected end of file"},
		{"1 := 2", "parse error: invalid assignment target 1"},
		{"fn (a) {}", "parse error: unexpected ( while parsing function (expected identifier)"},
		{"fn f(a, a) {}", `parse error: duplicate parameter name "a"`},
		{"x y", `parse error: unexpected token "y" following statement`},
		{"if x { print 1", "parse error: unterminated block statement"},
		{"print", "parse error: print requires an operand"},
		{`"abc`, "syntax error: unterminated string literal (line 1, column 1)"},
	}
	for _, tt := range tests {
		_, err := Parse(context.Background(), tt.input)
		assert.NotNil(t, err, tt.input)
		assert.Equal(t, err.Error(), tt.err)
	}
}

func TestMultipleErrors(t *testing.T) {
	_, err := Parse(context.Background(), "x := )\ny := )")
	assert.NotNil(t, err)
	errs := Errors(err)
	assert.Len(t, errs, 2)
	assert.Equal(t, errs[1].StartPosition().LineNumber(), 2)
	assert.Contains(t, err.Error(), "(and 1 more errors)")
}

func TestErrorsAreSyntaxErrors(t *testing.T) {
	_, err := Parse(context.Background(), "x := )", WithFilename("main.fm"))
	assert.NotNil(t, err)
	assert.True(t, errz.Is(err, errz.ErrSyntax))

	var se *errz.StructuredError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, se.Location.Filename, "main.fm")
	assert.Equal(t, se.Location.Line, 1)
	assert.Equal(t, se.Location.Column, 6)
	assert.Contains(t, FriendlyErrorMessage(err), "x := )")
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, "x := 1")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMaxDepth(t *testing.T) {
	_, err := Parse(context.Background(), "((((((1))))))", WithMaxDepth(3))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth exceeded")
}

func TestErrorLimit(t *testing.T) {
	input := strings.Repeat("x := )\n", 15)
	_, err := Parse(context.Background(), input)
	assert.NotNil(t, err)
	assert.Len(t, Errors(err), maxErrors)
}

func TestNewlineBeforeNonElseIsKept(t *testing.T) {
	program, err := Parse(context.Background(), "if true { print 1 }\n\nprint 2")
	assert.Nil(t, err)
	assert.Len(t, program.Stmts, 2)
}
