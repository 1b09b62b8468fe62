// Package compiler lowers a Femira abstract syntax tree (AST) into a flat
// bytecode instruction sequence.
//
// # Private Buffers
//
// Every node is lowered into its own instruction buffer which the caller
// splices into its own. Control flow is encoded with relative jumps whose
// displacements are computed from the measured lengths of those buffers.
// After the instruction at index i executes, a taken jump with displacement
// d continues at index i+1+d.
//
// An if with condition C, success block S and fail block F lowers to:
//
//	C, JUMPIFNOT len(S'), S', F       where S' = S + JUMP len(F) when F is non-empty
//
// A while loop with condition C and body B lowers to:
//
//	C, JUMPIFNOT len(B'), B'          where B' = B + JUMP -(len(C)+len(B')+1)
//
// # Temporaries
//
// Array and record literals are built through a temporary binding named
// tempnewarray<N> or tempnewobject<N>. The counter is shared with the
// compilers of nested function bodies so names never collide within one
// compilation.
package compiler

import (
	"fmt"
	"strings"

	"github.com/femira-lang/femira/ast"
	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/internal/token"
	"github.com/femira-lang/femira/op"
)

const (
	arrayTempPrefix  = "tempnewarray"
	recordTempPrefix = "tempnewobject"
)

// binaryOps maps infix operators to their opcodes.
var binaryOps = map[string]op.Code{
	"+":  op.Add,
	"-":  op.Sub,
	"*":  op.Mul,
	"/":  op.Div,
	"?=": op.Eq,
	"!=": op.NotEq,
	"&&": op.And,
	"||": op.Or,
	">":  op.Bigger,
	"<":  op.Smaller,
	">=": op.BiggerOrEq,
	"<=": op.SmallerOrEq,
}

// keywordOps maps the statement keywords to their opcodes.
var keywordOps = map[string]op.Code{
	"print":  op.Print,
	"return": op.Return,
	"wait":   op.Wait,
}

// Compiler lowers AST nodes into bytecode.
type Compiler struct {
	// Name given to the resulting code; function bodies carry the
	// function name.
	name string

	// Source filename, used in error locations
	filename string

	// Original source code, used to show the failing line in errors
	source string

	// Counter for temporary names, shared with nested compilers
	temps *int
}

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithFilename sets the filename reported in compile errors.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// WithSource sets the source text, which is attached to the compiled code
// and quoted in compile errors.
func WithSource(source string) Option {
	return func(c *Compiler) {
		c.source = source
	}
}

// WithName sets the name of the compiled code.
func WithName(name string) Option {
	return func(c *Compiler) {
		c.name = name
	}
}

// Compile lowers the given AST node, normally an *ast.Program, into an
// immutable instruction sequence.
func Compile(node ast.Node, options ...Option) (*bytecode.Code, error) {
	return New(options...).Compile(node)
}

// New creates and returns a new Compiler.
func New(options ...Option) *Compiler {
	c := &Compiler{temps: new(int)}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Compile lowers the node into a Code.
func (c *Compiler) Compile(node ast.Node) (*bytecode.Code, error) {
	if node == nil {
		return nil, errz.New(errz.ErrStructural, "nothing to compile")
	}
	instructions, err := c.lower(node)
	if err != nil {
		return nil, err
	}
	return bytecode.NewCode(bytecode.CodeParams{
		Name:         c.name,
		Filename:     c.filename,
		Source:       c.source,
		Instructions: instructions,
	}), nil
}

// buffer accumulates the instructions of one lowering call.
type buffer struct {
	instructions []bytecode.Instruction
}

func (b *buffer) emit(code op.Code, operand ...any) {
	b.instructions = append(b.instructions, bytecode.Make(code, operand...))
}

func (b *buffer) splice(instructions []bytecode.Instruction) {
	b.instructions = append(b.instructions, instructions...)
}

// lower returns the instructions for a node in a fresh buffer.
func (c *Compiler) lower(node ast.Node) ([]bytecode.Instruction, error) {
	var b buffer
	if err := c.compile(node, &b); err != nil {
		return nil, err
	}
	return b.instructions, nil
}

func (c *Compiler) compile(node ast.Node, b *buffer) error {
	switch node := node.(type) {
	case *ast.Program:
		return c.compileStatements(node.Stmts, b)
	case *ast.Block:
		return c.compileStatements(node.Stmts, b)
	case *ast.Ident:
		b.emit(op.Read, node.Name)
	case *ast.Int:
		b.emit(op.Push, node.Value)
	case *ast.Float:
		b.emit(op.Push, node.Value)
	case *ast.String:
		b.emit(op.Push, node.Value)
	case *ast.Bool:
		b.emit(op.Push, node.Value)
	case *ast.Nil:
		b.emit(op.Push)
	case *ast.Paren:
		return c.compile(node.X, b)
	case *ast.Prefix:
		return c.compilePrefix(node, b)
	case *ast.Infix:
		return c.compileInfix(node, b)
	case *ast.Index:
		return c.compileIndex(node, b)
	case *ast.Call:
		return c.compileCall(node, b)
	case *ast.Func:
		return c.compileFunc(node, b)
	case *ast.Array:
		return c.compileArray(node, b)
	case *ast.Record:
		return c.compileRecord(node, b)
	case *ast.If:
		return c.compileIf(node, b)
	case *ast.While:
		return c.compileWhile(node, b)
	case *ast.BadExpr:
		return c.structuralError(node.Pos(), "invalid expression")
	default:
		return c.structuralError(node.Pos(), fmt.Sprintf("unsupported node %T", node))
	}
	return nil
}

// compileStatements lowers each statement into the same buffer. Values left
// by expression statements are not popped.
func (c *Compiler) compileStatements(stmts []ast.Node, b *buffer) error {
	for _, stmt := range stmts {
		if err := c.compile(stmt, b); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compilePrefix(node *ast.Prefix, b *buffer) error {
	if code, ok := keywordOps[node.Op]; ok {
		if node.X == nil {
			if code != op.Return {
				return c.structuralError(node.Pos(), fmt.Sprintf("%s requires an operand", node.Op))
			}
			b.emit(op.Push)
		} else if err := c.compile(node.X, b); err != nil {
			return err
		}
		b.emit(code)
		return nil
	}
	switch node.Op {
	case "-":
		// Negated numeric literals fold into a single constant.
		switch x := node.X.(type) {
		case *ast.Int:
			b.emit(op.Push, -x.Value)
			return nil
		case *ast.Float:
			b.emit(op.Push, -x.Value)
			return nil
		}
		if err := c.compile(node.X, b); err != nil {
			return err
		}
		b.emit(op.Neg)
	case "!":
		if err := c.compile(node.X, b); err != nil {
			return err
		}
		b.emit(op.Not)
	default:
		return c.structuralError(node.Pos(), fmt.Sprintf("unknown operator: %s", node.Op))
	}
	return nil
}

func (c *Compiler) compileInfix(node *ast.Infix, b *buffer) error {
	if node.IsAssign() {
		return c.compileAssign(node, b)
	}
	code, ok := binaryOps[node.Op]
	if !ok {
		return c.structuralError(node.OpPos, fmt.Sprintf("unknown operator: %s", node.Op))
	}
	if err := c.compile(node.X, b); err != nil {
		return err
	}
	if err := c.compile(node.Y, b); err != nil {
		return err
	}
	b.emit(code)
	return nil
}

// compileAssign lowers "name := value" to a WRITE and "c[i] := value" to
// a SETINDEX. The target name is never read.
func (c *Compiler) compileAssign(node *ast.Infix, b *buffer) error {
	switch target := node.X.(type) {
	case *ast.Ident:
		if err := c.compile(node.Y, b); err != nil {
			return err
		}
		b.emit(op.Write, target.Name)
	case *ast.Index:
		if err := c.compile(target.Index, b); err != nil {
			return err
		}
		if err := c.compile(node.Y, b); err != nil {
			return err
		}
		if err := c.compile(target.X, b); err != nil {
			return err
		}
		b.emit(op.SetIndex)
	default:
		return c.structuralError(node.Pos(), fmt.Sprintf("invalid assignment target: %s", node.X))
	}
	return nil
}

func (c *Compiler) compileIndex(node *ast.Index, b *buffer) error {
	if err := c.compile(node.Index, b); err != nil {
		return err
	}
	if err := c.compile(node.X, b); err != nil {
		return err
	}
	b.emit(op.ReadIndex)
	return nil
}

func (c *Compiler) compileCall(node *ast.Call, b *buffer) error {
	for _, arg := range node.Args {
		if err := c.compile(arg, b); err != nil {
			return err
		}
	}
	if err := c.compile(node.Fun, b); err != nil {
		return err
	}
	b.emit(op.Call)
	return nil
}

// compileFunc lowers the body with a nested compiler and binds the
// resulting function template to its name.
func (c *Compiler) compileFunc(node *ast.Func, b *buffer) error {
	if node.Name == nil {
		return c.structuralError(node.Pos(), "function requires a name")
	}
	nested := &Compiler{
		name:     node.Name.Name,
		filename: c.filename,
		source:   c.source,
		temps:    c.temps,
	}
	body, err := nested.Compile(node.Body)
	if err != nil {
		return err
	}
	fn := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       node.Name.Name,
		Parameters: node.ParamNames(),
		Code:       body,
	})
	b.emit(op.Push, fn)
	b.emit(op.Write, node.Name.Name)
	return nil
}

func (c *Compiler) compileArray(node *ast.Array, b *buffer) error {
	temp := c.newTemp(arrayTempPrefix)
	b.emit(op.NewArray)
	b.emit(op.Write, temp)
	for i, item := range node.Items {
		b.emit(op.Push, int64(i))
		if err := c.compile(item, b); err != nil {
			return err
		}
		b.emit(op.Read, temp)
		b.emit(op.SetIndex)
	}
	c.releaseTemp(temp, b)
	return nil
}

func (c *Compiler) compileRecord(node *ast.Record, b *buffer) error {
	temp := c.newTemp(recordTempPrefix)
	b.emit(op.NewObject)
	b.emit(op.Write, temp)
	for _, field := range node.Fields {
		assign, ok := field.(*ast.Infix)
		if !ok || !assign.IsAssign() {
			return c.structuralError(field.Pos(),
				fmt.Sprintf("record field must have the form name := value, got %s", field))
		}
		name, ok := assign.X.(*ast.Ident)
		if !ok {
			return c.structuralError(field.Pos(),
				fmt.Sprintf("record field name must be an identifier, got %s", assign.X))
		}
		b.emit(op.Push, name.Name)
		if err := c.compile(assign.Y, b); err != nil {
			return err
		}
		b.emit(op.Read, temp)
		b.emit(op.SetIndex)
	}
	c.releaseTemp(temp, b)
	return nil
}

// releaseTemp leaves the temporary's value on the stack and clears the
// binding.
func (c *Compiler) releaseTemp(temp string, b *buffer) {
	b.emit(op.Read, temp)
	b.emit(op.Push)
	b.emit(op.Write, temp)
}

func (c *Compiler) compileIf(node *ast.If, b *buffer) error {
	if err := c.compile(node.Cond, b); err != nil {
		return err
	}
	success, err := c.lower(node.Consequence)
	if err != nil {
		return err
	}
	var fail []bytecode.Instruction
	if node.Alternative != nil {
		if fail, err = c.lower(node.Alternative); err != nil {
			return err
		}
	}
	if len(fail) > 0 {
		success = append(success, bytecode.Make(op.Jump, int64(len(fail))))
	}
	b.emit(op.JumpIfNot, int64(len(success)))
	b.splice(success)
	b.splice(fail)
	return nil
}

func (c *Compiler) compileWhile(node *ast.While, b *buffer) error {
	cond, err := c.lower(node.Cond)
	if err != nil {
		return err
	}
	body, err := c.lower(node.Body)
	if err != nil {
		return err
	}
	// The back jump lands on the first condition instruction.
	bodyLen := len(body) + 1
	body = append(body, bytecode.Make(op.Jump, int64(-(len(cond) + bodyLen + 1))))
	b.splice(cond)
	b.emit(op.JumpIfNot, int64(len(body)))
	b.splice(body)
	return nil
}

func (c *Compiler) newTemp(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, *c.temps)
	*c.temps++
	return name
}

func (c *Compiler) structuralError(pos token.Position, msg string) error {
	filename := c.filename
	if filename == "" {
		filename = pos.File
	}
	return &errz.StructuredError{
		Kind:    errz.ErrStructural,
		Message: msg,
		Location: errz.SourceLocation{
			Filename: filename,
			Line:     pos.LineNumber(),
			Column:   pos.ColumnNumber(),
			Source:   c.sourceLine(pos.Line),
		},
	}
}

// sourceLine returns the 0-indexed line of the source, if known.
func (c *Compiler) sourceLine(line int) string {
	if c.source == "" {
		return ""
	}
	lines := strings.Split(c.source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}
