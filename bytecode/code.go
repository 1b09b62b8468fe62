package bytecode

import (
	"github.com/femira-lang/femira/op"
)

// Code is a compiled instruction sequence (a whole program or a function
// body). It is immutable after creation and safe for concurrent use.
type Code struct {
	name         string
	filename     string
	source       string
	instructions []Instruction
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Name         string
	Filename     string
	Source       string
	Instructions []Instruction
}

// NewCode creates a new immutable Code from the given parameters.
// The instruction slice is copied.
func NewCode(params CodeParams) *Code {
	return &Code{
		name:         params.Name,
		filename:     params.Filename,
		source:       params.Source,
		instructions: copyInstructions(params.Instructions),
	}
}

// NewSequence is shorthand for an unnamed Code built from instructions.
func NewSequence(instructions ...Instruction) *Code {
	return NewCode(CodeParams{Instructions: instructions})
}

// Name returns the name of this code block. Function bodies carry the
// function name; the top level is unnamed.
func (c *Code) Name() string {
	return c.name
}

// Filename returns the source filename, if known.
func (c *Code) Filename() string {
	return c.filename
}

// Source returns the source text the code was compiled from, if known.
func (c *Code) Source() string {
	return c.source
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given index.
func (c *Code) InstructionAt(index int) Instruction {
	return c.instructions[index]
}

// Instructions returns a copy of the instruction sequence.
func (c *Code) Instructions() []Instruction {
	return copyInstructions(c.instructions)
}

// Opcodes returns just the opcodes, in order.
func (c *Code) Opcodes() []op.Code {
	ops := make([]op.Code, len(c.instructions))
	for i, instr := range c.instructions {
		ops[i] = instr.Op
	}
	return ops
}

// Functions returns the function constants pushed by this code, in order
// of appearance. Nested functions are not included.
func (c *Code) Functions() []*Function {
	var fns []*Function
	for _, instr := range c.instructions {
		if fn, ok := instr.Operand.(*Function); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// FindFunction searches this code and its nested function bodies for a
// function with the given name.
func (c *Code) FindFunction(name string) (*Function, bool) {
	for _, fn := range c.Functions() {
		if fn.Name() == name {
			return fn, true
		}
		if inner, ok := fn.Code().FindFunction(name); ok {
			return inner, true
		}
	}
	return nil, false
}
