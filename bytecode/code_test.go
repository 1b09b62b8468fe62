package bytecode

import (
	"testing"

	"github.com/femira-lang/femira/op"
	"github.com/stretchr/testify/require"
)

func TestCodeIsImmutable(t *testing.T) {
	instrs := []Instruction{Make(op.Push, 1), Make(op.Print)}
	code := NewCode(CodeParams{Name: "main", Instructions: instrs})
	instrs[0] = Make(op.Push, 2)
	require.Equal(t, int64(1), code.InstructionAt(0).Operand)

	copied := code.Instructions()
	copied[1] = Make(op.Return)
	require.Equal(t, op.Print, code.InstructionAt(1).Op)
	require.Equal(t, []op.Code{op.Push, op.Print}, code.Opcodes())
}

func TestMakeNormalizesOperands(t *testing.T) {
	require.Equal(t, int64(3), Make(op.Jump, 3).Operand)
	require.Equal(t, float64(float32(1.5)), Make(op.Push, float32(1.5)).Operand)
	require.Nil(t, Make(op.Add).Operand)
	require.False(t, Make(op.Add).HasOperand())

	d, ok := Make(op.JumpIfNot, -4).Displacement()
	require.True(t, ok)
	require.Equal(t, int64(-4), d)

	name, ok := Make(op.Write, "x").Name()
	require.True(t, ok)
	require.Equal(t, "x", name)
}

func TestInstructionString(t *testing.T) {
	fn := NewFunction(FunctionParams{Name: "add", Parameters: []string{"a", "b"}})
	tests := []struct {
		instr    Instruction
		expected string
	}{
		{Make(op.Push, 5), "PUSH 5"},
		{Make(op.Push, 2.0), "PUSH 2.0"},
		{Make(op.Push, 5.5), "PUSH 5.5"},
		{Make(op.Push), "PUSH nil"},
		{Make(op.Push, true), "PUSH true"},
		{Make(op.Write, "x"), `WRITE "x"`},
		{Make(op.Push, fn), "PUSH <fn add>"},
		{Make(op.Add), "ADD"},
		{Make(op.Jump, -7), "JUMP -7"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.instr.String())
	}
	require.Equal(t, "fn add(a, b)", fn.String())
}

func TestFindFunction(t *testing.T) {
	inner := NewFunction(FunctionParams{Name: "inner"})
	outer := NewFunction(FunctionParams{
		Name: "outer",
		Code: NewSequence(Make(op.Push, inner), Make(op.Write, "inner")),
	})
	root := NewSequence(Make(op.Push, outer), Make(op.Write, "outer"))

	require.Len(t, root.Functions(), 1)
	found, ok := root.FindFunction("inner")
	require.True(t, ok)
	require.Same(t, inner, found)
	_, ok = root.FindFunction("missing")
	require.False(t, ok)
}
