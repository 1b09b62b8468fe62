package bytecode

import (
	"testing"

	"github.com/femira-lang/femira/op"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	body := NewCode(CodeParams{
		Name: "add",
		Instructions: []Instruction{
			Make(op.Read, "a"),
			Make(op.Read, "b"),
			Make(op.Add),
			Make(op.Return),
		},
	})
	fn := NewFunction(FunctionParams{Name: "add", Parameters: []string{"a", "b"}, Code: body})
	root := NewCode(CodeParams{
		Filename: "main.fem",
		Source:   "fn add(a, b) { return a + b }",
		Instructions: []Instruction{
			Make(op.Push, fn),
			Make(op.Write, "add"),
			Make(op.Push, 1.25),
			Make(op.Push, true),
			Make(op.Push),
			Make(op.Jump, -3),
			Make(op.Call, 7),
		},
	})

	data, err := Marshal(root)
	require.Nil(t, err)

	restored, err := Unmarshal(data)
	require.Nil(t, err)
	require.Equal(t, "main.fem", restored.Filename())
	require.Equal(t, root.Source(), restored.Source())
	require.Equal(t, root.InstructionCount(), restored.InstructionCount())

	for i := 0; i < root.InstructionCount(); i++ {
		want, got := root.InstructionAt(i), restored.InstructionAt(i)
		require.Equal(t, want.Op, got.Op)
		require.Equal(t, want.String(), got.String())
	}

	restoredFn, ok := restored.InstructionAt(0).Operand.(*Function)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, restoredFn.Parameters())
	require.Equal(t, body.Opcodes(), restoredFn.Code().Opcodes())
}

func TestMarshalIsDeterministic(t *testing.T) {
	code := NewSequence(Make(op.Push, 5), Make(op.Push, 5), Make(op.Add), Make(op.Print))
	a, err := Marshal(code)
	require.Nil(t, err)
	b, err := Marshal(code)
	require.Nil(t, err)
	require.Equal(t, a, b)
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0x00})
	require.Error(t, err)

	_, err = Marshal(nil)
	require.Error(t, err)

	bad := NewSequence(Instruction{Op: op.Push, Operand: []int{1}})
	_, err = Marshal(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported operand")
}
