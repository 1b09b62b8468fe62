package errz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStrings(t *testing.T) {
	require.Equal(t, "lookup error", ErrLookup.String())
	require.Equal(t, "type error", ErrType.String())
	require.Equal(t, "structural error", ErrStructural.String())
	require.Equal(t, "out-of-range error", ErrRange.String())
	require.Equal(t, "error", ErrorKind(99).String())
}

func TestStructuredErrorMessage(t *testing.T) {
	err := Newf(ErrType, "unsupported operand types for ADD: %s and %s", "string", "int")
	require.Equal(t, "type error: unsupported operand types for ADD: string and int", err.Error())

	loc := SourceLocation{Filename: "main.fem", Line: 2, Column: 5, Source: "x := {1}"}
	err = NewStructuredErrorf(ErrStructural, loc, nil, "record field must be an assignment")
	require.Equal(t, "structural error: record field must be an assignment (main.fem:2:5)", err.Error())
	require.Contains(t, err.FriendlyErrorMessage(), " |     ^")
}

func TestStackTrace(t *testing.T) {
	err := New(ErrLookup, "undefined name \"y\"").WithStack([]StackFrame{
		{Function: "inner", Offset: 3},
		{Offset: 10},
	})
	msg := err.FriendlyErrorMessage()
	require.Contains(t, msg, "at inner (offset 3)")
	require.Contains(t, msg, "at <main> (offset 10)")
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("run failed: %w", New(ErrRange, "division by zero"))
	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	require.Equal(t, ErrRange, kind)
	require.True(t, Is(wrapped, ErrRange))
	require.False(t, Is(fmt.Errorf("plain"), ErrRange))
}

func TestSuggest(t *testing.T) {
	names := []string{"count", "counter", "total", "x"}
	require.Equal(t, []string{"count"}, Suggest("coutn", names))
	require.Equal(t, []string{"x"}, Suggest("y", names))
	require.Empty(t, Suggest("zzzzzz", names))
	require.Empty(t, Suggest("", names))

	require.Equal(t, "", FormatSuggestions(nil))
	require.Equal(t, "did you mean 'x'?", FormatSuggestions([]string{"x"}))
	require.Equal(t, "did you mean one of 'a', 'b'?", FormatSuggestions([]string{"a", "b"}))
}

func TestHint(t *testing.T) {
	err := New(ErrLookup, `undefined name "coutn"`).WithHint("did you mean 'count'?")
	require.Equal(t, `lookup error: undefined name "coutn"`, err.Error())
	require.Contains(t, err.FriendlyErrorMessage(), "hint: did you mean 'count'?")
}
