package femira

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/op"
	"github.com/femira-lang/femira/parser"
	"github.com/femira-lang/femira/scope"
	"github.com/femira-lang/femira/vm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBasicUsage(t *testing.T) {
	result, err := Eval(context.Background(), "1 + 1")
	require.NoError(t, err)
	require.Equal(t, int64(2), result)
}

func TestEvalValues(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{`2.5 * 2.0`, 5.0},
		{`1 < 2`, true},
		{`nil`, nil},
		{`[1, "a", true]`, []any{int64(1), "a", true}},
		{`{ a := 1, b := [2] }`, map[string]any{"a": int64(1), "b": []any{int64(2)}}},
		{`fn add(a, b) { return a + b }; add(2, 3)`, int64(5)},
		{`x := 10; if x > 5 { "big" } else { "small" }`, "big"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := Eval(context.Background(), tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestTypeError(t *testing.T) {
	_, err := Eval(context.Background(), `"fem" + 1`)
	require.True(t, errz.Is(err, errz.ErrType))
}

func TestEmptyProgram(t *testing.T) {
	result, err := Eval(context.Background(), "x := 1")
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestFunctionResult(t *testing.T) {
	result, err := Eval(context.Background(), "fn f(a) { a }; f")
	require.NoError(t, err)
	require.Equal(t, "fn f(a)", result)
}

func TestSyntaxError(t *testing.T) {
	_, err := Eval(context.Background(), "x := (1 + ", WithFilename("broken.fm"))
	require.Error(t, err)
	require.True(t, errz.Is(err, errz.ErrSyntax))
	require.NotEmpty(t, parser.Errors(err))
}

func TestStructuralError(t *testing.T) {
	_, err := Compile("r := {1}", WithFilename("record.fm"))
	require.True(t, errz.Is(err, errz.ErrStructural))
	require.Contains(t, err.Error(), "record.fm:1:")
}

func TestOutputAndTrace(t *testing.T) {
	var out, trace bytes.Buffer
	_, err := Eval(context.Background(), `print 5 + 5`, WithOutput(&out), WithTrace(&trace))
	require.NoError(t, err)
	require.Equal(t, " ------\n | 10 | \n ------\n", out.String())
	require.Contains(t, trace.String(), "<RESULT>")
}

func TestWithEnv(t *testing.T) {
	result, err := Eval(context.Background(), `base + items[1]`, WithEnv(map[string]any{
		"base":  40,
		"items": []any{1, 2},
	}))
	require.NoError(t, err)
	require.Equal(t, int64(42), result)

	_, err = Eval(context.Background(), `x`, WithEnv(map[string]any{"x": struct{}{}}))
	require.Error(t, err)
}

func TestWithScope(t *testing.T) {
	s := scope.New()
	_, err := Eval(context.Background(), `counter := 1`, WithScope(s))
	require.NoError(t, err)
	result, err := Eval(context.Background(), `counter + 1`, WithScope(s))
	require.NoError(t, err)
	require.Equal(t, int64(2), result)
}

func TestWithCallable(t *testing.T) {
	callable := bytecode.NewSequence(
		bytecode.Make(op.Push, "from table"),
	)
	main := bytecode.NewSequence(bytecode.Make(op.Call, 1))
	result, err := Run(context.Background(), main, WithCallable(1, callable))
	require.NoError(t, err)
	require.Equal(t, "from table", result)
}

func TestWithMaxCallDepth(t *testing.T) {
	_, err := Eval(context.Background(), "fn f() { f() }\nf()", WithMaxCallDepth(8))
	require.True(t, errz.Is(err, errz.ErrRuntime))
}

type countingObserver struct {
	vm.NoOpObserver
	calls int
}

func (o *countingObserver) OnCall(vm.CallEvent) bool {
	o.calls++
	return true
}

func TestWithObserver(t *testing.T) {
	obs := &countingObserver{}
	_, err := Eval(context.Background(), "fn f(n) { n }\nf(1)\nf(2)", WithObserver(obs))
	require.NoError(t, err)
	require.Equal(t, 2, obs.calls)
}

func TestWithLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	_, err := Eval(context.Background(), "1", WithLogger(logger))
	require.NoError(t, err)
	require.Contains(t, logs.String(), `"run_id":`)
	require.Contains(t, logs.String(), "run finished")
}

func TestConcurrentRuns(t *testing.T) {
	code, err := Compile(`fn fib(n) {
	if n < 2 {
		return n
	}
	return fib(n - 1) + fib(n - 2)
}
fib(10)`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]any, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Run(context.Background(), code)
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, int64(55), results[i])
	}
}
