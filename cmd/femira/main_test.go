package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/object"
	"github.com/femira-lang/femira/parser"
	"github.com/femira-lang/femira/scope"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	a := newApp(strings.NewReader(stdin))
	cmd := a.rootCmd()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestEvalCode(t *testing.T) {
	out, err := execute(t, "", "-c", "1 + 2")
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestPrint(t *testing.T) {
	out, err := execute(t, "", "-c", `print "hi"`)
	require.NoError(t, err)
	require.Equal(t, " ------\n | hi | \n ------\n", out)
}

func TestOutputFormats(t *testing.T) {
	out, err := execute(t, "", "-c", `"femira"`, "-o", "text")
	require.NoError(t, err)
	require.Equal(t, "femira\n", out)

	out, err = execute(t, "", "-c", "[1, 2]", "-o", "json")
	require.NoError(t, err)
	require.Equal(t, "[\n  1,\n  2\n]\n", out)

	_, err = execute(t, "", "-c", "1", "-o", "yaml")
	require.ErrorContains(t, err, "unknown output format: yaml")
}

func TestQuiet(t *testing.T) {
	out, err := execute(t, "", "-c", "1 + 2", "-q")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestStdin(t *testing.T) {
	out, err := execute(t, "2 * 21", "--stdin")
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}

func TestRunFile(t *testing.T) {
	path := writeScript(t, "five.fm", "x := 5\nx")
	out, err := execute(t, "", path)
	require.NoError(t, err)
	require.Equal(t, "5\n", out)
}

func TestInputSources(t *testing.T) {
	_, err := execute(t, "", "--no-repl")
	require.ErrorContains(t, err, "no input provided")

	path := writeScript(t, "one.fm", "1")
	_, err = execute(t, "", "-c", "1", path)
	require.ErrorContains(t, err, "multiple input sources specified")
}

func TestRuntimeError(t *testing.T) {
	_, err := execute(t, "", "-c", "1 / 0")
	require.Error(t, err)
	var rt *runtimeError
	require.True(t, errors.As(err, &rt))
	require.True(t, errz.Is(err, errz.ErrRange))
	require.Contains(t, formatError(err), "Runtime error:")
	require.Contains(t, formatError(err), "division by zero")
}

func TestSyntaxError(t *testing.T) {
	_, err := execute(t, "", "-c", "x := ")
	require.Error(t, err)
	require.NotEmpty(t, parser.Errors(err))
	require.NotContains(t, formatError(err), "Runtime error")
}

func TestTraceFlag(t *testing.T) {
	out, err := execute(t, "", "--trace", "-c", "1")
	require.NoError(t, err)
	require.Equal(t, "1:    push    1\n<RESULT>\n1\n", out)
}

func TestMaxCallDepthFlag(t *testing.T) {
	_, err := execute(t, "", "--max-call-depth", "5", "-c", "fn f() { f() }\nf()")
	require.ErrorContains(t, err, "maximum call depth exceeded (5)")
}

func TestConfigFile(t *testing.T) {
	cfg := writeScript(t, "femira.yaml", "quiet: true\n")
	out, err := execute(t, "", "--config", cfg, "-c", "1 + 2")
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "-c", "1")
	require.ErrorContains(t, err, "reading config")
}

func TestEnvironmentConfig(t *testing.T) {
	t.Setenv("FEMIRA_OUTPUT", "text")
	out, err := execute(t, "", "-c", `"plain"`)
	require.NoError(t, err)
	require.Equal(t, "plain\n", out)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "", "--log-level", "loud", "-c", "1")
	require.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestDis(t *testing.T) {
	out, err := execute(t, "", "dis", "-c", "x := 1")
	require.NoError(t, err)
	require.Contains(t, out, "OPCODE")
	require.Contains(t, out, "PUSH")
	require.Contains(t, out, "WRITE")

	out, err = execute(t, "", "dis", "-c", "fn add(a, b) { return a + b }", "--func", "add")
	require.NoError(t, err)
	require.Contains(t, out, "ADD")
	require.Contains(t, out, "RETURN")
	require.NotContains(t, out, "WRITE")

	_, err = execute(t, "", "dis", "-c", "1", "--func", "missing")
	require.ErrorContains(t, err, `function "missing" not found`)

	out, err = execute(t, "", "dis", "-c", "1", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "PUSH"`)
}

func TestAst(t *testing.T) {
	out, err := execute(t, "", "ast", "-c", "x := 1", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"kind": "Program"`)
	require.Contains(t, out, `"children"`)

	out, err = execute(t, "", "ast", "-c", "x := 1")
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(out))

	_, err = execute(t, "", "ast", "-c", "x := 1", "-o", "xml")
	require.ErrorContains(t, err, "unknown output format: xml")
}

func TestCompileAndExec(t *testing.T) {
	path := writeScript(t, "square.fm", "fn sq(n) { n * n }\nsq(7)")
	out, err := execute(t, "", "compile", path)
	require.NoError(t, err)
	image := strings.TrimSuffix(path, ".fm") + ".fbc"
	require.Equal(t, image+"\n", out)

	out, err = execute(t, "", "exec", image)
	require.NoError(t, err)
	require.Equal(t, "49\n", out)

	custom := filepath.Join(t.TempDir(), "custom.img")
	_, err = execute(t, "", "compile", path, "--out", custom)
	require.NoError(t, err)
	out, err = execute(t, "", "exec", custom, "-o", "text")
	require.NoError(t, err)
	require.Equal(t, "49\n", out)
}

func TestExecInvalidImage(t *testing.T) {
	path := writeScript(t, "bad.fbc", "not an image")
	_, err := execute(t, "", "exec", path)
	require.ErrorContains(t, err, "loading "+path)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, version+"\n", out)

	out, err = execute(t, "", "version", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"version": "`+version+`"`)
	require.Contains(t, out, `"commit": "`+commit+`"`)
}

func TestGetOutput(t *testing.T) {
	out, err := getOutput(object.Nil, "", false)
	require.NoError(t, err)
	require.Empty(t, out)

	out, err = getOutput(object.NewString("a"), "", false)
	require.NoError(t, err)
	require.Equal(t, `"a"`, out)

	out, err = getOutput(object.NewString("a"), "TEXT", false)
	require.NoError(t, err)
	require.Equal(t, "a", out)

	_, err = getOutput(object.NewInt(1), "csv", false)
	require.Error(t, err)
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		source     string
		incomplete bool
	}{
		{"fn f() {", true},
		{"1 +", true},
		{"if x {\n print x", true},
		{"1 )", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := parser.Parse(context.Background(), tt.source)
			require.Error(t, err)
			require.Equal(t, tt.incomplete, isIncomplete(err))
		})
	}
	require.False(t, isIncomplete(errors.New("other")))
}

func TestReplSession(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	a := newApp(strings.NewReader(""))
	cmd := a.rootCmd()
	cmd.SetArgs([]string{"--no-color", "version"})
	var discard bytes.Buffer
	cmd.SetOut(&discard)
	require.NoError(t, cmd.Execute())

	session := &replSession{app: a, cmd: cmd, scope: scope.New()}
	var out bytes.Buffer
	ctx := context.Background()
	require.NoError(t, session.eval(ctx, "x := 2", &out))
	require.Empty(t, out.String())
	require.NoError(t, session.eval(ctx, "x * 3", &out))
	require.Equal(t, "6\n", out.String())

	err := session.eval(ctx, "y", &out)
	require.True(t, errz.Is(err, errz.ErrLookup))
}
