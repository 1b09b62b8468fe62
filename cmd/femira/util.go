package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/object"
	"github.com/femira-lang/femira/parser"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	red        = color.New(color.FgRed).SprintFunc()
	printColor = color.New(color.FgCyan)
)

// runtimeError marks failures raised while running compiled code.
type runtimeError struct {
	err error
}

func (e *runtimeError) Error() string {
	return "Runtime error: " + e.err.Error()
}

func (e *runtimeError) Unwrap() error {
	return e.err
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, red(formatError(err)))
	os.Exit(1)
}

// formatError renders err with source context when it is available.
func formatError(err error) string {
	var rt *runtimeError
	if errors.As(err, &rt) {
		return "Runtime error: " + friendlyMessage(rt.err)
	}
	return friendlyMessage(err)
}

func friendlyMessage(err error) string {
	if len(parser.Errors(err)) > 0 {
		return strings.TrimRight(parser.FriendlyErrorMessage(err), "\n")
	}
	var se *errz.StructuredError
	if errors.As(err, &se) {
		return strings.TrimRight(se.FriendlyErrorMessage(), "\n")
	}
	return err.Error()
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// getOutput renders a final value. With no format, nil prints nothing,
// values that marshal to JSON print as JSON and anything else prints its
// inspected form.
func getOutput(result object.Object, format string, colored bool) (string, error) {
	switch strings.ToLower(format) {
	case "":
		if result == nil || result == object.Nil {
			return "", nil
		}
		if _, ok := result.(*object.Function); ok {
			return result.Inspect(), nil
		}
		output, err := marshalJSON(result, colored)
		if err != nil {
			return result.Inspect(), nil
		}
		return string(output), nil
	case "json":
		output, err := marshalJSON(result, colored)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		return object.PrintableString(result), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func marshalJSON(v any, colored bool) ([]byte, error) {
	if colored {
		return prettyjson.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    color.NoColor,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger(), nil
}

// colorWriter colors everything written through it. PRINT renders each
// frame with a single write, so frames are colored as a whole.
type colorWriter struct {
	w io.Writer
	c *color.Color
}

func (cw colorWriter) Write(p []byte) (int, error) {
	if _, err := cw.c.Fprint(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
