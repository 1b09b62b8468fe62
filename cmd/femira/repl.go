package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/femira-lang/femira"
	"github.com/femira-lang/femira/parser"
	"github.com/femira-lang/femira/scope"
	"github.com/femira-lang/femira/vm"
	"github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".femira_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepl(cmd)
		},
	}
}

func (a *app) runRepl(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Femira", version, "- type :quit to exit")

	var histPath string
	if home, err := homedir.Dir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			ln.Close()
			os.Exit(130)
		}
	}()

	session := &replSession{app: a, cmd: cmd, scope: scope.New()}
	for {
		source, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(source)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(source)
		if strings.HasPrefix(trimmed, ":") {
			if strings.EqualFold(trimmed, ":quit") {
				return nil
			}
			fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			continue
		}
		if err := session.eval(ctx, source, out); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), red(formatError(err)))
		}
	}
}

// readInput prompts until the collected lines parse or fail for a reason
// other than running out of input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := parser.Parse(context.Background(), src)
		if perr != nil && isIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// isIncomplete reports whether a parse failed only because the input
// ended early, as with an open block or a trailing operator.
func isIncomplete(err error) bool {
	errs := parser.Errors(err)
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		msg := e.Message()
		if strings.Contains(msg, "end of file") || strings.Contains(msg, "unterminated block") {
			return true
		}
	}
	return false
}

// replSession evaluates entries against one scope so bindings survive
// from one entry to the next.
type replSession struct {
	app   *app
	cmd   *cobra.Command
	scope *scope.Scope
}

func (s *replSession) eval(ctx context.Context, source string, out io.Writer) error {
	code, err := femira.Compile(source)
	if err != nil {
		return err
	}
	opts := append(s.app.vmOptions(s.cmd), vm.WithScope(s.scope))
	result, err := vm.Run(ctx, code, opts...)
	if err != nil {
		return &runtimeError{err: err}
	}
	output, err := getOutput(result, "", !color.NoColor)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(out, output)
	}
	return nil
}
