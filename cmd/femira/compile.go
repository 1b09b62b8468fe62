package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/femira-lang/femira"
	"github.com/femira-lang/femira/bytecode"
	"github.com/spf13/cobra"
)

// imageExt is the extension of compiled bytecode images.
const imageExt = ".fbc"

func (a *app) compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a script to a bytecode image",
		Args:  cobra.ExactArgs(1),
		RunE:  a.compileHandler,
	}
	cmd.Flags().StringP("out", "O", "", "Image path (default: the script path with a .fbc extension)")
	return cmd
}

func (a *app) compileHandler(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	code, err := femira.Compile(string(source), femira.WithFilename(args[0]))
	if err != nil {
		return err
	}
	data, err := bytecode.Marshal(code)
	if err != nil {
		return err
	}
	out := a.config.GetString("out")
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + imageExt
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	a.logger.Debug().
		Str("source", args[0]).
		Str("image", out).
		Int("bytes", len(data)).
		Msg("wrote image")
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
