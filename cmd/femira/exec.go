package main

import (
	"fmt"
	"os"

	"github.com/femira-lang/femira/bytecode"
	"github.com/spf13/cobra"
)

func (a *app) execCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <image>",
		Short: "Run a compiled bytecode image",
		Args:  cobra.ExactArgs(1),
		RunE:  a.execHandler,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "Output format: json or text")
	f.BoolP("quiet", "q", false, "Do not print the final value")
	return cmd
}

func (a *app) execHandler(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	code, err := bytecode.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	return a.runCode(cmd, code)
}
