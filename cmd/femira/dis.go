package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/femira-lang/femira"
	"github.com/femira-lang/femira/dis"
	"github.com/spf13/cobra"
)

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble Femira bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.disHandler,
	}
	f := cmd.Flags()
	f.StringP("code", "c", "", "Code to disassemble")
	f.Bool("stdin", false, "Read code from stdin")
	f.String("func", "", "Function to disassemble")
	f.StringP("output", "o", "", "Output format: json or table")
	return cmd
}

func (a *app) disHandler(cmd *cobra.Command, args []string) error {
	source, filename, err := a.readSource(cmd, args)
	if err != nil {
		return err
	}
	code, err := femira.Compile(source, femira.WithFilename(filename))
	if err != nil {
		return err
	}

	// If a function name was provided, disassemble its code only
	if funcName := a.config.GetString("func"); funcName != "" {
		fn, ok := code.FindFunction(funcName)
		if !ok {
			return fmt.Errorf("function %q not found", funcName)
		}
		code = fn.Code()
	}

	instructions, err := dis.Disassemble(code)
	if err != nil {
		return err
	}
	switch format := a.config.GetString("output"); format {
	case "", "table":
		return dis.Print(instructions, cmd.OutOrStdout())
	case "json":
		output, err := marshalJSON(instructions, !color.NoColor)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
