package main

import (
	"fmt"
	"reflect"

	"github.com/fatih/color"
	"github.com/femira-lang/femira/ast"
	"github.com/femira-lang/femira/parser"
	"github.com/spf13/cobra"
)

func (a *app) astCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the abstract syntax tree of a script",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.astHandler,
	}
	f := cmd.Flags()
	f.StringP("code", "c", "", "Code to parse")
	f.Bool("stdin", false, "Read code from stdin")
	f.StringP("output", "o", "", "Output format: json or text")
	return cmd
}

func (a *app) astHandler(cmd *cobra.Command, args []string) error {
	source, filename, err := a.readSource(cmd, args)
	if err != nil {
		return err
	}
	program, err := parser.Parse(cmd.Context(), source, parser.WithFilename(filename))
	if err != nil {
		return err
	}
	switch format := a.config.GetString("output"); format {
	case "", "text":
		fmt.Fprintln(cmd.OutOrStdout(), program.String())
		return nil
	case "json":
		output, err := marshalJSON(astTree(program), !color.NoColor)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// astNode is the JSON form of a syntax tree node.
type astNode struct {
	Kind     string     `json:"kind"`
	Text     string     `json:"text"`
	Line     int        `json:"line"`
	Column   int        `json:"column"`
	Children []*astNode `json:"children,omitempty"`
}

func astTree(node ast.Node) *astNode {
	pos := node.Pos()
	out := &astNode{
		Kind:   reflect.TypeOf(node).Elem().Name(),
		Text:   node.String(),
		Line:   pos.LineNumber(),
		Column: pos.ColumnNumber(),
	}
	for _, child := range ast.Children(node) {
		out.Children = append(out.Children, astTree(child))
	}
	return out
}
