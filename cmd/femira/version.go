package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE:  a.versionHandler,
	}
	cmd.Flags().StringP("output", "o", "", "Output format: json or text")
	return cmd
}

func (a *app) versionHandler(cmd *cobra.Command, args []string) error {
	if strings.ToLower(a.config.GetString("output")) == "json" {
		info, err := marshalJSON(map[string]any{
			"version": version,
			"commit":  commit,
			"date":    date,
		}, !color.NoColor)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(info))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	}
	return nil
}
