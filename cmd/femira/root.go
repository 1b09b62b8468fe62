package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/femira-lang/femira"
	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/vm"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by all commands. Each app has its own viper
// instance so settings never leak between invocations.
type app struct {
	config *viper.Viper
	stdin  io.Reader
	logger zerolog.Logger
}

func newApp(stdin io.Reader) *app {
	return &app{
		config: viper.New(),
		stdin:  stdin,
		logger: zerolog.Nop(),
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "femira [file]",
		Short: "Compile and run Femira scripts",
		Long: `Femira compiles scripts to bytecode and runs them on a stack machine.

With no file, -c or --stdin, an interactive session is started when
attached to a terminal.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
		RunE:              a.runHandler,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Config file (default $HOME/.femira.yaml)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-level", "warn", "Log level: trace, debug, info, warn or error")
	pf.Bool("trace", false, "List the instructions of each sequence before running it")
	pf.Int("max-call-depth", vm.DefaultMaxCallDepth, "Maximum number of nested calls")

	f := cmd.Flags()
	f.StringP("code", "c", "", "Code to evaluate")
	f.Bool("stdin", false, "Read code from stdin")
	f.StringP("output", "o", "", "Output format: json or text")
	f.BoolP("quiet", "q", false, "Do not print the final value")
	f.Bool("no-repl", false, "Disable the interactive session")

	cmd.AddCommand(
		a.disCmd(),
		a.astCmd(),
		a.compileCmd(),
		a.execCmd(),
		a.replCmd(),
		a.versionCmd(),
	)
	return cmd
}

// initConfig layers flags, FEMIRA_* environment variables and the config
// file into the app's viper instance.
func (a *app) initConfig(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.config.SetConfigFile(cfgFile)
	} else {
		if home, err := homedir.Dir(); err == nil {
			a.config.AddConfigPath(home)
		}
		a.config.SetConfigName(".femira")
		a.config.SetConfigType("yaml")
	}
	a.config.SetEnvPrefix("femira")
	a.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.config.AutomaticEnv()

	if err := a.config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	if err := a.config.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if a.config.GetBool("no-color") {
		color.NoColor = true
	}
	logger, err := newLogger(cmd.ErrOrStderr(), a.config.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) runHandler(cmd *cobra.Command, args []string) error {
	if a.shouldRunRepl(cmd, args) {
		return a.runRepl(cmd)
	}
	source, filename, err := a.readSource(cmd, args)
	if err != nil {
		return err
	}
	code, err := femira.Compile(source, femira.WithFilename(filename))
	if err != nil {
		return err
	}
	return a.runCode(cmd, code)
}

// runCode runs compiled code and prints its final value per the output
// settings.
func (a *app) runCode(cmd *cobra.Command, code *bytecode.Code) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := vm.Run(ctx, code, a.vmOptions(cmd)...)
	if err != nil {
		return &runtimeError{err: err}
	}
	if a.config.GetBool("quiet") {
		return nil
	}
	output, err := getOutput(result, a.config.GetString("output"), !color.NoColor)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	return nil
}

func (a *app) vmOptions(cmd *cobra.Command) []vm.Option {
	opts := []vm.Option{
		vm.WithOutput(colorWriter{w: cmd.OutOrStdout(), c: printColor}),
		vm.WithLogger(a.logger),
		vm.WithMaxCallDepth(a.config.GetInt("max-call-depth")),
	}
	if a.config.GetBool("trace") {
		opts = append(opts, vm.WithTrace(cmd.OutOrStdout()))
	}
	return opts
}
