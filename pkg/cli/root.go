// Package cli implements the speclink command line.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/funvibe/speclink/internal/config"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Resolve names and link modules of a specification forest",
		Long: `speclink reads a module forest (YAML) and runs the name-resolution passes
over it: definition collection, import and instance resolution, flattening
of instances, and type-alias inlining.

Examples:
  speclink collect spec.yaml     Show the definitions of every module
  speclink resolve spec.yaml     Resolve imports and instances
  speclink flatten spec.yaml     Print the instance-free modules
  speclink tables specs/         Summarize the linked tables of a directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.configure(); err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			return nil
		},
	}
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "settings file (default ./speclink.yaml when present)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("color", "", "color output: auto, always, never")
	flags.String("cache", "", "path of the SQLite table cache")
	_ = app.viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = app.viper.BindPFlag("color", flags.Lookup("color"))
	_ = app.viper.BindPFlag("cache", flags.Lookup("cache"))

	root.AddCommand(
		newCollectCommand(app),
		newResolveCommand(app),
		newFlattenCommand(app),
		newTablesCommand(app),
		newBuiltinsCommand(app),
		newCacheCommand(app),
	)
	return root
}

// Execute runs the command line with args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	app := NewApp(stdout, stderr)
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Reported {
			fmt.Fprintln(stderr, "error: "+exitErr.Error())
		}
		return exitErr.Code
	}
	fmt.Fprintln(stderr, "error: "+err.Error())
	return ExitFailure
}
