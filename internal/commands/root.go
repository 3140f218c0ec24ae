package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/simonhull/firebird-suite/magpie"
	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/spf13/cobra"
)

// DefaultConfigPath is where magpie looks for its config file.
const DefaultConfigPath = "magpie.yaml"

// RootCmd creates the root command for the magpie CLI with every subcommand
// registered.
func RootCmd() *cobra.Command {
	var (
		verbose    bool
		quiet      bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "magpie",
		Short: "Visualize the import graph of a Python project",
		Long: `Magpie walks a Python project, extracts every import statement and
draws which files depend on which.

Whole-module imports and named imports are drawn differently, so you can
see at a glance where a file reaches into another for a single function.`,
		Version:      magpie.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetOutput(cmd.OutOrStdout())
			output.SetVerbose(verbose)
			output.SetQuiet(quiet)
			setupLogger(cmd.ErrOrStderr(), verbose, quiet, "")
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigPath, "Path to the config file")

	cmd.AddCommand(GraphCmd())
	cmd.AddCommand(InitCmd())
	cmd.AddCommand(VersionCmd())

	return cmd
}

// Execute runs the CLI with ctx as the command context.
func Execute(ctx context.Context) error {
	return RootCmd().ExecuteContext(ctx)
}

// VersionCmd prints the magpie version
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of magpie",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "magpie v%s\n", magpie.Version)
		},
	}
}

// setupLogger installs the default logger. The flags win over level, which
// comes from the config file.
func setupLogger(w io.Writer, verbose, quiet bool, level string) {
	lvl := logger.ParseLevel(level)
	switch {
	case verbose:
		lvl = logger.LevelDebug
	case quiet:
		lvl = logger.LevelError
	}
	logger.SetDefault(logger.NewLogger(lvl, w))
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}
