package commands

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/contourfold/pkg/version"
)

// NewRootCommand builds the contourfold command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contourfold",
		Short: "Fold and simplify contour trees by topological persistence",
		Long: `contourfold computes contour trees of scalar fields on graphs and
simplifies them by pruning low-persistence branches, keeping every removed
element recoverable.

Commands:
  contour   Compute the contour tree of a complex
  simplify  Simplify a contour tree at a persistence threshold
  expand    Simplify, then restore the subtree behind one node
  render    Write a simplified tree as an HTML chart
  validate  Check documents against the schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, configFlag, "", "config file (default contourfold.yaml in ., ./config, /etc/contourfold)")
	flags.BoolVarP(&app.verbose, verboseFlag, "v", false, "debug logging and full trace sampling")
	flags.BoolVarP(&app.quiet, quietFlag, "q", false, "log errors only")
	flags.BoolVar(&app.logJSON, logJSONFlag, false, "log as JSON")
	flags.StringVar(&app.metricsOut, metricsOutFlag, "", "write Prometheus text metrics to this file on exit")

	rootCmd.MarkFlagsMutuallyExclusive(verboseFlag, quietFlag)

	rootCmd.AddCommand(
		newContourCommand(app),
		newSimplifyCommand(app),
		newExpandCommand(app),
		newRenderCommand(app),
		newValidateCommand(app),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs one invocation with args and flushes telemetry afterwards.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	app := &App{}

	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)

	return errors.Join(err, app.Close(ctx))
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeOut(cmd.OutOrStdout(), "%s\n", version.String())
		},
	}
}
