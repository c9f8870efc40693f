package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/contourfold/pkg/persist"
	"github.com/Sumatoshi-tech/contourfold/pkg/render"
)

const htmlFlag = "html"

func newRenderCommand(app *App) *cobra.Command {
	var (
		threshold float64
		passes    int
		htmlPath  string
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Write a simplified tree as an interactive HTML chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if htmlPath == "" {
				return fmt.Errorf("%w (use --%s)", ErrNoOutput, htmlFlag)
			}

			return app.run(cmd, "render", func(ctx context.Context) error {
				tree, _, err := app.simplified(ctx, args[0], app.threshold(cmd, threshold), app.passes(cmd, passes))
				if err != nil {
					return err
				}

				snapshot := persist.TakeSnapshot(tree)
				snapshot.Threshold = app.threshold(cmd, threshold)

				file, err := os.Create(htmlPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", htmlPath, err)
				}
				defer file.Close()

				if err := render.WriteChart(file, snapshot); err != nil {
					return err
				}

				return writeOut(cmd.OutOrStdout(), "Chart: %s\n", htmlPath)
			})
		},
	}

	cmd.Flags().Float64VarP(&threshold, thresholdFlag, "t", 0, "persistence threshold (default from config)")
	cmd.Flags().IntVar(&passes, passesFlag, 0, "maximum simplify passes (default from config)")
	cmd.Flags().StringVarP(&htmlPath, htmlFlag, "o", "", "output HTML file")

	return cmd
}
