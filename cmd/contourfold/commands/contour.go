package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/contourfold/pkg/folded"
	"github.com/Sumatoshi-tech/contourfold/pkg/persist"
	"github.com/Sumatoshi-tech/contourfold/pkg/render"
	"github.com/Sumatoshi-tech/contourfold/pkg/treeio"
)

const exportFlag = "export"

func newContourCommand(app *App) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "contour <file>",
		Short: "Compute the contour tree of a complex and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, "contour", func(ctx context.Context) error {
				tree, err := app.loadTree(ctx, args[0])
				if err != nil {
					return err
				}

				if exportPath != "" {
					if err := writeDocument(exportPath, tree); err != nil {
						return err
					}
				}

				return render.Table(cmd.OutOrStdout(), persist.TakeSnapshot(folded.New(tree)))
			})
		},
	}

	cmd.Flags().StringVar(&exportPath, exportFlag, "", "also write the tree as a contour_tree document (.yaml or .json)")

	return cmd
}

// writeDocument exports tree to path in the format its extension names.
func writeDocument(path string, tree treeio.Exportable) error {
	format, err := treeio.FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := treeio.Encode(file, treeio.Export(tree), format); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
