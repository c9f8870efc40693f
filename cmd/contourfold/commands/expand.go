package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/contourfold/pkg/folded"
	"github.com/Sumatoshi-tech/contourfold/pkg/persist"
	"github.com/Sumatoshi-tech/contourfold/pkg/render"
)

const (
	idFlag  = "id"
	allFlag = "all"
)

// Expand errors.
var (
	ErrUnknownNode = errors.New("node is not live after simplification")
	ErrIsolated    = errors.New("node has no incident edge")
	ErrNoTarget    = errors.New("either --id or --all is required")
)

type expandOptions struct {
	threshold float64
	passes    int
	id        int
	all       bool
}

func newExpandCommand(app *App) *cobra.Command {
	var opts expandOptions

	cmd := &cobra.Command{
		Use:   "expand <file>",
		Short: "Simplify, then restore the subtree folded behind one node",
		Long: `Simplify the tree, then restore everything folded beneath the first live
edge incident to the node with --id, or everything with --all.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed(idFlag) && !opts.all {
				return ErrNoTarget
			}

			return app.run(cmd, "expand", func(ctx context.Context) error {
				return runExpand(ctx, cmd, app, args[0], opts)
			})
		},
	}

	cmd.Flags().Float64VarP(&opts.threshold, thresholdFlag, "t", 0, "persistence threshold (default from config)")
	cmd.Flags().IntVar(&opts.passes, passesFlag, 0, "maximum simplify passes (default from config)")
	cmd.Flags().IntVar(&opts.id, idFlag, 0, "ID of the node whose subtree is restored")
	cmd.Flags().BoolVar(&opts.all, allFlag, false, "restore the whole tree")
	cmd.MarkFlagsMutuallyExclusive(idFlag, allFlag)

	return cmd
}

func runExpand(ctx context.Context, cmd *cobra.Command, app *App, path string, opts expandOptions) error {
	threshold := app.threshold(cmd, opts.threshold)

	tree, _, err := app.simplified(ctx, path, threshold, app.passes(cmd, opts.passes))
	if err != nil {
		return err
	}

	var operations int

	if opts.all {
		operations = folded.ExpandAll(tree)
	} else {
		operations, err = expandAround(tree, opts.id)
		if err != nil {
			return err
		}
	}

	app.providers.Fold.RecordExpand(ctx, operations)
	app.logger().InfoContext(ctx, "expanded", "operations", operations, "members", tree.TotalMembers())

	out := cmd.OutOrStdout()

	if err := writeOut(out, "Expanded with %d operations\n", operations); err != nil {
		return err
	}

	return render.Table(out, persist.TakeSnapshot(tree))
}

func expandAround(tree *folded.Tree, id int) (int, error) {
	node, ok := tree.Node(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}

	for neighbor := range tree.Neighbors(node) {
		return folded.Expand(tree, node, neighbor), nil
	}

	return 0, fmt.Errorf("%w: %d", ErrIsolated, id)
}
