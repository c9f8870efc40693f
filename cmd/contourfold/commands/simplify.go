package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/contourfold/pkg/persist"
	"github.com/Sumatoshi-tech/contourfold/pkg/render"
)

const (
	snapshotBasename = "snapshot"

	outFlag      = "out"
	compressFlag = "compress"
	formatFlag   = "format"
)

type simplifyOptions struct {
	threshold  float64
	passes     int
	outDir     string
	compress   bool
	format     string
	exportPath string
}

func newSimplifyCommand(app *App) *cobra.Command {
	var opts simplifyOptions

	cmd := &cobra.Command{
		Use:   "simplify <file>",
		Short: "Simplify a contour tree at a persistence threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, "simplify", func(ctx context.Context) error {
				return runSimplify(ctx, cmd, app, args[0], opts)
			})
		},
	}

	cmd.Flags().Float64VarP(&opts.threshold, thresholdFlag, "t", 0, "persistence threshold (default from config)")
	cmd.Flags().IntVar(&opts.passes, passesFlag, 0, "maximum simplify passes (default from config)")
	cmd.Flags().StringVarP(&opts.outDir, outFlag, "o", "", "save a snapshot into this directory")
	cmd.Flags().BoolVar(&opts.compress, compressFlag, false, "LZ4-compress the snapshot")
	cmd.Flags().StringVar(&opts.format, formatFlag, "", "snapshot format: json or gob (default from config)")
	cmd.Flags().StringVar(&opts.exportPath, exportFlag, "", "also write the simplified tree as a document (.yaml or .json)")

	return cmd
}

func runSimplify(ctx context.Context, cmd *cobra.Command, app *App, path string, opts simplifyOptions) error {
	threshold := app.threshold(cmd, opts.threshold)

	tree, stats, err := app.simplified(ctx, path, threshold, app.passes(cmd, opts.passes))
	if err != nil {
		return err
	}

	snapshot := persist.TakeSnapshot(tree)
	snapshot.Threshold = threshold

	out := cmd.OutOrStdout()

	if err := render.Summary(out, threshold, stats, snapshot); err != nil {
		return err
	}

	if err := render.Table(out, snapshot); err != nil {
		return err
	}

	if opts.exportPath != "" {
		if err := writeDocument(opts.exportPath, tree); err != nil {
			return err
		}
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = app.cfg.Output.Directory
	}

	if outDir == "" {
		return nil
	}

	format := opts.format
	if !cmd.Flags().Changed(formatFlag) {
		format = app.cfg.Output.Format
	}

	codec, err := persist.CodecFor(format, opts.compress || app.cfg.Output.Compress)
	if err != nil {
		return err
	}

	written, err := persist.NewPersister[persist.Snapshot](snapshotBasename, codec).Save(outDir, snapshot)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	app.logger().InfoContext(ctx, "snapshot saved", "path", written, "format", format)

	return writeOut(out, "Snapshot: %s\n", written)
}
