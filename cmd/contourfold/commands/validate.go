package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/contourfold/pkg/treeio"
)

// ErrValidationFailed is returned when at least one document is invalid.
var ErrValidationFailed = errors.New("validation failed")

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check documents against the schema and their references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, "validate", func(ctx context.Context) error {
				failed := 0

				for _, path := range args {
					ok, err := validateFile(cmd.OutOrStdout(), path)
					if err != nil {
						return err
					}

					if !ok {
						failed++
					}
				}

				app.logger().DebugContext(ctx, "validated", "documents", len(args), "failed", failed)

				if failed > 0 {
					return fmt.Errorf("%w: %d of %d documents", ErrValidationFailed, failed, len(args))
				}

				return nil
			})
		},
	}
}

// validateFile reports on one document. Problems with the document are
// written to w; only I/O failures are returned.
func validateFile(w io.Writer, path string) (bool, error) {
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	detail := color.New(color.FgYellow)

	format, err := treeio.FormatFromPath(path)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := treeio.DecodeBytes(data, format)
	if err == nil {
		_, werr := pass.Fprintf(w, "ok    %s: %s with %d nodes and %d edges\n", path, doc.Kind, len(doc.Nodes), len(doc.Edges))

		return true, werr
	}

	if _, werr := fail.Fprintf(w, "FAIL  %s\n", path); werr != nil {
		return false, werr
	}

	problems := []string{err.Error()}

	var validationErr *treeio.ValidationError
	if errors.As(err, &validationErr) {
		problems = validationErr.Problems
	}

	for _, problem := range problems {
		if _, werr := detail.Fprintf(w, "      - %s\n", problem); werr != nil {
			return false, werr
		}
	}

	return false, nil
}
