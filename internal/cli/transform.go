package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runigram/pkg/grid"
	"github.com/matzehuels/runigram/pkg/ppm"
	"github.com/matzehuels/runigram/pkg/transform"
)

// transformOpts holds the command-line flags for the transform command.
type transformOpts struct {
	input   string   // PPM file to read
	ops     []string // op specs, applied in order
	output  string   // P3 output file ("" or "-" for stdout)
	show    bool     // paint on the display instead of writing P3
	display string   // display used with --show
}

// transformCommand creates the transform command for applying single-image
// transforms to a PPM file.
func (c *CLI) transformCommand() *cobra.Command {
	var opts transformOpts

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Apply flips, grayscale or scaling to an image",
		Long: `Apply a chain of transforms to a PPM image.

Ops are applied in the order given:
  flip-h       mirror left to right
  flip-v       mirror top to bottom
  gray         replace every pixel with its luminance
  scale=WxH    nearest-neighbor resample to W columns and H rows

The result is written as P3 to stdout (or --output), or painted on the
terminal with --show.`,
		Example: `  runigram transform --input ironman.ppm --op gray > gray.ppm
  runigram transform --input ironman.ppm --op flip-h --op scale=64x48 --show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.input == "" {
				opts.input = c.Config.Morph.Source
			}
			if opts.display == "" {
				opts.display = c.Config.Morph.Display
			}
			return c.runTransform(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "input image (default: config morph.source)")
	cmd.Flags().StringArrayVar(&opts.ops, "op", nil, "transform to apply: flip-h, flip-v, gray, scale=WxH (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.show, "show", false, "paint the result instead of writing P3")
	cmd.Flags().StringVarP(&opts.display, "display", "d", "", "display used with --show: ansi, sixel (default: auto)")

	return cmd
}

// runTransform loads the input, applies the ops and writes or shows the result.
func (c *CLI) runTransform(ctx context.Context, stdout io.Writer, opts transformOpts) error {
	ops, err := transform.ParseOps(opts.ops)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Transforming "+opts.input+"...")
	spinner.Start()
	fail := func(err error, msg string) error {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError(msg)
		return err
	}

	g, err := runner.Load(ctx, opts.input)
	if err != nil {
		return fail(err, "Load failed")
	}
	out, err := runner.Transform(g, ops)
	if err != nil {
		return fail(err, "Transform failed")
	}

	if opts.show {
		spinner.Stop()
		display, err := c.newDisplay(resolveDisplay(opts.display, stdout), stdout)
		if err != nil {
			return err
		}
		canvas, err := display.Open(out.Rows(), out.Cols())
		if err != nil {
			return err
		}
		if err := canvas.Paint(out); err != nil {
			canvas.Close()
			return err
		}
		return canvas.Close()
	}

	if opts.output == "" || opts.output == "-" {
		spinner.Stop()
		return ppm.Encode(stdout, out)
	}
	if err := writePPM(opts.output, out); err != nil {
		return fail(err, "Write failed")
	}
	spinner.StopWithSuccess("Transformed %s", opts.input)
	printFile(opts.output)
	printStats(out.Rows(), out.Cols(), len(ops))
	printNewline()
	printNextStep("Show it", "runigram transform --input "+opts.output+" --show")
	return nil
}

// writePPM writes g to path as P3.
func writePPM(path string, g *grid.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := ppm.Encode(f, g); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
