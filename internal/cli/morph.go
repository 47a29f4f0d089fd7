package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runigram/pkg/transform"
)

// morphCommand creates the morph command for animating one image into another.
func (c *CLI) morphCommand() *cobra.Command {
	var (
		source, target       string
		sourceOps, targetOps []string
		steps                int
		delay                time.Duration
		display              string
		refresh              bool
	)

	cmd := &cobra.Command{
		Use:   "morph",
		Short: "Morph a source image into a target image",
		Long: `Morph a source image into a target image over n steps.

The target is resampled to the source's size, then n+1 frames are painted:
frame i blends source and target with source weight (n-i)/n, so the first
frame is the source and the last one is the target. Each frame is followed
by a pause (--delay, 450ms by default; 0 disables it).

Without --target the source is morphed into a transformed copy of itself,
for example --target-op gray.`,
		Example: `  runigram morph --source ironman.ppm --target-op gray --steps 10
  runigram morph --source a.ppm --target b.ppm --steps 20 --display sixel
  runigram morph --source a.ppm --target-op flip-h --steps 4 --display ndjson > frames.ndjson`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.morphOptions()
			if source != "" {
				opts.Source = source
			}
			opts.Target = target
			opts.Steps = steps
			opts.Refresh = refresh
			if cmd.Flags().Changed("delay") {
				opts.Delay = noPauseIfZero(delay)
			}
			if display != "" {
				opts.Display = display
			}

			var err error
			if opts.SourceOps, err = transform.ParseOps(sourceOps); err != nil {
				return err
			}
			if opts.TargetOps, err = transform.ParseOps(targetOps); err != nil {
				return err
			}
			return c.runMorph(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source image (default: config morph.source)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target image (default: the source)")
	cmd.Flags().StringArrayVar(&sourceOps, "source-op", nil, "transform applied to the source: flip-h, flip-v, gray, scale=WxH (repeatable)")
	cmd.Flags().StringArrayVar(&targetOps, "target-op", nil, "transform applied to the target (repeatable)")
	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "number of morph steps (frames = steps+1)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause after each frame (default: config morph.delay)")
	cmd.Flags().StringVarP(&display, "display", "d", "", "display: ansi, sixel, ndjson, none (default: auto)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached decodes")
	_ = cmd.MarkFlagRequired("steps")

	return cmd
}

// noPauseIfZero maps an explicit zero delay to the pipeline's "no pause"
// value; a zero in pipeline.Options means "use the default".
func noPauseIfZero(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}
