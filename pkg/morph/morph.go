// Package morph renders an animated transition between two images.
//
// A morph of n steps resamples the target to the source's shape once, then
// produces n+1 frames: frame i is Blend(source, scaledTarget, (n-i)/n), so
// the first frame is the source and the last is the scaled target. Each
// frame is painted to a [sink.Canvas] and followed by a pause on a [Clock].
//
// Frames are computed strictly one after another. Cancellation through the
// context is observed only between frames (before a frame is computed, or
// while pausing after one) and never interrupts a transform.
package morph

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/runigram/pkg/grid"
	"github.com/matzehuels/runigram/pkg/observability"
	"github.com/matzehuels/runigram/pkg/sink"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// DefaultDelay is the pause after each frame.
const DefaultDelay = 450 * time.Millisecond

// Option configures Run and Play.
type Option func(*config)

type config struct {
	delay     time.Duration
	clock     Clock
	logger    *log.Logger
	sessionID string
	onFrame   func(step int, alpha float64, frame *grid.Grid)
}

// WithDelay sets the pause after each frame. Negative values mean no pause.
func WithDelay(d time.Duration) Option { return func(c *config) { c.delay = d } }

// WithClock replaces the real-time clock, typically with NopClock in tests.
func WithClock(clock Clock) Option { return func(c *config) { c.clock = clock } }

// WithLogger sets the logger used for progress messages.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

// WithSessionID sets the session identifier reported in logs, hooks and
// the result. A random UUID is used otherwise.
func WithSessionID(id string) Option { return func(c *config) { c.sessionID = id } }

// WithFrameCallback registers fn to be called after each frame is painted.
func WithFrameCallback(fn func(step int, alpha float64, frame *grid.Grid)) Option {
	return func(c *config) { c.onFrame = fn }
}

func newConfig(opts []Option) *config {
	c := &config{delay: DefaultDelay, clock: SleepClock{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	return c
}

// Result summarizes a morph run.
type Result struct {
	SessionID string
	Steps     int
	Frames    int
	Alphas    []float64
	Elapsed   time.Duration
}

// Run morphs source into target over n steps, painting every frame on
// canvas. It returns after all n+1 frames have been painted and paced, or
// at the first error. A failure aborts the whole morph; frames painted
// before it are reported in Result.Frames.
func Run(ctx context.Context, source, target *grid.Grid, n int, canvas sink.Canvas, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	res := &Result{SessionID: cfg.sessionID, Steps: n}
	start := time.Now()
	logger := cfg.logger.With("session", cfg.sessionID)

	s, err := NewSession(source, target, n)
	if err != nil {
		return res, err
	}
	if canvas == nil {
		return res, rterrors.New(rterrors.ErrCodeInvalidParameter, "morph needs a canvas")
	}
	hooks := observability.Morph()
	hooks.OnMorphStart(ctx, cfg.sessionID, source.Rows(), source.Cols(), n)
	logger.Debug("morph started", "rows", source.Rows(), "cols", source.Cols(), "steps", n)

	err = runFrames(ctx, s, canvas, cfg, logger, res)
	res.Elapsed = time.Since(start)
	hooks.OnMorphComplete(ctx, cfg.sessionID, res.Frames, res.Elapsed, err)
	if err != nil {
		logger.Debug("morph aborted", "frames", res.Frames, "err", err)
		return res, err
	}
	logger.Debug("morph finished", "frames", res.Frames, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func runFrames(ctx context.Context, s *Session, canvas sink.Canvas, cfg *config, logger *log.Logger, res *Result) error {
	hooks := observability.Morph()
	for s.State() != Done {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := s.Step()
		frameStart := time.Now()
		frame, alpha, ok, err := s.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := canvas.Paint(frame); err != nil {
			return err
		}
		res.Frames++
		res.Alphas = append(res.Alphas, alpha)
		hooks.OnFrame(ctx, cfg.sessionID, step, alpha, time.Since(frameStart))
		logger.Debug("frame painted", "step", step, "alpha", alpha)
		if cfg.onFrame != nil {
			cfg.onFrame(step, alpha, frame)
		}

		if err := cfg.clock.Pause(ctx, cfg.delay); err != nil && s.State() != Done {
			return err
		}
	}
	return nil
}

// Play opens display at the source's dimensions, runs the morph on the new
// canvas and closes it.
func Play(ctx context.Context, display sink.Display, source, target *grid.Grid, n int, opts ...Option) (res *Result, err error) {
	if source == nil || target == nil {
		return nil, rterrors.New(rterrors.ErrCodeInvalidParameter, "morph needs both a source and a target")
	}
	if err := rterrors.ValidateSteps(n); err != nil {
		return nil, err
	}
	canvas, err := display.Open(source.Rows(), source.Cols())
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := canvas.Close(); err == nil {
			err = cerr
		}
	}()
	return Run(ctx, source, target, n, canvas, opts...)
}
