package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/runigram/pkg/cache"
	"github.com/matzehuels/runigram/pkg/grid"
	"github.com/matzehuels/runigram/pkg/morph"
	"github.com/matzehuels/runigram/pkg/observability"
	"github.com/matzehuels/runigram/pkg/ppm"
	"github.com/matzehuels/runigram/pkg/sink"
	"github.com/matzehuels/runigram/pkg/transform"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// cacheKeyType labels grid entries in cache hooks.
const cacheKeyType = "grid"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger

	// TTL is the lifetime of cached grids.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// LoadWithCacheInfo decodes the PPM file at path, consulting the cache
// first, and reports whether the grid came from the cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, path string, refresh bool) (*grid.Grid, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, rterrors.Wrap(rterrors.ErrCodeFileNotFound, err, "image %s not found", path)
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	g, hit, err := r.DecodeWithCacheInfo(ctx, data, refresh)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	return g, hit, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, path string) (*grid.Grid, error) {
	g, _, err := r.LoadWithCacheInfo(ctx, path, false)
	return g, err
}

// DecodeWithCacheInfo decodes PPM content, keyed in the cache by its hash.
// Cache failures are logged and never fail the decode.
func (r *Runner) DecodeWithCacheInfo(ctx context.Context, data []byte, refresh bool) (*grid.Grid, bool, error) {
	hooks := observability.Cache()
	key := cache.GridKey(data)

	if !refresh {
		cached, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Debug("cache lookup failed", "key", key, "err", err)
		case hit:
			if g, err := grid.Decode(cached); err == nil {
				hooks.OnCacheHit(ctx, cacheKeyType)
				r.Logger.Debug("grid cache hit", "rows", g.Rows(), "cols", g.Cols())
				return g, true, nil
			}
			// If deserialization fails, fall through to decode
			_ = r.Cache.Delete(ctx, key)
		}
		hooks.OnCacheMiss(ctx, cacheKeyType)
	}

	g, err := ppm.DecodeBytes(data)
	if err != nil {
		return nil, false, err
	}

	if encoded, err := g.MarshalBinary(); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, r.TTL); err != nil {
			r.Logger.Debug("cache store failed", "key", key, "err", err)
		} else {
			hooks.OnCacheSet(ctx, cacheKeyType, len(encoded))
		}
	}
	return g, false, nil
}

// Decode is a convenience wrapper that calls DecodeWithCacheInfo and discards the cache hit info.
func (r *Runner) Decode(ctx context.Context, data []byte) (*grid.Grid, error) {
	g, _, err := r.DecodeWithCacheInfo(ctx, data, false)
	return g, err
}

// Transform applies ops to g in order.
func (r *Runner) Transform(g *grid.Grid, ops []transform.Op) (*grid.Grid, error) {
	out, err := transform.Chain(g, ops...)
	if err != nil {
		return nil, err
	}
	if len(ops) > 0 {
		r.Logger.Debug("applied transforms", "ops", len(ops), "rows", out.Rows(), "cols", out.Cols())
	}
	return out, nil
}

// Prepare loads and transforms the source and target images for a morph.
// When no target file is set the target is derived from the source grid.
func (r *Runner) Prepare(ctx context.Context, opts *Options, res *Result) (source, target *grid.Grid, err error) {
	loadStart := time.Now()
	base, hit, err := r.LoadWithCacheInfo(ctx, opts.Source, opts.Refresh)
	if err != nil {
		return nil, nil, fmt.Errorf("load source: %w", err)
	}
	res.CacheInfo.SourceHit = hit

	targetBase := base
	if opts.Target != "" {
		targetBase, hit, err = r.LoadWithCacheInfo(ctx, opts.Target, opts.Refresh)
		if err != nil {
			return nil, nil, fmt.Errorf("load target: %w", err)
		}
		res.CacheInfo.TargetHit = hit
	}
	res.Stats.LoadTime = time.Since(loadStart)

	if source, err = r.Transform(base, opts.SourceOps); err != nil {
		return nil, nil, fmt.Errorf("transform source: %w", err)
	}
	if target, err = r.Transform(targetBase, opts.TargetOps); err != nil {
		return nil, nil, fmt.Errorf("transform target: %w", err)
	}
	return source, target, nil
}

// Morph runs the full load → transform → morph pipeline on display.
// Extra morph options (a clock, a frame callback) are applied after the ones
// derived from opts.
func (r *Runner) Morph(ctx context.Context, opts Options, display sink.Display, extra ...morph.Option) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{}
	source, target, err := r.Prepare(ctx, &opts, res)
	if err != nil {
		return res, err
	}
	res.Rows, res.Cols = source.Rows(), source.Cols()

	opts.Logger.Info("morphing", "run", opts.Describe(), "size", fmt.Sprintf("%dx%d", source.Cols(), source.Rows()))

	morphOpts := append([]morph.Option{
		morph.WithDelay(opts.Delay),
		morph.WithLogger(opts.Logger),
	}, extra...)

	morphStart := time.Now()
	mr, err := morph.Play(ctx, display, source, target, opts.Steps, morphOpts...)
	res.Stats.MorphTime = time.Since(morphStart)
	if mr != nil {
		res.SessionID = mr.SessionID
		res.Frames = mr.Frames
	}
	if err != nil {
		return res, err
	}

	opts.Logger.Debug("morph complete",
		"frames", res.Frames,
		"load", res.Stats.LoadTime,
		"duration", res.Stats.MorphTime)
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set
// by the caller.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
