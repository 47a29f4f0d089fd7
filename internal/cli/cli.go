package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/matzehuels/runigram/pkg/buildinfo"
	"github.com/matzehuels/runigram/pkg/cache"
	"github.com/matzehuels/runigram/pkg/pipeline"
	"github.com/matzehuels/runigram/pkg/sink"
	"github.com/matzehuels/runigram/pkg/transform"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "runigram"

	// redisKeyPrefix namespaces runigram's entries in a shared Redis.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// The root command itself keeps the classic two-argument form: a label that
// is accepted and ignored, and the number of morph steps.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "runigram <label> <n>",
		Short: "Runigram morphs PPM images in the terminal",
		Long: `Runigram decodes plain PPM (P3) images, transforms them and animates a
morph between two pictures frame by frame.

Called with two arguments it morphs the configured source image into its
own grayscale version over n steps. The first argument is a label and is
not used; it may be any word, including a subcommand name.`,
		Example:      "  runigram demo 10",
		Args:         cobra.ExactArgs(2),
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseSteps(args[1])
			if err != nil {
				return err
			}
			opts := c.morphOptions()
			opts.TargetOps = []transform.Op{{Name: transform.OpGrayscale}}
			opts.Steps = n
			return c.runMorph(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/runigram/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the decoded-image cache")

	// Register all subcommands
	root.AddCommand(c.morphCommand())
	root.AddCommand(c.transformCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// parseSteps parses the step count argument.
func parseSteps(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, rterrors.Wrap(rterrors.ErrCodeInvalidParameter, err, "n must be an integer, got %q", s)
	}
	if err := rterrors.ValidateSteps(n); err != nil {
		return 0, err
	}
	return n, nil
}

// LabelArgs keeps the classic "<label> <n>" form working when the label
// happens to name a subcommand ("runigram morph 2"). If exactly two
// positional arguments are given, the second is an integer and the first is
// a subcommand name, the pair is moved behind a "--" so cobra hands both to
// the root command. Any other argument list is returned unchanged.
func LabelArgs(root *cobra.Command, args []string) []string {
	var pos []int
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return args
		case len(a) > 1 && strings.HasPrefix(a, "-"):
			f := rootFlag(root, a)
			if f == nil {
				return args // a subcommand flag: leave dispatch to cobra
			}
			if f.NoOptDefVal == "" && !strings.Contains(a, "=") {
				i++
			}
		default:
			pos = append(pos, i)
		}
	}
	if len(pos) != 2 || !isSubcommand(root, args[pos[0]]) {
		return args
	}
	if _, err := strconv.Atoi(args[pos[1]]); err != nil {
		return args
	}

	out := make([]string, 0, len(args)+1)
	for i, a := range args {
		if i != pos[0] && i != pos[1] {
			out = append(out, a)
		}
	}
	return append(out, "--", args[pos[0]], args[pos[1]])
}

// rootFlag returns the root flag named by arg ("--name", "--name=v" or
// "-n"), or nil.
func rootFlag(root *cobra.Command, arg string) *pflag.Flag {
	arg, _, _ = strings.Cut(arg, "=")
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		if f := root.Flags().Lookup(name); f != nil {
			return f
		}
		return root.PersistentFlags().Lookup(name)
	}
	short := arg[1:]
	if len(short) != 1 {
		return nil
	}
	if f := root.Flags().ShorthandLookup(short); f != nil {
		return f
	}
	return root.PersistentFlags().ShorthandLookup(short)
}

func isSubcommand(root *cobra.Command, name string) bool {
	if name == "help" {
		return true
	}
	for _, cmd := range root.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return false
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cache, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newCache builds the configured cache backend. --no-cache always wins.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return cache.Prefixed(rc, redisKeyPrefix), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Display Factory
// =============================================================================

// newDisplay returns the named display writing to w.
func (c *CLI) newDisplay(name string, w io.Writer) (sink.Display, error) {
	switch name {
	case pipeline.DisplayANSI:
		return sink.NewANSI(w), nil
	case pipeline.DisplaySixel:
		return sink.NewSixel(w, c.Config.Morph.Zoom), nil
	case pipeline.DisplayNDJSON:
		return sink.NewNDJSON(w), nil
	case pipeline.DisplayNone:
		return sink.Discard, nil
	}
	return nil, pipeline.ValidateDisplay(name)
}

// resolveDisplay picks a display when none was configured: ANSI on a
// terminal, NDJSON when output is redirected.
func resolveDisplay(name string, w io.Writer) string {
	if name != "" && name != DisplayAuto {
		return name
	}
	if isTerminal(w) {
		return pipeline.DisplayANSI
	}
	return pipeline.DisplayNDJSON
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// =============================================================================
// Morph Execution
// =============================================================================

// morphOptions returns pipeline options seeded from the config file.
func (c *CLI) morphOptions() pipeline.Options {
	return pipeline.Options{
		Source:  c.Config.Morph.Source,
		Delay:   noPauseIfZero(c.Config.Morph.Delay.Duration),
		Display: c.Config.Morph.Display,
		Logger:  c.Logger,
	}
}

// runMorph runs a morph on the display named in opts, writing to w.
func (c *CLI) runMorph(ctx context.Context, w io.Writer, opts pipeline.Options) error {
	opts.Display = resolveDisplay(opts.Display, w)
	display, err := c.newDisplay(opts.Display, w)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Morph(ctx, opts, display)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Morphed %d frames at %dx%d", res.Frames, res.Cols, res.Rows))
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/runigram/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/runigram/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file path using XDG standard
// (~/.config/runigram/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
