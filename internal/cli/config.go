package cli

import (
	"errors"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/runigram/pkg/cache"
	"github.com/matzehuels/runigram/pkg/pipeline"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Cache backends accepted in [cache] backend.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// DisplayAuto picks ANSI on a terminal and NDJSON otherwise.
const DisplayAuto = "auto"

const (
	defaultZoom       = 8
	defaultServerAddr = ":8080"
	defaultRedisAddr  = "localhost:6379"
	defaultMaxBody    = 32 << 20
)

// Config is the contents of config.toml. Flags override it; it overrides
// built-in defaults.
type Config struct {
	Morph  MorphConfig  `toml:"morph"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// MorphConfig holds [morph].
type MorphConfig struct {
	Source  string   `toml:"source"`
	Delay   Duration `toml:"delay"`
	Display string   `toml:"display"`
	Zoom    int      `toml:"zoom"` // sixel magnification
}

// CacheConfig holds [cache].
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// ServerConfig holds [server].
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a string ("450ms") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Morph: MorphConfig{
			Source:  pipeline.DefaultSource,
			Delay:   Duration{pipeline.DefaultDelay},
			Display: DisplayAuto,
			Zoom:    defaultZoom,
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: defaultRedisAddr,
			TTL:       Duration{cache.DefaultTTL},
		},
		Server: ServerConfig{
			Addr:         defaultServerAddr,
			MaxBodyBytes: defaultMaxBody,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file at the default
// location is not an error; a missing file that was asked for explicitly is.
func LoadConfig(path string, explicit bool) (*Config, toml.MetaData, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, md, rterrors.Wrap(rterrors.ErrCodeFileNotFound, err, "config %s not found", path)
			}
			return DefaultConfig(), md, nil
		}
		return nil, md, rterrors.Wrap(rterrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, md, err
	}
	return cfg, md, nil
}

// Validate checks enumerated values and ranges.
func (cfg *Config) Validate() error {
	if d := cfg.Morph.Display; d != DisplayAuto && d != "" {
		if err := pipeline.ValidateDisplay(d); err != nil {
			return err
		}
	}
	if cfg.Morph.Zoom < 1 {
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "morph.zoom must be at least 1, got %d", cfg.Morph.Zoom)
	}
	switch cfg.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return rterrors.New(rterrors.ErrCodeInvalidConfig,
			"invalid cache.backend: %q (must be one of: file, redis, none)", cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == CacheRedis && cfg.Cache.RedisAddr == "" {
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if cfg.Cache.TTL.Duration < 0 {
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	return nil
}

// loadConfig loads --config (or the default path) into c.Config.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			c.Logger.Debug("no config directory, using defaults", "err", err)
			c.Config = DefaultConfig()
			return nil
		}
		path = p
	}

	cfg, md, err := LoadConfig(path, explicit)
	if err != nil {
		return err
	}
	for _, key := range md.Undecoded() {
		c.Logger.Warn("unknown config key", "key", key.String(), "file", path)
	}
	if len(md.Keys()) > 0 {
		c.Logger.Debug("loaded config", "file", path)
	}
	c.Config = cfg
	return nil
}
