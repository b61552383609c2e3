package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hlsync/internal/renderer/linecache"
	"github.com/dshills/hlsync/internal/renderer/spatial"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "HLSYNC_"

// Config holds all overlay settings.
type Config struct {
	Overlay OverlayConfig `toml:"overlay" yaml:"overlay"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Theme   ThemeConfig   `toml:"theme" yaml:"theme"`
}

// OverlayConfig tunes the per-document overlay engine.
type OverlayConfig struct {
	// ChunkSize is the width in bytes of one spatial index bucket.
	ChunkSize int `toml:"chunkSize" yaml:"chunkSize"`
	// OverflowChunks is the span, in chunks, above which a range is kept in
	// the overflow list instead of being bucketed.
	OverflowChunks int `toml:"overflowChunks" yaml:"overflowChunks"`
	// CacheCapacity bounds the number of lines kept in the per-line cache.
	CacheCapacity int `toml:"cacheCapacity" yaml:"cacheCapacity"`
	// Precompute enables whole-document segment precomputation at rest.
	Precompute bool `toml:"precompute" yaml:"precompute"`
}

// LoggingConfig configures diagnostics output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// ThemeConfig locates the theme file.
type ThemeConfig struct {
	// Path is a TOML or YAML theme file. Empty uses the built-in theme.
	Path string `toml:"path" yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Overlay: OverlayConfig{
			ChunkSize:      spatial.DefaultChunkSize,
			OverflowChunks: spatial.DefaultOverflowChunks,
			CacheCapacity:  linecache.DefaultCapacity,
			Precompute:     true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Validate checks every setting and returns all violations joined.
// Each violation matches ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	if c.Overlay.ChunkSize <= 0 {
		errs = append(errs, &FieldError{Field: "overlay.chunkSize", Value: c.Overlay.ChunkSize, Message: "must be positive"})
	}
	if c.Overlay.OverflowChunks <= 0 {
		errs = append(errs, &FieldError{Field: "overlay.overflowChunks", Value: c.Overlay.OverflowChunks, Message: "must be positive"})
	}
	if c.Overlay.CacheCapacity <= 0 {
		errs = append(errs, &FieldError{Field: "overlay.cacheCapacity", Value: c.Overlay.CacheCapacity, Message: "must be positive"})
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &FieldError{Field: "logging.level", Value: c.Logging.Level, Message: "must be debug, info, warn or error"})
	}
	return errors.Join(errs...)
}

// SpatialOptions returns the spatial index options for this configuration.
func (c *Config) SpatialOptions() spatial.Options {
	return spatial.Options{
		ChunkSize:      c.Overlay.ChunkSize,
		OverflowChunks: c.Overlay.OverflowChunks,
	}
}

// CacheConfig returns the line cache configuration.
func (c *Config) CacheConfig() linecache.Config {
	return linecache.Config{Capacity: c.Overlay.CacheCapacity}
}

// Loader reads configuration from a file and the environment.
type Loader struct {
	fs     FileSystem
	getenv func(string) (string, bool)
}

// NewLoader creates a loader over the OS file system and environment.
func NewLoader() *Loader {
	return &Loader{fs: DefaultFS(), getenv: os.LookupEnv}
}

// NewLoaderWithFS creates a loader with a custom file system and environment lookup.
// A nil getenv disables environment overrides.
func NewLoaderWithFS(fs FileSystem, getenv func(string) (string, bool)) *Loader {
	if getenv == nil {
		getenv = func(string) (string, bool) { return "", false }
	}
	return &Loader{fs: fs, getenv: getenv}
}

// Load reads path with the default loader. See Loader.Load.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Load builds a configuration from the defaults, the file at path and the
// environment, then validates it. An empty path or a missing file yields
// the defaults.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
			// File doesn't exist, not an error
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// decode unmarshals data over cfg so that absent keys keep their defaults.
func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			perr := &ParseError{Path: path, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return perr
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// applyEnv overrides cfg from HLSYNC_* variables.
func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.getenv(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := l.getenv(EnvPrefix + "THEME"); ok {
		cfg.Theme.Path = v
	}
	if v, ok := l.getenv(EnvPrefix + "CACHE_CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_CAPACITY=%q is not an integer", ErrInvalidConfig, EnvPrefix, v)
		}
		cfg.Overlay.CacheCapacity = n
	}
	if v, ok := l.getenv(EnvPrefix + "PRECOMPUTE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sPRECOMPUTE=%q is not a boolean", ErrInvalidConfig, EnvPrefix, v)
		}
		cfg.Overlay.Precompute = b
	}
	return nil
}

// Level returns the configured log level, defaulting to warn.
func (c *Config) Level() string {
	if c.Logging.Level == "" {
		return "warn"
	}
	return c.Logging.Level
}

