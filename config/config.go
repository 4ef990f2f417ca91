// Package config loads Searcher and loader settings from YAML.
//
// Values of the form ${VAR} or ${VAR:-default} are replaced with environment
// variables before parsing:
//
//	search:
//	  timeout: 250ms
//	  timeout_mode: truncate
//	  default_limit: 20
//	scroll:
//	  chunk_size: 200
//	logging:
//	  level: ${LOG_LEVEL:-info}
//	  format: json
//	loader:
//	  prefix: docs/
//	  concurrency: 8
//	  rate_per_sec: 500
//	  cache_entries: 4096
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/lexigo"
	"github.com/hupe1980/lexigo/codec"
	"github.com/hupe1980/lexigo/loader"
	"github.com/hupe1980/lexigo/timeout"
)

// Config is the file configuration of a Searcher and its loader.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Scroll  ScrollConfig  `yaml:"scroll"`
	Logging LoggingConfig `yaml:"logging"`
	Loader  LoaderConfig  `yaml:"loader"`
}

// SearchConfig holds request defaults.
type SearchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`      // 0 = no limit
	TimeoutMode  string        `yaml:"timeout_mode"` // none, truncate, fail (default: truncate)
	DefaultLimit int           `yaml:"default_limit"`
}

// ScrollConfig holds scroll settings.
type ScrollConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // text, json (default: text)
}

// LoaderConfig holds blob loader settings.
type LoaderConfig struct {
	Prefix       string  `yaml:"prefix"`
	Codec        string  `yaml:"codec"` // json, go-json (default: go-json)
	Strict       bool    `yaml:"strict"`
	Concurrency  int     `yaml:"concurrency"`
	RatePerSec   float64 `yaml:"rate_per_sec"`  // 0 = unpaced
	CacheEntries int     `yaml:"cache_entries"` // -1 disables session caching
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// MustLoad loads configuration or panics.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Parse parses YAML data, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Search.TimeoutMode == "" {
		c.Search.TimeoutMode = timeout.ModeTruncate.String()
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = lexigo.DefaultLimit
	}
	if c.Scroll.ChunkSize <= 0 {
		c.Scroll.ChunkSize = lexigo.DefaultScrollChunkSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Loader.Codec == "" {
		c.Loader.Codec = codec.Default.Name()
	}
	if c.Loader.Concurrency <= 0 {
		c.Loader.Concurrency = loader.DefaultConcurrency
	}
	if c.Loader.CacheEntries == 0 {
		c.Loader.CacheEntries = loader.DefaultCacheEntries
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must not be negative, got %s", c.Search.Timeout)
	}
	if _, err := timeout.ParseMode(c.Search.TimeoutMode); err != nil {
		return fmt.Errorf("search.timeout_mode: %w", err)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	if _, ok := codec.ByName(c.Loader.Codec); !ok {
		return fmt.Errorf("loader.codec: unknown codec %q", c.Loader.Codec)
	}
	if c.Loader.RatePerSec < 0 {
		return fmt.Errorf("loader.rate_per_sec must not be negative, got %g", c.Loader.RatePerSec)
	}
	if c.Loader.CacheEntries < -1 {
		return fmt.Errorf("loader.cache_entries must be -1 or more, got %d", c.Loader.CacheEntries)
	}
	return nil
}

// Logger builds the configured logger.
func (c *Config) Logger() *lexigo.Logger {
	level, _ := parseLevel(c.Logging.Level)
	if c.Logging.Format == "json" {
		return lexigo.NewJSONLogger(level)
	}
	return lexigo.NewTextLogger(level)
}

// Options returns the Searcher options of the configuration.
func (c *Config) Options() []lexigo.Option {
	mode, _ := timeout.ParseMode(c.Search.TimeoutMode)
	return []lexigo.Option{
		lexigo.WithLogger(c.Logger()),
		lexigo.WithTimeout(c.Search.Timeout, mode),
		lexigo.WithDefaultLimit(c.Search.DefaultLimit),
		lexigo.WithScrollChunkSize(c.Scroll.ChunkSize),
	}
}

// LoaderOptions returns the loader options of the configuration.
func (c *Config) LoaderOptions() []loader.Option {
	cd, _ := codec.ByName(c.Loader.Codec)
	opts := []loader.Option{
		loader.WithPrefix(c.Loader.Prefix),
		loader.WithCodec(cd),
		loader.WithStrict(c.Loader.Strict),
		loader.WithConcurrency(c.Loader.Concurrency),
		loader.WithCacheEntries(max(c.Loader.CacheEntries, 0)),
		loader.WithLogger(c.Logger().Logger),
	}
	if c.Loader.RatePerSec > 0 {
		opts = append(opts, loader.WithRate(c.Loader.RatePerSec, 0))
	}
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
	return level, nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
