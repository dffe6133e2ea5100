// Package config holds the runtime settings that come from the environment,
// as opposed to the per-run parameters given on the command line.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const EnvPrefix = "TILEMOSAIC_"

type Config struct {
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"text"`
	FetchConcurrency int           `env:"FETCH_CONCURRENCY" envDefault:"10"`
	FetchMaxAttempts int           `env:"FETCH_MAX_ATTEMPTS" envDefault:"3"`
	FetchRetryDelay  time.Duration `env:"FETCH_RETRY_DELAY" envDefault:"1s"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"20s"`
	UserAgent        string        `env:"USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"`
	TileSize         int           `env:"TILE_SIZE" envDefault:"256"`
	MaxTiles         int           `env:"MAX_TILES" envDefault:"4096"`
	RainViewerAPI    string        `env:"RAINVIEWER_API" envDefault:"https://api.rainviewer.com/public/weather-maps.json"`
}

// Load reads the configuration from TILEMOSAIC_ prefixed environment
// variables and validates it
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom is Load using environment instead of the process environment when
// it is not nil
func LoadFrom(environment map[string]string) (*Config, error) {
	var cfg Config
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting is usable, reporting all problems at once
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.FetchConcurrency <= 0 {
		errs = append(errs, fmt.Sprintf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency))
	}
	if c.FetchMaxAttempts <= 0 {
		errs = append(errs, fmt.Sprintf("FETCH_MAX_ATTEMPTS must be positive, got %d", c.FetchMaxAttempts))
	}
	if c.FetchRetryDelay < 0 {
		errs = append(errs, fmt.Sprintf("FETCH_RETRY_DELAY must not be negative, got %v", c.FetchRetryDelay))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout))
	}
	if c.TileSize <= 0 || c.TileSize > 4096 {
		errs = append(errs, fmt.Sprintf("TILE_SIZE must be 1-4096, got %d", c.TileSize))
	}
	if c.MaxTiles <= 0 {
		errs = append(errs, fmt.Sprintf("MAX_TILES must be positive, got %d", c.MaxTiles))
	}
	if c.RainViewerAPI == "" {
		errs = append(errs, "RAINVIEWER_API is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
