// Package config holds runtime configuration for the link protection engine.
// Values come from defaults, an optional YAML file, then environment
// variables, last writer wins.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// envPrefix namespaces environment overrides. Nesting uses a double
// underscore: LINKSHIELD_DENYLIST__SYNC_URL sets denylist.sync_url.
const envPrefix = "LINKSHIELD_"

// Config is the root configuration document.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Denylist  DenylistConfig  `koanf:"denylist"`
	Redirect  RedirectConfig  `koanf:"redirect"`
	Intel     IntelConfig     `koanf:"intel"`
	DomainAge DomainAgeConfig `koanf:"domain_age"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Pin       PinConfig       `koanf:"pin"`
	Storage   StorageConfig   `koanf:"storage"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Debug  bool `koanf:"debug"`
	Pretty bool `koanf:"pretty"`
}

// DenylistConfig controls the background blocklist sync.
type DenylistConfig struct {
	SyncURL      string        `koanf:"sync_url"`
	SyncInterval time.Duration `koanf:"sync_interval"`
	Timeout      time.Duration `koanf:"timeout"`
}

// RedirectConfig bounds redirect chain resolution.
type RedirectConfig struct {
	MaxHops int           `koanf:"max_hops"`
	Timeout time.Duration `koanf:"timeout"`
}

// IntelConfig points at the third-party threat feed. An empty base URL
// disables the lookup.
type IntelConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// DomainAgeConfig bounds RDAP registration lookups.
type DomainAgeConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// PipelineConfig controls the interception decision engine.
type PipelineConfig struct {
	Enabled       bool          `koanf:"enabled"`
	HistoryLimit  int           `koanf:"history_limit"`
	LookupTimeout time.Duration `koanf:"lookup_timeout"`
}

// PinConfig controls the PIN attempt limiter.
type PinConfig struct {
	MaxFailures int           `koanf:"max_failures"`
	BaseLockout time.Duration `koanf:"base_lockout"`
	StaleWindow time.Duration `koanf:"stale_window"`
}

// StorageConfig locates the local database.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Denylist: DenylistConfig{
			SyncInterval: 6 * time.Hour,
			Timeout:      30 * time.Second,
		},
		Redirect: RedirectConfig{
			MaxHops: 8,
			Timeout: 10 * time.Second,
		},
		Intel: IntelConfig{
			Timeout: 5 * time.Second,
		},
		DomainAge: DomainAgeConfig{
			Timeout: 5 * time.Second,
		},
		Pipeline: PipelineConfig{
			Enabled:       true,
			HistoryLimit:  100,
			LookupTimeout: 5 * time.Second,
		},
		Pin: PinConfig{
			MaxFailures: 5,
			BaseLockout: 30 * time.Second,
			StaleWindow: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Path: "linkshield.db",
		},
	}
}

// Load merges defaults, the YAML file at path (when non-empty), and
// LINKSHIELD_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, err
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigUnmarshal, err)
	}

	return cfg, nil
}

// NewLogger builds the process logger from the logging section.
func (c LoggingConfig) NewLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if c.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)

	return strings.ReplaceAll(s, "__", ".")
}
