// Package config handles configuration loading from TOML files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure, matching the TOML keys
// from the external interface contract: store_path, watch_path,
// debounce_time, exclude.files, exclude.paths.
type Config struct {
	StorePath    string        `toml:"store_path"`
	WatchPath    string        `toml:"watch_path"`
	DebounceTime int           `toml:"debounce_time"` // milliseconds
	Exclude      ExcludeConfig `toml:"exclude"`
	LogPath      string        `toml:"log_path"`
}

// ExcludeConfig holds the literal exclusion sets plus the optional
// supplemental .gitignore toggle.
type ExcludeConfig struct {
	Files     []string `toml:"files"`
	Paths     []string `toml:"paths"`
	Gitignore *bool    `toml:"gitignore"`
}

// GitignoreOrDefault reports whether the .gitignore supplement should
// be consulted. Defaults to true when unset.
func (e ExcludeConfig) GitignoreOrDefault() bool {
	if e.Gitignore == nil {
		return true
	}
	return *e.Gitignore
}

// DebounceDuration returns DebounceTime as a time.Duration.
func (c *Config) DebounceDuration() time.Duration {
	return time.Duration(c.DebounceTime) * time.Millisecond
}

// LogPathOrDefault returns the configured log path, or
// "<dir of store_path>/autostash.log" when unset.
func (c *Config) LogPathOrDefault() string {
	if c.LogPath != "" {
		return c.LogPath
	}
	return filepath.Join(filepath.Dir(c.StorePath), "autostash.log")
}

// Load reads configuration from a TOML file and applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.StorePath == "" {
		errs = append(errs, errors.New("store_path is required"))
	}
	if c.WatchPath == "" {
		errs = append(errs, errors.New("watch_path is required"))
	} else if info, err := os.Stat(c.WatchPath); err != nil {
		errs = append(errs, fmt.Errorf("watch_path %q: %w", c.WatchPath, err))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Errorf("watch_path %q is not a directory", c.WatchPath))
	}
	if c.DebounceTime < 0 {
		errs = append(errs, fmt.Errorf("debounce_time must be >= 0, got %d", c.DebounceTime))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration, matching the teacher's precedent of a small, explicit
// table of env-var -> setter pairs.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"AUTOSTASH_STORE_PATH", func(v string) {
			if v != "" {
				cfg.StorePath = v
			}
		}},
		{"AUTOSTASH_WATCH_PATH", func(v string) {
			if v != "" {
				cfg.WatchPath = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}
