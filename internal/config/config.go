// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pantry configuration.
type Config struct {
	Facade Facade `yaml:"facade"`
	Seed   Seed   `yaml:"seed"`
	Log    Log    `yaml:"log"`
	UI     UI     `yaml:"ui"`
}

// Facade holds the simulated-latency settings of the API facade.
type Facade struct {
	Delay time.Duration `yaml:"delay"`
}

// Seed holds where seed files are read from.
type Seed struct {
	Dir string `yaml:"dir"` // local overlay; empty uses embedded seeds only
}

// Log holds logger settings.
type Log struct {
	File  string `yaml:"file"`  // empty disables logging
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// UI holds dashboard settings.
type UI struct {
	PageSize int `yaml:"page_size"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log: Log{Level: "info"},
		UI:  UI{PageSize: 10},
	}
}

// Paths returns the standard config locations in increasing priority:
// the user config under home, then the project config under dir.
// An empty home skips the user layer.
func Paths(home, dir string) []string {
	var paths []string
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "pantry", "config.yaml"))
	}
	return append(paths, filepath.Join(dir, ".pantry", "config.yaml"))
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped; invalid YAML
// and unknown fields are errors.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Facade.Delay < 0 {
		return fmt.Errorf("config: facade.delay must be non-negative, got %v", c.Facade.Delay)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.UI.PageSize < 1 {
		return fmt.Errorf("config: ui.page_size must be positive, got %d", c.UI.PageSize)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: PANTRY_DELAY, PANTRY_SEED_DIR, PANTRY_LOG_FILE,
// PANTRY_LOG_LEVEL, PANTRY_PAGE_SIZE.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PANTRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid PANTRY_DELAY %q: %w", v, err)
		}
		c.Facade.Delay = d
	}
	if v := os.Getenv("PANTRY_SEED_DIR"); v != "" {
		c.Seed.Dir = v
	}
	if v := os.Getenv("PANTRY_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("PANTRY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PANTRY_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PANTRY_PAGE_SIZE %q: %w", v, err)
		}
		c.UI.PageSize = n
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Facade *rawFacade `yaml:"facade"`
	Seed   *rawSeed   `yaml:"seed"`
	Log    *rawLog    `yaml:"log"`
	UI     *rawUI     `yaml:"ui"`
}

type rawFacade struct {
	Delay *time.Duration `yaml:"delay"`
}

type rawSeed struct {
	Dir *string `yaml:"dir"`
}

type rawLog struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

type rawUI struct {
	PageSize *int `yaml:"page_size"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist or holds no document.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Facade != nil && layer.Facade.Delay != nil {
		c.Facade.Delay = *layer.Facade.Delay
	}
	if layer.Seed != nil && layer.Seed.Dir != nil {
		c.Seed.Dir = *layer.Seed.Dir
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
	}
	if layer.UI != nil && layer.UI.PageSize != nil {
		c.UI.PageSize = *layer.UI.PageSize
	}
}
