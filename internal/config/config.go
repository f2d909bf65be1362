// Package config loads the elfnotes command configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/elf-notes/errors"
)

// Output formats accepted by Format.
var Formats = []string{"text", "json", "yaml"}

// Config holds the settings of the elfnotes command.
type Config struct {
	CacheDir string `yaml:"cache_dir"`
	Format   string `yaml:"format"`
	Workers  int    `yaml:"workers"`
	Strict   bool   `yaml:"strict"`
}

// DefaultConfig returns a default configuration. Caching is disabled until a
// cache directory is set.
func DefaultConfig() *Config {
	return &Config{
		Format:  "text",
		Workers: 4,
	}
}

// Load reads the configuration at path. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseConfig, fmt.Sprintf("read %s", path), err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, fmt.Sprintf("parse %s", path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.IO(errors.PhaseConfig, "create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.IO(errors.PhaseConfig, fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("format").
			Value(c.Format).
			Detail("must be one of %v", Formats).
			Build()
	}
	if c.Workers < 1 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("workers").
			Value(c.Workers).
			Detail("must be at least 1").
			Build()
	}
	return nil
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "elfnotes.yaml"
	}
	return filepath.Join(dir, "elfnotes", "config.yaml")
}
