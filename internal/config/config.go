// Package config loads and saves the burst configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/burst/internal/search"
	"github.com/nikbrunner/burst/internal/sorter"
	"github.com/nikbrunner/burst/internal/storage"
)

// EnvPath overrides the config file location.
const EnvPath = "BURST_CONFIG"

// Backend names.
const (
	BackendJSON   = storage.BackendJSON
	BackendSQLite = storage.BackendSQLite
)

// Config holds application configuration.
type Config struct {
	Backend        string `yaml:"backend"`
	DataPath       string `yaml:"dataPath"`
	SortMode       string `yaml:"sortMode"`
	Strategy       string `yaml:"strategy"`
	ScoreThreshold int    `yaml:"scoreThreshold"`
	TitleDistance  int    `yaml:"titleDistance"`
	URLDistance    int    `yaml:"urlDistance"`
	ConfirmDelete  *bool  `yaml:"confirmDelete"`
	LogLevel       string `yaml:"logLevel"`
	Listen         string `yaml:"listen"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	confirm := true
	return Config{
		Backend:        BackendJSON,
		SortMode:       sorter.FoldersFirst.String(),
		Strategy:       string(search.StrategyScore),
		ScoreThreshold: search.DefaultScoreThreshold,
		TitleDistance:  search.DefaultTitleDistance,
		URLDistance:    search.DefaultURLDistance,
		ConfirmDelete:  &confirm,
		LogLevel:       "info",
		Listen:         "127.0.0.1:7878",
	}
}

// Load reads config from the YAML file.
// Creates the file with defaults if it doesn't exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = Save(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	config.fillDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &config, nil
}

// fillDefaults applies defaults for missing fields.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.Backend == "" {
		c.Backend = defaults.Backend
	}
	if c.SortMode == "" {
		c.SortMode = defaults.SortMode
	}
	if c.Strategy == "" {
		c.Strategy = defaults.Strategy
	}
	if c.ScoreThreshold == 0 {
		c.ScoreThreshold = defaults.ScoreThreshold
	}
	if c.TitleDistance == 0 {
		c.TitleDistance = defaults.TitleDistance
	}
	if c.URLDistance == 0 {
		c.URLDistance = defaults.URLDistance
	}
	if c.ConfirmDelete == nil {
		c.ConfirmDelete = defaults.ConfirmDelete
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Listen == "" {
		c.Listen = defaults.Listen
	}
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := sorter.ParseMode(c.SortMode); err != nil {
		return err
	}
	if _, err := search.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	return nil
}

// Mode returns the parsed sort mode.
func (c *Config) Mode() sorter.Mode {
	m, err := sorter.ParseMode(c.SortMode)
	if err != nil {
		return sorter.FoldersFirst
	}
	return m
}

// SearchStrategy returns the parsed search strategy.
func (c *Config) SearchStrategy() search.Strategy {
	s, err := search.ParseStrategy(c.Strategy)
	if err != nil {
		return search.StrategyScore
	}
	return s
}

// SearchOptions returns the matcher thresholds.
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		ScoreThreshold: c.ScoreThreshold,
		TitleDistance:  c.TitleDistance,
		URLDistance:    c.URLDistance,
	}
}

// ShouldConfirmDelete reports whether removals ask for confirmation.
func (c *Config) ShouldConfirmDelete() bool {
	return c.ConfirmDelete == nil || *c.ConfirmDelete
}

// ResolvedDataPath returns DataPath, or the default file for the backend
// inside dir.
func (c *Config) ResolvedDataPath(dir string) string {
	if c.DataPath != "" {
		return c.DataPath
	}
	return storage.DefaultPath(dir, c.Backend)
}

// Save writes config to the YAML file.
// Creates the directory if it doesn't exist.
func Save(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultDir returns ~/.config/burst.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "burst"), nil
}

// DefaultFilePath returns the config path: $BURST_CONFIG, or
// ~/.config/burst/config.yaml.
func DefaultFilePath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
