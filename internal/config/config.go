// Package config loads the engine's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremysball/alfred-memory/internal/embedding"
)

// Config is the complete engine configuration.
type Config struct {
	DataDir   string             `yaml:"data_dir"`
	Retrieval RetrievalConfig    `yaml:"retrieval"`
	Deletion  DeletionConfig     `yaml:"deletion"`
	Embedding embedding.Settings `yaml:"embedding"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// RetrievalConfig tunes scoring and context assembly.
type RetrievalConfig struct {
	MinSimilarity  float64 `yaml:"min_similarity"`
	Limit          int     `yaml:"limit"`
	HalfLifeDays   float64 `yaml:"half_life_days"`
	DedupThreshold float64 `yaml:"dedup_threshold"`
	ContextBudget  int     `yaml:"context_budget"`
}

// DeletionConfig tunes the two-phase deletion protocol.
type DeletionConfig struct {
	PendingTTL time.Duration `yaml:"pending_ttl"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".alfred-memory"),
		Retrieval: RetrievalConfig{
			MinSimilarity:  0.7,
			Limit:          20,
			HalfLifeDays:   30,
			DedupThreshold: 0.95,
			ContextBudget:  2000,
		},
		Deletion: DeletionConfig{
			PendingTTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".alfred-memory", "config.yaml")
}

// Load reads a YAML config file over the defaults. A missing file yields
// the defaults; environment variables in ${VAR} form are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
