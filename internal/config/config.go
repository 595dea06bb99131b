package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// DiscardSentinel is the override value that explicitly drops a procedure.
const DiscardSentinel = "discard"

// Config represents the top-level clinsync.yaml configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Export     ExportConfig     `yaml:"export"`
	Categories CategoriesConfig `yaml:"categories"`
}

// APIConfig locates the practice-management platform.
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`
	TokenEnv    string `yaml:"token_env"`    // env var holding the API token
	AccountType string `yaml:"account_type"` // transaction-report filter
}

// ExportConfig controls where writers place their output.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// CategoriesConfig carries per-deployment classification data: explicit
// per-procedure overrides and an optional replacement pattern table.
type CategoriesConfig struct {
	Overrides map[int]string  `yaml:"overrides,omitempty"`
	Patterns  []PatternConfig `yaml:"patterns,omitempty"`
}

// PatternConfig is one ordered name-fallback rule.
type PatternConfig struct {
	Match    string `yaml:"match"`
	Category string `yaml:"category"`
}

// Load reads a clinsync.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(baseURL string) *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     baseURL,
			TokenEnv:    "CLINSYNC_API_TOKEN",
			AccountType: "receivable",
		},
		Export: ExportConfig{
			Dir: "exports",
		},
	}
}

// Overrides converts the configured per-procedure overrides into category
// values, mapping the discard sentinel to model.CategoryDiscard.
func (c *Config) Overrides() map[int]model.Category {
	out := make(map[int]model.Category, len(c.Categories.Overrides))
	for id, v := range c.Categories.Overrides {
		if v == DiscardSentinel {
			out[id] = model.CategoryDiscard
			continue
		}
		out[id] = model.Category(v)
	}
	return out
}
