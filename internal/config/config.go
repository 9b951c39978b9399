package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"toolshelf/internal/score"
)

// Config captures the catalog tooling configuration.
type Config struct {
	Version int           `yaml:"version"`
	GitHub  GitHubConfig  `yaml:"github"`
	Verify  VerifyConfig  `yaml:"verify"`
	Scoring ScoringConfig `yaml:"scoring"`
	Content ContentConfig `yaml:"content"`
	Catalog CatalogConfig `yaml:"catalog"`
}

// GitHubConfig controls access to the repository-hosting API.
type GitHubConfig struct {
	APIBase        string `yaml:"api_base"`
	TimeoutSeconds int    `yaml:"timeout_s"`
}

// VerifyConfig tunes batch verification.
type VerifyConfig struct {
	Workers        int `yaml:"workers"`
	TimeoutSeconds int `yaml:"timeout_s"`
}

// ScoringConfig holds the quality-score weights and thresholds.
type ScoringConfig struct {
	Weights         score.Weights `yaml:"weights"`
	ReviewThreshold int           `yaml:"review_threshold"`
}

// ContentConfig lists words that flag a manifest for human review.
type ContentConfig struct {
	ForbiddenWords []string `yaml:"forbidden_words"`
}

// CatalogConfig controls where generated catalog documents land.
type CatalogConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		GitHub: GitHubConfig{
			APIBase:        "https://api.github.com",
			TimeoutSeconds: 15,
		},
		Verify: VerifyConfig{
			Workers:        4,
			TimeoutSeconds: 30,
		},
		Scoring: ScoringConfig{
			Weights:         score.DefaultWeights(),
			ReviewThreshold: 30,
		},
		Content: ContentConfig{
			ForbiddenWords: []string{"crack", "keygen", "warez", "torrent"},
		},
		Catalog: CatalogConfig{
			OutputDir: "api",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = defaults.GitHub.APIBase
	}
	if c.GitHub.TimeoutSeconds <= 0 {
		c.GitHub.TimeoutSeconds = defaults.GitHub.TimeoutSeconds
	}
	if c.Verify.Workers <= 0 {
		c.Verify.Workers = defaults.Verify.Workers
	}
	if c.Verify.TimeoutSeconds <= 0 {
		c.Verify.TimeoutSeconds = defaults.Verify.TimeoutSeconds
	}
	if c.Scoring.ReviewThreshold <= 0 {
		c.Scoring.ReviewThreshold = defaults.Scoring.ReviewThreshold
	}
	w := &c.Scoring.Weights
	if *w == (score.Weights{}) {
		*w = defaults.Scoring.Weights
	}
	if c.Content.ForbiddenWords == nil {
		c.Content.ForbiddenWords = defaults.Content.ForbiddenWords
	}
	if c.Catalog.OutputDir == "" {
		c.Catalog.OutputDir = defaults.Catalog.OutputDir
	}
}

// Validate rejects configurations that cannot drive a run.
func (c Config) Validate() error {
	if c.Verify.Workers < 1 {
		return fmt.Errorf("verify.workers must be at least 1, got %d", c.Verify.Workers)
	}
	if c.Verify.Workers > 64 {
		return fmt.Errorf("verify.workers must be at most 64, got %d", c.Verify.Workers)
	}
	if c.GitHub.TimeoutSeconds < 1 {
		return fmt.Errorf("github.timeout_s must be positive, got %d", c.GitHub.TimeoutSeconds)
	}
	for name, weight := range map[string]float64{
		"stars":           c.Scoring.Weights.Stars,
		"forks":           c.Scoring.Weights.Forks,
		"recent_activity": c.Scoring.Weights.RecentActivity,
		"documentation":   c.Scoring.Weights.Documentation,
		"license":         c.Scoring.Weights.License,
		"community":       c.Scoring.Weights.Community,
	} {
		if weight < 0 {
			return fmt.Errorf("scoring.weights.%s must not be negative, got %v", name, weight)
		}
	}
	return nil
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
