// Package file loads and saves the CLI configuration as a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full CLI configuration. Zero values fall back to the
// documented defaults at load time.
type Config struct {
	Ollama    OllamaConfig    `toml:"ollama"`
	Index     IndexConfig     `toml:"index"`
	Retrieval RetrievalConfig `toml:"retrieval"`
}

// OllamaConfig configures the embedding and generation backends.
type OllamaConfig struct {
	// BaseURL is the Ollama API base URL.
	BaseURL string `toml:"base_url"`

	// EmbedModel is the embedding model name.
	EmbedModel string `toml:"embed_model"`

	// GenerateModel is the generation model name.
	GenerateModel string `toml:"generate_model"`

	// EmbedRateLimit is the sustained embedding request rate, in
	// requests per second.
	EmbedRateLimit float64 `toml:"embed_rate_limit"`
}

// IndexConfig configures the index build and its on-disk artifacts.
type IndexConfig struct {
	// Dir is the directory holding the index, sidecar and rule-key
	// artifacts.
	Dir string `toml:"dir"`

	// ChunksFile is the JSONL file the index is built from.
	ChunksFile string `toml:"chunks_file"`

	// RuleKeysFile, when set, stores the rule-key artifact as a JSON
	// file at this path instead of the default sqlite database.
	RuleKeysFile string `toml:"rule_keys_file"`

	// BatchSize is the embed batch size.
	BatchSize int `toml:"batch_size"`
}

// RetrievalConfig carries the retrieval tuning knobs.
type RetrievalConfig struct {
	// KTracker is the tracker hits returned per query.
	KTracker int `toml:"k_tracker"`

	// KRulebook is the rulebook hits returned per query.
	KRulebook int `toml:"k_rulebook"`

	// ExactBoost multiplies hits that literally name the queried rule.
	ExactBoost float64 `toml:"exact_boost"`

	// PatternBoost multiplies hits matching a learned alert pattern.
	PatternBoost float64 `toml:"pattern_boost"`

	// OtherRulePenalty multiplies hits that name a different rule.
	OtherRulePenalty float64 `toml:"other_rule_penalty"`

	// GenericRuleBoost multiplies hits mentioning rules with no number.
	GenericRuleBoost float64 `toml:"generic_rule_boost"`

	// MinTrackerFields is the populated-field floor for tracker rows.
	MinTrackerFields int `toml:"min_tracker_fields"`

	// PartialMatchThreshold is the fraction of alert-name words that
	// must appear in a query for a partial match.
	PartialMatchThreshold float64 `toml:"partial_match_threshold"`
}

// DefaultDir returns the default configuration directory, ~/.socrag.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".socrag"), nil
}

// Load reads the configuration from configDir/config.toml. A missing
// file yields the zero config, not an error; callers apply defaults.
// If configDir is empty, ~/.socrag is used.
func Load(configDir string) (Config, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to configDir/config.toml, creating the
// directory if needed.
func Save(configDir string, cfg Config) error {
	dir, err := resolveDir(configDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, "config.toml"), data, 0600)
}

func resolveDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return DefaultDir()
}
