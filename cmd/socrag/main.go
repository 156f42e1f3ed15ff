// Command socrag is a retrieval-augmented question answering CLI for
// SOC incident and rulebook data.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/secops-tools/socrag-cli/internal/adapters/driven/chunks/jsonl"
	configfile "github.com/secops-tools/socrag-cli/internal/adapters/driven/config/file"
	embedollama "github.com/secops-tools/socrag-cli/internal/adapters/driven/embedding/ollama"
	"github.com/secops-tools/socrag-cli/internal/adapters/driven/index/flat"
	llmollama "github.com/secops-tools/socrag-cli/internal/adapters/driven/llm/ollama"
	"github.com/secops-tools/socrag-cli/internal/adapters/driven/mapping"
	rulekeyfile "github.com/secops-tools/socrag-cli/internal/adapters/driven/rulekeys/file"
	rulekeysqlite "github.com/secops-tools/socrag-cli/internal/adapters/driven/rulekeys/sqlite"
	"github.com/secops-tools/socrag-cli/internal/adapters/driving/cli"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "socrag: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := os.Getenv("SOCRAG_CONFIG_DIR")
	if configDir == "" {
		dir, err := configfile.DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	cfg, err := configfile.Load(configDir)
	if err != nil {
		return err
	}

	dataDir := cfg.Index.Dir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	chunksFile := cfg.Index.ChunksFile
	if chunksFile == "" {
		chunksFile = filepath.Join(dataDir, "chunks.jsonl")
	}

	embedding := embedollama.NewEmbeddingService(embedollama.Config{
		BaseURL:           cfg.Ollama.BaseURL,
		Model:             cfg.Ollama.EmbedModel,
		RequestsPerSecond: cfg.Ollama.EmbedRateLimit,
	})
	defer embedding.Close()

	generator := llmollama.NewGenerator(llmollama.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.GenerateModel,
	})
	defer generator.Close()

	index, err := flat.Open(filepath.Join(dataDir, "vectors"))
	if err != nil {
		return err
	}
	defer index.Close()

	var ruleKeys driven.RuleKeyStore
	var ruleKeysPath string
	if cfg.Index.RuleKeysFile != "" {
		store := rulekeyfile.NewStore(cfg.Index.RuleKeysFile)
		ruleKeys, ruleKeysPath = store, store.Path()
	} else {
		store, err := rulekeysqlite.NewStore(filepath.Join(dataDir, "rulekeys.db"))
		if err != nil {
			return err
		}
		ruleKeys, ruleKeysPath = store, store.Path()
	}
	defer ruleKeys.Close()

	provider, err := mapping.NewReloader(context.Background(), ruleKeys, ruleKeysPath)
	if err != nil {
		return err
	}
	defer provider.Close()

	resolver := services.NewRuleResolver(provider, cfg.Retrieval.PartialMatchThreshold)
	expander := services.NewQueryExpander(provider)
	retriever := services.NewRetriever(embedding, index, resolver, expander, provider,
		services.RetrieverConfig{
			KTracker:         cfg.Retrieval.KTracker,
			KRulebook:        cfg.Retrieval.KRulebook,
			ExactBoost:       cfg.Retrieval.ExactBoost,
			PatternBoost:     cfg.Retrieval.PatternBoost,
			OtherRulePenalty: cfg.Retrieval.OtherRulePenalty,
			GenericRuleBoost: cfg.Retrieval.GenericRuleBoost,
			MinTrackerFields: cfg.Retrieval.MinTrackerFields,
		})
	builder := services.NewContextBuilder(resolver, provider)

	cli.Configure(cli.Services{
		Retriever: retriever,
		Context:   builder,
		Ask:       services.NewAsk(retriever, builder, generator),
		Indexer: services.NewIndexer(
			jsonl.NewSource(chunksFile), embedding, index, ruleKeys, cfg.Index.BatchSize),
		Status:  services.NewStatus(index, embedding, ruleKeys, generator),
		Mapping: provider,
	})
	cli.SetVersion(version)

	return cli.Execute()
}
