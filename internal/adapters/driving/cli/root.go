// Package cli implements the socrag command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driving"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Injected services. Set via Configure before Execute; commands fail
// with a clear error when their service is missing.
var (
	retrieverService driving.RetrieverService
	contextService   driving.ContextService
	askService       driving.AskService
	indexerService   driving.IndexerService
	statusService    driving.StatusService
	mappingProvider  driven.RuleMappingProvider
)

var rootCmd = &cobra.Command{
	Use:   "socrag",
	Short: "Retrieval-augmented question answering over SOC data",
	Long: `socrag answers questions about SOC incidents and detection rules.

It retrieves context from two indexed sources - the incident tracker and
the rulebook procedures - and optionally generates an answer with a
local language model via Ollama.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services aggregates everything the commands need. A single injection
// point keeps the composition root in one place.
type Services struct {
	Retriever driving.RetrieverService
	Context   driving.ContextService
	Ask       driving.AskService
	Indexer   driving.IndexerService
	Status    driving.StatusService
	Mapping   driven.RuleMappingProvider
}

// Configure injects the services the commands run against.
func Configure(s Services) {
	retrieverService = s.Retriever
	contextService = s.Context
	askService = s.Ask
	indexerService = s.Indexer
	statusService = s.Status
	mappingProvider = s.Mapping
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
