package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the chunks file",
	Long: `Reads the pre-chunked tracker and rulebook data, embeds it in
batches, extracts the rule-key artifact, and persists the index.
Rebuilding replaces the previous index files.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	stats, err := indexerService.Build(context.Background())
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	cmd.Printf("Indexed %d/%d chunks in %.2fs\n", stats.Indexed, stats.Total, stats.ElapsedSec)
	cmd.Printf("Rule keys extracted: %d\n", stats.RuleKeys)
	cmd.Printf("Index size: %d vectors\n", stats.Count)
	return nil
}
