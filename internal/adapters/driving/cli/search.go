package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

var (
	searchKTracker  int
	searchKRulebook int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve matching tracker rows and rulebook procedures",
	Long: `Runs the retrieval pipeline without generation.
The query is classified, expanded into variants, searched against the
vector index, and the hits are partitioned into tracker and rulebook
buckets with rule-aware boosting applied.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchKTracker, "k-tracker", domain.DefaultKTracker, "maximum tracker results")
	searchCmd.Flags().IntVar(&searchKRulebook, "k-rulebook", domain.DefaultKRulebook, "maximum rulebook results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	ctx := context.Background()
	opts := domain.RetrieveOptions{
		KTracker:  searchKTracker,
		KRulebook: searchKRulebook,
	}

	result, err := retrieverService.Retrieve(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	return outputSearchText(cmd, result)
}

func outputSearchJSON(cmd *cobra.Command, result domain.RetrievalResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, result domain.RetrievalResult) error {
	if len(result.Tracker) == 0 && len(result.Rulebook) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cls := result.Class
	cmd.Printf("Query: rule=%v tracker=%v", cls.AboutRule, cls.AboutTracker)
	if cls.RuleID != "" {
		cmd.Printf(" rule_id=%s confidence=%s", cls.RuleID, cls.Confidence)
	}
	cmd.Println()
	cmd.Println()

	printHits(cmd, "Tracker", result.Tracker)
	printHits(cmd, "Rulebook", result.Rulebook)
	return nil
}

func printHits(cmd *cobra.Command, label string, hits []domain.RetrievalHit) {
	if len(hits) == 0 {
		return
	}
	cmd.Printf("%s (%d):\n", label, len(hits))
	for i, hit := range hits {
		src, _ := hit.Metadata[domain.MetaSource].(string)
		cmd.Printf("  [%d] %.3f %s\n", i+1, hit.Score, src)
		cmd.Printf("      %s\n", snippet(hit.Text, 160))
	}
	cmd.Println()
}

func snippet(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
