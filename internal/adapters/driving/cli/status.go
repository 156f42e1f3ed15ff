package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and backend status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	status, err := statusService.Status(context.Background())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Index:          %d vectors (dim %d)\n", status.IndexCount, status.Dimension)
	cmd.Printf("Rule keys:      %d\n", status.RuleKeys)
	if status.Rules > 0 {
		cmd.Printf("Rules:          %d (%d alert patterns)\n", status.Rules, status.AlertPatterns)
	}
	cmd.Printf("Embed model:    %s\n", status.EmbedModel)
	if status.GenerateModel != "" {
		cmd.Printf("Generate model: %s\n", status.GenerateModel)
	}
	if status.BackendReachable {
		cmd.Println("Backend:        reachable")
	} else {
		cmd.Println("Backend:        UNREACHABLE")
	}
	return nil
}
