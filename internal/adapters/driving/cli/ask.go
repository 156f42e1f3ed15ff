package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

var (
	askInteractive bool
	askShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed SOC data",
	Long: `Retrieves tracker and rulebook context for the question and
generates an answer with the configured language model.

With --interactive, reads questions from stdin in a loop until EOF or
"exit".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "read questions from stdin in a loop")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the retrieved context before the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	if askInteractive {
		return runAskLoop(cmd)
	}

	if len(args) != 1 {
		return errors.New("provide a question or use --interactive")
	}
	return askOnce(cmd, args[0])
}

func askOnce(cmd *cobra.Command, question string) error {
	answer, err := askService.Ask(context.Background(), question, domain.RetrieveOptions{})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askShowContext {
		cmd.Println(answer.Context)
		cmd.Println()
	}
	cmd.Println(answer.Text)
	return nil
}

func runAskLoop(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	cmd.Println("Ask about incidents and rules. Type \"exit\" to quit.")

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		if err := askOnce(cmd, question); err != nil {
			// Keep the loop alive; a transient backend error should not
			// end the session.
			cmd.PrintErrf("error: %v\n", err)
		}
		cmd.Println()
	}
}
