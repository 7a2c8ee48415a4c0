package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

var (
	chatTopK     int
	chatMinScore float64
	chatJSON     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question using only content retrieved from the index.
Answers are cached briefly, so repeating a question is cheap.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "exact number of context documents")
	chatCmd.Flags().Float64Var(&chatMinScore, "min-score", 0, "minimum vector similarity for context")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	opts := domain.QueryOptions{}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = &chatTopK
	}
	if cmd.Flags().Changed("min-score") {
		opts.MinScore = &chatMinScore
	}

	answer, docs, err := chatService.GenerateResponse(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if chatJSON {
		payload := struct {
			Answer    domain.Answer        `json:"answer"`
			Documents []domain.QueryResult `json:"documents"`
		}{answer, docs}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Printf("Relevancy: %.4f\n", answer.Relevancy)
	if len(docs) > 0 {
		cmd.Printf("Sources: %d documents\n", len(docs))
		for i := range docs {
			cmd.Printf("  [%d] %s (%.4f)\n", i+1, docs[i].ID, docs[i].Score)
		}
	}

	return nil
}
