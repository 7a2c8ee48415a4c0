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
	queryTopK     int
	queryMinScore float64
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the vector index",
	Long: `Runs the retrieval pipeline and prints the re-ranked matches.
Without --top-k the adaptive cutoff trims the result tail; with it, you
get exactly that many results.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "exact number of results (disables the adaptive cutoff)")
	queryCmd.Flags().Float64Var(&queryMinScore, "min-score", 0, "minimum vector similarity")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	opts := domain.QueryOptions{}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = &queryTopK
	}
	if cmd.Flags().Changed("min-score") {
		opts.MinScore = &queryMinScore
	}

	results, err := retrievalService.Query(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.4f, vector %.4f)\n", i+1, results[i].ID, results[i].Score, results[i].VectorScore)
		if content := results[i].Metadata["content"]; content != "" {
			cmd.Printf("      %s\n", content)
		}
		cmd.Println()
	}

	return nil
}
