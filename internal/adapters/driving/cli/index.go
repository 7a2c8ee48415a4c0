package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstack/internal/core/services"
)

var indexCmd = &cobra.Command{
	Use:   "index [doc-id]",
	Short: "Index an uploaded document",
	Long: `Runs the ingestion pipeline for one document: extract its records,
embed them and load the vectors into the index. Safe to re-run after a
partial failure; vector IDs are deterministic.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	documentID := args[0]
	err := ingestService.Index(context.Background(), documentID)

	var partial *services.PartialIngestError
	if errors.As(err, &partial) {
		cmd.Printf("Indexing of %s partially failed: %v\n", documentID, partial)
		cmd.Println("Affected documents stay PENDING; re-run this command to retry.")
		return err
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed document %s\n", documentID)
	return nil
}
