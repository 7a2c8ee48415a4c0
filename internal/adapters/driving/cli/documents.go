package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage uploaded documents",
	Long:  `Upload, list, inspect, or delete documents in the pipeline.`,
}

var documentsUploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a CSV document",
	Long: `Uploads a CSV file into blob storage and prints its document ID.
The document starts in status PENDING; run "ragstack index" to make it
searchable.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsUpload,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE:  runDocumentsList,
}

var documentsStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show a document's indexing status",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsStatus,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its vectors",
	Long: `Removes a document's vectors from the index and then its blob.
Deletion is refused while the document's indexing is incomplete.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsDelete,
}

func init() {
	documentsCmd.AddCommand(documentsUploadCmd)
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsStatusCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	documentID, err := documentService.Upload(context.Background(), filepath.Base(path), content)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	cmd.Printf("Uploaded %s (%d bytes)\n", filepath.Base(path), len(content))
	cmd.Printf("Document ID: %s\n", documentID)
	return nil
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File: %s (%d bytes)\n", docs[i].Filename, docs[i].Size)
		cmd.Printf("    Status: %s\n", docs[i].IndexingStatus)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsStatus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	info, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n", info.ID)
	cmd.Printf("  File: %s (%d bytes)\n", info.Filename, info.Size)
	cmd.Printf("  Status: %s\n", info.IndexingStatus)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
