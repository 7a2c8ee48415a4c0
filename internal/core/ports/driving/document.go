package driving

import (
	"context"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

// DocumentService manages uploaded documents and their lifecycle.
type DocumentService interface {
	// Upload stores the file bytes under a freshly minted document ID
	// with indexing status PENDING, and returns the ID.
	Upload(ctx context.Context, filename string, content []byte) (string, error)

	// Get returns metadata for a document.
	Get(ctx context.Context, documentID string) (domain.DocumentInfo, error)

	// List returns metadata for all uploaded documents.
	List(ctx context.Context) ([]domain.DocumentInfo, error)

	// Delete removes a document's vectors and blob. It is refused with
	// domain.ErrIndexingIncomplete while the document's indexing status
	// is not COMPLETE.
	Delete(ctx context.Context, documentID string) error
}
