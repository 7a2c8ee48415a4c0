package driven

import (
	"context"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

// BlobStore persists document bytes together with typed metadata.
// It stands in for object storage: a key/value blob store whose objects
// carry a filename, size and indexing status.
//
// Missing keys wrap domain.ErrBlobNotFound.
type BlobStore interface {
	// Put stores the blob and its metadata under key, replacing any
	// existing entry.
	Put(ctx context.Context, key string, data []byte, meta domain.BlobMetadata) error

	// Get returns the blob bytes and metadata for key.
	Get(ctx context.Context, key string) ([]byte, domain.BlobMetadata, error)

	// HeadMetadata returns only the metadata for key.
	HeadMetadata(ctx context.Context, key string) (domain.BlobMetadata, error)

	// UpdateMetadata replaces the metadata for key, leaving the blob
	// bytes untouched.
	UpdateMetadata(ctx context.Context, key string, meta domain.BlobMetadata) error

	// Delete removes the blob and its metadata.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys.
	List(ctx context.Context) ([]string, error)
}
