package driven

import (
	"context"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

// Vector is one upsert payload: the vector itself plus the chunk fields
// stored alongside it as metadata.
type Vector struct {
	ID       string
	Values   []float64
	Metadata map[string]string
}

// VectorIndex wraps a remote approximate-nearest-neighbour store.
//
// Implementations must be safe for concurrent use: the loader submits
// upsert batches from many goroutines and multiple queries may be in
// flight at once. Failures wrap domain.ErrIndexUnavailable.
type VectorIndex interface {
	// Upsert inserts or replaces the given vectors.
	Upsert(ctx context.Context, vectors []Vector) error

	// Query returns the topK nearest neighbours with their metadata,
	// ordered by descending similarity.
	Query(ctx context.Context, vector []float64, topK int) ([]domain.Match, error)

	// Delete removes the given vector IDs.
	Delete(ctx context.Context, ids []string) error

	// List returns up to limit vector IDs starting with prefix, resuming
	// from the opaque pagination token. An empty returned token means the
	// listing is exhausted.
	List(ctx context.Context, prefix string, limit int, token string) (ids []string, next string, err error)
}
