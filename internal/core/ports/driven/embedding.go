package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations wrap a remote embedding model. Failures wrap
// domain.ErrEmbeddingUnavailable so callers can distinguish a broken
// dependency from an empty result.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// This is fixed per model and must match the vector index
	// configuration; a mismatch is a configuration error.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
