package driving

import (
	"context"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

// RetrievalService answers queries against the vector index.
type RetrievalService interface {
	// Query embeds the text, queries the index, applies the minimum-score
	// filter and adaptive cutoff, and re-ranks survivors with the hybrid
	// composite score. Results are ordered most relevant first.
	Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error)
}
