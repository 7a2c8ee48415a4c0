package driving

import (
	"context"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

// ChatService generates grounded answers from retrieved context.
type ChatService interface {
	// GenerateResponse retrieves supporting documents for the query,
	// then returns a cached answer or generates a fresh one. The
	// supporting documents are always freshly retrieved, even on a
	// cache hit. Retrieval or generation failures fail the whole
	// operation; no partial result is returned.
	GenerateResponse(ctx context.Context, query string, opts domain.QueryOptions) (domain.Answer, []domain.QueryResult, error)
}
