package services

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// Transformer converts raw extracted rows into normalised chunks and
// attaches embeddings via a concurrent fan-out over the embedding
// service.
type Transformer struct {
	embedder driven.EmbeddingService
}

// NewTransformer creates a new transformer.
func NewTransformer(embedder driven.EmbeddingService) *Transformer {
	return &Transformer{embedder: embedder}
}

// Transform normalises raw rows into chunks, dropping the distractor
// columns and assigning ordinals in input order. Ordinals drive vector
// ID derivation, so identical input always yields identical IDs.
func (t *Transformer) Transform(records []domain.RawRecord, documentID string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(records))
	for i, r := range records {
		chunks[i] = domain.Chunk{
			DocumentID:    documentID,
			Ordinal:       i,
			Question:      r.Question,
			CorrectAnswer: r.CorrectAnswer,
			Support:       r.Support,
		}
	}
	return chunks
}

// GenerateEmbeddings attaches an embedding to every chunk, one remote
// call per chunk fanned out concurrently. A single chunk's failure fails
// the whole batch; a broken embedding dependency must be visible, never
// coerced into a zero vector.
func (t *Transformer) GenerateEmbeddings(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	logger.Debug("Generating embeddings for %d chunks", len(chunks))

	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		i := i
		g.Go(func() error {
			// The embedding input is the chunk's JSON serialisation,
			// so the stored vector covers all normalised fields.
			body, err := json.Marshal(out[i])
			if err != nil {
				return fmt.Errorf("serialise chunk %s: %w", out[i].VectorID(), err)
			}
			embedding, err := t.embedder.Embed(gctx, string(body))
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", out[i].VectorID(), err)
			}
			out[i].Embedding = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Generated %d embeddings of %d dimensions", len(out), t.embedder.Dimensions())
	return out, nil
}
