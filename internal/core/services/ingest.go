package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driving"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService ties extraction, transformation and loading together into
// the ingestion trigger. The trigger is idempotent: vector IDs are
// deterministic, so re-running it after a partial failure upserts the
// same IDs again.
type IngestService struct {
	extractor   *Extractor
	transformer *Transformer
	loader      *Loader
}

// NewIngestService creates a new ingest service.
func NewIngestService(extractor *Extractor, transformer *Transformer, loader *Loader) *IngestService {
	return &IngestService{
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
	}
}

// Index runs the full pipeline for one document. It runs to completion or
// failure; there is no mid-flight cancel. A wholly failed extraction is
// fatal, an embedding failure is fatal, and a partial upsert failure is
// returned as a *PartialIngestError after the healthy batches landed.
func (s *IngestService) Index(ctx context.Context, documentID string) error {
	logger.Section("Ingestion")
	logger.Info("Indexing document %s", documentID)

	records, failures := s.extractor.Extract(ctx, []string{documentID})
	if len(records) == 0 {
		if len(failures) > 0 {
			return fmt.Errorf("extract document %s: %w", documentID, failures[0].Err)
		}
		return fmt.Errorf("document %s contains no records: %w", documentID, domain.ErrInvalidInput)
	}

	chunks := s.transformer.Transform(records, documentID)
	chunks, err := s.transformer.GenerateEmbeddings(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", documentID, err)
	}

	if err := s.loader.Load(ctx, chunks); err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}

	logger.Info("Indexed document %s: %d chunks", documentID, len(chunks))
	return nil
}
