package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// ExtractFailure records one input that could not be extracted, with
// enough context to support replay.
type ExtractFailure struct {
	Key string
	Err error
}

func (f ExtractFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Key, f.Err)
}

// Extractor reads raw tabular records out of blob storage. Failures are
// isolated per input key: one malformed upload never aborts the whole
// extraction trigger.
type Extractor struct {
	blobs driven.BlobStore
}

// NewExtractor creates a new extractor.
func NewExtractor(blobs driven.BlobStore) *Extractor {
	return &Extractor{blobs: blobs}
}

// Extract fetches and decodes every key's blob into typed records.
// Records from healthy inputs are returned alongside the per-key
// failures; the caller decides whether a wholly failed extraction is
// fatal.
func (e *Extractor) Extract(ctx context.Context, keys []string) ([]domain.RawRecord, []ExtractFailure) {
	var (
		extracted []domain.RawRecord
		failures  []ExtractFailure
	)

	for _, key := range keys {
		records, err := e.extractOne(ctx, key)
		if err != nil {
			failures = append(failures, ExtractFailure{Key: key, Err: err})
			continue
		}
		extracted = append(extracted, records...)
	}

	switch {
	case len(failures) > 0 && len(extracted) == 0:
		logger.Error("Failed to extract any records: %v", failures)
	case len(failures) > 0:
		logger.Warn("Failed to extract some records: %v", failures)
	}

	return extracted, failures
}

func (e *Extractor) extractOne(ctx context.Context, key string) ([]domain.RawRecord, error) {
	data, _, err := e.blobs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch blob %s: %w", key, err)
	}

	var records []domain.RawRecord
	if err := gocsv.Unmarshal(bytes.NewReader(data), &records); err != nil {
		return nil, fmt.Errorf("decode blob %s: %w", key, err)
	}

	logger.Debug("Extracted %d records from %s", len(records), key)
	return records, nil
}
