package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// Batching parameters for index upserts.
const (
	// loadBatchSize is the number of vectors per upsert call.
	loadBatchSize = 100

	// maxConcurrentUpserts bounds the upsert worker pool.
	maxConcurrentUpserts = 100

	// deletePageLimit is the page size for prefix listings during
	// vector deletion.
	deletePageLimit = 100
)

// BatchError records one failed upsert batch with enough context to
// support replay.
type BatchError struct {
	// Batch is the zero-based batch index within the load call.
	Batch int

	// DocumentIDs are the documents with chunks in the failed batch.
	DocumentIDs []string

	// Err is the underlying upsert error.
	Err error
}

// PartialIngestError reports that some upsert batches failed while their
// siblings completed. The affected documents keep indexing status PENDING
// and the ingestion trigger can be re-run; vector IDs are deterministic,
// so a replay upserts the same IDs again.
type PartialIngestError struct {
	BatchErrors []BatchError
	Total       int
}

func (e *PartialIngestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d upsert batches failed:", len(e.BatchErrors), e.Total)
	for _, be := range e.BatchErrors {
		fmt.Fprintf(&b, " batch %d (%v);", be.Batch, be.Err)
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Loader batches embedded chunks into the vector index and tracks each
// document's indexing completion in blob metadata. The loader is the sole
// writer of the indexing status flag.
type Loader struct {
	index driven.VectorIndex
	blobs driven.BlobStore
}

// NewLoader creates a new loader.
func NewLoader(index driven.VectorIndex, blobs driven.BlobStore) *Loader {
	return &Loader{
		index: index,
		blobs: blobs,
	}
}

// Load partitions records into fixed-size batches and submits them all
// concurrently through a bounded worker pool. A failed batch is logged
// and collected; its siblings are unaffected. After all submissions
// settle, every document whose batches all succeeded has its indexing
// status flipped to COMPLETE. Documents touched by a failed batch stay
// PENDING so the trigger can be replayed.
//
// Returns a *PartialIngestError when any batch failed, nil otherwise.
func (l *Loader) Load(ctx context.Context, records []domain.Chunk) error {
	if len(records) == 0 {
		return nil
	}

	logger.Section("Load")
	logger.Info("Loading %d records into the vector index", len(records))

	batches := l.partition(records)
	logger.Debug("Partitioned into %d batches of up to %d", len(batches), loadBatchSize)

	var (
		mu       sync.Mutex
		failures []BatchError
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, maxConcurrentUpserts)

	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []domain.Chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := l.upsertBatch(ctx, batch); err != nil {
				logger.Warn("Upserting batch %d of %d failed: %v", i+1, len(batches), err)
				mu.Lock()
				failures = append(failures, BatchError{
					Batch:       i,
					DocumentIDs: distinctDocumentIDs(batch),
					Err:         err,
				})
				mu.Unlock()
				return
			}
			logger.Debug("Upserted batch %d of %d", i+1, len(batches))
		}(i, batch)
	}
	wg.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Batch < failures[j].Batch })

	failedDocs := make(map[string]bool)
	for _, f := range failures {
		for _, id := range f.DocumentIDs {
			failedDocs[id] = true
		}
	}

	for _, documentID := range distinctDocumentIDs(records) {
		if failedDocs[documentID] {
			logger.Warn("Document %s had a failed batch, leaving status PENDING", documentID)
			continue
		}
		l.markComplete(ctx, documentID)
	}

	if len(failures) > 0 {
		return &PartialIngestError{BatchErrors: failures, Total: len(batches)}
	}
	logger.Info("Finished loading data into the vector index")
	return nil
}

// DeleteVectors removes every vector whose ID carries the document's ID
// as prefix. The full listing is collected first and deleted afterwards:
// pagination tokens are positions in the listing, so deleting while
// paging would shift the remaining entries past the token and leave
// survivors behind. A document with no vectors is a no-op.
func (l *Loader) DeleteVectors(ctx context.Context, documentID string) error {
	logger.Info("Deleting vectors for document %s", documentID)

	var ids []string
	token := ""
	for {
		page, next, err := l.index.List(ctx, documentID, deletePageLimit, token)
		if err != nil {
			return fmt.Errorf("list vectors for %s: %w", documentID, err)
		}
		ids = append(ids, page...)
		if next == "" {
			break
		}
		token = next
	}

	for start := 0; start < len(ids); start += deletePageLimit {
		end := start + deletePageLimit
		if end > len(ids) {
			end = len(ids)
		}
		if err := l.index.Delete(ctx, ids[start:end]); err != nil {
			return fmt.Errorf("delete vectors for %s: %w", documentID, err)
		}
	}

	logger.Debug("Deleted %d vectors for document %s", len(ids), documentID)
	return nil
}

// partition splits records into contiguous batches of loadBatchSize.
func (l *Loader) partition(records []domain.Chunk) [][]domain.Chunk {
	var batches [][]domain.Chunk
	for start := 0; start < len(records); start += loadBatchSize {
		end := start + loadBatchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

// upsertBatch converts one batch of chunks to upsert payloads. The
// embedding travels only in the vector payload, never in metadata.
func (l *Loader) upsertBatch(ctx context.Context, batch []domain.Chunk) error {
	vectors := make([]driven.Vector, len(batch))
	for i, chunk := range batch {
		vectors[i] = driven.Vector{
			ID:       chunk.VectorID(),
			Values:   chunk.Embedding,
			Metadata: chunk.Metadata(),
		}
	}
	return l.index.Upsert(ctx, vectors)
}

// markComplete flips one document's indexing status to COMPLETE.
// Best effort: a failed metadata update is logged, not retried.
func (l *Loader) markComplete(ctx context.Context, documentID string) {
	meta, err := l.blobs.HeadMetadata(ctx, documentID)
	if err != nil {
		logger.Warn("Reading metadata for document %s failed: %v", documentID, err)
		return
	}

	meta.IndexingStatus = domain.IndexingComplete
	if err := l.blobs.UpdateMetadata(ctx, documentID, meta); err != nil {
		logger.Warn("Updating metadata for document %s failed: %v", documentID, err)
		return
	}
	logger.Info("Document %s indexing status: COMPLETE", documentID)
}

// distinctDocumentIDs returns the distinct document IDs in input order of
// first appearance, keeping downstream status updates deterministic.
func distinctDocumentIDs(records []domain.Chunk) []string {
	seen := make(map[string]bool, len(records))
	var ids []string
	for _, r := range records {
		if !seen[r.DocumentID] {
			seen[r.DocumentID] = true
			ids = append(ids, r.DocumentID)
		}
	}
	return ids
}
