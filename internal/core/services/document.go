package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
	"github.com/custodia-labs/ragstack/internal/core/ports/driving"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages uploaded documents and their lifecycle.
type DocumentService struct {
	blobs  driven.BlobStore
	loader *Loader
}

// NewDocumentService creates a new document service.
func NewDocumentService(blobs driven.BlobStore, loader *Loader) *DocumentService {
	return &DocumentService{
		blobs:  blobs,
		loader: loader,
	}
}

// Upload stores the file under a freshly minted document ID. The document
// starts PENDING; only the loader flips it to COMPLETE.
func (s *DocumentService) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	documentID := uuid.NewString()

	meta := domain.BlobMetadata{
		Filename:       filename,
		Size:           int64(len(content)),
		IndexingStatus: domain.IndexingPending,
	}
	if err := s.blobs.Put(ctx, documentID, content, meta); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	logger.Info("Uploaded %s (%d bytes) as document %s", filename, len(content), documentID)
	return documentID, nil
}

// Get returns metadata for a document.
func (s *DocumentService) Get(ctx context.Context, documentID string) (domain.DocumentInfo, error) {
	meta, err := s.blobs.HeadMetadata(ctx, documentID)
	if err != nil {
		return domain.DocumentInfo{}, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return infoFromMetadata(documentID, meta), nil
}

// List returns metadata for all uploaded documents, ordered by ID for a
// stable listing.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentInfo, error) {
	keys, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.Strings(keys)

	infos := make([]domain.DocumentInfo, 0, len(keys))
	for _, key := range keys {
		meta, err := s.blobs.HeadMetadata(ctx, key)
		if err != nil {
			// A blob deleted between List and Head is not an error.
			logger.Warn("Reading metadata for %s failed: %v", key, err)
			continue
		}
		infos = append(infos, infoFromMetadata(key, meta))
	}
	return infos, nil
}

// Delete removes a document's vectors and then its blob. Deletion is
// declined while indexing is incomplete: the loader could still be
// writing vectors under this document's prefix, and a half-indexed
// document would leave orphans behind.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	meta, err := s.blobs.HeadMetadata(ctx, documentID)
	if err != nil {
		return fmt.Errorf("check document %s: %w", documentID, err)
	}

	if meta.IndexingStatus != domain.IndexingComplete {
		return fmt.Errorf("delete document %s: %w", documentID, domain.ErrIndexingIncomplete)
	}

	if err := s.loader.DeleteVectors(ctx, documentID); err != nil {
		return fmt.Errorf("delete vectors for %s: %w", documentID, err)
	}
	if err := s.blobs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete blob %s: %w", documentID, err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}

func infoFromMetadata(documentID string, meta domain.BlobMetadata) domain.DocumentInfo {
	status := meta.IndexingStatus
	if status == "" {
		status = domain.IndexingPending
	}
	return domain.DocumentInfo{
		ID:             documentID,
		Filename:       meta.Filename,
		Size:           meta.Size,
		IndexingStatus: status,
	}
}
