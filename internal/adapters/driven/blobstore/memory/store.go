// Package memory provides an in-memory blob store for tests and local
// runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

type blob struct {
	data []byte
	meta domain.BlobMetadata
}

// Store is an in-memory blob store. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewStore creates a new in-memory blob store.
func NewStore() *Store {
	return &Store{
		blobs: make(map[string]blob),
	}
}

// Put stores the blob and its metadata, replacing any existing entry.
func (s *Store) Put(_ context.Context, key string, data []byte, meta domain.BlobMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	s.blobs[key] = blob{data: copied, meta: meta}
	return nil
}

// Get returns the blob bytes and metadata for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, domain.BlobMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, domain.BlobMetadata{}, fmt.Errorf("get %s: %w", key, domain.ErrBlobNotFound)
	}
	return b.data, b.meta, nil
}

// HeadMetadata returns only the metadata for key.
func (s *Store) HeadMetadata(_ context.Context, key string) (domain.BlobMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return domain.BlobMetadata{}, fmt.Errorf("head %s: %w", key, domain.ErrBlobNotFound)
	}
	return b.meta, nil
}

// UpdateMetadata replaces the metadata for key, leaving the bytes alone.
func (s *Store) UpdateMetadata(_ context.Context, key string, meta domain.BlobMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[key]
	if !ok {
		return fmt.Errorf("update %s: %w", key, domain.ErrBlobNotFound)
	}
	b.meta = meta
	s.blobs[key] = b
	return nil
}

// Delete removes the blob and its metadata.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("delete %s: %w", key, domain.ErrBlobNotFound)
	}
	delete(s.blobs, key)
	return nil
}

// List returns all stored keys in unspecified order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.blobs))
	for key := range s.blobs {
		keys = append(keys, key)
	}
	return keys, nil
}
