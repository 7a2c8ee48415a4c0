package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the remote embedding model call
	// failed or returned a malformed response. Retrieval aborts entirely
	// when this occurs - there are no partial results.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the generative model call failed,
	// timed out, or returned a malformed response.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrIndexUnavailable indicates the vector index could not be reached
	// or rejected an operation.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrBlobNotFound indicates the requested key does not exist in the
	// blob store. It wraps ErrNotFound, so callers checking either
	// sentinel match.
	ErrBlobNotFound = fmt.Errorf("blob %w", ErrNotFound)

	// ErrCacheUnavailable indicates the cache backing store failed.
	// Callers must downgrade this to a cache miss - caching is a
	// performance optimisation, never a correctness dependency.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrIndexingIncomplete indicates a document cannot be deleted because
	// its vectors are still being indexed. This is a declined-with-reason
	// response, not an infrastructure failure.
	ErrIndexingIncomplete = errors.New("document is still being indexed")
)
