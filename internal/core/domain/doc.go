// Package domain defines the core business entities for the RAG pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRecord: One tabular row extracted from an uploaded document
//   - Chunk: A normalised, embeddable unit of text derived from one row
//   - Match: A raw vector index hit, ephemeral and per-query
//   - QueryResult: A match after filtering and hybrid re-ranking
//   - DocumentInfo: Uploaded document metadata and indexing status
//   - Answer: A generated answer with its relevancy score
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
