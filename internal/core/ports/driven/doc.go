// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Remote embedding model (embed(text) -> vector)
//   - GenerativeService: Remote generative model (generate(prompt) -> text)
//   - VectorIndex: External ANN store (upsert/query/delete/list)
//   - BlobStore: Document bytes plus typed metadata
//   - Cache: Key/value store with per-entry expiry
//
// The embedding and generative models are opaque remote functions; the
// vector index is an external ANN service. None of them are implemented
// in-process beyond test fakes and the local adapters.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
