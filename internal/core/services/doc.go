// Package services implements the driving port interfaces.
// Services contain the core business logic - retrieval with adaptive
// cutoff and re-ranking, grounded answer generation with caching, and
// the extract/transform/load ingestion pipeline - and orchestrate calls
// to driven ports (adapters).
package services
