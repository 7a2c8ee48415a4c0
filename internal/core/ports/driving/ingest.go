package driving

import "context"

// IngestService runs the extract-transform-load pipeline for uploaded
// documents. Once started, an ingestion runs to completion or failure;
// there is no mid-flight cancel.
type IngestService interface {
	// Index extracts the document's rows, transforms and embeds them,
	// and loads the resulting vectors into the index. Batch-level upsert
	// failures are tolerated and reported; the affected document stays
	// PENDING and the trigger can be re-run.
	Index(ctx context.Context, documentID string) error
}
