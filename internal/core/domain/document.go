package domain

// IndexingStatus tracks a document's progress through the ingestion
// pipeline. The loader is the sole writer of this flag.
type IndexingStatus string

const (
	// IndexingPending means the document has been uploaded but its
	// vectors are not yet (fully) in the index.
	IndexingPending IndexingStatus = "PENDING"

	// IndexingComplete means every chunk batch for the document was
	// upserted successfully. Deletion is only permitted in this state.
	IndexingComplete IndexingStatus = "COMPLETE"
)

// BlobMetadata is the typed metadata stored alongside a document blob.
// Named fields rather than an open string map, so a typo'd key is a
// compile error instead of a silent miss at the boundary.
type BlobMetadata struct {
	Filename       string
	Size           int64
	IndexingStatus IndexingStatus
}

// DocumentInfo is the public description of an uploaded document.
type DocumentInfo struct {
	ID             string         `json:"id"`
	Filename       string         `json:"filename"`
	Size           int64          `json:"size"`
	IndexingStatus IndexingStatus `json:"indexing_status"`
}
