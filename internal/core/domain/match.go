package domain

// Match is a raw vector index hit. It is produced per query and never
// persisted.
type Match struct {
	// ID is the vector identifier ("{document_id}_{ordinal}").
	ID string `json:"id"`

	// Score is the vector similarity reported by the index.
	Score float64 `json:"score"`

	// Metadata carries the chunk fields stored alongside the vector.
	Metadata map[string]string `json:"metadata"`
}

// QueryResult is a match that survived filtering and re-ranking.
// Score is the final composite ranking score; VectorScore preserves the
// original similarity for the documented tie-break.
type QueryResult struct {
	ID          string            `json:"id"`
	Score       float64           `json:"score"`
	VectorScore float64           `json:"vector_score"`
	Metadata    map[string]string `json:"metadata"`
}

// Answer is a generated response with its relevancy score: the cosine
// similarity between the answer's embedding and the query's embedding,
// used as a confidence signal.
type Answer struct {
	Text      string  `json:"text"`
	Relevancy float64 `json:"relevancy"`
}

// QueryOptions carries per-request overrides for retrieval.
// A nil field means "use the configured default". An explicit TopK is an
// unconditional request for exactly that many results and disables the
// adaptive cutoff.
type QueryOptions struct {
	TopK     *int
	MinScore *float64
}
