package domain

import "fmt"

// RawRecord is one tabular row extracted from an uploaded document,
// before normalisation. Distractor columns are carried through extraction
// but dropped by the transformer.
type RawRecord struct {
	Question      string `csv:"question"`
	Distractor1   string `csv:"distractor1"`
	Distractor2   string `csv:"distractor2"`
	Distractor3   string `csv:"distractor3"`
	CorrectAnswer string `csv:"correct_answer"`
	Support       string `csv:"support"`
}

// Chunk is a normalised unit of text derived from one raw row.
// After transformation it carries an embedding of the configured
// dimensionality; a dimensionality mismatch with the embedding service
// is a configuration error, not a runtime one.
type Chunk struct {
	// DocumentID links the chunk to its source document.
	DocumentID string `json:"document_id"`

	// Ordinal is the chunk's position within the document. Together with
	// DocumentID it forms the vector ID, so it must be stable across
	// re-runs of the transformer on identical input.
	Ordinal int `json:"-"`

	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	Support       string `json:"support"`

	// Embedding is the vector representation. Empty until the embedding
	// fan-out has run. Never stored in index metadata - it lives only in
	// the vector payload.
	Embedding []float64 `json:"-"`
}

// VectorID derives the chunk's vector index identifier. The derivation is
// deterministic: re-running the transformer on identical input yields the
// same IDs, which is what makes prefix deletes exact.
func (c Chunk) VectorID() string {
	return fmt.Sprintf("%s_%d", c.DocumentID, c.Ordinal)
}

// Content returns the chunk's searchable text representation, used both
// as index metadata and as prompt context.
func (c Chunk) Content() string {
	return fmt.Sprintf("%s %s %s", c.Question, c.CorrectAnswer, c.Support)
}

// Metadata returns the chunk's fields as flat index metadata.
// The embedding is deliberately excluded.
func (c Chunk) Metadata() map[string]string {
	return map[string]string{
		"document_id":    c.DocumentID,
		"question":       c.Question,
		"correct_answer": c.CorrectAnswer,
		"support":        c.Support,
		"content":        c.Content(),
	}
}
