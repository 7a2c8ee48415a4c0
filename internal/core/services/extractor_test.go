package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blobmem "github.com/custodia-labs/ragstack/internal/adapters/driven/blobstore/memory"
	"github.com/custodia-labs/ragstack/internal/core/domain"
)

const sampleCSV = `question,distractor1,distractor2,distractor3,correct_answer,support
"What covers most of Earth?",land,ice,forest,water,"About 71% of Earth's surface is covered in water."
"What is H2O?",salt,air,fire,water,"H2O is the chemical formula for water."
`

func seedBlob(t *testing.T, blobs *blobmem.Store, key, content string) {
	t.Helper()
	meta := domain.BlobMetadata{Filename: key + ".csv", Size: int64(len(content)), IndexingStatus: domain.IndexingPending}
	require.NoError(t, blobs.Put(context.Background(), key, []byte(content), meta))
}

func TestExtractParsesCSVRecords(t *testing.T) {
	blobs := blobmem.NewStore()
	seedBlob(t, blobs, "doc-a", sampleCSV)
	extractor := NewExtractor(blobs)

	records, failures := extractor.Extract(context.Background(), []string{"doc-a"})

	assert.Empty(t, failures)
	require.Len(t, records, 2)
	assert.Equal(t, "What covers most of Earth?", records[0].Question)
	assert.Equal(t, "water", records[0].CorrectAnswer)
	assert.Equal(t, "About 71% of Earth's surface is covered in water.", records[0].Support)
	assert.Equal(t, "land", records[0].Distractor1)
	assert.Equal(t, "H2O is the chemical formula for water.", records[1].Support)
}

func TestExtractIsolatesFailuresPerKey(t *testing.T) {
	blobs := blobmem.NewStore()
	seedBlob(t, blobs, "doc-good", sampleCSV)
	extractor := NewExtractor(blobs)

	records, failures := extractor.Extract(context.Background(), []string{"doc-missing", "doc-good"})

	// The healthy input's records survive the sibling's failure.
	assert.Len(t, records, 2)
	require.Len(t, failures, 1)
	assert.Equal(t, "doc-missing", failures[0].Key)
	assert.ErrorIs(t, failures[0].Err, domain.ErrBlobNotFound)
}

func TestExtractMalformedCSV(t *testing.T) {
	blobs := blobmem.NewStore()
	seedBlob(t, blobs, "doc-bad", "question,correct_answer\n\"unterminated")
	extractor := NewExtractor(blobs)

	records, failures := extractor.Extract(context.Background(), []string{"doc-bad"})

	assert.Empty(t, records)
	require.Len(t, failures, 1)
	assert.Equal(t, "doc-bad", failures[0].Key)
}

func TestExtractNoKeys(t *testing.T) {
	extractor := NewExtractor(blobmem.NewStore())

	records, failures := extractor.Extract(context.Background(), nil)

	assert.Empty(t, records)
	assert.Empty(t, failures)
}
