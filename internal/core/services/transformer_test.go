package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

func TestTransformAssignsOrdinalsInInputOrder(t *testing.T) {
	transformer := NewTransformer(&mockEmbedder{})
	records := []domain.RawRecord{
		{Question: "q0", CorrectAnswer: "a0", Support: "s0", Distractor1: "d1"},
		{Question: "q1", CorrectAnswer: "a1", Support: "s1"},
	}

	chunks := transformer.Transform(records, "doc-a")

	require.Len(t, chunks, 2)
	assert.Equal(t, "doc-a_0", chunks[0].VectorID())
	assert.Equal(t, "doc-a_1", chunks[1].VectorID())
	assert.Equal(t, "q1", chunks[1].Question)

	// Distractors are dropped during normalisation.
	body, err := json.Marshal(chunks[0])
	require.NoError(t, err)
	assert.NotContains(t, string(body), "d1")
}

func TestTransformIsDeterministic(t *testing.T) {
	transformer := NewTransformer(&mockEmbedder{})
	records := []domain.RawRecord{{Question: "q"}, {Question: "q"}}

	first := transformer.Transform(records, "doc-a")
	second := transformer.Transform(records, "doc-a")

	assert.Equal(t, first, second)
}

func TestGenerateEmbeddingsAttachesVectors(t *testing.T) {
	embedder := &mockEmbedder{defaultVec: []float64{0.1, 0.2, 0.3}}
	transformer := NewTransformer(embedder)
	chunks := transformer.Transform([]domain.RawRecord{
		{Question: "q0"}, {Question: "q1"}, {Question: "q2"},
	}, "doc-a")

	embedded, err := transformer.GenerateEmbeddings(context.Background(), chunks)

	require.NoError(t, err)
	require.Len(t, embedded, 3)
	for _, c := range embedded {
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, c.Embedding)
	}
	// One remote call per chunk.
	assert.Equal(t, 3, embedder.callCount())
	// The input slice is untouched.
	assert.Empty(t, chunks[0].Embedding)
}

func TestGenerateEmbeddingsEmbedsChunkSerialisation(t *testing.T) {
	embedder := &mockEmbedder{}
	transformer := NewTransformer(embedder)
	chunks := transformer.Transform([]domain.RawRecord{
		{Question: "what is water", CorrectAnswer: "H2O", Support: "chemistry"},
	}, "doc-a")

	_, err := transformer.GenerateEmbeddings(context.Background(), chunks)

	require.NoError(t, err)
	require.Len(t, embedder.calls, 1)
	var embedded domain.Chunk
	require.NoError(t, json.Unmarshal([]byte(embedder.calls[0]), &embedded))
	assert.Equal(t, "what is water", embedded.Question)
	assert.Equal(t, "H2O", embedded.CorrectAnswer)
}

func TestGenerateEmbeddingsFailureFailsBatch(t *testing.T) {
	embedder := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	transformer := NewTransformer(embedder)
	chunks := transformer.Transform([]domain.RawRecord{{Question: "q"}}, "doc-a")

	embedded, err := transformer.GenerateEmbeddings(context.Background(), chunks)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Nil(t, embedded)
}

func TestGenerateEmbeddingsEmptyInput(t *testing.T) {
	transformer := NewTransformer(&mockEmbedder{})

	embedded, err := transformer.GenerateEmbeddings(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, embedded)
}
