package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstack/internal/core/domain"
)

func matchesWithScores(scores ...float64) []domain.Match {
	matches := make([]domain.Match, len(scores))
	for i, score := range scores {
		matches[i] = domain.Match{
			ID:       "doc_" + string(rune('a'+i)),
			Score:    score,
			Metadata: map[string]string{"content": "some supporting text"},
		}
	}
	return matches
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestElbowCutoff(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{
			name:   "sharp drop cuts after the cliff",
			scores: []float64{0.95, 0.94, 0.93, 0.40, 0.35},
			want:   2,
		},
		{
			name:   "linear decay keeps everything",
			scores: []float64{0.9, 0.8, 0.7, 0.6, 0.5},
			want:   4,
		},
		{
			name:   "single score",
			scores: []float64{0.9},
			want:   0,
		},
		{
			name:   "empty",
			scores: nil,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, elbowCutoff(tt.scores, DefaultElbowThreshold))
		})
	}
}

func TestQueryAppliesAdaptiveCutoff(t *testing.T) {
	index := &mockIndex{matches: matchesWithScores(0.95, 0.94, 0.93, 0.40, 0.35)}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	results, err := svc.Query(context.Background(), "what is water", domain.QueryOptions{})

	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestQueryTopKOverrideSkipsCutoff(t *testing.T) {
	index := &mockIndex{matches: matchesWithScores(0.95, 0.94, 0.93, 0.40, 0.35)}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	results, err := svc.Query(context.Background(), "what is water", domain.QueryOptions{TopK: intPtr(5)})

	require.NoError(t, err)
	// An explicit top-k is an unconditional request for that many results.
	assert.Len(t, results, 5)
}

func TestQueryMinScoreFiltersBeforeCutoff(t *testing.T) {
	index := &mockIndex{matches: matchesWithScores(0.9, 0.8, 0.2, 0.1)}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	results, err := svc.Query(context.Background(), "q", domain.QueryOptions{
		TopK:     intPtr(10),
		MinScore: floatPtr(0.5),
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.VectorScore, 0.5)
	}
}

func TestQueryEmptyIndexReturnsEmpty(t *testing.T) {
	svc := NewRetrievalService(&mockEmbedder{}, &mockIndex{}, RetrievalConfig{TopK: 10})

	results, err := svc.Query(context.Background(), "q", domain.QueryOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryEmbeddingFailureAborts(t *testing.T) {
	embedder := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	svc := NewRetrievalService(embedder, &mockIndex{}, RetrievalConfig{TopK: 10})

	results, err := svc.Query(context.Background(), "q", domain.QueryOptions{})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Nil(t, results)
}

func TestQueryIndexFailureAborts(t *testing.T) {
	index := &mockIndex{queryErr: domain.ErrIndexUnavailable}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	_, err := svc.Query(context.Background(), "q", domain.QueryOptions{})

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestQueryRejectsUnsortedMatches(t *testing.T) {
	index := &mockIndex{matches: []domain.Match{
		{ID: "a", Score: 0.5, Metadata: map[string]string{}},
		{ID: "b", Score: 0.9, Metadata: map[string]string{}},
	}}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	_, err := svc.Query(context.Background(), "q", domain.QueryOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRerankBoostsLexicalMatches(t *testing.T) {
	// Identical vector scores; the match whose content shares the query's
	// terms must rank first on the composite score.
	index := &mockIndex{matches: []domain.Match{
		{ID: "a", Score: 0.8, Metadata: map[string]string{"content": "photosynthesis in plants"}},
		{ID: "b", Score: 0.8, Metadata: map[string]string{"content": "water covers most of earth"}},
	}}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	results, err := svc.Query(context.Background(), "how much water covers earth", domain.QueryOptions{TopK: intPtr(2)})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRerankIsDeterministic(t *testing.T) {
	// Fully tied composite scores resolve by ID, so back-to-back queries
	// agree on the order.
	index := &mockIndex{matches: []domain.Match{
		{ID: "b", Score: 0.8, Metadata: map[string]string{"content": "same text"}},
		{ID: "a", Score: 0.8, Metadata: map[string]string{"content": "same text"}},
		{ID: "c", Score: 0.8, Metadata: map[string]string{"content": "same text"}},
	}}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	first, err := svc.Query(context.Background(), "unrelated query", domain.QueryOptions{TopK: intPtr(3)})
	require.NoError(t, err)
	second, err := svc.Query(context.Background(), "unrelated query", domain.QueryOptions{TopK: intPtr(3)})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "a", first[0].ID)
	assert.Equal(t, "b", first[1].ID)
	assert.Equal(t, "c", first[2].ID)
}

func TestQueryResultKeepsVectorScore(t *testing.T) {
	index := &mockIndex{matches: matchesWithScores(0.9)}
	svc := NewRetrievalService(&mockEmbedder{}, index, RetrievalConfig{TopK: 10})

	results, err := svc.Query(context.Background(), "q", domain.QueryOptions{TopK: intPtr(1)})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.9, results[0].VectorScore, 1e-9)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"what", "s", "earth", "s", "surface", "71", "water"},
		tokenize("What's Earth's surface? 71% water!"))
	assert.Empty(t, tokenize("  ,.!  "))
}

func TestTermFrequencyCosine(t *testing.T) {
	assert.InDelta(t, 1.0, termFrequencyCosine([]string{"a", "b"}, []string{"a", "b"}), 1e-9)
	assert.Zero(t, termFrequencyCosine([]string{"a"}, []string{"b"}))
	assert.Zero(t, termFrequencyCosine(nil, []string{"a"}))
}

func TestTermOverlap(t *testing.T) {
	assert.InDelta(t, 0.5, termOverlap([]string{"a", "b"}, []string{"a", "c"}), 1e-9)
	assert.Zero(t, termOverlap(nil, []string{"a"}))
}
