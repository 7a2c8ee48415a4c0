package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
	"github.com/custodia-labs/ragstack/internal/core/ports/driving"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultElbowThreshold is the minimum fraction of the total score decay
// the elbow point must deviate from linear to count as significant.
const DefaultElbowThreshold = 0.05

// Composite score weights for re-ranking.
const (
	vectorWeight  = 0.4
	lexicalWeight = 0.4
	overlapWeight = 0.2
)

// RetrievalConfig holds the retrieval defaults, validated at startup.
type RetrievalConfig struct {
	// TopK is the default number of nearest neighbours requested from
	// the index when no per-query override is given.
	TopK int

	// MinScore is the default minimum vector similarity. Matches below
	// it are discarded before the adaptive cutoff.
	MinScore float64

	// ElbowThreshold is the significance threshold for the adaptive
	// cutoff. Zero means DefaultElbowThreshold.
	ElbowThreshold float64
}

// RetrievalService answers queries against the vector index. Each call is
// stateless; the embedding service and index clients are shared across
// in-flight queries and must be safe for concurrent use.
type RetrievalService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	cfg      RetrievalConfig
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, index driven.VectorIndex, cfg RetrievalConfig) *RetrievalService {
	if cfg.ElbowThreshold == 0 {
		cfg.ElbowThreshold = DefaultElbowThreshold
	}
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		cfg:      cfg,
	}
}

// Query runs the retrieval pipeline: embed, nearest-neighbour query,
// minimum-score filter, adaptive cutoff, hybrid re-rank.
//
// An explicit TopK override is an unconditional request for exactly that
// many results, so it disables the adaptive cutoff. An embedding failure
// aborts the whole query; there are no partial results.
func (s *RetrievalService) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", text)

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	topK := s.cfg.TopK
	if opts.TopK != nil {
		topK = *opts.TopK
	}
	minScore := s.cfg.MinScore
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}
	logger.Debug("TopK: %d (override=%t), MinScore: %.3f", topK, opts.TopK != nil, minScore)

	matches, err := s.index.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Index returned %d matches", len(matches))

	filtered := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= minScore {
			filtered = append(filtered, m)
		}
	}
	logger.Debug("After min-score filter: %d matches", len(filtered))

	// The elbow significance test assumes descending scores; a store that
	// returns unsorted matches would silently invert it. Refuse instead.
	for i := 1; i < len(filtered); i++ {
		if filtered[i].Score > filtered[i-1].Score {
			return nil, fmt.Errorf("index returned matches out of descending order: %w", domain.ErrInvalidInput)
		}
	}

	// An explicit top-k asks for exactly that many results; only the
	// default path gets the adaptive cutoff.
	if opts.TopK == nil && len(filtered) > 0 {
		scores := make([]float64, len(filtered))
		for i, m := range filtered {
			scores[i] = m.Score
		}
		cutoff := elbowCutoff(scores, s.cfg.ElbowThreshold)
		filtered = filtered[:cutoff+1]
		logger.Info("Adaptive cutoff at index %d, keeping %d results", cutoff, len(filtered))
	}

	results := s.rerank(text, filtered)
	logger.Info("Final results: %d", len(results))
	return results, nil
}

// elbowCutoff finds the knee in a descending score sequence: the index
// with maximum perpendicular distance from the straight line between the
// first and last points. When that distance is below threshold times the
// total decay, the sequence is treated as one plateau and the last index
// is returned so the caller keeps everything.
func elbowCutoff(scores []float64, threshold float64) int {
	if len(scores) == 0 {
		return 0
	}
	if len(scores) == 1 {
		// Line vector is zero for a single point; the maths below would
		// divide by it.
		return 0
	}

	n := len(scores)
	lineX := float64(n - 1)
	lineY := scores[n-1] - scores[0]
	lineNorm := math.Sqrt(lineX*lineX + lineY*lineY)

	elbow := 0
	maxDist := 0.0
	for i := 0; i < n; i++ {
		// Perpendicular distance of point (i, scores[i]) from the line
		// through the first and last points, via the 2D cross product.
		dx := float64(i)
		dy := scores[i] - scores[0]
		dist := math.Abs(dx*lineY-dy*lineX) / lineNorm
		if dist > maxDist {
			maxDist = dist
			elbow = i
		}
	}

	if maxDist < threshold*(scores[0]-scores[n-1]) {
		// Decay too gentle or noisy to have a real knee.
		return n - 1
	}
	return elbow
}

// rerank computes the hybrid composite score for each surviving match and
// sorts descending by it. Ties break by original vector score descending,
// then by ID ascending, giving a total order with no hidden
// nondeterminism from map iteration.
func (s *RetrievalService) rerank(query string, matches []domain.Match) []domain.QueryResult {
	queryTokens := tokenize(query)

	results := make([]domain.QueryResult, len(matches))
	for i, m := range matches {
		docTokens := tokenize(m.Metadata["content"])
		lexical := termFrequencyCosine(queryTokens, docTokens)
		overlap := termOverlap(queryTokens, docTokens)
		composite := vectorWeight*m.Score + lexicalWeight*lexical + overlapWeight*overlap

		logger.Debug("Rerank %s: vector=%.4f lexical=%.4f overlap=%.4f composite=%.4f",
			m.ID, m.Score, lexical, overlap, composite)

		results[i] = domain.QueryResult{
			ID:          m.ID,
			Score:       composite,
			VectorScore: m.Score,
			Metadata:    m.Metadata,
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].VectorScore != results[j].VectorScore {
			return results[i].VectorScore > results[j].VectorScore
		}
		return results[i].ID < results[j].ID
	})

	return results
}

// tokenize lowercases text and splits it into letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termFrequencyCosine computes the cosine similarity between the term
// frequency vectors of two token sequences. Returns 0 when either side
// has no tokens.
func termFrequencyCosine(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	freqA := termFrequencies(a)
	freqB := termFrequencies(b)

	var dot float64
	for term, fa := range freqA {
		if fb, ok := freqB[term]; ok {
			dot += fa * fb
		}
	}
	if dot == 0 {
		return 0
	}

	return dot / (vectorNorm(freqA) * vectorNorm(freqB))
}

// termOverlap returns the fraction of query tokens present in the
// document's token set. Returns 0 when the query has no tokens.
func termOverlap(queryTokens, docTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	docSet := make(map[string]struct{}, len(docTokens))
	for _, t := range docTokens {
		docSet[t] = struct{}{}
	}

	present := 0
	for _, t := range queryTokens {
		if _, ok := docSet[t]; ok {
			present++
		}
	}
	return float64(present) / float64(len(queryTokens))
}

func termFrequencies(tokens []string) map[string]float64 {
	freq := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

func vectorNorm(freq map[string]float64) float64 {
	var sum float64
	for _, f := range freq {
		sum += f * f
	}
	return math.Sqrt(sum)
}
