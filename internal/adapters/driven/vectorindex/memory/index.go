// Package memory provides an in-process vector index for tests and local
// runs, using brute-force cosine similarity.
package memory

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	values   []float64
	metadata map[string]string
}

// Index is an in-memory vector index. Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewIndex creates a new in-memory vector index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]entry),
	}
}

// Upsert stores vectors, replacing existing ones by ID.
func (x *Index) Upsert(_ context.Context, vectors []driven.Vector) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, v := range vectors {
		x.entries[v.ID] = entry{values: v.Values, metadata: v.Metadata}
	}
	return nil
}

// Query returns the topK nearest vectors by cosine similarity, descending.
// Ties sort by ID so repeated queries produce identical orderings.
func (x *Index) Query(_ context.Context, vector []float64, topK int) ([]domain.Match, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]domain.Match, 0, len(x.entries))
	for id, e := range x.entries {
		matches = append(matches, domain.Match{
			ID:       id,
			Score:    cosineSimilarity(vector, e.values),
			Metadata: e.metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes vectors by ID.
func (x *Index) Delete(_ context.Context, ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, id := range ids {
		delete(x.entries, id)
	}
	return nil
}

// List returns up to limit IDs with the given prefix. The pagination
// token is the numeric offset into the sorted ID list.
func (x *Index) List(_ context.Context, prefix string, limit int, token string) ([]string, string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var all []string
	for id := range x.entries {
		if strings.HasPrefix(id, prefix) {
			all = append(all, id)
		}
	}
	sort.Strings(all)

	offset := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, "", err
		}
		offset = n
	}
	if offset >= len(all) {
		return nil, "", nil
	}

	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[offset:end], next, nil
}

// Count returns the number of stored vectors.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
