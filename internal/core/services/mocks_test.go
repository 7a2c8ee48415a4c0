package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
)

// mockEmbedder returns canned vectors per input text, falling back to
// defaultVec for unknown inputs.
type mockEmbedder struct {
	vectors    map[string][]float64
	defaultVec []float64
	err        error

	mu    sync.Mutex
	calls []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	if m.defaultVec != nil {
		return m.defaultVec, nil
	}
	return []float64{1, 0, 0}, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }

func (m *mockEmbedder) ModelName() string { return "mock-embedder" }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockIndex serves canned query matches and records upserts. upsertErr,
// when set, decides per batch whether the upsert fails.
type mockIndex struct {
	matches  []domain.Match
	queryErr error

	upsertErr func(vectors []driven.Vector) error
	listErr   error
	deleteErr error

	mu       sync.Mutex
	upserted []driven.Vector
	deleted  []string
}

func (m *mockIndex) Upsert(_ context.Context, vectors []driven.Vector) error {
	if m.upsertErr != nil {
		if err := m.upsertErr(vectors); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.upserted = append(m.upserted, vectors...)
	m.mu.Unlock()
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ []float64, topK int) ([]domain.Match, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK < len(m.matches) {
		return m.matches[:topK], nil
	}
	return m.matches, nil
}

func (m *mockIndex) Delete(_ context.Context, ids []string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	m.deleted = append(m.deleted, ids...)
	m.mu.Unlock()
	return nil
}

// List pages with numeric offset tokens, the same scheme as the memory
// index adapter. A truncated page carries a continuation token; an empty
// token means the listing is exhausted.
func (m *mockIndex) List(_ context.Context, prefix string, limit int, token string) ([]string, string, error) {
	if m.listErr != nil {
		return nil, "", m.listErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := make(map[string]bool, len(m.deleted))
	for _, id := range m.deleted {
		deleted[id] = true
	}

	var ids []string
	for _, v := range m.upserted {
		if deleted[v.ID] {
			continue
		}
		if strings.HasPrefix(v.ID, prefix) {
			ids = append(ids, v.ID)
		}
	}

	offset := 0
	if token != "" {
		var err error
		offset, err = strconv.Atoi(token)
		if err != nil {
			return nil, "", fmt.Errorf("bad pagination token %q", token)
		}
	}
	if offset >= len(ids) {
		return nil, "", nil
	}

	end := offset + limit
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	} else {
		end = len(ids)
	}
	return ids[offset:end], next, nil
}

// mockGenerator returns a canned completion and captures every prompt.
type mockGenerator struct {
	response string
	err      error

	mu      sync.Mutex
	prompts []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenerator) ModelName() string { return "mock-generator" }

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockCache is an always-available in-process cache that records the TTL
// of every write.
type mockCache struct {
	getErr error
	setErr error

	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{
		entries: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *mockCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *mockCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}
