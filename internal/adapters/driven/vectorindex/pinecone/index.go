// Package pinecone provides a vector index adapter for the Pinecone
// data-plane REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultTimeout is the request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// Config holds connection settings for the Pinecone index.
type Config struct {
	// Host is the index host URL (required), e.g.
	// https://my-index-abc123.svc.region.pinecone.io.
	Host string

	// APIKey authenticates data-plane requests (required).
	APIKey string

	// Namespace scopes all operations. Empty means the default namespace.
	Namespace string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Index is a minimal REST client to a Pinecone index.
type Index struct {
	client    *http.Client
	host      string
	apiKey    string
	namespace string
}

// NewIndex creates a new Pinecone index client.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("pinecone: host is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		host:      strings.TrimSuffix(cfg.Host, "/"),
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
	}, nil
}

type upsertRequest struct {
	Vectors   []vectorPayload `json:"vectors"`
	Namespace string          `json:"namespace,omitempty"`
}

type vectorPayload struct {
	ID       string            `json:"id"`
	Values   []float64         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type queryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace,omitempty"`
}

type listResponse struct {
	Vectors []struct {
		ID string `json:"id"`
	} `json:"vectors"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

// Upsert inserts or replaces the given vectors.
func (x *Index) Upsert(ctx context.Context, vectors []driven.Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	payload := make([]vectorPayload, len(vectors))
	for i, v := range vectors {
		payload[i] = vectorPayload{
			ID:       v.ID,
			Values:   v.Values,
			Metadata: v.Metadata,
		}
	}

	return x.post(ctx, "/vectors/upsert", upsertRequest{
		Vectors:   payload,
		Namespace: x.namespace,
	}, nil)
}

// Query returns the topK nearest neighbours with their metadata.
func (x *Index) Query(ctx context.Context, vector []float64, topK int) ([]domain.Match, error) {
	var resp queryResponse
	err := x.post(ctx, "/query", queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       x.namespace,
	}, &resp)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.Match, len(resp.Matches))
	for i, m := range resp.Matches {
		matches[i] = domain.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		}
	}
	return matches, nil
}

// Delete removes the given vector IDs.
func (x *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return x.post(ctx, "/vectors/delete", deleteRequest{
		IDs:       ids,
		Namespace: x.namespace,
	}, nil)
}

// List returns up to limit vector IDs starting with prefix, resuming
// from the pagination token.
func (x *Index) List(ctx context.Context, prefix string, limit int, token string) ([]string, string, error) {
	params := url.Values{}
	if prefix != "" {
		params.Set("prefix", prefix)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if token != "" {
		params.Set("paginationToken", token)
	}
	if x.namespace != "" {
		params.Set("namespace", x.namespace)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		x.host+"/vectors/list?"+params.Encode(),
		http.NoBody,
	)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	var resp listResponse
	if err := x.do(req, &resp); err != nil {
		return nil, "", err
	}

	ids := make([]string, len(resp.Vectors))
	for i, v := range resp.Vectors {
		ids[i] = v.ID
	}
	return ids, resp.Pagination.Next, nil
}

// post issues a JSON POST to the data plane and decodes the response
// into out when out is non-nil.
func (x *Index) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		x.host+path,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return x.do(req, out)
}

func (x *Index) do(req *http.Request, out any) error {
	req.Header.Set("Api-Key", x.apiKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: pinecone: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: pinecone: read response: %v", domain.ErrIndexUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: pinecone (status %d): %s", domain.ErrIndexUnavailable, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: pinecone: decode response: %v", domain.ErrIndexUnavailable, err)
		}
	}
	return nil
}
