package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
	"github.com/custodia-labs/ragstack/internal/core/ports/driving"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultAnswerTTL is how long generated answers stay cached.
const DefaultAnswerTTL = 15 * time.Second

// refusalSentence is the fixed sentence the model is instructed to emit
// when the retrieved context cannot support an answer.
const refusalSentence = "I apologize, but I don't have enough relevant information in the provided context to answer this question accurately."

// ChatConfig holds the chat defaults, validated at startup.
type ChatConfig struct {
	// AnswerTTL is the cache lifetime for generated answers.
	// Zero means DefaultAnswerTTL.
	AnswerTTL time.Duration
}

// ChatService orchestrates retrieval, the answer cache, prompt
// construction and the generative call.
type ChatService struct {
	retrieval driving.RetrievalService
	generator driven.GenerativeService
	embedder  driven.EmbeddingService
	cache     driven.Cache
	cfg       ChatConfig
}

// NewChatService creates a new chat service.
func NewChatService(
	retrieval driving.RetrievalService,
	generator driven.GenerativeService,
	embedder driven.EmbeddingService,
	cache driven.Cache,
	cfg ChatConfig,
) *ChatService {
	if cfg.AnswerTTL == 0 {
		cfg.AnswerTTL = DefaultAnswerTTL
	}
	return &ChatService{
		retrieval: retrieval,
		generator: generator,
		embedder:  embedder,
		cache:     cache,
		cfg:       cfg,
	}
}

// GenerateResponse answers the query from retrieved context.
//
// Supporting documents are always freshly retrieved, even on a cache hit:
// the cache holds only the generated answer, and the document list is
// allowed to drift from the answer's generation time. The cache key is
// the raw query text with no normalisation, so queries differing only in
// whitespace or casing miss the cache. Known limitation, kept on purpose.
func (s *ChatService) GenerateResponse(ctx context.Context, query string, opts domain.QueryOptions) (domain.Answer, []domain.QueryResult, error) {
	logger.Section("Chat")

	docs, err := s.retrieval.Query(ctx, query, opts)
	if err != nil {
		return domain.Answer{}, nil, fmt.Errorf("retrieve context: %w", err)
	}

	if answer, ok := s.cachedAnswer(ctx, query); ok {
		logger.Info("Cache hit for query")
		return answer, docs, nil
	}

	prompt := buildPrompt(query, docs)
	logger.Debug("Prompt: %d characters, %d context documents", len(prompt), len(docs))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		// Atomic failure: the already-retrieved documents are not
		// returned alongside a generation error.
		return domain.Answer{}, nil, fmt.Errorf("generate answer: %w", err)
	}

	relevancy, err := s.relevancy(ctx, query, text)
	if err != nil {
		return domain.Answer{}, nil, fmt.Errorf("score answer: %w", err)
	}

	answer := domain.Answer{Text: text, Relevancy: relevancy}
	s.storeAnswer(ctx, query, answer)

	return answer, docs, nil
}

// cachedAnswer looks the raw query up in the cache. Every cache problem,
// including a corrupt stored entry, downgrades to a miss.
func (s *ChatService) cachedAnswer(ctx context.Context, query string) (domain.Answer, bool) {
	value, ok, err := s.cache.Get(ctx, query)
	if err != nil {
		logger.Warn("Cache get failed, treating as miss: %v", err)
		return domain.Answer{}, false
	}
	if !ok {
		return domain.Answer{}, false
	}

	var answer domain.Answer
	if err := json.Unmarshal([]byte(value), &answer); err != nil {
		logger.Warn("Cache entry malformed, treating as miss: %v", err)
		return domain.Answer{}, false
	}
	return answer, true
}

// storeAnswer caches the generated answer. A failed cache write never
// fails the caller's operation.
func (s *ChatService) storeAnswer(ctx context.Context, query string, answer domain.Answer) {
	data, err := json.Marshal(answer)
	if err != nil {
		logger.Warn("Cache serialisation failed: %v", err)
		return
	}
	if err := s.cache.Set(ctx, query, string(data), s.cfg.AnswerTTL); err != nil {
		logger.Warn("Cache set failed: %v", err)
	}
}

// relevancy scores the answer as the cosine similarity between its
// embedding and the query's embedding.
func (s *ChatService) relevancy(ctx context.Context, query, answer string) (float64, error) {
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("embed query: %w", err)
	}
	answerVec, err := s.embedder.Embed(ctx, answer)
	if err != nil {
		return 0, fmt.Errorf("embed answer: %w", err)
	}
	return cosineSimilarity(queryVec, answerVec), nil
}

// buildPrompt assembles the strict grounded-answer prompt from the
// retrieved documents' content.
func buildPrompt(query string, docs []domain.QueryResult) string {
	var context strings.Builder
	for _, doc := range docs {
		content := doc.Metadata["content"]
		if content == "" {
			continue
		}
		if context.Len() > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString("Relevant information: ")
		context.WriteString(content)
	}

	var b strings.Builder
	b.WriteString("You are an AI assistant. Answer the user's query using ONLY the context below. ")
	b.WriteString("Do not use outside knowledge. If the context does not contain enough relevant ")
	b.WriteString("information to answer accurately, reply with exactly: \"")
	b.WriteString(refusalSentence)
	b.WriteString("\"\n\nContext:\n")
	b.WriteString(context.String())
	b.WriteString("\n\nUser query: ")
	b.WriteString(query)
	return b.String()
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
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
