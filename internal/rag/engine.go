package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks teamprompt/internal/rag Engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"teamprompt/internal/contextutil"
	"teamprompt/internal/llm"
	"teamprompt/internal/metrics"
	"teamprompt/internal/service"
	"teamprompt/internal/storage"
	"teamprompt/internal/vectorstore"
)

const (
	// DefaultTopK is used when a request does not set TopK.
	DefaultTopK = 5
	// MaxTopK bounds TopK.
	MaxTopK = 20

	candidateMultiplier = 3
	maxCandidates       = 60
)

// NoResultsAnswer is returned by Chat when retrieval finds nothing.
const NoResultsAnswer = "I couldn't find any relevant information in the uploaded documents to answer this question."

const systemPrompt = "You are a helpful assistant that answers questions based on the provided context from the team's documents. " +
	"Answer the question using only the information from the context below. If the context doesn't contain " +
	"enough information to answer the question, say so. Cite the source file and section when possible."

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel generates answers from chat messages.
type ChatModel interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
	StreamChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams, callback func(chunk string) error) error
}

// Engine provides RAG (Retrieval-Augmented Generation) functionality.
type Engine interface {
	// Query retrieves the chunks most relevant to a query, best first.
	Query(ctx context.Context, req QueryRequest) ([]Result, error)
	// Chat answers a question from retrieved chunks.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat answers a question and streams the answer via callback.
	// It returns the sources once the answer is complete.
	StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) ([]Source, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunkRepo   storage.ChunkStore
	chatModel   ChatModel
	metrics     *metrics.Metrics
}

// NewEngine creates a new RAG engine. chunkRepo is used to load chunk text
// for points stored without a content payload and may be nil. m may be nil.
func NewEngine(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkRepo storage.ChunkStore,
	chatModel ChatModel,
	m *metrics.Metrics,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunkRepo:   chunkRepo,
		chatModel:   chatModel,
		metrics:     m,
	}
}

// Query retrieves chunks for req.
func (e *ragEngine) Query(ctx context.Context, req QueryRequest) ([]Result, error) {
	start := time.Now()
	results, err := e.retrieve(ctx, "query", req.Query, req.TopK, req.Filename)
	e.metrics.RecordRetrieval("query", len(results), time.Since(start), err)
	return results, err
}

// Chat answers req.Question using the retrieved chunks as context.
func (e *ragEngine) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	results, messages, err := e.prepareChat(ctx, req)
	if err != nil {
		e.metrics.RecordRetrieval("chat", 0, time.Since(start), err)
		return ChatResponse{}, err
	}
	if len(results) == 0 {
		e.metrics.RecordRetrieval("chat", 0, time.Since(start), nil)
		return ChatResponse{Answer: NoResultsAnswer, Sources: []Source{}}, nil
	}

	answer, err := e.chatModel.ChatWithMessages(ctx, messages, llm.ChatParams{Temperature: llm.DefaultTemperature})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		err = service.WrapKind(service.ErrExternalService, err, "failed to get LLM response")
		e.metrics.RecordRetrieval("chat", len(results), time.Since(start), err)
		return ChatResponse{}, err
	}

	logger.InfoContext(ctx, "chat completed", "chunks_used", len(results), "answer_length", len(answer))
	e.metrics.RecordRetrieval("chat", len(results), time.Since(start), nil)
	return ChatResponse{Answer: answer, Sources: sourcesOf(results)}, nil
}

// StreamChat answers req.Question and streams the answer via callback.
func (e *ragEngine) StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) ([]Source, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	results, messages, err := e.prepareChat(ctx, req)
	if err != nil {
		e.metrics.RecordRetrieval("chat_stream", 0, time.Since(start), err)
		return nil, err
	}
	if len(results) == 0 {
		e.metrics.RecordRetrieval("chat_stream", 0, time.Since(start), nil)
		if err := callback(NoResultsAnswer); err != nil {
			return nil, err
		}
		return []Source{}, nil
	}

	var callbackErr error
	err = e.chatModel.StreamChatWithMessages(ctx, messages, llm.ChatParams{Temperature: llm.DefaultTemperature}, func(chunk string) error {
		if err := callback(chunk); err != nil {
			callbackErr = err
			return err
		}
		return nil
	})
	if err != nil {
		if callbackErr == nil {
			logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
			err = service.WrapKind(service.ErrExternalService, err, "failed to stream LLM response")
		}
		e.metrics.RecordRetrieval("chat_stream", len(results), time.Since(start), err)
		return nil, err
	}

	e.metrics.RecordRetrieval("chat_stream", len(results), time.Since(start), nil)
	return sourcesOf(results), nil
}

func (e *ragEngine) prepareChat(ctx context.Context, req ChatRequest) ([]Result, []llm.Message, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, nil, &service.ValidationError{Field: "question", Message: "cannot be empty"}
	}

	results, err := e.retrieve(ctx, "chat", question, req.TopK, "")
	if err != nil || len(results) == 0 {
		return nil, nil, err
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("%s\n\n%s", question, formatContext(results))},
	}
	return results, messages, nil
}

func (e *ragEngine) retrieve(ctx context.Context, endpoint, query string, topK int, filename string) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &service.ValidationError{Field: "query", Message: "cannot be empty"}
	}
	k := clampTopK(topK)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, service.WrapKind(service.ErrExternalService, err, "failed to embed query")
	}
	if len(embeddings) == 0 {
		return nil, service.WrapKind(service.ErrExternalService, errors.New("no embedding returned"), "failed to embed query")
	}

	var filters map[string]any
	if filename != "" {
		filters = map[string]any{"filename": filename}
	}

	candidates := k * candidateMultiplier
	if candidates > maxCandidates {
		candidates = maxCandidates
	}
	hits, err := e.vectorStore.Search(ctx, e.collection, embeddings[0], candidates, filters)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return nil, service.WrapKind(service.ErrUnavailable, err, "failed to search vector store")
	}

	scorer := newLexicalScorer(query)
	seen := make(map[string]struct{}, len(hits))
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if _, dup := seen[hit.PointID]; dup {
			continue
		}
		seen[hit.PointID] = struct{}{}

		result, ok := e.toResult(ctx, hit)
		if !ok {
			continue
		}
		result.ScoreLexical = scorer.score(result.Content, result.Metadata.Heading)
		result.Score = result.ScoreVector + result.ScoreLexical
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	logger.InfoContext(ctx, "retrieval completed",
		"endpoint", endpoint,
		"candidates", len(hits),
		"results_count", len(results),
		"k_requested", k,
	)
	return results, nil
}

// toResult converts a search hit, loading the chunk text from SQLite when the
// payload carries none.
func (e *ragEngine) toResult(ctx context.Context, hit vectorstore.SearchResult) (Result, bool) {
	meta := metadataFrom(hit.Meta)
	content, _ := hit.Meta["content"].(string)

	if content == "" && e.chunkRepo != nil {
		chunk, err := e.chunkRepo.GetByID(ctx, hit.PointID)
		if err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to fetch chunk text", "chunk_id", hit.PointID, "error", err)
			return Result{}, false
		}
		content = chunk.Content
		if meta.Heading == "" {
			meta.Heading = chunk.Heading
		}
	}
	if content == "" {
		return Result{}, false
	}

	return Result{
		ChunkID:     hit.PointID,
		Content:     content,
		ScoreVector: float64(hit.Score),
		Metadata:    meta,
	}, true
}

func metadataFrom(payload map[string]any) Metadata {
	var meta Metadata
	meta.Filename, _ = payload["filename"].(string)
	meta.DocumentID, _ = payload["document_id"].(string)
	meta.Heading, _ = payload["heading"].(string)
	meta.DocumentType, _ = payload["document_type"].(string)
	meta.ChunkIndex, _ = intValue(payload["chunk_index"])
	meta.CharCount, _ = intValue(payload["char_count"])
	if blockIndex, ok := intValue(payload["block_index"]); ok {
		meta.BlockIndex = &blockIndex
	}
	return meta
}

// intValue accepts the integer representations payload values arrive in.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func clampTopK(k int) int {
	if k <= 0 {
		return DefaultTopK
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}

func formatContext(results []Result) string {
	var b strings.Builder
	b.WriteString("--- Context from documents ---\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "File: %s\n", r.Metadata.Filename)
		if r.Metadata.Heading != "" {
			fmt.Fprintf(&b, "Section: %s\n", r.Metadata.Heading)
		}
		fmt.Fprintf(&b, "Content: %s\n\n", r.Content)
	}
	b.WriteString("--- End Context ---")
	return b.String()
}

func sourcesOf(results []Result) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			ChunkID:    r.ChunkID,
			Filename:   r.Metadata.Filename,
			Heading:    r.Metadata.Heading,
			ChunkIndex: r.Metadata.ChunkIndex,
			Score:      r.Score,
		})
	}
	return sources
}
