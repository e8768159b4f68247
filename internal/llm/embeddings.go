package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// DefaultEmbeddingBatchSize is the number of texts sent per embeddings request
// when no batch size is configured.
const DefaultEmbeddingBatchSize = 32

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation
	BatchSize    int // Texts per request
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the expected vector size (from QDRANT_VECTOR_SIZE config).
// All embeddings returned by EmbedTexts will be validated against this size.
// A non-positive batchSize selects DefaultEmbeddingBatchSize.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize, batchSize int) *EmbeddingsClient {
	if batchSize <= 0 {
		batchSize = DefaultEmbeddingBatchSize
	}
	return &EmbeddingsClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		BatchSize:    batchSize,
		client:       http.DefaultClient,
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// Dimension returns the vector size every embedding is validated against.
func (c *EmbeddingsClient) Dimension() int {
	return c.ExpectedSize
}

// EmbedTexts generates embeddings for the given texts, BatchSize texts per request.
// Returns a slice of float32 vectors, one per input text and in input order.
// Validates that all returned vectors match the expected size.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.BatchSize {
		end := min(start+c.BatchSize, len(texts))
		vectors, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		result = append(result, vectors...)
	}
	return result, nil
}

func (c *EmbeddingsClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := postJSON(ctx, c.client, c.BaseURL+"/v1/embeddings", c.APIKey, EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	}, "")
	if err != nil {
		return nil, err
	}

	var embeddingsResp EmbeddingsResponse
	if err := decodeJSON(resp, &embeddingsResp); err != nil {
		return nil, err
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	// Servers may return data out of order; index is authoritative when it is a permutation.
	ordered := embeddingsResp.Data
	if indexed, ok := byIndex(embeddingsResp.Data); ok {
		ordered = indexed
	}

	result := make([][]float32, len(ordered))
	for i, data := range ordered {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}

func byIndex(data []EmbeddingData) ([]EmbeddingData, bool) {
	ordered := make([]EmbeddingData, len(data))
	seen := make([]bool, len(data))
	for _, d := range data {
		if d.Index < 0 || d.Index >= len(data) || seen[d.Index] {
			return nil, false
		}
		seen[d.Index] = true
		ordered[d.Index] = d
	}
	return ordered, true
}
