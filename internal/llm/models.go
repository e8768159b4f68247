package llm

import (
	"context"
	"fmt"
	"net/http"
)

// ModelInfo is one entry of the /v1/models listing.
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelsResponse represents the response from the /v1/models endpoint.
type ModelsResponse struct {
	Data []ModelInfo `json:"data"`
}

// listModels returns the models served at baseURL.
func listModels(ctx context.Context, client *http.Client, baseURL, apiKey string) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create models request: %w", err)
	}

	resp, err := send(client, req, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var modelsResp ModelsResponse
	if err := decodeJSON(resp, &modelsResp); err != nil {
		return nil, err
	}
	return modelsResp.Data, nil
}

// Ping checks that the chat server is reachable and reports whether the
// configured model is among the models it serves. Servers that host a single
// model often report it under another name, so a missing model is not an error.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	models, err := listModels(ctx, c.client, c.BaseURL, c.APIKey)
	if err != nil {
		return false, err
	}
	return hasModel(models, c.Model), nil
}

// Ping checks that the embeddings server is reachable and reports whether
// it lists the configured model.
func (c *EmbeddingsClient) Ping(ctx context.Context) (bool, error) {
	models, err := listModels(ctx, c.client, c.BaseURL, c.APIKey)
	if err != nil {
		return false, err
	}
	return hasModel(models, c.Model), nil
}

func hasModel(models []ModelInfo, name string) bool {
	for _, model := range models {
		if model.ID == name {
			return true
		}
	}
	return false
}
