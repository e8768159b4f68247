package handlers

import (
	"net/http"

	"teamprompt/internal/rag"
)

// QueryHandler handles retrieval requests.
type QueryHandler struct {
	engine rag.Engine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(engine rag.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest represents the HTTP request payload for a query.
type QueryRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k"`
	Filename string `json:"filename,omitempty"`
}

// QueryResponse represents the HTTP response payload for a query.
type QueryResponse struct {
	Query   string       `json:"query"`
	Results []rag.Result `json:"results"`
}

// ServeHTTP returns the chunks most relevant to the query.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	results, err := h.engine.Query(ctx, rag.QueryRequest{
		Query:    req.Query,
		TopK:     req.TopK,
		Filename: req.Filename,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process query")
		return
	}
	if results == nil {
		results = []rag.Result{}
	}

	writeJSON(ctx, w, http.StatusOK, QueryResponse{Query: req.Query, Results: results})
}
