package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"teamprompt/internal/contextutil"
	"teamprompt/internal/vectorstore"
)

// Pinger checks that a model server is reachable and serves its configured model.
type Pinger interface {
	Ping(ctx context.Context) (bool, error)
}

// RootHandler answers GET / with a liveness message.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"message": "TeamPrompt Backend is running"})
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	collectionName     string
	embeddings         Pinger
	llm                Pinger
	embeddingDimension int
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. embeddings and llm may be nil,
// in which case their checks are skipped.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collectionName string, embeddings, llm Pinger, embeddingDimension int) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		collectionName:     collectionName,
		embeddings:         embeddings,
		llm:                llm,
		embeddingDimension: embeddingDimension,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	EmbeddingDimension int `json:"embedding_dimension"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP reports the status of the vector store and the model servers.
// An unreachable vector store makes the service unhealthy (503). Model server
// failures only degrade it.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if h.checkVectorStore(checkCtx, logger) {
		checks["vector_store"] = "ok"
	} else {
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	}
	vectorStoreOK := len(issues) == 0

	for _, c := range []struct {
		name   string
		pinger Pinger
	}{
		{"embeddings", h.embeddings},
		{"llm", h.llm},
	} {
		if c.pinger == nil {
			continue
		}
		checks[c.name] = h.checkModel(checkCtx, logger, c.name, c.pinger)
		if checks[c.name] == "error" {
			issues = append(issues, c.name+"_unavailable")
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case !vectorStoreOK:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:             status,
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		Checks:             checks,
		EmbeddingDimension: h.embeddingDimension,
		Issues:             issues,
	})
}

// checkVectorStore checks if the vector store is accessible.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) bool {
	exists, err := h.vectorStore.CollectionExists(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	if !exists {
		logger.WarnContext(ctx, "vector store collection does not exist", "collection", h.collectionName)
		return false
	}
	return true
}

// checkModel returns "ok", "model_not_listed" or "error".
func (h *HealthHandler) checkModel(ctx context.Context, logger *slog.Logger, name string, p Pinger) string {
	listed, err := p.Ping(ctx)
	if err != nil {
		logger.WarnContext(ctx, "model server health check failed", "component", name, "error", err)
		return "error"
	}
	if !listed {
		return "model_not_listed"
	}
	return "ok"
}
