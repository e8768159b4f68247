package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teamprompt/internal/contextutil"
	"teamprompt/internal/indexer"
	"teamprompt/internal/storage"
)

// DocumentManager lists, deletes and reports on indexed documents.
type DocumentManager interface {
	ListDocuments(ctx context.Context) ([]storage.DocumentRecord, error)
	DeleteDocument(ctx context.Context, filename string) error
	Stats(ctx context.Context, embeddingModelName string) (*indexer.IndexingCoverageStats, error)
}

// DocumentsHandler serves the document registry endpoints.
type DocumentsHandler struct {
	manager            DocumentManager
	embeddingModelName string
}

// NewDocumentsHandler creates a new DocumentsHandler. embeddingModelName is
// folded into the index version reported by Stats.
func NewDocumentsHandler(manager DocumentManager, embeddingModelName string) *DocumentsHandler {
	return &DocumentsHandler{
		manager:            manager,
		embeddingModelName: embeddingModelName,
	}
}

// DocumentInfo describes one known document.
type DocumentInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	Strategy   string    `json:"strategy"`
	CharCount  int       `json:"char_count"`
	ChunkCount int       `json:"chunk_count"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentsResponse lists documents ordered by filename.
type DocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
}

// List handles GET /api/documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.manager.ListDocuments(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}

	resp := DocumentsResponse{Documents: make([]DocumentInfo, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, DocumentInfo{
			ID:         d.ID,
			Filename:   d.Filename,
			FileType:   d.FileType,
			Strategy:   d.Strategy,
			CharCount:  d.CharCount,
			ChunkCount: d.ChunkCount,
			Status:     d.Status,
			Error:      d.Error,
			UpdatedAt:  d.UpdatedAt,
		})
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Delete handles DELETE /api/documents/{filename}. The route is mounted as a
// wildcard so filenames of directory-ingested documents may contain slashes.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := chi.URLParam(r, "*")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	if err := h.manager.DeleteDocument(ctx, filename); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		handleServiceError(ctx, w, err, "Failed to delete document")
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document deleted via API", "filename", filename)
	writeJSON(ctx, w, http.StatusOK, map[string]string{
		"message":   "Document deleted",
		"file_name": filename,
	})
}

// Stats handles GET /api/stats.
func (h *DocumentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.manager.Stats(ctx, h.embeddingModelName)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to compute stats")
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}
