package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"teamprompt/internal/indexer"
	"teamprompt/internal/metrics"
	ragmocks "teamprompt/internal/rag/mocks"
	"teamprompt/internal/storage"
	vsmocks "teamprompt/internal/vectorstore/mocks"
)

type stubDocuments struct{}

func (stubDocuments) Supports(filename string) bool { return strings.HasSuffix(filename, ".txt") }

func (stubDocuments) ProcessBatch(ctx context.Context, inputs []indexer.Input) []indexer.BatchItem {
	items := make([]indexer.BatchItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, indexer.BatchItem{Filename: in.Filename, Result: &indexer.Result{Filename: in.Filename}})
	}
	return items
}

func (stubDocuments) ListDocuments(ctx context.Context) ([]storage.DocumentRecord, error) {
	return nil, nil
}

func (stubDocuments) DeleteDocument(ctx context.Context, filename string) error {
	return storage.ErrNotFound
}

func (stubDocuments) Stats(ctx context.Context, embeddingModelName string) (*indexer.IndexingCoverageStats, error) {
	return &indexer.IndexingCoverageStats{ChunkerVersion: indexer.ChunkerVersion}, nil
}

func newTestRouter(t *testing.T, m *metrics.Metrics) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().CollectionExists(gomock.Any(), "rag-documents").Return(true, nil).AnyTimes()

	return NewRouter(&Deps{
		RAGEngine:          ragmocks.NewMockEngine(ctrl),
		Documents:          stubDocuments{},
		VectorStore:        store,
		CollectionName:     "rag-documents",
		EmbeddingDimension: 384,
		EmbeddingModelName: "all-MiniLM-L6-v2",
		Metrics:            m,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadBytes:     1 << 20,
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t, metrics.New())

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET root", http.MethodGet, "/", http.StatusOK},
		{"GET health", http.MethodGet, "/health", http.StatusOK},
		{"GET metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"POST upload without form", http.MethodPost, "/api/upload", http.StatusBadRequest},
		{"POST query with empty body", http.MethodPost, "/api/query", http.StatusBadRequest},
		{"POST chat with empty body", http.MethodPost, "/api/chat", http.StatusBadRequest},
		{"GET chat method not allowed", http.MethodGet, "/api/chat", http.StatusMethodNotAllowed},
		{"GET documents", http.MethodGet, "/api/documents", http.StatusOK},
		{"DELETE unknown document", http.MethodDelete, "/api/documents/missing.txt", http.StatusNotFound},
		{"GET stats", http.MethodGet, "/api/stats", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	router := newTestRouter(t, metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("Router should apply CORS middleware")
	}
}

func TestRouter_MetricsRecordRoutePattern(t *testing.T) {
	router := newTestRouter(t, metrics.New())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/documents", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `route="/api/documents"`) {
		t.Errorf("metrics output missing /api/documents route label:\n%s", w.Body.String())
	}
}

func TestRouter_WithoutMetrics(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /metrics without metrics status = %v, want %v", w.Code, http.StatusNotFound)
	}
}
