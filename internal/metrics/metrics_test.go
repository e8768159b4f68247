package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Handler() status = %d, want 200", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	return string(body)
}

func TestMetrics_RecordDocument(t *testing.T) {
	m := New()
	m.RecordDocument("indexed", 4, 10*time.Millisecond)
	m.RecordDocument("failed", 0, time.Millisecond)

	body := scrape(t, m)
	for _, want := range []string{
		`teamprompt_ingest_documents_total{status="indexed"} 1`,
		`teamprompt_ingest_documents_total{status="failed"} 1`,
		`teamprompt_ingest_chunks_total 4`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_RecordRetrieval(t *testing.T) {
	m := New()
	m.RecordRetrieval("query", 3, time.Millisecond, nil)
	m.RecordRetrieval("chat", 0, time.Millisecond, nil)
	m.RecordRetrieval("chat", 0, time.Millisecond, errors.New("boom"))

	body := scrape(t, m)
	for _, want := range []string{
		`teamprompt_rag_requests_total{endpoint="query",outcome="hit"} 1`,
		`teamprompt_rag_requests_total{endpoint="chat",outcome="no_context"} 1`,
		`teamprompt_rag_requests_total{endpoint="chat",outcome="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Delete("/api/documents/{filename}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/documents/a.pdf", nil))

	body := scrape(t, m)
	want := `teamprompt_http_requests_total{method="DELETE",route="/api/documents/{filename}",status="404"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("metrics output missing %q\n%s", want, body)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordDocument("indexed", 1, time.Second)
	m.RecordRetrieval("query", 1, time.Second, nil)

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("nil Middleware() did not call next handler")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil Handler() status = %d, want 404", rec.Code)
	}
}
