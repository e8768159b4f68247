package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teamprompt"

// Metrics holds the Prometheus collectors of the backend.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsTotal  *prometheus.CounterVec
	ingestDuration  *prometheus.HistogramVec
	chunksCreated   prometheus.Counter
	chunksPerDoc    prometheus.Histogram
	retrievalTotal  *prometheus.CounterVec
	retrievalHits   *prometheus.HistogramVec
	retrievalLength *prometheus.HistogramVec
}

// New creates a Metrics value backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
		),
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "documents_total",
				Help:      "Total processed documents by outcome.",
			},
			[]string{"status"},
		),
		ingestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "document_duration_seconds",
				Help:      "Document processing duration in seconds by outcome.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		chunksCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "chunks_total",
				Help:      "Total chunks written to the vector store.",
			},
		),
		chunksPerDoc: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "chunks_per_document",
				Help:      "Distribution of chunks per indexed document.",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			},
		),
		retrievalTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rag",
				Name:      "requests_total",
				Help:      "Total retrieval requests by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		retrievalHits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rag",
				Name:      "retrieved_chunks",
				Help:      "Distribution of retrieved chunks per request.",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 20},
			},
			[]string{"endpoint"},
		),
		retrievalLength: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rag",
				Name:      "duration_seconds",
				Help:      "Retrieval and generation duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.documentsTotal,
		m.ingestDuration,
		m.chunksCreated,
		m.chunksPerDoc,
		m.retrievalTotal,
		m.retrievalHits,
		m.retrievalLength,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations labeled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.requestTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordDocument records one processed document. status is "indexed",
// "skipped" or "failed".
func (m *Metrics) RecordDocument(status string, chunks int, duration time.Duration) {
	if m == nil {
		return
	}
	m.documentsTotal.WithLabelValues(status).Inc()
	m.ingestDuration.WithLabelValues(status).Observe(duration.Seconds())
	if status == "indexed" {
		m.chunksCreated.Add(float64(chunks))
		m.chunksPerDoc.Observe(float64(chunks))
	}
}

// RecordRetrieval records one query or chat request.
func (m *Metrics) RecordRetrieval(endpoint string, results int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "no_context"
	}
	m.retrievalTotal.WithLabelValues(endpoint, outcome).Inc()
	m.retrievalLength.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err == nil {
		m.retrievalHits.WithLabelValues(endpoint).Observe(float64(results))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
