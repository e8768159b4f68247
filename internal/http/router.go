package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"teamprompt/internal/handlers"
	"teamprompt/internal/metrics"
	"teamprompt/internal/rag"
	"teamprompt/internal/vectorstore"
)

// DocumentService indexes uploads and manages the document registry.
type DocumentService interface {
	handlers.DocumentIndexer
	handlers.DocumentManager
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	RAGEngine rag.Engine
	Documents DocumentService

	VectorStore        vectorstore.VectorStore
	CollectionName     string
	Embeddings         handlers.Pinger // optional
	LLM                handlers.Pinger // optional
	EmbeddingDimension int
	EmbeddingModelName string

	Metrics            *metrics.Metrics // optional
	CORSAllowedOrigins []string
	MaxUploadBytes     int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.CORSAllowedOrigins))
	r.Use(deps.Metrics.Middleware)

	healthHandler := handlers.NewHealthHandler(
		deps.VectorStore,
		deps.CollectionName,
		deps.Embeddings,
		deps.LLM,
		deps.EmbeddingDimension,
	)
	documentsHandler := handlers.NewDocumentsHandler(deps.Documents, deps.EmbeddingModelName)

	r.Get("/", handlers.RootHandler)
	r.Method(http.MethodGet, "/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/upload", handlers.NewUploadHandler(deps.Documents, deps.MaxUploadBytes))
		r.Method(http.MethodPost, "/query", handlers.NewQueryHandler(deps.RAGEngine))
		r.Method(http.MethodPost, "/chat", handlers.NewChatHandler(deps.RAGEngine))
		r.Get("/documents", documentsHandler.List)
		r.Delete("/documents/*", documentsHandler.Delete)
		r.Get("/stats", documentsHandler.Stats)
	})

	return r
}
