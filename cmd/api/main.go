package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamprompt/internal/chunker"
	"teamprompt/internal/config"
	"teamprompt/internal/extract"
	"teamprompt/internal/http"
	"teamprompt/internal/indexer"
	"teamprompt/internal/llm"
	"teamprompt/internal/metrics"
	"teamprompt/internal/rag"
	"teamprompt/internal/storage"
	"teamprompt/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API indexes uploaded team documents and answers questions about them
// with RAG (Retrieval-Augmented Generation).
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: TeamPrompt API
//   description: |
//     Upload PDF, DOCX, TXT, Markdown, CSV and HTML documents, then query or chat
//     with the chunks indexed from them.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
//   - multipart/form-data
// produces:
//   - application/json
//   - text/event-stream

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingModelName,
		cfg.QdrantVectorSize,
		cfg.EmbeddingBatchSize,
	)
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", embedder.Dimension())

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to create chunker: %v", err)
	}

	m := metrics.New()

	pipeline := indexer.NewPipeline(
		documentRepo,
		chunkRepo,
		extract.New(),
		ch,
		cfg.HeadingStrategy,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
	)
	pipeline.UseMetrics(m)
	slog.Info("Indexing pipeline initialized",
		"chunk_size", ch.ChunkSize(),
		"overlap", ch.Overlap(),
		"strategy", cfg.HeadingStrategy,
		"index_version", pipeline.IndexVersion(cfg.EmbeddingModelName),
	)

	ragEngine := rag.NewEngine(
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		chunkRepo,
		llmClient,
		m,
	)
	slog.Info("RAG engine initialized")

	router := http.NewRouter(&http.Deps{
		RAGEngine:          ragEngine,
		Documents:          pipeline,
		VectorStore:        vectorStore,
		CollectionName:     cfg.QdrantCollection,
		Embeddings:         embedder,
		LLM:                llmClient,
		EmbeddingDimension: embedder.Dimension(),
		EmbeddingModelName: cfg.EmbeddingModelName,
		Metrics:            m,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxUploadBytes:     cfg.MaxUploadBytes(),
	})

	// Index the ingest directory in background after router is ready
	if cfg.IngestDir != "" {
		go func() {
			slog.Info("Starting background indexing", "dir", cfg.IngestDir)
			if _, err := pipeline.IndexDirectory(ctx, cfg.IngestDir); err != nil {
				slog.Error("Indexing completed with errors", "error", err)
			} else {
				slog.Info("Indexing completed successfully")
			}
		}()
	}

	// Start API server
	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("API server failed to start: %v", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}
