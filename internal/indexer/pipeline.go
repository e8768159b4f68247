package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"teamprompt/internal/chunker"
	"teamprompt/internal/contextutil"
	"teamprompt/internal/extract"
	"teamprompt/internal/metrics"
	"teamprompt/internal/storage"
	"teamprompt/internal/vectorstore"
)

// Pipeline stages reported in DocumentError.
const (
	StageValidate = "validate"
	StageExtract  = "extract"
	StageChunk    = "chunk"
	StageEmbed    = "embed"
	StageStore    = "store"
)

// Embedder turns chunk contents into vectors, one per input, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentError reports the failure of one document at one pipeline stage.
type DocumentError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Stage, e.Filename, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Result describes the outcome of processing one document.
type Result struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"file_name"`
	ChunksCreated int    `json:"chunks_created"`
	Skipped       bool   `json:"skipped"`
}

// Input is one document handed to ProcessBatch.
type Input struct {
	Filename string
	Data     []byte
	Strategy string
}

// BatchItem pairs a batch input with its result or error.
type BatchItem struct {
	Filename string
	Result   *Result
	Err      error
}

// Pipeline orchestrates extraction, chunking and embedding of documents into
// SQLite and Qdrant.
type Pipeline struct {
	docs        storage.DocumentStore
	chunks      storage.ChunkStore
	extractor   *extract.Extractor
	chunker     *chunker.Chunker
	strategy    chunker.Strategy
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewPipeline creates a new indexing pipeline. strategy is used for documents
// processed without an explicit heading strategy.
func NewPipeline(
	docs storage.DocumentStore,
	chunks storage.ChunkStore,
	extractor *extract.Extractor,
	ch *chunker.Chunker,
	strategy chunker.Strategy,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	if strategy == "" {
		strategy = chunker.StrategyGeneric
	}
	return &Pipeline{
		docs:        docs,
		chunks:      chunks,
		extractor:   extractor,
		chunker:     ch,
		strategy:    strategy,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		now:         time.Now,
	}
}

// UseMetrics makes the pipeline record ingest metrics on m.
func (p *Pipeline) UseMetrics(m *metrics.Metrics) {
	p.metrics = m
}

// Supports reports whether filename has an extension the pipeline can extract.
func (p *Pipeline) Supports(filename string) bool {
	return p.extractor.Supports(filename)
}

// ProcessDocument indexes one document. An unchanged document that is already
// indexed with the same strategy is skipped. Failures are recorded on the
// document with status failed and returned as *DocumentError.
func (p *Pipeline) ProcessDocument(ctx context.Context, filename string, data []byte, strategy string) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := p.now()

	result, err := p.processDocument(ctx, logger, filename, data, strategy)
	status := storage.DocumentStatusIndexed
	chunks := 0
	switch {
	case err != nil:
		status = storage.DocumentStatusFailed
		logger.ErrorContext(ctx, "failed to index document", "filename", filename, "error", err)
	case result.Skipped:
		status = "skipped"
	default:
		chunks = result.ChunksCreated
	}
	p.metrics.RecordDocument(status, chunks, p.now().Sub(start))
	return result, err
}

func (p *Pipeline) processDocument(ctx context.Context, logger *slog.Logger, filename string, data []byte, strategy string) (*Result, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, &DocumentError{Filename: filename, Stage: StageValidate, Err: errors.New("filename is required")}
	}

	strat := chunker.Strategy(strategy)
	if strat == "" {
		strat = p.strategy
	}
	detector, err := chunker.DetectorFor(strat)
	if err != nil {
		return nil, &DocumentError{Filename: filename, Stage: StageValidate, Err: err}
	}
	if !p.extractor.Supports(filename) {
		return nil, &DocumentError{Filename: filename, Stage: StageValidate, Err: fmt.Errorf("%w: %s", extract.ErrUnsupportedType, filepath.Ext(filename))}
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(data))

	existing, err := p.docs.GetByFilename(ctx, filename)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, &DocumentError{Filename: filename, Stage: StageStore, Err: fmt.Errorf("failed to get document: %w", err)}
	}

	if existing != nil && existing.Hash == hash && existing.Status == storage.DocumentStatusIndexed && existing.Strategy == string(strat) {
		logger.DebugContext(ctx, "document unchanged, skipping", "filename", filename)
		return &Result{DocumentID: existing.ID, Filename: filename, ChunksCreated: existing.ChunkCount, Skipped: true}, nil
	}

	doc := &storage.DocumentRecord{
		Filename: filename,
		FileType: fileType(filename),
		Hash:     hash,
		Strategy: string(strat),
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.ChunkCount = existing.ChunkCount
	} else {
		doc.ID = uuid.NewString()
	}

	fail := func(stage string, err error) (*Result, error) {
		docErr := &DocumentError{Filename: filename, Stage: stage, Err: err}
		doc.Status = storage.DocumentStatusFailed
		doc.Error = docErr.Error()
		if recErr := p.docs.Upsert(ctx, doc); recErr != nil {
			logger.ErrorContext(ctx, "failed to record document failure", "filename", filename, "error", recErr)
		}
		return nil, docErr
	}

	text, err := p.extractor.Extract(ctx, filename, data)
	if err != nil {
		return fail(StageExtract, err)
	}
	doc.CharCount = utf8.RuneCountInString(text)

	chunks, err := p.chunker.WithDetector(detector).Chunk(text, filename)
	if err != nil {
		return fail(StageChunk, err)
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, contents)
	if err != nil {
		return fail(StageEmbed, err)
	}
	if len(embeddings) != len(chunks) {
		return fail(StageEmbed, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(chunks)))
	}

	var oldIDs []string
	if existing != nil {
		oldIDs, err = p.chunks.ListIDsByDocument(ctx, doc.ID)
		if err != nil {
			return fail(StageStore, fmt.Errorf("failed to list existing chunks: %w", err))
		}
	}

	points := make([]vectorstore.Point, len(chunks))
	records := make([]storage.ChunkRecord, len(chunks))
	newIDs := make([]string, len(chunks))
	for i, c := range chunks {
		id := PointID(filename, c.Metadata.BlockIndex, c.Metadata.ChunkIndex)
		newIDs[i] = id

		payload := c.Metadata.Payload()
		payload["content"] = c.Content
		payload["document_id"] = doc.ID
		points[i] = vectorstore.Point{ID: id, Vec: embeddings[i], Meta: payload}

		records[i] = storage.ChunkRecord{
			ID:           id,
			DocumentID:   doc.ID,
			BlockIndex:   c.Metadata.BlockIndex,
			ChunkIndex:   c.Metadata.ChunkIndex,
			Heading:      c.Metadata.Heading,
			DocumentType: string(c.Metadata.DocumentType),
			Content:      c.Content,
			CharCount:    c.Metadata.CharCount,
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fail(StageStore, fmt.Errorf("failed to upsert vectors: %w", err))
	}

	doc.Status = storage.DocumentStatusIndexed
	doc.Error = ""
	doc.ChunkCount = len(chunks)
	if err := p.recordDocument(ctx, doc, records); err != nil {
		p.rollbackPoints(ctx, logger, newIDs, oldIDs)
		return fail(StageStore, err)
	}

	if stale := staleIDs(oldIDs, newIDs); len(stale) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, stale); err != nil {
			logger.WarnContext(ctx, "failed to delete stale vectors", "filename", filename, "count", len(stale), "error", err)
		}
	}

	logger.InfoContext(ctx, "indexed document", "filename", filename, "chunks", len(chunks), "strategy", strat)
	return &Result{DocumentID: doc.ID, Filename: filename, ChunksCreated: len(chunks)}, nil
}

func (p *Pipeline) recordDocument(ctx context.Context, doc *storage.DocumentRecord, records []storage.ChunkRecord) error {
	if err := p.docs.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	if err := p.chunks.ReplaceForDocument(ctx, doc.ID, records); err != nil {
		return fmt.Errorf("failed to replace chunks: %w", err)
	}
	return nil
}

// rollbackPoints removes freshly written points that the previous version of
// the document did not own.
func (p *Pipeline) rollbackPoints(ctx context.Context, logger *slog.Logger, newIDs, oldIDs []string) {
	ids := staleIDs(newIDs, oldIDs)
	if len(ids) == 0 {
		return
	}
	if err := p.vectorStore.Delete(ctx, p.collection, ids); err != nil {
		logger.WarnContext(ctx, "failed to roll back vectors", "count", len(ids), "error", err)
	}
}

// ProcessBatch processes inputs sequentially. A failed document never stops
// the others; every input gets exactly one item in input order.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs []Input) []BatchItem {
	logger := contextutil.LoggerFromContext(ctx)
	items := make([]BatchItem, 0, len(inputs))
	var failed int
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			items = append(items, BatchItem{Filename: in.Filename, Err: err})
			failed++
			continue
		}
		result, err := p.ProcessDocument(ctx, in.Filename, in.Data, in.Strategy)
		if err != nil {
			failed++
		}
		items = append(items, BatchItem{Filename: in.Filename, Result: result, Err: err})
	}
	logger.InfoContext(ctx, "batch processed", "documents", len(inputs), "errors", failed)
	return items
}

// DeleteDocument removes the points, chunks and record of filename.
// It returns storage.ErrNotFound when no such document exists.
func (p *Pipeline) DeleteDocument(ctx context.Context, filename string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if _, err := p.docs.GetByFilename(ctx, filename); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := p.vectorStore.DeleteByFilter(ctx, p.collection, map[string]any{"filename": filename}); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	if err := p.docs.DeleteByFilename(ctx, filename); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.InfoContext(ctx, "deleted document", "filename", filename)
	return nil
}

// ListDocuments returns every known document ordered by filename.
func (p *Pipeline) ListDocuments(ctx context.Context) ([]storage.DocumentRecord, error) {
	docs, err := p.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// PointID returns the deterministic vector point ID of a chunk.
func PointID(filename string, blockIndex, chunkIndex int) string {
	name := fmt.Sprintf("%s#%d-%d", filename, blockIndex, chunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func fileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// staleIDs returns the IDs in from that are not in keep.
func staleIDs(from, keep []string) []string {
	if len(from) == 0 {
		return nil
	}
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}
	var stale []string
	for _, id := range from {
		if _, ok := kept[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}
