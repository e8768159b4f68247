package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"teamprompt/internal/storage"
)

const (
	// ChunkerVersion is the version identifier for the chunker implementation.
	// Update this when chunking logic changes significantly.
	ChunkerVersion = "v2.0"
)

// IndexingCoverageStats contains statistics about the indexed documents.
type IndexingCoverageStats struct {
	// DocsProcessed is the total number of known documents, failed ones included.
	DocsProcessed int `json:"docs_processed"`
	// DocsFailed is the number of documents whose last processing failed.
	DocsFailed int `json:"docs_failed"`
	// DocsWith0Chunks is the number of documents that have no stored chunks.
	DocsWith0Chunks int `json:"docs_with_0_chunks"`
	// ChunksStored is the total number of stored chunks.
	ChunksStored int `json:"chunks_stored"`
	// ChunkCharStats contains statistics about character counts per chunk.
	ChunkCharStats ChunkCharStats `json:"chunk_char_stats"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
	// IndexVersion is a hash identifying the index build (chunker + embedding model + params).
	IndexVersion string `json:"index_version"`
}

// ChunkCharStats contains statistics about character counts in chunks.
type ChunkCharStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// Stats computes indexing coverage statistics from the document registry.
func (p *Pipeline) Stats(ctx context.Context, embeddingModelName string) (*IndexingCoverageStats, error) {
	docs, err := p.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	charCounts, err := p.chunks.CharCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk char counts: %w", err)
	}

	stats := &IndexingCoverageStats{
		DocsProcessed:  len(docs),
		ChunksStored:   len(charCounts),
		ChunkCharStats: computeCharStats(charCounts),
		ChunkerVersion: ChunkerVersion,
		IndexVersion:   p.IndexVersion(embeddingModelName),
	}
	for _, doc := range docs {
		if doc.Status != storage.DocumentStatusIndexed {
			stats.DocsFailed++
		}
		if doc.ChunkCount == 0 {
			stats.DocsWith0Chunks++
		}
	}
	return stats, nil
}

// IndexVersion hashes the chunker version, embedding model and chunking
// parameters into a 16 hex character build identifier.
func (p *Pipeline) IndexVersion(embeddingModelName string) string {
	input := fmt.Sprintf("%s|%s|chunkSize=%d|overlap=%d|strategy=%s",
		ChunkerVersion, embeddingModelName, p.chunker.ChunkSize(), p.chunker.Overlap(), p.strategy)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// computeCharStats computes min, max, mean, and p95 from char counts.
func computeCharStats(counts []int) ChunkCharStats {
	if len(counts) == 0 {
		return ChunkCharStats{}
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, c := range sorted {
		sum += c
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkCharStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
