package storage

import "time"

// Document statuses.
const (
	DocumentStatusIndexed = "indexed"
	DocumentStatusFailed  = "failed"
)

// DocumentRecord represents an uploaded or ingested file in the database.
type DocumentRecord struct {
	ID         string // UUID
	Filename   string // Unique per document
	FileType   string // Lower-cased extension without the dot
	Hash       string // SHA256 hex string of file content
	Strategy   string // Heading strategy used for chunking
	CharCount  int    // Characters of extracted text
	ChunkCount int
	Status     string // DocumentStatusIndexed or DocumentStatusFailed
	Error      string // Failure cause when Status is failed
	UpdatedAt  time.Time
}

// ChunkRecord represents a chunk of a document, indexed for vector search.
type ChunkRecord struct {
	ID           string // UUID (same as Qdrant point ID)
	DocumentID   string // UUID (foreign key to documents.id)
	BlockIndex   int
	ChunkIndex   int // Index within block (starts at 0)
	Heading      string
	DocumentType string
	Content      string
	CharCount    int
}
