package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks teamprompt/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetByFilename gets a document by filename.
	// Returns nil and ErrNotFound if not found.
	GetByFilename(ctx context.Context, filename string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// List returns all documents ordered by filename.
	List(ctx context.Context) ([]DocumentRecord, error)
	// DeleteByFilename deletes a document and, by cascade, its chunks.
	// Returns ErrNotFound if no document has that filename.
	DeleteByFilename(ctx context.Context, filename string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, filename, file_type, hash, strategy, char_count, chunk_count, status, error, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var updatedAtStr string
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.FileType, &doc.Hash, &doc.Strategy,
		&doc.CharCount, &doc.ChunkCount, &doc.Status, &doc.Error, &updatedAtStr); err != nil {
		return nil, err
	}

	updatedAt, err := parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, err
	}
	doc.UpdatedAt = updatedAt
	return &doc, nil
}

// parseTimestamp parses a DATETIME column as stored by CURRENT_TIMESTAMP.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		// Try alternative format (SQLite might use different format)
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
		}
	}
	return t, nil
}

// GetByFilename gets a document by filename.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByFilename(ctx context.Context, filename string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE filename = ?",
		filename,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// Upsert inserts a new document or updates an existing one.
// If the document doesn't exist (by filename) and has no ID, a new UUID is generated.
// If it exists, the stored ID is preserved and written back to doc.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetByFilename(ctx, doc.Filename)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, file_type, hash, strategy, char_count, chunk_count, status, error, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (filename) DO UPDATE SET
		 file_type = excluded.file_type, hash = excluded.hash, strategy = excluded.strategy,
		 char_count = excluded.char_count, chunk_count = excluded.chunk_count,
		 status = excluded.status, error = excluded.error, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Filename, doc.FileType, doc.Hash, doc.Strategy,
		doc.CharCount, doc.ChunkCount, doc.Status, doc.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// List returns all documents ordered by filename.
func (r *DocumentRepo) List(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents ORDER BY filename")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []DocumentRecord{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// DeleteByFilename deletes a document and its chunks.
func (r *DocumentRepo) DeleteByFilename(ctx context.Context, filename string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE filename = ?", filename)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
