package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"teamprompt/internal/chunker"
	"teamprompt/internal/contextutil"
	"teamprompt/internal/indexer"
)

// multipartMemory is the part of a parsed upload kept in memory; larger files
// spill to temporary files.
const multipartMemory = 32 << 20

// DocumentIndexer indexes uploaded documents.
type DocumentIndexer interface {
	Supports(filename string) bool
	ProcessBatch(ctx context.Context, inputs []indexer.Input) []indexer.BatchItem
}

// UploadHandler handles multipart document uploads.
type UploadHandler struct {
	indexer  DocumentIndexer
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler accepting request bodies up to maxBytes.
func NewUploadHandler(indexer DocumentIndexer, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		indexer:  indexer,
		maxBytes: maxBytes,
	}
}

// UploadResult is the outcome for one uploaded file.
type UploadResult struct {
	Message       string `json:"message"`
	FileName      string `json:"file_name"`
	ChunksCreated int    `json:"chunks_created"`
	Skipped       bool   `json:"skipped,omitempty"`
	Error         string `json:"error,omitempty"`
	Stage         string `json:"stage,omitempty"`
}

// UploadResponse lists per-file results in upload order.
type UploadResponse struct {
	Results []UploadResult `json:"results"`
}

// ServeHTTP indexes every file of the "file" and "files" form fields. A failed
// file is reported in its result entry and never fails the request.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	strategy := strings.ToLower(strings.TrimSpace(r.FormValue("strategy")))
	if _, err := chunker.DetectorFor(chunker.Strategy(strategy)); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: strategy: %s", err.Error()))
		return
	}

	var headers []*multipart.FileHeader
	headers = append(headers, r.MultipartForm.File["file"]...)
	headers = append(headers, r.MultipartForm.File["files"]...)
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	results := make([]UploadResult, len(headers))
	var inputs []indexer.Input
	var slots []int
	for i, fh := range headers {
		results[i].FileName = fh.Filename
		if !h.indexer.Supports(fh.Filename) {
			results[i].Message = "Unsupported file type"
			results[i].Error = "unsupported file type"
			results[i].Stage = indexer.StageValidate
			continue
		}
		data, err := readPart(fh)
		if err != nil {
			logger.WarnContext(ctx, "failed to read uploaded file", "filename", fh.Filename, "error", err)
			results[i].Message = "Failed to read file"
			results[i].Error = err.Error()
			continue
		}
		inputs = append(inputs, indexer.Input{Filename: fh.Filename, Data: data, Strategy: strategy})
		slots = append(slots, i)
	}

	for j, item := range h.indexer.ProcessBatch(ctx, inputs) {
		results[slots[j]] = uploadResult(item)
	}

	logger.InfoContext(ctx, "upload processed", "files", len(headers))
	writeJSON(ctx, w, http.StatusOK, UploadResponse{Results: results})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func uploadResult(item indexer.BatchItem) UploadResult {
	res := UploadResult{FileName: item.Filename}
	if item.Err != nil {
		res.Message = "Failed to process file"
		res.Error = item.Err.Error()
		var docErr *indexer.DocumentError
		if errors.As(item.Err, &docErr) {
			res.Stage = docErr.Stage
			res.Error = docErr.Err.Error()
		}
		return res
	}

	res.ChunksCreated = item.Result.ChunksCreated
	res.Skipped = item.Result.Skipped
	if item.Result.Skipped {
		res.Message = "File unchanged, already indexed"
	} else {
		res.Message = fmt.Sprintf("File processed successfully with %d chunks", item.Result.ChunksCreated)
	}
	return res
}
