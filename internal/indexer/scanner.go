package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"teamprompt/internal/contextutil"
)

// ScannedFile represents a supported file found during directory scanning.
type ScannedFile struct {
	RelPath string // Relative path from the scan root with forward slashes (e.g., "team/handbook.pdf")
	AbsPath string
}

// Scan walks root and returns every file the pipeline can extract, in lexical
// order. Hidden files and directories are skipped.
func (p *Pipeline) Scan(ctx context.Context, root string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !p.extractor.Supports(path) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		files = append(files, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

// IndexDirectory scans root and processes every supported file with the
// default heading strategy. Documents are named by their relative path.
// Errors for individual files are logged but don't stop the indexing process.
func (p *Pipeline) IndexDirectory(ctx context.Context, root string) ([]BatchItem, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := p.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "starting indexing", "dir", root, "total_files", len(files))

	items := make([]BatchItem, 0, len(files))
	var successCount, errorCount int
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		data, err := os.ReadFile(file.AbsPath)
		if err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to read file", "rel_path", file.RelPath, "error", err)
			items = append(items, BatchItem{
				Filename: file.RelPath,
				Err:      &DocumentError{Filename: file.RelPath, Stage: StageExtract, Err: err},
			})
			continue
		}

		result, err := p.ProcessDocument(ctx, file.RelPath, data, "")
		if err != nil {
			errorCount++
		} else {
			successCount++
		}
		items = append(items, BatchItem{Filename: file.RelPath, Result: result, Err: err})
	}

	logger.InfoContext(ctx, "indexing completed", "total_files", len(files), "success", successCount, "errors", errorCount)
	if errorCount > 0 {
		return items, fmt.Errorf("indexing completed with %d errors", errorCount)
	}
	return items, nil
}
