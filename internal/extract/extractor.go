// Package extract turns uploaded files into plain text for chunking.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedType is returned for file extensions without a registered extractor.
var ErrUnsupportedType = errors.New("unsupported file type")

// Func extracts text from the raw bytes of one file.
type Func func(data []byte) (string, error)

// Extractor dispatches on the lower-cased file extension.
type Extractor struct {
	byExt map[string]Func
}

// New creates an Extractor with the built-in formats registered.
func New() *Extractor {
	e := &Extractor{byExt: make(map[string]Func)}
	e.Register(PDF, ".pdf")
	e.Register(DOCX, ".docx")
	e.Register(PlainText, ".txt")
	e.Register(Markdown, ".md", ".markdown")
	e.Register(CSV, ".csv")
	e.Register(HTML, ".html", ".htm")
	return e
}

// Register installs fn for the given extensions, replacing any previous entry.
func (e *Extractor) Register(fn Func, exts ...string) {
	for _, ext := range exts {
		e.byExt[strings.ToLower(ext)] = fn
	}
}

// Supports reports whether filename has a registered extension.
func (e *Extractor) Supports(filename string) bool {
	_, ok := e.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (e *Extractor) Extensions() []string {
	exts := make([]string, 0, len(e.byExt))
	for ext := range e.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract returns the text content of data, interpreted by the extension of filename.
// The result may be empty; callers decide whether that is an error.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	fn, ok := e.byExt[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}
	return strings.TrimSpace(text), nil
}
