package chunker

import (
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the maximum number of characters per chunk body.
	DefaultChunkSize = 800
	// DefaultOverlap is the number of characters repeated between consecutive chunks.
	DefaultOverlap = 150
)

// Chunker turns extracted document text into heading-labeled chunks.
// It holds no mutable state and is safe for concurrent use.
type Chunker struct {
	splitter *Splitter
	detector Detector
}

// Option configures a Chunker.
type Option func(*Chunker)

// UseDetector selects the boundary detector. The generic heading detector is the default.
func UseDetector(d Detector) Option {
	return func(c *Chunker) {
		if d != nil {
			c.detector = d
		}
	}
}

// New creates a Chunker. It returns ErrInvalidConfiguration when either
// value is non-positive or overlap is not smaller than chunkSize.
func New(chunkSize, overlap int, opts ...Option) (*Chunker, error) {
	splitter, err := NewSplitter(chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	c := &Chunker{
		splitter: splitter,
		detector: HeadingDetector{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.splitter.ChunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.splitter.Overlap
}

// WithDetector returns a copy of c that uses d for boundary detection.
func (c *Chunker) WithDetector(d Detector) *Chunker {
	cp := *c
	if d != nil {
		cp.detector = d
	}
	return &cp
}

// Chunk normalizes text, groups it into blocks and splits oversized blocks.
// Chunk content is prefixed with the block heading as "[heading]\n".
// When no block is detected the whole text is split and tagged unstructured.
// Errors are returned as *ProcessingError carrying filename.
func (c *Chunker) Chunk(text, filename string) ([]Chunk, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return nil, &ProcessingError{Filename: filename, Err: ErrEmptyInput}
	}

	blocks := GroupBlocks(normalized, c.detector)
	if len(blocks) == 0 {
		return c.unstructured(normalized, filename), nil
	}

	var chunks []Chunk
	for blockIndex, block := range blocks {
		pieces := []string{block.Body}
		if utf8.RuneCountInString(block.Body) > c.splitter.ChunkSize {
			pieces = c.splitter.Split(block.Body)
		}
		for i, piece := range pieces {
			content := fmt.Sprintf("[%s]\n%s", block.Heading, piece)
			chunks = append(chunks, Chunk{
				Content: content,
				Metadata: Metadata{
					Filename:     filename,
					ChunkIndex:   i,
					Heading:      block.Heading,
					BlockIndex:   blockIndex,
					DocumentType: block.Kind,
					CharCount:    utf8.RuneCountInString(content),
				},
			})
		}
	}
	return chunks, nil
}

func (c *Chunker) unstructured(text, filename string) []Chunk {
	pieces := c.splitter.Split(text)
	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{
			Content: piece,
			Metadata: Metadata{
				Filename:     filename,
				ChunkIndex:   i,
				DocumentType: DocumentTypeUnstructured,
				CharCount:    utf8.RuneCountInString(piece),
			},
		})
	}
	return chunks
}
