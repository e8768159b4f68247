package chunker

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a document has no text left after normalization.
	ErrEmptyInput = errors.New("no text content extracted")
	// ErrInvalidConfiguration is returned by New and NewSplitter for unusable size/overlap values.
	ErrInvalidConfiguration = errors.New("invalid chunker configuration")
)

// ProcessingError reports a failed chunking call for one document.
type ProcessingError struct {
	Filename string
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("error processing %s: %v", e.Filename, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func validateConfig(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be greater than 0, got %d", ErrInvalidConfiguration, chunkSize)
	}
	if overlap <= 0 {
		return fmt.Errorf("%w: overlap must be greater than 0, got %d", ErrInvalidConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return fmt.Errorf("%w: overlap (%d) must be less than chunk_size (%d)", ErrInvalidConfiguration, overlap, chunkSize)
	}
	return nil
}
