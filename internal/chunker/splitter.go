package chunker

import (
	"strings"
	"unicode/utf8"
)

// separators are tried in priority order when looking for a cut point.
var separators = []string{"\n\n", "\n", ". ", "! ", "? "}

// Splitter cuts text into overlapping windows of at most ChunkSize characters,
// preferring to end a window at a paragraph or sentence boundary.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter returns a Splitter after validating the window configuration.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if err := validateConfig(chunkSize, overlap); err != nil {
		return nil, err
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}, nil
}

// Split returns text unchanged when it fits one window. Otherwise each window
// is cut after the last separator found past its midpoint (or at the raw
// boundary when none qualifies) and the next window starts Overlap characters
// before the cut. Pieces are trimmed; empty pieces are dropped.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	pieces := s.windows(runes)
	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// windows returns the untrimmed windows of runes. Each window after the first
// starts with the last Overlap characters of the one before it.
func (s *Splitter) windows(runes []rune) []string {
	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			pieces = append(pieces, string(runes[start:]))
			break
		}

		end = s.cutPoint(runes, start, end)
		pieces = append(pieces, string(runes[start:end]))
		start = end - s.Overlap
	}
	return pieces
}

// cutPoint returns the end of the window [start, end). A separator only
// qualifies past the window midpoint and when the following window still
// starts after start.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx == -1 {
			continue
		}
		offset := utf8.RuneCountInString(window[:idx])
		if offset <= s.ChunkSize/2 {
			continue
		}
		cut := start + offset + utf8.RuneCountInString(sep)
		if cut-s.Overlap <= start {
			continue
		}
		return cut
	}
	return end
}
