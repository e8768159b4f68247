package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultHeading labels text that appears before the first detected boundary.
const DefaultHeading = "Introduction"

const maxHeadingRunes = 60

// Strategy names a boundary detector.
type Strategy string

const (
	StrategyGeneric Strategy = "generic"
	StrategyResume  Strategy = "resume"
)

// Boundary is a line recognized as the start of a new block.
type Boundary struct {
	Label string
	Kind  DocumentType
}

// Detector decides whether a single trimmed line starts a new block.
type Detector interface {
	// Detect returns the boundary for line, or false if line is body text.
	Detect(line string) (Boundary, bool)
	// DefaultKind is the kind of the block holding text before any boundary.
	DefaultKind() DocumentType
}

// DetectorFor returns the detector registered under strategy.
// An empty strategy selects the generic detector.
func DetectorFor(strategy Strategy) (Detector, error) {
	switch strategy {
	case StrategyGeneric, "":
		return HeadingDetector{}, nil
	case StrategyResume:
		return ResumeDetector{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown heading strategy %q", ErrInvalidConfiguration, strategy)
	}
}

// HeadingDetector recognizes generic headings in plain text: short lines that
// are upper case, title case, or a few words without a closing period.
type HeadingDetector struct{}

// Detect implements Detector.
func (HeadingDetector) Detect(line string) (Boundary, bool) {
	if !isHeading(line) {
		return Boundary{}, false
	}
	return Boundary{Label: line, Kind: DocumentTypeStructured}, true
}

// DefaultKind implements Detector.
func (HeadingDetector) DefaultKind() DocumentType {
	return DocumentTypeStructured
}

func isHeading(line string) bool {
	if line == "" || utf8.RuneCountInString(line) >= maxHeadingRunes {
		return false
	}
	upper := isUpper(line)
	// Comma separated lists ("Python, Go") read as content, not titles.
	if !upper && strings.Contains(line, ", ") {
		return false
	}
	if upper || isTitle(line) {
		return true
	}
	return len(strings.Fields(line)) <= 5 && !strings.HasSuffix(line, ".")
}

// isUpper reports whether s has at least one cased letter and no lower or title case letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

// isTitle reports whether every upper case letter follows an uncased
// character and every lower case letter follows a cased one.
func isTitle(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r), unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}

var resumeSections = map[string]struct{}{
	"summary": {}, "profile": {}, "professional summary": {}, "objective": {}, "about me": {},
	"experience": {}, "work experience": {}, "professional experience": {}, "employment history": {},
	"education": {}, "skills": {}, "technical skills": {}, "core competencies": {},
	"projects": {}, "personal projects": {}, "certifications": {}, "awards": {},
	"publications": {}, "languages": {}, "interests": {}, "volunteering": {},
	"volunteer experience": {}, "references": {}, "contact": {},
}

const maxItemRunes = 100

var dateRange = regexp.MustCompile(`(?i)\b(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+)?(?:19|20)\d{2}\s*(?:-|–|—|to)\s*(?:(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+)?(?:19|20)\d{2}|present|current|now)\b`)

// ResumeDetector splits resumes into named sections and dated entries such
// as jobs or projects.
type ResumeDetector struct{}

// Detect implements Detector.
func (ResumeDetector) Detect(line string) (Boundary, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(line, ":")))
	if _, ok := resumeSections[key]; ok {
		return Boundary{Label: line, Kind: DocumentTypeSection}, true
	}
	if utf8.RuneCountInString(line) < maxItemRunes && dateRange.MatchString(line) {
		return Boundary{Label: line, Kind: DocumentTypeItem}, true
	}
	return Boundary{}, false
}

// DefaultKind implements Detector.
func (ResumeDetector) DefaultKind() DocumentType {
	return DocumentTypeSection
}

// GroupBlocks partitions normalized text into blocks using d.
// Blank lines are skipped and a boundary with no body lines after it is
// dropped; text before the first boundary is labeled DefaultHeading.
func GroupBlocks(text string, d Detector) []Block {
	var blocks []Block
	current := Block{Heading: DefaultHeading, Kind: d.DefaultKind()}
	var body []string

	flush := func() {
		if len(body) == 0 {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		blocks = append(blocks, current)
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if boundary, ok := d.Detect(stripped); ok {
			flush()
			current = Block{Heading: boundary.Label, Kind: boundary.Kind}
			continue
		}
		body = append(body, line)
	}
	flush()

	return blocks
}
