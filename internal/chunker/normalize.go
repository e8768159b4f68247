package chunker

import (
	"regexp"
	"strings"
)

var (
	lineEndings   = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	blankLineRun  = regexp.MustCompile(`\n\s*\n\s*\n`)
	horizontalRun = regexp.MustCompile(`[ \t]+`)
)

// Normalize collapses incidental whitespace while keeping paragraph breaks.
// CRLF and lone CR line endings become LF. Runs of three or more newlines become a single blank line, runs of spaces
// and tabs become one space, a space after a newline is dropped and the text
// is trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = lineEndings.Replace(text)
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = horizontalRun.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\n ", "\n")
	return strings.TrimSpace(text)
}
