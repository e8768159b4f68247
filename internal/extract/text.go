package extract

import (
	"errors"
	"unicode/utf8"
)

// ErrBinaryContent is returned when a text file is not valid UTF-8.
var ErrBinaryContent = errors.New("content is not valid UTF-8 text")

// PlainText returns data as a string after checking it is UTF-8.
func PlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrBinaryContent
	}
	return string(data), nil
}
