package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"
)

// CSV renders a comma separated file as a right-aligned text table: the header
// line followed by one line per record, without a row index.
func CSV(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrBinaryContent
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	columns := 0
	for _, rec := range records {
		columns = max(columns, len(rec))
	}
	widths := make([]int, columns)
	for _, rec := range records {
		for i, field := range rec {
			widths[i] = max(widths[i], utf8.RuneCountInString(field))
		}
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		cells := make([]string, columns)
		for i := range cells {
			field := ""
			if i < len(rec) {
				field = rec[i]
			}
			cells[i] = fmt.Sprintf("%*s", widths[i], field)
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, " "), " "))
	}
	return strings.Join(lines, "\n"), nil
}
