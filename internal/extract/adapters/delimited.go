package adapters

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// DelimitedAdapter flattens CSV/TSV/semicolon exports into lines.
// Each record becomes one line with its non-empty fields joined by spaces,
// so "Acciaio;100;t" reads as "Acciaio 100 t".
type DelimitedAdapter struct{}

// NewDelimitedAdapter creates a new delimited text adapter
func NewDelimitedAdapter() *DelimitedAdapter {
	return &DelimitedAdapter{}
}

// Name returns the adapter name
func (a *DelimitedAdapter) Name() string {
	return "delimited"
}

// CanHandle checks for a CSV/TSV content type or file extension
func (a *DelimitedAdapter) CanHandle(name string, contentType string) bool {
	switch mediaType(contentType) {
	case "text/csv", "text/tab-separated-values":
		return true
	}
	switch extension(name) {
	case ".csv", ".tsv", ".tab":
		return true
	}
	return false
}

// ExtractText detects the delimiter and flattens records
func (a *DelimitedAdapter) ExtractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var lines []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read delimited record: %w", err)
		}

		fields := make([]string, 0, len(record))
		for _, f := range record {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		lines = append(lines, strings.Join(fields, " "))
	}

	return strings.Join(lines, "\n"), nil
}

// sniffLines is how many non-empty lines detectDelimiter samples
const sniffLines = 10

// detectDelimiter picks the most frequent of tab, semicolon and comma over the
// first non-empty lines. Exports often open with a title or a category marker
// that carries no delimiter at all.
func detectDelimiter(data []byte) rune {
	candidates := []rune{'\t', ';', ','}
	counts := make([]int, len(candidates))

	sampled := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		for i, d := range candidates {
			counts[i] += bytes.Count(line, []byte(string(d)))
		}
		sampled++
		if sampled == sniffLines {
			break
		}
	}

	best, bestCount := ',', 0
	for i, d := range candidates {
		if counts[i] > bestCount {
			best, bestCount = d, counts[i]
		}
	}
	return best
}
