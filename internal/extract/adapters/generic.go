package adapters

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// TextAdapter is the fallback adapter for plain text exports
type TextAdapter struct{}

// NewTextAdapter creates a new plain text adapter
func NewTextAdapter() *TextAdapter {
	return &TextAdapter{}
}

// Name returns the adapter name
func (a *TextAdapter) Name() string {
	return "text"
}

// CanHandle always returns true (fallback adapter)
func (a *TextAdapter) CanHandle(name string, contentType string) bool {
	return true
}

// ExtractText strips a UTF-8 byte order mark and replaces invalid bytes.
// Line structure is left to the parser.
func (a *TextAdapter) ExtractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
