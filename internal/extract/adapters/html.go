package adapters

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLAdapter extracts lines from HTML exports. Each table row becomes one
// line with its cells separated by spaces; headings, paragraphs and list
// items become their own lines.
type HTMLAdapter struct {
	blocks map[string]bool
}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	blocks := make(map[string]bool)
	for _, tag := range []string{
		"tr", "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"table", "thead", "tbody", "caption", "section", "pre", "dt", "dd",
	} {
		blocks[tag] = true
	}
	return &HTMLAdapter{blocks: blocks}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle checks for an HTML content type or file extension
func (a *HTMLAdapter) CanHandle(name string, contentType string) bool {
	switch mediaType(contentType) {
	case "text/html", "application/xhtml+xml":
		return true
	}
	switch extension(name) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// ExtractText walks the document, skipping scripts and styles
func (a *HTMLAdapter) ExtractText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
			// Hidden print-only helpers some exporters emit
			if hasClass(n, "visually-hidden") {
				return
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		block := n.Type == html.ElementNode && a.blocks[n.Data]
		if block {
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			buf.WriteString("\n")
		}
	}

	walk(doc)
	return compactLines(buf.String()), nil
}
