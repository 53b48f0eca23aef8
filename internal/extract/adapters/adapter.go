package adapters

import (
	"path"
	"strings"

	"golang.org/x/net/html"
)

// Adapter turns a raw export into plain text lines for the line parser
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given file name/URL and content type
	CanHandle(name string, contentType string) bool

	// ExtractText converts the raw export to newline-separated text
	ExtractText(data []byte) (string, error)
}

// Registry manages source adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewHTMLAdapter())
	registry.Register(NewDelimitedAdapter())

	// Plain text is the fallback
	registry.generic = NewTextAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given name and content type
func (r *Registry) FindAdapter(name string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(name, contentType) {
			return adapter
		}
	}
	return r.generic
}

// ByName returns a registered adapter by name
func (r *Registry) ByName(name string) (Adapter, bool) {
	if r.generic.Name() == name {
		return r.generic, true
	}
	for _, adapter := range r.adapters {
		if adapter.Name() == name {
			return adapter, true
		}
	}
	return nil, false
}

// Names lists the registered adapters, fallback last
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters)+1)
	for _, adapter := range r.adapters {
		names = append(names, adapter.Name())
	}
	return append(names, r.generic.Name())
}

// extension returns the lower-case extension of a file name or URL path
func extension(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(path.Ext(name))
}

// mediaType strips parameters from a Content-Type header
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// compactLines collapses whitespace inside each line and drops empty lines
func compactLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// hasClass checks if a node has a specific CSS class
func hasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}
