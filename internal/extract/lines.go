package extract

import (
	"strings"

	"github.com/ppiankov/lightship/internal/model"
)

// ParserOptions controls the line parser
type ParserOptions struct {
	MinLineLength      int
	ContextWindow      int
	CategoryConfidence float64
}

// DefaultParserOptions returns the standard parser settings
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		MinLineLength:      3,
		ContextWindow:      2,
		CategoryConfidence: 0.9,
	}
}

// ParserOptionsFromConfig converts model.ParserConfig to ParserOptions
func ParserOptionsFromConfig(cfg model.ParserConfig) ParserOptions {
	return ParserOptions{
		MinLineLength:      cfg.MinLineLength,
		ContextWindow:      cfg.ContextWindow,
		CategoryConfidence: cfg.CategoryConfidence,
	}
}

// LineParser turns inventory text into an ordered list of parsed materials
type LineParser struct {
	grammar *Grammar
	matcher *Matcher
	opts    ParserOptions
}

// NewLineParser creates a parser over a fixed matcher and category resolver
func NewLineParser(matcher *Matcher, resolver *CategoryResolver, opts ParserOptions) *LineParser {
	return &LineParser{
		grammar: NewGrammar(resolver, opts.MinLineLength),
		matcher: matcher,
		opts:    opts,
	}
}

// Grammar returns the grammar used to classify lines
func (p *LineParser) Grammar() *Grammar {
	return p.grammar
}

// Parse scans text top to bottom. Category markers set the context for the
// lines that follow until the next marker; unrecognized lines are skipped.
// Parse never fails: empty text yields an empty, non-nil slice.
func (p *LineParser) Parse(text string) []model.ParsedMaterial {
	lines := SplitLines(text)
	materials := make([]model.ParsedMaterial, 0)

	var current *model.Category
	for i, raw := range lines {
		c := p.grammar.Classify(raw)

		switch c.Kind {
		case LineCategory:
			cat := c.Category
			current = &cat
			continue
		case LineMaterial:
		default:
			continue
		}

		item := model.ParsedMaterial{
			OriginalText: NormalizeLine(raw),
			Quantity:     c.Quantity,
			Unit:         model.CanonicalUnit,
			LineNumber:   i + 1,
			Context:      contextWindow(lines, i, p.opts.ContextWindow),
		}

		if m, ok := p.matcher.Match(c.Name); ok {
			mat := m.Material
			item.Material = &mat
			item.Confidence = m.Confidence
		}

		if current != nil {
			cat := *current
			item.Category = &cat
			item.CategoryConfidence = p.opts.CategoryConfidence
		}

		materials = append(materials, item)
	}

	return materials
}

// SplitLines splits text on LF, CRLF or CR line endings
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// contextWindow joins up to n trimmed raw lines before and after index i
func contextWindow(lines []string, i, n int) string {
	start := i - n
	if start < 0 {
		start = 0
	}
	end := i + n + 1
	if end > len(lines) {
		end = len(lines)
	}

	parts := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		parts = append(parts, strings.TrimSpace(l))
	}
	return strings.Join(parts, " | ")
}
