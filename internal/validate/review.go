// Package validate builds the human review queue for parsed documents and
// applies the corrections a reviewer makes.
package validate

import (
	"github.com/ppiankov/lightship/internal/catalog"
	"github.com/ppiankov/lightship/internal/extract"
	"github.com/ppiankov/lightship/internal/model"
)

// Reason explains why an item is in the review queue
type Reason string

const (
	ReasonUnidentified  Reason = "unidentified"
	ReasonUncategorized Reason = "uncategorized"
	ReasonLowConfidence Reason = "low_confidence"
)

// Suggestion is a candidate material for an item under review
type Suggestion struct {
	MaterialID string  `json:"material_id"`
	Name       string  `json:"name"`
	Matched    string  `json:"matched"`
	GWPFactor  float64 `json:"gwp_factor"`
	Confidence float64 `json:"confidence"`
}

// Item is one parsed line that needs a human decision
type Item struct {
	LineNumber   int          `json:"line_number"`
	OriginalText string       `json:"original_text"`
	Name         string       `json:"name"` // Cleaned material name the matcher saw
	MaterialID   string       `json:"material_id,omitempty"`
	CategoryCode string       `json:"category_code,omitempty"`
	Quantity     float64      `json:"quantity"`
	Confidence   float64      `json:"confidence"`
	Reasons      []Reason     `json:"reasons"`
	Suggestions  []Suggestion `json:"suggestions,omitempty"`
}

// Reviewer decides which items need review
type Reviewer struct {
	threshold      float64
	maxSuggestions int
	parser         extract.ParserOptions
}

// NewReviewer creates a reviewer from matcher settings. opts must be the
// options the document was parsed with so names are re-read the same way.
func NewReviewer(cfg model.MatcherConfig, opts extract.ParserOptions) *Reviewer {
	r := &Reviewer{
		threshold:      cfg.ReviewThreshold,
		maxSuggestions: cfg.MaxSuggestions,
		parser:         opts,
	}
	if r.threshold <= 0 {
		r.threshold = 0.8
	}
	if r.maxSuggestions <= 0 {
		r.maxSuggestions = 5
	}
	return r
}

// Queue lists items needing review using the default thresholds
func Queue(doc model.ParsedDocument, snap *catalog.Snapshot) []Item {
	return NewReviewer(model.DefaultConfig().Matcher, extract.DefaultParserOptions()).Queue(doc, snap)
}

// Queue lists unidentified, uncategorized and low-confidence items in line order.
// Unidentified and low-confidence items carry suggestions from the snapshot.
func (r *Reviewer) Queue(doc model.ParsedDocument, snap *catalog.Snapshot) []Item {
	grammar := snap.NewParser(r.parser).Grammar()
	queue := []Item{}

	for _, pm := range doc.Materials {
		var reasons []Reason
		if !pm.Identified() {
			reasons = append(reasons, ReasonUnidentified)
		} else if pm.Confidence < r.threshold {
			reasons = append(reasons, ReasonLowConfidence)
		}
		if !pm.Categorized() {
			reasons = append(reasons, ReasonUncategorized)
		}
		if len(reasons) == 0 {
			continue
		}

		item := Item{
			LineNumber:   pm.LineNumber,
			OriginalText: pm.OriginalText,
			Name:         pm.OriginalText,
			Quantity:     pm.Quantity,
			Confidence:   pm.Confidence,
			Reasons:      reasons,
		}
		if c := grammar.Classify(pm.OriginalText); c.Kind == extract.LineMaterial {
			item.Name = c.Name
		}
		if pm.Identified() {
			item.MaterialID = pm.Material.ID
		}
		if pm.Categorized() {
			item.CategoryCode = pm.Category.Code
		}

		if !pm.Identified() || pm.Confidence < r.threshold {
			for _, m := range snap.Suggest(item.Name, r.maxSuggestions) {
				item.Suggestions = append(item.Suggestions, Suggestion{
					MaterialID: m.Material.ID,
					Name:       m.Material.Name,
					Matched:    m.Matched,
					GWPFactor:  m.Material.GWPFactor,
					Confidence: m.Confidence,
				})
			}
		}

		queue = append(queue, item)
	}

	return queue
}
