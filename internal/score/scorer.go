package score

import (
	"fmt"

	"github.com/ppiankov/lightship/internal/model"
)

// DefaultReviewThreshold is the confidence below which a match needs review
const DefaultReviewThreshold = 0.8

// Scorer generates diagnostic signals about a result.
// Signals explain the numbers; they never change them.
type Scorer struct {
	reviewThreshold float64
}

// NewScorer creates a new scorer
func NewScorer(reviewThreshold float64) *Scorer {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &Scorer{reviewThreshold: reviewThreshold}
}

// Signals inspects the documents and their aggregated result
func (s *Scorer) Signals(docs []model.ParsedDocument, result model.GWPResult) []model.Signal {
	var items []model.ParsedMaterial
	for _, doc := range docs {
		items = append(items, doc.Materials...)
	}

	var signals []model.Signal

	// 1. Empty documents
	for _, doc := range docs {
		if len(doc.Materials) == 0 {
			signals = append(signals, model.Signal{
				Type:        model.SignalEmptyDocument,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("No material lines recognized in %s", doc.FileName),
				Data: map[string]interface{}{
					"file_name": doc.FileName,
					"origin":    doc.Metadata.Origin,
				},
			})
		}
	}

	if len(items) == 0 {
		return signals
	}

	// 2. Identification coverage
	signals = append(signals, s.identification(items))

	// 3. Category coverage
	signals = append(signals, s.categorization(items))

	// 4. Matches worth a second look
	if sig, ok := s.lowConfidence(items); ok {
		signals = append(signals, sig)
	}

	// 5. Share of the total computed from the default factor
	if sig, ok := s.defaultFactorShare(result); ok {
		signals = append(signals, sig)
	}

	// 6. Regulatory benchmark
	if result.ExceedsRegulatoryLimit {
		signals = append(signals, model.Signal{
			Type:        model.SignalRegulatoryLimit,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("Total GWP %.1f kg CO2e exceeds regulatory limit %.1f", result.TotalGWP, result.Benchmarks.RegulatoryLimit),
			Data: map[string]interface{}{
				"total_gwp":        result.TotalGWP,
				"regulatory_limit": result.Benchmarks.RegulatoryLimit,
				"excess":           result.TotalGWP - result.Benchmarks.RegulatoryLimit,
				"formula":          "total_gwp > regulatory_limit",
			},
		})
	}

	return signals
}

// identification reports the share of lines matched to the catalog
func (s *Scorer) identification(items []model.ParsedMaterial) model.Signal {
	identified := 0
	for _, item := range items {
		if item.Identified() {
			identified++
		}
	}
	rate := float64(identified) / float64(len(items)) * 100

	return model.Signal{
		Type:        model.SignalIdentificationRate,
		Severity:    rateSeverity(rate),
		Description: fmt.Sprintf("Identified %d/%d materials (%.0f%%)", identified, len(items), rate),
		Data: map[string]interface{}{
			"identified": identified,
			"total":      len(items),
			"rate":       rate,
			"formula":    "identified / total * 100",
		},
	}
}

// categorization reports the share of lines under a macro-group
func (s *Scorer) categorization(items []model.ParsedMaterial) model.Signal {
	categorized := 0
	for _, item := range items {
		if item.Categorized() {
			categorized++
		}
	}
	rate := float64(categorized) / float64(len(items)) * 100

	return model.Signal{
		Type:        model.SignalCategorizationRate,
		Severity:    rateSeverity(rate),
		Description: fmt.Sprintf("Categorized %d/%d materials (%.0f%%)", categorized, len(items), rate),
		Data: map[string]interface{}{
			"categorized": categorized,
			"total":       len(items),
			"rate":        rate,
			"formula":     "categorized / total * 100",
		},
	}
}

// lowConfidence counts identified items below the review threshold
func (s *Scorer) lowConfidence(items []model.ParsedMaterial) (model.Signal, bool) {
	var lines []int
	for _, item := range items {
		if item.Identified() && item.Confidence < s.reviewThreshold {
			lines = append(lines, item.LineNumber)
		}
	}
	if len(lines) == 0 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalLowConfidence,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d matches below confidence %.2f should be reviewed", len(lines), s.reviewThreshold),
		Data: map[string]interface{}{
			"count":     len(lines),
			"threshold": s.reviewThreshold,
			"lines":     lines,
		},
	}, true
}

// defaultFactorShare measures how much of the total rests on the default factor
func (s *Scorer) defaultFactorShare(result model.GWPResult) (model.Signal, bool) {
	if result.TotalGWP <= 0 {
		return model.Signal{}, false
	}

	var defaultGWP float64
	count := 0
	for _, r := range result.Materials {
		if r.DefaultFactor {
			defaultGWP += r.GWPTotal
			count++
		}
	}
	if count == 0 {
		return model.Signal{}, false
	}

	share := defaultGWP / result.TotalGWP * 100
	severity := model.SeverityInfo
	if share > 50 {
		severity = model.SeverityCritical
	} else if share > 20 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalDefaultFactorShare,
		Severity:    severity,
		Description: fmt.Sprintf("%.1f%% of total GWP uses the default factor (%d items)", share, count),
		Data: map[string]interface{}{
			"items":       count,
			"default_gwp": defaultGWP,
			"total_gwp":   result.TotalGWP,
			"share":       share,
			"formula":     "sum(gwp of unidentified items) / total_gwp * 100",
		},
	}, true
}

func rateSeverity(rate float64) model.SignalSeverity {
	switch {
	case rate < 50:
		return model.SeverityCritical
	case rate < 80:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
