package score

import (
	"sort"

	"github.com/ppiankov/lightship/internal/model"
)

// UncategorizedName labels the impact of items outside any macro-group
const UncategorizedName = "Uncategorized"

// Aggregator computes emissions totals from parsed materials.
// It is pure: the same items and policy always produce the same result.
type Aggregator struct {
	policy model.GWPConfig
}

// NewAggregator creates an aggregator with the given policy constants
func NewAggregator(policy model.GWPConfig) *Aggregator {
	return &Aggregator{policy: policy}
}

// Policy returns the constants results are computed with
func (a *Aggregator) Policy() model.GWPConfig {
	return a.policy
}

// AggregateDocuments aggregates the materials of every document in order
func (a *Aggregator) AggregateDocuments(docs []model.ParsedDocument) model.GWPResult {
	var items []model.ParsedMaterial
	for _, doc := range docs {
		items = append(items, doc.Materials...)
	}
	return a.Aggregate(items)
}

// Aggregate computes per-item emissions, the total, phase breakdown,
// benchmark status and per-category impact
func (a *Aggregator) Aggregate(items []model.ParsedMaterial) model.GWPResult {
	result := model.GWPResult{
		Materials: make([]model.MaterialResult, 0, len(items)),
		Benchmarks: model.Benchmarks{
			BestPractice:    a.policy.BestPractice,
			IndustryAverage: a.policy.IndustryAverage,
			RegulatoryLimit: a.policy.RegulatoryLimit,
		},
		Categories: []model.CategoryImpact{},
	}

	for _, item := range items {
		factor, defaulted := a.factorFor(item)
		gwp := item.Quantity * factor

		result.Materials = append(result.Materials, model.MaterialResult{
			Item:          item,
			GWPFactor:     factor,
			DefaultFactor: defaulted,
			GWPTotal:      gwp,
		})
		result.TotalGWP += gwp
		result.TotalWeight += item.Quantity

		result.Stats.TotalMaterials++
		if item.Identified() {
			result.Stats.IdentifiedMaterials++
		}
	}

	if result.TotalGWP > 0 {
		for i := range result.Materials {
			result.Materials[i].Percentage = result.Materials[i].GWPTotal / result.TotalGWP * 100
		}
	}

	sort.SliceStable(result.Materials, func(i, j int) bool {
		return result.Materials[i].GWPTotal > result.Materials[j].GWPTotal
	})

	if result.TotalWeight > 0 {
		result.GWPPerTonne = result.TotalGWP / result.TotalWeight
	}

	result.Breakdown = model.PhaseBreakdown{
		Production: result.TotalGWP * a.policy.ProductionRatio,
		Transport:  result.TotalGWP * a.policy.TransportRatio,
		Processing: result.TotalGWP * a.policy.ProcessingRatio,
	}

	result.Status = a.classify(result.TotalGWP)
	result.ExceedsRegulatoryLimit = result.TotalGWP > a.policy.RegulatoryLimit

	result.Stats.Unidentified = result.Stats.TotalMaterials - result.Stats.IdentifiedMaterials
	result.Stats.TotalWeight = result.TotalWeight
	if result.Stats.TotalMaterials > 0 {
		result.Stats.IdentificationRate = float64(result.Stats.IdentifiedMaterials) / float64(result.Stats.TotalMaterials) * 100
	}

	result.Categories = categoryImpact(result.Materials, result.TotalGWP)

	return result
}

// factorFor returns the item's catalog factor, or the policy default when unidentified
func (a *Aggregator) factorFor(item model.ParsedMaterial) (float64, bool) {
	if item.Identified() {
		return item.Material.GWPFactor, false
	}
	return a.policy.DefaultFactor, true
}

// classify compares a total against the benchmarks
func (a *Aggregator) classify(total float64) model.BenchmarkStatus {
	switch {
	case total <= 0:
		return model.StatusUnknown
	case total < a.policy.BestPractice:
		return model.StatusExcellent
	case total < a.policy.IndustryAverage:
		return model.StatusGood
	default:
		return model.StatusNeedsImprovement
	}
}

// categoryImpact groups results by macro-group, sorted by descending GWP.
// Uncategorized items are reported last as a single remainder.
func categoryImpact(results []model.MaterialResult, total float64) []model.CategoryImpact {
	impacts := []model.CategoryImpact{}
	index := make(map[string]int)
	var rest model.CategoryImpact

	for _, r := range results {
		if !r.Item.Categorized() {
			rest.GWP += r.GWPTotal
			rest.Weight += r.Item.Quantity
			rest.Items++
			continue
		}

		cat := r.Item.Category
		i, ok := index[cat.ID]
		if !ok {
			i = len(impacts)
			index[cat.ID] = i
			impacts = append(impacts, model.CategoryImpact{ID: cat.ID, Code: cat.Code, Name: cat.Name})
		}
		impacts[i].GWP += r.GWPTotal
		impacts[i].Weight += r.Item.Quantity
		impacts[i].Items++
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].GWP > impacts[j].GWP
	})

	if rest.Items > 0 {
		rest.Name = UncategorizedName
		impacts = append(impacts, rest)
	}

	if total > 0 {
		for i := range impacts {
			impacts[i].Percentage = impacts[i].GWP / total * 100
		}
	}
	return impacts
}
