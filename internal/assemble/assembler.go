// Package assemble turns parsed line items into a document with totals,
// a per-category breakdown and metadata.
package assemble

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/lightship/internal/model"
)

// HighConfidenceThreshold separates confident matches from ones worth a second look
const HighConfidenceThreshold = 0.8

// Assembler builds documents from parsed materials
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an assembler. A nil clock uses the wall clock.
func NewAssembler(clock func() time.Time) *Assembler {
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{now: clock}
}

// Assemble wraps parsed materials into a document. Metadata fields left empty
// are filled in: the shipyard from the file name stem and the parse time from
// the clock. Assembling an assembled document's parts again yields the same document.
func (a *Assembler) Assemble(fileName string, materials []model.ParsedMaterial, meta model.DocumentMetadata) model.ParsedDocument {
	if meta.Shipyard == "" {
		meta.Shipyard = ShipyardFromFileName(fileName)
	}
	if meta.ParsedAt.IsZero() {
		meta.ParsedAt = a.now().UTC()
	}

	items := make([]model.ParsedMaterial, len(materials))
	copy(items, materials)

	return Reassemble(model.ParsedDocument{
		FileName:  fileName,
		Materials: items,
		Metadata:  meta,
	})
}

// Reassemble recomputes the total weight and category breakdown from the
// document's current material list. Used after corrections edit the list.
func Reassemble(doc model.ParsedDocument) model.ParsedDocument {
	if doc.Materials == nil {
		doc.Materials = []model.ParsedMaterial{}
	}

	doc.TotalWeight = 0
	doc.CategoryBreakdown = make(map[string]model.CategoryBucket)

	for _, item := range doc.Materials {
		doc.TotalWeight += item.Quantity
		if !item.Categorized() {
			continue
		}

		bucket, ok := doc.CategoryBreakdown[item.Category.ID]
		if !ok {
			bucket = model.CategoryBucket{Category: *item.Category}
		}
		bucket.Materials = append(bucket.Materials, item)
		bucket.TotalWeight += item.Quantity
		doc.CategoryBreakdown[item.Category.ID] = bucket
	}

	return doc
}

// ShipyardFromFileName returns the part of the base name before the first dot
func ShipyardFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	stem, _, _ := strings.Cut(base, ".")
	return stem
}

// Stats summarizes recognition quality. Rates are percentages; an empty
// document reports zeros rather than dividing by zero.
func Stats(doc model.ParsedDocument) model.ParsingStats {
	stats := model.ParsingStats{
		FileName:       doc.FileName,
		TotalMaterials: len(doc.Materials),
	}

	var highConfidence int
	var confidenceSum float64
	for _, item := range doc.Materials {
		if item.Identified() {
			stats.IdentifiedMaterials++
		}
		if item.Categorized() {
			stats.CategorizedMaterials++
		}
		if item.Confidence > HighConfidenceThreshold {
			highConfidence++
		}
		confidenceSum += item.Confidence
	}

	stats.UnidentifiedMaterials = stats.TotalMaterials - stats.IdentifiedMaterials
	stats.UncategorizedMaterials = stats.TotalMaterials - stats.CategorizedMaterials

	if stats.TotalMaterials > 0 {
		total := float64(stats.TotalMaterials)
		stats.IdentificationRate = float64(stats.IdentifiedMaterials) / total * 100
		stats.CategorizationRate = float64(stats.CategorizedMaterials) / total * 100
		stats.HighConfidenceRate = float64(highConfidence) / total * 100
		stats.AverageConfidence = confidenceSum / total
	}

	return stats
}
