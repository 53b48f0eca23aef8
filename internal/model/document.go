package model

import "time"

// ParsedMaterial is one recognized material line of an inventory export.
// Material and Category are nil when the line could not be identified or
// categorized; such items are kept for human review rather than dropped.
type ParsedMaterial struct {
	OriginalText       string    `json:"original_text"`
	Material           *Material `json:"material"`
	Quantity           float64   `json:"quantity"` // Always kilograms
	Unit               string    `json:"unit"`
	Confidence         float64   `json:"confidence"`
	LineNumber         int       `json:"line_number"`
	Context            string    `json:"context,omitempty"`
	Category           *Category `json:"category"`
	CategoryConfidence float64   `json:"category_confidence"`
}

// Identified reports whether the line was matched to a catalog material
func (p ParsedMaterial) Identified() bool {
	return p.Material != nil
}

// Categorized reports whether the line carries a category
func (p ParsedMaterial) Categorized() bool {
	return p.Category != nil
}

// ParsedDocument is the assembled result of parsing one export
type ParsedDocument struct {
	FileName          string                    `json:"file_name"`
	Materials         []ParsedMaterial          `json:"materials"`
	TotalWeight       float64                   `json:"total_weight"` // kg
	CategoryBreakdown map[string]CategoryBucket `json:"category_breakdown"`
	Metadata          DocumentMetadata          `json:"metadata"`
}

// CategoryBucket groups the materials that resolved to one category
type CategoryBucket struct {
	Category    Category         `json:"category"`
	Materials   []ParsedMaterial `json:"materials"`
	TotalWeight float64          `json:"total_weight"`
}

// DocumentMetadata records where a document came from and how it was parsed
type DocumentMetadata struct {
	Source         string    `json:"source"`                    // Adapter that produced the text (text, html, delimited)
	Origin         string    `json:"origin,omitempty"`          // File path or URL
	Shipyard       string    `json:"shipyard,omitempty"`        // Derived from the file name stem
	CatalogVersion string    `json:"catalog_version,omitempty"` // Snapshot the materials were matched against
	ParsedAt       time.Time `json:"parsed_at"`
}

// ParsingStats summarizes recognition quality for a document
type ParsingStats struct {
	FileName               string  `json:"file_name"`
	TotalMaterials         int     `json:"total_materials"`
	IdentifiedMaterials    int     `json:"identified_materials"`
	CategorizedMaterials   int     `json:"categorized_materials"`
	UnidentifiedMaterials  int     `json:"unidentified_materials"`
	UncategorizedMaterials int     `json:"uncategorized_materials"`
	IdentificationRate     float64 `json:"identification_rate"`  // percent
	CategorizationRate     float64 `json:"categorization_rate"`  // percent
	HighConfidenceRate     float64 `json:"high_confidence_rate"` // percent of items with confidence > 0.8
	AverageConfidence      float64 `json:"average_confidence"`
}
