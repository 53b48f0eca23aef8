package validate

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lightship/internal/assemble"
	"github.com/ppiankov/lightship/internal/catalog"
	"github.com/ppiankov/lightship/internal/model"
)

// ErrInvalidCorrection is returned when a correction cannot be applied
var ErrInvalidCorrection = errors.New("invalid correction")

// Correction is a reviewer's decision for one line, addressed by line number
type Correction struct {
	Line     int      `yaml:"line"`
	Material string   `yaml:"material,omitempty"`    // Catalog material ID
	Category string   `yaml:"category,omitempty"`    // Category ID or code
	Quantity *float64 `yaml:"quantity_kg,omitempty"` // Replacement quantity in kg
	Remove   bool     `yaml:"remove,omitempty"`
}

// Corrections is the YAML corrections file
type Corrections struct {
	Document    string       `yaml:"document,omitempty"` // Informational; the file name the decisions were made for
	Corrections []Correction `yaml:"corrections"`
}

// ApplyResult counts what the corrections changed
type ApplyResult struct {
	Materials  int `json:"materials"`
	Categories int `json:"categories"`
	Quantities int `json:"quantities"`
	Removed    int `json:"removed"`
}

// LoadCorrections reads a corrections file
func LoadCorrections(path string) (*Corrections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections: %w", err)
	}
	return ParseCorrections(data)
}

// ParseCorrections decodes corrections YAML
func ParseCorrections(data []byte) (*Corrections, error) {
	var c Corrections
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corrections: %w", err)
	}
	return &c, nil
}

// Apply applies corrections to a copy of the document and re-runs assembly.
// Selecting a material sets confidence to 1; selecting a category sets the
// category confidence to 1. Every correction is checked before any is applied,
// so an invalid file leaves the document untouched.
func Apply(doc model.ParsedDocument, snap *catalog.Snapshot, c *Corrections) (model.ParsedDocument, ApplyResult, error) {
	var result ApplyResult
	if c == nil || len(c.Corrections) == 0 {
		return doc, result, nil
	}

	byLine := make(map[int]int, len(doc.Materials))
	for i, pm := range doc.Materials {
		byLine[pm.LineNumber] = i
	}

	items := make([]model.ParsedMaterial, len(doc.Materials))
	copy(items, doc.Materials)
	removed := make(map[int]bool)

	for _, corr := range c.Corrections {
		i, ok := byLine[corr.Line]
		if !ok {
			return doc, ApplyResult{}, fmt.Errorf("%w: no material on line %d", ErrInvalidCorrection, corr.Line)
		}

		if corr.Remove {
			if !removed[i] {
				removed[i] = true
				result.Removed++
			}
			continue
		}

		if corr.Material != "" {
			m, ok := snap.MaterialByID(corr.Material)
			if !ok {
				return doc, ApplyResult{}, fmt.Errorf("%w: line %d: unknown material %q", ErrInvalidCorrection, corr.Line, corr.Material)
			}
			items[i].Material = &m
			items[i].Confidence = 1
			result.Materials++
		}

		if corr.Category != "" {
			cat, ok := snap.CategoryByID(corr.Category)
			if !ok {
				cat, ok = snap.CategoryByCode(corr.Category)
			}
			if !ok {
				return doc, ApplyResult{}, fmt.Errorf("%w: line %d: unknown category %q", ErrInvalidCorrection, corr.Line, corr.Category)
			}
			items[i].Category = &cat
			items[i].CategoryConfidence = 1
			result.Categories++
		}

		if corr.Quantity != nil {
			if *corr.Quantity <= 0 {
				return doc, ApplyResult{}, fmt.Errorf("%w: line %d: quantity must be positive, got %v", ErrInvalidCorrection, corr.Line, *corr.Quantity)
			}
			items[i].Quantity = *corr.Quantity
			items[i].Unit = model.CanonicalUnit
			result.Quantities++
		}
	}

	kept := make([]model.ParsedMaterial, 0, len(items))
	for i, pm := range items {
		if !removed[i] {
			kept = append(kept, pm)
		}
	}

	doc.Materials = kept
	return assemble.Reassemble(doc), result, nil
}
