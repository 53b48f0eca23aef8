package validate

import (
	"errors"
	"testing"

	"github.com/ppiankov/lightship/internal/assemble"
	"github.com/ppiankov/lightship/internal/catalog"
	"github.com/ppiankov/lightship/internal/extract"
	"github.com/ppiankov/lightship/internal/model"
)

const reviewText = `HS - Hull
Acciaio 100 t
Lamiera acciaio 2 t
Misterium 5 kg
MP - Machinery
Rame 200 kg`

func testSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.NewSnapshot(catalog.DefaultMaterials(), catalog.DefaultCategories(), extract.DefaultMinFragmentLength)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func testDocument(t *testing.T, snap *catalog.Snapshot, text string) model.ParsedDocument {
	t.Helper()
	items := snap.NewParser(extract.DefaultParserOptions()).Parse(text)
	return assemble.NewAssembler(nil).Assemble("yard.txt", items, model.DocumentMetadata{})
}

func TestQueue_SelectsItemsNeedingReview(t *testing.T) {
	snap := testSnapshot(t)
	doc := testDocument(t, snap, reviewText)

	queue := Queue(doc, snap)
	if len(queue) != 2 {
		t.Fatalf("Expected 2 items in queue, got %d: %+v", len(queue), queue)
	}

	low := queue[0]
	if low.LineNumber != 3 {
		t.Errorf("Expected line 3 first, got %d", low.LineNumber)
	}
	if len(low.Reasons) != 1 || low.Reasons[0] != ReasonLowConfidence {
		t.Errorf("Expected low_confidence, got %v", low.Reasons)
	}
	if low.Name != "Lamiera acciaio" {
		t.Errorf("Expected cleaned name, got %q", low.Name)
	}
	if len(low.Suggestions) == 0 || low.Suggestions[0].MaterialID != "steel_carbon" {
		t.Errorf("Expected steel_carbon suggestion, got %+v", low.Suggestions)
	}
	for _, s := range low.Suggestions {
		if s.Confidence != extract.ConfidenceSuggestion {
			t.Errorf("Expected suggestion confidence %v, got %v", extract.ConfidenceSuggestion, s.Confidence)
		}
	}

	unknown := queue[1]
	if unknown.LineNumber != 4 || unknown.Reasons[0] != ReasonUnidentified {
		t.Errorf("Expected unidentified line 4, got %+v", unknown)
	}
	if unknown.CategoryCode != "HS" {
		t.Errorf("Expected HS context on unidentified item, got %q", unknown.CategoryCode)
	}
}

func TestQueue_Uncategorized(t *testing.T) {
	snap := testSnapshot(t)
	doc := testDocument(t, snap, "Acciaio 100 t")

	queue := Queue(doc, snap)
	if len(queue) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(queue))
	}
	if len(queue[0].Reasons) != 1 || queue[0].Reasons[0] != ReasonUncategorized {
		t.Errorf("Expected only uncategorized, got %v", queue[0].Reasons)
	}
	if len(queue[0].Suggestions) != 0 {
		t.Errorf("Expected no suggestions for a confident match, got %d", len(queue[0].Suggestions))
	}
}

func TestQueue_MaxSuggestions(t *testing.T) {
	snap := testSnapshot(t)
	doc := testDocument(t, snap, "HS - Hull\nXyz acciai 3 t")

	r := NewReviewer(model.MatcherConfig{ReviewThreshold: 0.8, MaxSuggestions: 2}, extract.DefaultParserOptions())
	queue := r.Queue(doc, snap)
	if len(queue) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(queue))
	}
	if len(queue[0].Suggestions) > 2 {
		t.Errorf("Expected at most 2 suggestions, got %d", len(queue[0].Suggestions))
	}
}

func TestQueue_UsesParserOptions(t *testing.T) {
	snap := testSnapshot(t)
	opts := extract.DefaultParserOptions()
	opts.MinLineLength = 10

	items := snap.NewParser(opts).Parse("Misterium 5 kg\nZk 5 kg")
	doc := assemble.NewAssembler(nil).Assemble("yard.txt", items, model.DocumentMetadata{})
	if len(doc.Materials) != 1 {
		t.Fatalf("Expected 1 parsed item, got %d", len(doc.Materials))
	}

	queue := NewReviewer(model.DefaultConfig().Matcher, opts).Queue(doc, snap)
	if len(queue) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(queue))
	}
	if queue[0].Name != "Misterium" {
		t.Errorf("Expected name Misterium, got %q", queue[0].Name)
	}

	strict := opts
	strict.MinLineLength = 50
	queue = NewReviewer(model.DefaultConfig().Matcher, strict).Queue(doc, snap)
	if queue[0].Name != "Misterium 5 kg" {
		t.Errorf("Expected raw line when the grammar rejects it, got %q", queue[0].Name)
	}
}

func TestApply_Corrections(t *testing.T) {
	snap := testSnapshot(t)
	doc := testDocument(t, snap, reviewText)

	corr, err := ParseCorrections([]byte(`
document: yard.txt
corrections:
  - line: 3
    material: steel_galvanized
  - line: 4
    remove: true
  - line: 6
    category: SE
    quantity_kg: 250
`))
	if err != nil {
		t.Fatalf("ParseCorrections: %v", err)
	}

	fixed, result, err := Apply(doc, snap, corr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if result.Materials != 1 || result.Removed != 1 || result.Categories != 1 || result.Quantities != 1 {
		t.Errorf("Unexpected apply counts: %+v", result)
	}
	if len(fixed.Materials) != 3 {
		t.Fatalf("Expected 3 materials after removal, got %d", len(fixed.Materials))
	}

	galv := fixed.Materials[1]
	if galv.Material.ID != "steel_galvanized" || galv.Confidence != 1 {
		t.Errorf("Expected steel_galvanized at confidence 1, got %s at %v", galv.Material.ID, galv.Confidence)
	}

	copper := fixed.Materials[2]
	if copper.Category.ID != "electrical_electronics" || copper.CategoryConfidence != 1 {
		t.Errorf("Expected electrical category at confidence 1, got %+v", copper.Category)
	}
	if copper.Quantity != 250 {
		t.Errorf("Expected quantity 250, got %v", copper.Quantity)
	}

	if fixed.TotalWeight != 100000+2000+250 {
		t.Errorf("Expected reassembled weight 102250, got %v", fixed.TotalWeight)
	}
	if _, ok := fixed.CategoryBreakdown["machinery_propulsion"]; ok {
		t.Error("Expected machinery bucket gone after recategorization")
	}

	// Original document untouched
	if len(doc.Materials) != 4 || doc.Materials[1].Material.ID != "steel_carbon" {
		t.Error("Expected original document unchanged")
	}
}

func TestApply_InvalidCorrections(t *testing.T) {
	snap := testSnapshot(t)
	doc := testDocument(t, snap, reviewText)
	negative := -1.0

	cases := []struct {
		name string
		corr Correction
	}{
		{"unknown line", Correction{Line: 99, Remove: true}},
		{"unknown material", Correction{Line: 2, Material: "unobtainium"}},
		{"unknown category", Correction{Line: 2, Category: "ZZ"}},
		{"negative quantity", Correction{Line: 2, Quantity: &negative}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := Apply(doc, snap, &Corrections{Corrections: []Correction{c.corr}})
			if !errors.Is(err, ErrInvalidCorrection) {
				t.Errorf("Expected ErrInvalidCorrection, got %v", err)
			}
		})
	}
}

func TestApply_NoCorrections(t *testing.T) {
	snap := testSnapshot(t)
	doc := testDocument(t, snap, reviewText)

	same, result, err := Apply(doc, snap, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(same.Materials) != len(doc.Materials) || result != (ApplyResult{}) {
		t.Errorf("Expected no-op, got %+v", result)
	}
}
