package extract

import (
	"reflect"
	"testing"
)

func TestGrammar_RuleOrder(t *testing.T) {
	g := NewGrammar(NewCategoryResolver(testCategories()), 3)

	expected := []string{"min_length", "category_code", "category_name", "header", "material_spaced", "material_colon"}
	if got := g.Rules(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected rules %v, got %v", expected, got)
	}
}

func TestGrammar_Classify(t *testing.T) {
	g := NewGrammar(NewCategoryResolver(testCategories()), 3)

	tests := []struct {
		line     string
		kind     LineKind
		rule     string
		name     string
		quantity float64
	}{
		{"", LineSkip, "min_length", "", 0},
		{"ab", LineSkip, "min_length", "", 0},
		{"HS - Hull", LineCategory, "category_code", "", 0},
		{"Paintings", LineCategory, "category_name", "", 0},
		{"Macrogruppo | Materiale | Peso", LineHeader, "header", "", 0},
		{"Material Weight Category", LineHeader, "header", "", 0},
		{"Acciaio 100 t", LineMaterial, "material_spaced", "Acciaio", 100000},
		{"Acciaio: 2,5 tonnes", LineMaterial, "material_spaced", "Acciaio", 2500},
		{"Acciaio:2,5 tonnes", LineMaterial, "material_colon", "Acciaio", 2500},
		{"Rame 12.5 kg", LineMaterial, "material_spaced", "Rame", 12.5},
		{"  Acciaio   inox*  40 KG ", LineMaterial, "material_spaced", "Acciaio inox", 40},
		{"Acciaio 0 t", LineNoise, "", "", 0},
		{"Acciaio 10 m3", LineNoise, "", "", 0},
		{"Peso totale 100 t", LineMaterial, "material_spaced", "Peso totale", 100000},
		{"Just some commentary", LineNoise, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c := g.Classify(tt.line)
			if c.Kind != tt.kind {
				t.Fatalf("Expected kind %s, got %s", tt.kind, c.Kind)
			}
			if c.Rule != tt.rule {
				t.Errorf("Expected rule %q, got %q", tt.rule, c.Rule)
			}
			if c.Name != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, c.Name)
			}
			if c.Quantity != tt.quantity {
				t.Errorf("Expected quantity %v, got %v", tt.quantity, c.Quantity)
			}
		})
	}
}

func TestIsHeaderLine(t *testing.T) {
	if !IsHeaderLine("Unità di misura") {
		t.Error("Expected keyword line without digits to be a header")
	}
	if IsHeaderLine("Peso 10 t") {
		t.Error("Expected line with digits not to be a header")
	}
	if IsHeaderLine("Acciaio inox") {
		t.Error("Expected line without keywords not to be a header")
	}
}
