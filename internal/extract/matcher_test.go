package extract

import (
	"testing"

	"github.com/ppiankov/lightship/internal/model"
)

func TestMatcher_Precedence(t *testing.T) {
	m := NewMatcher(testMaterials(), DefaultMinFragmentLength)

	tests := []struct {
		query      string
		expectedID string
		confidence float64
		rule       MatchRule
	}{
		{"Acciaio inossidabile", "steel_stainless", 1.0, RuleExactName},
		{"ACCIAIO INOSSIDABILE", "steel_stainless", 1.0, RuleExactName},
		{"inox", "steel_stainless", 0.95, RuleExactAlias},
		{"acciaio inossidabile marino", "steel_stainless", 0.8, RuleNameSubstring},
		{"Acciaio", "steel_carbon", 0.95, RuleExactAlias},
		{"Alluminio", "aluminum_primary", 0.95, RuleExactAlias},
		{"lamiera inox", "steel_stainless", 0.7, RuleAliasSubstring},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := m.Match(tt.query)
			if !ok {
				t.Fatalf("Expected a match for %q", tt.query)
			}
			if got.Material.ID != tt.expectedID {
				t.Errorf("Expected material %s, got %s", tt.expectedID, got.Material.ID)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("Expected confidence %v, got %v", tt.confidence, got.Confidence)
			}
			if got.Rule != tt.rule {
				t.Errorf("Expected rule %s, got %s", tt.rule, got.Rule)
			}
		})
	}
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher(testMaterials(), DefaultMinFragmentLength)

	for _, q := range []string{"", "   ", "Legno di teak", "xyz"} {
		if got, ok := m.Match(q); ok {
			t.Errorf("Expected no match for %q, got %s", q, got.Material.ID)
		}
	}
}

func TestMatcher_ReturnsCopies(t *testing.T) {
	materials := testMaterials()
	m := NewMatcher(materials, DefaultMinFragmentLength)

	materials[0].Aliases[0] = "caller"
	got, ok := m.Match("Acciaio")
	if !ok || got.Material.ID != "steel_carbon" {
		t.Fatalf("Expected steel_carbon after caller mutation, got %+v", got)
	}

	got.Material.Aliases[0] = "edited"
	again, _ := m.Match("Acciaio")
	if again.Material.Aliases[0] != "acciaio" {
		t.Errorf("Expected alias acciaio, got %s", again.Material.Aliases[0])
	}

	for _, s := range m.Suggest("acciaio marino", 3) {
		if len(s.Material.Aliases) > 0 {
			s.Material.Aliases[0] = "edited"
		}
	}
	if again, _ := m.Match("Acciaio"); again.Material.ID != "steel_carbon" || again.Material.Aliases[0] != "acciaio" {
		t.Errorf("Expected Suggest to return copies, got %+v", again.Material)
	}
}

func TestMatcher_ShortFragmentsIgnored(t *testing.T) {
	m := NewMatcher(testMaterials(), DefaultMinFragmentLength)

	// "pe" and "cu" are aliases but too short to match as substrings
	if got, ok := m.Match("pelle"); ok {
		t.Errorf("Expected no match for 'pelle', got %s", got.Material.ID)
	}
	if got, ok := m.Match("cuoio"); ok {
		t.Errorf("Expected no match for 'cuoio', got %s", got.Material.ID)
	}

	// Exact equality still applies
	got, ok := m.Match("PE")
	if !ok || got.Material.ID != "polyethylene" || got.Confidence != 0.95 {
		t.Errorf("Expected exact alias match on 'PE', got %+v (ok=%v)", got, ok)
	}
}

func TestMatcher_MinFragmentOneAllowsShortAliases(t *testing.T) {
	m := NewMatcher(testMaterials(), 1)

	tests := []struct {
		query      string
		expectedID string
	}{
		{"pelle", "polyethylene"},
		{"cuoio", "copper"},
	}
	for _, tt := range tests {
		got, ok := m.Match(tt.query)
		if !ok {
			t.Fatalf("Expected a match for %q", tt.query)
		}
		if got.Material.ID != tt.expectedID || got.Rule != RuleAliasSubstring || got.Confidence != 0.7 {
			t.Errorf("Expected %s via alias substring for %q, got %s via %s (%v)", tt.expectedID, tt.query, got.Material.ID, got.Rule, got.Confidence)
		}
	}
}

func TestMatcher_TieBreakLongestMatch(t *testing.T) {
	materials := []model.Material{
		{ID: "glass", Name: "Vetro"},
		{ID: "tempered", Name: "Vetro temperato"},
	}
	m := NewMatcher(materials, DefaultMinFragmentLength)

	got, ok := m.Match("vetro temperato 8mm")
	if !ok {
		t.Fatal("Expected a match")
	}
	if got.Material.ID != "tempered" {
		t.Errorf("Expected the longer name to win, got %s", got.Material.ID)
	}
	if got.Matched != "vetro temperato" {
		t.Errorf("Expected matched text 'vetro temperato', got %q", got.Matched)
	}
}

func TestMatcher_TieBreakCatalogOrder(t *testing.T) {
	materials := []model.Material{
		{ID: "red", Name: "Rame rosso"},
		{ID: "yellow", Name: "Rame giallo"},
	}
	m := NewMatcher(materials, DefaultMinFragmentLength)

	for i := 0; i < 10; i++ {
		got, ok := m.Match("rame")
		if !ok {
			t.Fatal("Expected a match")
		}
		if got.Material.ID != "red" {
			t.Fatalf("Expected catalog order to win, got %s", got.Material.ID)
		}
	}
}

func TestMatcher_HigherRuleBeatsLongerMatch(t *testing.T) {
	materials := []model.Material{
		{ID: "long", Name: "Acciaio inossidabile duplex", Aliases: []string{"acciaio inossidabile duplex"}},
		{ID: "short", Name: "Duplex", Aliases: []string{"acciaio inossidabile"}},
	}
	m := NewMatcher(materials, DefaultMinFragmentLength)

	// Exact alias (rule 2) on "short" beats the substring rule on "long"
	got, ok := m.Match("acciaio inossidabile")
	if !ok {
		t.Fatal("Expected a match")
	}
	if got.Material.ID != "short" || got.Rule != RuleExactAlias {
		t.Errorf("Expected exact alias on 'short', got %s via %s", got.Material.ID, got.Rule)
	}
}

func TestMatcher_Suggest(t *testing.T) {
	m := NewMatcher(testMaterials(), DefaultMinFragmentLength)

	suggestions := m.Suggest("lamiera acciaio", 5)
	if len(suggestions) < 2 {
		t.Fatalf("Expected at least 2 suggestions, got %d", len(suggestions))
	}
	for _, s := range suggestions {
		if s.Confidence != ConfidenceSuggestion {
			t.Errorf("Expected suggestion confidence 0.5, got %v", s.Confidence)
		}
	}
	if suggestions[0].Material.ID != "steel_carbon" {
		t.Errorf("Expected first suggestion steel_carbon, got %s", suggestions[0].Material.ID)
	}

	if got := m.Suggest("acciaio", 1); len(got) != 1 {
		t.Errorf("Expected limit to be honored, got %d", len(got))
	}
	if got := m.Suggest("", 5); got != nil {
		t.Errorf("Expected no suggestions for empty query, got %v", got)
	}
}
