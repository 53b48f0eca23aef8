package extract

import "testing"

func TestCategoryResolver_Resolve(t *testing.T) {
	r := NewCategoryResolver(testCategories())

	tests := []struct {
		marker     string
		expectedID string
		found      bool
	}{
		{"HS - Hull", "hull_structures", true},
		{"hs - scafo", "hull_structures", true},
		{"MP – Machinery", "machinery_propulsion", true},
		{"PA—Pitture", "paintings", true},
		{"Hull and Structures", "hull_structures", true},
		{"MACHINERY AND PROPULSION", "machinery_propulsion", true},
		{"Hull and Structure", "", false}, // Near miss, no fuzzy matching
		{"XX - Unknown", "", false},
		{"HS", "", false},
		{"Acciaio - 10 t", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			c, ok := r.Resolve(tt.marker)
			if ok != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, ok)
			}
			if ok && c.ID != tt.expectedID {
				t.Errorf("Expected category %s, got %s", tt.expectedID, c.ID)
			}
		})
	}
}

func TestCategoryResolver_CodeAndIDAgree(t *testing.T) {
	r := NewCategoryResolver(testCategories())

	for _, c := range testCategories() {
		byCode, ok := r.ResolveCode(c.Code)
		if !ok {
			t.Fatalf("Expected code %s to resolve", c.Code)
		}
		byName, ok := r.ResolveName(c.Name)
		if !ok {
			t.Fatalf("Expected name %q to resolve", c.Name)
		}
		if byCode.ID != c.ID || byName.ID != c.ID {
			t.Errorf("Expected %s from both tables, got %s and %s", c.ID, byCode.ID, byName.ID)
		}
	}
}
