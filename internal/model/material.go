package model

// Material is a reference material from the catalog
type Material struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`                                     // Canonical display name
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`           // Alternate names, matched case-insensitively
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`         // Legacy free-form label (e.g., "Metalli")
	GWPFactor   float64  `json:"gwp_factor" yaml:"gwp_factor"`                         // kg CO2e per kg of material
	Unit        string   `json:"unit" yaml:"unit"`                                     // Canonical unit, normally "kg"
	Density     *float64 `json:"density,omitempty" yaml:"density,omitempty"`           // kg/m³, reserved for volume conversions
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Clone returns a deep copy that shares no slices or pointers with m
func (m Material) Clone() Material {
	if m.Aliases != nil {
		m.Aliases = append([]string(nil), m.Aliases...)
	}
	if m.Density != nil {
		d := *m.Density
		m.Density = &d
	}
	return m
}

// Category is a PCR macro-group used to bucket materials for reporting
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Code        string `json:"code" yaml:"code"` // Short mnemonic, e.g. "HS"
	Name        string `json:"name" yaml:"name"` // Full official name
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CanonicalUnit is the internal mass unit every quantity is converted to
const CanonicalUnit = "kg"
