package catalog

import (
	"crypto/rand"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ppiankov/lightship/internal/model"
)

// CustomIDPrefix marks materials added by users rather than shipped defaults
const CustomIDPrefix = "custom_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewMaterialID mints a sortable identifier for a custom material
func NewMaterialID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return CustomIDPrefix + strings.ToLower(ulid.MustNew(ulid.Now(), entropy).String())
}

// ValidateMaterial checks the invariants a catalog material must satisfy
func ValidateMaterial(m model.Material) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidMaterial)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: %s: name is required", ErrInvalidMaterial, m.ID)
	}
	if math.IsNaN(m.GWPFactor) || math.IsInf(m.GWPFactor, 0) || m.GWPFactor < 0 {
		return fmt.Errorf("%w: %s: gwp_factor must be a non-negative number, got %v", ErrInvalidMaterial, m.ID, m.GWPFactor)
	}
	if m.Density != nil && *m.Density <= 0 {
		return fmt.Errorf("%w: %s: density must be positive, got %v", ErrInvalidMaterial, m.ID, *m.Density)
	}
	return nil
}

// ValidateCategory checks the invariants a taxonomy category must satisfy
func ValidateCategory(c model.Category) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCategory)
	}
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: %s: code is required", ErrInvalidCategory, c.ID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: %s: name is required", ErrInvalidCategory, c.ID)
	}
	return nil
}

// prepareMaterial trims fields, fills the default unit and mints an ID when missing
func prepareMaterial(m model.Material) model.Material {
	m = cloneMaterial(m)
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.Category = strings.TrimSpace(m.Category)
	if m.ID == "" {
		m.ID = NewMaterialID()
	}
	if m.Unit == "" {
		m.Unit = model.CanonicalUnit
	}

	aliases := m.Aliases[:0]
	for _, a := range m.Aliases {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	m.Aliases = aliases
	return m
}

// cloneMaterial returns a deep copy so snapshots never share slices with stores
func cloneMaterial(m model.Material) model.Material {
	return m.Clone()
}

func cloneMaterials(in []model.Material) []model.Material {
	out := make([]model.Material, len(in))
	for i, m := range in {
		out[i] = cloneMaterial(m)
	}
	return out
}

func cloneCategories(in []model.Category) []model.Category {
	return append([]model.Category(nil), in...)
}

// ImportResult reports the outcome of a bulk import
type ImportResult struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  []string `json:"skipped,omitempty"` // Reasons for each skipped entry
}

// prepareImport validates entries for import; invalid entries are skipped, not fatal.
// Imports additionally require the legacy category label.
func prepareImport(materials []model.Material) ([]model.Material, []string) {
	var valid []model.Material
	var skipped []string
	for i, m := range materials {
		m = prepareMaterial(m)
		if m.Category == "" {
			skipped = append(skipped, fmt.Sprintf("entry %d (%s): category is required", i, m.Name))
			continue
		}
		if err := ValidateMaterial(m); err != nil {
			skipped = append(skipped, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		valid = append(valid, m)
	}
	return valid, skipped
}
