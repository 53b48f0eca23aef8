package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/lightship/internal/extract"
	"github.com/ppiankov/lightship/internal/model"
)

// Snapshot is an immutable view of the catalog and category taxonomy.
// Every parse in a session matches against the same snapshot; a fresh one
// is only obtained through an explicit refresh. Safe for concurrent use.
type Snapshot struct {
	version    string
	materials  []model.Material
	categories []model.Category
	materialAt map[string]int
	categoryAt map[string]int
	matcher    *extract.Matcher
	resolver   *extract.CategoryResolver
}

// NewSnapshot validates the inputs and builds the lookup structures.
// Material IDs, category IDs and category codes must be unique.
func NewSnapshot(materials []model.Material, categories []model.Category, minFragmentLength int) (*Snapshot, error) {
	s := &Snapshot{
		materials:  cloneMaterials(materials),
		categories: cloneCategories(categories),
		materialAt: make(map[string]int, len(materials)),
		categoryAt: make(map[string]int, len(categories)),
	}

	for i, m := range s.materials {
		if err := ValidateMaterial(m); err != nil {
			return nil, err
		}
		if _, dup := s.materialAt[m.ID]; dup {
			return nil, fmt.Errorf("%w: material id %q", ErrDuplicate, m.ID)
		}
		s.materialAt[m.ID] = i
	}

	codes := make(map[string]string, len(categories))
	names := make(map[string]string, len(categories))
	for i, c := range s.categories {
		if err := ValidateCategory(c); err != nil {
			return nil, err
		}
		if _, dup := s.categoryAt[c.ID]; dup {
			return nil, fmt.Errorf("%w: category id %q", ErrDuplicate, c.ID)
		}
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if other, dup := codes[code]; dup {
			return nil, fmt.Errorf("%w: category code %q used by %s and %s", ErrDuplicate, c.Code, other, c.ID)
		}
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if other, dup := names[name]; dup {
			return nil, fmt.Errorf("%w: category name %q used by %s and %s", ErrDuplicate, c.Name, other, c.ID)
		}
		s.categoryAt[c.ID] = i
		codes[code] = c.ID
		names[name] = c.ID
	}

	s.matcher = extract.NewMatcher(s.materials, minFragmentLength)
	s.resolver = extract.NewCategoryResolver(s.categories)
	s.version = contentVersion(s.materials, s.categories)

	return s, nil
}

// contentVersion derives a short stable version from the snapshot contents
func contentVersion(materials []model.Material, categories []model.Category) string {
	payload, err := json.Marshal(struct {
		Materials  []model.Material `json:"materials"`
		Categories []model.Category `json:"categories"`
	}{materials, categories})
	if err != nil {
		return "unknown"
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:6])
}

// Version identifies the snapshot contents; equal contents yield equal versions
func (s *Snapshot) Version() string {
	return s.version
}

// Materials returns a copy of all materials in catalog order
func (s *Snapshot) Materials() []model.Material {
	return cloneMaterials(s.materials)
}

// Categories returns a copy of the taxonomy in catalog order
func (s *Snapshot) Categories() []model.Category {
	return cloneCategories(s.categories)
}

// MaterialByID looks up a material by its identifier
func (s *Snapshot) MaterialByID(id string) (model.Material, bool) {
	i, ok := s.materialAt[id]
	if !ok {
		return model.Material{}, false
	}
	return cloneMaterial(s.materials[i]), true
}

// CategoryByID looks up a category by its identifier
func (s *Snapshot) CategoryByID(id string) (model.Category, bool) {
	i, ok := s.categoryAt[id]
	if !ok {
		return model.Category{}, false
	}
	return s.categories[i], true
}

// CategoryByCode looks up a category by its short code, case-insensitively
func (s *Snapshot) CategoryByCode(code string) (model.Category, bool) {
	return s.resolver.ResolveCode(code)
}

// FindMaterial resolves a free-text name through the matcher
func (s *Snapshot) FindMaterial(name string) (extract.Match, bool) {
	return s.matcher.Match(name)
}

// Suggest returns best-guess candidates for human review
func (s *Snapshot) Suggest(name string, limit int) []extract.Match {
	return s.matcher.Suggest(name, limit)
}

// MaterialsByLegacyCategory returns materials whose legacy label matches, case-insensitively
func (s *Snapshot) MaterialsByLegacyCategory(label string) []model.Material {
	var out []model.Material
	for _, m := range s.materials {
		if strings.EqualFold(m.Category, label) {
			out = append(out, cloneMaterial(m))
		}
	}
	return out
}

// NewParser returns a line parser bound to this snapshot
func (s *Snapshot) NewParser(opts extract.ParserOptions) *extract.LineParser {
	return extract.NewLineParser(s.matcher, s.resolver, opts)
}
