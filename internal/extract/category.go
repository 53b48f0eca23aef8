package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/lightship/internal/model"
)

// codeMarkerPattern matches "CODE <dash> free text"; the code is checked against the taxonomy
var codeMarkerPattern = regexp.MustCompile(`^([A-Za-z]{2,3})\s*[-–—]\s*(.+)$`)

// CategoryResolver resolves category markers against a fixed taxonomy.
// It is stateless after construction; the current category belongs to the parser.
type CategoryResolver struct {
	byCode map[string]model.Category // upper-case code
	byName map[string]model.Category // lower-case full name
}

// NewCategoryResolver builds both lookup tables once from the taxonomy
func NewCategoryResolver(categories []model.Category) *CategoryResolver {
	r := &CategoryResolver{
		byCode: make(map[string]model.Category, len(categories)),
		byName: make(map[string]model.Category, len(categories)),
	}
	for _, c := range categories {
		if code := strings.ToUpper(strings.TrimSpace(c.Code)); code != "" {
			r.byCode[code] = c
		}
		if name := strings.ToLower(strings.TrimSpace(c.Name)); name != "" {
			r.byName[name] = c
		}
	}
	return r
}

// Resolve resolves a marker line in either short-code or exact full-name form.
// Partial or approximate names do not match.
func (r *CategoryResolver) Resolve(marker string) (model.Category, bool) {
	marker = strings.TrimSpace(marker)
	if c, ok := r.ResolveCodeMarker(marker); ok {
		return c, true
	}
	return r.ResolveName(marker)
}

// ResolveCodeMarker resolves the "CODE - text" form
func (r *CategoryResolver) ResolveCodeMarker(line string) (model.Category, bool) {
	m := codeMarkerPattern.FindStringSubmatch(line)
	if m == nil {
		return model.Category{}, false
	}
	return r.ResolveCode(m[1])
}

// ResolveCode resolves a bare short code, case-insensitively
func (r *CategoryResolver) ResolveCode(code string) (model.Category, bool) {
	c, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// ResolveName resolves an exact official name, case-insensitively
func (r *CategoryResolver) ResolveName(name string) (model.Category, bool) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
