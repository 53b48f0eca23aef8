package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/lightship/internal/model"
)

// LineKind is the classification of a single trimmed line
type LineKind string

const (
	LineSkip     LineKind = "skip"     // Empty or too short
	LineCategory LineKind = "category" // Category marker; sets the parser context
	LineHeader   LineKind = "header"   // Table header or label row
	LineMaterial LineKind = "material" // Material name with quantity and unit
	LineNoise    LineKind = "noise"    // Nothing recognized
)

// Classification is the outcome of running the grammar on one line
type Classification struct {
	Kind     LineKind
	Rule     string         // Name of the rule that fired
	Category model.Category // Set for LineCategory
	Name     string         // Cleaned material name, set for LineMaterial
	Quantity float64        // Kilograms, set for LineMaterial
	Unit     string         // Raw unit token, set for LineMaterial
}

// Rule is one entry of the grammar. Rules are tried in order and the first
// rule that returns ok decides the classification.
type Rule struct {
	Name  string
	Apply func(line string) (Classification, bool)
}

// HeaderKeywords mark table header rows when the row has no digits
var HeaderKeywords = []string{"macrogruppo", "materiale", "peso", "unità", "material", "weight", "category"}

// Material line patterns, in precedence order
var (
	spacedMaterialPattern = regexp.MustCompile(`(?i)^(.+?)\s+([0-9]+(?:[,.][0-9]+)?)\s*(t|kg|tonnes?|tons?)\s*$`)
	colonMaterialPattern  = regexp.MustCompile(`(?i)^(.+?):\s*([0-9]+(?:[,.][0-9]+)?)\s*(t|kg|tonnes?|tons?)\s*$`)
)

// Grammar is the ordered rule list used to classify inventory lines
type Grammar struct {
	rules []Rule
}

// NewGrammar builds the default grammar:
//
//	1. min_length      trimmed line shorter than minLineLength runes
//	2. category_code   "CODE - text" with CODE in the taxonomy
//	3. category_name   exact official category name
//	4. header          header keyword and no digit
//	5. material_spaced "<name> <number> <unit>"
//	6. material_colon  "<name>: <number> <unit>"
func NewGrammar(resolver *CategoryResolver, minLineLength int) *Grammar {
	return &Grammar{rules: []Rule{
		{Name: "min_length", Apply: func(line string) (Classification, bool) {
			if line == "" || runeLen(line) < minLineLength {
				return Classification{Kind: LineSkip}, true
			}
			return Classification{}, false
		}},
		{Name: "category_code", Apply: func(line string) (Classification, bool) {
			if c, ok := resolver.ResolveCodeMarker(line); ok {
				return Classification{Kind: LineCategory, Category: c}, true
			}
			return Classification{}, false
		}},
		{Name: "category_name", Apply: func(line string) (Classification, bool) {
			if c, ok := resolver.ResolveName(line); ok {
				return Classification{Kind: LineCategory, Category: c}, true
			}
			return Classification{}, false
		}},
		{Name: "header", Apply: func(line string) (Classification, bool) {
			if IsHeaderLine(line) {
				return Classification{Kind: LineHeader}, true
			}
			return Classification{}, false
		}},
		{Name: "material_spaced", Apply: materialRule(spacedMaterialPattern)},
		{Name: "material_colon", Apply: materialRule(colonMaterialPattern)},
	}}
}

// Rules returns rule names in precedence order
func (g *Grammar) Rules() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.Name
	}
	return names
}

// Classify trims the line and returns the classification of the first rule that fires
func (g *Grammar) Classify(line string) Classification {
	line = NormalizeLine(line)
	for _, r := range g.rules {
		if c, ok := r.Apply(line); ok {
			c.Rule = r.Name
			return c
		}
	}
	return Classification{Kind: LineNoise}
}

// IsHeaderLine reports whether the line looks like a header row
func IsHeaderLine(line string) bool {
	for _, r := range line {
		if unicode.IsDigit(r) {
			return false
		}
	}
	lower := strings.ToLower(line)
	for _, kw := range HeaderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// materialRule builds a rule from a material pattern. A match with a
// non-positive quantity or an empty cleaned name falls through to the next rule.
func materialRule(pattern *regexp.Regexp) func(string) (Classification, bool) {
	return func(line string) (Classification, bool) {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			return Classification{}, false
		}
		name := CleanMaterialName(m[1])
		qty, ok := ParseQuantity(m[2])
		if !ok || qty <= 0 || name == "" {
			return Classification{}, false
		}
		return Classification{
			Kind:     LineMaterial,
			Name:     name,
			Quantity: ToCanonicalMass(qty, m[3]),
			Unit:     strings.ToLower(m[3]),
		}, true
	}
}
