package extract

import (
	"sort"
	"strings"

	"github.com/ppiankov/lightship/internal/model"
)

// MatchRule names the precedence rule that produced a match
type MatchRule string

const (
	RuleExactName      MatchRule = "exact_name"
	RuleExactAlias     MatchRule = "exact_alias"
	RuleNameSubstring  MatchRule = "name_substring"
	RuleAliasSubstring MatchRule = "alias_substring"
	RuleSuggestion     MatchRule = "suggestion"
)

// Confidence assigned by each rule
const (
	ConfidenceExactName      = 1.0
	ConfidenceExactAlias     = 0.95
	ConfidenceNameSubstring  = 0.8
	ConfidenceAliasSubstring = 0.7
	ConfidenceSuggestion     = 0.5
)

// DefaultMinFragmentLength is the shortest text a substring rule will consider
const DefaultMinFragmentLength = 3

// Match is a resolved catalog material
type Match struct {
	Material   model.Material
	Confidence float64
	Rule       MatchRule
	Matched    string // Name or alias text that satisfied the rule
}

// entry is a catalog material with precomputed lower-case keys
type entry struct {
	material model.Material
	name     string
	aliases  []string
}

// Matcher resolves free-text names against a fixed list of materials.
// It is immutable after construction and safe for concurrent use: it keeps
// its own copy of the materials and every Match carries a fresh copy.
type Matcher struct {
	entries     []entry
	minFragment int
}

// NewMatcher creates a matcher over materials in catalog enumeration order
func NewMatcher(materials []model.Material, minFragmentLength int) *Matcher {
	if minFragmentLength <= 0 {
		minFragmentLength = DefaultMinFragmentLength
	}

	entries := make([]entry, 0, len(materials))
	for _, m := range materials {
		e := entry{
			material: m.Clone(),
			name:     strings.ToLower(strings.TrimSpace(m.Name)),
		}
		for _, a := range m.Aliases {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				e.aliases = append(e.aliases, a)
			}
		}
		entries = append(entries, e)
	}

	return &Matcher{entries: entries, minFragment: minFragmentLength}
}

// Match applies the precedence rules in order across the whole catalog and
// returns the first rule's best candidate. Within a rule the candidate with
// the longest matched text wins; ties keep catalog order.
func (m *Matcher) Match(name string) (Match, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return Match{}, false
	}

	rules := []struct {
		rule       MatchRule
		confidence float64
		test       func(e entry) (string, bool)
	}{
		{RuleExactName, ConfidenceExactName, func(e entry) (string, bool) {
			return e.name, e.name != "" && e.name == query
		}},
		{RuleExactAlias, ConfidenceExactAlias, func(e entry) (string, bool) {
			for _, a := range e.aliases {
				if a == query {
					return a, true
				}
			}
			return "", false
		}},
		{RuleNameSubstring, ConfidenceNameSubstring, func(e entry) (string, bool) {
			return m.overlap(e.name, query)
		}},
		{RuleAliasSubstring, ConfidenceAliasSubstring, func(e entry) (string, bool) {
			best, found := "", false
			for _, a := range e.aliases {
				if text, ok := m.overlap(a, query); ok && runeLen(text) > runeLen(best) {
					best, found = text, true
				}
			}
			return best, found
		}},
	}

	for _, r := range rules {
		var best *entry
		bestText := ""
		for i := range m.entries {
			text, ok := r.test(m.entries[i])
			if !ok {
				continue
			}
			if best == nil || runeLen(text) > runeLen(bestText) {
				best = &m.entries[i]
				bestText = text
			}
		}
		if best != nil {
			return Match{
				Material:   best.material.Clone(),
				Confidence: r.confidence,
				Rule:       r.rule,
				Matched:    bestText,
			}, true
		}
	}

	return Match{}, false
}

// overlap reports the contained string when candidate and query contain one another.
// Fragments shorter than the minimum length never match.
func (m *Matcher) overlap(candidate, query string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	if strings.Contains(query, candidate) && runeLen(candidate) >= m.minFragment {
		return candidate, true
	}
	if strings.Contains(candidate, query) && runeLen(query) >= m.minFragment {
		return query, true
	}
	return "", false
}

// Suggest returns up to limit best-guess candidates for human review.
// Every material sharing a substring with the query is a candidate; candidates
// are ordered by matched length, then catalog order, and carry the suggestion
// confidence regardless of which rule would have matched.
func (m *Matcher) Suggest(name string, limit int) []Match {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" || limit <= 0 {
		return nil
	}

	type scored struct {
		match Match
		order int
		score int
	}

	var candidates []scored
	for i, e := range m.entries {
		best := ""
		if text, ok := m.overlap(e.name, query); ok {
			best = text
		}
		for _, a := range e.aliases {
			if text, ok := m.overlap(a, query); ok && runeLen(text) > runeLen(best) {
				best = text
			}
		}
		// Query words also surface candidates for multi-word descriptions
		if best == "" {
			for _, word := range strings.Fields(query) {
				if text, ok := m.overlap(e.name, word); ok && runeLen(text) > runeLen(best) {
					best = text
				}
				for _, a := range e.aliases {
					if text, ok := m.overlap(a, word); ok && runeLen(text) > runeLen(best) {
						best = text
					}
				}
			}
		}
		if best == "" {
			continue
		}
		candidates = append(candidates, scored{
			match: Match{
				Material:   e.material.Clone(),
				Confidence: ConfidenceSuggestion,
				Rule:       RuleSuggestion,
				Matched:    best,
			},
			order: i,
			score: runeLen(best),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]Match, len(candidates))
	for i, c := range candidates {
		out[i] = c.match
	}
	return out
}

// Len returns the number of materials the matcher was built from
func (m *Matcher) Len() int {
	return len(m.entries)
}
