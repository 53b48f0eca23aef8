package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLine composes the line to NFC, replaces non-breaking spaces and trims it.
// Exports produced by different extractors disagree on accent composition
// ("unità" as one or two code points), which would otherwise defeat exact matching.
func NormalizeLine(line string) string {
	line = norm.NFC.String(line)
	line = strings.Map(func(r rune) rune {
		if r == '\u00a0' || r == '\u202f' {
			return ' '
		}
		return r
	}, line)
	return strings.TrimSpace(line)
}

// CleanMaterialName strips characters other than letters, digits, whitespace,
// parentheses and hyphens, then collapses runs of whitespace.
func CleanMaterialName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		case r == '(' || r == ')' || r == '-':
			return r
		default:
			return -1
		}
	}, name)
	return strings.Join(strings.Fields(cleaned), " ")
}

// runeLen returns the length of s in runes
func runeLen(s string) int {
	return len([]rune(s))
}
