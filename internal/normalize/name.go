// Package normalize canonicalizes human names so that the same athlete
// spelled differently by different data providers compares equal.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generational suffixes recognized at the end of a name, with or without a
// trailing period.
var suffixPattern = regexp.MustCompile(`\b(jr|sr|ii|iii|iv)\.?$`)

// Name lowercases, strips diacritics, drops a trailing generational suffix
// and collapses internal whitespace. Empty input yields empty output.
func Name(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}

	folded, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		// transform failures leave the input usable as-is
		folded = lowered
	}

	folded = suffixPattern.ReplaceAllString(folded, "")
	return strings.Join(strings.Fields(folded), " ")
}

// Suffix returns the generational suffix anchored at the end of the name
// ("jr", "sr", "ii", "iii", "iv") without any trailing period, or "" when
// the name carries none.
func Suffix(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	match := suffixPattern.FindStringSubmatch(lowered)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ConflictPair is an unordered pair of suffixes that must never be merged
// into one identity.
type ConflictPair struct {
	A string
	B string
}

// DefaultConflictPairs flags only jr vs sr. Roman-numeral pairs (II vs III)
// are intentionally not treated as conflicting.
func DefaultConflictPairs() []ConflictPair {
	return []ConflictPair{{A: "jr", B: "sr"}}
}

// SuffixesConflict reports whether two suffixes form one of the configured
// conflicting pairs, in either order. Equal or empty suffixes never conflict.
func SuffixesConflict(a, b string, pairs []ConflictPair) bool {
	a = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(a)), ".")
	b = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(b)), ".")
	if a == "" || b == "" || a == b {
		return false
	}

	for _, pair := range pairs {
		if (a == pair.A && b == pair.B) || (a == pair.B && b == pair.A) {
			return true
		}
	}
	return false
}
