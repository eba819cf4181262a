package catalog

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey derives the matching key of a display string: case-folded,
// accent-stripped, transliterated to ASCII and whitespace-collapsed. Two
// strings match only when their keys are equal.
func NormalizeKey(s string) string {
	folded := cases.Fold().String(s)

	// Transformers carry state, so a fresh chain is built per call.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, folded)
	if err != nil {
		stripped = folded
	}

	// Letters without a decomposition (ø, ł, æ, đ, œ) only reach ASCII here.
	// Multi-letter output such as "AE" needs a second lowering.
	ascii := strings.ToLower(unidecode.Unidecode(stripped))

	return strings.Join(strings.Fields(ascii), " ")
}

// CollapseSpaces trims s and collapses inner whitespace runs to one space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
