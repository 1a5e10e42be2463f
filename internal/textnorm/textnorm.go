// Package textnorm normalizes free text for fuzzy comparison between
// independently migrated catalogs.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accent stripping: decompose, drop combining marks, recompose
var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold reduces a string to its comparable core: diacritics stripped,
// lowercased, everything outside [a-z0-9] removed. "Curso de Moldería"
// and "curso-de-molderia" fold to the same value.
func Fold(s string) string {
	stripped, _, err := transform.String(markStripper, s)
	if err != nil {
		// keep the raw string; the alnum filter below still applies
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
