// Package price extracts an integer amount from the free-form price
// text the legacy shop stored, e.g. "$5.000 en efectivo, $6000 con
// tarjeta". Argentine formatting (dot thousands, comma decimals) is the
// common case but both separator conventions are accepted.
package price

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "5.000" / "1.234.567,89" — dot-grouped thousands, optional comma decimals
	reDotGrouped = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+(?:,\d+)?`)
	// "5,000" / "1,234,567.89" — comma-grouped thousands, optional dot decimals
	reCommaGrouped = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?`)
	// "6000" / "5,50" / "5.50" — bare number, either separator as decimal
	reBare = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// ParseAmount returns the first recognizable amount in text, rounded to
// the nearest whole unit. It never fails: no recognizable amount, or an
// amount of zero or less, yields 0.
func ParseAmount(text string) int64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	var canonical string
	switch {
	case reDotGrouped.MatchString(text):
		tok := reDotGrouped.FindString(text)
		tok = strings.ReplaceAll(tok, ".", "")
		canonical = strings.ReplaceAll(tok, ",", ".")
	case reCommaGrouped.MatchString(text):
		tok := reCommaGrouped.FindString(text)
		canonical = strings.ReplaceAll(tok, ",", "")
	default:
		tok := reBare.FindString(text)
		if tok == "" {
			return 0
		}
		// a lone comma acts as the decimal point
		canonical = strings.ReplaceAll(tok, ",", ".")
	}

	v, err := strconv.ParseFloat(canonical, 64)
	if err != nil {
		return 0
	}

	n := int64(math.Round(v))
	if n <= 0 {
		return 0
	}
	return n
}
