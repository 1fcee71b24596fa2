package pricing

import (
	"strconv"
	"strings"
	"unicode"
)

// Parse extracts a price from free-form currency text ("₹45.50",
// "Rs 45.50", "45.50"). Every rune except digits and the first decimal
// point is discarded before conversion. Text yielding no valid number is
// an absent value, never an error.
func Parse(text string) (float64, bool) {
	var b strings.Builder
	seenPoint := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "." {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
