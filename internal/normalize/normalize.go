package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// unitTokens are trailing dosage/packaging tokens that carry no identity.
// "w" covers a common OCR misread of a trailing "400"/"40" dosage marker.
var unitTokens = map[string]struct{}{
	"mg":     {},
	"tablet": {},
	"w":      {},
}

// Normalizer canonicalizes noisy OCR-derived medicine names. The alias
// table is injected so resolution logic stays testable in isolation from
// data loading.
type Normalizer struct {
	aliases map[string]string
}

// New creates a Normalizer with the given alias table. A nil table falls
// back to the built-in defaults.
func New(aliases map[string]string) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Normalizer{aliases: aliases}
}

// Name canonicalizes a raw medicine name: structural cleanup via Clean,
// then at most one alias substitution keyed by the cleaned string.
// Never fails; empty or garbled input yields the empty string.
//
// Name is idempotent as long as the alias table passes ValidateAliases.
func (n *Normalizer) Name(raw string) string {
	cleaned := Clean(raw)
	if alias, ok := n.aliases[cleaned]; ok {
		return alias
	}
	return cleaned
}

// Clean performs the structural part of normalization: NFKC unicode
// folding, lowercasing, whitespace collapsing, and stripping of trailing
// numeric and unit tokens. Trailing tokens are stripped to a fixpoint so
// multi-token dosage tails ("500 mg tablet") come off in one call and the
// result is stable under re-normalization.
func Clean(raw string) string {
	s := strings.ToLower(norm.NFKC.String(raw))
	fields := strings.Fields(s)

	for len(fields) > 0 {
		last := fields[len(fields)-1]

		if isNumeric(last) || isUnit(last) {
			fields = fields[:len(fields)-1]
			continue
		}

		// Attached dosage suffix: "evion400" carries the same trailing
		// numeric token without the space.
		if trimmed := strings.TrimRightFunc(last, unicode.IsDigit); trimmed != last && trimmed != "" {
			fields[len(fields)-1] = trimmed
			continue
		}

		break
	}

	return strings.Join(fields, " ")
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return tok != ""
}

func isUnit(tok string) bool {
	_, ok := unitTokens[tok]
	return ok
}
