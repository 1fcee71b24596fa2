// Package similarity scores fuzzy string equivalence with a
// character-bigram Dice coefficient. The contract is deliberately narrow so
// any equivalent implementation is substitutable: scores are deterministic,
// symmetric, bounded to [0,1], and candidate selection tie-breaks on input
// order.
package similarity

// Match is the winning candidate of a BestMatch call.
type Match struct {
	Candidate string
	Index     int
	Score     float64
}

// Score computes the Dice coefficient over adjacent-rune bigram multisets:
// 2·|intersection| / (|bigrams(a)| + |bigrams(b)|).
//
// Any input shorter than two runes has no bigrams; such comparisons fall
// back to exact equality (1 if equal, else 0).
func Score(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		if a == b {
			return 1
		}
		return 0
	}

	ba := bigrams(ra)
	bb := bigrams(rb)

	intersection := 0
	for bg, na := range ba {
		if nb := bb[bg]; nb > 0 {
			intersection += min(na, nb)
		}
	}

	return 2 * float64(intersection) / float64(len(ra)-1+len(rb)-1)
}

// BestMatch returns the highest-scoring candidate, or nil when candidates
// is empty. Ties resolve to the first candidate at the maximum score, so
// selection is stable for a fixed input order.
func BestMatch(query string, candidates []string) *Match {
	if len(candidates) == 0 {
		return nil
	}

	best := Match{Candidate: candidates[0], Index: 0, Score: Score(query, candidates[0])}
	for i := 1; i < len(candidates); i++ {
		if s := Score(query, candidates[i]); s > best.Score {
			best = Match{Candidate: candidates[i], Index: i, Score: s}
		}
	}
	return &best
}

// bigrams builds the multiset of adjacent-rune pairs.
func bigrams(rs []rune) map[[2]rune]int {
	out := make(map[[2]rune]int, len(rs)-1)
	for i := 0; i < len(rs)-1; i++ {
		out[[2]rune{rs[i], rs[i+1]}]++
	}
	return out
}
