// Package resolve maps raw, OCR-noisy medicine names onto canonical
// catalog records via normalization plus fuzzy matching.
package resolve

import (
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/normalize"
	"github.com/medtrace-labs/medverify-cli/internal/similarity"
)

// Config holds the acceptance thresholds. The two gates serve different
// use cases: price lookup tolerates more OCR noise than identity
// correction, so it accepts at a far lower score.
type Config struct {
	LookupThreshold  float64 `yaml:"lookup_threshold" mapstructure:"lookup_threshold"`
	CorrectThreshold float64 `yaml:"correct_threshold" mapstructure:"correct_threshold"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		LookupThreshold:  0.30,
		CorrectThreshold: 0.70,
	}
}

// Result is the outcome of one name resolution. Record points at the
// original (non-normalized) catalog entry so callers can audit the match.
type Result struct {
	Found      bool                 `json:"found"`
	Record     *model.MedicineRecord `json:"record,omitempty"`
	Similarity float64              `json:"similarity,omitempty"`
	Query      string               `json:"query"`
}

// Resolver resolves names against a read-only catalog snapshot passed into
// each call. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	norm *normalize.Normalizer
	cfg  Config
}

// New creates a Resolver. A nil normalizer falls back to the default alias
// table.
func New(norm *normalize.Normalizer, cfg Config) *Resolver {
	if norm == nil {
		norm = normalize.New(nil)
	}
	return &Resolver{norm: norm, cfg: cfg}
}

// Resolve normalizes rawName and every catalog name, scores the query
// against the normalized candidates, and accepts the best match only above
// the lookup threshold.
//
// The scan is linear: catalogs here run hundreds to low thousands of
// entries, where an inverted index would add complexity without measurable
// latency benefit. Callers with far larger catalogs should index ahead of
// this component rather than change its contract.
func (r *Resolver) Resolve(rawName string, catalog []model.MedicineRecord) Result {
	query := r.norm.Name(rawName)
	result := Result{Query: query}

	if query == "" || len(catalog) == 0 {
		return result
	}

	candidates := make([]string, len(catalog))
	for i, rec := range catalog {
		candidates[i] = r.norm.Name(rec.Name)
	}

	match := similarity.BestMatch(query, candidates)
	if match == nil || match.Score <= r.cfg.LookupThreshold {
		zap.L().Debug("resolve: no catalog match above threshold",
			zap.String("query", query),
			zap.Float64("threshold", r.cfg.LookupThreshold),
		)
		return result
	}

	result.Found = true
	result.Record = &catalog[match.Index]
	result.Similarity = match.Score

	zap.L().Debug("resolve: matched catalog record",
		zap.String("query", query),
		zap.String("matched", result.Record.Name),
		zap.Float64("similarity", match.Score),
	)

	return result
}

// CorrectName maps a scanned name onto one of the given canonical names,
// accepting only above the stricter correction threshold. It returns the
// original candidate and whether the correction was accepted; a rejected
// correction leaves the caller with the raw text.
func (r *Resolver) CorrectName(raw string, canonical []string) (string, bool) {
	query := r.norm.Name(raw)
	if query == "" || len(canonical) == 0 {
		return "", false
	}

	candidates := make([]string, len(canonical))
	for i, c := range canonical {
		candidates[i] = r.norm.Name(c)
	}

	match := similarity.BestMatch(query, candidates)
	if match == nil || match.Score <= r.cfg.CorrectThreshold {
		return "", false
	}
	return canonical[match.Index], true
}
