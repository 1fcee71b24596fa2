// Package pricing parses free-form price text and classifies the deviation
// of an observed transaction price from its catalog reference.
package pricing

import "github.com/medtrace-labs/medverify-cli/internal/model"

// Result is the outcome of one price check. Deviation is nil when either
// side of the comparison could not be parsed.
type Result struct {
	Observed  *float64         `json:"observed,omitempty"`
	Reference *float64         `json:"reference,omitempty"`
	Deviation *float64         `json:"deviation,omitempty"`
	Class     model.PriceClass `json:"classification"`
}

// Classify grades a deviation. It is a pure function of the two amounts
// and the configured minor-overage fraction of the reference price:
//
//	deviation ≤ 0                      → FairOrBelow
//	0 < deviation < ref·minorThreshold → MinorOverage
//	deviation ≥ ref·minorThreshold     → SignificantOverage
func Classify(observed, reference, minorThreshold float64) (float64, model.PriceClass) {
	deviation := observed - reference
	switch {
	case deviation <= 0:
		return deviation, model.PriceFairOrBelow
	case deviation < reference*minorThreshold:
		return deviation, model.PriceMinorOverage
	default:
		return deviation, model.PriceSignificantOverage
	}
}

// ClassifyText is the text-level entry point: both sides arrive as
// free-form currency text, with an empty referenceText meaning the
// reference is absent. Unparseable text degrades to Unverifiable.
func ClassifyText(observedText, referenceText string, minorThreshold float64) Result {
	result := Result{Class: model.PriceUnverifiable}

	reference, ok := Parse(referenceText)
	if !ok {
		return result
	}
	result.Reference = &reference

	observed, ok := Parse(observedText)
	if !ok {
		return result
	}
	result.Observed = &observed

	deviation, class := Classify(observed, reference, minorThreshold)
	result.Deviation = &deviation
	result.Class = class
	return result
}
