package model

// PriceClass classifies the deviation of an observed price from its
// catalog reference.
type PriceClass string

const (
	// PriceUnverifiable means no reference price could be resolved, or the
	// observed price text did not parse. Not an error condition.
	PriceUnverifiable PriceClass = "unverifiable"
	// PriceFairOrBelow means the observed price is at or under the reference.
	PriceFairOrBelow PriceClass = "fair_or_below"
	// PriceMinorOverage means the overage is positive but under the
	// configured minor-overage fraction of the reference price.
	PriceMinorOverage PriceClass = "minor_overage"
	// PriceSignificantOverage is the classification that should trigger
	// reporting and reward weighting downstream.
	PriceSignificantOverage PriceClass = "significant_overage"
)

// RawLineItem is one line of a submitted receipt before reconciliation.
type RawLineItem struct {
	RawName           string `json:"raw_name"`
	ObservedPriceText string `json:"observed_price_text"`
}

// ReceiptLineItem is one reconciled receipt line. Pointer fields are nil
// when the corresponding value could not be resolved.
type ReceiptLineItem struct {
	RawName           string     `json:"raw_name"`
	ObservedPriceText string     `json:"observed_price_text"`
	ResolvedName      string     `json:"resolved_name,omitempty"`
	ExpectedPrice     *float64   `json:"expected_price,omitempty"`
	Similarity        *float64   `json:"similarity,omitempty"`
	Deviation         *float64   `json:"deviation,omitempty"`
	Classification    PriceClass `json:"classification"`
}

// ReceiptSummary aggregates per-item verdicts for one receipt.
type ReceiptSummary struct {
	Items             []ReceiptLineItem `json:"items"`
	SignificantCount  int               `json:"significant_count"`
	UnverifiableCount int               `json:"unverifiable_count"`
}
