package model

import "time"

// ScanConfidence grades how reliable the vision model judged its own read.
type ScanConfidence string

const (
	ScanConfidenceHigh   ScanConfidence = "high"
	ScanConfidenceMedium ScanConfidence = "medium"
	ScanConfidenceLow    ScanConfidence = "low"
)

// ScanResult is the structured output of one label/receipt scan. It lives
// only for the duration of the request; nothing in this repo persists it.
type ScanResult struct {
	BatchNumber  string         `json:"batch_number,omitempty"`
	MedicineName string         `json:"medicine_name,omitempty"`
	Manufacturer string         `json:"manufacturer,omitempty"`
	ExpiryDate   string         `json:"expiry_date,omitempty"`
	Confidence   ScanConfidence `json:"confidence"`
}

// FraudVerdict is the outcome of one batch provenance check.
//
// Found distinguishes an unregistered batch from a located one: an absent
// registry entry signals incomplete registry data, never proven fraud, so
// Found=false always implies IsFraud=false.
type FraudVerdict struct {
	IsFraud           bool              `json:"is_fraud"`
	Found             bool              `json:"found"`
	AllocatedLocation string            `json:"allocated_location"`
	ReportedLocation  string            `json:"reported_location"`
	Message           string            `json:"message"`
	Medicine          *AllocationRecord `json:"medicine_details,omitempty"`
}

// FraudReport is the persisted record filed when a verdict comes back as a
// location mismatch. Filing is a collaborator concern; the verification core
// only produces the verdict.
type FraudReport struct {
	ID                string    `json:"id"`
	BatchNumber       string    `json:"batch_number"`
	AllocatedLocation string    `json:"allocated_location"`
	ReportedLocation  string    `json:"reported_location"`
	Message           string    `json:"message"`
	CreatedAt         time.Time `json:"created_at"`
}
