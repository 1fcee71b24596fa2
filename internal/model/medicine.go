package model

import "time"

// MedicineRecord is the canonical, catalog-stored representation of a
// medicine and its expected retail price. Catalog records are reference
// data: created by the ingestion process, read-only during resolution.
type MedicineRecord struct {
	Name          string  `json:"name"`
	ExpectedPrice float64 `json:"expected_price"`
}

// AllocationRecord is one entry of the government allocation registry,
// keyed by batch number. It carries the officially registered manufacturing
// and distribution metadata for that batch.
type AllocationRecord struct {
	BatchNumber       string    `json:"batch_number"`
	GenericName       string    `json:"generic_name"`
	BrandName         string    `json:"brand_name"`
	Manufacturer      string    `json:"manufacturer"`
	AllocatedLocation string    `json:"allocated_location"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
	ExpiryDate        time.Time `json:"expiry_date"`
}
