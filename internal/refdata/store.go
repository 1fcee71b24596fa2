// Package refdata persists the reference tables this system resolves
// against: the price catalog, the allocation registry, and filed fraud
// reports. The verification core never touches this package directly; it
// receives read-only snapshots loaded here by the callers.
package refdata

import (
	"context"

	"github.com/medtrace-labs/medverify-cli/internal/model"
)

// Store defines the persistence interface for reference data.
type Store interface {
	// Snapshots
	LoadCatalog(ctx context.Context) ([]model.MedicineRecord, error)
	LoadRegistry(ctx context.Context) ([]model.AllocationRecord, error)

	// Ingestion
	UpsertMedicines(ctx context.Context, records []model.MedicineRecord) (int, error)
	UpsertAllocations(ctx context.Context, records []model.AllocationRecord) (int, error)

	// Fraud reports
	SaveFraudReport(ctx context.Context, report *model.FraudReport) error
	ListFraudReports(ctx context.Context, limit int) ([]model.FraudReport, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
