package refdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrace-labs/medverify-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_CatalogRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.UpsertMedicines(ctx, []model.MedicineRecord{
		{Name: "Evion 400", ExpectedPrice: 120},
		{Name: "Crocin Advance", ExpectedPrice: 30},
		{Name: ""}, // skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	catalog, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "Crocin Advance", catalog[0].Name)
	assert.Equal(t, 30.0, catalog[0].ExpectedPrice)
}

func TestSQLite_MedicineUpsertOverwritesPrice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMedicines(ctx, []model.MedicineRecord{{Name: "Evion 400", ExpectedPrice: 120}})
	require.NoError(t, err)
	_, err = s.UpsertMedicines(ctx, []model.MedicineRecord{{Name: "Evion 400", ExpectedPrice: 135}})
	require.NoError(t, err)

	catalog, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, 135.0, catalog[0].ExpectedPrice)
}

func TestSQLite_RegistryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mfg := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	exp := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)

	n, err := s.UpsertAllocations(ctx, []model.AllocationRecord{
		{
			BatchNumber:       "DOBS3984",
			GenericName:       "Vitamin E",
			BrandName:         "Evion 400",
			Manufacturer:      "Merck Ltd",
			AllocatedLocation: "Mumbai, Maharashtra",
			ManufacturingDate: mfg,
			ExpiryDate:        exp,
		},
		{BatchNumber: "KL2201A", AllocatedLocation: "Kochi, Kerala"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	registry, err := s.LoadRegistry(ctx)
	require.NoError(t, err)
	require.Len(t, registry, 2)

	assert.Equal(t, "DOBS3984", registry[0].BatchNumber)
	assert.Equal(t, "Mumbai, Maharashtra", registry[0].AllocatedLocation)
	assert.True(t, registry[0].ManufacturingDate.Equal(mfg))
	assert.True(t, registry[0].ExpiryDate.Equal(exp))

	// Zero dates survive as zero.
	assert.True(t, registry[1].ManufacturingDate.IsZero())
}

func TestSQLite_FraudReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	report := &model.FraudReport{
		ID:                uuid.New().String(),
		BatchNumber:       "DOBS3984",
		AllocatedLocation: "Mumbai, Maharashtra",
		ReportedLocation:  "Chennai",
		Message:           "batch DOBS3984 is allocated to Mumbai, Maharashtra but was reported sold in Chennai",
		CreatedAt:         time.Now().UTC(),
	}
	require.NoError(t, s.SaveFraudReport(ctx, report))

	reports, err := s.ListFraudReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.ID, reports[0].ID)
	assert.Equal(t, "Chennai", reports[0].ReportedLocation)
}

func TestSQLite_EmptyTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	catalog, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog)

	registry, err := s.LoadRegistry(ctx)
	require.NoError(t, err)
	assert.Empty(t, registry)

	reports, err := s.ListFraudReports(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
