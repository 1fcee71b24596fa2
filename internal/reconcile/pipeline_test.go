package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/provenance"
)

func testCatalog() []model.MedicineRecord {
	return []model.MedicineRecord{
		{Name: "Evion 400", ExpectedPrice: 120},
		{Name: "Crocin Advance", ExpectedPrice: 30},
		{Name: "Dolo 650", ExpectedPrice: 33.50},
	}
}

func TestReconcile_AnnotatesAllItems(t *testing.T) {
	p := New(nil, DefaultConfig())

	items := []model.RawLineItem{
		{RawName: "Evion 400", ObservedPriceText: "₹120"},
		{RawName: "crocin advance", ObservedPriceText: "₹50"},
		{RawName: "unknown thing xyz", ObservedPriceText: "₹10"},
	}

	summary, err := p.Reconcile(context.Background(), items, testCatalog())
	require.NoError(t, err)
	require.Len(t, summary.Items, 3)

	// Fair price.
	assert.Equal(t, model.PriceFairOrBelow, summary.Items[0].Classification)
	assert.Equal(t, "Evion 400", summary.Items[0].ResolvedName)

	// ₹50 vs ₹30: deviation 20 ≥ 30×0.20.
	assert.Equal(t, model.PriceSignificantOverage, summary.Items[1].Classification)
	require.NotNil(t, summary.Items[1].Deviation)
	assert.Equal(t, 20.0, *summary.Items[1].Deviation)

	// Unresolvable name.
	assert.Equal(t, model.PriceUnverifiable, summary.Items[2].Classification)
	assert.Empty(t, summary.Items[2].ResolvedName)

	assert.Equal(t, 1, summary.SignificantCount)
	assert.Equal(t, 1, summary.UnverifiableCount)
}

func TestReconcile_PreservesInputOrder(t *testing.T) {
	p := New(nil, Config{MinorOverageThreshold: 0.20, Workers: 8})

	var items []model.RawLineItem
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			items = append(items, model.RawLineItem{RawName: "Evion 400", ObservedPriceText: "₹120"})
		} else {
			items = append(items, model.RawLineItem{RawName: "Dolo 650", ObservedPriceText: "₹33.50"})
		}
	}

	summary, err := p.Reconcile(context.Background(), items, testCatalog())
	require.NoError(t, err)
	require.Len(t, summary.Items, 50)
	for i, item := range summary.Items {
		if i%2 == 0 {
			assert.Equal(t, "Evion 400", item.ResolvedName, "index %d", i)
		} else {
			assert.Equal(t, "Dolo 650", item.ResolvedName, "index %d", i)
		}
	}
}

func TestReconcile_UnparseablePrice(t *testing.T) {
	p := New(nil, DefaultConfig())

	summary, err := p.Reconcile(context.Background(), []model.RawLineItem{
		{RawName: "Evion 400", ObservedPriceText: "n/a"},
	}, testCatalog())
	require.NoError(t, err)

	item := summary.Items[0]
	// Name resolved but price unverifiable; the reference is still
	// reported for the caller's audit trail.
	assert.Equal(t, model.PriceUnverifiable, item.Classification)
	assert.Equal(t, "Evion 400", item.ResolvedName)
	require.NotNil(t, item.ExpectedPrice)
	assert.Equal(t, 120.0, *item.ExpectedPrice)
	assert.Nil(t, item.Deviation)
}

func TestReconcile_EmptyReceipt(t *testing.T) {
	p := New(nil, DefaultConfig())

	summary, err := p.Reconcile(context.Background(), nil, testCatalog())
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0, summary.SignificantCount)
}

func TestReconcile_EmptyCatalog(t *testing.T) {
	p := New(nil, DefaultConfig())

	summary, err := p.Reconcile(context.Background(), []model.RawLineItem{
		{RawName: "Evion 400", ObservedPriceText: "₹120"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.PriceUnverifiable, summary.Items[0].Classification)
	assert.Equal(t, 1, summary.UnverifiableCount)
}

func TestReconcile_CancelledContext(t *testing.T) {
	p := New(nil, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Reconcile(ctx, []model.RawLineItem{
		{RawName: "Evion 400", ObservedPriceText: "₹120"},
	}, testCatalog())
	assert.Error(t, err)
}

func TestVerifyScan_Mismatch(t *testing.T) {
	p := New(nil, DefaultConfig())
	registry := provenance.NewRegistry([]model.AllocationRecord{
		{BatchNumber: "DOBS3984", BrandName: "Evion 400", AllocatedLocation: "Mumbai, Maharashtra"},
	})

	corrected, verdict := p.VerifyScan(model.ScanResult{
		BatchNumber:  "DOBS3984",
		MedicineName: "ev1on 400",
		Confidence:   model.ScanConfidenceHigh,
	}, "Chennai", registry, testCatalog())

	assert.True(t, verdict.IsFraud)
	assert.Equal(t, "Mumbai, Maharashtra", verdict.AllocatedLocation)
	assert.Equal(t, "Evion 400", corrected.MedicineName)
}

func TestVerifyScan_NameCorrectionSurfaces(t *testing.T) {
	p := New(nil, DefaultConfig())
	registry := provenance.NewRegistry([]model.AllocationRecord{
		{BatchNumber: "DOBS3984", BrandName: "Evion 400", AllocatedLocation: "Mumbai, Maharashtra"},
	})
	scan := model.ScanResult{
		BatchNumber:  "DOBS3984",
		MedicineName: "ev1on 400",
		Confidence:   model.ScanConfidenceMedium,
	}

	// Catalog present: the alias-aware strict gate accepts and the
	// returned scan carries the canonical name.
	corrected, _ := p.VerifyScan(scan, "Mumbai", registry, testCatalog())
	assert.Equal(t, "Evion 400", corrected.MedicineName)
	assert.Equal(t, model.ScanConfidenceMedium, corrected.Confidence)

	// No catalog: correction is skipped and the raw text survives, so the
	// two outputs are distinguishable.
	uncorrected, _ := p.VerifyScan(scan, "Mumbai", registry, nil)
	assert.Equal(t, "ev1on 400", uncorrected.MedicineName)
	assert.NotEqual(t, corrected.MedicineName, uncorrected.MedicineName)
}

func TestVerifyScan_RejectedCorrectionKeepsRawName(t *testing.T) {
	p := New(nil, DefaultConfig())
	registry := provenance.NewRegistry(nil)

	corrected, _ := p.VerifyScan(model.ScanResult{
		BatchNumber:  "X1",
		MedicineName: "totally unrelated text",
	}, "", registry, testCatalog())
	assert.Equal(t, "totally unrelated text", corrected.MedicineName)
}

func TestVerifyScan_UnknownBatch(t *testing.T) {
	p := New(nil, DefaultConfig())
	registry := provenance.NewRegistry(nil)

	_, verdict := p.VerifyScan(model.ScanResult{BatchNumber: "UNKNOWN123"}, "Delhi", registry, nil)
	assert.False(t, verdict.IsFraud)
	assert.False(t, verdict.Found)
	assert.Contains(t, verdict.Message, "unregistered batch")
}
