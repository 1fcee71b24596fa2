package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrace-labs/medverify-cli/internal/model"
)

func testCatalog() []model.MedicineRecord {
	return []model.MedicineRecord{
		{Name: "Evion 400", ExpectedPrice: 120},
		{Name: "Crocin Advance", ExpectedPrice: 30},
		{Name: "Dolo 650", ExpectedPrice: 33.50},
	}
}

func TestResolve_ExactAfterNormalization(t *testing.T) {
	r := New(nil, DefaultConfig())

	res := r.Resolve("EVION 400", testCatalog())
	require.True(t, res.Found)
	assert.Equal(t, "Evion 400", res.Record.Name)
	assert.Equal(t, 120.0, res.Record.ExpectedPrice)
	assert.Equal(t, 1.0, res.Similarity)
	assert.Equal(t, "evion", res.Query)
}

func TestResolve_OCRUnitMisread(t *testing.T) {
	// "evion w" carries a misread dosage token; normalization strips it
	// and the query lands on the catalog entry.
	r := New(nil, DefaultConfig())

	res := r.Resolve("evion w", testCatalog())
	require.True(t, res.Found)
	assert.Equal(t, "Evion 400", res.Record.Name)
}

func TestResolve_AliasCorrection(t *testing.T) {
	r := New(nil, DefaultConfig())

	res := r.Resolve("Ev1on 400", testCatalog())
	require.True(t, res.Found)
	assert.Equal(t, "Evion 400", res.Record.Name)
	assert.Equal(t, 1.0, res.Similarity)
}

func TestResolve_ReturnsOriginalRecord(t *testing.T) {
	r := New(nil, DefaultConfig())

	res := r.Resolve("crocin advanse", testCatalog())
	require.True(t, res.Found)
	// The record keeps its catalog spelling, not the normalized form.
	assert.Equal(t, "Crocin Advance", res.Record.Name)
	assert.Greater(t, res.Similarity, 0.30)
}

func TestResolve_BelowThreshold(t *testing.T) {
	r := New(nil, DefaultConfig())

	res := r.Resolve("completely unrelated xyz", testCatalog())
	assert.False(t, res.Found)
	assert.Nil(t, res.Record)
}

func TestResolve_NeverAcceptsAtOrBelowThreshold(t *testing.T) {
	r := New(nil, DefaultConfig())

	queries := []string{"evion", "crocin", "dolo", "xylophone", "d0lo 650", "zz"}
	for _, q := range queries {
		res := r.Resolve(q, testCatalog())
		if res.Found {
			assert.Greater(t, res.Similarity, 0.30, "query %q", q)
		}
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	r := New(nil, DefaultConfig())

	assert.False(t, r.Resolve("", testCatalog()).Found)
	assert.False(t, r.Resolve("   ", testCatalog()).Found)
	// A pure dosage string normalizes to empty.
	assert.False(t, r.Resolve("400 mg", testCatalog()).Found)
}

func TestResolve_EmptyCatalog(t *testing.T) {
	r := New(nil, DefaultConfig())

	res := r.Resolve("Evion 400", nil)
	assert.False(t, res.Found)
}

func TestCorrectName_Accepted(t *testing.T) {
	r := New(nil, DefaultConfig())

	name, ok := r.CorrectName("paracitamol", []string{"Paracetamol", "Azithral"})
	require.True(t, ok)
	assert.Equal(t, "Paracetamol", name)
}

func TestCorrectName_RejectsLooseMatch(t *testing.T) {
	r := New(nil, DefaultConfig())

	// Scores above the price-lookup gate but below the stricter identity
	// gate must be rejected here.
	_, ok := r.CorrectName("paralol", []string{"Paracetamol"})
	assert.False(t, ok)
}

func TestCorrectName_EmptyInputs(t *testing.T) {
	r := New(nil, DefaultConfig())

	_, ok := r.CorrectName("", []string{"Paracetamol"})
	assert.False(t, ok)
	_, ok = r.CorrectName("paracetamol", nil)
	assert.False(t, ok)
}
