package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/provenance"
	"github.com/medtrace-labs/medverify-cli/internal/reconcile"
	"github.com/medtrace-labs/medverify-cli/internal/resolve"
)

type fakeReporter struct {
	filed []string
}

func (f *fakeReporter) File(_ context.Context, batchNumber string, verdict model.FraudVerdict) (*model.FraudReport, error) {
	if !verdict.IsFraud {
		return nil, nil
	}
	f.filed = append(f.filed, batchNumber)
	return &model.FraudReport{ID: "test-report", BatchNumber: batchNumber}, nil
}

func newTestServer(t *testing.T) (*apiServer, *fakeReporter) {
	t.Helper()

	catalog := []model.MedicineRecord{
		{Name: "Evion 400", ExpectedPrice: 120},
		{Name: "Crocin Advance", ExpectedPrice: 30},
	}
	allocations := []model.AllocationRecord{
		{BatchNumber: "DOBS3984", BrandName: "Evion 400", AllocatedLocation: "Mumbai, Maharashtra"},
	}

	resolver := resolve.New(nil, resolve.DefaultConfig())
	reporter := &fakeReporter{}

	return &apiServer{
		resolver:       resolver,
		pipeline:       reconcile.New(resolver, reconcile.DefaultConfig()),
		catalog:        catalog,
		registry:       provenance.NewRegistry(allocations),
		reporter:       reporter,
		minorThreshold: 0.20,
		limiter:        rate.NewLimiter(rate.Inf, 0),
	}, reporter
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServeHealth(t *testing.T) {
	api, _ := newTestServer(t)
	rec := doJSON(t, api.router(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServeResolve(t *testing.T) {
	api, _ := newTestServer(t)
	rec := doJSON(t, api.router(), http.MethodPost, "/api/resolve", `{"name":"evion w"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var result resolve.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Found)
	assert.Equal(t, "Evion 400", result.Record.Name)

	rec = doJSON(t, api.router(), http.MethodPost, "/api/resolve", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeVerifyBatch(t *testing.T) {
	api, reporter := newTestServer(t)

	rec := doJSON(t, api.router(), http.MethodPost, "/api/verify-batch",
		`{"batch_number":"DOBS3984","reported_location":"Chennai"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var verdict model.FraudVerdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.True(t, verdict.IsFraud)
	assert.Equal(t, []string{"DOBS3984"}, reporter.filed)

	// Unregistered batches are never escalated and never reported.
	rec = doJSON(t, api.router(), http.MethodPost, "/api/verify-batch",
		`{"batch_number":"UNKNOWN123","reported_location":"Chennai"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.False(t, verdict.IsFraud)
	assert.False(t, verdict.Found)
	assert.Len(t, reporter.filed, 1)
}

func TestServePriceCheck(t *testing.T) {
	api, _ := newTestServer(t)

	rec := doJSON(t, api.router(), http.MethodPost, "/api/price-check",
		`{"name":"crocin","observed_price":"₹96"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Price struct {
			Classification model.PriceClass `json:"classification"`
		} `json:"price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.PriceSignificantOverage, resp.Price.Classification)
}

func TestServeReconcile(t *testing.T) {
	api, _ := newTestServer(t)

	rec := doJSON(t, api.router(), http.MethodPost, "/api/reconcile",
		`{"items":[{"raw_name":"evion 400","observed_price_text":"₹120"},{"raw_name":"zzzz","observed_price_text":"?"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary model.ReceiptSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.Items, 2)
	assert.Equal(t, 1, summary.UnverifiableCount)

	rec = doJSON(t, api.router(), http.MethodPost, "/api/reconcile", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeRateLimit(t *testing.T) {
	api, _ := newTestServer(t)
	api.limiter = rate.NewLimiter(0, 1)
	router := api.router()

	rec := doJSON(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
