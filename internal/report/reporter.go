// Package report files fraud reports for mismatch verdicts. It is the
// side-effecting collaborator deliberately kept outside the verification
// core: the core only produces verdicts.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/refdata"
)

// Reporter files fraud reports derived from mismatch verdicts.
type Reporter interface {
	File(ctx context.Context, batchNumber string, verdict model.FraudVerdict) (*model.FraudReport, error)
}

// StoreReporter persists reports through the reference-data store.
type StoreReporter struct {
	store refdata.Store
}

// NewStoreReporter creates a store-backed Reporter.
func NewStoreReporter(store refdata.Store) *StoreReporter {
	return &StoreReporter{store: store}
}

// File persists a report for a fraud verdict. Non-fraud verdicts are a
// no-op: NotFound and Match must never produce a report.
func (r *StoreReporter) File(ctx context.Context, batchNumber string, verdict model.FraudVerdict) (*model.FraudReport, error) {
	if !verdict.IsFraud {
		return nil, nil
	}

	report := &model.FraudReport{
		ID:                uuid.New().String(),
		BatchNumber:       batchNumber,
		AllocatedLocation: verdict.AllocatedLocation,
		ReportedLocation:  verdict.ReportedLocation,
		Message:           verdict.Message,
		CreatedAt:         time.Now().UTC(),
	}

	if err := r.store.SaveFraudReport(ctx, report); err != nil {
		return nil, eris.Wrap(err, "report: file fraud report")
	}

	zap.L().Info("report: fraud report filed",
		zap.String("report_id", report.ID),
		zap.String("batch", batchNumber),
		zap.String("allocated", verdict.AllocatedLocation),
		zap.String("reported", verdict.ReportedLocation),
	)

	return report, nil
}
