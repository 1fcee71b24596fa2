// Package provenance verifies a scanned batch code against the government
// allocation registry and judges whether the medicine is being sold inside
// its allocated distribution area.
package provenance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/model"
)

// State is one node of the verification state machine. Each request walks
// Received → {Found, NotFound}; Found → {Match, Mismatch}. NotFound, Match
// and Mismatch are terminal.
type State string

const (
	StateReceived State = "received"
	StateFound    State = "found"
	StateNotFound State = "not_found"
	StateMatch    State = "match"
	StateMismatch State = "mismatch"
)

// notFoundLocation is the sentinel reported in place of an allocated
// location when the batch is absent from the registry.
const notFoundLocation = "Not found in database"

// Request carries one provenance claim to verify.
type Request struct {
	BatchNumber         string `json:"batch_number"`
	ReportedLocation    string `json:"reported_location"`
	ScannedMedicineName string `json:"scanned_medicine_name,omitempty"`
	Manufacturer        string `json:"manufacturer,omitempty"`
}

// Registry is an exact-lookup index over an allocation snapshot. Batch
// lookup is never fuzzy: a provenance claim must not be approximated.
type Registry struct {
	byBatch map[string]*model.AllocationRecord
}

// NewRegistry indexes a read-only allocation snapshot by batch number.
// The snapshot must not be mutated while the registry is in use; refreshes
// are an atomic hand-off of a new Registry.
func NewRegistry(records []model.AllocationRecord) *Registry {
	byBatch := make(map[string]*model.AllocationRecord, len(records))
	for i := range records {
		byBatch[records[i].BatchNumber] = &records[i]
	}
	return &Registry{byBatch: byBatch}
}

// Lookup returns the allocation record for a batch number. Matching is
// exact and case-sensitive.
func (r *Registry) Lookup(batchNumber string) (*model.AllocationRecord, bool) {
	rec, ok := r.byBatch[batchNumber]
	return rec, ok
}

// Len returns the number of indexed batches.
func (r *Registry) Len() int {
	return len(r.byBatch)
}

// Verify runs one request through the state machine and returns the
// terminal verdict. It performs no I/O; a Mismatch verdict is the trigger
// for the caller to hand the case to a reporting collaborator.
func Verify(req Request, registry *Registry) model.FraudVerdict {
	state := StateReceived

	rec, ok := registry.Lookup(req.BatchNumber)
	if !ok {
		state = StateNotFound
		zap.L().Debug("provenance: batch not in registry",
			zap.String("batch", req.BatchNumber),
			zap.String("state", string(state)),
		)
		// Absence of a record signals incomplete registry data, not proven
		// fraud. Never escalate NotFound to a positive finding.
		return model.FraudVerdict{
			IsFraud:           false,
			Found:             false,
			AllocatedLocation: notFoundLocation,
			ReportedLocation:  req.ReportedLocation,
			Message:           fmt.Sprintf("unregistered batch %s: not present in allocation registry", req.BatchNumber),
		}
	}

	state = StateFound

	if req.ReportedLocation == "" {
		// Nothing to compare against; a missing claim is not a finding.
		return model.FraudVerdict{
			IsFraud:           false,
			Found:             true,
			AllocatedLocation: rec.AllocatedLocation,
			Message:           "no reported location to verify",
			Medicine:          rec,
		}
	}

	if LocationsCompatible(rec.AllocatedLocation, req.ReportedLocation) {
		state = StateMatch
		zap.L().Debug("provenance: location verified",
			zap.String("batch", req.BatchNumber),
			zap.String("state", string(state)),
		)
		return model.FraudVerdict{
			IsFraud:           false,
			Found:             true,
			AllocatedLocation: rec.AllocatedLocation,
			ReportedLocation:  req.ReportedLocation,
			Message:           "location verified",
			Medicine:          rec,
		}
	}

	state = StateMismatch
	zap.L().Info("provenance: location mismatch",
		zap.String("batch", req.BatchNumber),
		zap.String("allocated", rec.AllocatedLocation),
		zap.String("reported", req.ReportedLocation),
		zap.String("state", string(state)),
	)
	return model.FraudVerdict{
		IsFraud:           true,
		Found:             true,
		AllocatedLocation: rec.AllocatedLocation,
		ReportedLocation:  req.ReportedLocation,
		Message: fmt.Sprintf("batch %s is allocated to %s but was reported sold in %s",
			req.BatchNumber, rec.AllocatedLocation, req.ReportedLocation),
		Medicine: rec,
	}
}
