// Package reconcile orchestrates name resolution, price anomaly detection
// and batch provenance verification across one submitted receipt or scan.
// It returns data only: persistence, reward crediting and report filing
// belong to the collaborators consuming its output.
package reconcile

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/pricing"
	"github.com/medtrace-labs/medverify-cli/internal/provenance"
	"github.com/medtrace-labs/medverify-cli/internal/resolve"
)

// Config tunes the pipeline.
type Config struct {
	// MinorOverageThreshold is the fraction of the reference price under
	// which a positive deviation is still graded minor.
	MinorOverageThreshold float64 `yaml:"minor_overage_threshold" mapstructure:"minor_overage_threshold"`
	// Workers bounds line-item concurrency. Items share no mutable state,
	// so fan-out is purely a throughput knob.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		MinorOverageThreshold: 0.20,
		Workers:               4,
	}
}

// Pipeline reconciles receipts against read-only catalog and registry
// snapshots passed into each call.
type Pipeline struct {
	resolver *resolve.Resolver
	cfg      Config
}

// New creates a Pipeline. A nil resolver falls back to default thresholds.
func New(resolver *resolve.Resolver, cfg Config) *Pipeline {
	if resolver == nil {
		resolver = resolve.New(nil, resolve.DefaultConfig())
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	return &Pipeline{resolver: resolver, cfg: cfg}
}

// Reconcile annotates every line item of one receipt: Normalizer →
// Resolver → Detector per item, items independent of one another. The
// returned summary carries the full annotated list plus aggregate counts.
//
// Only context cancellation produces an error; malformed line items are
// normal outcomes graded Unverifiable.
func (p *Pipeline) Reconcile(ctx context.Context, items []model.RawLineItem, catalog []model.MedicineRecord) (*model.ReceiptSummary, error) {
	results := make([]model.ReceiptLineItem, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.reconcileItem(item, catalog)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &model.ReceiptSummary{Items: results}
	for _, item := range results {
		switch item.Classification {
		case model.PriceSignificantOverage:
			summary.SignificantCount++
		case model.PriceUnverifiable:
			summary.UnverifiableCount++
		}
	}

	zap.L().Info("reconcile: receipt processed",
		zap.Int("items", len(items)),
		zap.Int("significant", summary.SignificantCount),
		zap.Int("unverifiable", summary.UnverifiableCount),
	)

	return summary, nil
}

func (p *Pipeline) reconcileItem(item model.RawLineItem, catalog []model.MedicineRecord) model.ReceiptLineItem {
	out := model.ReceiptLineItem{
		RawName:           item.RawName,
		ObservedPriceText: item.ObservedPriceText,
		Classification:    model.PriceUnverifiable,
	}

	res := p.resolver.Resolve(item.RawName, catalog)
	if !res.Found {
		return out
	}

	out.ResolvedName = res.Record.Name
	expected := res.Record.ExpectedPrice
	sim := res.Similarity
	out.ExpectedPrice = &expected
	out.Similarity = &sim

	observed, ok := pricing.Parse(item.ObservedPriceText)
	if !ok {
		return out
	}

	deviation, class := pricing.Classify(observed, expected, p.cfg.MinorOverageThreshold)
	out.Deviation = &deviation
	out.Classification = class
	return out
}

// VerifyScan is the batch-code leg of the pipeline: it corrects the
// scanned medicine name against the catalog at the strict identity gate,
// then verifies the batch claim against the registry. The returned scan
// carries the corrected name; a rejected correction leaves the raw text.
// Like Reconcile it produces data only; a Mismatch is the caller's cue to
// file a report through its collaborator.
func (p *Pipeline) VerifyScan(scan model.ScanResult, reportedLocation string, registry *provenance.Registry, catalog []model.MedicineRecord) (model.ScanResult, model.FraudVerdict) {
	if scan.MedicineName != "" && len(catalog) > 0 {
		canonical := make([]string, len(catalog))
		for i, rec := range catalog {
			canonical[i] = rec.Name
		}
		if corrected, ok := p.resolver.CorrectName(scan.MedicineName, canonical); ok {
			zap.L().Debug("reconcile: scanned name corrected",
				zap.String("raw", scan.MedicineName),
				zap.String("corrected", corrected),
			)
			scan.MedicineName = corrected
		}
	}

	verdict := provenance.Verify(provenance.Request{
		BatchNumber:         scan.BatchNumber,
		ReportedLocation:    reportedLocation,
		ScannedMedicineName: scan.MedicineName,
		Manufacturer:        scan.Manufacturer,
	}, registry)

	return scan, verdict
}
