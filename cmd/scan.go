package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/provenance"
	"github.com/medtrace-labs/medverify-cli/internal/reconcile"
	"github.com/medtrace-labs/medverify-cli/internal/report"
	"github.com/medtrace-labs/medverify-cli/internal/scanextract"
	"github.com/medtrace-labs/medverify-cli/pkg/anthropic"
)

var scanLocation string

var scanCmd = &cobra.Command{
	Use:   "scan <ocr.txt>",
	Short: "Extract a label scan from OCR text and verify its batch claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Anthropic.Key == "" {
			return eris.New("anthropic API key is required (MEDVERIFY_ANTHROPIC_KEY)")
		}

		ocrText, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read ocr file")
		}

		extractor := scanextract.NewExtractor(
			anthropic.NewClient(cfg.Anthropic.Key),
			scanextract.Options{Model: cfg.Anthropic.Model, MaxTokens: cfg.Anthropic.MaxTokens},
		)
		scan, err := extractor.Extract(ctx, string(ocrText))
		if err != nil {
			return eris.Wrap(err, "extract scan")
		}

		store, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer store.Close()

		catalog, err := store.LoadCatalog(ctx)
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}
		allocations, err := store.LoadRegistry(ctx)
		if err != nil {
			return eris.Wrap(err, "load registry")
		}

		resolver, err := newResolver()
		if err != nil {
			return err
		}
		pipeline := reconcile.New(resolver, cfg.Match.PipelineConfig())

		corrected, verdict := pipeline.VerifyScan(*scan, scanLocation, provenance.NewRegistry(allocations), catalog)

		if verdict.IsFraud {
			filed, err := report.NewStoreReporter(store).File(ctx, scan.BatchNumber, verdict)
			if err != nil {
				return eris.Wrap(err, "file fraud report")
			}
			zap.L().Info("fraud report filed", zap.String("report_id", filed.ID))
		}

		return printJSON(cmd.OutOrStdout(), struct {
			Scan    any `json:"scan"`
			Verdict any `json:"verdict"`
		}{corrected, verdict})
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanLocation, "location", "", "location where the medicine was found on sale")
	rootCmd.AddCommand(scanCmd)
}
