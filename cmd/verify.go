package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/provenance"
	"github.com/medtrace-labs/medverify-cli/internal/report"
)

var verifyLocation string

var verifyCmd = &cobra.Command{
	Use:   "verify <batch-number>",
	Short: "Verify a batch code against the allocation registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer store.Close()

		allocations, err := store.LoadRegistry(ctx)
		if err != nil {
			return eris.Wrap(err, "load registry")
		}
		registry := provenance.NewRegistry(allocations)

		verdict := provenance.Verify(provenance.Request{
			BatchNumber:      args[0],
			ReportedLocation: verifyLocation,
		}, registry)

		if verdict.IsFraud {
			filed, err := report.NewStoreReporter(store).File(ctx, args[0], verdict)
			if err != nil {
				return eris.Wrap(err, "file fraud report")
			}
			zap.L().Info("fraud report filed", zap.String("report_id", filed.ID))
		}

		return printJSON(cmd.OutOrStdout(), verdict)
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyLocation, "location", "", "location where the medicine was found on sale")
	rootCmd.AddCommand(verifyCmd)
}
