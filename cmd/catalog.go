package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/ingest"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the price catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import the price catalog from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		records, err := ingest.ReadCatalogCSV(args[0])
		if err != nil {
			return eris.Wrap(err, "read catalog csv")
		}

		store, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		n, err := store.UpsertMedicines(ctx, records)
		if err != nil {
			return eris.Wrap(err, "upsert medicines")
		}

		zap.L().Info("catalog import complete",
			zap.Int("records", n),
			zap.String("file", args[0]),
		)
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}
