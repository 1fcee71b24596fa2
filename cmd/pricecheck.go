package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/medtrace-labs/medverify-cli/internal/pricing"
)

var pricecheckCmd = &cobra.Command{
	Use:   "pricecheck <name> <observed-price>",
	Short: "Check an observed price against the catalog reference",
	Long:  "Resolves the medicine name against the price catalog, then grades the observed price. Both arguments may be raw OCR text; an unresolvable name or unparseable price yields an unverifiable classification, not an error.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer store.Close()

		catalog, err := store.LoadCatalog(ctx)
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}

		resolver, err := newResolver()
		if err != nil {
			return err
		}

		var referenceText string
		resolution := resolver.Resolve(args[0], catalog)
		if resolution.Found {
			referenceText = strconv.FormatFloat(resolution.Record.ExpectedPrice, 'f', -1, 64)
		}

		result := pricing.ClassifyText(args[1], referenceText, cfg.Match.MinorOverageThreshold)

		return printJSON(cmd.OutOrStdout(), struct {
			Resolution any `json:"resolution"`
			Price      any `json:"price"`
		}{resolution, result})
	},
}

func init() {
	rootCmd.AddCommand(pricecheckCmd)
}
