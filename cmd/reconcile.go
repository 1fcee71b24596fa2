package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <receipt.json>",
	Short: "Reconcile a receipt's line items against the price catalog",
	Long:  "Reads a JSON array of line items ({raw_name, observed_price_text}) and annotates each with its resolved catalog entry and price classification.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read receipt file")
		}
		var items []model.RawLineItem
		if err := json.Unmarshal(data, &items); err != nil {
			return eris.Wrap(err, "parse receipt file")
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

		resolver, err := newResolver()
		if err != nil {
			return err
		}
		pipeline := reconcile.New(resolver, cfg.Match.PipelineConfig())

		summary, err := pipeline.Reconcile(ctx, items, catalog)
		if err != nil {
			return eris.Wrap(err, "reconcile receipt")
		}

		return printJSON(cmd.OutOrStdout(), summary)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
