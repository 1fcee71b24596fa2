package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a raw medicine name against the price catalog",
	Args:  cobra.ExactArgs(1),
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

		result := resolver.Resolve(args[0], catalog)
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
