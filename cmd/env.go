package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/medtrace-labs/medverify-cli/internal/normalize"
	"github.com/medtrace-labs/medverify-cli/internal/refdata"
	"github.com/medtrace-labs/medverify-cli/internal/resolve"
)

// openStore opens the configured reference-data backend.
func openStore(ctx context.Context) (refdata.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return refdata.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return refdata.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newResolver builds a resolver from the configured alias table and
// thresholds. An unset alias path means the built-in table.
func newResolver() (*resolve.Resolver, error) {
	var norm *normalize.Normalizer
	if cfg.Aliases.Path != "" {
		aliases, err := normalize.LoadAliases(cfg.Aliases.Path)
		if err != nil {
			return nil, eris.Wrap(err, "load alias table")
		}
		norm = normalize.New(aliases)
	}
	return resolve.New(norm, cfg.Match.ResolverConfig()), nil
}

// printJSON writes v as indented JSON, the output format of every
// read-only command.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
