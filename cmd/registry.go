package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/fetcher"
	"github.com/medtrace-labs/medverify-cli/internal/ingest"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the allocation registry",
}

var registrySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the latest registry snapshot and import it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Registry.SourceURL == "" {
			return eris.New("registry source URL is required (MEDVERIFY_REGISTRY_SOURCE_URL)")
		}

		if err := os.MkdirAll(cfg.Registry.TempDir, 0o755); err != nil {
			return eris.Wrap(err, "create temp dir")
		}
		dest := filepath.Join(cfg.Registry.TempDir, "registry.xlsx")

		f, err := fetcher.ForURL(cfg.Registry.SourceURL)
		if err != nil {
			return eris.Wrap(err, "select fetcher")
		}

		written, err := fetcher.DownloadToFile(ctx, f, cfg.Registry.SourceURL, dest)
		if err != nil {
			return eris.Wrap(err, "download registry snapshot")
		}

		zap.L().Info("registry snapshot downloaded",
			zap.String("url", cfg.Registry.SourceURL),
			zap.Int64("bytes", written),
		)

		return importRegistry(cmd, dest)
	},
}

var registryImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import a registry snapshot from a local XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importRegistry(cmd, args[0])
	},
}

func importRegistry(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	records, err := ingest.ReadRegistryXLSX(path, ingest.XLSXOptions{
		SheetName: cfg.Registry.Sheet,
		SkipRows:  cfg.Registry.SkipRows,
	})
	if err != nil {
		return eris.Wrap(err, "read registry snapshot")
	}

	store, err := openStore(ctx)
	if err != nil {
		return eris.Wrap(err, "open store")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate store")
	}

	n, err := store.UpsertAllocations(ctx, records)
	if err != nil {
		return eris.Wrap(err, "upsert allocations")
	}

	zap.L().Info("registry import complete",
		zap.Int("records", n),
		zap.String("file", path),
	)
	return nil
}

func init() {
	registryCmd.AddCommand(registrySyncCmd)
	registryCmd.AddCommand(registryImportCmd)
	rootCmd.AddCommand(registryCmd)
}
