// cmd/convert.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/capture"
	"github.com/xkilldash9x/layerlift/internal/engine"
	"github.com/xkilldash9x/layerlift/internal/observability"
	"github.com/xkilldash9x/layerlift/internal/store"
)

// newConvertCmd creates and configures the `convert` command.
func newConvertCmd() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert [captures...]",
		Short: "Converts page captures into layer documents",
		Long: `Convert reads capture files produced by the capture command (plain,
gzip or brotli compressed JSON) and infers a layer document for each:
geometry, fills, strokes, shadows, corner radii and resize constraints.
Documents are written next to their captures unless --out is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := configFromContext(ctx)

			// Command line flags override config file and environment values.
			if cmd.Flags().Changed("concurrency") {
				cfg.Convert.Concurrency, _ = cmd.Flags().GetInt("concurrency")
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Convert.Pretty, _ = cmd.Flags().GetBool("pretty")
			}
			if cmd.Flags().Changed("store") {
				cfg.Storage.Enabled, _ = cmd.Flags().GetBool("store")
			}
			outDir, _ := cmd.Flags().GetString("out")

			if cfg.Convert.Concurrency <= 0 {
				return fmt.Errorf("concurrency must be a positive integer")
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}

			var archive *store.Store
			if cfg.Storage.Enabled {
				if cfg.Storage.URL == "" {
					return fmt.Errorf("storage URL is not configured (LAYERLIFT_STORAGE_URL)")
				}
				pool, err := pgxpool.New(ctx, cfg.Storage.URL)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer pool.Close()

				archive, err = store.New(ctx, pool, logger)
				if err != nil {
					return fmt.Errorf("failed to initialize document store: %w", err)
				}
			}

			conv := engine.New(logger)

			logger.Info("Starting conversion",
				zap.Int("captures", len(args)),
				zap.Int("concurrency", cfg.Convert.Concurrency),
				zap.Bool("store", archive != nil),
			)

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(cfg.Convert.Concurrency)
			for _, path := range args {
				g.Go(func() error {
					return convertOne(gctx, conv, archive, path, outDir, cfg.Convert.Pretty, logger)
				})
			}
			if err := g.Wait(); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Conversion aborted gracefully")
					return fmt.Errorf("conversion aborted by user signal: %w", err)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d capture(s).\n", len(args))
			return nil
		},
	}

	convertCmd.Flags().StringP("out", "o", "", "Output directory for layer documents. Defaults to alongside each capture.")
	convertCmd.Flags().Bool("pretty", false, "Indent the JSON output. (Overrides config/env)")
	convertCmd.Flags().IntP("concurrency", "j", 0, "Number of captures converted in parallel. (Overrides config/env)")
	convertCmd.Flags().Bool("store", false, "Persist documents to the configured archive. (Overrides config/env)")
	return convertCmd
}

// convertOne takes a single capture file through load, convert, write and
// optional archival.
func convertOne(ctx context.Context, conv *engine.Engine, archive *store.Store, path, outDir string, pretty bool, logger *zap.Logger) error {
	page, err := capture.Load(path)
	if err != nil {
		return err
	}

	doc, err := conv.Convert(ctx, page)
	if err != nil {
		return fmt.Errorf("converting %s: %w", filepath.Base(path), err)
	}

	outPath := documentPath(path, outDir)
	if err := writeDocument(outPath, doc, pretty); err != nil {
		return err
	}

	if archive != nil {
		if err := archive.PersistDocument(ctx, doc); err != nil {
			return fmt.Errorf("archiving document %s: %w", doc.ID, err)
		}
	}

	logger.Info("Layer document written",
		zap.String("capture", path),
		zap.String("output", outPath),
		zap.Int("layers", doc.LayerCount()),
	)
	return nil
}

// documentPath derives the layer document path from a capture path.
// page.json, page.json.gz and page.json.br all map to page.layers.json.
func documentPath(capturePath, outDir string) string {
	dir := filepath.Dir(capturePath)
	if outDir != "" {
		dir = outDir
	}
	base := filepath.Base(capturePath)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".gz", ".gzip", ".br":
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".layers.json")
}

// writeDocument encodes a layer document to disk.
func writeDocument(path string, doc *schemas.LayerDocument, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encoding layer document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing layer document: %w", err)
	}
	return nil
}
