// cmd/capture.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/capture"
	"github.com/xkilldash9x/layerlift/internal/config"
	"github.com/xkilldash9x/layerlift/internal/engine"
	"github.com/xkilldash9x/layerlift/internal/observability"
)

// newCaptureCmd creates and configures the `capture` command.
func newCaptureCmd() *cobra.Command {
	captureCmd := &cobra.Command{
		Use:   "capture [urls...]",
		Short: "Captures live pages for later conversion",
		Long: `Capture drives a headless browser over the given URLs and snapshots
each page: markup, stylesheets, computed boxes and text runs. The
snapshots are written as capture files that convert understands.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := configFromContext(ctx)

			// Command line flags override config file and environment values.
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless, _ = cmd.Flags().GetBool("headless")
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Capture.NavigationTimeout, _ = cmd.Flags().GetDuration("timeout")
			}
			if cmd.Flags().Changed("settle") {
				cfg.Capture.SettleDelay, _ = cmd.Flags().GetDuration("settle")
			}
			if cmd.Flags().Changed("viewport") {
				size, _ := cmd.Flags().GetString("viewport")
				vp, err := parseViewport(size)
				if err != nil {
					return err
				}
				cfg.Capture.Viewport = vp
			}
			outDir, _ := cmd.Flags().GetString("out")
			gzipOut, _ := cmd.Flags().GetBool("gzip")
			convertToo, _ := cmd.Flags().GetBool("convert")

			if err := cfg.Capture.Validate(); err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			targets := normalizeTargets(args)

			capturer := capture.NewCapturer(capture.Options{
				Headless:          cfg.Browser.Headless,
				DisableGPU:        cfg.Browser.DisableGPU,
				ExtraArgs:         cfg.Browser.Args,
				Viewport:          schemas.Viewport{Width: cfg.Capture.Viewport.Width, Height: cfg.Capture.Viewport.Height},
				NavigationTimeout: cfg.Capture.NavigationTimeout,
				SettleDelay:       cfg.Capture.SettleDelay,
				RateLimit:         cfg.Capture.RateLimit,
			}, logger)

			logger.Info("Starting capture",
				zap.Strings("targets", targets),
				zap.Float64("viewport_width", cfg.Capture.Viewport.Width),
				zap.Float64("viewport_height", cfg.Capture.Viewport.Height),
			)

			captures, err := capturer.CaptureAll(ctx, targets)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Capture aborted gracefully")
					return fmt.Errorf("capture aborted by user signal: %w", err)
				}
				return err
			}
			if len(captures) == 0 {
				return fmt.Errorf("no pages could be captured")
			}

			conv := engine.New(logger)
			for _, page := range captures {
				path := capturePath(outDir, page.URL, gzipOut)
				if err := capture.Save(path, page); err != nil {
					return err
				}
				logger.Info("Capture saved", zap.String("url", page.URL), zap.String("output", path))

				if convertToo {
					doc, err := conv.Convert(ctx, page)
					if err != nil {
						return fmt.Errorf("converting %s: %w", page.URL, err)
					}
					if err := writeDocument(documentPath(path, ""), doc, cfg.Convert.Pretty); err != nil {
						return err
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Captured %d of %d page(s).\n", len(captures), len(targets))
			return nil
		},
	}

	captureCmd.Flags().StringP("out", "o", ".", "Output directory for capture files.")
	captureCmd.Flags().Bool("convert", false, "Also convert each capture into a layer document.")
	captureCmd.Flags().String("viewport", "", `Viewport size as WIDTHxHEIGHT, e.g. "1280x800". (Overrides config/env)`)
	captureCmd.Flags().Duration("timeout", 0, "Navigation timeout per page. (Overrides config/env)")
	captureCmd.Flags().Duration("settle", 0, "Delay after load before snapshotting. (Overrides config/env)")
	captureCmd.Flags().Bool("headless", true, "Run the browser headless. (Overrides config/env)")
	captureCmd.Flags().Bool("gzip", false, "Compress capture files with gzip.")
	return captureCmd
}

// normalizeTargets ensures every target has a scheme so navigation works.
func normalizeTargets(args []string) []string {
	targets := make([]string, len(args))
	for i, target := range args {
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			target = "https://" + target
		}
		targets[i] = target
	}
	return targets
}

// parseViewport reads a WIDTHxHEIGHT flag value.
func parseViewport(s string) (config.ViewportConfig, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return config.ViewportConfig{}, fmt.Errorf("viewport must look like 1280x800, got %q", s)
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return config.ViewportConfig{}, fmt.Errorf("viewport width %q is not a number", strings.TrimSpace(w))
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return config.ViewportConfig{}, fmt.Errorf("viewport height %q is not a number", strings.TrimSpace(h))
	}
	if width <= 0 || height <= 0 {
		return config.ViewportConfig{}, fmt.Errorf("viewport dimensions must be positive, got %q", s)
	}
	return config.ViewportConfig{Width: width, Height: height}, nil
}

// capturePath builds the capture filename for a page URL.
func capturePath(dir, rawURL string, gzipOut bool) string {
	ext := ".json"
	if gzipOut {
		ext = ".json.gz"
	}
	return filepath.Join(dir, slugFromURL(rawURL)+ext)
}

// slugFromURL turns a URL into a filesystem friendly name,
// e.g. https://example.com/pricing/teams -> example.com-pricing-teams.
func slugFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "capture"
	}
	slug := u.Host
	if p := strings.Trim(u.Path, "/"); p != "" {
		slug += "-" + strings.ReplaceAll(p, "/", "-")
	}
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, slug)
	return slug
}
