// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/constraints"
	"github.com/xkilldash9x/layerlift/internal/cssom"
	"github.com/xkilldash9x/layerlift/internal/dom"
	"github.com/xkilldash9x/layerlift/internal/layers"
	"github.com/xkilldash9x/layerlift/internal/style"
)

// Engine converts rendered-page captures into layer documents. One engine is
// reusable across conversions; each conversion owns its parsed document, so
// callers may convert concurrently.
type Engine struct {
	log *zap.Logger
}

// New creates an engine. A nil logger disables logging.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{log: logger.Named("engine")}
}

// Convert runs the full pipeline over one capture: parse the markup, pair
// boxes, resolve styles, build the layer tree, and infer constraints.
// Degraded pairing is logged and converted anyway; only unusable captures
// and unparseable markup return errors.
func (e *Engine) Convert(ctx context.Context, capture *schemas.Capture) (*schemas.LayerDocument, error) {
	if err := capture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capture: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := dom.Parse(capture.HTML)
	if err != nil {
		return nil, fmt.Errorf("parsing capture markup: %w", err)
	}

	if mismatches := doc.PairBoxes(capture.Boxes); mismatches > 0 {
		e.log.Warn("box pairing degraded",
			zap.Int("mismatches", mismatches),
			zap.String("url", capture.URL))
	}
	if unmatched := doc.PairTextBoxes(capture.TextBoxes); unmatched > 0 {
		e.log.Warn("text box pairing degraded",
			zap.Int("unmatched", unmatched),
			zap.String("url", capture.URL))
	}

	resolver := style.NewResolver(collectStylesheets(capture, doc), style.Options{
		RootFontSize:   capture.RootFontSize,
		ViewportWidth:  capture.Viewport.Width,
		ViewportHeight: capture.Viewport.Height,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := layers.NewBuilder(resolver, e.log).Build(doc, capture.Viewport)
	constraints.NewInferencer(resolver, nil, e.log).Infer([]*schemas.LayerNode{root})

	document := &schemas.LayerDocument{
		ID:          uuid.NewString(),
		URL:         capture.URL,
		CapturedAt:  capture.CapturedAt,
		GeneratedAt: time.Now().UTC(),
		Viewport:    capture.Viewport,
		Root:        root,
	}
	e.log.Info("capture converted",
		zap.String("id", document.ID),
		zap.String("url", capture.URL),
		zap.Int("layers", document.LayerCount()))
	return document, nil
}

// collectStylesheets parses the capture's external sheets followed by the
// document's own <style> blocks, preserving cascade order within each group.
func collectStylesheets(capture *schemas.Capture, doc *dom.Document) []cssom.StyleSheet {
	var sheets []cssom.StyleSheet
	for _, sheet := range capture.Stylesheets {
		if strings.TrimSpace(sheet.CSS) == "" {
			continue
		}
		sheets = append(sheets, cssom.NewParser(sheet.CSS).Parse())
	}
	for _, text := range doc.StyleTexts() {
		sheets = append(sheets, cssom.NewParser(text).Parse())
	}
	return sheets
}
