// internal/layers/builder.go
package layers

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/dom"
	"github.com/xkilldash9x/layerlift/internal/style"
)

var borderSides = [...]string{"top", "right", "bottom", "left"}

// Builder turns a resolved document into the flat, paint-ordered layer list
// under one root frame. Flat means no grouping: every rectangle, border,
// text run and svg is a direct child of the root, ordered back to front.
type Builder struct {
	resolver *style.Resolver
	snap     *style.Snapshotter
	log      *zap.Logger
}

// NewBuilder wires a builder to a resolver. A nil logger disables logging.
func NewBuilder(resolver *style.Resolver, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		resolver: resolver,
		snap:     style.NewSnapshotter(resolver, style.DefaultBaseline()),
		log:      logger.Named("layers"),
	}
}

// Build walks the document pre-order and emits the root frame sized to the
// viewport. Hidden subtrees are dropped entirely.
func (b *Builder) Build(doc *dom.Document, viewport schemas.Viewport) *schemas.LayerNode {
	root := &schemas.LayerNode{
		Kind:   schemas.KindFrame,
		Name:   "Page",
		Width:  viewport.Width,
		Height: viewport.Height,
	}
	if doc == nil || doc.Root() == nil {
		return root
	}
	b.visit(doc.Root(), root)
	b.log.Debug("layer tree built", zap.Int("layers", len(root.Children)))
	return root
}

func (b *Builder) visit(el *dom.Element, root *schemas.LayerNode) {
	// An svg subtree paints as one unit; never descend into it.
	if el.IsSVG() {
		if node := svgLayer(el, el.Box); node != nil {
			root.Children = append(root.Children, node)
		}
		return
	}
	if !el.IsRenderingHost() || b.hidden(el) {
		return
	}

	if node := b.elementLayer(el); node != nil {
		root.Children = append(root.Children, node)
		root.Children = append(root.Children, b.borderLayers(el, node)...)
	}
	for _, run := range el.TextRuns() {
		if node := b.textLayer(el, run); node != nil {
			root.Children = append(root.Children, node)
		}
	}
	for _, child := range el.Children() {
		b.visit(child, root)
	}
}

// hidden reports whether the element and its subtree should be dropped. The
// capture's own visibility verdict wins when present; style resolution covers
// captures without one.
func (b *Builder) hidden(el *dom.Element) bool {
	if !el.Visible {
		return true
	}
	if b.resolver.Resolve(el, "display") == "none" {
		return true
	}
	return b.resolver.Resolve(el, "visibility") == "hidden"
}

// elementLayer emits the rectangle for an element with visual presence: a
// non-empty box and at least one styled property. Everything else returns
// nil and paints nothing.
func (b *Builder) elementLayer(el *dom.Element) *schemas.LayerNode {
	snapshot := b.snap.Snapshot(el, "")
	if len(snapshot) == 0 || el.Box.Empty() {
		return nil
	}

	node := &schemas.LayerNode{
		Kind:   schemas.KindRectangle,
		Name:   el.Describe(),
		X:      el.Box.Left,
		Y:      el.Box.Top,
		Width:  el.Box.Width,
		Height: el.Box.Height,
		Ref:    dom.ElementRef{Element: el},
	}

	b.applyFills(node, snapshot)
	if raw, ok := snapshot["opacity"]; ok {
		if opacity, err := strconv.ParseFloat(raw, 64); err == nil {
			node.Opacity = opacity
		}
	}
	ApplyCornerRadii(node,
		b.resolver.Resolve(el, "border-top-left-radius"),
		b.resolver.Resolve(el, "border-top-right-radius"),
		b.resolver.Resolve(el, "border-bottom-right-radius"),
		b.resolver.Resolve(el, "border-bottom-left-radius"),
	)
	if effect := ShadowEffectFor(b.resolver.Resolve(el, "box-shadow")); effect != nil {
		node.Effects = append(node.Effects, *effect)
	}
	return node
}

// applyFills translates background color and image into the fill list,
// bottom first, the way backgrounds stack.
func (b *Builder) applyFills(node *schemas.LayerNode, snapshot map[string]string) {
	if raw, ok := snapshot["background-color"]; ok {
		if color, valid := style.ParseColor(raw); valid {
			node.Fills = append(node.Fills, schemas.SolidPaint(color.Normalized(), color.Opacity()))
		}
	}
	if raw, ok := snapshot["background-image"]; ok {
		if url, valid := imageURL(raw); valid {
			node.Fills = append(node.Fills, schemas.Paint{Type: schemas.PaintImage, URL: url, Opacity: 1})
		}
	}
}

// imageURL extracts the target of a url(...) background image. Gradients and
// other image functions have no asset to reference and report false.
func imageURL(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(strings.ToLower(value), "url(") || !strings.HasSuffix(value, ")") {
		return "", false
	}
	url := strings.TrimSpace(value[4 : len(value)-1])
	url = strings.Trim(url, `"'`)
	if url == "" {
		return "", false
	}
	return url, true
}

// borderLayers renders the element's borders. Four identical sides collapse
// to a stroke on the rectangle itself; mixed sides become separate rectangles
// painted right after it.
func (b *Builder) borderLayers(el *dom.Element, node *schemas.LayerNode) []*schemas.LayerNode {
	if uniform := b.resolver.Resolve(el, "border"); uniform != "" {
		ApplyBorderShorthand(node, uniform)
		return nil
	}
	var synthesized []*schemas.LayerNode
	for _, side := range borderSides {
		if layer := SideBorderLayer(el, side, b.resolver.BorderSide(el, side), el.Box); layer != nil {
			synthesized = append(synthesized, layer)
		}
	}
	return synthesized
}

// textLayer emits one TEXT node per rendered run. Runs the capture did not
// box fall back to the element's own box; runs with no geometry at all are
// dropped.
func (b *Builder) textLayer(el *dom.Element, run *dom.TextRun) *schemas.LayerNode {
	box := run.Box
	if box.Empty() {
		box = el.Box
	}
	if box.Empty() {
		return nil
	}

	node := &schemas.LayerNode{
		Kind:       schemas.KindText,
		Name:       layerName(run.Text),
		X:          box.Left,
		Y:          box.Top,
		Width:      box.Width,
		Height:     box.Height,
		Characters: run.Text,
		Text:       b.textStyle(el),
		Ref:        dom.TextRef{Run: run},
	}
	if color, ok := style.ParseColor(b.resolver.Resolve(el, "color")); ok {
		node.Fills = []schemas.Paint{schemas.SolidPaint(color.Normalized(), color.Opacity())}
	}
	return node
}

// textStyle reads the resolved text presentation off the enclosing element.
func (b *Builder) textStyle(el *dom.Element) *schemas.TextStyle {
	ts := &schemas.TextStyle{
		FontFamily: firstFontFamily(b.resolver.Resolve(el, "font-family")),
	}
	if size, ok := style.ParseLength(b.resolver.Resolve(el, "font-size")); ok {
		ts.FontSize = size
	}
	ts.FontWeight = fontWeight(b.resolver.Resolve(el, "font-weight"))
	ts.LineHeight = lineHeight(b.resolver.Resolve(el, "line-height"), ts.FontSize)
	if spacing, ok := style.ParseLength(b.resolver.Resolve(el, "letter-spacing")); ok {
		ts.LetterSpacing = spacing
	}
	if align := b.resolver.Resolve(el, "text-align"); align != "" && align != "start" {
		ts.TextAlign = align
	}
	return ts
}

func firstFontFamily(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

func fontWeight(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "normal":
		return 400
	case "bold":
		return 700
	}
	if w, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && w > 0 {
		return w
	}
	return 400
}

// lineHeight resolves px values directly and treats bare numbers as
// multipliers of the font size, like the normal keyword.
func lineHeight(value string, fontSize float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "normal") {
		return fontSize * style.DefaultLineHeight
	}
	if px, ok := style.ParseLength(value); ok {
		return px
	}
	if multiplier, err := strconv.ParseFloat(value, 64); err == nil && multiplier > 0 {
		return fontSize * multiplier
	}
	return fontSize * style.DefaultLineHeight
}

// layerName trims run text down to a short label.
func layerName(text string) string {
	const limit = 40
	if len(text) <= limit {
		return text
	}
	return strings.TrimSpace(text[:limit])
}
