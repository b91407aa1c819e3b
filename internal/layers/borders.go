// internal/layers/borders.go
package layers

import (
	"math"
	"strings"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/dom"
	"github.com/xkilldash9x/layerlift/internal/style"
)

// Border is the decomposed form of a resolved border value.
type Border struct {
	Width float64
	Style string
	Color style.Color
}

// Visible reports whether the border paints anything.
func (b Border) Visible() bool {
	return b.Width > 0 && b.Style != "none" && b.Style != "hidden"
}

// ParseBorder decomposes a resolved border value, "<width>px <style> <color>".
// The color may itself contain spaces ("rgb(255, 0, 0)"). Anything that does
// not fit the pattern is a no-match.
func ParseBorder(value string) (Border, bool) {
	parts := strings.Fields(value)
	if len(parts) < 3 {
		return Border{}, false
	}
	width, ok := style.ParseLength(parts[0])
	if !ok || width < 0 {
		return Border{}, false
	}
	color, ok := style.ParseColor(strings.Join(parts[2:], " "))
	if !ok {
		return Border{}, false
	}
	return Border{Width: width, Style: strings.ToLower(parts[1]), Color: color}, true
}

// SideBorderLayer synthesizes the rectangle painting one border side, placed
// just outside the element's box along that edge. It returns nil unless the
// value describes a visible border. The rectangle back-references the owning
// element, not a node of its own.
func SideBorderLayer(el *dom.Element, side, value string, box schemas.Rect) *schemas.LayerNode {
	border, ok := ParseBorder(value)
	if !ok || !border.Visible() {
		return nil
	}

	w := border.Width
	var rect schemas.Rect
	switch side {
	case "top":
		rect = schemas.NewRect(box.Left, box.Top-w, box.Width, w)
	case "bottom":
		rect = schemas.NewRect(box.Left, box.Bottom, box.Width, w)
	case "left":
		rect = schemas.NewRect(box.Left-w, box.Top, w, box.Height)
	case "right":
		rect = schemas.NewRect(box.Right, box.Top, w, box.Height)
	default:
		return nil
	}

	return &schemas.LayerNode{
		Kind:   schemas.KindRectangle,
		Name:   el.Describe() + " border-" + side,
		X:      rect.Left,
		Y:      rect.Top,
		Width:  rect.Width,
		Height: rect.Height,
		Fills:  []schemas.Paint{schemas.SolidPaint(border.Color.Normalized(), border.Color.Opacity())},
		Ref:    dom.ElementRef{Element: el},
	}
}

// ApplyBorderShorthand expresses a uniform border as a stroke on the node
// itself; no extra rectangles. The stroke weight is the nearest whole pixel.
// Non-matching and invisible values leave the node untouched.
func ApplyBorderShorthand(node *schemas.LayerNode, value string) {
	border, ok := ParseBorder(value)
	if !ok || !border.Visible() {
		return
	}
	node.Strokes = []schemas.Paint{schemas.SolidPaint(border.Color.Normalized(), border.Color.Opacity())}
	node.StrokeWeight = math.Round(border.Width)
}
