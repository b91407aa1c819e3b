// internal/layers/svg.go
package layers

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/dom"
	"github.com/xkilldash9x/layerlift/internal/style"
)

// svgLayer serializes an <svg> subtree into one vector layer. The subtree is
// carried verbatim; width and height come from the markup's own attributes,
// then its viewBox, then the captured box. Position always comes from the
// box. A subtree that cannot be serialized yields nil.
func svgLayer(el *dom.Element, box schemas.Rect) *schemas.LayerNode {
	markup, err := el.OuterHTML()
	if err != nil {
		return nil
	}

	width, height := svgDimensions(markup)
	if width <= 0 {
		width = box.Width
	}
	if height <= 0 {
		height = box.Height
	}

	return &schemas.LayerNode{
		Kind:    schemas.KindSVG,
		Name:    el.Describe(),
		X:       box.Left,
		Y:       box.Top,
		Width:   width,
		Height:  height,
		Content: markup,
		Ref:     dom.ElementRef{Element: el},
	}
}

// svgDimensions reads the intrinsic size out of svg markup. Percentage and
// missing attributes report zero so the caller can fall back.
func svgDimensions(markup string) (width, height float64) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return 0, 0
	}
	root := doc.Root()
	if root == nil {
		return 0, 0
	}

	width = svgLength(root.SelectAttrValue("width", ""))
	height = svgLength(root.SelectAttrValue("height", ""))
	if width > 0 && height > 0 {
		return width, height
	}

	// viewBox: "min-x min-y width height"
	if fields := strings.Fields(root.SelectAttrValue("viewBox", "")); len(fields) == 4 {
		vbWidth, errW := strconv.ParseFloat(fields[2], 64)
		vbHeight, errH := strconv.ParseFloat(fields[3], 64)
		if errW == nil && errH == nil {
			if width <= 0 {
				width = vbWidth
			}
			if height <= 0 {
				height = vbHeight
			}
		}
	}
	return width, height
}

// svgLength accepts the unitless and px forms svg attributes use.
func svgLength(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasSuffix(value, "%") {
		return 0
	}
	return style.ParseAbsoluteLength(value)
}
