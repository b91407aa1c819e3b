package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/dom"
)

func borderTestElement(t *testing.T) *dom.Element {
	t.Helper()
	doc, err := dom.Parse(`<html><head></head><body><div id="box"></div></body></html>`)
	require.NoError(t, err)
	for _, el := range doc.Elements() {
		if el.ID() == "box" {
			return el
		}
	}
	t.Fatal("no #box element")
	return nil
}

func TestParseBorder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Border
		ok       bool
	}{
		{"canonical", "2px solid rgb(255, 0, 0)", Border{Width: 2, Style: "solid"}, true},
		{"keyword color", "1px dashed red", Border{Width: 1, Style: "dashed"}, true},
		{"zero width", "0px none rgb(0, 0, 0)", Border{Width: 0, Style: "none"}, true},
		{"fractional width", "3.6px solid black", Border{Width: 3.6, Style: "solid"}, true},
		{"missing color", "2px solid", Border{}, false},
		{"unparseable width", "thick solid red", Border{}, false},
		{"unparseable color", "2px solid chartreuse-ish", Border{}, false},
		{"empty", "", Border{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			border, ok := ParseBorder(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected.Width, border.Width)
				assert.Equal(t, tt.expected.Style, border.Style)
			}
		})
	}
}

func TestBorderVisible(t *testing.T) {
	assert.True(t, Border{Width: 2, Style: "solid"}.Visible())
	assert.False(t, Border{Width: 0, Style: "solid"}.Visible())
	assert.False(t, Border{Width: 2, Style: "none"}.Visible())
	assert.False(t, Border{Width: 2, Style: "hidden"}.Visible())
}

func TestSideBorderLayerPlacement(t *testing.T) {
	el := borderTestElement(t)
	box := schemas.NewRect(10, 20, 100, 50)

	tests := []struct {
		side                string
		x, y, width, height float64
	}{
		{"top", 10, 18, 100, 2},
		{"bottom", 10, 70, 100, 2},
		{"left", 8, 20, 2, 50},
		{"right", 110, 20, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			node := SideBorderLayer(el, tt.side, "2px solid red", box)
			require.NotNil(t, node)
			assert.Equal(t, schemas.KindRectangle, node.Kind)
			assert.Equal(t, tt.x, node.X)
			assert.Equal(t, tt.y, node.Y)
			assert.Equal(t, tt.width, node.Width)
			assert.Equal(t, tt.height, node.Height)

			require.Len(t, node.Fills, 1)
			fill := node.Fills[0]
			assert.Equal(t, schemas.PaintSolid, fill.Type)
			assert.Equal(t, schemas.Color{R: 1, G: 0, B: 0}, *fill.Color)
			assert.Equal(t, 1.0, fill.Opacity)

			ref, ok := dom.AsRef(node.Ref)
			require.True(t, ok)
			assert.Same(t, el, ref.Resolve())
		})
	}
}

func TestSideBorderLayerSilentNoOps(t *testing.T) {
	el := borderTestElement(t)
	box := schemas.NewRect(0, 0, 100, 100)

	assert.Nil(t, SideBorderLayer(el, "top", "", box))
	assert.Nil(t, SideBorderLayer(el, "top", "0px none rgb(0, 0, 0)", box))
	assert.Nil(t, SideBorderLayer(el, "top", "2px none red", box))
	assert.Nil(t, SideBorderLayer(el, "top", "not a border", box))
	assert.Nil(t, SideBorderLayer(el, "diagonal", "2px solid red", box))
}

func TestApplyBorderShorthand(t *testing.T) {
	node := &schemas.LayerNode{Kind: schemas.KindRectangle}
	ApplyBorderShorthand(node, "3.6px solid rgba(0, 0, 0, 0.5)")

	assert.Equal(t, 4.0, node.StrokeWeight, "stroke weight snaps to whole pixels")
	require.Len(t, node.Strokes, 1)
	stroke := node.Strokes[0]
	assert.Equal(t, schemas.Color{R: 0, G: 0, B: 0}, *stroke.Color)
	assert.InDelta(t, 0.5, stroke.Opacity, 0.01)
}

func TestApplyBorderShorthandNoOps(t *testing.T) {
	node := &schemas.LayerNode{Kind: schemas.KindRectangle}

	ApplyBorderShorthand(node, "0px none rgb(0, 0, 0)")
	assert.Empty(t, node.Strokes)
	assert.Zero(t, node.StrokeWeight)

	ApplyBorderShorthand(node, "garbage")
	assert.Empty(t, node.Strokes)
}
