package schemas

import "time"

// LayerKind identifies the visual role of a layer node.
type LayerKind string

const (
	KindFrame     LayerKind = "FRAME"
	KindGroup     LayerKind = "GROUP"
	KindRectangle LayerKind = "RECTANGLE"
	KindText      LayerKind = "TEXT"
	KindSVG       LayerKind = "SVG"
)

// IsContainer reports whether nodes of this kind carry children.
func (k LayerKind) IsContainer() bool {
	return k == KindFrame || k == KindGroup
}

// HorizontalConstraint describes how a layer anchors to its parent on the
// horizontal axis when the parent resizes. SCALE is the default: the layer
// stretches with the parent. MIN (pin left) is expressed by absence.
type HorizontalConstraint string

const (
	HorizontalScale  HorizontalConstraint = "SCALE"
	HorizontalCenter HorizontalConstraint = "CENTER"
	HorizontalMax    HorizontalConstraint = "MAX"
)

// VerticalConstraint describes the vertical anchoring. MIN is the default:
// the layer stays pinned to the top edge.
type VerticalConstraint string

const (
	VerticalMin    VerticalConstraint = "MIN"
	VerticalCenter VerticalConstraint = "CENTER"
	VerticalMax    VerticalConstraint = "MAX"
)

// Constraints pairs the two per-axis anchoring decisions for a layer.
type Constraints struct {
	Horizontal HorizontalConstraint `json:"horizontal"`
	Vertical   VerticalConstraint   `json:"vertical"`
}

// Color is a normalized RGB triple; every channel is in [0,1]. Opacity is
// never part of a Color, it travels separately wherever a color is applied.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// PaintType identifies how a fill or stroke entry paints.
type PaintType string

const (
	PaintSolid PaintType = "SOLID"
	PaintImage PaintType = "IMAGE"
)

// Paint is one entry of a layer's fill or stroke list.
type Paint struct {
	Type    PaintType `json:"type"`
	Color   *Color    `json:"color,omitempty"`
	Opacity float64   `json:"opacity"`
	URL     string    `json:"url,omitempty"`
}

// SolidPaint builds the common single-color paint entry.
func SolidPaint(c Color, opacity float64) Paint {
	return Paint{Type: PaintSolid, Color: &c, Opacity: opacity}
}

// EffectType identifies a layer effect.
type EffectType string

const EffectDropShadow EffectType = "DROP_SHADOW"

// BlendMode identifies how an effect composites.
type BlendMode string

const BlendNormal BlendMode = "NORMAL"

// Vector is a 2D offset.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShadowEffect describes a single drop shadow. The translator emits at most
// one of these per node; stacked CSS shadows collapse to the first entry.
type ShadowEffect struct {
	Type      EffectType `json:"type"`
	Color     Color      `json:"color"`
	Opacity   float64    `json:"opacity"`
	Radius    float64    `json:"radius"`
	BlendMode BlendMode  `json:"blendMode"`
	Visible   bool       `json:"visible"`
	Offset    Vector     `json:"offset"`
}

// Rect is a read-only snapshot of an element's box in page coordinates.
// It is supplied by the capture and never recomputed downstream.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect builds a Rect from an origin and a size, deriving the far edges.
func NewRect(left, top, width, height float64) Rect {
	return Rect{
		Top:    top,
		Left:   left,
		Right:  left + width,
		Bottom: top + height,
		Width:  width,
		Height: height,
	}
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// TextStyle carries the text presentation fields of a TEXT layer.
type TextStyle struct {
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontWeight    int     `json:"fontWeight,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	TextAlign     string  `json:"textAlign,omitempty"`
}

// LayerNode is one visual layer: a rectangle, a text run, an embedded
// vector, or a container of other layers. Geometry is absolute in page
// coordinates. Ref is a non-owning back-reference to the source element
// (or, for synthesized border rectangles, the element whose border produced
// them); it is lookup-only, never serialized, and never implies ownership.
type LayerNode struct {
	Kind LayerKind `json:"kind"`
	Name string    `json:"name,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Constraints *Constraints `json:"constraints,omitempty"`

	Fills        []Paint        `json:"fills,omitempty"`
	Strokes      []Paint        `json:"strokes,omitempty"`
	StrokeWeight float64        `json:"strokeWeight,omitempty"`
	Effects      []ShadowEffect `json:"effects,omitempty"`
	Opacity      float64        `json:"opacity,omitempty"`

	TopLeftRadius     float64 `json:"topLeftRadius,omitempty"`
	TopRightRadius    float64 `json:"topRightRadius,omitempty"`
	BottomRightRadius float64 `json:"bottomRightRadius,omitempty"`
	BottomLeftRadius  float64 `json:"bottomLeftRadius,omitempty"`

	Characters string     `json:"characters,omitempty"`
	Text       *TextStyle `json:"textStyle,omitempty"`

	// Content holds the serialized markup of an SVG layer.
	Content string `json:"content,omitempty"`

	// Data is the free-form annotation side channel (widthType, position...).
	Data map[string]string `json:"data,omitempty"`

	Children []*LayerNode `json:"children,omitempty"`

	Ref any `json:"-"`
}

// Annotate writes a side-channel key/value pair, allocating the map lazily.
func (n *LayerNode) Annotate(key, value string) {
	if n.Data == nil {
		n.Data = make(map[string]string)
	}
	n.Data[key] = value
}

// LayerDocument is the envelope for one converted page.
type LayerDocument struct {
	ID          string    `json:"id"`
	URL         string    `json:"url,omitempty"`
	CapturedAt  time.Time `json:"capturedAt"`
	GeneratedAt time.Time `json:"generatedAt"`
	Viewport    Viewport  `json:"viewport"`
	Root        *LayerNode `json:"root"`
}

// LayerCount walks the document and returns the total number of layers.
func (d *LayerDocument) LayerCount() int {
	var count func(n *LayerNode) int
	count = func(n *LayerNode) int {
		if n == nil {
			return 0
		}
		total := 1
		for _, c := range n.Children {
			total += count(c)
		}
		return total
	}
	return count(d.Root)
}
