// internal/dom/dom_test.go
package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

const sampleMarkup = `<html><head><style>p { color: red; }</style></head>` +
	`<body><div id="box" class="card main" style="color: blue; margin: 0">` +
	`Hello <span>world</span></div>` +
	`<svg width="10" height="10"><rect width="5" height="5"/></svg>` +
	`</body></html>`

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(sampleMarkup)
	require.NoError(t, err)
	return doc
}

func findByTag(doc *Document, tag string) *Element {
	for _, el := range doc.Elements() {
		if el.Tag() == tag {
			return el
		}
	}
	return nil
}

func TestParseBuildsPreOrderTree(t *testing.T) {
	doc := parseSample(t)

	tags := make([]string, 0, len(doc.Elements()))
	for _, el := range doc.Elements() {
		tags = append(tags, el.Tag())
	}
	assert.Equal(t, []string{"html", "head", "style", "body", "div", "span", "svg", "rect"}, tags)

	for i, el := range doc.Elements() {
		assert.Equal(t, i, el.Index())
	}

	div := findByTag(doc, "div")
	require.NotNil(t, div)
	assert.Equal(t, "body", div.Parent().Tag())
	assert.Equal(t, "box", div.ID())
	assert.Equal(t, []string{"card", "main"}, div.Classes())
	assert.Equal(t, "div#box", div.Describe())

	require.Len(t, div.TextRuns(), 1)
	assert.Equal(t, "Hello", div.TextRuns()[0].Text)
	assert.Same(t, div, div.TextRuns()[0].Parent())
}

func TestParseCollectsStyleTexts(t *testing.T) {
	doc := parseSample(t)
	require.Len(t, doc.StyleTexts(), 1)
	assert.Contains(t, doc.StyleTexts()[0], "color: red")
}

func TestRenderingHostClassification(t *testing.T) {
	doc := parseSample(t)

	assert.True(t, findByTag(doc, "div").IsRenderingHost())
	assert.True(t, findByTag(doc, "body").IsRenderingHost())
	assert.False(t, findByTag(doc, "style").IsRenderingHost())
	assert.False(t, findByTag(doc, "head").IsRenderingHost())

	svg := findByTag(doc, "svg")
	require.NotNil(t, svg)
	assert.True(t, svg.IsSVG())
	assert.False(t, svg.IsRenderingHost())

	rect := findByTag(doc, "rect")
	require.NotNil(t, rect)
	assert.True(t, rect.InSVG())
	assert.False(t, rect.IsRenderingHost())
}

func TestInlineStyleAccess(t *testing.T) {
	doc := parseSample(t)
	div := findByTag(doc, "div")

	val, important, ok := div.InlineProperty("color")
	require.True(t, ok)
	assert.Equal(t, "blue", val)
	assert.False(t, important)

	_, _, ok = div.InlineProperty("display")
	assert.False(t, ok)
}

func TestSetAndRemoveInlineProperty(t *testing.T) {
	doc := parseSample(t)
	div := findByTag(doc, "div")
	v0 := div.Version()

	div.SetInlineProperty("display", "none", true)
	val, important, ok := div.InlineProperty("display")
	require.True(t, ok)
	assert.Equal(t, "none", val)
	assert.True(t, important)
	assert.Greater(t, div.Version(), v0)

	div.SetInlineProperty("display", "block", false)
	val, important, ok = div.InlineProperty("display")
	require.True(t, ok)
	assert.Equal(t, "block", val)
	assert.False(t, important)

	div.RemoveInlineProperty("display")
	_, _, ok = div.InlineProperty("display")
	assert.False(t, ok)
}

func TestPushInlinePropertyRestores(t *testing.T) {
	doc := parseSample(t)
	div := findByTag(doc, "div")

	t.Run("restores an existing value", func(t *testing.T) {
		restore := div.PushInlineProperty("color", "green", true)
		val, important, ok := div.InlineProperty("color")
		require.True(t, ok)
		assert.Equal(t, "green", val)
		assert.True(t, important)

		restore()
		val, important, ok = div.InlineProperty("color")
		require.True(t, ok)
		assert.Equal(t, "blue", val)
		assert.False(t, important)
	})

	t.Run("removes a property that did not exist", func(t *testing.T) {
		restore := div.PushInlineProperty("display", "none", true)
		_, _, ok := div.InlineProperty("display")
		require.True(t, ok)

		restore()
		_, _, ok = div.InlineProperty("display")
		assert.False(t, ok)
	})

	t.Run("restores during panic unwinding", func(t *testing.T) {
		func() {
			defer func() { _ = recover() }()
			restore := div.PushInlineProperty("display", "none", true)
			defer restore()
			panic("mid-probe failure")
		}()
		_, _, ok := div.InlineProperty("display")
		assert.False(t, ok, "display must be restored after a panic")
	})
}

func TestPairBoxes(t *testing.T) {
	doc := parseSample(t)
	boxes := make([]schemas.ElementBox, len(doc.Elements()))
	for i, el := range doc.Elements() {
		boxes[i] = schemas.ElementBox{
			Tag:     el.Tag(),
			Rect:    schemas.NewRect(float64(i), float64(i), 100, 50),
			Visible: true,
		}
	}

	mismatches := doc.PairBoxes(boxes)
	assert.Zero(t, mismatches)

	div := findByTag(doc, "div")
	assert.Equal(t, float64(div.Index()), div.Box.Left)
	assert.Equal(t, 100.0, div.Box.Width)
	assert.True(t, div.Visible)
}

func TestPairBoxesDegradesOnMismatch(t *testing.T) {
	doc := parseSample(t)

	t.Run("short list", func(t *testing.T) {
		mismatches := doc.PairBoxes([]schemas.ElementBox{{Tag: "html", Visible: true}})
		assert.Equal(t, len(doc.Elements())-1, mismatches)
	})

	t.Run("tag mismatch leaves box empty", func(t *testing.T) {
		boxes := make([]schemas.ElementBox, len(doc.Elements()))
		for i := range boxes {
			boxes[i] = schemas.ElementBox{Tag: "article", Rect: schemas.NewRect(0, 0, 9, 9)}
		}
		fresh := parseSample(t)
		mismatches := fresh.PairBoxes(boxes)
		assert.Equal(t, len(fresh.Elements()), mismatches)
		assert.True(t, findByTag(fresh, "div").Box.Empty())
	})
}

func TestPairTextBoxes(t *testing.T) {
	doc := parseSample(t)
	div := findByTag(doc, "div")

	unmatched := doc.PairTextBoxes([]schemas.TextBox{
		{ElementIndex: div.Index(), Text: "Hello", Rect: schemas.NewRect(5, 10, 40, 16)},
		{ElementIndex: 999, Text: "nowhere"},
	})
	assert.Equal(t, 1, unmatched)
	assert.Equal(t, 40.0, div.TextRuns()[0].Box.Width)
}

func TestRefVariants(t *testing.T) {
	doc := parseSample(t)
	div := findByTag(doc, "div")
	run := div.TextRuns()[0]

	var elRef Ref = ElementRef{Element: div}
	assert.Same(t, div, elRef.Resolve())

	var textRef Ref = TextRef{Run: run}
	assert.Same(t, div, textRef.Resolve())

	assert.Nil(t, TextRef{}.Resolve())

	got, ok := AsRef(any(elRef))
	require.True(t, ok)
	assert.Same(t, div, got.Resolve())

	_, ok = AsRef("not a ref")
	assert.False(t, ok)
	_, ok = AsRef(nil)
	assert.False(t, ok)
}

func TestChildPositionAndSiblings(t *testing.T) {
	doc := parseSample(t)
	body := findByTag(doc, "body")
	require.Len(t, body.Children(), 2)

	div, svg := body.Children()[0], body.Children()[1]
	pos, total := div.ChildPosition()
	assert.Equal(t, 0, pos)
	assert.Equal(t, 2, total)

	assert.Nil(t, div.PrevSibling())
	assert.Same(t, div, svg.PrevSibling())
}

func TestParseSynthesizesSkeletonForBareInput(t *testing.T) {
	// The HTML5 parsing algorithm always produces html/head/body, even for
	// empty input, so parsing never fails on missing structure.
	doc, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, "html", doc.Root().Tag())
	require.NotNil(t, doc.Body())
	assert.Empty(t, doc.Body().Children())
}
