package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/layerlift/internal/dom"
)

func TestSnapshotUnstyledElementIsEmpty(t *testing.T) {
	doc := parseDoc(t, `<div id="box"></div>`)
	snap := NewSnapshotter(newTestResolver(""), DefaultBaseline())

	got := snap.Snapshot(findByID(t, doc, "box"), "")
	require.NotNil(t, got)
	assert.Empty(t, got, "defaults must round-trip to an empty diff")
}

func TestSnapshotNonRenderingHost(t *testing.T) {
	doc, err := dom.Parse(`<html><head><style id="css">div{color:red}</style><script id="js">1</script></head><body></body></html>`)
	require.NoError(t, err)
	snap := NewSnapshotter(newTestResolver(""), DefaultBaseline())

	for _, id := range []string{"css", "js"} {
		el := findByID(t, doc, id)
		got := snap.Snapshot(el, "")
		require.NotNil(t, got, "%s must yield a non-nil map", id)
		assert.Empty(t, got)
	}

	got := snap.Snapshot(nil, "")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSnapshotDiffsOnlyChangedProperties(t *testing.T) {
	doc := parseDoc(t, `<div id="box"></div>`)
	snap := NewSnapshotter(newTestResolver(`#box { background-color: red; opacity: 0.5; }`), DefaultBaseline())

	got := snap.Snapshot(findByID(t, doc, "box"), "")
	assert.Equal(t, map[string]string{
		"background-color": "rgb(255, 0, 0)",
		"opacity":          "0.5",
	}, got)
}

func TestSnapshotBorderDefaultTracksTextColor(t *testing.T) {
	// An element with only a text color still has no visible border; the
	// baseline's color-dependent defaults must absorb the new currentcolor.
	doc := parseDoc(t, `<div id="box"></div>`)
	snap := NewSnapshotter(newTestResolver(`#box { color: blue; }`), DefaultBaseline())

	got := snap.Snapshot(findByID(t, doc, "box"), "")
	assert.Empty(t, got)
}

func TestSnapshotWithBorder(t *testing.T) {
	doc := parseDoc(t, `<div id="box"></div>`)
	snap := NewSnapshotter(newTestResolver(`#box { border: 2px solid red; }`), DefaultBaseline())

	got := snap.Snapshot(findByID(t, doc, "box"), "")
	want := map[string]string{
		"border":        "2px solid rgb(255, 0, 0)",
		"border-top":    "2px solid rgb(255, 0, 0)",
		"border-right":  "2px solid rgb(255, 0, 0)",
		"border-bottom": "2px solid rgb(255, 0, 0)",
		"border-left":   "2px solid rgb(255, 0, 0)",
		"border-color":  "rgb(255, 0, 0)",
	}
	assert.Equal(t, want, got)
}

func TestSnapshotPseudoState(t *testing.T) {
	doc := parseDoc(t, `<div id="box"></div>`)
	snap := NewSnapshotter(newTestResolver(`#box:hover { background-color: rgb(1, 2, 3); }`), DefaultBaseline())
	el := findByID(t, doc, "box")

	assert.Empty(t, snap.Snapshot(el, ""))
	assert.Equal(t, map[string]string{"background-color": "rgb(1, 2, 3)"}, snap.Snapshot(el, "hover"))
}

func TestBaselineDefaultFor(t *testing.T) {
	baseline := DefaultBaseline()

	v, ok := baseline.DefaultFor("opacity", "rgb(0, 0, 0)")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	v, ok = baseline.DefaultFor("border-top", "rgb(0, 0, 255)")
	require.True(t, ok)
	assert.Equal(t, "0px none rgb(0, 0, 255)", v)

	v, ok = baseline.DefaultFor("border-color", "rgb(10, 20, 30)")
	require.True(t, ok)
	assert.Equal(t, "rgb(10, 20, 30)", v)

	_, ok = baseline.DefaultFor("background-color", "rgb(0, 0, 0)")
	require.True(t, ok)

	_, ok = baseline.DefaultFor("nonexistent-property", "rgb(0, 0, 0)")
	assert.False(t, ok)
}
