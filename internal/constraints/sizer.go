// internal/constraints/sizer.go
package constraints

import (
	"strings"

	"github.com/xkilldash9x/layerlift/internal/dom"
)

// IntrinsicSize reports, per axis, whether an element's size is explicitly
// fixed in pixels rather than derived from layout.
type IntrinsicSize struct {
	FixedWidth  bool
	FixedHeight bool
}

// IntrinsicSizer is the one capability of the inferencer that touches the
// document. Implementations must leave the element exactly as found on every
// exit path, including panics.
type IntrinsicSizer interface {
	MeasureIntrinsicSize(el *dom.Element) IntrinsicSize
}

// StyleSizer measures through a style-resolution function. Hiding the
// element first strips layout-derived sizes, so a pixel suffix on the
// resolved value can only come from an explicit declaration.
type StyleSizer struct {
	Resolve func(el *dom.Element, prop string) string
}

// MeasureIntrinsicSize probes the element under a scoped display mutation.
// The inline override carries !important so no author rule can outrank it,
// and the restore runs deferred so a failing read cannot leave the element
// hidden.
func (s StyleSizer) MeasureIntrinsicSize(el *dom.Element) (size IntrinsicSize) {
	restore := el.PushInlineProperty("display", "none", true)
	defer restore()

	size.FixedWidth = strings.HasSuffix(s.Resolve(el, "width"), "px")
	size.FixedHeight = strings.HasSuffix(s.Resolve(el, "height"), "px")
	return size
}
