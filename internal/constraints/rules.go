// internal/constraints/rules.go
package constraints

import (
	"strings"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/dom"
)

type axis int

const (
	axisHorizontal axis = iota
	axisVertical
)

// axisFlags is the pair of push indicators for one axis, the same shape an
// auto margin produces: Start set alone pushes the layer to the far edge,
// both set center it.
type axisFlags struct {
	Start bool // left or top
	End   bool // right or bottom
}

func (f axisFlags) horizontal() schemas.HorizontalConstraint {
	switch {
	case f.Start && f.End:
		return schemas.HorizontalCenter
	case f.Start:
		return schemas.HorizontalMax
	default:
		return schemas.HorizontalScale
	}
}

func (f axisFlags) vertical() schemas.VerticalConstraint {
	switch {
	case f.Start && f.End:
		return schemas.VerticalCenter
	case f.Start:
		return schemas.VerticalMax
	default:
		return schemas.VerticalMin
	}
}

// ruleContext carries everything an alignment rule may consult.
type ruleContext struct {
	node   *schemas.LayerNode
	el     *dom.Element
	parent *dom.Element
	style  func(el *dom.Element, prop string) string
}

// alignmentRule is one pure signal: when applicable it returns the axis it
// decides and the flags for that axis.
type alignmentRule struct {
	name  string
	apply func(ruleContext) (axis, axisFlags, bool)
}

// alignmentRules run in fixed order and later applicable rules overwrite the
// axis flags of earlier ones. The order is part of the contract: auto
// margins first, then inline-flow adjustments, then flex-parent alignment,
// then a text node's own alignment.
var alignmentRules = []alignmentRule{
	{name: "auto-margin-horizontal", apply: autoMarginHorizontal},
	{name: "auto-margin-vertical", apply: autoMarginVertical},
	{name: "inline-parent-text-align", apply: inlineParentTextAlign},
	{name: "inline-own-vertical-align", apply: inlineOwnVerticalAlign},
	{name: "flex-justify", apply: flexJustify},
	{name: "flex-align", apply: flexAlign},
	{name: "text-self-align", apply: textSelfAlign},
}

// applyAlignmentRules folds the rule list into the final per-axis flags.
func applyAlignmentRules(rc ruleContext) (h, v axisFlags) {
	for _, rule := range alignmentRules {
		decided, flags, ok := rule.apply(rc)
		if !ok {
			continue
		}
		if decided == axisHorizontal {
			h = flags
		} else {
			v = flags
		}
	}
	return h, v
}

// autoMarginHorizontal initializes the horizontal flags from literal auto
// margins. Always applicable.
func autoMarginHorizontal(rc ruleContext) (axis, axisFlags, bool) {
	return axisHorizontal, axisFlags{
		Start: rc.style(rc.el, "margin-left") == "auto",
		End:   rc.style(rc.el, "margin-right") == "auto",
	}, true
}

func autoMarginVertical(rc ruleContext) (axis, axisFlags, bool) {
	return axisVertical, axisFlags{
		Start: rc.style(rc.el, "margin-top") == "auto",
		End:   rc.style(rc.el, "margin-bottom") == "auto",
	}, true
}

func isInline(rc ruleContext) bool {
	return strings.Contains(rc.style(rc.el, "display"), "inline")
}

// inlineParentTextAlign: an inline element rides its parent's text flow, so
// the parent's text-align decides its horizontal anchoring.
func inlineParentTextAlign(rc ruleContext) (axis, axisFlags, bool) {
	if !isInline(rc) {
		return axisHorizontal, axisFlags{}, false
	}
	switch rc.style(rc.parent, "text-align") {
	case "center":
		return axisHorizontal, axisFlags{Start: true, End: true}, true
	case "right":
		return axisHorizontal, axisFlags{Start: true}, true
	}
	return axisHorizontal, axisFlags{}, false
}

// inlineOwnVerticalAlign: vertical-align only means something in inline flow.
func inlineOwnVerticalAlign(rc ruleContext) (axis, axisFlags, bool) {
	if !isInline(rc) {
		return axisVertical, axisFlags{}, false
	}
	switch rc.style(rc.el, "vertical-align") {
	case "middle":
		return axisVertical, axisFlags{Start: true, End: true}, true
	case "bottom":
		return axisVertical, axisFlags{Start: true}, true
	}
	return axisVertical, axisFlags{}, false
}

func isFlexParent(rc ruleContext) bool {
	return strings.Contains(rc.style(rc.parent, "display"), "flex")
}

// flexSignal picks which parent property drives the given axis: in a row the
// main axis is horizontal, so justify-content speaks for it; in a column the
// roles swap.
func flexSignal(rc ruleContext, forAxis axis) string {
	dir := rc.style(rc.parent, "flex-direction")
	if forAxis == axisHorizontal {
		if dir == "row" {
			return rc.style(rc.parent, "justify-content")
		}
		return rc.style(rc.parent, "align-items")
	}
	if dir == "column" {
		return rc.style(rc.parent, "justify-content")
	}
	return rc.style(rc.parent, "align-items")
}

func flexJustify(rc ruleContext) (axis, axisFlags, bool) {
	if !isFlexParent(rc) {
		return axisHorizontal, axisFlags{}, false
	}
	signal := flexSignal(rc, axisHorizontal)
	switch {
	case signal == "center":
		return axisHorizontal, axisFlags{Start: true, End: true}, true
	case strings.Contains(signal, "end") || strings.Contains(signal, "right"):
		return axisHorizontal, axisFlags{Start: true}, true
	}
	return axisHorizontal, axisFlags{}, false
}

func flexAlign(rc ruleContext) (axis, axisFlags, bool) {
	if !isFlexParent(rc) {
		return axisVertical, axisFlags{}, false
	}
	signal := flexSignal(rc, axisVertical)
	switch {
	case signal == "center":
		return axisVertical, axisFlags{Start: true, End: true}, true
	case strings.Contains(signal, "end") || strings.Contains(signal, "bottom"):
		return axisVertical, axisFlags{Start: true}, true
	}
	return axisVertical, axisFlags{}, false
}

// textSelfAlign: a text layer's own alignment outranks everything else on
// the horizontal axis.
func textSelfAlign(rc ruleContext) (axis, axisFlags, bool) {
	if rc.node.Kind != schemas.KindText {
		return axisHorizontal, axisFlags{}, false
	}
	switch rc.style(rc.el, "text-align") {
	case "center":
		return axisHorizontal, axisFlags{Start: true, End: true}, true
	case "right":
		return axisHorizontal, axisFlags{Start: true}, true
	}
	return axisHorizontal, axisFlags{}, false
}
