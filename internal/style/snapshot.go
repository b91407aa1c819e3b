// internal/style/snapshot.go
package style

import (
	"fmt"

	"github.com/xkilldash9x/layerlift/internal/dom"
)

// Baseline is the per-property default table a snapshot diffs against.
// Properties resolving to their baseline value are omitted from the
// snapshot, since downstream consumers treat absence as "use the format's
// own default". Border defaults embed the element's resolved text color, so
// those entries are format strings rather than literals.
type Baseline struct {
	// Properties is the allow-list of properties a snapshot reads, in order.
	Properties []string
	// Literals maps properties to fixed default values.
	Literals map[string]string
	// ColorForms maps properties to defaults derived from the element's
	// resolved text color, as fmt format strings with one %s verb.
	ColorForms map[string]string
}

// DefaultFor returns the baseline value for prop given the element's
// resolved text color. ok is false when the baseline has no entry, in which
// case any non-empty resolved value is significant.
func (b Baseline) DefaultFor(prop, textColor string) (string, bool) {
	if v, ok := b.Literals[prop]; ok {
		return v, true
	}
	if form, ok := b.ColorForms[prop]; ok {
		return fmt.Sprintf(form, textColor), true
	}
	return "", false
}

// DefaultBaseline is the table for the current target format. Tests and
// future format versions can construct their own.
func DefaultBaseline() Baseline {
	return Baseline{
		Properties: []string{
			"opacity",
			"background-color",
			"border",
			"border-top",
			"border-left",
			"border-right",
			"border-bottom",
			"border-radius",
			"background-image",
			"border-color",
			"box-shadow",
		},
		Literals: map[string]string{
			"opacity":               "1",
			"background-color":      "rgba(0, 0, 0, 0)",
			"border-radius":         "0px",
			"background-image":      "none",
			"box-shadow":            "none",
			"transform":             "none",
			"background-position":   "0% 0%",
			"background-repeat":     "repeat",
			"background-attachment": "scroll",
		},
		ColorForms: map[string]string{
			"border":        "0px none %s",
			"border-top":    "0px none %s",
			"border-left":   "0px none %s",
			"border-right":  "0px none %s",
			"border-bottom": "0px none %s",
			"border-color":  "%s",
		},
	}
}

// Snapshotter reads sparse style snapshots: only the properties whose
// resolved value differs from the baseline.
type Snapshotter struct {
	resolver *Resolver
	baseline Baseline
}

// NewSnapshotter pairs a resolver with a baseline table.
func NewSnapshotter(resolver *Resolver, baseline Baseline) *Snapshotter {
	return &Snapshotter{resolver: resolver, baseline: baseline}
}

// Snapshot returns the resolved values that differ from the baseline for el,
// optionally under a pseudo-state ("hover"). Elements that do not host
// rendered content yield an empty snapshot, never an error.
func (s *Snapshotter) Snapshot(el *dom.Element, state string) map[string]string {
	snapshot := make(map[string]string)
	if el == nil || !el.IsRenderingHost() {
		return snapshot
	}
	textColor := s.resolver.ResolveState(el, state, "color")
	for _, prop := range s.baseline.Properties {
		value := s.resolver.ResolveState(el, state, prop)
		if value == "" {
			continue
		}
		if def, ok := s.baseline.DefaultFor(prop, textColor); ok && value == def {
			continue
		}
		snapshot[prop] = value
	}
	return snapshot
}
