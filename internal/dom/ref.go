// internal/dom/ref.go
package dom

// Ref is a non-owning back-reference from a layer node to the document
// content it was derived from. It is lookup-only: holding a Ref never
// extends or manages the referenced element's lifetime.
//
// Exactly two variants exist. ElementRef points at an element directly;
// TextRef points at a text run and resolves through the run's enclosing
// element, which is the element whose style governs the run.
type Ref interface {
	Resolve() *Element
}

// ElementRef backs layers derived from an element, including synthesized
// border rectangles, which carry a ref to the element that owns the border.
type ElementRef struct {
	Element *Element
}

func (r ElementRef) Resolve() *Element { return r.Element }

// TextRef backs text layers.
type TextRef struct {
	Run *TextRun
}

func (r TextRef) Resolve() *Element {
	if r.Run == nil {
		return nil
	}
	return r.Run.parent
}

// AsRef extracts a Ref from a layer's opaque back-reference field.
func AsRef(v any) (Ref, bool) {
	ref, ok := v.(Ref)
	if !ok || ref == nil {
		return nil, false
	}
	return ref, true
}
