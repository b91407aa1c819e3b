// internal/dom/dom.go
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/cssom"
)

// nonVisualTags never host rendered boxes; the snapshot reader and the
// layer builder both skip them.
var nonVisualTags = map[string]bool{
	"head": true, "meta": true, "link": true, "title": true,
	"script": true, "style": true, "template": true, "noscript": true,
	"base": true,
}

// Document is the parsed element tree of one captured page.
type Document struct {
	root       *Element
	elements   []*Element
	styleTexts []string
}

// Parse builds a Document from serialized markup. The markup is expected to
// come from a rendered page (outerHTML), so the parser sees
// browser-normalized structure.
func Parse(markup string) (*Document, error) {
	node, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing document markup: %w", err)
	}
	var rootNode *html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			rootNode = c
			break
		}
	}
	if rootNode == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	d := &Document{}
	d.root = d.build(rootNode, nil, false)
	return d, nil
}

// build walks the html node tree pre-order, mirroring the order a capture
// walks the live DOM, so boxes pair by index.
func (d *Document) build(n *html.Node, parent *Element, inSVG bool) *Element {
	el := &Element{
		node:     n,
		parent:   parent,
		inSVG:    inSVG,
		preIndex: len(d.elements),
		Visible:  true,
	}
	d.elements = append(d.elements, el)
	el.inline = cssom.ParseDeclarationList(el.Attr("style"))

	if el.Tag() == "style" {
		if text := textContent(n); strings.TrimSpace(text) != "" {
			d.styleTexts = append(d.styleTexts, text)
		}
	}

	childInSVG := inSVG || el.Tag() == "svg"
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el.children = append(el.children, d.build(c, el, childInSVG))
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				el.textRuns = append(el.textRuns, &TextRun{
					Text:   collapseWhitespace(c.Data),
					parent: el,
				})
			}
		}
	}
	return el
}

// Root returns the document's root element (normally <html>).
func (d *Document) Root() *Element { return d.root }

// Elements returns every element in pre-order.
func (d *Document) Elements() []*Element { return d.elements }

// StyleTexts returns the contents of the document's <style> blocks in
// document order.
func (d *Document) StyleTexts() []string { return d.styleTexts }

// Body returns the <body> element if present.
func (d *Document) Body() *Element {
	for _, el := range d.elements {
		if el.Tag() == "body" {
			return el
		}
	}
	return nil
}

// PairBoxes attaches capture boxes to elements by pre-order index. A tag
// mismatch or a short box list degrades that element to an empty box; the
// count of degraded elements is returned so the caller can log it.
func (d *Document) PairBoxes(boxes []schemas.ElementBox) int {
	mismatches := 0
	for i, el := range d.elements {
		if i >= len(boxes) {
			mismatches++
			continue
		}
		box := boxes[i]
		if box.Tag != "" && !strings.EqualFold(box.Tag, el.Tag()) {
			mismatches++
			continue
		}
		el.Box = box.Rect
		el.Visible = box.Visible
	}
	return mismatches
}

// PairTextBoxes attaches text-run boxes to the runs of their enclosing
// elements, matching by collapsed text within the element. Returns the
// number of boxes that found no run.
func (d *Document) PairTextBoxes(textBoxes []schemas.TextBox) int {
	unmatched := 0
	for _, tb := range textBoxes {
		if tb.ElementIndex < 0 || tb.ElementIndex >= len(d.elements) {
			unmatched++
			continue
		}
		el := d.elements[tb.ElementIndex]
		want := collapseWhitespace(tb.Text)
		matched := false
		for _, run := range el.textRuns {
			if run.boxed {
				continue
			}
			if run.Text == want || want == "" {
				run.Box = tb.Rect
				run.boxed = true
				matched = true
				break
			}
		}
		if !matched {
			// Fall back to the first unboxed run; capture-side whitespace
			// handling can disagree with ours.
			for _, run := range el.textRuns {
				if !run.boxed {
					run.Box = tb.Rect
					run.boxed = true
					matched = true
					break
				}
			}
		}
		if !matched {
			unmatched++
		}
	}
	return unmatched
}

// TextRun is one rendered run of character data inside an element.
type TextRun struct {
	Text  string
	Box   schemas.Rect
	boxed bool

	parent *Element
}

// Parent returns the enclosing element.
func (t *TextRun) Parent() *Element { return t.parent }

// Element is one node of the document tree. Box and Visible come from the
// capture; inline style mutations are versioned so style resolution can
// invalidate per-element caches.
type Element struct {
	node     *html.Node
	parent   *Element
	children []*Element
	textRuns []*TextRun
	inSVG    bool
	preIndex int

	Box     schemas.Rect
	Visible bool

	inline  []cssom.Declaration
	version uint64
}

// Tag returns the lower-cased tag name.
func (e *Element) Tag() string { return strings.ToLower(e.node.Data) }

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	for _, a := range e.node.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	for _, a := range e.node.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

// ID returns the element's id attribute.
func (e *Element) ID() string { return e.Attr("id") }

// Classes returns the class list.
func (e *Element) Classes() []string { return strings.Fields(e.Attr("class")) }

// Parent returns the parent element, nil at the root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child elements in document order.
func (e *Element) Children() []*Element { return e.children }

// TextRuns returns the element's direct text runs in document order.
func (e *Element) TextRuns() []*TextRun { return e.textRuns }

// Index returns the element's pre-order position in the document.
func (e *Element) Index() int { return e.preIndex }

// Version increments on every inline style mutation.
func (e *Element) Version() uint64 { return e.version }

// IsSVG reports whether this element is an <svg> host.
func (e *Element) IsSVG() bool { return e.Tag() == "svg" }

// InSVG reports whether this element sits inside an <svg> subtree.
func (e *Element) InSVG() bool { return e.inSVG }

// IsRenderingHost reports whether the element hosts ordinary rendered
// content. SVG hosts and their subtrees are painted as a unit, and
// non-visual tags never paint, so neither yields style snapshots.
func (e *Element) IsRenderingHost() bool {
	return !e.inSVG && !e.IsSVG() && !nonVisualTags[e.Tag()]
}

// PrevSibling returns the previous element sibling, nil when first.
func (e *Element) PrevSibling() *Element {
	if e.parent == nil {
		return nil
	}
	var prev *Element
	for _, c := range e.parent.children {
		if c == e {
			return prev
		}
		prev = c
	}
	return nil
}

// ChildPosition returns the element's position among its parent's element
// children (0-based) and the sibling count.
func (e *Element) ChildPosition() (int, int) {
	if e.parent == nil {
		return 0, 1
	}
	for i, c := range e.parent.children {
		if c == e {
			return i, len(e.parent.children)
		}
	}
	return 0, len(e.parent.children)
}

// InlineDeclarations returns the element's current inline declarations in
// source order.
func (e *Element) InlineDeclarations() []cssom.Declaration { return e.inline }

// InlineProperty returns the current inline value of a property. The last
// declaration wins, matching style-attribute semantics.
func (e *Element) InlineProperty(name string) (value string, important bool, ok bool) {
	prop := cssom.Property(strings.ToLower(name))
	for i := len(e.inline) - 1; i >= 0; i-- {
		if e.inline[i].Property == prop {
			return string(e.inline[i].Value), e.inline[i].Important, true
		}
	}
	return "", false, false
}

// SetInlineProperty writes an inline declaration, replacing any existing
// declarations of the same property.
func (e *Element) SetInlineProperty(name, value string, important bool) {
	prop := cssom.Property(strings.ToLower(name))
	decl := cssom.Declaration{Property: prop, Value: cssom.Value(value), Important: important}
	replaced := false
	kept := e.inline[:0]
	for _, d := range e.inline {
		if d.Property == prop {
			if !replaced {
				kept = append(kept, decl)
				replaced = true
			}
			continue
		}
		kept = append(kept, d)
	}
	if !replaced {
		kept = append(kept, decl)
	}
	e.inline = kept
	e.version++
}

// RemoveInlineProperty deletes all inline declarations of a property.
func (e *Element) RemoveInlineProperty(name string) {
	prop := cssom.Property(strings.ToLower(name))
	kept := e.inline[:0]
	for _, d := range e.inline {
		if d.Property != prop {
			kept = append(kept, d)
		}
	}
	e.inline = kept
	e.version++
}

// PushInlineProperty writes an inline declaration and returns a closure
// restoring the prior state. Callers must invoke the restore under defer so
// the document is never left mutated on any exit path.
func (e *Element) PushInlineProperty(name, value string, important bool) (restore func()) {
	prev, prevImportant, existed := e.InlineProperty(name)
	e.SetInlineProperty(name, value, important)
	return func() {
		if existed {
			e.SetInlineProperty(name, prev, prevImportant)
		} else {
			e.RemoveInlineProperty(name)
		}
	}
}

// OuterHTML serializes the element's subtree.
func (e *Element) OuterHTML() (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, e.node); err != nil {
		return "", fmt.Errorf("rendering element markup: %w", err)
	}
	return sb.String(), nil
}

// Describe returns a short human label ("div#header", "div.nav") for logs
// and layer names.
func (e *Element) Describe() string {
	var sb strings.Builder
	sb.WriteString(e.Tag())
	if id := e.ID(); id != "" {
		sb.WriteByte('#')
		sb.WriteString(id)
	} else if classes := e.Classes(); len(classes) > 0 {
		sb.WriteByte('.')
		sb.WriteString(classes[0])
	}
	return sb.String()
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
