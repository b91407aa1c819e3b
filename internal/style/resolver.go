// internal/style/resolver.go
package style

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xkilldash9x/layerlift/internal/cssom"
	"github.com/xkilldash9x/layerlift/internal/dom"
)

const (
	// BaseFontSize is the root font size when the capture does not supply one.
	BaseFontSize = 16.0
	// DefaultLineHeight is the multiplier behind 'line-height: normal'.
	DefaultLineHeight = 1.2
)

// DefaultUserAgentCSS mirrors the slice of browser defaults that affects
// geometry inference: display modes, default margins, and form-control
// borders. Anything subtler is left to the author sheets.
const DefaultUserAgentCSS = `
html, body, div, p, h1, h2, h3, h4, h5, h6, ul, ol, form, header, footer,
section, article, nav, main, aside, figure, figcaption, blockquote, pre,
hr, fieldset, address, dl, dd, dt {
    display: block;
    margin: 0;
    padding: 0;
}

body { margin: 8px; }

h1 { font-size: 2em; margin: 0.67em 0; font-weight: 700; }
h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: 700; }
h3 { font-size: 1.17em; margin: 1em 0; font-weight: 700; }
p, blockquote { margin: 1em 0; }
b, strong { font-weight: 700; }

ul, ol { margin: 1em 0; padding-left: 40px; }
li { display: list-item; }

a { color: rgb(0, 0, 238); text-decoration: underline; cursor: pointer; }

input, button, textarea, select {
    display: inline-block;
    border-width: 1px;
    border-style: solid;
    border-color: rgb(118, 118, 118);
    padding: 1px 2px;
    font-size: inherit;
}

button, input[type="submit"], input[type="button"], input[type="reset"] {
    padding: 1px 6px;
    text-align: center;
}

img, svg, video, canvas, iframe, embed, object { display: inline-block; }
`

type styleOrigin int

const (
	originUserAgent styleOrigin = iota
	originAuthor
	originInline
)

type declarationContext struct {
	declaration cssom.Declaration
	specificity cssom.Specificity
	origin      styleOrigin
	order       int
}

func cascadePriority(d declarationContext) int {
	important := d.declaration.Important
	switch d.origin {
	case originUserAgent:
		if important {
			return 5
		}
		return 1
	case originAuthor:
		if important {
			return 4
		}
		return 2
	case originInline:
		if important {
			return 4
		}
		return 3
	}
	return 0
}

// Options configure a Resolver.
type Options struct {
	// RootFontSize is the document's root font size in pixels. Zero selects
	// BaseFontSize.
	RootFontSize float64
	// ViewportWidth and ViewportHeight anchor vw/vh units.
	ViewportWidth  float64
	ViewportHeight float64
}

// Resolver computes resolved style values for document elements: the cascade
// over user-agent and author sheets plus inline declarations, shorthand
// expansion, inheritance, and canonical value forms. Results are memoized per
// element and keyed by the element's inline-style version, so a scoped inline
// mutation (hide, read, restore) re-resolves the mutated element while the
// rest of the document stays cached.
type Resolver struct {
	userAgent []cssom.StyleSheet
	author    []cssom.StyleSheet
	opts      Options
	cache     map[resolveKey]map[cssom.Property]cssom.Value
	notArgs   map[string]notEntry
}

type resolveKey struct {
	el      *dom.Element
	version uint64
	state   string
}

type notEntry struct {
	selector cssom.SimpleSelector
	ok       bool
}

var (
	uaOnce   sync.Once
	uaSheets []cssom.StyleSheet
)

func userAgentSheets() []cssom.StyleSheet {
	uaOnce.Do(func() {
		uaSheets = []cssom.StyleSheet{cssom.NewParser(DefaultUserAgentCSS).Parse()}
	})
	return uaSheets
}

// NewResolver builds a resolver over the given author sheets, in cascade
// order (earlier sheets lose ties to later ones).
func NewResolver(author []cssom.StyleSheet, opts Options) *Resolver {
	if opts.RootFontSize <= 0 {
		opts.RootFontSize = BaseFontSize
	}
	return &Resolver{
		userAgent: userAgentSheets(),
		author:    author,
		opts:      opts,
		cache:     make(map[resolveKey]map[cssom.Property]cssom.Value),
		notArgs:   make(map[string]notEntry),
	}
}

// Resolve returns the resolved value of prop for el. Composite border
// properties ("border", "border-top", "border-color", "border-radius") are
// composed from their longhands the way rendering engines serialize them.
// Properties no declaration reached fall back to their initial value; ""
// means the property has no resolvable value.
func (r *Resolver) Resolve(el *dom.Element, prop string) string {
	return r.ResolveState(el, "", prop)
}

// ResolveState is Resolve under an enabled pseudo-state: rules whose subject
// requires the named pseudo-class ("hover" or ":hover") join the cascade.
func (r *Resolver) ResolveState(el *dom.Element, state, prop string) string {
	if el == nil {
		return ""
	}
	state = strings.TrimPrefix(state, ":")
	switch prop {
	case "border":
		return r.uniformBorder(el, state)
	case "border-top", "border-right", "border-bottom", "border-left":
		return r.composeBorderSide(el, state, strings.TrimPrefix(prop, "border-"))
	case "border-color":
		return r.composeQuad(el, state, [4]string{
			"border-top-color", "border-right-color", "border-bottom-color", "border-left-color",
		})
	case "border-radius":
		return r.composeQuad(el, state, [4]string{
			"border-top-left-radius", "border-top-right-radius",
			"border-bottom-right-radius", "border-bottom-left-radius",
		})
	}
	return r.lookup(el, state, prop)
}

// BorderSide returns one side's border in "<width> <style> <color>" form,
// e.g. "2px solid rgb(255, 0, 0)".
func (r *Resolver) BorderSide(el *dom.Element, side string) string {
	return r.ResolveState(el, "", "border-"+side)
}

func (r *Resolver) lookup(el *dom.Element, state, prop string) string {
	styles := r.computed(el, state)
	if v, ok := styles[cssom.Property(prop)]; ok {
		return string(v)
	}
	return r.initialValue(el, state, prop)
}

func (r *Resolver) composeBorderSide(el *dom.Element, state, side string) string {
	width := r.lookup(el, state, "border-"+side+"-width")
	borderStyle := r.lookup(el, state, "border-"+side+"-style")
	color := r.lookup(el, state, "border-"+side+"-color")
	return width + " " + borderStyle + " " + color
}

// uniformBorder returns the shared border string when all four sides resolve
// identically, "" otherwise.
func (r *Resolver) uniformBorder(el *dom.Element, state string) string {
	top := r.composeBorderSide(el, state, "top")
	for _, side := range [...]string{"right", "bottom", "left"} {
		if r.composeBorderSide(el, state, side) != top {
			return ""
		}
	}
	return top
}

func (r *Resolver) composeQuad(el *dom.Element, state string, props [4]string) string {
	var values [4]string
	uniform := true
	for i, prop := range props {
		values[i] = r.lookup(el, state, prop)
		if values[i] != values[0] {
			uniform = false
		}
	}
	if uniform {
		return values[0]
	}
	return strings.Join(values[:], " ")
}

func (r *Resolver) computed(el *dom.Element, state string) map[cssom.Property]cssom.Value {
	key := resolveKey{el: el, version: el.Version(), state: state}
	if styles, ok := r.cache[key]; ok {
		return styles
	}
	styles := r.cascadedStyles(el, state)
	r.normalize(el, state, styles)
	r.cache[key] = styles
	return styles
}

// cascadedStyles collects every declaration whose selector matches el, sorts
// by origin/importance, specificity, then source order, and applies them in
// ascending order so the strongest declaration lands last.
func (r *Resolver) cascadedStyles(el *dom.Element, state string) map[cssom.Property]cssom.Value {
	var declarations []declarationContext
	order := 0

	processSheets := func(sheets []cssom.StyleSheet, origin styleOrigin) {
		for _, sheet := range sheets {
			for _, rule := range sheet.Rules {
				for _, group := range rule.SelectorGroups {
					spec, ok := r.matches(el, group, state)
					if !ok {
						continue
					}
					for _, decl := range rule.Declarations {
						declarations = append(declarations, declarationContext{
							declaration: decl,
							specificity: spec,
							origin:      origin,
							order:       order,
						})
						order++
					}
					break
				}
			}
		}
	}

	processSheets(r.userAgent, originUserAgent)
	processSheets(r.author, originAuthor)

	for _, decl := range el.InlineDeclarations() {
		declarations = append(declarations, declarationContext{
			declaration: decl,
			specificity: cssom.Specificity{A: 1},
			origin:      originInline,
			order:       order,
		})
		order++
	}

	sort.Slice(declarations, func(i, j int) bool {
		d1, d2 := declarations[i], declarations[j]
		p1, p2 := cascadePriority(d1), cascadePriority(d2)
		if p1 != p2 {
			return p1 < p2
		}
		if d1.specificity != d2.specificity {
			return d1.specificity.Less(d2.specificity)
		}
		return d1.order < d2.order
	})

	styles := make(map[cssom.Property]cssom.Value)
	for _, dc := range declarations {
		for _, d := range expandDeclaration(dc.declaration) {
			styles[d.Property] = d.Value
		}
	}
	return styles
}

// inheritedProperties are filled from the parent when no declaration reaches
// the element.
var inheritedProperties = map[cssom.Property]bool{
	"color":          true,
	"cursor":         true,
	"font-family":    true,
	"font-size":      true,
	"font-style":     true,
	"font-weight":    true,
	"letter-spacing": true,
	"line-height":    true,
	"text-align":     true,
	"visibility":     true,
	"white-space":    true,
}

var borderSides = [...]string{"top", "right", "bottom", "left"}

var colorProperties = [...]cssom.Property{
	"background-color",
	"border-top-color", "border-right-color", "border-bottom-color", "border-left-color",
}

// normalize turns cascaded values into resolved ones: font-size to pixels,
// inheritance, currentcolor substitution, canonical color serialization, and
// used border widths.
func (r *Resolver) normalize(el *dom.Element, state string, styles map[cssom.Property]cssom.Value) {
	parent := el.Parent()
	var parentStyles map[cssom.Property]cssom.Value
	if parent != nil {
		parentStyles = r.computed(parent, state)
	}
	vw, vh := r.opts.ViewportWidth, r.opts.ViewportHeight

	// Font size resolves first; em units elsewhere hang off it.
	parentFont := r.opts.RootFontSize
	if parentStyles != nil {
		if px := ParseAbsoluteLength(string(parentStyles["font-size"])); px > 0 {
			parentFont = px
		}
	}
	if raw, ok := styles["font-size"]; ok {
		if raw == "inherit" {
			styles["font-size"] = cssom.Value(FormatPx(parentFont))
		} else if px := ParseLengthWithUnits(string(raw), parentFont, r.opts.RootFontSize, parentFont, vw, vh); px > 0 {
			styles["font-size"] = cssom.Value(FormatPx(px))
		}
	}

	for prop, val := range styles {
		if val != "inherit" {
			continue
		}
		if parentStyles != nil {
			if pv, ok := parentStyles[prop]; ok {
				styles[prop] = pv
				continue
			}
		}
		delete(styles, prop)
	}
	for prop := range inheritedProperties {
		if _, ok := styles[prop]; ok {
			continue
		}
		if pv, ok := parentStyles[prop]; ok {
			styles[prop] = pv
		}
	}
	if parent == nil {
		if _, ok := styles["font-size"]; !ok {
			styles["font-size"] = cssom.Value(FormatPx(r.opts.RootFontSize))
		}
	}

	if raw, ok := styles["color"]; ok {
		lower := strings.ToLower(strings.TrimSpace(string(raw)))
		if lower == "currentcolor" {
			// The color property treats currentcolor as inherit.
			if pv, ok := parentStyles["color"]; ok {
				styles["color"] = pv
			} else {
				delete(styles, "color")
			}
		} else if c, valid := ParseColor(lower); valid {
			styles["color"] = cssom.Value(c.CSS())
		}
	}
	textColor := "rgb(0, 0, 0)"
	if v, ok := styles["color"]; ok {
		textColor = string(v)
	}

	for _, prop := range colorProperties {
		raw, ok := styles[prop]
		if !ok {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(string(raw)))
		if lower == "currentcolor" {
			styles[prop] = cssom.Value(textColor)
			continue
		}
		if c, valid := ParseColor(lower); valid {
			styles[prop] = cssom.Value(c.CSS())
		}
	}

	ownFont := ParseAbsoluteLength(string(styles["font-size"]))
	if ownFont <= 0 {
		ownFont = r.opts.RootFontSize
	}

	// A side whose style is none or hidden has a used width of zero; visible
	// sides get keyword and relative widths converted to pixels.
	for _, side := range borderSides {
		widthProp := cssom.Property("border-" + side + "-width")
		borderStyle := "none"
		if v, ok := styles[cssom.Property("border-"+side+"-style")]; ok {
			borderStyle = strings.ToLower(string(v))
		}
		if borderStyle == "none" || borderStyle == "hidden" {
			if _, ok := styles[widthProp]; ok {
				styles[widthProp] = "0px"
			}
			continue
		}
		raw, ok := styles[widthProp]
		if !ok {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(string(raw)))
		switch lower {
		case "thin":
			styles[widthProp] = "1px"
		case "medium":
			styles[widthProp] = "3px"
		case "thick":
			styles[widthProp] = "5px"
		default:
			if px := ParseLengthWithUnits(lower, ownFont, r.opts.RootFontSize, 0, vw, vh); px > 0 || lower == "0" || lower == "0px" {
				styles[widthProp] = cssom.Value(FormatPx(px))
			}
		}
	}

	// Sizing lengths in relative units become pixels; auto and percentages
	// stay as written, the fixed-size probe keys off the px suffix.
	for _, prop := range [...]cssom.Property{"width", "height", "min-width", "min-height", "max-width", "max-height"} {
		raw, ok := styles[prop]
		if !ok {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(string(raw)))
		if lower == "auto" || lower == "none" || strings.HasSuffix(lower, "%") || strings.HasSuffix(lower, "px") {
			continue
		}
		if px := ParseLengthWithUnits(lower, ownFont, r.opts.RootFontSize, 0, vw, vh); px > 0 {
			styles[prop] = cssom.Value(FormatPx(px))
		}
	}
}

// initialValue supplies the resolved value of a property no declaration
// reached, matching what a rendering engine reports for an unstyled element.
func (r *Resolver) initialValue(el *dom.Element, state, prop string) string {
	switch prop {
	case "display":
		return defaultDisplay(el)
	case "color":
		return "rgb(0, 0, 0)"
	case "background-color":
		return "rgba(0, 0, 0, 0)"
	case "background-image", "box-shadow", "float", "transform", "text-decoration":
		return "none"
	case "opacity":
		return "1"
	case "position":
		return "static"
	case "visibility":
		return "visible"
	case "vertical-align":
		return "baseline"
	case "text-align":
		return "start"
	case "width", "height":
		return "auto"
	case "flex-direction":
		return "row"
	case "justify-content", "align-items", "line-height", "white-space":
		return "normal"
	case "overflow", "overflow-x", "overflow-y":
		return "visible"
	case "font-weight":
		return "400"
	}
	switch {
	case strings.HasPrefix(prop, "margin-"), strings.HasPrefix(prop, "padding-"):
		return "0px"
	case strings.HasPrefix(prop, "border-") && strings.HasSuffix(prop, "-width"):
		side := strings.TrimSuffix(strings.TrimPrefix(prop, "border-"), "-width")
		borderStyle := r.lookup(el, state, "border-"+side+"-style")
		if borderStyle == "none" || borderStyle == "hidden" {
			return "0px"
		}
		return "3px"
	case strings.HasPrefix(prop, "border-") && strings.HasSuffix(prop, "-style"):
		return "none"
	case strings.HasPrefix(prop, "border-") && strings.HasSuffix(prop, "-color"):
		return r.lookup(el, state, "color")
	case strings.HasPrefix(prop, "border-") && strings.HasSuffix(prop, "-radius"):
		return "0px"
	}
	return ""
}

// defaultDisplay is the fallback for tags the user-agent sheet does not
// cover.
func defaultDisplay(el *dom.Element) string {
	switch el.Tag() {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "form", "header", "footer", "section", "article", "nav",
		"main", "aside", "figure", "figcaption", "blockquote", "pre", "hr",
		"fieldset", "address", "dl", "dd", "dt":
		return "block"
	case "li":
		return "list-item"
	case "table":
		return "table"
	case "tr":
		return "table-row"
	case "td", "th":
		return "table-cell"
	case "input", "button", "textarea", "select", "img", "svg", "video",
		"canvas", "iframe", "embed", "object":
		return "inline-block"
	default:
		return "inline"
	}
}

// -- selector matching --

// matches reports whether any selector in the group matches el under the
// given pseudo-state, returning the highest specificity among the matches.
func (r *Resolver) matches(el *dom.Element, group cssom.SelectorGroup, state string) (cssom.Specificity, bool) {
	var best cssom.Specificity
	matched := false
	for _, complexSelector := range group {
		if len(complexSelector.Selectors) == 0 {
			continue
		}
		if r.recursiveMatch(el, complexSelector, len(complexSelector.Selectors)-1, state) {
			spec := complexSelector.Specificity()
			if !matched || best.Less(spec) {
				best = spec
			}
			matched = true
		}
	}
	return best, matched
}

func (r *Resolver) recursiveMatch(el *dom.Element, selector cssom.ComplexSelector, index int, state string) bool {
	if el == nil || index < 0 {
		return false
	}
	current := selector.Selectors[index]
	if !r.matchesSimple(el, current.SimpleSelector, state) {
		return false
	}
	if index == 0 {
		return true
	}
	switch current.Combinator {
	case cssom.CombinatorDescendant:
		for parent := el.Parent(); parent != nil; parent = parent.Parent() {
			if r.recursiveMatch(parent, selector, index-1, state) {
				return true
			}
		}
		return false
	case cssom.CombinatorChild:
		return r.recursiveMatch(el.Parent(), selector, index-1, state)
	case cssom.CombinatorAdjacentSibling:
		return r.recursiveMatch(el.PrevSibling(), selector, index-1, state)
	case cssom.CombinatorGeneralSibling:
		for sibling := el.PrevSibling(); sibling != nil; sibling = sibling.PrevSibling() {
			if r.recursiveMatch(sibling, selector, index-1, state) {
				return true
			}
		}
		return false
	case cssom.CombinatorNone:
		return true
	}
	return false
}

func (r *Resolver) matchesSimple(el *dom.Element, selector cssom.SimpleSelector, state string) bool {
	if selector.TagName != "" && selector.TagName != "*" && el.Tag() != selector.TagName {
		return false
	}
	if selector.ID != "" && el.ID() != selector.ID {
		return false
	}
	if len(selector.Classes) > 0 {
		classes := el.Classes()
		for _, required := range selector.Classes {
			found := false
			for _, c := range classes {
				if c == required {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, attr := range selector.Attributes {
		if !matchesAttribute(el, attr) {
			return false
		}
	}
	for _, pc := range selector.PseudoClasses {
		if !r.matchesPseudoClass(el, pc, state) {
			return false
		}
	}
	return true
}

func matchesAttribute(el *dom.Element, sel cssom.AttributeSelector) bool {
	found := el.HasAttr(sel.Name)
	value := el.Attr(sel.Name)
	switch sel.Operator {
	case "":
		return found
	case "=":
		return found && value == sel.Value
	case "~=":
		if !found {
			return false
		}
		for _, word := range strings.Fields(value) {
			if word == sel.Value {
				return true
			}
		}
		return false
	case "|=":
		return found && (value == sel.Value || strings.HasPrefix(value, sel.Value+"-"))
	case "^=":
		return found && sel.Value != "" && strings.HasPrefix(value, sel.Value)
	case "$=":
		return found && sel.Value != "" && strings.HasSuffix(value, sel.Value)
	case "*=":
		return found && sel.Value != "" && strings.Contains(value, sel.Value)
	}
	return false
}

// matchesPseudoClass evaluates structural pseudo-classes against the static
// tree. Dynamic states match only when the caller enabled that state; a
// capture has no live interaction to observe.
func (r *Resolver) matchesPseudoClass(el *dom.Element, pc cssom.PseudoClass, state string) bool {
	switch pc.Name {
	case "hover", "focus", "active", "visited", "link", "focus-within",
		"focus-visible", "target", "checked", "disabled", "enabled":
		return pc.Name == state
	case "root":
		return el.Parent() == nil
	case "empty":
		return len(el.Children()) == 0 && len(el.TextRuns()) == 0
	case "first-child":
		pos, _ := el.ChildPosition()
		return pos == 0
	case "last-child":
		pos, count := el.ChildPosition()
		return pos == count-1
	case "only-child":
		_, count := el.ChildPosition()
		return count == 1
	case "nth-child":
		a, b, ok := parseNth(pc.Argument)
		if !ok {
			return false
		}
		pos, _ := el.ChildPosition()
		return matchesNth(a, b, pos+1)
	case "nth-of-type":
		a, b, ok := parseNth(pc.Argument)
		if !ok {
			return false
		}
		pos, _ := typePosition(el)
		return matchesNth(a, b, pos+1)
	case "first-of-type":
		pos, _ := typePosition(el)
		return pos == 0
	case "last-of-type":
		pos, count := typePosition(el)
		return pos == count-1
	case "not":
		inner, ok := r.notSelector(pc.Argument)
		if !ok {
			return false
		}
		return !r.matchesSimple(el, inner, state)
	}
	return false
}

func (r *Resolver) notSelector(arg string) (cssom.SimpleSelector, bool) {
	if entry, ok := r.notArgs[arg]; ok {
		return entry.selector, entry.ok
	}
	selector, ok := cssom.ParseSimpleSelector(arg)
	r.notArgs[arg] = notEntry{selector: selector, ok: ok}
	return selector, ok
}

// typePosition returns the element's position and count among same-tag
// siblings.
func typePosition(el *dom.Element) (int, int) {
	parent := el.Parent()
	if parent == nil {
		return 0, 1
	}
	pos, count := 0, 0
	for _, sibling := range parent.Children() {
		if sibling.Tag() != el.Tag() {
			continue
		}
		if sibling == el {
			pos = count
		}
		count++
	}
	return pos, count
}

// parseNth parses the An+B micro-syntax ("2n+1", "odd", "3", "-n+2").
func parseNth(arg string) (a, b int, ok bool) {
	arg = strings.ToLower(strings.ReplaceAll(arg, " ", ""))
	switch arg {
	case "":
		return 0, 0, false
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	}
	idx := strings.IndexByte(arg, 'n')
	if idx < 0 {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return 0, 0, false
		}
		return 0, v, true
	}
	switch aPart := arg[:idx]; aPart {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(aPart)
		if err != nil {
			return 0, 0, false
		}
		a = v
	}
	if bPart := arg[idx+1:]; bPart != "" {
		v, err := strconv.Atoi(bPart)
		if err != nil {
			return 0, 0, false
		}
		b = v
	}
	return a, b, true
}

func matchesNth(a, b, index int) bool {
	if a == 0 {
		return index == b
	}
	diff := index - b
	return diff%a == 0 && diff/a >= 0
}

// -- shorthand expansion --

// expandDeclaration rewrites shorthands into their longhands at cascade-apply
// time, so a later longhand still overrides an earlier shorthand and a later
// shorthand resets earlier longhands.
func expandDeclaration(d cssom.Declaration) []cssom.Declaration {
	prop := string(d.Property)
	switch prop {
	case "margin":
		return expandBox(d, "margin-top", "margin-right", "margin-bottom", "margin-left")
	case "padding":
		return expandBox(d, "padding-top", "padding-right", "padding-bottom", "padding-left")
	case "border-width":
		return expandBox(d, "border-top-width", "border-right-width", "border-bottom-width", "border-left-width")
	case "border-style":
		return expandBox(d, "border-top-style", "border-right-style", "border-bottom-style", "border-left-style")
	case "border-color":
		return expandBox(d, "border-top-color", "border-right-color", "border-bottom-color", "border-left-color")
	case "border":
		return expandBorder(d, "top", "right", "bottom", "left")
	case "border-top", "border-right", "border-bottom", "border-left":
		return expandBorder(d, strings.TrimPrefix(prop, "border-"))
	case "border-radius":
		return expandRadius(d)
	case "background":
		return expandBackground(d)
	case "flex":
		return expandFlex(d)
	}
	return []cssom.Declaration{d}
}

func makeDeclaration(prop, value string, important bool) cssom.Declaration {
	return cssom.Declaration{Property: cssom.Property(prop), Value: cssom.Value(value), Important: important}
}

// expandBox applies the 1-to-4 value mapping shared by margin, padding, the
// border-width/style/color shorthands, and border-radius corners.
func expandBox(d cssom.Declaration, top, right, bottom, left string) []cssom.Declaration {
	parts := fieldsRespectingParens(string(d.Value))
	var v1, v2, v3, v4 string
	switch len(parts) {
	case 1:
		v1, v2, v3, v4 = parts[0], parts[0], parts[0], parts[0]
	case 2:
		v1, v2, v3, v4 = parts[0], parts[1], parts[0], parts[1]
	case 3:
		v1, v2, v3, v4 = parts[0], parts[1], parts[2], parts[1]
	case 4:
		v1, v2, v3, v4 = parts[0], parts[1], parts[2], parts[3]
	default:
		return nil
	}
	return []cssom.Declaration{
		makeDeclaration(top, v1, d.Important),
		makeDeclaration(right, v2, d.Important),
		makeDeclaration(bottom, v3, d.Important),
		makeDeclaration(left, v4, d.Important),
	}
}

var borderStyleKeywords = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

func isBorderWidthToken(token string) bool {
	if token == "thin" || token == "medium" || token == "thick" {
		return true
	}
	return len(token) > 0 && (token[0] >= '0' && token[0] <= '9' || token[0] == '.')
}

// expandBorder splits a border shorthand into width/style/color longhands
// for the given sides. Unspecified parts reset to their initial values, as
// shorthands do.
func expandBorder(d cssom.Declaration, sides ...string) []cssom.Declaration {
	width, borderStyle, color := "medium", "none", ""
	for _, token := range fieldsRespectingParens(string(d.Value)) {
		lower := strings.ToLower(token)
		switch {
		case borderStyleKeywords[lower]:
			borderStyle = lower
		case isBorderWidthToken(lower):
			width = lower
		default:
			color = token
		}
	}
	if color == "" {
		color = "currentcolor"
	}
	out := make([]cssom.Declaration, 0, len(sides)*3)
	for _, side := range sides {
		out = append(out,
			makeDeclaration("border-"+side+"-width", width, d.Important),
			makeDeclaration("border-"+side+"-style", borderStyle, d.Important),
			makeDeclaration("border-"+side+"-color", color, d.Important),
		)
	}
	return out
}

func expandRadius(d cssom.Declaration) []cssom.Declaration {
	value := string(d.Value)
	// Elliptical radii keep only the horizontal component.
	if idx := strings.IndexByte(value, '/'); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	corners := cssom.Declaration{Property: d.Property, Value: cssom.Value(value), Important: d.Important}
	return expandBox(corners,
		"border-top-left-radius", "border-top-right-radius",
		"border-bottom-right-radius", "border-bottom-left-radius")
}

// expandBackground extracts the color and image from the background
// shorthand; the remaining background longhands play no part in geometry
// inference. Unspecified parts reset, as shorthands do.
func expandBackground(d cssom.Declaration) []cssom.Declaration {
	colorVal, imageVal := "transparent", "none"
	for _, token := range fieldsRespectingParens(string(d.Value)) {
		lower := strings.ToLower(token)
		if strings.HasPrefix(lower, "url(") || strings.Contains(lower, "gradient(") {
			if imageVal == "none" {
				imageVal = token
			}
			continue
		}
		if _, ok := ParseColor(lower); ok {
			colorVal = token
		}
	}
	return []cssom.Declaration{
		makeDeclaration("background-color", colorVal, d.Important),
		makeDeclaration("background-image", imageVal, d.Important),
	}
}

func expandFlex(d cssom.Declaration) []cssom.Declaration {
	grow, shrink, basis := "0", "1", "auto"
	parts := fieldsRespectingParens(string(d.Value))
	isLength := func(s string) bool {
		return strings.ContainsAny(s, "px%emremvwvhvminvmax") || s == "0"
	}

	switch {
	case len(parts) == 1:
		switch parts[0] {
		case "none":
			grow, shrink, basis = "0", "0", "auto"
		case "auto":
			grow, shrink, basis = "1", "1", "auto"
		default:
			if _, err := parseFloat(parts[0]); err == nil && !isLength(parts[0]) {
				grow = parts[0]
			} else {
				grow, shrink, basis = "1", "1", parts[0]
			}
		}
	case len(parts) == 2:
		grow = parts[0]
		if _, err := parseFloat(parts[1]); err == nil && !isLength(parts[1]) {
			shrink = parts[1]
		} else {
			basis = parts[1]
		}
	case len(parts) >= 3:
		grow, shrink, basis = parts[0], parts[1], parts[2]
	default:
		return nil
	}

	return []cssom.Declaration{
		makeDeclaration("flex-grow", grow, d.Important),
		makeDeclaration("flex-shrink", shrink, d.Important),
		makeDeclaration("flex-basis", basis, d.Important),
	}
}
