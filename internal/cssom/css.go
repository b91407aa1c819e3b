// internal/cssom/css.go
package cssom

import (
	"fmt"
	"strings"
)

// Property is a lower-cased CSS property name (e.g. "display").
type Property string

// Value is a raw CSS value string (e.g. "none").
type Value string

// Declaration is a single 'property: value' pair.
type Declaration struct {
	Property  Property
	Value     Value
	Important bool
}

// RuleSet is one '{...}' block together with the selectors that apply it.
type RuleSet struct {
	SelectorGroups []SelectorGroup
	Declarations   []Declaration
}

// StyleSheet is the parsed CSSOM of one stylesheet source.
type StyleSheet struct {
	Rules []RuleSet
}

// SelectorGroup is a comma-separated selector list ("h1, h2 .title").
type SelectorGroup []ComplexSelector

// ComplexSelector is a sequence of simple selectors joined by combinators
// ("div > p"). The last entry is the subject of the selector.
type ComplexSelector struct {
	Selectors []SimpleSelectorWithCombinator
}

// SimpleSelectorWithCombinator pairs a simple selector with the combinator
// that precedes it.
type SimpleSelectorWithCombinator struct {
	Combinator     Combinator
	SimpleSelector SimpleSelector
}

// SimpleSelector is one compound selector: tag, ID, classes, attributes,
// and pseudo-classes. Pseudo-classes are captured so the cascade can match
// rules under an enabled pseudo-state (":hover") and structural positions
// (":first-child").
type SimpleSelector struct {
	TagName       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []PseudoClass
}

// AttributeSelector is a '[name]' or '[name<op>value]' condition.
type AttributeSelector struct {
	Name     string
	Operator string // "=", "~=", "|=", "^=", "$=", "*=" or "" for presence
	Value    string
}

// PseudoClass is a ':name' or ':name(argument)' condition. Pseudo-elements
// ("::before") are not representable; rules using them are dropped during
// parsing because generated content has no element to attach to.
type PseudoClass struct {
	Name     string
	Argument string
}

// Combinator is the relationship between adjacent simple selectors.
type Combinator int

const (
	CombinatorNone Combinator = iota
	CombinatorDescendant
	CombinatorChild
	CombinatorAdjacentSibling
	CombinatorGeneralSibling
)

// Specificity orders selectors per the cascade: A counts IDs, B counts
// classes/attributes/pseudo-classes, C counts type selectors.
type Specificity struct {
	A, B, C int
}

// Less reports whether s is less specific than other.
func (s Specificity) Less(other Specificity) bool {
	if s.A != other.A {
		return s.A < other.A
	}
	if s.B != other.B {
		return s.B < other.B
	}
	return s.C < other.C
}

// Add combines two specificities component-wise.
func (s Specificity) Add(other Specificity) Specificity {
	return Specificity{A: s.A + other.A, B: s.B + other.B, C: s.C + other.C}
}

// Specificity of a complex selector is the sum over its simple selectors.
func (cs ComplexSelector) Specificity() Specificity {
	var total Specificity
	for _, s := range cs.Selectors {
		total = total.Add(s.SimpleSelector.Specificity())
	}
	return total
}

// Subject returns the right-most simple selector, the one the rule styles.
func (cs ComplexSelector) Subject() (SimpleSelector, bool) {
	if len(cs.Selectors) == 0 {
		return SimpleSelector{}, false
	}
	return cs.Selectors[len(cs.Selectors)-1].SimpleSelector, true
}

func (s SimpleSelector) Specificity() Specificity {
	var spec Specificity
	if s.ID != "" {
		spec.A = 1
	}
	spec.B = len(s.Classes) + len(s.Attributes) + len(s.PseudoClasses)
	if s.TagName != "" && s.TagName != "*" {
		spec.C = 1
	}
	return spec
}

// IsValid reports whether the selector has at least one component.
func (s SimpleSelector) IsValid() bool {
	return s.TagName != "" || s.ID != "" || len(s.Classes) > 0 ||
		len(s.Attributes) > 0 || len(s.PseudoClasses) > 0
}

// HasPseudoClass reports whether the selector carries the named pseudo-class.
func (s SimpleSelector) HasPseudoClass(name string) bool {
	for _, p := range s.PseudoClasses {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Parser holds the scanning state over one CSS source.
type Parser struct {
	input string
	pos   int
}

// NewParser wraps a CSS source string.
func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Parse scans the whole input and builds a StyleSheet. Parsing is lenient:
// unrecognized constructs are skipped, never fatal, because captures carry
// arbitrary author CSS.
func (p *Parser) Parse() StyleSheet {
	var rules []RuleSet
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		if p.currentChar() == '@' {
			p.skipAtRule()
			continue
		}

		groups, dropped := p.parseSelectorGroups()
		if len(groups) == 0 {
			// Nothing usable before the block; skip it wholesale.
			p.skipTo('{')
			if !p.eof() && p.currentChar() == '{' {
				p.consumeChar()
				p.skipBlock('{', '}')
			}
			continue
		}

		declarations, err := p.parseDeclarations()
		if err != nil {
			continue
		}
		// A group that consisted solely of pseudo-element selectors styles
		// nothing we can attach to.
		if dropped && groupEmpty(groups) {
			continue
		}
		if len(declarations) > 0 {
			rules = append(rules, RuleSet{SelectorGroups: groups, Declarations: declarations})
		}
	}
	return StyleSheet{Rules: rules}
}

func groupEmpty(groups []SelectorGroup) bool {
	for _, g := range groups {
		if len(g) > 0 {
			return false
		}
	}
	return true
}

// parseSelectorGroups parses the comma-separated selector list before '{'.
// The second return reports whether any selector was dropped for using a
// pseudo-element.
func (p *Parser) parseSelectorGroups() ([]SelectorGroup, bool) {
	var group SelectorGroup
	dropped := false
	for {
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' {
			break
		}
		complex, ok := p.parseComplexSelector()
		if !ok {
			dropped = true
		} else if len(complex.Selectors) > 0 {
			group = append(group, complex)
		}

		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' {
			break
		}
		if p.currentChar() == ',' {
			p.consumeChar()
			continue
		}
		break
	}
	if len(group) > 0 || dropped {
		return []SelectorGroup{group}, dropped
	}
	return nil, false
}

// parseComplexSelector parses simple selectors and their combinators up to
// a ',', '{' or EOF. ok is false when the selector must be dropped
// (pseudo-element usage).
func (p *Parser) parseComplexSelector() (ComplexSelector, bool) {
	var complexSelector ComplexSelector
	combinator := CombinatorNone

	for {
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' || p.currentChar() == ',' {
			break
		}

		simple, err := p.parseSimpleSelector()
		if err != nil {
			if err == errPseudoElement {
				// Consume the rest of this complex selector so the caller
				// resumes at ',' or '{'.
				p.skipTo(',', '{')
				return ComplexSelector{}, false
			}
			p.skipTo(' ', '>', '+', '~', ',', '{')
			continue
		}
		if simple.IsValid() || simple.TagName == "*" {
			complexSelector.Selectors = append(complexSelector.Selectors, SimpleSelectorWithCombinator{
				Combinator:     combinator,
				SimpleSelector: simple,
			})
		}

		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' || p.currentChar() == ',' {
			break
		}

		switch p.currentChar() {
		case '>':
			combinator = CombinatorChild
			p.consumeChar()
		case '+':
			combinator = CombinatorAdjacentSibling
			p.consumeChar()
		case '~':
			combinator = CombinatorGeneralSibling
			p.consumeChar()
		default:
			combinator = CombinatorDescendant
		}
	}
	return complexSelector, true
}

var errPseudoElement = fmt.Errorf("pseudo-element selector")

// parseSimpleSelector parses one compound selector (div#id.c1.c2:hover).
func (p *Parser) parseSimpleSelector() (SimpleSelector, error) {
	selector := SimpleSelector{}

	if !p.eof() {
		ch := p.currentChar()
		if ch == '*' {
			p.consumeChar()
			selector.TagName = "*"
		} else if isIdentStart(ch) {
			selector.TagName = strings.ToLower(p.parseIdentifier())
		}
	}

	for !p.eof() {
		switch p.currentChar() {
		case '#':
			p.consumeChar()
			selector.ID = p.parseIdentifier()
		case '.':
			p.consumeChar()
			selector.Classes = append(selector.Classes, p.parseIdentifier())
		case '[':
			p.consumeChar()
			attr, err := p.parseAttributeSelector()
			if err == nil {
				selector.Attributes = append(selector.Attributes, attr)
			}
		case ':':
			p.consumeChar()
			if !p.eof() && p.currentChar() == ':' {
				return selector, errPseudoElement
			}
			pc, err := p.parsePseudoClass()
			if err != nil {
				return selector, err
			}
			// Legacy single-colon pseudo-elements.
			switch pc.Name {
			case "before", "after", "first-line", "first-letter":
				return selector, errPseudoElement
			}
			selector.PseudoClasses = append(selector.PseudoClasses, pc)
		default:
			goto done
		}
	}

done:
	if !selector.IsValid() && selector.TagName != "*" {
		return selector, fmt.Errorf("invalid simple selector")
	}
	return selector, nil
}

// parsePseudoClass parses the identifier (and optional parenthesized
// argument) after a single ':'.
func (p *Parser) parsePseudoClass() (PseudoClass, error) {
	name := strings.ToLower(p.parseIdentifier())
	if name == "" {
		return PseudoClass{}, fmt.Errorf("empty pseudo-class name")
	}
	pc := PseudoClass{Name: name}
	if !p.eof() && p.currentChar() == '(' {
		p.consumeChar()
		start := p.pos
		depth := 1
		for !p.eof() && depth > 0 {
			switch p.consumeChar() {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		end := p.pos
		if depth == 0 {
			end--
		}
		pc.Argument = strings.TrimSpace(p.input[start:end])
	}
	return pc, nil
}

// parseAttributeSelector parses the contents of '[...]'.
func (p *Parser) parseAttributeSelector() (AttributeSelector, error) {
	p.consumeWhitespace()
	name := p.parseIdentifier()
	p.consumeWhitespace()

	if p.eof() {
		return AttributeSelector{}, fmt.Errorf("unexpected EOF in attribute selector")
	}
	if p.currentChar() == ']' {
		p.consumeChar()
		return AttributeSelector{Name: name}, nil
	}

	var operator strings.Builder
	operator.WriteByte(p.consumeChar())
	if !p.eof() && p.currentChar() == '=' {
		operator.WriteByte(p.consumeChar())
	}
	p.consumeWhitespace()

	var value string
	if p.currentChar() == '"' || p.currentChar() == '\'' {
		quote := p.currentChar()
		p.consumeChar()
		start := p.pos
		for !p.eof() && p.currentChar() != quote {
			p.pos++
		}
		value = p.input[start:p.pos]
		if !p.eof() {
			p.consumeChar()
		}
	} else {
		value = p.parseIdentifier()
	}
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ']' {
		return AttributeSelector{}, fmt.Errorf("expected ']' to close attribute selector")
	}
	p.consumeChar()

	return AttributeSelector{Name: name, Operator: operator.String(), Value: value}, nil
}

// parseDeclarations parses the contents of '{ ... }'.
func (p *Parser) parseDeclarations() ([]Declaration, error) {
	p.consumeWhitespace()
	if p.eof() || p.currentChar() != '{' {
		return nil, fmt.Errorf("expected '{' at start of declarations")
	}
	p.consumeChar()

	var declarations []Declaration
	for {
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '}' {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}

		property, value, important := p.parseDeclaration()
		if property != "" && value != "" {
			declarations = append(declarations, Declaration{
				Property:  Property(strings.ToLower(property)),
				Value:     Value(value),
				Important: important,
			})
		}
	}

	if !p.eof() && p.currentChar() == '}' {
		p.consumeChar()
	}
	return declarations, nil
}

// parseDeclaration parses one 'property: value[!important];' entry.
func (p *Parser) parseDeclaration() (prop, val string, important bool) {
	if !isIdentStart(p.currentChar()) {
		p.skipTo(';', '}')
		if !p.eof() && p.currentChar() == ';' {
			p.consumeChar()
		}
		return
	}
	prop = p.parseIdentifier()
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ':' {
		p.skipTo(';', '}')
		if !p.eof() && p.currentChar() == ';' {
			p.consumeChar()
		}
		return
	}
	p.consumeChar()
	p.consumeWhitespace()

	val = p.parseValue()

	if strings.HasSuffix(strings.ToLower(val), "!important") {
		important = true
		val = strings.TrimSpace(val[:len(val)-len("!important")])
	}

	p.consumeWhitespace()
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
	return
}

// ParseDeclarationList parses a bare declaration list, the grammar of a
// style attribute ("color: red; margin: 0").
func ParseDeclarationList(input string) []Declaration {
	p := NewParser("{" + input + "}")
	declarations, err := p.parseDeclarations()
	if err != nil {
		return nil
	}
	return declarations
}

// ParseSimpleSelector parses a standalone compound selector, the grammar of
// a ':not(...)' argument ("div.active"). Pseudo-element forms are rejected.
func ParseSimpleSelector(input string) (SimpleSelector, bool) {
	p := NewParser(strings.TrimSpace(input))
	selector, err := p.parseSimpleSelector()
	if err != nil || !p.eof() {
		return SimpleSelector{}, false
	}
	return selector, true
}

// parseValue reads a value up to ';' or '}', honoring quotes and parens so
// 'url(...)' and 'rgba(...)' survive intact.
func (p *Parser) parseValue() string {
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' || ch == '}' {
			break
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.consumeChar()
			p.skipBlock('(', ')')
			continue
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

// -- scanning helpers --

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

func (p *Parser) consumeWhitespace() {
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
}

func (p *Parser) startsWith(s string) bool {
	if p.pos+len(s) > len(p.input) {
		return false
	}
	return p.input[p.pos:p.pos+len(s)] == s
}

func (p *Parser) skipComment() {
	p.pos += 2
	endIndex := strings.Index(p.input[p.pos:], "*/")
	if endIndex == -1 {
		p.pos = len(p.input)
	} else {
		p.pos += endIndex + 2
	}
}

func (p *Parser) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, target := range targets {
			if ch == target {
				return
			}
		}
		p.pos++
	}
}

// skipBlock consumes a balanced block. The opening delimiter must already
// have been consumed.
func (p *Parser) skipBlock(open, close byte) {
	depth := 1
	for !p.eof() {
		c := p.consumeChar()
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) skipQuotedString(quote byte) {
	p.consumeChar()
	for !p.eof() {
		ch := p.consumeChar()
		if ch == '\\' {
			p.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

func (p *Parser) skipAtRule() {
	p.consumeChar()
	_ = p.parseIdentifier()
	for !p.eof() {
		ch := p.currentChar()
		if ch == '{' {
			p.consumeChar()
			p.skipBlock('{', '}')
			return
		}
		if ch == ';' {
			p.consumeChar()
			return
		}
		p.pos++
	}
}

func (p *Parser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
