// internal/cssom/css_test.go
package cssom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helpers to build expected structures concisely.
func d(prop, val string, important bool) Declaration {
	return Declaration{Property: Property(prop), Value: Value(val), Important: important}
}

func s(tag, id string, classes []string, attrs []AttributeSelector) SimpleSelector {
	return SimpleSelector{TagName: tag, ID: id, Classes: classes, Attributes: attrs}
}

func cs(selectors ...SimpleSelectorWithCombinator) ComplexSelector {
	return ComplexSelector{Selectors: selectors}
}

func sc(c Combinator, sel SimpleSelector) SimpleSelectorWithCombinator {
	return SimpleSelectorWithCombinator{Combinator: c, SimpleSelector: sel}
}

func TestParseSimpleSelectors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected SimpleSelector
	}{
		{"Tag", "div", s("div", "", nil, nil)},
		{"ID", "#main", s("", "main", nil, nil)},
		{"Class", ".button", s("", "", []string{"button"}, nil)},
		{"Multiple Classes", ".btn.primary", s("", "", []string{"btn", "primary"}, nil)},
		{"Combined", "input#username.required", s("input", "username", []string{"required"}, nil)},
		{"Universal", "*", s("*", "", nil, nil)},
		{"Attr Presence", "[disabled]", s("", "", nil, []AttributeSelector{{Name: "disabled"}})},
		{"Attr Exact", `[type="text"]`, s("", "", nil, []AttributeSelector{{Name: "type", Operator: "=", Value: "text"}})},
		{"Attr Substring", `[title*="ex"]`, s("", "", nil, []AttributeSelector{{Name: "title", Operator: "*=", Value: "ex"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.input + " { }")
			groups, _ := p.parseSelectorGroups()
			require.NotEmpty(t, groups, "failed to parse selector group for %q", tt.input)
			require.NotEmpty(t, groups[0])
			require.NotEmpty(t, groups[0][0].Selectors)
			assert.Equal(t, tt.expected, groups[0][0].Selectors[0].SimpleSelector)
		})
	}
}

func TestParsePseudoClasses(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []PseudoClass
	}{
		{"State", "a:hover", []PseudoClass{{Name: "hover"}}},
		{"Chained", "input:focus:disabled", []PseudoClass{{Name: "focus"}, {Name: "disabled"}}},
		{"Structural", "li:first-child", []PseudoClass{{Name: "first-child"}}},
		{"Functional", "li:nth-child(2n+1)", []PseudoClass{{Name: "nth-child", Argument: "2n+1"}}},
		{"Case folded", "a:HOVER", []PseudoClass{{Name: "hover"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.input + " { color: red; }")
			sheet := p.Parse()
			require.Len(t, sheet.Rules, 1)
			subject, ok := sheet.Rules[0].SelectorGroups[0][0].Subject()
			require.True(t, ok)
			assert.Equal(t, tt.expected, subject.PseudoClasses)
		})
	}
}

func TestPseudoElementRulesAreDropped(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRules int
	}{
		{"Double colon", "p::before { content: 'x'; }", 0},
		{"Legacy single colon", "p:before { content: 'x'; }", 0},
		{"Partial group keeps valid selector", "h1, h1::after { margin: 0; }", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := NewParser(tt.input).Parse()
			assert.Len(t, sheet.Rules, tt.wantRules)
		})
	}
}

func TestParseCombinators(t *testing.T) {
	input := `
		div p,
		article > section,
		h1 + h2,
		h2 ~ p
		{}
	`
	p := NewParser(input)
	groups, _ := p.parseSelectorGroups()
	require.NotEmpty(t, groups)
	require.Len(t, groups[0], 4)

	expected := []ComplexSelector{
		cs(sc(CombinatorNone, s("div", "", nil, nil)), sc(CombinatorDescendant, s("p", "", nil, nil))),
		cs(sc(CombinatorNone, s("article", "", nil, nil)), sc(CombinatorChild, s("section", "", nil, nil))),
		cs(sc(CombinatorNone, s("h1", "", nil, nil)), sc(CombinatorAdjacentSibling, s("h2", "", nil, nil))),
		cs(sc(CombinatorNone, s("h2", "", nil, nil)), sc(CombinatorGeneralSibling, s("p", "", nil, nil))),
	}
	for i, exp := range expected {
		assert.Equal(t, exp, groups[0][i], "mismatch for complex selector %d", i)
	}
}

func TestParseDeclarations(t *testing.T) {
	input := `
	{
		color: red;
		font-size: 16px !important;
		margin: 10px 20px;
		border: none;
		/* comment between declarations */
		padding: 0;
		background: url("a;b.png");
	}
	`
	p := NewParser(input)
	p.consumeWhitespace()

	got, err := p.parseDeclarations()
	require.NoError(t, err)

	expected := []Declaration{
		d("color", "red", false),
		d("font-size", "16px", true),
		d("margin", "10px 20px", false),
		d("border", "none", false),
		d("padding", "0", false),
		d("background", `url("a;b.png")`, false),
	}
	assert.Equal(t, expected, got)
}

func TestParseDeclarationList(t *testing.T) {
	got := ParseDeclarationList("color: red; display: none !important")
	expected := []Declaration{
		d("color", "red", false),
		d("display", "none", true),
	}
	assert.Equal(t, expected, got)

	assert.Empty(t, ParseDeclarationList(""))
	assert.Empty(t, ParseDeclarationList(";;;"))
}

func TestParseFullSheet(t *testing.T) {
	css := `
	@media (max-width: 600px) { body { color: blue; } }
	@import "other.css";
	/* leading comment */
	#header, .nav a {
		color: #333;
		padding: 4px 8px;
	}
	broken { { }
	p { margin: 0 }
	`
	sheet := NewParser(css).Parse()

	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, []Declaration{d("color", "#333", false), d("padding", "4px 8px", false)}, sheet.Rules[0].Declarations)
	assert.Equal(t, []Declaration{d("margin", "0", false)}, sheet.Rules[1].Declarations)
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     Specificity
	}{
		{"Tag", "div", Specificity{0, 0, 1}},
		{"Class", ".a", Specificity{0, 1, 0}},
		{"ID", "#x", Specificity{1, 0, 0}},
		{"Pseudo counts as class", "a:hover", Specificity{0, 1, 1}},
		{"Compound", "div#x.a.b[href]", Specificity{1, 3, 1}},
		{"Complex sums", "ul li .item", Specificity{0, 1, 2}},
		{"Universal is free", "*", Specificity{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.selector + " {}")
			groups, _ := p.parseSelectorGroups()
			require.NotEmpty(t, groups)
			require.NotEmpty(t, groups[0])
			assert.Equal(t, tt.want, groups[0][0].Specificity())
		})
	}

	t.Run("Less ordering", func(t *testing.T) {
		assert.True(t, Specificity{0, 0, 1}.Less(Specificity{0, 1, 0}))
		assert.True(t, Specificity{0, 9, 9}.Less(Specificity{1, 0, 0}))
		assert.False(t, Specificity{1, 0, 0}.Less(Specificity{1, 0, 0}))
	})
}
