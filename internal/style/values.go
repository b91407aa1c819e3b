// internal/style/values.go
package style

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

// Color is an 8-bit RGBA color as CSS resolves it.
type Color struct {
	R, G, B, A uint8
}

var cssColors = map[string]Color{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"transparent": {0, 0, 0, 0},
}

// Normalized converts to the wire color model, channels in [0,1]. Alpha is
// carried separately, see Opacity.
func (c Color) Normalized() schemas.Color {
	return schemas.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Opacity returns the alpha channel in [0,1].
func (c Color) Opacity() float64 {
	return float64(c.A) / 255
}

// CSS returns the canonical serialized form, "rgb(r, g, b)" when opaque and
// "rgba(r, g, b, a)" otherwise. Alpha is rounded to two decimals the way
// rendering engines print it.
func (c Color) CSS() string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	alpha := math.Round(float64(c.A)/255*100) / 100
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// ParseColor resolves a CSS color string: keywords, #hex (3/4/6/8 digits),
// and rgb()/rgba() functional forms. Returns false when the string does not
// encode a color.
func ParseColor(value string) (Color, bool) {
	value = strings.TrimSpace(strings.ToLower(value))

	if color, ok := cssColors[value]; ok {
		return color, true
	}

	if strings.HasPrefix(value, "#") {
		return parseHexColor(value)
	}

	if strings.HasPrefix(value, "rgb") {
		return parseRGBColor(value)
	}

	return Color{0, 0, 0, 255}, false
}

func parseHexColor(hex string) (Color, bool) {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 3:
		r = hexDigit(hex[0]) * 17
		g = hexDigit(hex[1]) * 17
		b = hexDigit(hex[2]) * 17
	case 4:
		r = hexDigit(hex[0]) * 17
		g = hexDigit(hex[1]) * 17
		b = hexDigit(hex[2]) * 17
		a = hexDigit(hex[3]) * 17
	case 6:
		r = hexDigit(hex[0])<<4 | hexDigit(hex[1])
		g = hexDigit(hex[2])<<4 | hexDigit(hex[3])
		b = hexDigit(hex[4])<<4 | hexDigit(hex[5])
	case 8:
		r = hexDigit(hex[0])<<4 | hexDigit(hex[1])
		g = hexDigit(hex[2])<<4 | hexDigit(hex[3])
		b = hexDigit(hex[4])<<4 | hexDigit(hex[5])
		a = hexDigit(hex[6])<<4 | hexDigit(hex[7])
	default:
		return Color{}, false
	}
	return Color{R: r, G: g, B: b, A: a}, true
}

func hexDigit(c byte) uint8 {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

var rgbRegex = regexp.MustCompile(`rgba?\((.*?)\)`)

func parseRGBColor(value string) (Color, bool) {
	matches := rgbRegex.FindStringSubmatch(value)
	if len(matches) != 2 {
		return Color{}, false
	}

	parts := strings.FieldsFunc(matches[1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})

	var values []string
	for _, p := range parts {
		if p != "" && len(values) < 4 {
			values = append(values, p)
		}
	}

	if len(values) < 3 {
		return Color{}, false
	}

	r := parseColorComponent(values[0], false)
	g := parseColorComponent(values[1], false)
	b := parseColorComponent(values[2], false)
	a := uint8(255)

	if len(values) == 4 {
		a = parseColorComponent(values[3], true)
	}

	return Color{R: r, G: g, B: b, A: a}, true
}

func parseColorComponent(value string, isAlpha bool) uint8 {
	value = strings.TrimSpace(value)

	if strings.HasSuffix(value, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return 0
		}
		return uint8(clamp(percent/100.0*255.0+0.5, 0, 255))
	}

	if isAlpha {
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 255
		}
		return uint8(clamp(val*255.0+0.5, 0, 255))
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		if fval, ferr := strconv.ParseFloat(value, 64); ferr == nil {
			return uint8(clamp(fval+0.5, 0, 255))
		}
		return 0
	}
	return uint8(clamp(float64(val), 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var pxRegex = regexp.MustCompile(`(-?[\d.]+)px`)

// ParseLength extracts a pixel length from a resolved value. Non-pixel values
// ("auto", "50%", "") report false so callers can treat them as absent.
func ParseLength(value string) (float64, bool) {
	match := pxRegex.FindStringSubmatch(value)
	if match == nil {
		return 0, false
	}
	v, err := parseFloat(match[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatPx serializes a pixel quantity without trailing zeros ("20px",
// "13.5px").
func FormatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ParseLengthWithUnits converts a CSS length to pixels given the contexts
// relative units resolve against. Unresolvable input yields 0.
func ParseLengthWithUnits(value string, parentFontSize, rootFontSize, referenceDimension, viewportWidth, viewportHeight float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "auto" || value == "normal" {
		return 0.0
	}

	parseNumeric := func(s, suffix string) (float64, bool) {
		numStr := strings.TrimSuffix(s, suffix)
		if val, err := parseFloat(numStr); err == nil {
			return val, true
		}
		return 0.0, false
	}

	if strings.HasSuffix(value, "%") {
		if percent, ok := parseNumeric(value, "%"); ok {
			return referenceDimension * (percent / 100.0)
		}
	}
	if strings.HasSuffix(value, "px") {
		if px, ok := parseNumeric(value, "px"); ok {
			return px
		}
	}
	// "rem" must be tested before "em".
	if strings.HasSuffix(value, "rem") {
		if val, ok := parseNumeric(value, "rem"); ok {
			return val * rootFontSize
		}
	}
	if strings.HasSuffix(value, "em") {
		if val, ok := parseNumeric(value, "em"); ok {
			return val * parentFontSize
		}
	}
	if strings.HasSuffix(value, "vw") {
		if val, ok := parseNumeric(value, "vw"); ok {
			return viewportWidth * (val / 100.0)
		}
	}
	if strings.HasSuffix(value, "vh") {
		if val, ok := parseNumeric(value, "vh"); ok {
			return viewportHeight * (val / 100.0)
		}
	}
	if strings.HasSuffix(value, "vmin") {
		if val, ok := parseNumeric(value, "vmin"); ok {
			return min(viewportWidth, viewportHeight) * (val / 100.0)
		}
	}
	if strings.HasSuffix(value, "vmax") {
		if val, ok := parseNumeric(value, "vmax"); ok {
			return max(viewportWidth, viewportHeight) * (val / 100.0)
		}
	}
	if val, err := parseFloat(value); err == nil {
		return val
	}

	return 0.0
}

// ParseAbsoluteLength converts a length that must already be absolute.
func ParseAbsoluteLength(value string) float64 {
	return ParseLengthWithUnits(value, 0, 0, 0, 0, 0)
}

// BoxShadow is the decomposition of a single box-shadow layer.
type BoxShadow struct {
	Color   string
	OffsetX float64
	OffsetY float64
	Blur    float64
	Spread  float64
	Inset   bool
}

// ParseBoxShadow decomposes a box-shadow value. Comma-separated stacks
// collapse to the first layer; only one shadow is modeled. Returns false for
// "none", empty input, or a string with fewer than two offsets.
func ParseBoxShadow(value string) (BoxShadow, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "none") {
		return BoxShadow{}, false
	}

	first := splitTopLevel(value, ',')[0]

	var shadow BoxShadow
	var lengths []float64
	for _, token := range fieldsRespectingParens(first) {
		lower := strings.ToLower(token)
		switch {
		case lower == "inset":
			shadow.Inset = true
		case isColorToken(lower):
			if shadow.Color == "" {
				shadow.Color = token
			}
		default:
			if v, ok := shadowLength(token); ok {
				lengths = append(lengths, v)
			}
		}
	}

	if len(lengths) < 2 {
		return BoxShadow{}, false
	}
	shadow.OffsetX = lengths[0]
	shadow.OffsetY = lengths[1]
	if len(lengths) > 2 {
		// Blur cannot be negative; degrade invalid input to a hard shadow.
		shadow.Blur = math.Max(lengths[2], 0)
	}
	if len(lengths) > 3 {
		shadow.Spread = lengths[3]
	}
	return shadow, true
}

func isColorToken(token string) bool {
	if strings.HasPrefix(token, "#") || strings.HasPrefix(token, "rgb(") ||
		strings.HasPrefix(token, "rgba(") || strings.HasPrefix(token, "hsl(") ||
		strings.HasPrefix(token, "hsla(") {
		return true
	}
	_, ok := cssColors[token]
	return ok
}

func shadowLength(token string) (float64, bool) {
	if v, ok := ParseLength(token); ok {
		return v, true
	}
	if v, err := parseFloat(token); err == nil {
		return v, true
	}
	return 0, false
}

// splitTopLevel splits on sep outside any parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

// fieldsRespectingParens splits on whitespace outside parentheses, so
// "0 4px rgba(0, 0, 0, 0.5)" keeps the color as one token.
func fieldsRespectingParens(s string) []string {
	var fields []string
	depth, start := 0, -1
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case (ch == ' ' || ch == '\t' || ch == '\n') && depth == 0:
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

func parseFloat(s string) (float64, error) {
	var result float64
	var sign float64 = 1
	var decimalPoint bool
	var decimalPlace float64 = 0.1
	if len(s) == 0 {
		return 0, fmt.Errorf("empty string")
	}
	i := 0
	if s[0] == '-' {
		sign = -1
		i++
	} else if s[0] == '+' {
		i++
	}
	parsedSomething := false
	for ; i < len(s); i++ {
		ch := s[i]
		if ch >= '0' && ch <= '9' {
			parsedSomething = true
			digit := float64(ch - '0')
			if decimalPoint {
				result += digit * decimalPlace
				decimalPlace *= 0.1
			} else {
				result = result*10 + digit
			}
		} else if ch == '.' && !decimalPoint {
			parsedSomething = true
			decimalPoint = true
		} else {
			break
		}
	}
	if !parsedSomething {
		return 0, fmt.Errorf("invalid float format: %s", s)
	}
	if result == 0 && sign == -1 {
		return 0, nil
	}
	return result * sign, nil
}
