package schemas

import (
	"fmt"
	"time"
)

// Viewport records the emulated screen used during capture.
type Viewport struct {
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor,omitempty"`
}

// Stylesheet is one source of author CSS: an external sheet fetched during
// capture, or the concatenated text of inline <style> blocks.
type Stylesheet struct {
	Href string `json:"href,omitempty"`
	CSS  string `json:"css"`
}

// ElementBox is the rendered box of one element. Boxes pair with elements
// by pre-order document position; Tag is a pairing sanity check, not a key.
type ElementBox struct {
	Tag     string `json:"tag"`
	Rect    Rect   `json:"rect"`
	Visible bool   `json:"visible"`
}

// TextBox is the rendered box of one text run, attributed to its enclosing
// element by that element's pre-order index.
type TextBox struct {
	ElementIndex int    `json:"elementIndex"`
	Text         string `json:"text"`
	Rect         Rect   `json:"rect"`
}

// Capture is the input contract: everything the conversion pipeline needs
// about one rendered page. Produced by the live capturer or loaded from a
// prepared capture file.
type Capture struct {
	URL          string       `json:"url,omitempty"`
	CapturedAt   time.Time    `json:"capturedAt"`
	Viewport     Viewport     `json:"viewport"`
	RootFontSize float64      `json:"rootFontSize,omitempty"`
	HTML         string       `json:"html"`
	Stylesheets  []Stylesheet `json:"stylesheets,omitempty"`
	Boxes        []ElementBox `json:"boxes"`
	TextBoxes    []TextBox    `json:"textBoxes,omitempty"`
}

// Validate checks the capture for the fields conversion cannot proceed
// without. Box/element count mismatches are not an error here; pairing
// degradation is handled downstream.
func (c *Capture) Validate() error {
	if c == nil {
		return fmt.Errorf("capture is nil")
	}
	if c.HTML == "" {
		return fmt.Errorf("capture has no document markup")
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("capture viewport is negative: %gx%g", c.Viewport.Width, c.Viewport.Height)
	}
	return nil
}
