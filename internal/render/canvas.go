// Package render draws a laid out character graph onto an immediate mode
// canvas and keeps an off-screen pick buffer in step with what was drawn.
package render

import (
	"image/color"
)

// Transform maps world coordinates to screen pixels: screen = world*Scale + T.
type Transform struct {
	Scale  float64
	TX, TY float64
}

var Identity = Transform{Scale: 1}

func (t Transform) ToScreen(x, y float64) (float64, float64) {
	return x*t.Scale + t.TX, y*t.Scale + t.TY
}

func (t Transform) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - t.TX) / t.Scale, (sy - t.TY) / t.Scale
}

// Canvas is an immediate mode drawing surface. Every coordinate and length
// it receives is in world units; the canvas applies the current transform.
type Canvas interface {
	Size() (width, height int)
	SetTransform(t Transform)
	Clear(c color.Color)
	// SetFontSize selects the label font. Sizes are world units, so the
	// drawn glyphs scale with the zoom.
	SetFontSize(size float64) error
	MeasureText(s string) (float64, error)
	FillRoundedRect(x, y, w, h, r float64, c color.Color)
	StrokeRoundedRect(x, y, w, h, r, lineWidth float64, c color.Color)
	Line(x1, y1, x2, y2, lineWidth float64, c color.Color)
	// Text draws s centred on (x, y).
	Text(s string, x, y float64, c color.Color)
}
