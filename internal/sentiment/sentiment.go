// Package sentiment turns link sentiment scores into categories, colours and
// short labels.
//
// Two policies exist on purpose and are kept apart: Visual decides colours
// (threshold 0.2) and Label decides the pos/neg/neu text (threshold 0.33).
// Both thresholds are exclusive.
package sentiment

import (
	"fmt"
	"image/color"
)

type Category int

const (
	Neutral Category = iota
	Positive
	Negative
)

func (c Category) String() string {
	switch c {
	case Positive:
		return "pos"
	case Negative:
		return "neg"
	default:
		return "neu"
	}
}

// Policy classifies a score against a symmetric, exclusive threshold.
type Policy struct {
	Name      string
	Threshold float64
}

var (
	// Visual drives every sentiment colour drawn on the canvas.
	Visual = Policy{Name: "visual", Threshold: 0.2}
	// Label drives the pos/neg/neu text in tooltips and the ranking table.
	Label = Policy{Name: "label", Threshold: 0.33}
)

// Classify returns Neutral for a nil score.
func (p Policy) Classify(score *float64) Category {
	if score == nil {
		return Neutral
	}
	switch s := *score; {
	case s > p.Threshold:
		return Positive
	case s < -p.Threshold:
		return Negative
	default:
		return Neutral
	}
}

var (
	ColorPositive = color.RGBA{R: 0x16, G: 0xa3, B: 0x4a, A: 0xff}
	ColorNegative = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}
	ColorNeutral  = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
)

// Color returns the display colour of a category.
func (c Category) Color() color.RGBA {
	switch c {
	case Positive:
		return ColorPositive
	case Negative:
		return ColorNegative
	default:
		return ColorNeutral
	}
}

// ColorFor maps a score to its colour under the Visual policy.
func ColorFor(score *float64) color.RGBA {
	return Visual.Classify(score).Color()
}

// LabelFor maps a score to "pos", "neg" or "neu" under the Label policy.
func LabelFor(score *float64) string {
	return Label.Classify(score).String()
}

// Badge formats a score for tabular output, e.g. "0.50 pos". Unknown scores
// are shown as an em dash placeholder.
func Badge(score *float64) string {
	if score == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f %s", *score, LabelFor(score))
}

// Hex formats c as #rrggbb, which is what the HTML exporters expect.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
