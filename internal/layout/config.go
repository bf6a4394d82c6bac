// Package layout runs the force simulation that positions the characters. It
// sizes the forces from the label geometry the renderer will draw, so that
// long names push their neighbours further away.
package layout

import (
	"math"
	"unicode/utf8"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/lib"
)

// Config holds the layout constants. Geometry here is an estimate made before
// any text is measured; the renderer measures for real every frame.
type Config struct {
	LinkDistanceBase float64 `toml:"link_distance_base" validate:"gte=0"`
	CharWidth        float64 `toml:"char_width" validate:"gt=0"`
	LabelMinWidth    float64 `toml:"label_min_width" validate:"gte=0"`
	PadX             float64 `toml:"pad_x" validate:"gte=0"`
	PadY             float64 `toml:"pad_y" validate:"gte=0"`
	FontBase         float64 `toml:"font_base" validate:"gt=0"`
	MinHeight        float64 `toml:"min_height" validate:"gte=0"`

	Charge            float64 `toml:"charge"`
	ChargeDistanceMax float64 `toml:"charge_distance_max" validate:"gt=0"`
	CollideMargin     float64 `toml:"collide_margin" validate:"gte=0"`
	CollideIterations int     `toml:"collide_iterations" validate:"gte=1"`

	// WarmupTicks run synchronously on every re-heat, before the first paint.
	WarmupTicks int `toml:"warmup_ticks" validate:"gte=0"`
	// CooldownTicks and CooldownTime bound the ticking after warmup. Negative
	// means unlimited.
	CooldownTicks int          `toml:"cooldown_ticks"`
	CooldownTime  lib.Duration `toml:"cooldown_time"`
	AlphaMin      float64      `toml:"alpha_min" validate:"gte=0,lt=1"`
	AlphaDecay    float64      `toml:"alpha_decay" validate:"gte=0,lt=1"`
	VelocityDecay float64      `toml:"velocity_decay" validate:"gte=0,lte=1"`

	// Seed feeds the jiggle used to separate coincident nodes.
	Seed int64 `toml:"seed"`
}

func DefaultConfig() Config {
	alphaMin := 0.001
	return Config{
		LinkDistanceBase: 120,
		CharWidth:        7,
		LabelMinWidth:    120,
		PadX:             12,
		PadY:             8,
		FontBase:         14,
		MinHeight:        50,

		Charge:            -350,
		ChargeDistanceMax: 400,
		CollideMargin:     8,
		CollideIterations: 1,

		WarmupTicks:   120,
		CooldownTicks: 0,
		CooldownTime:  lib.DurationFrom(0),
		AlphaMin:      alphaMin,
		AlphaDecay:    1 - math.Pow(alphaMin, 1.0/300),
		VelocityDecay: 0.4,
		Seed:          1,
	}
}

// LabelWidth estimates the drawn width of a node labelled label.
func (c Config) LabelWidth(label string) float64 {
	return math.Max(c.LabelMinWidth, c.CharWidth*float64(utf8.RuneCountInString(label))+2*c.PadX)
}

// LabelHeight is the same for every node.
func (c Config) LabelHeight() float64 {
	return math.Max(c.MinHeight, c.FontBase+2*c.PadY)
}

// LinkDistance is the rest length of l.
func (c Config) LinkDistance(l *graph.Link) float64 {
	return c.LinkDistanceBase + 0.25*(c.LabelWidth(l.Source.ID())+c.LabelWidth(l.Target.ID()))
}

// CollisionRadius is the radius of the circle bounding the node's estimated
// rectangle, plus the margin.
func (c Config) CollisionRadius(n *graph.Node) float64 {
	return math.Hypot(c.LabelWidth(n.ID), c.LabelHeight())/2 + c.CollideMargin
}
