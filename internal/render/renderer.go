package render

import (
	"image/color"
	"log/slog"
	"math"
	"sync"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/sentiment"
)

// Style holds node geometry in world units and link widths in screen pixels.
type Style struct {
	FontBase     float64 `toml:"font_base" validate:"gt=0"`
	MinFontSize  float64 `toml:"min_font_size" validate:"gte=0"`
	PadX         float64 `toml:"pad_x" validate:"gte=0"`
	PadY         float64 `toml:"pad_y" validate:"gte=0"`
	MinWidth     float64 `toml:"min_width" validate:"gte=0"`
	MinHeight    float64 `toml:"min_height" validate:"gte=0"`
	Radius       float64 `toml:"radius" validate:"gte=0"`
	BorderWidth  float64 `toml:"border_width" validate:"gte=0"`
	OutlineWidth float64 `toml:"outline_width" validate:"gte=0"`
	GlowWidth    float64 `toml:"glow_width" validate:"gte=0"`
	// HoverWidth is the minimum pickable link thickness.
	HoverWidth float64 `toml:"hover_width" validate:"gte=0"`
}

func DefaultStyle() Style {
	return Style{
		FontBase:     14,
		MinFontSize:  6,
		PadX:         12,
		PadY:         8,
		MinWidth:     90,
		MinHeight:    32,
		Radius:       6,
		BorderWidth:  1.2,
		OutlineWidth: 3,
		GlowWidth:    10,
		HoverWidth:   6,
	}
}

// Highlighter answers the per-frame highlight questions. A nil Highlighter
// highlights nothing.
type Highlighter interface {
	IsLinkHighlighted(l *graph.Link) bool
	IsNodeHighlighted(id string) bool
	// OutlineScore picks the score whose colour outlines a highlighted node.
	OutlineScore(id string, avg *float64) *float64
}

// Scene is everything one frame needs.
type Scene struct {
	Nodes []*graph.Node
	Links []*graph.Link
	// Lookup resolves unbound endpoints, e.g. to layout placeholders.
	Lookup       func(id string) *graph.Node
	Highlight    Highlighter
	AvgSentiment map[string]*float64
	Transform    Transform
}

// Endpoints returns the node records at both ends of l, or nils.
func (s Scene) Endpoints(l *graph.Link) (*graph.Node, *graph.Node) {
	return s.resolve(l.Source), s.resolve(l.Target)
}

func (s Scene) resolve(ep graph.Endpoint) *graph.Node {
	if n := ep.Node(); n != nil {
		return n
	}
	if s.Lookup != nil {
		return s.Lookup(ep.ID())
	}
	return nil
}

type Renderer struct {
	theme  Theme
	style  Style
	logger *slog.Logger

	warnMeasure sync.Once
}

func NewRenderer(theme Theme, style Style, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{theme: theme, style: style, logger: logger}
}

func (r *Renderer) Theme() Theme { return r.theme }
func (r *Renderer) Style() Style { return r.style }

// LinkWidth is the on-screen stroke width of l in pixels.
func LinkWidth(l *graph.Link) float64 {
	if l.Width != nil {
		return *l.Width
	}
	return 1 + 2*math.Log2(1+float64(l.Count))
}

// FontSize is the label size in world units at zoom. It shrinks as the view
// zooms in so labels keep a constant on-screen size, down to the minimum.
func (r *Renderer) FontSize(zoom float64) float64 {
	return math.Max(r.style.MinFontSize, r.style.FontBase/zoom)
}

// Frame paints links, then nodes, and caches every node's rectangle on the
// node for hit-testing.
func (r *Renderer) Frame(c Canvas, s Scene) {
	zoom := s.Transform.Scale
	if zoom <= 0 {
		zoom = 1
		s.Transform.Scale = 1
	}
	c.SetTransform(s.Transform)
	c.Clear(r.theme.Background)

	for _, l := range s.Links {
		src, tgt := s.Endpoints(l)
		if src == nil || tgt == nil {
			continue
		}
		c.Line(src.Layout.X, src.Layout.Y, tgt.Layout.X, tgt.Layout.Y, LinkWidth(l)/zoom, r.linkColor(l, s.Highlight))
	}

	fontSize := r.FontSize(zoom)
	measurable := true
	if err := c.SetFontSize(fontSize); err != nil {
		measurable = false
		r.measureFailed(err)
	}

	for _, n := range s.Nodes {
		w, h := r.boxFor(c, n.ID, fontSize, measurable)
		n.Box = graph.Box{W: w, H: h, Valid: true}

		x := n.Layout.X - w/2
		y := n.Layout.Y - h/2
		c.FillRoundedRect(x, y, w, h, r.style.Radius, r.nodeFill(n))
		c.StrokeRoundedRect(x, y, w, h, r.style.Radius, math.Max(1, r.style.BorderWidth/zoom), r.theme.Stroke)

		if s.Highlight != nil && s.Highlight.IsNodeHighlighted(n.ID) {
			outline := sentiment.ColorFor(s.Highlight.OutlineScore(n.ID, s.AvgSentiment[n.ID]))
			c.StrokeRoundedRect(x, y, w, h, r.style.Radius, r.style.GlowWidth/zoom, withAlpha(outline, 0.3))
			c.StrokeRoundedRect(x, y, w, h, r.style.Radius, r.style.OutlineWidth/zoom, outline)
		}

		if measurable {
			c.Text(n.ID, n.Layout.X, n.Layout.Y, r.theme.Text)
		}
	}
}

func (r *Renderer) boxFor(c Canvas, label string, fontSize float64, measurable bool) (float64, float64) {
	textW := 0.0
	if measurable {
		w, err := c.MeasureText(label)
		if err != nil {
			r.measureFailed(err)
		} else {
			textW = w
		}
	}
	return math.Max(r.style.MinWidth, textW+2*r.style.PadX),
		math.Max(r.style.MinHeight, fontSize+2*r.style.PadY)
}

func (r *Renderer) measureFailed(err error) {
	r.warnMeasure.Do(func() {
		r.logger.Warn("text measurement unavailable, using default node size", "err", err)
	})
}

func (r *Renderer) linkColor(l *graph.Link, hl Highlighter) color.Color {
	if hl != nil && hl.IsLinkHighlighted(l) {
		return sentiment.ColorFor(l.Sentiment)
	}
	if l.Color != "" {
		if c, err := ParseColor(l.Color); err == nil {
			return c
		}
	}
	return r.theme.Stroke
}

func (r *Renderer) nodeFill(n *graph.Node) color.Color {
	if n.Color != "" {
		if c, err := ParseColor(n.Color); err == nil {
			return c
		}
	}
	return r.theme.Fill
}
