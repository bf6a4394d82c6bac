package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/sentiment"
)

type op struct {
	kind  string
	x, y  float64
	w, h  float64
	width float64
	c     color.Color
	text  string
}

// recorder measures every character as half the font size.
type recorder struct {
	t        Transform
	fontSize float64
	fontErr  error
	ops      []op
}

func (r *recorder) Size() (int, int)         { return 800, 600 }
func (r *recorder) SetTransform(t Transform) { r.t = t }
func (r *recorder) Clear(c color.Color)      { r.ops = append(r.ops, op{kind: "clear", c: c}) }

func (r *recorder) SetFontSize(size float64) error {
	r.fontSize = size
	return r.fontErr
}

func (r *recorder) MeasureText(s string) (float64, error) {
	if r.fontErr != nil {
		return 0, r.fontErr
	}
	return float64(utf8.RuneCountInString(s)) * r.fontSize / 2, nil
}

func (r *recorder) FillRoundedRect(x, y, w, h, _ float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "fill", x: x, y: y, w: w, h: h, c: c})
}

func (r *recorder) StrokeRoundedRect(x, y, w, h, _, lw float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "stroke", x: x, y: y, w: w, h: h, width: lw, c: c})
}

func (r *recorder) Line(x1, y1, _, _, lw float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "line", x: x1, y: y1, width: lw, c: c})
}

func (r *recorder) Text(s string, x, y float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "text", x: x, y: y, text: s, c: c})
}

func (r *recorder) find(kind string) []op {
	var out []op
	for _, o := range r.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

type hoverLink struct{ link *graph.Link }

func (h hoverLink) IsLinkHighlighted(l *graph.Link) bool { return l == h.link }
func (h hoverLink) IsNodeHighlighted(id string) bool {
	return id == h.link.Source.ID() || id == h.link.Target.ID()
}
func (h hoverLink) OutlineScore(string, *float64) *float64 { return h.link.Sentiment }

func ptr(f float64) *float64 { return &f }

func scene() (Scene, *graph.Graph) {
	g := graph.New(
		[]*graph.Node{
			{ID: "A", Layout: graph.LayoutState{X: -200}},
			{ID: "Fitzwilliam Darcy", Layout: graph.LayoutState{X: 200}, Color: "#336699"},
		},
		[]*graph.Link{{
			Source:    graph.EndpointOf("A"),
			Target:    graph.EndpointOf("Fitzwilliam Darcy"),
			Count:     3,
			Sentiment: ptr(0.5),
		}},
	)
	g.Resolve()
	return Scene{Nodes: g.Nodes, Links: g.Links, Transform: Transform{Scale: 1, TX: 400, TY: 300}}, g
}

func TestLinkWidth(t *testing.T) {
	assert.Equal(t, 3.0, LinkWidth(&graph.Link{Count: 1}))
	assert.Equal(t, 5.0, LinkWidth(&graph.Link{Count: 3}))
	assert.InDelta(t, 1+2*math.Log2(101), LinkWidth(&graph.Link{Count: 100}), 1e-12)
	assert.Equal(t, 0.5, LinkWidth(&graph.Link{Count: 100, Width: ptr(0.5)}))
}

func TestFrameGeometry(t *testing.T) {
	s, g := scene()
	r := NewRenderer(DefaultTheme, DefaultStyle(), nil)
	rec := &recorder{}
	r.Frame(rec, s)

	require.NotEmpty(t, rec.ops)
	assert.Equal(t, "clear", rec.ops[0].kind)
	assert.Equal(t, DefaultTheme.Background, rec.ops[0].c)

	lines := rec.find("line")
	require.Len(t, lines, 1)
	assert.Equal(t, 5.0, lines[0].width)
	assert.Equal(t, DefaultTheme.Stroke, lines[0].c)

	assert.Equal(t, graph.Box{W: 90, H: 32, Valid: true}, g.Nodes[0].Box, "short labels get the minimum rectangle")
	assert.Equal(t, graph.Box{W: 17*7 + 24, H: 32, Valid: true}, g.Nodes[1].Box)

	fills := rec.find("fill")
	require.Len(t, fills, 2)
	assert.Equal(t, -245.0, fills[0].x)
	assert.Equal(t, -16.0, fills[0].y)
	assert.Equal(t, DefaultTheme.Fill, fills[0].c)
	assert.Equal(t, color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}, fills[1].c)

	texts := rec.find("text")
	require.Len(t, texts, 2)
	assert.Equal(t, "Fitzwilliam Darcy", texts[1].text)
	assert.Equal(t, 200.0, texts[1].x)
}

func TestFrameFontFollowsZoom(t *testing.T) {
	s, g := scene()
	r := NewRenderer(DefaultTheme, DefaultStyle(), nil)

	s.Transform.Scale = 4
	rec := &recorder{}
	r.Frame(rec, s)
	assert.Equal(t, 6.0, rec.fontSize, "font size has a floor")
	assert.Equal(t, 32.0, g.Nodes[0].Box.H)

	s.Transform.Scale = 0.5
	rec = &recorder{}
	r.Frame(rec, s)
	assert.Equal(t, 28.0, rec.fontSize)
	assert.Equal(t, 44.0, g.Nodes[0].Box.H)
	assert.Equal(t, 17*14+24.0, g.Nodes[1].Box.W)
}

func TestFrameHighlight(t *testing.T) {
	s, g := scene()
	g.Links[0].Color = "#00ff00"
	r := NewRenderer(DefaultTheme, DefaultStyle(), nil)

	rec := &recorder{}
	r.Frame(rec, s)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, rec.find("line")[0].c, "explicit colour when not highlighted")
	assert.Len(t, rec.find("stroke"), 2, "only borders")

	s.Highlight = hoverLink{link: g.Links[0]}
	rec = &recorder{}
	r.Frame(rec, s)
	assert.Equal(t, sentiment.ColorPositive, rec.find("line")[0].c)

	strokes := rec.find("stroke")
	require.Len(t, strokes, 6, "border, glow and outline per endpoint")
	assert.Equal(t, sentiment.ColorPositive, strokes[2].c)
	assert.Equal(t, 3.0, strokes[2].width)
	assert.Greater(t, strokes[1].width, strokes[2].width, "glow is wider than the outline")
}

func TestFrameMeasureFailure(t *testing.T) {
	s, g := scene()
	r := NewRenderer(DefaultTheme, DefaultStyle(), nil)
	rec := &recorder{fontErr: errors.New("no fonts")}
	r.Frame(rec, s)

	for _, n := range g.Nodes {
		assert.Equal(t, graph.Box{W: 90, H: 32, Valid: true}, n.Box)
	}
	assert.Empty(t, rec.find("text"))
	assert.Len(t, rec.find("fill"), 2)
}

func TestFrameSkipsUnresolvedEndpoints(t *testing.T) {
	g := graph.New(
		[]*graph.Node{{ID: "A"}},
		[]*graph.Link{{Source: graph.EndpointOf("A"), Target: graph.EndpointOf("ghost"), Count: 1}},
	)
	g.Resolve()
	ghost := &graph.Node{ID: "ghost", Layout: graph.LayoutState{X: 50}}
	s := Scene{Nodes: g.Nodes, Links: g.Links, Transform: Identity}

	rec := &recorder{}
	NewRenderer(DefaultTheme, DefaultStyle(), nil).Frame(rec, s)
	assert.Empty(t, rec.find("line"))

	s.Nodes = append(s.Nodes, ghost)
	s.Lookup = func(id string) *graph.Node {
		if id == "ghost" {
			return ghost
		}
		return nil
	}
	rec = &recorder{}
	NewRenderer(DefaultTheme, DefaultStyle(), nil).Frame(rec, s)
	assert.Len(t, rec.find("line"), 1)
	assert.Equal(t, DefaultTheme.Fill, rec.find("fill")[1].c, "placeholders use the default fill")
}

func TestPickBufferMatchesBoxes(t *testing.T) {
	s, g := scene()
	NewRenderer(DefaultTheme, DefaultStyle(), nil).Frame(&recorder{}, s)
	pb := NewPickBuffer(800, 600, DefaultStyle())
	pb.Paint(s)

	darcy := g.Nodes[1]
	// Screen centre of darcy is (600, 300), box 143x32.
	assert.Same(t, darcy, pb.At(600+70, 300+14).Node, "corner of a wide rectangle")
	assert.True(t, pb.At(600+73, 300).None())
	assert.True(t, pb.At(600, 300+17).None())

	assert.Same(t, g.Nodes[0], pb.At(200, 300).Node)
	assert.Same(t, g.Links[0], pb.At(400, 301).Link)
	assert.True(t, pb.At(400, 310).None())
	assert.True(t, pb.At(-1, 0).None())
	assert.True(t, pb.At(800, 600).None())
}

func TestPickBufferReset(t *testing.T) {
	s, g := scene()
	NewRenderer(DefaultTheme, DefaultStyle(), nil).Frame(&recorder{}, s)
	pb := NewPickBuffer(800, 600, DefaultStyle())
	pb.Paint(s)
	require.Same(t, g.Nodes[0], pb.At(200, 300).Node)

	pb.Reset()
	assert.True(t, pb.At(200, 300).None())
	assert.True(t, pb.At(400, 301).None())
}

func TestPickBufferSkipsUnmeasuredNodes(t *testing.T) {
	s, g := scene()
	pb := NewPickBuffer(800, 600, DefaultStyle())
	pb.Paint(s)
	assert.True(t, pb.At(200, 300).Node == nil)

	g.Nodes[0].Box = graph.Box{W: 90, H: 32, Valid: true}
	pb.Resize(400, 300)
	pb.Paint(s)
	assert.True(t, pb.At(200, 300).None(), "outside the resized buffer")
}

func TestRasterCanvas(t *testing.T) {
	s, _ := scene()
	s.Transform = Transform{Scale: 0.5, TX: 200, TY: 100}
	c := NewRasterCanvas(400, 200)
	NewRenderer(DefaultTheme, DefaultStyle(), nil).Frame(c, s)

	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, DefaultTheme.Background, color.NRGBAModel.Convert(img.At(0, 0)))
	assert.NotEqual(t, DefaultTheme.Background, color.NRGBAModel.Convert(img.At(100, 100)), "node A is drawn")

	require.NoError(t, c.SetFontSize(28))
	w1, err := c.MeasureText("Elizabeth")
	require.NoError(t, err)
	c.SetTransform(Transform{Scale: 2})
	w2, err := c.MeasureText("Elizabeth")
	require.NoError(t, err)
	assert.InEpsilon(t, w1, w2, 0.1, "measurements are in world units")
}

func TestSVGCanvas(t *testing.T) {
	s, g := scene()
	g.Nodes[0].ID = "<b>"
	var buf bytes.Buffer
	c := NewSVGCanvas(&buf, 800, 600)
	NewRenderer(DefaultTheme, DefaultStyle(), nil).Frame(c, s)
	c.Close()

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, "&lt;b&gt;")
	assert.Contains(t, out, "fill:#1f283b")
	assert.Equal(t, 2, strings.Count(out, "<text"))
}
