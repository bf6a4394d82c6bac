package render

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/lib"
)

// Target is what sits under a screen point: a node, a link, or neither.
type Target struct {
	Node *graph.Node
	Link *graph.Link
}

func (t Target) None() bool {
	return t.Node == nil && t.Link == nil
}

// PickBuffer is an off-screen image where every node and link is painted in a
// unique flat colour. It is painted without antialiasing so each pixel holds
// exactly one id. Nodes are painted from the Box cached by the last Frame, so
// picking always matches the drawn rectangle.
type PickBuffer struct {
	img    *image.RGBA
	style  Style
	hasher *lib.StrHasher
	nodes  map[uint32]*graph.Node
	links  map[uint32]*graph.Link
}

func NewPickBuffer(width, height int, style Style) *PickBuffer {
	return &PickBuffer{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		style:  style,
		hasher: lib.NewStrHasher(),
		nodes:  make(map[uint32]*graph.Node),
		links:  make(map[uint32]*graph.Link),
	}
}

// Resize reallocates the buffer; the next Paint fills it again.
func (p *PickBuffer) Resize(width, height int) {
	if b := p.img.Bounds(); b.Dx() == width && b.Dy() == height {
		return
	}
	p.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (p *PickBuffer) key(kind string, id string) (uint32, color.RGBA) {
	k := uint32(p.hasher.Hash(kind+":"+id)) & 0xffffff
	return k, color.RGBA{R: uint8(k >> 16), G: uint8(k >> 8), B: uint8(k), A: 0xff}
}

// Reset empties the buffer so every pixel resolves to no target.
func (p *PickBuffer) Reset() {
	clear(p.img.Pix)
	clear(p.nodes)
	clear(p.links)
}

// Paint redraws the buffer from s. Nodes are painted over links, like the
// visible frame. Nodes without a cached box are skipped.
func (p *PickBuffer) Paint(s Scene) {
	p.Reset()
	t := s.Transform
	if t.Scale <= 0 {
		t.Scale = 1
	}

	for i, l := range s.Links {
		src, tgt := s.Endpoints(l)
		if src == nil || tgt == nil {
			continue
		}
		k, c := p.key("link", strconv.Itoa(i))
		p.links[k] = l
		x1, y1 := t.ToScreen(src.Layout.X, src.Layout.Y)
		x2, y2 := t.ToScreen(tgt.Layout.X, tgt.Layout.Y)
		p.segment(x1, y1, x2, y2, math.Max(LinkWidth(l), p.style.HoverWidth), c)
	}

	for _, n := range s.Nodes {
		if !n.Box.Valid {
			continue
		}
		k, c := p.key("node", n.ID)
		p.nodes[k] = n
		x0, y0 := t.ToScreen(n.Layout.X-n.Box.W/2, n.Layout.Y-n.Box.H/2)
		x1, y1 := t.ToScreen(n.Layout.X+n.Box.W/2, n.Layout.Y+n.Box.H/2)
		p.rect(x0, y0, x1, y1, c)
	}
}

// At resolves a screen pixel.
func (p *PickBuffer) At(x, y int) Target {
	if !(image.Point{X: x, Y: y}).In(p.img.Bounds()) {
		return Target{}
	}
	c := p.img.RGBAAt(x, y)
	if c.A == 0 {
		return Target{}
	}
	k := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if n, ok := p.nodes[k]; ok {
		return Target{Node: n}
	}
	if l, ok := p.links[k]; ok {
		return Target{Link: l}
	}
	return Target{}
}

// rect fills every pixel whose centre lies inside [x0, x1) x [y0, y1).
func (p *PickBuffer) rect(x0, y0, x1, y1 float64, c color.RGBA) {
	r := image.Rect(
		int(math.Ceil(x0-0.5)), int(math.Ceil(y0-0.5)),
		int(math.Ceil(x1-0.5)), int(math.Ceil(y1-0.5)),
	).Intersect(p.img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p.img.SetRGBA(x, y, c)
		}
	}
}

// segment fills pixels whose centre is within width/2 of the segment,
// measured perpendicular to it, with flat ends.
func (p *PickBuffer) segment(x1, y1, x2, y2, width float64, c color.RGBA) {
	half := width / 2
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length

	r := image.Rect(
		int(math.Floor(math.Min(x1, x2)-half)), int(math.Floor(math.Min(y1, y2)-half)),
		int(math.Ceil(math.Max(x1, x2)+half))+1, int(math.Ceil(math.Max(y1, y2)+half))+1,
	).Intersect(p.img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			px, py := float64(x)+0.5-x1, float64(y)+0.5-y1
			along := px*ux + py*uy
			if along < 0 || along > length {
				continue
			}
			if math.Abs(px*uy-py*ux) <= half {
				p.img.SetRGBA(x, y, c)
			}
		}
	}
}
