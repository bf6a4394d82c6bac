package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font"
)

// SVGCanvas writes one SVG document. Text is measured with the same face the
// raster canvas uses so both exports lay labels out identically. Call Close
// to finish the document.
type SVGCanvas struct {
	s             *svg.SVG
	width, height int
	t             Transform
	faces         *faceCache
	face          font.Face
	fontSize      float64
}

func NewSVGCanvas(w io.Writer, width, height int) *SVGCanvas {
	s := svg.New(w)
	s.Start(width, height)
	return &SVGCanvas{s: s, width: width, height: height, t: Identity, faces: newFaceCache()}
}

func (c *SVGCanvas) Size() (int, int) {
	return c.width, c.height
}

func (c *SVGCanvas) SetTransform(t Transform) {
	c.t = t
	if c.fontSize > 0 {
		_ = c.SetFontSize(c.fontSize)
	}
}

func (c *SVGCanvas) Clear(col color.Color) {
	c.s.Rect(0, 0, c.width, c.height, "fill:"+CSS(col))
}

func (c *SVGCanvas) SetFontSize(size float64) error {
	c.fontSize = size
	face, err := c.faces.face(size * c.t.Scale)
	if err != nil {
		c.face = nil
		return err
	}
	c.face = face
	return nil
}

func (c *SVGCanvas) MeasureText(s string) (float64, error) {
	if c.face == nil {
		return 0, errors.New("no font selected")
	}
	return measure(c.face, s) / c.t.Scale, nil
}

func px(v float64) int {
	return int(math.Round(v))
}

func (c *SVGCanvas) rect(x, y, w, h, r float64) (int, int, int, int, int) {
	sx, sy := c.t.ToScreen(x, y)
	k := c.t.Scale
	return px(sx), px(sy), px(w * k), px(h * k), px(r * k)
}

func (c *SVGCanvas) FillRoundedRect(x, y, w, h, r float64, col color.Color) {
	sx, sy, sw, sh, sr := c.rect(x, y, w, h, r)
	c.s.Roundrect(sx, sy, sw, sh, sr, sr, "fill:"+CSS(col))
}

func (c *SVGCanvas) StrokeRoundedRect(x, y, w, h, r, lineWidth float64, col color.Color) {
	sx, sy, sw, sh, sr := c.rect(x, y, w, h, r)
	c.s.Roundrect(sx, sy, sw, sh, sr, sr,
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f", CSS(col), lineWidth*c.t.Scale))
}

func (c *SVGCanvas) Line(x1, y1, x2, y2, lineWidth float64, col color.Color) {
	sx1, sy1 := c.t.ToScreen(x1, y1)
	sx2, sy2 := c.t.ToScreen(x2, y2)
	c.s.Line(px(sx1), px(sy1), px(sx2), px(sy2),
		fmt.Sprintf("stroke:%s;stroke-width:%.2f;stroke-linecap:round", CSS(col), lineWidth*c.t.Scale))
}

func (c *SVGCanvas) Text(s string, x, y float64, col color.Color) {
	if c.face == nil {
		return
	}
	sx, sy := c.t.ToScreen(x, y)
	c.s.Text(px(sx), px(sy), s, fmt.Sprintf(
		"fill:%s;font-size:%.2fpx;font-family:Go,system-ui,sans-serif;text-anchor:middle;dominant-baseline:central",
		CSS(col), c.fontSize*c.t.Scale))
}

func (c *SVGCanvas) Close() {
	c.s.End()
}
