package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
)

// RasterCanvas draws antialiased pixels through gg. gg's own transform does not
// scale glyphs, so geometry is mapped to screen space here and the label face
// is picked at the on-screen pixel size.
type RasterCanvas struct {
	dc       *gg.Context
	t        Transform
	faces    *faceCache
	face     font.Face
	fontSize float64
}

func NewRasterCanvas(width, height int) *RasterCanvas {
	dc := gg.NewContext(width, height)
	dc.SetLineCapRound()
	return &RasterCanvas{dc: dc, t: Identity, faces: newFaceCache()}
}

func (c *RasterCanvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

func (c *RasterCanvas) SetTransform(t Transform) {
	c.t = t
	if c.fontSize > 0 {
		_ = c.SetFontSize(c.fontSize)
	}
}

func (c *RasterCanvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *RasterCanvas) SetFontSize(size float64) error {
	c.fontSize = size
	face, err := c.faces.face(size * c.t.Scale)
	if err != nil {
		c.face = nil
		return err
	}
	c.face = face
	c.dc.SetFontFace(face)
	return nil
}

func (c *RasterCanvas) MeasureText(s string) (float64, error) {
	if c.face == nil {
		return 0, errors.New("no font selected")
	}
	w, _ := c.dc.MeasureString(s)
	return w / c.t.Scale, nil
}

func (c *RasterCanvas) FillRoundedRect(x, y, w, h, r float64, col color.Color) {
	sx, sy := c.t.ToScreen(x, y)
	k := c.t.Scale
	c.dc.DrawRoundedRectangle(sx, sy, w*k, h*k, r*k)
	c.dc.SetColor(col)
	c.dc.Fill()
}

func (c *RasterCanvas) StrokeRoundedRect(x, y, w, h, r, lineWidth float64, col color.Color) {
	sx, sy := c.t.ToScreen(x, y)
	k := c.t.Scale
	c.dc.DrawRoundedRectangle(sx, sy, w*k, h*k, r*k)
	c.dc.SetLineWidth(lineWidth * k)
	c.dc.SetColor(col)
	c.dc.Stroke()
}

func (c *RasterCanvas) Line(x1, y1, x2, y2, lineWidth float64, col color.Color) {
	sx1, sy1 := c.t.ToScreen(x1, y1)
	sx2, sy2 := c.t.ToScreen(x2, y2)
	c.dc.DrawLine(sx1, sy1, sx2, sy2)
	c.dc.SetLineWidth(lineWidth * c.t.Scale)
	c.dc.SetColor(col)
	c.dc.Stroke()
}

func (c *RasterCanvas) Text(s string, x, y float64, col color.Color) {
	if c.face == nil {
		return
	}
	sx, sy := c.t.ToScreen(x, y)
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(s, sx, sy, 0.5, 0.5)
}

// Image returns the backing image. It is reused by the next frame.
func (c *RasterCanvas) Image() image.Image {
	return c.dc.Image()
}

func (c *RasterCanvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.dc.Image())
}
