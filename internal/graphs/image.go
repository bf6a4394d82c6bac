package graphs

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/psidex/chargraph/internal/render"
)

// ImageOptions sizes a still export.
type ImageOptions struct {
	Width   int     `toml:"width" validate:"gt=0"`
	Height  int     `toml:"height" validate:"gt=0"`
	Padding float64 `toml:"padding" validate:"gte=0"`
}

func DefaultImageOptions() ImageOptions {
	return ImageOptions{Width: 1600, Height: 1200, Padding: 50}
}

// fit centres the collected nodes in the image at the largest zoom that
// keeps every box inside the padding.
func fit(c *Collector, o ImageOptions, st render.Style) render.Transform {
	minX, minY, maxX, maxY := c.Bounds(st.MinWidth, st.MinHeight)
	availW := math.Max(1, float64(o.Width)-2*o.Padding)
	availH := math.Max(1, float64(o.Height)-2*o.Padding)
	zoom := math.Min(availW/math.Max(maxX-minX, 1), availH/math.Max(maxY-minY, 1))
	return render.Transform{
		Scale: zoom,
		TX:    float64(o.Width)/2 - (minX+maxX)/2*zoom,
		TY:    float64(o.Height)/2 - (minY+maxY)/2*zoom,
	}
}

// paint draws twice: the first pass measures the boxes at the estimated zoom
// and the second frames the measured boxes.
func paint(c *Collector, r *render.Renderer, o ImageOptions, canvas func() render.Canvas) render.Canvas {
	r.Frame(render.NewRasterCanvas(o.Width, o.Height), c.Scene(fit(c, o, r.Style())))
	cv := canvas()
	r.Frame(cv, c.Scene(fit(c, o, r.Style())))
	return cv
}

// Raster defines a CliGraphProvider that renders a PNG image.
type Raster struct {
	*Collector
	renderer *render.Renderer
	opts     ImageOptions
}

var _ CliGraphProvider = (*Raster)(nil)

func NewRaster(r *render.Renderer, o ImageOptions) *Raster {
	return &Raster{Collector: NewCollector(), renderer: r, opts: o}
}

func (x *Raster) RenderToFile(filename string) error {
	filename = filename + ".png"

	cv := paint(x.Collector, x.renderer, x.opts, func() render.Canvas {
		return render.NewRasterCanvas(x.opts.Width, x.opts.Height)
	}).(*render.RasterCanvas)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := cv.EncodePNG(file); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return nil
}

// Vector defines a CliGraphProvider that renders an SVG document.
type Vector struct {
	*Collector
	renderer *render.Renderer
	opts     ImageOptions
}

var _ CliGraphProvider = (*Vector)(nil)

func NewVector(r *render.Renderer, o ImageOptions) *Vector {
	return &Vector{Collector: NewCollector(), renderer: r, opts: o}
}

func (x *Vector) RenderToFile(filename string) error {
	filename = filename + ".svg"

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	cv := paint(x.Collector, x.renderer, x.opts, func() render.Canvas {
		return render.NewSVGCanvas(w, x.opts.Width, x.opts.Height)
	}).(*render.SVGCanvas)
	cv.Close()

	return w.Flush()
}
