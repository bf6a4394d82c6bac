// Package view glues the layout engine, renderer, pick buffer and highlight
// controller into one frame-driven scene. A host calls Advance once per frame
// from a single goroutine; only Resize may be called from elsewhere.
package view

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/interact"
	"github.com/psidex/chargraph/internal/layout"
	"github.com/psidex/chargraph/internal/lib"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/stats"
)

// Scheduler is the one operation a frame driver needs.
type Scheduler interface {
	Advance(now time.Time)
}

type Options struct {
	Width       int          `toml:"width" json:"width" validate:"gt=0,lte=4096"`
	Height      int          `toml:"height" json:"height" validate:"gt=0,lte=4096"`
	FitDuration lib.Duration `toml:"fit_duration" json:"fit_duration"`
	FitPadding  float64      `toml:"fit_padding" json:"fit_padding" validate:"gte=0"`
	MinZoom     float64      `toml:"min_zoom" json:"min_zoom" validate:"gt=0"`
	MaxZoom     float64      `toml:"max_zoom" json:"max_zoom" validate:"gtefield=MinZoom"`

	// NewCanvas builds the frame canvas; nil means a RasterCanvas.
	NewCanvas func(width, height int) render.Canvas `toml:"-" json:"-"`
}

func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      600,
		FitDuration: lib.DurationFrom(400 * time.Millisecond),
		FitPadding:  50,
		MinZoom:     0.01,
		MaxZoom:     1000,
	}
}

type View struct {
	opts     Options
	logger   *slog.Logger
	engine   *layout.Engine
	renderer *render.Renderer
	ctl      *interact.Controller

	sizeMu        sync.Mutex
	width, height int

	canvas render.Canvas
	pick   *render.PickBuffer

	graph  *graph.Graph
	stats  stats.Result
	camera Camera
	flight *flight

	// fitRequested is set when the engine stops and consumed by the next
	// Advance, so the fit reads coordinates that have been painted.
	fitRequested bool
	pointer      struct {
		x, y   float64
		inside bool
	}
	dirty  bool
	fresh  bool
	frames int
}

func New(opts Options, layoutCfg layout.Config, renderer *render.Renderer, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NewCanvas == nil {
		opts.NewCanvas = func(w, h int) render.Canvas { return render.NewRasterCanvas(w, h) }
	}
	v := &View{
		opts:     opts,
		logger:   logger,
		engine:   layout.NewEngine(layoutCfg, logger),
		renderer: renderer,
		ctl:      interact.NewController(),
		width:    opts.Width,
		height:   opts.Height,
		camera:   Camera{Zoom: 1},
		dirty:    true,
	}
	v.engine.OnStop(func() {
		v.fitRequested = true
	})
	return v
}

// Load validates g and swaps it in together with its stats and a cleared
// highlight. A rejected graph leaves the current scene untouched. Loading
// the graph already shown does not re-heat the layout.
func (v *View) Load(g *graph.Graph, now time.Time) error {
	if err := g.Validate(); err != nil {
		return err
	}
	res := stats.Derive(g)

	if v.engine.Configure(g, now) {
		v.fitRequested = false
		v.flight = nil
		if d := v.engine.Dangling(); len(d) > 0 {
			v.logger.Warn("graph has links to unknown characters", "count", len(d))
		}
	}
	v.graph = g
	v.stats = res
	v.ctl.Reset()
	// The buffer still names the old graph's nodes until the next paint.
	if v.pick != nil {
		v.pick.Reset()
	}
	v.dirty = true
	return nil
}

// Advance runs one frame: a pending fit, one layout step, the camera flight,
// then paint and pick buffer refresh when anything changed.
func (v *View) Advance(now time.Time) {
	v.ensureSurface()

	if v.fitRequested {
		v.fitRequested = false
		v.fit(now)
	}

	if v.engine.Step(now) {
		v.dirty = true
	}

	if v.flight != nil {
		cam, done := v.flight.at(now)
		v.camera = cam
		if done {
			v.flight = nil
		}
		v.dirty = true
	}

	if !v.dirty || v.graph == nil {
		return
	}
	s := v.Scene()
	v.renderer.Frame(v.canvas, s)
	v.pick.Paint(s)
	v.dirty = false
	v.fresh = true
	v.frames++

	if v.pointer.inside && v.ctl.Pointer(v.pick.At(pixel(v.pointer.x), pixel(v.pointer.y))) {
		v.dirty = true
	}
}

func (v *View) ensureSurface() {
	v.sizeMu.Lock()
	w, h := v.width, v.height
	v.sizeMu.Unlock()

	if v.canvas != nil {
		if cw, ch := v.canvas.Size(); cw == w && ch == h {
			return
		}
	}
	v.canvas = v.opts.NewCanvas(w, h)
	if v.pick == nil {
		v.pick = render.NewPickBuffer(w, h, v.renderer.Style())
	} else {
		v.pick.Resize(w, h)
	}
	v.dirty = true
}

// Scene is what the next frame paints: every simulated node, placeholders
// included, seen through the current camera.
func (v *View) Scene() render.Scene {
	v.sizeMu.Lock()
	w, h := v.width, v.height
	v.sizeMu.Unlock()
	return render.Scene{
		Nodes:        v.engine.Nodes(),
		Links:        v.graph.Links,
		Lookup:       v.engine.Node,
		Highlight:    v.ctl,
		AvgSentiment: v.stats.AvgSentimentOf,
		Transform:    v.camera.Transform(w, h),
	}
}

func (v *View) fit(now time.Time) {
	v.sizeMu.Lock()
	w, h := v.width, v.height
	v.sizeMu.Unlock()

	st := v.renderer.Style()
	target, ok := fitCamera(v.engine.Nodes(), w, h, v.opts.FitPadding, st.MinWidth, st.MinHeight, v.opts.MinZoom, v.opts.MaxZoom)
	if !ok {
		return
	}
	v.flight = &flight{from: v.camera, to: target, start: now, duration: v.opts.FitDuration.Duration}
	v.dirty = true
}

// ResetView flies the camera to frame every node. It is safe to call at any
// time, mid-simulation included, and calling it twice is the same as once.
func (v *View) ResetView(now time.Time) {
	v.fit(now)
}

// MaxViewport bounds either side of the viewport.
const MaxViewport = 4096

// Resize only changes the viewport; the layout keeps running untouched.
func (v *View) Resize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxViewport || height > MaxViewport {
		return fmt.Errorf("invalid viewport %dx%d", width, height)
	}
	v.sizeMu.Lock()
	defer v.sizeMu.Unlock()
	v.width, v.height = width, height
	return nil
}

func (v *View) Size() (int, int) {
	v.sizeMu.Lock()
	defer v.sizeMu.Unlock()
	return v.width, v.height
}

// PointerMove resolves a screen point against the last painted pick buffer.
// It reports whether the highlight changed.
func (v *View) PointerMove(x, y float64) bool {
	v.pointer.x, v.pointer.y, v.pointer.inside = x, y, true
	if v.pick == nil {
		return false
	}
	if v.ctl.Pointer(v.pick.At(pixel(x), pixel(y))) {
		v.dirty = true
		return true
	}
	return false
}

// pixel is the pixel containing coordinate c, so -0.5 lands left of the
// viewport rather than in column 0.
func pixel(c float64) int {
	return int(math.Floor(c))
}

func (v *View) PointerLeave() bool {
	v.pointer.inside = false
	if v.ctl.Pointer(render.Target{}) {
		v.dirty = true
		return true
	}
	return false
}

func (v *View) Tooltip() string {
	return v.ctl.Tooltip(v.stats)
}

func (v *View) Highlight() interact.Context {
	return v.ctl.Context()
}

func (v *View) Stats() stats.Result {
	return v.stats
}

func (v *View) Camera() Camera {
	return v.camera
}

func (v *View) Phase() layout.Phase {
	return v.engine.Phase()
}

func (v *View) Graph() *graph.Graph {
	return v.graph
}

// Settled reports whether the layout stopped and no camera flight or fit is
// outstanding.
func (v *View) Settled() bool {
	return v.engine.Phase() == layout.Stopped && v.flight == nil && !v.fitRequested
}

// Settle drives v on clock, one frame step at a time, until the layout has
// stopped and the automatic fit has landed. It gives up after maxFrames.
func Settle(v *View, clock *ManualClock, step time.Duration, maxFrames int) bool {
	for i := 0; i < maxFrames; i++ {
		v.Advance(clock.Add(step))
		if v.Settled() && !v.dirty {
			return true
		}
	}
	return v.Settled()
}

// TakeFrame reports whether a frame was painted since the last call.
func (v *View) TakeFrame() bool {
	f := v.fresh
	v.fresh = false
	return f
}

// Frames counts painted frames.
func (v *View) Frames() int {
	return v.frames
}

var ErrNotEncodable = errors.New("canvas cannot be encoded as PNG")

// EncodePNG writes the last frame.
func (v *View) EncodePNG(w io.Writer) error {
	enc, ok := v.canvas.(interface{ EncodePNG(io.Writer) error })
	if !ok {
		return ErrNotEncodable
	}
	return enc.EncodePNG(w)
}
