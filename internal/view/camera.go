package view

import (
	"math"
	"time"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/render"
)

// Camera looks at a world point with a zoom factor.
type Camera struct {
	X, Y float64
	Zoom float64
}

// Transform centres the camera in a width x height viewport.
func (c Camera) Transform(width, height int) render.Transform {
	return render.Transform{
		Scale: c.Zoom,
		TX:    float64(width)/2 - c.X*c.Zoom,
		TY:    float64(height)/2 - c.Y*c.Zoom,
	}
}

type flight struct {
	from, to Camera
	start    time.Time
	duration time.Duration
}

// at returns the camera at now and whether the flight is over.
func (f flight) at(now time.Time) (Camera, bool) {
	if f.duration <= 0 {
		return f.to, true
	}
	p := float64(now.Sub(f.start)) / float64(f.duration)
	if p >= 1 {
		return f.to, true
	}
	if p < 0 {
		p = 0
	}
	// cubic in-out
	var e float64
	if p < 0.5 {
		e = 4 * p * p * p
	} else {
		e = 1 - math.Pow(-2*p+2, 3)/2
	}
	return Camera{
		X:    f.from.X + (f.to.X-f.from.X)*e,
		Y:    f.from.Y + (f.to.Y-f.from.Y)*e,
		Zoom: f.from.Zoom + (f.to.Zoom-f.from.Zoom)*e,
	}, false
}

// bounds is the world rectangle covering every node's drawn box. Nodes not
// painted yet count with the minimum size.
func bounds(nodes []*graph.Node, minW, minH float64) (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		w, h := minW, minH
		if n.Box.Valid {
			w, h = n.Box.W, n.Box.H
		}
		minX = math.Min(minX, n.Layout.X-w/2)
		minY = math.Min(minY, n.Layout.Y-h/2)
		maxX = math.Max(maxX, n.Layout.X+w/2)
		maxY = math.Max(maxY, n.Layout.Y+h/2)
	}
	return minX, minY, maxX, maxY, len(nodes) > 0
}

// fitCamera frames nodes inside the viewport minus padding on every side.
func fitCamera(nodes []*graph.Node, width, height int, padding, minW, minH, minZoom, maxZoom float64) (Camera, bool) {
	minX, minY, maxX, maxY, ok := bounds(nodes, minW, minH)
	if !ok {
		return Camera{}, false
	}
	availW := math.Max(1, float64(width)-2*padding)
	availH := math.Max(1, float64(height)-2*padding)
	zoom := math.Min(availW/math.Max(maxX-minX, 1), availH/math.Max(maxY-minY, 1))
	zoom = math.Max(minZoom, math.Min(maxZoom, zoom))
	return Camera{X: (minX + maxX) / 2, Y: (minY + maxY) / 2, Zoom: zoom}, true
}
