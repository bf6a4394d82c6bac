package layout

import (
	"math"

	"github.com/psidex/chargraph/internal/graph"
)

type force interface {
	apply(alpha float64)
}

type spring struct {
	source, target *graph.Node
	distance       float64
	strength       float64
	bias           float64
}

// linkForce pulls linked nodes towards their rest distance. Strength and bias
// follow the endpoint degrees so hubs are not dragged around by leaves.
type linkForce struct {
	springs []spring
	jiggle  func() float64
}

func newLinkForce(cfg Config, links []*graph.Link, jiggle func() float64) *linkForce {
	degree := make(map[*graph.Node]int)
	for _, l := range links {
		degree[l.Source.Node()]++
		degree[l.Target.Node()]++
	}

	f := &linkForce{jiggle: jiggle, springs: make([]spring, 0, len(links))}
	for _, l := range links {
		s, t := l.Source.Node(), l.Target.Node()
		ds, dt := float64(degree[s]), float64(degree[t])
		f.springs = append(f.springs, spring{
			source:   s,
			target:   t,
			distance: cfg.LinkDistance(l),
			strength: 1 / math.Min(ds, dt),
			bias:     ds / (ds + dt),
		})
	}
	return f
}

func (f *linkForce) apply(alpha float64) {
	for _, sp := range f.springs {
		s, t := &sp.source.Layout, &sp.target.Layout
		x := t.X + t.VX - s.X - s.VX
		if x == 0 {
			x = f.jiggle()
		}
		y := t.Y + t.VY - s.Y - s.VY
		if y == 0 {
			y = f.jiggle()
		}
		l := math.Sqrt(x*x + y*y)
		l = (l - sp.distance) / l * alpha * sp.strength
		x *= l
		y *= l
		t.VX -= x * sp.bias
		t.VY -= y * sp.bias
		s.VX += x * (1 - sp.bias)
		s.VY += y * (1 - sp.bias)
	}
}

// manyBody is a constant-strength charge between every pair closer than the
// cut-off. Pairs are visited directly; character graphs stay small.
type manyBody struct {
	nodes        []*graph.Node
	strength     float64
	distanceMin2 float64
	distanceMax2 float64
	jiggle       func() float64
}

func (f *manyBody) apply(alpha float64) {
	for i, a := range f.nodes {
		for j, b := range f.nodes {
			if i == j {
				continue
			}
			x := b.Layout.X - a.Layout.X
			y := b.Layout.Y - a.Layout.Y
			l := x*x + y*y
			if l >= f.distanceMax2 {
				continue
			}
			if x == 0 {
				x = f.jiggle()
				l += x * x
			}
			if y == 0 {
				y = f.jiggle()
				l += y * y
			}
			if l < f.distanceMin2 {
				l = math.Sqrt(f.distanceMin2 * l)
			}
			w := f.strength * alpha / l
			a.Layout.VX += x * w
			a.Layout.VY += y * w
		}
	}
}

// collide separates nodes whose bounding circles overlap, looking ahead one
// velocity step.
type collide struct {
	nodes      []*graph.Node
	radii      []float64
	iterations int
	jiggle     func() float64
}

func (f *collide) apply(float64) {
	for k := 0; k < f.iterations; k++ {
		for i, a := range f.nodes {
			ri := f.radii[i]
			ri2 := ri * ri
			xi := a.Layout.X + a.Layout.VX
			yi := a.Layout.Y + a.Layout.VY
			for j := i + 1; j < len(f.nodes); j++ {
				b := f.nodes[j]
				rj := f.radii[j]
				r := ri + rj
				x := xi - b.Layout.X - b.Layout.VX
				y := yi - b.Layout.Y - b.Layout.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = f.jiggle()
					l += x * x
				}
				if y == 0 {
					y = f.jiggle()
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l
				x *= l
				y *= l
				rj2 := rj * rj
				share := rj2 / (ri2 + rj2)
				a.Layout.VX += x * share
				a.Layout.VY += y * share
				b.Layout.VX -= x * (1 - share)
				b.Layout.VY -= y * (1 - share)
			}
		}
	}
}

// center translates the free nodes so that the centroid sits on the origin.
type center struct {
	nodes []*graph.Node
}

func (f *center) apply(float64) {
	var sx, sy float64
	var free int
	for _, n := range f.nodes {
		sx += n.Layout.X
		sy += n.Layout.Y
		if !n.Layout.Fixed {
			free++
		}
	}
	if free == 0 {
		return
	}
	sx /= float64(len(f.nodes))
	sy /= float64(len(f.nodes))
	for _, n := range f.nodes {
		if n.Layout.Fixed {
			continue
		}
		n.Layout.X -= sx
		n.Layout.Y -= sy
	}
}
