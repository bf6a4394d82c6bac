// Package graph holds the character interaction graph consumed by the layout,
// the renderer and the stats pass.
package graph

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// LayoutState is written by the simulation on every tick and by nothing else.
type LayoutState struct {
	X, Y   float64
	VX, VY float64
	// Fixed pins the node: forces are not applied while it is set.
	Fixed bool
}

// Box is the rectangle the renderer last drew for a node, in world units.
// Hit-testing reuses it so that drawing and picking never disagree.
type Box struct {
	W, H  float64
	Valid bool
}

// Node is a character. ID, Value and Color belong to the caller and are never
// touched once a layout has started; Layout and Box are owned by the
// simulation and the renderer respectively.
type Node struct {
	ID    string
	Value int
	Color string

	Layout LayoutState
	Box    Box
}

// Link is an undirected, weighted relation between two characters. Several
// links between the same pair are allowed and are never merged.
type Link struct {
	Source Endpoint
	Target Endpoint
	Count  int
	// Sentiment is nil when the analysis produced no score.
	Sentiment *float64
	Color     string
	// Width overrides the count-derived stroke width when set.
	Width *float64
}

// Graph is the caller-owned payload. Links keep their input order.
type Graph struct {
	Nodes []*Node
	Links []*Link

	index map[string]*Node
}

// New builds a graph and its id index.
func New(nodes []*Node, links []*Link) *Graph {
	g := &Graph{Nodes: nodes, Links: links}
	g.reindex()
	return g
}

func (g *Graph) reindex() {
	g.index = make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n != nil {
			g.index[n.ID] = n
		}
	}
}

// NodeByID returns the node record for id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	if g.index == nil || len(g.index) != len(g.Nodes) {
		g.reindex()
	}
	return g.index[id]
}

// Resolve rewrites every link endpoint into a reference to its node record,
// in place. Ids without a node record are left as bare ids and returned in
// first-encounter order, each once.
func (g *Graph) Resolve() (dangling []string) {
	seen := make(map[string]struct{})
	for _, l := range g.Links {
		for _, ep := range []*Endpoint{&l.Source, &l.Target} {
			if n := g.NodeByID(ep.ID()); n != nil {
				ep.Bind(n)
				continue
			}
			if _, ok := seen[ep.ID()]; !ok {
				seen[ep.ID()] = struct{}{}
				dangling = append(dangling, ep.ID())
			}
		}
	}
	return dangling
}

// Clone deep-copies the graph. Endpoints of the copy are bare ids again, so
// the clone can be laid out independently of the original.
func (g *Graph) Clone() *Graph {
	nodes := make([]*Node, len(g.Nodes))
	for i, n := range g.Nodes {
		cp := *n
		nodes[i] = &cp
	}
	links := make([]*Link, len(g.Links))
	for i, l := range g.Links {
		cp := *l
		cp.Source = EndpointOf(l.Source.ID())
		cp.Target = EndpointOf(l.Target.ID())
		if l.Sentiment != nil {
			s := *l.Sentiment
			cp.Sentiment = &s
		}
		if l.Width != nil {
			w := *l.Width
			cp.Width = &w
		}
		links[i] = &cp
	}
	return New(nodes, links)
}

// Fingerprint hashes the caller-owned fields only, so it is stable across
// layout ticks and renders.
func (g *Graph) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	num := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	str := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	for _, n := range g.Nodes {
		str(n.ID)
		num(float64(n.Value))
		str(n.Color)
	}
	_, _ = h.Write([]byte{1})
	for _, l := range g.Links {
		str(l.Source.ID())
		str(l.Target.ID())
		num(float64(l.Count))
		if l.Sentiment != nil {
			num(*l.Sentiment)
		} else {
			str("-")
		}
	}
	return h.Sum64()
}
