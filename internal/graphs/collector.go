package graphs

import (
	"math"
	"sync"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/lib"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/stats"
)

// Collector is a GraphProvider that keeps private copies of what it is fed,
// so exporters never write to the records of the scene they were fed from.
// Exporters embed it.
type Collector struct {
	mu    *sync.Mutex
	seen  lib.Set[string]
	nodes []*graph.Node
	links []*graph.Link
	index map[string]*graph.Node
}

var _ GraphProvider = (*Collector)(nil)

func NewCollector() *Collector {
	return &Collector{
		mu:    &sync.Mutex{},
		seen:  lib.NewSet[string](),
		index: make(map[string]*graph.Node),
	}
}

// addNode expects c.mu to be held.
func (c *Collector) addNode(n *graph.Node) *graph.Node {
	if !c.seen.AddNew(n.ID) {
		return c.index[n.ID]
	}
	cp := *n
	c.nodes = append(c.nodes, &cp)
	c.index[cp.ID] = &cp
	return &cp
}

// AddNode ignores ids it has already seen.
func (c *Collector) AddNode(n *graph.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addNode(n)
}

// AddLink adds any endpoint not seen yet, then a copy of l bound to the
// collector's own node records. Parallel links are all kept.
func (c *Collector) AddLink(l *graph.Link, source, target *graph.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *l
	cp.Source = graph.EndpointOf(source.ID)
	cp.Source.Bind(c.addNode(source))
	cp.Target = graph.EndpointOf(target.ID)
	cp.Target.Bind(c.addNode(target))
	c.links = append(c.links, &cp)
}

// Nodes returns the collected nodes in the order they were first seen.
func (c *Collector) Nodes() []*graph.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*graph.Node(nil), c.nodes...)
}

// Links returns the collected links in input order.
func (c *Collector) Links() []*graph.Link {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*graph.Link(nil), c.links...)
}

// Node returns the collected record for id, or nil.
func (c *Collector) Node(id string) *graph.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index[id]
}

// Stats derives the ranking over the collected records.
func (c *Collector) Stats() stats.Result {
	return stats.Derive(graph.New(c.Nodes(), c.Links()))
}

// Scene builds a renderable scene over the collected records.
func (c *Collector) Scene(t render.Transform) render.Scene {
	return render.Scene{
		Nodes:        c.Nodes(),
		Links:        c.Links(),
		Lookup:       c.Node,
		AvgSentiment: c.Stats().AvgSentimentOf,
		Transform:    t,
	}
}

// Bounds is the world rectangle covering every collected node's box. Nodes
// never painted count with the given minimum size.
func (c *Collector) Bounds(minW, minH float64) (minX, minY, maxX, maxY float64) {
	nodes := c.Nodes()
	if len(nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		w, h := boxOf(n, minW, minH)
		minX = math.Min(minX, n.Layout.X-w/2)
		minY = math.Min(minY, n.Layout.Y-h/2)
		maxX = math.Max(maxX, n.Layout.X+w/2)
		maxY = math.Max(maxY, n.Layout.Y+h/2)
	}
	return minX, minY, maxX, maxY
}

func boxOf(n *graph.Node, minW, minH float64) (float64, float64) {
	if n.Box.Valid {
		return n.Box.W, n.Box.H
	}
	return minW, minH
}

func nodeColor(n *graph.Node, theme render.Theme) string {
	if n.Color != "" {
		return n.Color
	}
	return render.CSS(theme.Fill)
}
