package graph

import (
	"fmt"
	"math"
)

// Validate checks a graph built in code against the same rules Parse
// enforces on JSON. Dangling endpoints are allowed.
func (g *Graph) Validate() error {
	if g == nil {
		return invalid("", "nil graph")
	}
	if g.Nodes == nil {
		return invalid("nodes", "missing")
	}
	if g.Links == nil {
		return invalid("links", "missing")
	}

	seen := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		switch {
		case n == nil:
			return invalid(field, "nil node")
		case n.ID == "":
			return invalid(field+".id", "empty")
		case n.Value < 0:
			return invalid(field+".value", "gte=0")
		}
		if _, dup := seen[n.ID]; dup {
			return invalid(field+".id", "duplicate id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}

	for i, l := range g.Links {
		field := fmt.Sprintf("links[%d]", i)
		switch {
		case l == nil:
			return invalid(field, "nil link")
		case l.Source.ID() == "":
			return invalid(field+".source", "empty id")
		case l.Target.ID() == "":
			return invalid(field+".target", "empty id")
		case l.Count < 1:
			return invalid(field+".count", "gte=1")
		case l.Sentiment != nil && !(*l.Sentiment >= -1 && *l.Sentiment <= 1):
			return invalid(field+".sentiment_score", "out of range")
		case l.Width != nil && (math.IsNaN(*l.Width) || *l.Width < 0):
			return invalid(field+".width", "gte=0")
		}
	}
	return nil
}
