// Package graphs exports a laid-out character graph to files: images, a
// standalone go-echarts page, a vis-network replay, graphology JSON and the
// ranking table.
package graphs

import (
	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/render"
)

// GraphProvider defines an interface that collects the characters and their
// links from a settled layout.
type GraphProvider interface {
	// AddNode should be thread-safe.
	AddNode(n *graph.Node)
	// AddLink receives the resolved node records at both ends of l.
	AddLink(l *graph.Link, source, target *graph.Node)
}

// CliGraphProvider extends the GraphProvider interface to accommodate CLI
// functionality.
type CliGraphProvider interface {
	GraphProvider

	// RenderToFile is not assumed to be thread-safe.
	// filename should be the desired file name without an extension.
	RenderToFile(filename string) error
}

// Feed replays s into p: every node first, then every link whose endpoints
// both resolve. The scene is only read, so several providers can be fed from
// the same scene concurrently.
func Feed(p GraphProvider, s render.Scene) {
	for _, n := range s.Nodes {
		p.AddNode(n)
	}
	for _, l := range s.Links {
		src, dst := s.Endpoints(l)
		if src == nil || dst == nil {
			continue
		}
		p.AddLink(l, src, dst)
	}
}
