package graphology

import (
	"encoding/json"
	"math"
	"os"
	"strconv"

	"github.com/psidex/chargraph/internal/graphs"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/sentiment"
)

// Node sizes grow with interactions, within these bounds.
const (
	minNodeSize = 2
	maxNodeSize = 10
)

// Graphology defines a CliGraphProvider that renders Graphology data to a JSON
// file. The graph is undirected and multi, so parallel links survive.
type Graphology struct {
	*graphs.Collector
	theme render.Theme
	style render.Style
}

var _ graphs.CliGraphProvider = (*Graphology)(nil)

func NewGraphology(theme render.Theme, style render.Style) *Graphology {
	return &Graphology{
		Collector: graphs.NewCollector(),
		theme:     theme,
		style:     style,
	}
}

func (g *Graphology) Serialize() *SerializedGraph {
	res := g.Stats()
	out := &SerializedGraph{
		Options: Options{Type: "undirected", Multi: true, AllowSelfLoops: true},
		Nodes:   []Node{},
		Edges:   []Edge{},
	}

	for _, row := range res.Rows {
		n := g.Node(row.ID)
		if n == nil {
			continue
		}
		w, h := g.style.MinWidth, g.style.MinHeight
		if n.Box.Valid {
			w, h = n.Box.W, n.Box.H
		}
		color := n.Color
		if color == "" {
			color = render.CSS(g.theme.Fill)
		}
		out.Nodes = append(out.Nodes, Node{
			Key: n.ID,
			Attributes: NodeAttributes{
				X:            n.Layout.X,
				Y:            n.Layout.Y,
				Size:         math.Min(maxNodeSize, minNodeSize+0.2*float64(row.Interactions)),
				Label:        n.ID,
				Color:        color,
				Width:        w,
				Height:       h,
				Appearances:  row.Appearances,
				Interactions: row.Interactions,
				Sentiment:    row.AvgSentiment,
			},
		})
	}

	for i, l := range g.Links() {
		color := l.Color
		if color == "" {
			color = sentiment.Hex(sentiment.ColorFor(l.Sentiment))
		}
		out.Edges = append(out.Edges, Edge{
			Key:        strconv.Itoa(i + 1),
			Source:     l.Source.ID(),
			Target:     l.Target.ID(),
			Undirected: true,
			Attributes: EdgeAttributes{
				Size:      render.LinkWidth(l),
				Color:     color,
				Count:     l.Count,
				Sentiment: l.Sentiment,
			},
		})
	}
	return out
}

func (g *Graphology) RenderToFile(filename string) error {
	filename = filename + ".graphology.json"

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	marshalled, err := json.Marshal(g.Serialize())
	if err != nil {
		return err
	}

	_, err = file.Write(marshalled)
	return err
}
