package vis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/render"
)

func newTestVis(t *testing.T) *Vis {
	t.Helper()
	v := NewVis("Emma <draft>", render.DefaultTheme, render.DefaultStyle())
	emma := &graph.Node{ID: "Emma", Layout: graph.LayoutState{X: 10, Y: 20}, Box: graph.Box{W: 120, H: 40, Valid: true}}
	knightley := &graph.Node{ID: "Knightley", Color: "#123456"}
	s := 0.7
	v.AddNode(emma)
	v.AddNode(knightley)
	v.AddLink(&graph.Link{Source: graph.EndpointOf("Emma"), Target: graph.EndpointOf("Knightley"), Count: 3, Sentiment: &s}, emma, knightley)
	v.AddLink(&graph.Link{Source: graph.EndpointOf("Knightley"), Target: graph.EndpointOf("Emma"), Count: 1}, knightley, emma)
	return v
}

func TestItemsReplayNodesThenEdges(t *testing.T) {
	v := newTestVis(t)
	out, err := v.items()
	require.NoError(t, err)

	var items []struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte("["+strings.TrimSuffix(out, ",")+"]"), &items))
	require.Len(t, items, 4)
	assert.Equal(t, []string{"node", "node", "edge", "edge"}, []string{items[0].Type, items[1].Type, items[2].Type, items[3].Type})

	var emma nodeData
	require.NoError(t, json.Unmarshal(items[0].Data, &emma))
	assert.Equal(t, "box", emma.Shape)
	assert.Equal(t, 120.0, emma.WidthConstraint)
	assert.Equal(t, 10.0, emma.X)
	assert.Equal(t, "Emma\ninteractions: 4\nsentiment: pos", emma.Title)

	var knightley nodeData
	require.NoError(t, json.Unmarshal(items[1].Data, &knightley))
	assert.Equal(t, "#123456", knightley.Color.Background)
	assert.Equal(t, render.DefaultStyle().MinWidth, knightley.WidthConstraint)

	var first, second edgeData
	require.NoError(t, json.Unmarshal(items[2].Data, &first))
	require.NoError(t, json.Unmarshal(items[3].Data, &second))
	assert.Equal(t, emma.ID, first.From)
	assert.Equal(t, knightley.ID, first.To)
	assert.Equal(t, "#16a34a", first.Color.Color)
	assert.NotEqual(t, first.ID, second.ID, "parallel links stay separate edges")
	assert.Greater(t, first.Width, second.Width)
}

func TestRenderToFile(t *testing.T) {
	v := newTestVis(t)
	name := filepath.Join(t.TempDir(), "out")
	require.NoError(t, v.RenderToFile(name))

	f, err := os.Open(name + ".vis.html")
	require.NoError(t, err)
	defer f.Close()
	doc, err := xhtml.Parse(f)
	require.NoError(t, err)

	var title, script string
	var visit func(n *xhtml.Node)
	visit = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.FirstChild != nil {
			switch n.Data {
			case "title":
				title = n.FirstChild.Data
			case "script":
				script += n.FirstChild.Data
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	assert.Equal(t, "Emma <draft>", title)
	assert.Contains(t, script, `"label":"Knightley"`)
	assert.Contains(t, script, "new vis.Network")
}
