package graphology

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/render"
)

func TestSerialize(t *testing.T) {
	g := NewGraphology(render.DefaultTheme, render.DefaultStyle())
	anne := &graph.Node{ID: "Anne", Value: 5, Layout: graph.LayoutState{X: -3, Y: 4}, Box: graph.Box{W: 100, H: 36, Valid: true}}
	wentworth := &graph.Node{ID: "Wentworth", Value: 2}
	s := -0.6
	g.AddNode(anne)
	g.AddNode(wentworth)
	for i := 0; i < 2; i++ {
		g.AddLink(&graph.Link{Source: graph.EndpointOf("Anne"), Target: graph.EndpointOf("Wentworth"), Count: 30, Sentiment: &s}, anne, wentworth)
	}

	out := g.Serialize()
	assert.Equal(t, Options{Type: "undirected", Multi: true, AllowSelfLoops: true}, out.Options)

	require.Len(t, out.Nodes, 2)
	a := out.Nodes[0]
	assert.Equal(t, "Anne", a.Key)
	assert.Equal(t, -3.0, a.Attributes.X)
	assert.Equal(t, 100.0, a.Attributes.Width)
	assert.Equal(t, 5, a.Attributes.Appearances)
	assert.Equal(t, 60, a.Attributes.Interactions)
	assert.Equal(t, float64(maxNodeSize), a.Attributes.Size, "size is capped")
	assert.Equal(t, render.CSS(render.DefaultTheme.Fill), a.Attributes.Color)
	require.NotNil(t, a.Attributes.Sentiment)
	assert.Equal(t, -0.6, *a.Attributes.Sentiment)

	require.Len(t, out.Edges, 2, "parallel links are both kept")
	assert.Equal(t, "1", out.Edges[0].Key)
	assert.Equal(t, "2", out.Edges[1].Key)
	assert.Equal(t, "#dc2626", out.Edges[0].Attributes.Color)
	assert.Equal(t, 30, out.Edges[0].Attributes.Count)
}

func TestRenderToFile(t *testing.T) {
	g := NewGraphology(render.DefaultTheme, render.DefaultStyle())
	n := &graph.Node{ID: "Fanny"}
	g.AddNode(n)

	name := filepath.Join(t.TempDir(), "out")
	require.NoError(t, g.RenderToFile(name))

	data, err := os.ReadFile(name + ".graphology.json")
	require.NoError(t, err)
	var sg SerializedGraph
	require.NoError(t, json.Unmarshal(data, &sg))
	require.Len(t, sg.Nodes, 1)
	assert.Equal(t, float64(minNodeSize), sg.Nodes[0].Attributes.Size)
	assert.Empty(t, sg.Edges)
}
