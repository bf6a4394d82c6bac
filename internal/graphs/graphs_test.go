package graphs

import (
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/lib"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/stats"
)

func score(f float64) *float64 { return &f }

// scene is a small laid-out graph: a dangling "Bingley" placeholder, two
// parallel links and one link that never resolved.
func scene(t *testing.T) render.Scene {
	t.Helper()
	eliza := &graph.Node{ID: "Elizabeth", Value: 9, Layout: graph.LayoutState{X: -100, Y: 0}}
	darcy := &graph.Node{ID: "Darcy", Value: 7, Color: "#336699", Layout: graph.LayoutState{X: 100, Y: 40}}
	jane := &graph.Node{ID: "Jane", Value: 4, Layout: graph.LayoutState{X: 0, Y: -120}}
	bingley := &graph.Node{ID: "Bingley", Layout: graph.LayoutState{X: 150, Y: -150}}

	g := graph.New([]*graph.Node{eliza, darcy, jane}, []*graph.Link{
		{Source: graph.EndpointOf("Elizabeth"), Target: graph.EndpointOf("Darcy"), Count: 6, Sentiment: score(-0.5)},
		{Source: graph.EndpointOf("Darcy"), Target: graph.EndpointOf("Elizabeth"), Count: 2, Sentiment: score(0.9)},
		{Source: graph.EndpointOf("Jane"), Target: graph.EndpointOf("Bingley"), Count: 3},
		{Source: graph.EndpointOf("Jane"), Target: graph.EndpointOf("Wickham"), Count: 1},
	})
	g.Resolve()

	return render.Scene{
		Nodes: append(append([]*graph.Node(nil), g.Nodes...), bingley),
		Links: g.Links,
		Lookup: func(id string) *graph.Node {
			if id == "Bingley" {
				return bingley
			}
			return g.NodeByID(id)
		},
		Transform: render.Identity,
	}
}

func TestFeedCopiesRecords(t *testing.T) {
	s := scene(t)
	c := NewCollector()
	Feed(c, s)

	nodes := c.Nodes()
	require.Len(t, nodes, 4)
	assert.Equal(t, []string{"Elizabeth", "Darcy", "Jane", "Bingley"}, []string{nodes[0].ID, nodes[1].ID, nodes[2].ID, nodes[3].ID})
	assert.NotSame(t, s.Nodes[0], nodes[0])

	links := c.Links()
	require.Len(t, links, 3, "the unresolved link is skipped, parallel links are kept")
	assert.Same(t, c.Node("Elizabeth"), links[0].Source.Node())
	assert.Same(t, c.Node("Bingley"), links[2].Target.Node())

	nodes[0].Layout.X = 999
	assert.Equal(t, -100.0, s.Nodes[0].Layout.X)
}

func TestCollectorAddLinkAddsUnseenEndpoints(t *testing.T) {
	c := NewCollector()
	a, b := &graph.Node{ID: "a"}, &graph.Node{ID: "b"}
	c.AddLink(&graph.Link{Source: graph.EndpointOf("a"), Target: graph.EndpointOf("b"), Count: 1}, a, b)
	c.AddNode(a)

	assert.Len(t, c.Nodes(), 2)
	assert.Equal(t, 1, c.Stats().InteractionsOf["a"])
}

func TestCollectorStatsMatchDerive(t *testing.T) {
	s := scene(t)
	c := NewCollector()
	Feed(c, s)

	res := c.Stats()
	assert.Equal(t, 8, res.InteractionsOf["Elizabeth"])
	assert.Equal(t, 8, res.InteractionsOf["Darcy"])
	assert.Equal(t, 3, res.InteractionsOf["Jane"], "the unresolved link was never fed")
	assert.InDelta(t, (-0.5*6+0.9*2)/8, *res.AvgSentimentOf["Darcy"], 1e-9)
	assert.Nil(t, res.AvgSentimentOf["Bingley"])
}

func TestBounds(t *testing.T) {
	c := NewCollector()
	Feed(c, scene(t))
	minX, minY, maxX, maxY := c.Bounds(90, 32)
	assert.Equal(t, -145.0, minX)
	assert.Equal(t, -166.0, minY)
	assert.Equal(t, 195.0, maxX)
	assert.Equal(t, 56.0, maxY)
}

func scripts(t *testing.T, path string) (title string, body string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, err := html.Parse(f)
	require.NoError(t, err)

	var sb strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = n.FirstChild.Data
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				sb.WriteString(c.Data)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return title, sb.String()
}

func TestEChartsRenderToFile(t *testing.T) {
	e := NewECharts("Pride and Prejudice", render.DefaultTheme, render.DefaultStyle())
	Feed(e, scene(t))

	name := filepath.Join(t.TempDir(), "out")
	require.NoError(t, e.RenderToFile(name))

	title, js := scripts(t, name+".html")
	assert.Equal(t, "Pride and Prejudice", title)
	assert.Contains(t, js, `"symbol":"roundRect"`)
	assert.Contains(t, js, `"name":"Bingley"`)
	assert.Contains(t, js, `"layout":"none"`)
	assert.Contains(t, js, `"color":"#336699"`, "explicit node colours win")
	assert.Contains(t, js, `"color":"#dc2626"`, "negative links are red")
	assert.Contains(t, js, `Darcy<br/>interactions: 8`)
}

func TestEChartsShiftsCoordinates(t *testing.T) {
	e := NewECharts("", render.DefaultTheme, render.DefaultStyle())
	Feed(e, scene(t))
	minX, minY, _, _ := e.Bounds(90, 32)
	require.Less(t, minX, 0.0)
	require.Less(t, minY, 0.0)

	var buf strings.Builder
	require.NoError(t, e.Page().Render(&buf))
	assert.NotContains(t, buf.String(), `"x":-`)
	assert.NotContains(t, buf.String(), `"y":-`)
}

func TestStatsJSON(t *testing.T) {
	s := NewStatsJSON()
	Feed(s, scene(t))

	name := filepath.Join(t.TempDir(), "out")
	require.NoError(t, s.RenderToFile(name))

	data, err := os.ReadFile(name + ".stats.json")
	require.NoError(t, err)

	var res stats.Result
	require.NoError(t, json.Unmarshal(data, &res))
	require.Len(t, res.Rows, 4)
	assert.Equal(t, []string{"Elizabeth", "Darcy", "Jane", "Bingley"},
		[]string{res.Rows[0].ID, res.Rows[1].ID, res.Rows[2].ID, res.Rows[3].ID}, "ties keep input order")
	assert.Equal(t, 8, res.Rows[0].Interactions)
	assert.Equal(t, 3, res.InteractionsOf["Bingley"])
}

func TestRasterRenderToFile(t *testing.T) {
	s := scene(t)
	o := ImageOptions{Width: 320, Height: 240, Padding: 10}
	r := NewRaster(render.NewRenderer(render.DefaultTheme, render.DefaultStyle(), nil), o)
	Feed(r, s)

	name := filepath.Join(t.TempDir(), "out")
	require.NoError(t, r.RenderToFile(name))

	f, err := os.Open(name + ".png")
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())

	assert.False(t, s.Nodes[0].Box.Valid, "the fed scene is never written to")
	assert.True(t, r.Node("Elizabeth").Box.Valid)
}

func TestVectorRenderToFile(t *testing.T) {
	v := NewVector(render.NewRenderer(render.DefaultTheme, render.DefaultStyle(), nil), ImageOptions{Width: 320, Height: 240, Padding: 10})
	Feed(v, scene(t))

	name := filepath.Join(t.TempDir(), "out")
	require.NoError(t, v.RenderToFile(name))

	data, err := os.ReadFile(name + ".svg")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), ">Elizabeth</text>")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), "</svg>"))
}

func TestSnapshotWithoutBrowser(t *testing.T) {
	o := DefaultSnapshotOptions()
	o.ExecPath = filepath.Join(t.TempDir(), "no-such-chrome")
	o.Timeout = lib.DurationFrom(10 * time.Second)
	s := NewSnapshot(NewECharts("", render.DefaultTheme, render.DefaultStyle()), o, nil)
	Feed(s, scene(t))

	name := filepath.Join(t.TempDir(), "out")
	require.Error(t, s.RenderToFile(name))
	assert.NoFileExists(t, name+".snapshot.png")
}

func TestTooltips(t *testing.T) {
	s := scene(t)
	c := NewCollector()
	Feed(c, s)
	res := c.Stats()

	assert.Equal(t, "Jane\ninteractions: 3\nsentiment: neu", NodeTooltip(res, "Jane"))
	assert.Equal(t, "Elizabeth – Darcy\ncount: 6\nsentiment: neg", LinkTooltip(res, c.Links()[0]))
}
