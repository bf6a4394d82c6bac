package graphs

import (
	"html"
	"io"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/interact"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/sentiment"
	"github.com/psidex/chargraph/internal/stats"
)

// ECharts defines a CliGraphProvider that renders a go-echarts HTML file. Nodes
// keep the positions and box sizes of the settled layout.
type ECharts struct {
	*Collector
	title string
	theme render.Theme
	style render.Style
}

var _ CliGraphProvider = (*ECharts)(nil)

func NewECharts(title string, theme render.Theme, style render.Style) *ECharts {
	return &ECharts{
		Collector: NewCollector(),
		title:     title,
		theme:     theme,
		style:     style,
	}
}

// Page builds the page. The layout is shifted so every coordinate is
// positive, as go-echarts drops zero coordinates from the options.
func (e *ECharts) Page() *components.Page {
	res := e.Stats()
	minX, minY, _, _ := e.Bounds(e.style.MinWidth, e.style.MinHeight)
	offX, offY := 1-minX, 1-minY

	nodes := []opts.GraphNode{}
	for _, n := range e.Nodes() {
		w, h := boxOf(n, e.style.MinWidth, e.style.MinHeight)
		nodes = append(nodes, opts.GraphNode{
			Name:       n.ID,
			X:          float32(n.Layout.X + offX),
			Y:          float32(n.Layout.Y + offY),
			Value:      float32(res.InteractionsOf[n.ID]),
			Fixed:      opts.Bool(true),
			Symbol:     "roundRect",
			SymbolSize: []float32{float32(w), float32(h)},
			ItemStyle: &opts.ItemStyle{
				Color:       nodeColor(n, e.theme),
				BorderColor: render.CSS(e.theme.Stroke),
				BorderWidth: float32(e.style.BorderWidth),
			},
			Tooltip: &opts.Tooltip{
				Show:      opts.Bool(true),
				Formatter: types.FuncStr(htmlLines(NodeTooltip(res, n.ID))),
			},
		})
	}

	links := []opts.GraphLink{}
	for _, l := range e.Links() {
		col := sentiment.Hex(sentiment.ColorFor(l.Sentiment))
		if l.Color != "" {
			col = l.Color
		}
		links = append(links, opts.GraphLink{
			Source: l.Source.ID(),
			Target: l.Target.ID(),
			Value:  float32(l.Count),
			LineStyle: &opts.LineStyle{
				Color: col,
				Width: float32(render.LinkWidth(l)),
			},
		})
	}

	page := components.NewPage()
	page.SetPageTitle(e.title)
	page.AddCharts(e.graphBase(nodes, links))
	return page
}

func (e *ECharts) RenderToFile(filename string) error {
	filename = filename + ".html"

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return e.Page().Render(io.MultiWriter(f))
}

func (e *ECharts) graphBase(nodes []opts.GraphNode, links []opts.GraphLink) *charts.Graph {
	g := charts.NewGraph()
	g.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       e.title,
			Height:          "100vh",
			Width:           "100vw",
			BackgroundColor: render.CSS(e.theme.Background),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	g.AddSeries(
		"characters",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:             "none",
				Roam:               opts.Bool(true),
				Draggable:          opts.Bool(false),
				FocusNodeAdjacency: opts.Bool(true),
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    render.CSS(e.theme.Text),
			FontSize: float32(e.style.FontBase),
			Position: "inside",
		}),
	)
	return g
}

// NodeTooltip is the text the live view shows while id is hovered.
func NodeTooltip(res stats.Result, id string) string {
	c := interact.NewController()
	c.EnterNode(id)
	return c.Tooltip(res)
}

// LinkTooltip is the text the live view shows while l is hovered.
func LinkTooltip(res stats.Result, l *graph.Link) string {
	c := interact.NewController()
	c.EnterLink(l)
	return c.Tooltip(res)
}

func htmlLines(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}
