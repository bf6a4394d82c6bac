package vis

import (
	"encoding/json"
	"fmt"
	stdhtml "html"
	"os"
	"strings"

	"github.com/psidex/chargraph/internal/graphs"
	"github.com/psidex/chargraph/internal/lib"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/sentiment"
)

// Vis defines a CliGraphProvider that renders to a HTML file which "replays" the
// graph using vis.js: every character first, then every link, in input order.
type Vis struct {
	*graphs.Collector
	title string
	theme render.Theme
	style render.Style
}

var _ graphs.CliGraphProvider = (*Vis)(nil)

func NewVis(title string, theme render.Theme, style render.Style) *Vis {
	return &Vis{
		Collector: graphs.NewCollector(),
		title:     title,
		theme:     theme,
		style:     style,
	}
}

// items returns one JSON object per line, each followed by a comma.
func (v *Vis) items() (string, error) {
	res := v.Stats()
	hasher := lib.NewStrHasher()
	var out strings.Builder

	write := func(item interface{}) error {
		b, err := json.Marshal(item)
		if err != nil {
			return err
		}
		out.WriteString("\n")
		out.Write(b)
		out.WriteString(",")
		return nil
	}

	for _, n := range v.Nodes() {
		w, h := v.style.MinWidth, v.style.MinHeight
		if n.Box.Valid {
			w, h = n.Box.W, n.Box.H
		}
		item := newNode()
		item.Data = nodeData{
			ID:               hasher.Hash(n.ID),
			Label:            n.ID,
			Title:            graphs.NodeTooltip(res, n.ID),
			X:                n.Layout.X,
			Y:                n.Layout.Y,
			Shape:            "box",
			WidthConstraint:  w,
			HeightConstraint: h,
			Color: nodeColor{
				Background: fill(n.Color, v.theme),
				Border:     render.CSS(v.theme.Stroke),
			},
			Font: nodeFont{Color: render.CSS(v.theme.Text)},
		}
		if err := write(item); err != nil {
			return "", err
		}
	}

	for i, l := range v.Links() {
		col := sentiment.Hex(sentiment.ColorFor(l.Sentiment))
		if l.Color != "" {
			col = l.Color
		}
		item := newEdge()
		item.Data = edgeData{
			ID:    i + 1,
			From:  hasher.Hash(l.Source.ID()),
			To:    hasher.Hash(l.Target.ID()),
			Width: render.LinkWidth(l),
			Title: graphs.LinkTooltip(res, l),
			Color: edgeColor{Color: col},
		}
		if err := write(item); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func fill(explicit string, theme render.Theme) string {
	if explicit != "" {
		return explicit
	}
	return render.CSS(theme.Fill)
}

func (v *Vis) RenderToFile(filename string) error {
	filename = filename + ".vis.html"

	items, err := v.items()
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = fmt.Fprintf(file, html, stdhtml.EscapeString(v.title), render.CSS(v.theme.Background), items)
	return err
}
