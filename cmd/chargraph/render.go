package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/graphs"
	"github.com/psidex/chargraph/internal/graphs/graphology"
	"github.com/psidex/chargraph/internal/graphs/vis"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/view"
)

// suffixes maps each export format to the extension its provider writes.
var suffixes = map[string]string{
	"png":        ".png",
	"svg":        ".svg",
	"echarts":    ".html",
	"vis":        ".vis.html",
	"graphology": ".graphology.json",
	"stats":      ".stats.json",
	"snapshot":   ".snapshot.png",
}

func renderCmd(a *app) *cobra.Command {
	var (
		output  string
		formats []string
		title   string
	)

	cmd := &cobra.Command{
		Use:   "render <payload.json>",
		Short: "Lay out a graph and export it",
		Long: "Lay out a {nodes, links} payload until it settles, then export it in\n" +
			"each requested format: " + strings.Join(formatNames(), ", ") + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				formats = a.cfg.Export.Formats
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			}
			if title != "" {
				a.cfg.Export.Title = title
			}

			written, err := a.render(args[0], output, formats)
			for _, f := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", good.Sprint("✓"), f)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file name without extension (default: payload name)")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "export formats (default from config)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "page title for the HTML exports")
	return cmd
}

func formatNames() []string {
	return []string{"png", "svg", "echarts", "vis", "graphology", "stats", "snapshot"}
}

// render settles the payload at path on a manual clock and runs every
// requested exporter concurrently over the settled scene. It returns the files
// that were written.
func (a *app) render(path, output string, formats []string) ([]string, error) {
	cfg := a.cfg
	logger := a.logger.With("payload", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	g, err := graph.Decode(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	theme, errs := render.ResolveTheme(cfg.Theme)
	for _, err := range errs {
		logger.Warn("ignoring theme colour", "err", err)
	}

	formats = dedupe(formats)
	providers := make([]graphs.CliGraphProvider, 0, len(formats))
	for _, format := range formats {
		p, err := a.provider(format, theme)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	vo := cfg.View
	vo.Width, vo.Height = cfg.Export.Image.Width, cfg.Export.Image.Height
	v := view.New(vo, cfg.Layout, render.NewRenderer(theme, cfg.Style, logger), logger)

	clock := view.NewManualClock(time.Unix(0, 0))
	if err := v.Load(g, clock.Now()); err != nil {
		return nil, err
	}
	if !view.Settle(v, clock, cfg.Export.SettleStep.Duration, cfg.Export.MaxFrames) {
		logger.Warn("layout still moving, exporting as is", "frames", v.Frames())
	}
	logger.Debug("layout settled", "frames", v.Frames(), "nodes", len(g.Nodes), "links", len(g.Links))

	scene := v.Scene()
	results := make([]error, len(providers))
	var eg errgroup.Group
	for i, p := range providers {
		i, p := i, p
		graphs.Feed(p, scene)
		eg.Go(func() error {
			results[i] = p.RenderToFile(output)
			return results[i]
		})
	}
	err = eg.Wait()

	var written []string
	for i, format := range formats {
		if results[i] == nil {
			written = append(written, output+suffixes[format])
		}
	}
	return written, err
}

func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (a *app) provider(format string, theme render.Theme) (graphs.CliGraphProvider, error) {
	cfg := a.cfg
	switch format {
	case "png":
		return graphs.NewRaster(render.NewRenderer(theme, cfg.Style, a.logger), cfg.Export.Image), nil
	case "svg":
		return graphs.NewVector(render.NewRenderer(theme, cfg.Style, a.logger), cfg.Export.Image), nil
	case "echarts":
		return graphs.NewECharts(cfg.Export.Title, theme, cfg.Style), nil
	case "vis":
		return vis.NewVis(cfg.Export.Title, theme, cfg.Style), nil
	case "graphology":
		return graphology.NewGraphology(theme, cfg.Style), nil
	case "stats":
		return graphs.NewStatsJSON(), nil
	case "snapshot":
		e := graphs.NewECharts(cfg.Export.Title, theme, cfg.Style)
		return graphs.NewSnapshot(e, cfg.Export.Snapshot, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
