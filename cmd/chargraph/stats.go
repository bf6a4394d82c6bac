package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/sentiment"
	"github.com/psidex/chargraph/internal/stats"
)

func statsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <payload.json>",
		Short: "Print the character ranking of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			g, err := graph.Decode(f)
			if err != nil {
				return err
			}
			rows := stats.Ranked(stats.Derive(g).Rows)
			if d := g.Resolve(); len(d) > 0 {
				a.logger.Warn("graph has links to unknown characters", "ids", d)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				subtle.Fprintln(w, "  no characters")
				return nil
			}
			brand.Fprintf(w, "  %d characters\n\n", len(rows))
			headers := []string{"#", "character", "appearances", "interactions", "sentiment"}
			cells := make([][]string, len(rows))
			plain := make([][]string, len(rows))
			for i, r := range rows {
				plain[i] = []string{
					strconv.Itoa(i + 1),
					r.ID,
					strconv.Itoa(r.Appearances),
					strconv.Itoa(r.Interactions),
					sentiment.Badge(r.AvgSentiment),
				}
				cells[i] = append([]string(nil), plain[i]...)
				cells[i][4] = badge(r.AvgSentiment)
			}
			table(w, headers, cells, plain)
			fmt.Fprintln(w)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the ranking as JSON")
	return cmd
}
