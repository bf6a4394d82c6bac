// Package stats derives per-character ranking rows from a graph.
package stats

import (
	"sort"

	"github.com/psidex/chargraph/internal/graph"
)

// Row is one character's derived statistics.
type Row struct {
	ID           string `json:"id"`
	Appearances  int    `json:"appearances"`
	Interactions int    `json:"interactions"`
	// AvgSentiment is the count-weighted mean over incident scored links, or
	// nil when no incident link carries a score.
	AvgSentiment *float64 `json:"avgSentiment"`
}

// Result is rebuilt from scratch on every Derive, never patched.
type Result struct {
	Rows           []Row               `json:"rows"`
	InteractionsOf map[string]int      `json:"interactionsOf"`
	AvgSentimentOf map[string]*float64 `json:"avgSentimentOf"`
}

type accumulator struct {
	row       Row
	sentSum   float64
	sentDenom int
}

// Derive aggregates g. Rows come out in first-encounter order: every node in
// input order, then ids that only appear as link endpoints. Only identity
// and weight fields are read, so deriving before or after a layout has bound
// the endpoints gives the same result.
func Derive(g *graph.Graph) Result {
	var order []*accumulator
	byID := make(map[string]*accumulator)

	get := func(id string) *accumulator {
		acc, ok := byID[id]
		if !ok {
			acc = &accumulator{row: Row{ID: id}}
			byID[id] = acc
			order = append(order, acc)
		}
		return acc
	}

	if g != nil {
		for _, n := range g.Nodes {
			get(n.ID).row.Appearances = n.Value
		}
		for _, l := range g.Links {
			for _, id := range [2]string{l.Source.ID(), l.Target.ID()} {
				acc := get(id)
				acc.row.Interactions += l.Count
				if l.Sentiment != nil {
					acc.sentSum += *l.Sentiment * float64(l.Count)
					acc.sentDenom += l.Count
				}
			}
		}
	}

	res := Result{
		Rows:           make([]Row, 0, len(order)),
		InteractionsOf: make(map[string]int, len(order)),
		AvgSentimentOf: make(map[string]*float64, len(order)),
	}
	for _, acc := range order {
		r := acc.row
		if acc.sentDenom > 0 {
			avg := acc.sentSum / float64(acc.sentDenom)
			r.AvgSentiment = &avg
		}
		res.Rows = append(res.Rows, r)
		res.InteractionsOf[r.ID] = r.Interactions
		res.AvgSentimentOf[r.ID] = r.AvgSentiment
	}
	return res
}

// Ranked returns a copy of rows ordered by interactions, highest first. Ties
// keep their derivation order.
func Ranked(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Interactions > out[j].Interactions
	})
	return out
}
